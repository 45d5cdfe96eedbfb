package handlers

import (
	"context"
	"net/http"

	"github.com/podiumpicks/podium-api/middleware"
	"github.com/podiumpicks/podium-api/services"
)

type ResultHandler struct {
	resultService services.ResultService
	raceService   services.RaceService
	userService   services.UserService
	emailService  *services.EmailService
}

func NewResultHandler(
	resultService services.ResultService,
	raceService services.RaceService,
	userService services.UserService,
	emailService *services.EmailService,
) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
		raceService:   raceService,
		userService:   userService,
		emailService:  emailService,
	}
}

func (h *ResultHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	adminID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.ConfirmResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.resultService.Confirm(r.Context(), raceID, input, adminID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.notifyResultConfirmed(r.Context(), raceID)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// notifyResultConfirmed emails verified players that a race has been scored.
// Lookup failures drop the notification; the confirmation already succeeded.
func (h *ResultHandler) notifyResultConfirmed(ctx context.Context, raceID int) {
	race, err := h.raceService.GetByID(ctx, raceID)
	if err != nil {
		return
	}
	users, err := h.userService.List(ctx)
	if err != nil {
		return
	}
	recipients := make([]string, 0, len(users))
	for i := range users {
		if users[i].IsVerified() {
			recipients = append(recipients, users[i].Email)
		}
	}
	h.emailService.SendResultConfirmedEmail(recipients, race.Name)
}

func (h *ResultHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.resultService.Recalculate(r.Context(), raceID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "scores recalculated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.resultService.Delete(r.Context(), raceID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ResultHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.resultService.Unlock(r.Context(), raceID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "race unlocked"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) GetByRace(w http.ResponseWriter, r *http.Request) {
	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.resultService.GetByRace(r.Context(), raceID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) ListScores(w http.ResponseWriter, r *http.Request) {
	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	scores, err := h.resultService.ListScoresByRace(r.Context(), raceID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scores": scores}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
