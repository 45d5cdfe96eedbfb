package handlers

import (
	"net/http"

	"github.com/podiumpicks/podium-api/middleware"
	"github.com/podiumpicks/podium-api/models"
	"github.com/podiumpicks/podium-api/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(predictionService services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: predictionService}
}

func (h *PredictionHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SavePredictionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.RaceID = raceID

	prediction, updated, err := h.predictionService.Save(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusCreated
	if updated {
		status = http.StatusOK
	}
	if err := writeJSON(w, status, jsonResponse{"prediction": prediction}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PredictionHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	prediction, err := h.predictionService.GetForUserAndRace(r.Context(), userID, raceID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"prediction": prediction}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PredictionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	predictions, err := h.predictionService.ListByUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"predictions": predictions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PredictionHandler) ListByRace(w http.ResponseWriter, r *http.Request) {
	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	role, ok := middleware.GetUserRoleFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	predictions, err := h.predictionService.ListByRace(r.Context(), raceID, role)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"predictions": predictions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PredictionHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Position1RiderID int `json:"position_1_rider_id"`
		Position2RiderID int `json:"position_2_rider_id"`
		Position3RiderID int `json:"position_3_rider_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	prediction, err := h.predictionService.AdminUpdate(r.Context(), id, models.Podium{
		Position1RiderID: input.Position1RiderID,
		Position2RiderID: input.Position2RiderID,
		Position3RiderID: input.Position3RiderID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"prediction": prediction}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PredictionHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.predictionService.AdminDelete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
