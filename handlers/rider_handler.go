package handlers

import (
	"net/http"

	"github.com/podiumpicks/podium-api/services"
)

type RiderHandler struct {
	riderService services.RiderService
}

func NewRiderHandler(riderService services.RiderService) *RiderHandler {
	return &RiderHandler{riderService: riderService}
}

func (h *RiderHandler) ListBySeason(w http.ResponseWriter, r *http.Request) {
	season, err := seasonFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	activeOnly := r.URL.Query().Get("include_inactive") != "true"

	riders, err := h.riderService.ListBySeason(r.Context(), season, activeOnly)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"riders": riders}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RiderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rider, err := h.riderService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rider": rider}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RiderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateRiderInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rider, err := h.riderService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"rider": rider}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RiderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateRiderInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rider, err := h.riderService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rider": rider}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RiderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.riderService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RiderHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	season, err := seasonFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.riderService.ListTeams(r.Context(), season)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
