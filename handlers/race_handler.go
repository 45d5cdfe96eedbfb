package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/podiumpicks/podium-api/services"
)

type RaceHandler struct {
	raceService services.RaceService
}

func NewRaceHandler(raceService services.RaceService) *RaceHandler {
	return &RaceHandler{raceService: raceService}
}

// seasonFromQuery falls back to the current year when no season is given.
func seasonFromQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("season")
	if raw == "" {
		return time.Now().Year(), nil
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season <= 0 {
		return 0, errors.New("invalid season parameter")
	}
	return season, nil
}

func (h *RaceHandler) ListBySeason(w http.ResponseWriter, r *http.Request) {
	season, err := seasonFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	races, err := h.raceService.ListBySeason(r.Context(), season)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"races": races}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RaceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	race, err := h.raceService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"race": race}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateRaceInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	race, err := h.raceService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"race": race}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateRaceInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	race, err := h.raceService.UpdateInfo(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"race": race}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RaceHandler) UploadTrackImage(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	race, err := h.raceService.UploadTrackImage(r.Context(), id, data, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"race": race}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
