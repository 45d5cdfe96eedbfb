package handlers

import (
	"net/http"

	"github.com/podiumpicks/podium-api/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) GetBySeason(w http.ResponseWriter, r *http.Request) {
	season, err := seasonFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	leaderboard, err := h.leaderboardService.GetBySeason(r.Context(), season)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": leaderboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
