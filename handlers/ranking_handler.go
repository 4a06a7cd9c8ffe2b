package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkopka/prediction-pool/services"
)

type RankingHandler struct {
	rankingService services.RankingService
}

func NewRankingHandler(rankingService services.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

func tournamentIDFromURL(r *http.Request) string {
	if id := chi.URLParam(r, "tournamentID"); id != "" {
		return id
	}
	return services.DefaultTournamentID
}

func (h *RankingHandler) ListRankingsHandler(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.rankingService.ListRankings(r.Context(), tournamentIDFromURL(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RankingHandler) RecalculateHandler(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.rankingService.Recalculate(r.Context(), tournamentIDFromURL(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
