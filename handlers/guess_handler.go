package handlers

import (
	"net/http"

	"github.com/mkopka/prediction-pool/services"
)

type GuessHandler struct {
	guessService services.GuessService
}

func NewGuessHandler(guessService services.GuessService) *GuessHandler {
	return &GuessHandler{guessService: guessService}
}

type submitGuessRequest struct {
	UserID    int `json:"user_id"`
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

func (h *GuessHandler) SubmitGuessHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitGuessRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	guess, err := h.guessService.Submit(r.Context(), input.UserID, matchID, input.HomeScore, input.AwayScore)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"guess": guess}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GuessHandler) GetGuessHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	guess, err := h.guessService.GetGuess(r.Context(), userID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"guess": guess}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
