package handler

import (
	"encoding/json"
	"net/http"
)

type gameScoreRequest struct {
	Score int64 `json:"score"`
}

type gameScoreResponse struct {
	HighScore   int64 `json:"high_score"`
	IsNewHigh   bool  `json:"is_new_high"`
	GamesPlayed int64 `json:"games_played"`
}

// handleGameScore registers a finished casual game.
//
//	POST /api/usage/game/score {"score": 42}
func (h *Handler) handleGameScore(w http.ResponseWriter, r *http.Request) {
	id := h.identity(r)

	var req gameScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Score < 0 {
		respondError(w, http.StatusBadRequest, "Invalid score")
		return
	}

	res, err := h.leaderboard.RecordScore(r.Context(), id.UserID, id.Email, req.Score)
	if err != nil {
		h.respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, gameScoreResponse{
		HighScore:   res.HighScore,
		IsNewHigh:   res.IsNewHigh,
		GamesPlayed: res.GamesPlayed,
	})
}

type gameRankResponse struct {
	HighScore int64 `json:"high_score"`
	Rank      int64 `json:"rank"`
}

// handleGameRank returns the user's leaderboard position.
//
//	GET /api/usage/game/rank
func (h *Handler) handleGameRank(w http.ResponseWriter, r *http.Request) {
	id := h.identity(r)

	res, err := h.leaderboard.Rank(r.Context(), id.UserID, id.Email)
	if err != nil {
		h.respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, gameRankResponse{
		HighScore: res.HighScore,
		Rank:      res.Rank,
	})
}
