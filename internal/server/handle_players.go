package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dev-zuma/places-sub000/internal/places"
)

type CreatePlayerRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type PlayerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	CreatedAt string `json:"createdAt"`
}

type UpsertCaseRequest struct {
	GameID     string `json:"gameId"`
	Solved     bool   `json:"solved"`
	Score      int    `json:"score"`
	CluePoints int    `json:"cluePoints"`
}

func playerResponse(p places.Player) PlayerResponse {
	return PlayerResponse{
		ID:        p.ID,
		Name:      p.Name,
		Avatar:    p.Avatar,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func handleCreatePlayer(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePlayerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		p := places.Player{ID: uuid.NewString(), Name: req.Name, Avatar: req.Avatar}
		if err := store.CreatePlayer(r.Context(), p); err != nil {
			logger.Error("creating player", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		created, err := store.GetPlayer(r.Context(), p.ID)
		if err != nil {
			logger.Error("reading back player", "player_id", p.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, playerResponse(created))
	}
}

func handleGetPlayer(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "playerID")
		p, err := store.GetPlayer(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		if err != nil {
			logger.Error("getting player", "player_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, playerResponse(p))
	}
}

func handleUpsertCase(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")
		var req UpsertCaseRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.GameID == "" {
			writeError(w, http.StatusBadRequest, "gameId is required")
			return
		}
		if req.Score < 0 || req.CluePoints < 0 {
			writeError(w, http.StatusBadRequest, "score and cluePoints must not be negative")
			return
		}

		// Both sides of the relation must exist before recording a result.
		if _, err := store.GetPlayer(r.Context(), playerID); errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		} else if err != nil {
			logger.Error("getting player", "player_id", playerID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if _, err := store.Progress(r.Context(), req.GameID); errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		} else if err != nil {
			logger.Error("getting game", "game_id", req.GameID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		pc := places.PlayerCase{
			PlayerID:   playerID,
			GameID:     req.GameID,
			Solved:     req.Solved,
			Score:      req.Score,
			CluePoints: req.CluePoints,
		}
		if err := store.UpsertPlayerCase(r.Context(), pc); err != nil {
			logger.Error("saving player case", "player_id", playerID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
	}
}

func handleLeaderboard(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.Leaderboard(r.Context(), 20)
		if err != nil {
			logger.Error("querying leaderboard", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if entries == nil {
			entries = []LeaderboardEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
