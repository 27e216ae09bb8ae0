package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dev-zuma/places-sub000/internal/generator"
	"github.com/dev-zuma/places-sub000/internal/places"
)

// CreateGameRequest is the request body for POST /api/games.
type CreateGameRequest struct {
	Theme      string `json:"theme"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
	Objective  string `json:"objective"`
}

// CreateGameResponse returns the id of the game being generated.
type CreateGameResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// BatchCreateRequest is the request body for POST /api/games/batch.
type BatchCreateRequest struct {
	Count  int      `json:"count"`
	Themes []string `json:"themes"`
}

// BatchCreateResponse lists the ids of the games being generated.
type BatchCreateResponse struct {
	IDs []string `json:"ids"`
}

var validDifficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

var validObjectives = func() map[places.Objective]bool {
	m := make(map[places.Objective]bool, len(places.Objectives))
	for _, o := range places.Objectives {
		m[o] = true
	}
	return m
}()

func (req *CreateGameRequest) normalize() string {
	req.Theme = strings.TrimSpace(req.Theme)
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if req.Category == "" {
		req.Category = "general"
	}
	if req.Objective == "" {
		req.Objective = string(places.ObjectiveHideout)
	}
	if !validDifficulties[req.Difficulty] {
		return "difficulty must be easy, medium, or hard"
	}
	if !validObjectives[places.Objective(req.Objective)] {
		return "unknown objective"
	}
	return ""
}

// startGeneration creates the placeholder game and spawns the generation
// task. The request context ends with the HTTP request; the task gets its
// own.
func startGeneration(ctx context.Context, logger *slog.Logger, store Store, orch *generator.Orchestrator, req CreateGameRequest) (string, error) {
	id := uuid.NewString()

	game := places.Game{
		ID:             id,
		Theme:          req.Theme,
		Difficulty:     req.Difficulty,
		Category:       req.Category,
		FinalObjective: places.Objective(req.Objective),
	}
	if err := store.CreatePlaceholderGame(ctx, game); err != nil {
		return "", err
	}

	avoid, err := store.MostUsedCities(ctx, 10)
	if err != nil {
		logger.Warn("querying most-used cities", "error", err)
	}

	go func() {
		genReq := generator.Request{
			GameID:      id,
			Theme:       req.Theme,
			Difficulty:  req.Difficulty,
			Category:    req.Category,
			Objective:   places.Objective(req.Objective),
			AvoidCities: avoid,
		}
		if err := orch.Generate(context.Background(), genReq); err != nil {
			logger.Error("generation task failed", "game_id", id, "error", err)
		}
	}()

	return id, nil
}

func handleCreateGame(logger *slog.Logger, store Store, orch *generator.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.normalize(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		if req.Theme == "" {
			writeError(w, http.StatusBadRequest, "theme is required")
			return
		}

		id, err := startGeneration(r.Context(), logger, store, orch, req)
		if err != nil {
			logger.Error("creating game", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusAccepted, CreateGameResponse{ID: id, Status: string(places.StatusPending)})
	}
}

const maxBatchSize = 10

func handleBatchCreate(logger *slog.Logger, store Store, orch *generator.Orchestrator, suggester ThemeSuggester, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BatchCreateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Count < 1 || req.Count > maxBatchSize {
			writeError(w, http.StatusBadRequest, "count must be between 1 and 10")
			return
		}

		themes := req.Themes
		if len(themes) < req.Count {
			recent, err := store.RecentThemes(r.Context(), 20)
			if err != nil {
				logger.Warn("querying recent themes", "error", err)
			}
			avoid := append(recent, themes...)
			themes = append(themes, suggester.DiversifyThemes(r.Context(), req.Count-len(themes), avoid, "")...)
		}
		if len(themes) < req.Count {
			writeError(w, http.StatusInternalServerError, "could not derive enough themes")
			return
		}

		ids := make([]string, 0, req.Count)
		for i := 0; i < req.Count; i++ {
			if i > 0 && delay > 0 {
				// Courtesy backoff toward the generative service between
				// bulk requests.
				time.Sleep(delay)
			}
			create := CreateGameRequest{Theme: themes[i]}
			create.normalize()
			id, err := startGeneration(r.Context(), logger, store, orch, create)
			if err != nil {
				logger.Error("creating batch game", "error", err)
				continue
			}
			ids = append(ids, id)
		}

		writeJSON(w, http.StatusAccepted, BatchCreateResponse{IDs: ids})
	}
}

func handleListGames(logger *slog.Logger, store Store, publishedOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := store.ListGames(r.Context(), publishedOnly)
		if err != nil {
			logger.Error("listing games", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if games == nil {
			games = []GameSummary{}
		}
		writeJSON(w, http.StatusOK, games)
	}
}

func handleGetGame(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "gameID")
		detail, err := store.GetGame(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			logger.Error("getting game", "game_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, gameDetailResponse(*detail))
	}
}

func handlePublishGame(logger *slog.Logger, store Store, publish bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "gameID")

		if publish {
			// Only completed games can go live.
			rec, err := store.Progress(r.Context(), id)
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "game not found")
				return
			}
			if err != nil {
				logger.Error("checking generation status", "game_id", id, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if rec.Status != places.StatusCompleted {
				writeError(w, http.StatusConflict, "game generation is not completed")
				return
			}
		}

		err := store.SetPublished(r.Context(), id, publish)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			logger.Error("publishing game", "game_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"published": publish})
	}
}

func handleDeleteGame(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "gameID")
		err := store.DeleteGame(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			logger.Error("deleting game", "game_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ProgressResponse is the read-only projection of a GenerationRecord for
// polling clients.
type ProgressResponse struct {
	GameID         string               `json:"gameId"`
	Status         string               `json:"status"`
	CurrentStep    string               `json:"currentStep"`
	CompletedSteps int                  `json:"completedSteps"`
	TotalSteps     int                  `json:"totalSteps"`
	Phases         []places.PhaseTiming `json:"phases"`
	ImageTimings   []places.ImageTiming `json:"imageTimings"`
	Error          string               `json:"error,omitempty"`
	CaseTitle      string               `json:"caseTitle,omitempty"`
	VillainName    string               `json:"villainName,omitempty"`
}

func handleProgress(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "gameID")
		rec, err := store.Progress(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			logger.Error("reading progress", "game_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := ProgressResponse{
			GameID:         rec.GameID,
			Status:         string(rec.Status),
			CurrentStep:    rec.CurrentStep,
			CompletedSteps: rec.CompletedSteps,
			TotalSteps:     rec.TotalSteps,
			Phases:         rec.Phases,
			ImageTimings:   rec.ImageTimings,
			Error:          rec.Error,
		}
		if detail, err := store.GetGame(r.Context(), id); err == nil && detail.Game.CaseTitle != places.PlaceholderName {
			resp.CaseTitle = detail.Game.CaseTitle
			resp.VillainName = detail.Game.Villain.Name
		}
		if resp.Phases == nil {
			resp.Phases = []places.PhaseTiming{}
		}
		if resp.ImageTimings == nil {
			resp.ImageTimings = []places.ImageTiming{}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
