package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, deps Deps) {
	logger := deps.Logger
	store := deps.Store

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("GeoDetective API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, deps.DB))

	// Player-facing routes.
	r.Route("/api", func(r chi.Router) {
		r.Get("/games", handleListGames(logger, store, true))
		r.Get("/games/{gameID}", handleGetGame(logger, store))
		r.Get("/games/{gameID}/progress", handleProgress(logger, store))
		r.Get("/games/{gameID}/events", handleProgressEvents(store, deps.Broker))

		r.Post("/players", handleCreatePlayer(logger, store))
		r.Get("/players/{playerID}", handleGetPlayer(logger, store))
		r.Post("/players/{playerID}/cases", handleUpsertCase(logger, store))
		r.Get("/leaderboard", handleLeaderboard(logger, store))
	})

	// Admin auth.
	r.Post("/api/admin/login", handleAdminLogin(deps.Admin))
	r.Post("/api/admin/logout", handleAdminLogout(deps.Admin))

	// Admin game management.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminAuthMiddleware(deps.Admin))
		r.Get("/me", handleAdminMe())

		r.Get("/games", handleListGames(logger, store, false))
		r.Post("/games", handleCreateGame(logger, store, deps.Orch))
		r.Post("/games/batch", handleBatchCreate(logger, store, deps.Orch, deps.Themes, deps.BatchDelay))
		r.Post("/games/{gameID}/publish", handlePublishGame(logger, store, true))
		r.Post("/games/{gameID}/unpublish", handlePublishGame(logger, store, false))
		r.Delete("/games/{gameID}", handleDeleteGame(logger, store))

		r.Get("/themes/suggest", handleSuggestThemes(logger, store, deps.Themes))
	})

	// Generated images are written to disk and served as static files.
	if deps.ImageDir != "" {
		fs := http.StripPrefix("/images/", http.FileServer(http.Dir(deps.ImageDir)))
		r.Get("/images/*", func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "..") {
				writeError(w, http.StatusBadRequest, "invalid path")
				return
			}
			fs.ServeHTTP(w, r)
		})
	}

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
