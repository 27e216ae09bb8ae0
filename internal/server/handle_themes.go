package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
)

// ThemeSuggester produces theme candidates that avoid a given list. The
// content adapter satisfies it; a local fallback pool kicks in on failure,
// so this never errors.
type ThemeSuggester interface {
	DiversifyThemes(ctx context.Context, n int, avoid []string, hint string) []string
}

// ThemeSuggestResponse is the response body for GET /api/themes/suggest.
type ThemeSuggestResponse struct {
	Themes []string `json:"themes"`
}

func handleSuggestThemes(logger *slog.Logger, store Store, suggester ThemeSuggester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := 5
		if raw := r.URL.Query().Get("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 20 {
				writeError(w, http.StatusBadRequest, "count must be between 1 and 20")
				return
			}
			count = n
		}
		hint := r.URL.Query().Get("hint")

		recent, err := store.RecentThemes(r.Context(), 20)
		if err != nil {
			logger.Warn("querying recent themes", "error", err)
		}

		themes := suggester.DiversifyThemes(r.Context(), count, recent, hint)
		writeJSON(w, http.StatusOK, ThemeSuggestResponse{Themes: themes})
	}
}
