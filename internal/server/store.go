package server

import (
	"context"
	"errors"

	"github.com/dev-zuma/places-sub000/internal/generator"
	"github.com/dev-zuma/places-sub000/internal/places"
)

var ErrNotFound = errors.New("not found")

// GameSummary is the list-endpoint projection of a game.
type GameSummary struct {
	ID          string `json:"id"`
	Theme       string `json:"theme"`
	Difficulty  string `json:"difficulty"`
	CaseTitle   string `json:"caseTitle"`
	VillainName string `json:"villainName"`
	Published   bool   `json:"published"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

// GameDetail is the full aggregate returned by the get endpoint.
type GameDetail struct {
	Game      places.Game
	Locations [3]places.Location
	Final     *places.FinalLocation
	Turns     []places.Turn
}

// LeaderboardEntry is one row of the score aggregation.
type LeaderboardEntry struct {
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	TotalScore  int    `json:"totalScore"`
	CasesSolved int    `json:"casesSolved"`
}

// Store is the record-store collaborator for the HTTP layer. It embeds the
// generator's store so one SQLite implementation serves both.
type Store interface {
	generator.Store

	CreatePlaceholderGame(ctx context.Context, game places.Game) error
	GetGame(ctx context.Context, id string) (*GameDetail, error)
	ListGames(ctx context.Context, publishedOnly bool) ([]GameSummary, error)
	DeleteGame(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error

	Progress(ctx context.Context, gameID string) (places.GenerationRecord, error)

	// RecentThemes and MostUsedCities are diversity-hint queries: derived
	// state read from the store on demand, not module-level caches.
	RecentThemes(ctx context.Context, limit int) ([]string, error)
	MostUsedCities(ctx context.Context, limit int) ([]string, error)

	CreatePlayer(ctx context.Context, p places.Player) error
	GetPlayer(ctx context.Context, id string) (places.Player, error)
	UpsertPlayerCase(ctx context.Context, pc places.PlayerCase) error
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}
