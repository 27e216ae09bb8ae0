package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse maps dependency names to their check status.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoDetective API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the geography-detective game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/games
	listGames, _ := r.NewOperationContext(http.MethodGet, "/api/games")
	listGames.SetSummary("List published games")
	listGames.SetDescription("Returns all published games with their generation status.")
	listGames.AddRespStructure([]GameSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listGames)

	// GET /api/games/{gameID}
	getGame, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}")
	getGame.SetSummary("Get game")
	getGame.SetDescription("Returns the full game aggregate: villain, locations, turns, and final location.")
	getGame.AddRespStructure(GameDetailResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getGame)

	// GET /api/games/{gameID}/progress
	getProgress, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/progress")
	getProgress.SetSummary("Generation progress")
	getProgress.SetDescription("Returns the generation record for polling clients: status, step counter, and phase timeline.")
	getProgress.AddRespStructure(ProgressResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getProgress.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getProgress)

	// GET /api/games/{gameID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/events")
	getEvents.SetSummary("Progress event stream")
	getEvents.SetDescription("Server-Sent Events stream of generation progress updates for one game.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// POST /api/players
	createPlayer, _ := r.NewOperationContext(http.MethodPost, "/api/players")
	createPlayer.SetSummary("Create player")
	createPlayer.AddReqStructure(CreatePlayerRequest{})
	createPlayer.AddRespStructure(PlayerResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	createPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(createPlayer)

	// GET /api/players/{playerID}
	getPlayer, _ := r.NewOperationContext(http.MethodGet, "/api/players/{playerID}")
	getPlayer.SetSummary("Get player")
	getPlayer.AddRespStructure(PlayerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getPlayer)

	// POST /api/players/{playerID}/cases
	upsertCase, _ := r.NewOperationContext(http.MethodPost, "/api/players/{playerID}/cases")
	upsertCase.SetSummary("Record case result")
	upsertCase.SetDescription("Creates or updates the player's result for one game.")
	upsertCase.AddReqStructure(UpsertCaseRequest{})
	upsertCase.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	upsertCase.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	upsertCase.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(upsertCase)

	// GET /api/leaderboard
	leaderboard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	leaderboard.SetSummary("Leaderboard")
	leaderboard.SetDescription("Returns players ranked by total score across solved cases.")
	leaderboard.AddRespStructure([]LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(leaderboard)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/games
	adminList, _ := r.NewOperationContext(http.MethodGet, "/api/admin/games")
	adminList.SetSummary("List all games")
	adminList.SetDescription("Returns every game regardless of publication state. Requires admin_session cookie.")
	adminList.AddRespStructure([]GameSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	adminList.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(adminList)

	// POST /api/admin/games
	createGame, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games")
	createGame.SetSummary("Create game")
	createGame.SetDescription("Creates a placeholder game and starts asynchronous generation. Requires admin_session cookie.")
	createGame.AddReqStructure(CreateGameRequest{})
	createGame.AddRespStructure(CreateGameResponse{}, openapi.WithHTTPStatus(http.StatusAccepted))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createGame)

	// POST /api/admin/games/batch
	batchCreate, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/batch")
	batchCreate.SetSummary("Batch-create games")
	batchCreate.SetDescription("Starts generation of several games, deriving diverse themes when fewer are supplied. Requires admin_session cookie.")
	batchCreate.AddReqStructure(BatchCreateRequest{})
	batchCreate.AddRespStructure(BatchCreateResponse{}, openapi.WithHTTPStatus(http.StatusAccepted))
	batchCreate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	batchCreate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(batchCreate)

	// POST /api/admin/games/{gameID}/publish
	publish, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/publish")
	publish.SetSummary("Publish game")
	publish.SetDescription("Makes a completed game visible to players. Requires admin_session cookie.")
	publish.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	publish.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	publish.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	publish.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(publish)

	// POST /api/admin/games/{gameID}/unpublish
	unpublish, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/unpublish")
	unpublish.SetSummary("Unpublish game")
	unpublish.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	unpublish.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	unpublish.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(unpublish)

	// DELETE /api/admin/games/{gameID}
	deleteGame, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/games/{gameID}")
	deleteGame.SetSummary("Delete game")
	deleteGame.SetDescription("Deletes a game and all its generated content. Requires admin_session cookie.")
	deleteGame.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteGame)

	// GET /api/admin/themes/suggest
	suggest, _ := r.NewOperationContext(http.MethodGet, "/api/admin/themes/suggest")
	suggest.SetSummary("Suggest themes")
	suggest.SetDescription("Returns theme candidates that avoid recently used ones. Requires admin_session cookie.")
	suggest.AddRespStructure(ThemeSuggestResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	suggest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(suggest)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
