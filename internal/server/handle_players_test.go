package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateAndGetPlayer(t *testing.T) {
	sqlStore := setupStore(t)
	r := testRouter(t, sqlStore, &fakeAdapter{})

	body, _ := json.Marshal(CreatePlayerRequest{Name: "Maya", Avatar: "fox"})
	req := httptest.NewRequest(http.MethodPost, "/api/players", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created PlayerResponse
	json.NewDecoder(w.Body).Decode(&created)
	if created.ID == "" || created.Name != "Maya" {
		t.Fatalf("created = %+v", created)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/players/"+created.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got PlayerResponse
	json.NewDecoder(w.Body).Decode(&got)
	if got.Avatar != "fox" {
		t.Errorf("avatar = %q", got.Avatar)
	}
}

func TestCreatePlayerRequiresName(t *testing.T) {
	sqlStore := setupStore(t)
	r := testRouter(t, sqlStore, &fakeAdapter{})

	body, _ := json.Marshal(CreatePlayerRequest{Name: "   "})
	req := httptest.NewRequest(http.MethodPost, "/api/players", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCaseResultAndLeaderboard(t *testing.T) {
	sqlStore := setupStore(t)
	r := testRouter(t, sqlStore, &fakeAdapter{})
	cookie := loginAdmin(t, r, sqlStore)
	gameID := createGame(t, r, sqlStore, cookie)

	// Two players, one solves the case.
	newPlayer := func(name string) string {
		body, _ := json.Marshal(CreatePlayerRequest{Name: name})
		req := httptest.NewRequest(http.MethodPost, "/api/players", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("create player: %d", w.Code)
		}
		var resp PlayerResponse
		json.NewDecoder(w.Body).Decode(&resp)
		return resp.ID
	}
	maya := newPlayer("Maya")
	leo := newPlayer("Leo")

	recordCase := func(playerID string, solved bool, score int) {
		body, _ := json.Marshal(UpsertCaseRequest{GameID: gameID, Solved: solved, Score: score, CluePoints: 3})
		req := httptest.NewRequest(http.MethodPost, "/api/players/"+playerID+"/cases", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("record case: %d: %s", w.Code, w.Body.String())
		}
	}
	recordCase(maya, true, 120)
	recordCase(leo, false, 40)
	// Re-recording replaces the earlier result, not duplicates it.
	recordCase(maya, true, 150)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var entries []LeaderboardEntry
	json.NewDecoder(w.Body).Decode(&entries)

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].PlayerName != "Maya" || entries[0].TotalScore != 150 || entries[0].CasesSolved != 1 {
		t.Errorf("top entry = %+v", entries[0])
	}
	if entries[1].PlayerName != "Leo" || entries[1].CasesSolved != 0 {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestCaseResultUnknownGame(t *testing.T) {
	sqlStore := setupStore(t)
	r := testRouter(t, sqlStore, &fakeAdapter{})

	body, _ := json.Marshal(CreatePlayerRequest{Name: "Maya"})
	req := httptest.NewRequest(http.MethodPost, "/api/players", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var created PlayerResponse
	json.NewDecoder(w.Body).Decode(&created)

	body, _ = json.Marshal(UpsertCaseRequest{GameID: "ghost", Solved: true, Score: 10})
	req = httptest.NewRequest(http.MethodPost, "/api/players/"+created.ID+"/cases", bytes.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
