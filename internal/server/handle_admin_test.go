package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAdminLoginWrongPassword(t *testing.T) {
	sqlStore := setupStore(t)
	r := testRouter(t, sqlStore, &fakeAdapter{})
	loginAdmin(t, r, sqlStore)

	body, _ := json.Marshal(AdminLoginRequest{Email: "ops@example.com", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminMe(t *testing.T) {
	sqlStore := setupStore(t)
	r := testRouter(t, sqlStore, &fakeAdapter{})
	cookie := loginAdmin(t, r, sqlStore)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp AdminMeResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Email != "ops@example.com" {
		t.Errorf("email = %q", resp.Email)
	}

	// Without the cookie the session is rejected.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", w.Code)
	}
}

func TestAdminLogoutInvalidatesSession(t *testing.T) {
	sqlStore := setupStore(t)
	r := testRouter(t, sqlStore, &fakeAdapter{})
	cookie := loginAdmin(t, r, sqlStore)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}

	// The old session id no longer works.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestSeedAdminIdempotent(t *testing.T) {
	sqlStore := setupStore(t)
	r := testRouter(t, sqlStore, &fakeAdapter{})
	loginAdmin(t, r, sqlStore)

	// A second seed with different credentials must not replace the account.
	if err := SeedAdmin(context.Background(), discardLogger(), sqlStore, "other@example.com", "pw"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	count, err := sqlStore.AdminCount(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("admin count = %d", count)
	}
}
