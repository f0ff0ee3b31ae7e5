// Wiring tests for NewRouter: public routes respond, protected routes demand
// a JWT, and the full register/create/suggest path works end to end.
package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/plumenote/plume/internal/domain/suggest"
	"github.com/plumenote/plume/internal/infra/config"
	"github.com/plumenote/plume/internal/infra/sqlite"
)

func TestMain(m *testing.M) {
	os.Setenv("PLUME_JWT_SECRET", "test-secret-key-32-chars-min!!!") //nolint:errcheck
	os.Exit(m.Run())
}

func mustOpenAPITestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("mustOpenAPITestDB: NewDB: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("mustOpenAPITestDB: MigrateUp: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	router, manager := NewRouter(mustOpenAPITestDB(t), config.Default())
	t.Cleanup(manager.Close)
	return router
}

func TestNewRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("expected body to contain 'ok', got %q", w.Body.String())
	}
}

func TestNewRouter_DocumentsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated /api/v1/documents, got %d", w.Code)
	}
}

func TestNewRouter_RegisterCreateAndSuggestFlow(t *testing.T) {
	router := newTestRouter(t)

	// Register to obtain a token.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"ada@example.com","password":"pw-123","workspaceName":"W"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &auth); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	// Create a document.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents",
		strings.NewReader(`{"title":"Resume","content":"Experience: built X."}`))
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create document: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var doc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}

	// Read its suggestion state.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+doc.ID+"/suggestions", nil)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get suggestions: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var state struct {
		State       string               `json:"state"`
		AutoRefresh bool                 `json:"autoRefresh"`
		Suggestions []suggest.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode suggestion state: %v", err)
	}
	if state.State != "idle" || !state.AutoRefresh {
		t.Fatalf("unexpected suggestion state: %+v", state)
	}
}
