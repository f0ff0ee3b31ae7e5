package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/plumenote/plume/internal/api/ctxkeys"
	pkgauth "github.com/plumenote/plume/pkg/auth"
)

func TestMain(m *testing.M) {
	os.Setenv("PLUME_JWT_SECRET", "test-secret-key-32-chars-min!!!")
	os.Exit(m.Run())
}

func protectedHandler(t *testing.T, gotUserID, gotWorkspaceID *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUserID, _ = r.Context().Value(ctxkeys.UserID).(string)
		*gotWorkspaceID, _ = r.Context().Value(ctxkeys.WorkspaceID).(string)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token, err := pkgauth.GenerateJWT("user-1", "ws-1")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	var userID, workspaceID string
	handler := AuthMiddleware(protectedHandler(t, &userID, &workspaceID))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if userID != "user-1" || workspaceID != "ws-1" {
		t.Fatalf("claims not injected: user=%q workspace=%q", userID, workspaceID)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	var userID, workspaceID string
	handler := AuthMiddleware(protectedHandler(t, &userID, &workspaceID))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_WrongScheme(t *testing.T) {
	var userID, workspaceID string
	handler := AuthMiddleware(protectedHandler(t, &userID, &workspaceID))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	var userID, workspaceID string
	handler := AuthMiddleware(protectedHandler(t, &userID, &workspaceID))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", ""},
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"trailing space", "Bearer token  ", "token"},
		{"lowercase scheme", "bearer token", ""},
		{"empty token", "Bearer ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if got := extractBearerToken(req); got != tc.want {
				t.Errorf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}
