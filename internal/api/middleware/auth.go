// Bearer JWT middleware. Reads Authorization: Bearer <token>, validates it,
// and injects user_id + workspace_id into the request context.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/plumenote/plume/internal/api/ctxkeys"
	pkgauth "github.com/plumenote/plume/pkg/auth"
)

// AuthMiddleware validates the Bearer JWT and injects claims into context.
// Used on all /api/v1/* routes; /auth/* and /health stay public.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearerToken(r)
		if tokenString == "" {
			writeUnauthorized(w, "missing or invalid Authorization header")
			return
		}

		claims, err := pkgauth.ParseJWT(tokenString)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := r.Context()
		ctx = ctxkeys.WithValue(ctx, ctxkeys.UserID, claims.UserID)
		ctx = ctxkeys.WithValue(ctx, ctxkeys.WorkspaceID, claims.WorkspaceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken pulls the token out of "Authorization: Bearer <token>".
// Returns "" for a missing header, wrong scheme, or empty token.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// writeUnauthorized writes a 401 JSON response in the same shape as
// writeError in the handlers package.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
