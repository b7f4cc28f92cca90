package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bugswriter/shiosayi-backend/pkg/requestcontext"
	"github.com/bugswriter/shiosayi-backend/pkg/secrets"
)

// AdminCredential verifies the operator bearer token. When Hash is set the
// plaintext is never kept in memory past startup; otherwise Token is compared
// in constant time.
type AdminCredential struct {
	Token string
	Hash  string
}

// Configured reports whether any admin credential was provided. Admin routes
// must fail closed when it is not.
func (c AdminCredential) Configured() bool {
	return c.Token != "" || c.Hash != ""
}

func (c AdminCredential) matches(presented string) bool {
	if c.Hash != "" {
		return secrets.VerifyHash(presented, c.Hash)
	}
	if c.Token == "" {
		return false
	}
	return secrets.Equal(presented, c.Token)
}

// RequireAdmin gates a route on the operator bearer token.
func RequireAdmin(cred AdminCredential, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "Authorization header is missing or malformed.")
				return
			}
			if !cred.Configured() || !cred.matches(token) {
				logger.Warn("admin token rejected",
					"request_id", requestcontext.RequestID(r.Context()),
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusForbidden, "Invalid or missing admin token.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
