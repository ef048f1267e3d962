package web

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// requireAuth checks the bearer token against the configured bcrypt hash.
// With no hash configured the API is open.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	if len(s.authHash) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok || bcrypt.CompareHashAndPassword(s.authHash, []byte(token)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimPrefix(h, prefix), true
}
