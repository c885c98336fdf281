package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware wymaga nagłówka "Authorization: Bearer <token>" dla /api/* i /logs*.
// An empty token disables the check.
func AuthMiddleware(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token == "" || !protected(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// Przeglądarki nie wysyłają nagłówków przy websocket, więc akceptujemy też ?token=
		provided := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if provided == "" {
			provided = r.URL.Query().Get("token")
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func protected(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/logs" || strings.HasPrefix(path, "/logs/")
}
