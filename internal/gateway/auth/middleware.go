package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey struct{}

// ClaimsFromContext returns the claims stored by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok
}

// Middleware rejects requests without a valid bearer token. When the route
// carries an {area} path value, the token must also allow that area.
// Browsers cannot set headers on a websocket upgrade, so a request without
// an Authorization header may pass the token as ?access_token=.
func (s *TokenService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("access_token")
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" && tokenString == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			return
		}

		if authHeader != "" {
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization header format")
				return
			}
			tokenString = token
		}

		claims, err := s.Validate(tokenString)
		if err != nil {
			slog.Debug("Rejected bearer token", "error", err, "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}

		if area := r.PathValue("area"); area != "" && !claims.AllowsArea(area) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Token does not grant access to this area")
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}
