package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type contextKey string

const claimsContextKey contextKey = "identity-claims"

// ClaimsFromContext returns the verified identity claims attached by
// RequireSignin, or nil when the request was not gated.
func ClaimsFromContext(ctx context.Context) *IdentityClaims {
	claims, _ := ctx.Value(claimsContextKey).(*IdentityClaims)
	return claims
}

// RequireSignin gates a handler behind a valid identity token read from the
// session cookie. Verified claims are attached to the request context.
func RequireSignin(tokens *TokenIssuer, transport SessionTransport, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := transport.ReadTokenCookie(r)
			if tokenString == "" {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			claims, err := tokens.Verify(tokenString)
			if err != nil {
				logger.Debugw("token rejected", "reason", err)
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CsrfMiddleware verifies the double-submit token on every state-changing
// request. It wraps the whole mux, so it runs after routes are registered
// and before any mutating handler executes. Safe verbs pass through.
func CsrfMiddleware(guard CsrfGuard, transport SessionTransport, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			secret := transport.ReadCsrfSecretCookie(r)
			token := r.Header.Get(CsrfHeaderName)
			if secret == "" || token == "" {
				writeJSONError(w, http.StatusForbidden, "Invalid CSRF token")
				return
			}
			if err := guard.VerifyToken(secret, token); err != nil {
				logger.Debugw("csrf rejected", "path", r.URL.Path)
				writeJSONError(w, http.StatusForbidden, "Invalid CSRF token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
