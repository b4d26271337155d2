package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/coursewave/service-auth-go/internal/auth"
	"github.com/coursewave/service-auth-go/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// RequestIDMiddleware assigns each request a ksuid and echoes it in the
// X-Request-ID response header for log correlation.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = utilities.NewKSUID()
			}
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", lrw.Header().Get("X-Request-ID"),
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Clickjacking protection
			w.Header().Set("X-Frame-Options", "DENY")

			// Referrer policy
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")

			// HSTS only over TLS
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Deps carries the wired auth components the route table needs.
type Deps struct {
	Handler   *auth.Handler
	Tokens    *auth.TokenIssuer
	Transport auth.SessionTransport
	Guard     auth.CsrfGuard
}

// RegisterRoutes builds the static route table on the standard library's
// http.ServeMux. The CSRF guard wraps the whole mux so it runs after routes
// are registered and before any state-mutating handler executes.
func RegisterRoutes(logger *zap.SugaredLogger, d Deps) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/register", d.Handler.Register)
	mux.HandleFunc("POST /api/login", d.Handler.Login)
	mux.HandleFunc("GET /api/logout", d.Handler.Logout)
	mux.HandleFunc("GET /api/csrf-token", d.Handler.CsrfToken)
	mux.HandleFunc("POST /api/forgot-password", d.Handler.ForgotPassword)
	mux.HandleFunc("POST /api/reset-password", d.Handler.ResetPassword)

	signin := auth.RequireSignin(d.Tokens, d.Transport, logger)
	mux.Handle("GET /api/current-user", signin(http.HandlerFunc(d.Handler.CurrentUser)))

	// security headers sit outside the CSRF guard so its 403 rejections
	// carry them too
	csrf := auth.CsrfMiddleware(d.Guard, d.Transport, logger)
	handler := SecurityHeadersMiddleware()(csrf(mux))
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}
