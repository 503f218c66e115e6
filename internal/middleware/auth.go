package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/2beens/gymcycle/internal/telemetry/tracing"
	"github.com/2beens/gymcycle/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const AuthTokenHeader = "X-GYMCYCLE-TOKEN"

type AuthMiddlewareHandler struct {
	appSecret    string
	allowedPaths map[string]bool
}

// NewAuthMiddlewareHandler guards all the routes with the mobile app secret.
// An empty secret disables the check (local development only).
func NewAuthMiddlewareHandler(appSecret string) *AuthMiddlewareHandler {
	if appSecret == "" {
		log.Warnln("app secret not set, auth check disabled")
	}
	return &AuthMiddlewareHandler{
		appSecret: appSecret,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,
		},
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.appSecret == "" || h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := r.Header.Get(AuthTokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(authToken), []byte(h.appSecret)) != 1 {
				log.Warnf("[invalid token] [auth middleware] unauthorized => %s, from %s", r.URL.Path, pkg.ClientIP(r))
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-auth-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
