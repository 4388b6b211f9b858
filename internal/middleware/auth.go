package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/fitlife/internal/auth"
	"github.com/2beens/fitlife/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const TokenHeader = "X-FITLIFE-TOKEN"

type AuthMiddlewareHandler struct {
	checker      auth.Checker
	allowedPaths map[string]bool
}

// NewAuthMiddlewareHandler protects every path except allowedPaths.
func NewAuthMiddlewareHandler(checker auth.Checker, allowedPaths ...string) *AuthMiddlewareHandler {
	allowed := make(map[string]bool, len(allowedPaths))
	for _, p := range allowedPaths {
		allowed[p] = true
	}
	return &AuthMiddlewareHandler{
		checker:      checker,
		allowedPaths: allowed,
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := strings.TrimSpace(r.Header.Get(TokenHeader))
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			userID, err := h.checker.UserID(ctx, authToken)
			if errors.Is(err, auth.ErrNotLogged) || errors.Is(err, auth.ErrTokenMalformed) {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "not-logged")
				return
			}
			if err != nil {
				log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "check-logged-err")
				span.RecordError(err)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}
