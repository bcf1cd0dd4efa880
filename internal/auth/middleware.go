package auth

import (
	"context"
	"net/http"
	"strings"

	"canteen-system/internal/apperror"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
	"canteen-system/internal/web"
)

type contextKey int

const principalKey contextKey = iota

// Verifier turns a bearer token into a principal
type Verifier interface {
	Verify(token string) (*models.Principal, error)
}

// WithPrincipal stores p in ctx
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the authenticated caller, if any
func PrincipalFrom(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*models.Principal)
	return p, ok && p != nil
}

// Current returns the authenticated caller or an unauthorized error
func Current(ctx context.Context) (*models.Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return nil, apperror.Unauthorized("Authentication credentials were not provided")
	}
	return p, nil
}

// Authenticate rejects requests without a valid bearer token
func Authenticate(v Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	rs := web.NewResponder(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				rs.Error(w, r, "authentication_failed",
					apperror.Unauthorized("Authentication credentials were not provided"))
				return
			}

			principal, err := v.Verify(token)
			if err != nil {
				rs.Error(w, r, "authentication_failed", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireCapability rejects authenticated callers lacking the named capability
func RequireCapability(name string, log *logger.Logger) func(http.Handler) http.Handler {
	rs := web.NewResponder(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				rs.Error(w, r, "authorization_failed",
					apperror.Unauthorized("Authentication credentials were not provided"))
				return
			}
			if !principal.HasCapability(name) {
				log.Warn("authorization_failed", "Capability missing", web.RequestID(r.Context()), map[string]interface{}{
					"user_id":    principal.UserID,
					"capability": name,
				})
				rs.Error(w, r, "authorization_failed",
					apperror.Permission("You do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
