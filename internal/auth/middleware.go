package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pressroom/pressroom/internal/observability"
	"github.com/pressroom/pressroom/internal/shared"
)

// Middleware resolves bearer tokens into request-scoped claims.
type Middleware struct {
	Issuer  *TokenIssuer
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// ResolveToken validates an Authorization header when present and stores the
// claims in context. Requests without a token pass through anonymously;
// RequireAuth decides whether that is acceptable per route.
func (m *Middleware) ResolveToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.Issuer.Validate(token)
		if err != nil {
			kind := failureKind(err)
			if m.Logger != nil {
				m.Logger.Warn("bearer token rejected",
					slog.String("kind", kind),
					slog.String("path", r.URL.Path))
			}
			m.Metrics.CountAuthFailure(kind)
			shared.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithClaims(r.Context(), claims)))
	})
}

// RequireAuth rejects requests that did not resolve to an identity.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.ClaimsFromContext(r.Context()) == nil {
			shared.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose identity lacks the admin role.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := shared.ClaimsFromContext(r.Context())
		if claims == nil {
			shared.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		if !claims.IsAdmin() {
			shared.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "signature"
	default:
		return "malformed"
	}
}
