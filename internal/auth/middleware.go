package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/calebmorse/taskdeck/internal/models"
	pkghttp "github.com/calebmorse/taskdeck/pkg/http"
)

type contextKey string

const (
	// IdentityContextKey is the key for the resolved identity in the request context.
	IdentityContextKey contextKey = "identity"
)

// Identity is what the gate attaches to the request context after a token has
// been validated and the account re-resolved: the live identity and role, not
// whatever the token claimed at issuance.
type Identity struct {
	AccountID string
	Email     string
	Role      string
}

// AccountResolver fetches the current account for a token subject.
type AccountResolver interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// Middleware is the auth gate. It validates the bearer token, re-resolves the
// subject's account, and rejects if the account is gone or its current status
// is not active. Current status wins over token validity, so a suspended
// account's still-unexpired tokens fail here.
func Middleware(tm *TokenManager, accounts AccountResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := tm.Validate(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			account, err := accounts.GetByID(r.Context(), claims.AccountID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "account no longer exists")
					return
				}
				pkghttp.WriteInternalError(w, "internal server error")
				return
			}

			if account.Status != models.StatusActive {
				pkghttp.WriteUnauthorized(w, "account is not active")
				return
			}

			identity := &Identity{
				AccountID: account.ID,
				Email:     account.Email,
				Role:      account.Role,
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces that the resolved role is in the route's allowed set.
// Failure is a 403, distinct from the gate's 401s.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromRequest(r)
			if identity == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			if !allowed[identity.Role] {
				pkghttp.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromRequest extracts the resolved identity from the request context.
func IdentityFromRequest(r *http.Request) *Identity {
	return IdentityFromContext(r.Context())
}

// IdentityFromContext extracts the resolved identity from a context.
func IdentityFromContext(ctx context.Context) *Identity {
	identity, ok := ctx.Value(IdentityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}
