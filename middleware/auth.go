package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/medflow/intake/models"
	"github.com/medflow/intake/security"
	"github.com/medflow/intake/utils"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware resolves the caller's identity from a Bearer token. The
// intake surface serves anonymous users too (they can fill drafts before
// signing in), so a missing or invalid token yields an anonymous request,
// not a 401; handlers that need an identity enforce it themselves.
type AuthMiddleware struct {
	jwt *security.JWTManager
}

func NewAuthMiddleware(jwt *security.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			utils.Debug(r.Context(), "rejected bearer token", map[string]interface{}{
				"error": err.Error(),
			})
			next.ServeHTTP(w, r)
			return
		}

		identity := claims.Identity()
		ctx := context.WithValue(r.Context(), identityKey, identity)
		ctx = utils.WithUserID(ctx, identity.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFrom returns the authenticated identity on the context, or nil
// for anonymous callers.
func IdentityFrom(ctx context.Context) *models.Identity {
	if identity, ok := ctx.Value(identityKey).(*models.Identity); ok {
		return identity
	}
	return nil
}

// WithIdentity is the test hook for stamping an identity onto a context.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
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
