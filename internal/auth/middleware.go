package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gantt/internal/models"
)

var (
	// ErrNoToken means the Authorization header is absent or not a bearer header.
	ErrNoToken = errors.New("no token provided")
	// ErrUnauthenticated means a bearer token was presented but refused.
	ErrUnauthenticated = errors.New("invalid or expired token")
)

// TokenValidator decodes a session token. *Sessions implements it.
type TokenValidator interface {
	Validate(token string) (models.Identity, error)
}

type identityKey struct{}

const ginIdentityKey = "identity"

// BearerToken extracts <token> from "Bearer <token>".
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// Authorize decides a request from its Authorization header alone.
func Authorize(v TokenValidator, header string) (models.Identity, error) {
	token, ok := BearerToken(header)
	if !ok {
		return models.Identity{}, ErrNoToken
	}
	identity, err := v.Validate(token)
	if err != nil {
		return models.Identity{}, ErrUnauthenticated
	}
	return identity, nil
}

// RequireAuth rejects requests without a valid session token with 401 and
// attaches the identity of accepted ones to the gin and request contexts.
func RequireAuth(v TokenValidator, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		identity, err := Authorize(v, c.GetHeader("Authorization"))
		if err != nil {
			logger.Warn("request unauthenticated", slog.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(ginIdentityKey, identity)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity attached by RequireAuth.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(models.Identity)
	return identity, ok
}

// CurrentIdentity is IdentityFromContext for gin handlers.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	if v, ok := c.Get(ginIdentityKey); ok {
		identity, ok := v.(models.Identity)
		return identity, ok
	}
	return IdentityFromContext(c.Request.Context())
}
