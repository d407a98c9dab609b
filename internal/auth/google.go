package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"gantt/internal/models"
)

// ErrInvalidCredential is returned for any credential that cannot be
// verified, including when Google's key endpoint is unreachable.
var ErrInvalidCredential = errors.New("invalid credential")

// DefaultVerifyTimeout bounds a single verification, key fetch included.
const DefaultVerifyTimeout = 10 * time.Second

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// CredentialVerifier turns an external identity credential into an Identity.
type CredentialVerifier interface {
	Verify(ctx context.Context, credential string) (models.Identity, error)
}

// GoogleVerifier checks Google Sign-In ID tokens against Google's published
// signing keys and this application's OAuth client id.
type GoogleVerifier struct {
	validator *idtoken.Validator
	audience  string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewGoogleVerifier builds a verifier for tokens issued to clientID.
func NewGoogleVerifier(ctx context.Context, clientID string, timeout time.Duration, logger *slog.Logger) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is empty")
	}
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("create id token validator: %w", err)
	}
	return &GoogleVerifier{
		validator: validator,
		audience:  clientID,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Verify validates credential and extracts the identity claims. The cause of
// a failure is logged but never returned.
func (g *GoogleVerifier) Verify(ctx context.Context, credential string) (models.Identity, error) {
	if strings.TrimSpace(credential) == "" {
		return models.Identity{}, ErrInvalidCredential
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload, err := g.validator.Validate(ctx, credential, g.audience)
	if err != nil {
		g.logger.Warn("google credential rejected", slog.String("error", err.Error()))
		return models.Identity{}, ErrInvalidCredential
	}
	identity, err := identityFromPayload(payload)
	if err != nil {
		g.logger.Warn("google credential rejected", slog.String("error", err.Error()))
		return models.Identity{}, ErrInvalidCredential
	}
	return identity, nil
}

func identityFromPayload(p *idtoken.Payload) (models.Identity, error) {
	if p == nil {
		return models.Identity{}, errors.New("empty payload")
	}
	if _, ok := googleIssuers[p.Issuer]; !ok {
		return models.Identity{}, fmt.Errorf("unexpected issuer %q", p.Issuer)
	}
	identity := models.Identity{
		Subject: p.Subject,
		Email:   claimString(p.Claims, "email"),
		Name:    claimString(p.Claims, "name"),
		Picture: claimString(p.Claims, "picture"),
	}
	if identity.Email == "" {
		return models.Identity{}, errors.New("credential has no email claim")
	}
	return identity, nil
}

func claimString(claims map[string]any, key string) string {
	v, _ := claims[key].(string)
	return v
}
