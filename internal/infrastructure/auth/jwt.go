// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

const (
	// defaultJWKSURL is the default Heimdall JWKS endpoint inside the cluster.
	defaultJWKSURL = "http://heimdall:4457/.well-known/jwks"
	// defaultAudience is the expected audience claim for this service.
	defaultAudience = "rehearsal-service"
	// jwksCacheTTL is how long fetched signing keys are cached.
	jwksCacheTTL = 5 * time.Minute
)

// IJWTAuth parses an authenticated principal from a bearer token.
type IJWTAuth interface {
	ParsePrincipal(ctx context.Context, bearerToken string, logger *slog.Logger) (string, error)
}

// HeimdallClaims are the custom claims Heimdall adds to forwarded tokens.
type HeimdallClaims struct {
	Principal string `json:"principal"`
	Email     string `json:"email,omitempty"`
}

// Validate checks that the required claims are present.
func (c *HeimdallClaims) Validate(_ context.Context) error {
	if c.Principal == "" {
		return errors.New("principal must be provided")
	}
	return nil
}

// JWTAuthConfig configures JWT validation.
type JWTAuthConfig struct {
	// JWKSURL is the endpoint serving the token signing keys.
	JWKSURL string
	// Audience is the expected audience claim.
	Audience string
	// MockLocalPrincipal, when set, bypasses token validation and returns
	// this principal for every request. Local development only.
	MockLocalPrincipal string
}

// JWTAuth validates Heimdall-issued bearer tokens.
type JWTAuth struct {
	config    JWTAuthConfig
	validator *validator.Validator
}

// NewJWTAuth creates a new JWT authenticator from the given configuration.
func NewJWTAuth(config JWTAuthConfig) (*JWTAuth, error) {
	if config.JWKSURL == "" {
		config.JWKSURL = defaultJWKSURL
	}
	if config.Audience == "" {
		config.Audience = defaultAudience
	}

	jwksURL, err := url.Parse(config.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWKS URL %q: %w", config.JWKSURL, err)
	}

	issuerURL := &url.URL{Scheme: jwksURL.Scheme, Host: jwksURL.Host}
	provider := jwks.NewCachingProvider(issuerURL, jwksCacheTTL, jwks.WithCustomJWKSURI(jwksURL))

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.PS256,
		issuerURL.String(),
		[]string{config.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &HeimdallClaims{}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up JWT validator: %w", err)
	}

	return &JWTAuth{
		config:    config,
		validator: jwtValidator,
	}, nil
}

// ParsePrincipal validates the bearer token and returns the principal it
// carries.
func (a *JWTAuth) ParsePrincipal(ctx context.Context, bearerToken string, logger *slog.Logger) (string, error) {
	if a.config.MockLocalPrincipal != "" {
		logger.WarnContext(ctx, "skipping token validation, returning mock principal",
			"principal", a.config.MockLocalPrincipal)
		return a.config.MockLocalPrincipal, nil
	}

	if a.validator == nil {
		return "", errors.New("JWT validator is not set up")
	}

	parsed, err := a.validator.ValidateToken(ctx, bearerToken)
	if err != nil {
		logger.DebugContext(ctx, "token validation failed", "error", err)
		return "", fmt.Errorf("invalid token: %w", err)
	}

	validatedClaims, ok := parsed.(*validator.ValidatedClaims)
	if !ok {
		return "", errors.New("unexpected validated claims type")
	}

	claims, ok := validatedClaims.CustomClaims.(*HeimdallClaims)
	if !ok {
		return "", errors.New("unexpected custom claims type")
	}

	return claims.Principal, nil
}

// Ensure JWTAuth implements IJWTAuth
var _ IJWTAuth = (*JWTAuth)(nil)
