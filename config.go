package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// Config holds orchestrator options. Build it from DefaultConfig and override
// fields; it is validated at construction and never mutated afterwards.
type Config struct {
	// TokenSecret is the HMAC key for the default signer. Ignored when a
	// custom TokenSigner is provided.
	TokenSecret string
	// TokenSigner overrides the default HMAC signer, e.g. for asymmetric keys.
	TokenSigner TokenSigner

	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// AmbiguousErrorMessages collapses "not found" and "unauthorized"
	// outcomes where identity enumeration is a concern.
	AmbiguousErrorMessages bool
	// EnableAutologin issues a session right after registration. Mutually
	// exclusive with AmbiguousErrorMessages.
	EnableAutologin bool
	// UseStatelessSession resumes sessions from signed claims alone, trading
	// revocability for zero store round trips.
	UseStatelessSession bool
	// CreateNewSessionTokenOnRefresh rotates the opaque session token every
	// refresh, invalidating previously issued access tokens for resume.
	CreateNewSessionTokenOnRefresh bool

	// ImpersonationAuthorize decides whether caller may impersonate target.
	// Impersonation is denied for every caller while this is nil.
	ImpersonationAuthorize func(ctx context.Context, caller, target *User) (bool, error)
	// ResumeSessionValidator may reject a resume after user and session are
	// loaded. In stateless mode the session argument is nil.
	ResumeSessionValidator func(ctx context.Context, user *User, session *Session) error
	// UserSanitizer runs after the default Services strip, receiving the
	// Omit and Pick helpers for additional redaction.
	UserSanitizer UserSanitizerFunc
	// TokenCreator replaces the default random session token generator.
	TokenCreator TokenGenerator
	// ClaimsDecorator injects custom claims into access tokens at mint time.
	ClaimsDecorator ClaimsDecorator

	logger Logger
}

// DefaultConfig returns the baseline configuration: short-lived access
// tokens, week-long refresh tokens, ambiguous errors on.
func DefaultConfig() Config {
	return Config{
		Issuer:                 "go-accounts",
		AccessTokenTTL:         90 * time.Minute,
		RefreshTokenTTL:        7 * 24 * time.Hour,
		AmbiguousErrorMessages: true,
	}
}

func (c Config) withDefaults() Config {
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 90 * time.Minute
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.Issuer == "" {
		c.Issuer = "go-accounts"
	}
	if c.TokenCreator == nil {
		c.TokenCreator = randomTokenGenerator{}
	}
	if c.logger == nil {
		c.logger = defLogger{}
	}
	return c
}

// Validate enforces construction-time invariants.
func (c Config) Validate() error {
	if c.AmbiguousErrorMessages && c.EnableAutologin {
		return ErrAmbiguousAutologin
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token expirations must be positive", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return errors.New("refresh token expiration must exceed access token expiration", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	if c.TokenSigner != nil {
		return nil
	}

	if err := validation.ValidateStruct(&c,
		validation.Field(&c.TokenSecret, validation.Required, validation.Length(16, 0)),
	); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid accounts configuration").
			WithCode(errors.CodeBadRequest)
	}

	return nil
}
