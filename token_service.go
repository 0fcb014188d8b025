package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenSigner is the boundary to the signing primitive. The default backs
// onto HMAC; inject an implementation over an asymmetric key pair if needed.
// Implementations never reimplement signature algorithms.
type TokenSigner interface {
	Sign(claims jwt.Claims) (string, error)
	Verify(raw string, claims jwt.Claims, opts ...jwt.ParserOption) error
}

type hmacSigner struct {
	key []byte
}

func (s hmacSigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}
	return signed, nil
}

func (s hmacSigner) Verify(raw string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key, nil
	}, opts...)
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}

// TokenService mints and verifies access/refresh token pairs over an
// injected TokenSigner.
type TokenService struct {
	signer     TokenSigner
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	decorator  ClaimsDecorator
	logger     Logger
}

// NewTokenService creates a TokenService from a validated Config.
func NewTokenService(cfg Config, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	signer := cfg.TokenSigner
	if signer == nil {
		signer = hmacSigner{key: []byte(cfg.TokenSecret)}
	}

	return &TokenService{
		signer:     signer,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		decorator:  normalizeClaimsDecorator(cfg.ClaimsDecorator),
		logger:     logger,
	}
}

// MintTokens signs a fresh access/refresh pair bound to the given session
// data. Decorators may add metadata; the data claim and registered claims
// are restored afterwards so decoration can not forge session state.
func (ts *TokenService) MintTokens(ctx context.Context, user *User, data SessionData) (Tokens, error) {
	now := time.Now()

	access := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   data.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
			ID:        uuid.NewString(),
		},
		Data: data,
	}

	registered := access.RegisteredClaims
	if err := ts.decorator.Decorate(ctx, user, access); err != nil {
		ts.logger.Error("claims decorator failed", "error", err)
		return Tokens{}, err
	}
	access.RegisteredClaims = registered
	access.Data = data

	accessToken, err := ts.signer.Sign(access)
	if err != nil {
		return Tokens{}, err
	}

	refresh := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   data.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.refreshTTL)),
			ID:        uuid.NewString(),
		},
	}

	refreshToken, err := ts.signer.Sign(refresh)
	if err != nil {
		return Tokens{}, err
	}

	return Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccessToken checks signature and structure, returning the decoded
// claims. When ignoreExpiry is set the claims clock is not validated; refresh
// uses this because the access token only carries the session claim there.
// Every failure surfaces as the same verification error.
func (ts *TokenService) VerifyAccessToken(raw string, ignoreExpiry bool) (*AccessClaims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	opts := ts.parserOptions()
	if ignoreExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &AccessClaims{}
	if err := ts.signer.Verify(raw, claims, opts...); err != nil {
		ts.logger.Debug("access token verification failed", "error", err)
		return nil, wrapVerificationError(err)
	}

	if claims.Data.Token == "" || claims.Data.UserID == "" {
		return nil, ErrTokenVerificationFailed
	}

	return claims, nil
}

// VerifyRefreshToken checks signature and expiry of a refresh token.
func (ts *TokenService) VerifyRefreshToken(raw string) error {
	if raw == "" {
		return ErrInvalidToken
	}

	claims := &RefreshClaims{}
	if err := ts.signer.Verify(raw, claims, ts.parserOptions()...); err != nil {
		ts.logger.Debug("refresh token verification failed", "error", err)
		return wrapVerificationError(err)
	}

	return nil
}

func (ts *TokenService) parserOptions() []jwt.ParserOption {
	opts := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ts.issuer))
	}
	return opts
}

// wrapVerificationError folds malformed, tampered, and expired outcomes into
// one uniform error so the API is not an oracle.
func wrapVerificationError(err error) error {
	return errors.Wrap(err, ErrTokenVerificationFailed.Category, ErrTokenVerificationFailed.Message).
		WithTextCode(TextCodeTokenVerification).
		WithCode(errors.CodeUnauthorized)
}
