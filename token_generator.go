package accounts

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/goliatone/go-errors"
)

const sessionTokenBytes = 32

// randomTokenGenerator is the default TokenGenerator: 32 bytes of entropy,
// URL-safe base64.
type randomTokenGenerator struct{}

func (randomTokenGenerator) CreateToken(_ context.Context, _ *User) (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, ErrSessionTokenGeneration.Category, ErrSessionTokenGeneration.Message).
			WithTextCode(TextCodeSessionTokenGeneration)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokenGeneratorFunc adapts a function to the TokenGenerator interface.
type TokenGeneratorFunc func(ctx context.Context, user *User) (string, error)

func (f TokenGeneratorFunc) CreateToken(ctx context.Context, user *User) (string, error) {
	return f(ctx, user)
}
