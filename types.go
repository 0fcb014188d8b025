package accounts

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Store is the persistence collaborator for users and sessions. Finders
// return (nil, nil) when no record matches; the orchestrator maps that to
// its typed errors.
type Store interface {
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	SetUserDeactivated(ctx context.Context, id string, deactivated bool) error

	CreateSession(ctx context.Context, userID, token string, conn ConnectionInfo, extra map[string]any) (string, error)
	FindSessionByToken(ctx context.Context, token string) (*Session, error)
	// UpdateSession re-stamps the session with fresh connection info. A
	// non-empty newToken replaces the session's opaque token.
	UpdateSession(ctx context.Context, sessionID string, conn ConnectionInfo, newToken string) error
	InvalidateSession(ctx context.Context, sessionID string) error
	InvalidateAllSessions(ctx context.Context, userID string) error
}

// AuthenticationService is a pluggable authenticator strategy. Authenticate
// resolves the params to a user or (nil, nil) when proof of identity fails.
type AuthenticationService interface {
	Name() string
	Authenticate(ctx context.Context, params map[string]any) (*User, error)
	SetStore(store Store)
}

// AutologinFunc issues a session for a freshly registered user. The
// orchestrator's LoginWithUser satisfies it.
type AutologinFunc func(ctx context.Context, user *User, conn ConnectionInfo) (*LoginResult, error)

// AutologinSetter is implemented by authentication services that can issue a
// session right after registration. The orchestrator injects the login
// callback at registration time, only when autologin is enabled.
type AutologinSetter interface {
	SetAutologin(fn AutologinFunc)
}

// TokenGenerator produces opaque session tokens. The default implementation
// draws random bytes; deterministic generators are only appropriate in tests.
type TokenGenerator interface {
	CreateToken(ctx context.Context, user *User) (string, error)
}

// ClaimsDecorator enriches access token claims before signing. Decorators may
// only touch extension fields; the session data claim is restored if mutated.
type ClaimsDecorator interface {
	Decorate(ctx context.Context, user *User, claims *AccessClaims) error
}

// ClaimsDecoratorFunc adapts a function to the ClaimsDecorator interface.
type ClaimsDecoratorFunc func(ctx context.Context, user *User, claims *AccessClaims) error

func (f ClaimsDecoratorFunc) Decorate(ctx context.Context, user *User, claims *AccessClaims) error {
	if f == nil {
		return nil
	}
	return f(ctx, user, claims)
}

type noopClaimsDecorator struct{}

func (noopClaimsDecorator) Decorate(context.Context, *User, *AccessClaims) error {
	return nil
}

func normalizeClaimsDecorator(d ClaimsDecorator) ClaimsDecorator {
	if d == nil {
		return noopClaimsDecorator{}
	}
	return d
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
