// Package password implements the password AuthenticationService: bcrypt
// credential verification plus user registration with optional autologin.
package password

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
)

// ServiceName is the registry key for this strategy.
const ServiceName = "password"

// UserCreator is the extra persistence capability registration needs beyond
// the accounts Store. The bun repository manager implements it.
type UserCreator interface {
	CreateUser(ctx context.Context, user *accounts.User) (*accounts.User, error)
}

// Service authenticates users against a bcrypt hash stored under
// user.Services["password"].
type Service struct {
	store     accounts.Store
	logger    accounts.Logger
	autologin accounts.AutologinFunc
}

var (
	_ accounts.AuthenticationService = (*Service)(nil)
	_ accounts.AutologinSetter       = (*Service)(nil)
)

func New() *Service {
	return &Service{}
}

func (s *Service) WithLogger(logger accounts.Logger) *Service {
	s.logger = logger
	return s
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) SetStore(store accounts.Store) {
	s.store = store
}

// SetAutologin receives the login callback from the orchestrator. It is only
// called when autologin is enabled.
func (s *Service) SetAutologin(fn accounts.AutologinFunc) {
	s.autologin = fn
}

// Authenticate resolves {username|email, password} params to a user, or
// (nil, nil) when the identity or credential does not check out. Lookup
// misses and credential mismatches are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, params map[string]any) (*accounts.User, error) {
	identifier := firstString(params, "username", "email", "user")
	secret := firstString(params, "password")

	if err := validation.Validate(identifier, validation.Required); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "an identifier is required").
			WithCode(goerrors.CodeBadRequest)
	}
	if err := validation.Validate(secret, validation.Required); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "a password is required").
			WithCode(goerrors.CodeBadRequest)
	}

	user, err := s.findUser(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	hash := storedHash(user)
	if hash == "" {
		return nil, nil
	}

	if err := ComparePasswordAndHash(secret, hash); err != nil {
		return nil, nil
	}

	return user, nil
}

// CreateUserInput is the registration payload. Connection is stored with the
// autologin session when one is issued.
type CreateUserInput struct {
	Username   string                  `json:"username"`
	Email      string                  `json:"email"`
	Password   string                  `json:"password"`
	Connection accounts.ConnectionInfo `json:"connection,omitempty"`
}

func (i CreateUserInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email),
		validation.Field(&i.Password, validation.Required, validation.Length(8, 0)),
	)
}

// RegistrationResult is the outcome of CreateUser. Login is set only when the
// orchestrator injected an autologin callback.
type RegistrationResult struct {
	User  *accounts.User        `json:"user"`
	Login *accounts.LoginResult `json:"login,omitempty"`
}

// CreateUser registers a new identity with a bcrypt credential. The store
// must implement UserCreator. With autologin enabled the new user gets a
// session immediately, issued through the orchestrator's trusted login path.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*RegistrationResult, error) {
	if err := input.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload").
			WithCode(goerrors.CodeBadRequest)
	}

	creator, ok := s.store.(UserCreator)
	if !ok {
		return nil, goerrors.New("store does not support user creation", goerrors.CategoryInternal)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := creator.CreateUser(ctx, &accounts.User{
		Username: input.Username,
		Email:    input.Email,
		Services: map[string]any{
			ServiceName: map[string]any{"bcrypt": hash},
		},
	})
	if err != nil {
		return nil, err
	}

	result := &RegistrationResult{User: user}

	if s.autologin != nil {
		login, err := s.autologin(ctx, user, input.Connection)
		if err != nil {
			return nil, err
		}
		result.Login = login
	}

	return result, nil
}

func (s *Service) findUser(ctx context.Context, identifier string) (*accounts.User, error) {
	if strings.Contains(identifier, "@") {
		return s.store.FindUserByEmail(ctx, identifier)
	}
	return s.store.FindUserByUsername(ctx, identifier)
}

func storedHash(user *accounts.User) string {
	svc, ok := user.Services[ServiceName].(map[string]any)
	if !ok {
		return ""
	}
	hash, _ := svc["bcrypt"].(string)
	return hash
}

func firstString(params map[string]any, keys ...string) string {
	for _, key := range keys {
		if raw, ok := params[key]; ok {
			if value, ok := raw.(string); ok && value != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}
