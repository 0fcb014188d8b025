package accounts

import (
	"context"
)

// Accounts orchestrates authentication services, sessions, and tokens. All
// mutable state lives in the Store; the registry is fixed at construction
// and the hook bus is the only other shared structure.
type Accounts struct {
	store    Store
	config   Config
	services map[string]AuthenticationService
	tokens   *TokenService
	hooks    *Hooks
	tokenGen TokenGenerator
	logger   Logger
}

// New validates the configuration and builds the orchestrator. Services are
// registered by name and receive the Store.
func New(store Store, cfg Config, services ...AuthenticationService) (*Accounts, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Accounts{
		store:    store,
		config:   cfg,
		services: make(map[string]AuthenticationService, len(services)),
		tokens:   NewTokenService(cfg, cfg.logger),
		hooks:    NewHooks(cfg.logger),
		tokenGen: cfg.TokenCreator,
		logger:   cfg.logger,
	}

	for _, svc := range services {
		svc.SetStore(store)
		a.services[svc.Name()] = svc
		if cfg.EnableAutologin {
			if setter, ok := svc.(AutologinSetter); ok {
				setter.SetAutologin(a.LoginWithUser)
			}
		}
	}

	return a, nil
}

// WithLogger replaces the logger on the orchestrator and its token service.
func (a *Accounts) WithLogger(logger Logger) *Accounts {
	if logger == nil {
		return a
	}
	a.logger = logger
	a.config.logger = logger
	a.tokens = NewTokenService(a.config, logger)
	a.hooks.logger = logger
	return a
}

// Hooks exposes the lifecycle event bus for subscriptions.
func (a *Accounts) Hooks() *Hooks {
	return a.hooks
}

// TokenService returns the token codec used by this orchestrator.
func (a *Accounts) TokenService() *TokenService {
	return a.tokens
}

// Sanitize strips sensitive fields from a user the same way every operation
// result does.
func (a *Accounts) Sanitize(user *User) *User {
	return SanitizeUser(user, a.config.UserSanitizer)
}

// DeactivateUser marks the user deactivated; subsequent logins fail with
// ErrUserDeactivated. Existing sessions stay valid until invalidated.
func (a *Accounts) DeactivateUser(ctx context.Context, userID string) error {
	if err := a.store.SetUserDeactivated(ctx, userID, true); err != nil {
		return err
	}
	a.hooks.Emit(ctx, HookUserDeactivated, HookPayload{Params: map[string]any{"userId": userID}})
	return nil
}

// ActivateUser clears the deactivated flag.
func (a *Accounts) ActivateUser(ctx context.Context, userID string) error {
	if err := a.store.SetUserDeactivated(ctx, userID, false); err != nil {
		return err
	}
	a.hooks.Emit(ctx, HookUserActivated, HookPayload{Params: map[string]any{"userId": userID}})
	return nil
}

// InvalidateAllSessions logs the user out everywhere. Stateless resumes keep
// working until token expiry; that is the documented trade-off.
func (a *Accounts) InvalidateAllSessions(ctx context.Context, userID string) error {
	return a.store.InvalidateAllSessions(ctx, userID)
}

func (a *Accounts) resolveService(name string) (AuthenticationService, error) {
	svc, ok := a.services[name]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}
