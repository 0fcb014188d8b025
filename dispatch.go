package accounts

import (
	"context"
)

// AuthenticateWithService proves identity through the named service without
// creating a session.
func (a *Accounts) AuthenticateWithService(ctx context.Context, serviceName string, params map[string]any, conn ConnectionInfo) (bool, error) {
	user, err := a.authenticateWithService(ctx, serviceName, params)
	if err != nil {
		a.hooks.Emit(ctx, HookAuthenticateError, HookPayload{
			Service:    serviceName,
			Connection: conn,
			Params:     params,
			User:       a.Sanitize(user),
			Error:      err,
		})
		return false, err
	}

	a.hooks.Emit(ctx, HookAuthenticateSuccess, HookPayload{
		Service:    serviceName,
		Connection: conn,
		Params:     params,
		User:       a.Sanitize(user),
	})

	return true, nil
}

// LoginWithService proves identity through the named service and issues a
// session. Exactly one session row is created per successful call.
func (a *Accounts) LoginWithService(ctx context.Context, serviceName string, params map[string]any, conn ConnectionInfo) (*LoginResult, error) {
	result, user, err := a.loginWithService(ctx, serviceName, params, conn)
	if err != nil {
		a.hooks.Emit(ctx, HookLoginError, HookPayload{
			Service:    serviceName,
			Connection: conn,
			Params:     params,
			User:       a.Sanitize(user),
			Error:      err,
		})
		return nil, err
	}

	a.hooks.Emit(ctx, HookLoginSuccess, HookPayload{
		Service:    serviceName,
		Connection: conn,
		Params:     params,
		User:       result.User,
		SessionID:  result.SessionID,
	})

	return result, nil
}

// loginWithService also returns whatever user was resolved before the failure
// so the error hook payload can carry it.
func (a *Accounts) loginWithService(ctx context.Context, serviceName string, params map[string]any, conn ConnectionInfo) (*LoginResult, *User, error) {
	user, err := a.authenticateWithService(ctx, serviceName, params)
	if err != nil {
		return nil, user, err
	}

	// Serial validation point: runs to completion before any session exists.
	if err := a.hooks.RunValidateLogin(ctx, user); err != nil {
		a.logger.Warn("login rejected by validator", "service", serviceName, "user", user.ID.String(), "error", err)
		return nil, user, err
	}

	result, err := a.LoginWithUser(ctx, user, conn)
	if err != nil {
		return nil, user, err
	}

	return result, user, nil
}

// authenticateWithService returns the resolved user even on the deactivation
// failure; callers must treat a non-nil error as authoritative.
func (a *Accounts) authenticateWithService(ctx context.Context, serviceName string, params map[string]any) (*User, error) {
	svc, err := a.resolveService(serviceName)
	if err != nil {
		a.logger.Warn("unknown authentication service", "service", serviceName)
		return nil, err
	}

	user, err := svc.Authenticate(ctx, params)
	if err != nil {
		a.logger.Error("service authentication error", "service", serviceName, "error", err)
		return nil, err
	}

	if user == nil {
		return nil, ErrAuthenticationFailed
	}

	if user.Deactivated {
		return user, ErrUserDeactivated
	}

	return user, nil
}
