package accounts

import (
	"context"
)

var denied = &ImpersonationResult{Authorized: false}

// Impersonate opens a session for the target user while the caller's own
// session stays untouched and independently invalidatable. Without a
// configured authorization policy every request is denied.
func (a *Accounts) Impersonate(ctx context.Context, accessToken string, target ImpersonationTarget, conn ConnectionInfo) (*ImpersonationResult, error) {
	result, err := a.impersonate(ctx, accessToken, target, conn)
	if err != nil {
		a.hooks.Emit(ctx, HookImpersonationError, HookPayload{Connection: conn, Error: err})
		return nil, err
	}

	if result.Authorized {
		a.hooks.Emit(ctx, HookImpersonationSuccess, HookPayload{
			Connection: conn,
			User:       result.User,
		})
	}

	return result, nil
}

func (a *Accounts) impersonate(ctx context.Context, accessToken string, target ImpersonationTarget, conn ConnectionInfo) (*ImpersonationResult, error) {
	session, err := a.FindSessionByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if !session.Valid {
		return nil, ErrInvalidSession
	}

	caller, err := a.store.FindUserByID(ctx, session.UserID.String())
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, ErrUserNotFound
	}

	targetUser, err := a.resolveImpersonationTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if targetUser == nil {
		if a.config.AmbiguousErrorMessages {
			// Indistinguishable from a policy denial so target existence
			// never leaks.
			return denied, nil
		}
		return nil, ErrImpersonatedUserNotFound
	}

	if a.config.ImpersonationAuthorize == nil {
		return denied, nil
	}

	authorized, err := a.config.ImpersonationAuthorize(ctx, caller, targetUser)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return denied, nil
	}

	token, err := a.tokenGen.CreateToken(ctx, targetUser)
	if err != nil {
		return nil, err
	}

	sessionID, err := a.store.CreateSession(ctx, targetUser.ID.String(), token, conn, map[string]any{
		ExtraDataImpersonatorUserID: caller.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	tokens, err := a.tokens.MintTokens(ctx, targetUser, SessionData{
		Token:          token,
		UserID:         targetUser.ID.String(),
		IsImpersonated: true,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("impersonated session created",
		"impersonator", caller.ID.String(), "target", targetUser.ID.String(), "session", sessionID)

	return &ImpersonationResult{
		Authorized: true,
		Tokens:     &tokens,
		User:       a.Sanitize(targetUser),
	}, nil
}

// resolveImpersonationTarget performs at most one lookup, selected by the
// target variant.
func (a *Accounts) resolveImpersonationTarget(ctx context.Context, target ImpersonationTarget) (*User, error) {
	switch t := target.(type) {
	case TargetUserID:
		return a.store.FindUserByID(ctx, string(t))
	case TargetUsername:
		return a.store.FindUserByUsername(ctx, string(t))
	case TargetEmail:
		return a.store.FindUserByEmail(ctx, string(t))
	default:
		return nil, ErrImpersonatedUserNotFound
	}
}
