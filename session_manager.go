package accounts

import (
	"context"
)

// LoginWithUser issues a session for an already-authenticated user. This is
// the server-trusted path; callers wrap it with their own checks and hooks.
func (a *Accounts) LoginWithUser(ctx context.Context, user *User, conn ConnectionInfo) (*LoginResult, error) {
	if user == nil {
		return nil, ErrUserNotFound
	}

	token, err := a.tokenGen.CreateToken(ctx, user)
	if err != nil {
		return nil, err
	}

	sessionID, err := a.store.CreateSession(ctx, user.ID.String(), token, conn, nil)
	if err != nil {
		return nil, err
	}

	tokens, err := a.tokens.MintTokens(ctx, user, SessionData{
		Token:  token,
		UserID: user.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		SessionID: sessionID,
		Tokens:    tokens,
		User:      a.Sanitize(user),
	}, nil
}

// RefreshTokens mints a new token pair for a valid session. The refresh
// token proves recency; the paired access token only carries the session
// claim, so its expiry is deliberately not checked here.
func (a *Accounts) RefreshTokens(ctx context.Context, accessToken, refreshToken string, conn ConnectionInfo) (*LoginResult, error) {
	result, err := a.refreshTokens(ctx, accessToken, refreshToken, conn)
	if err != nil {
		a.hooks.Emit(ctx, HookRefreshTokensError, HookPayload{Connection: conn, Error: err})
		return nil, err
	}

	a.hooks.Emit(ctx, HookRefreshTokensSuccess, HookPayload{
		Connection: conn,
		User:       result.User,
		SessionID:  result.SessionID,
	})

	return result, nil
}

func (a *Accounts) refreshTokens(ctx context.Context, accessToken, refreshToken string, conn ConnectionInfo) (*LoginResult, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, ErrInvalidTokens
	}

	if err := a.tokens.VerifyRefreshToken(refreshToken); err != nil {
		return nil, err
	}

	claims, err := a.tokens.VerifyAccessToken(accessToken, true)
	if err != nil {
		return nil, err
	}

	session, err := a.store.FindSessionByToken(ctx, claims.Data.Token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if !session.Valid {
		return nil, ErrInvalidSession
	}

	user, err := a.store.FindUserByID(ctx, session.UserID.String())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	sessionToken := session.Token
	if a.config.CreateNewSessionTokenOnRefresh {
		rotated, err := a.tokenGen.CreateToken(ctx, user)
		if err != nil {
			return nil, err
		}
		// Persist the rotation before minting so issued tokens never point
		// at an unstored session token.
		if err := a.store.UpdateSession(ctx, session.ID.String(), conn, rotated); err != nil {
			return nil, err
		}
		sessionToken = rotated
	} else if err := a.store.UpdateSession(ctx, session.ID.String(), conn, ""); err != nil {
		return nil, err
	}

	tokens, err := a.tokens.MintTokens(ctx, user, SessionData{
		Token:          sessionToken,
		UserID:         user.ID.String(),
		IsImpersonated: claims.Data.IsImpersonated,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		SessionID: session.ID.String(),
		Tokens:    tokens,
		User:      a.Sanitize(user),
	}, nil
}

// ResumeSession resolves a currently valid access token to its user. The
// stateful default checks the session row; stateless mode trusts the signed
// claims and skips the store lookup.
func (a *Accounts) ResumeSession(ctx context.Context, accessToken string) (*User, error) {
	user, err := a.resumeSession(ctx, accessToken)
	if err != nil {
		a.hooks.Emit(ctx, HookResumeSessionError, HookPayload{Error: err})
		return nil, err
	}

	a.hooks.Emit(ctx, HookResumeSessionSuccess, HookPayload{User: user})
	return user, nil
}

func (a *Accounts) resumeSession(ctx context.Context, accessToken string) (*User, error) {
	claims, err := a.tokens.VerifyAccessToken(accessToken, false)
	if err != nil {
		return nil, err
	}

	var session *Session
	if !a.config.UseStatelessSession {
		session, err = a.store.FindSessionByToken(ctx, claims.Data.Token)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		if !session.Valid {
			return nil, ErrInvalidSession
		}
		if session.UserID.String() != claims.Data.UserID {
			// Claims disagree with server state; never remediated, always
			// rejected.
			a.logger.Warn("access token user does not match session user",
				"session", session.ID.String(), "claim_user", claims.Data.UserID)
			return nil, ErrTokenVerificationFailed
		}
	}

	user, err := a.store.FindUserByID(ctx, claims.Data.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if a.config.ResumeSessionValidator != nil {
		if err := a.config.ResumeSessionValidator(ctx, user, session); err != nil {
			return nil, err
		}
	}

	return a.Sanitize(user), nil
}

// FindSessionByAccessToken is the shared token-to-session primitive used by
// logout and impersonation. Decode failures and missing sessions raise
// distinct errors.
func (a *Accounts) FindSessionByAccessToken(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	claims, err := a.tokens.VerifyAccessToken(accessToken, false)
	if err != nil {
		return nil, err
	}

	session, err := a.store.FindSessionByToken(ctx, claims.Data.Token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// Logout invalidates the session behind the access token. Invalidation is
// terminal; the session never becomes valid again.
func (a *Accounts) Logout(ctx context.Context, accessToken string) error {
	if err := a.logout(ctx, accessToken); err != nil {
		a.hooks.Emit(ctx, HookLogoutError, HookPayload{Error: err})
		return err
	}
	return nil
}

func (a *Accounts) logout(ctx context.Context, accessToken string) error {
	session, err := a.FindSessionByAccessToken(ctx, accessToken)
	if err != nil {
		return err
	}

	if !session.Valid {
		return ErrInvalidSession
	}

	if err := a.store.InvalidateSession(ctx, session.ID.String()); err != nil {
		return err
	}

	a.hooks.Emit(ctx, HookLogoutSuccess, HookPayload{SessionID: session.ID.String()})
	return nil
}
