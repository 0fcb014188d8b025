package accounts_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginTestUser(t *testing.T, server *accounts.Accounts, store *fakeStore, username string) (*accounts.User, *accounts.LoginResult) {
	t.Helper()

	user := store.addUser(newTestUser(username))
	result, err := server.LoginWithUser(context.Background(), user, testConn)
	require.NoError(t, err)
	return user, result
}

func TestResumeSession(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		user, login := loginTestUser(t, server, store, "resume")

		resumed, err := server.ResumeSession(ctx, login.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resumed.ID)
		assert.Nil(t, resumed.Services)
	})

	t.Run("tampered token", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "tampered")

		_, err := server.ResumeSession(ctx, login.Tokens.AccessToken+"x")
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeTokenVerification, textCode(err))
	})

	t.Run("expired token", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		user, login := loginTestUser(t, server, store, "expired")

		session := store.sessionByID(login.SessionID)
		require.NotNil(t, session)
		expired := mintExpiredAccessToken(t, accounts.SessionData{Token: session.Token, UserID: user.ID.String()})

		_, err := server.ResumeSession(ctx, expired)
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeTokenVerification, textCode(err))
	})

	t.Run("invalidated session", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "revoked")

		require.NoError(t, server.Logout(ctx, login.Tokens.AccessToken))

		_, err := server.ResumeSession(ctx, login.Tokens.AccessToken)
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeInvalidSession, textCode(err))
	})

	t.Run("stateless mode skips session lookup", func(t *testing.T) {
		server, store := newTestAccounts(t, func(cfg *accounts.Config) {
			cfg.UseStatelessSession = true
		})
		user, login := loginTestUser(t, server, store, "stateless")

		session := store.sessionByID(login.SessionID)
		require.NoError(t, store.InvalidateSession(ctx, session.ID.String()))

		// Claims are trusted as-is; the revoked row is never consulted.
		resumed, err := server.ResumeSession(ctx, login.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resumed.ID)
	})

	t.Run("claims user must match session user", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "owner")
		other := store.addUser(newTestUser("other"))

		session := store.sessionByID(login.SessionID)
		require.NotNil(t, session)

		ts := accounts.NewTokenService(newTestConfig(), nil)
		forged, err := ts.MintTokens(ctx, other, accounts.SessionData{
			Token:  session.Token,
			UserID: other.ID.String(),
		})
		require.NoError(t, err)

		_, err = server.ResumeSession(ctx, forged.AccessToken)
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeTokenVerification, textCode(err))
	})

	t.Run("resume validator can veto", func(t *testing.T) {
		server, store := newTestAccounts(t, func(cfg *accounts.Config) {
			cfg.ResumeSessionValidator = func(ctx context.Context, user *accounts.User, session *accounts.Session) error {
				return assert.AnError
			}
		})
		_, login := loginTestUser(t, server, store, "vetoed")

		_, err := server.ResumeSession(ctx, login.Tokens.AccessToken)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("emits hooks", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "observed")

		var successCount, errorCount int
		server.Hooks().On(accounts.HookResumeSessionSuccess, func(ctx context.Context, p accounts.HookPayload) {
			successCount++
		})
		server.Hooks().On(accounts.HookResumeSessionError, func(ctx context.Context, p accounts.HookPayload) {
			errorCount++
		})

		_, err := server.ResumeSession(ctx, login.Tokens.AccessToken)
		require.NoError(t, err)
		_, err = server.ResumeSession(ctx, "garbage")
		require.Error(t, err)

		assert.Equal(t, 1, successCount)
		assert.Equal(t, 1, errorCount)
	})
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("mints a fresh pair for the same session", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		user, login := loginTestUser(t, server, store, "refresh")

		refreshed, err := server.RefreshTokens(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken, testConn)
		require.NoError(t, err)

		assert.Equal(t, login.SessionID, refreshed.SessionID)
		assert.Equal(t, user.ID, refreshed.User.ID)
		assert.NotEmpty(t, refreshed.Tokens.AccessToken)
		assert.NotEmpty(t, refreshed.Tokens.RefreshToken)

		// Without rotation the session token claim is stable across refreshes.
		before, err := server.TokenService().VerifyAccessToken(login.Tokens.AccessToken, false)
		require.NoError(t, err)
		after, err := server.TokenService().VerifyAccessToken(refreshed.Tokens.AccessToken, false)
		require.NoError(t, err)
		assert.Equal(t, before.Data.Token, after.Data.Token)
		assert.Equal(t, user.ID.String(), after.Data.UserID)

		resumed, err := server.ResumeSession(ctx, refreshed.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resumed.ID)
	})

	t.Run("missing either token", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "partial")

		_, err := server.RefreshTokens(ctx, "", login.Tokens.RefreshToken, testConn)
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeInvalidTokens, textCode(err))

		_, err = server.RefreshTokens(ctx, login.Tokens.AccessToken, "", testConn)
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeInvalidTokens, textCode(err))
	})

	t.Run("expired access token still refreshes", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		user, login := loginTestUser(t, server, store, "stale")

		session := store.sessionByID(login.SessionID)
		require.NotNil(t, session)
		expired := mintExpiredAccessToken(t, accounts.SessionData{Token: session.Token, UserID: user.ID.String()})

		refreshed, err := server.RefreshTokens(ctx, expired, login.Tokens.RefreshToken, testConn)
		require.NoError(t, err)
		assert.Equal(t, login.SessionID, refreshed.SessionID)
	})

	t.Run("tampered refresh token", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "badrefresh")

		_, err := server.RefreshTokens(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken+"x", testConn)
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeTokenVerification, textCode(err))
	})

	t.Run("invalidated session", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "loggedout")

		require.NoError(t, server.Logout(ctx, login.Tokens.AccessToken))

		_, err := server.RefreshTokens(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken, testConn)
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeInvalidSession, textCode(err))
	})

	t.Run("session token rotation", func(t *testing.T) {
		server, store := newTestAccounts(t, func(cfg *accounts.Config) {
			cfg.CreateNewSessionTokenOnRefresh = true
		})
		user, login := loginTestUser(t, server, store, "rotated")

		before := store.sessionByID(login.SessionID).Token

		refreshed, err := server.RefreshTokens(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken, testConn)
		require.NoError(t, err)

		after := store.sessionByID(login.SessionID).Token
		assert.NotEqual(t, before, after)

		// The pre-rotation access token points at a session token that no
		// longer exists.
		_, err = server.ResumeSession(ctx, login.Tokens.AccessToken)
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeSessionNotFound, textCode(err))

		resumed, err := server.ResumeSession(ctx, refreshed.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resumed.ID)
	})

	t.Run("refresh touches the session", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "touched")

		_, err := server.RefreshTokens(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken, testConn)
		require.NoError(t, err)
		assert.Equal(t, 1, store.updateSessionCalls)
	})

	t.Run("emits hooks", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "watched")

		var successCount, errorCount int
		server.Hooks().On(accounts.HookRefreshTokensSuccess, func(ctx context.Context, p accounts.HookPayload) {
			successCount++
		})
		server.Hooks().On(accounts.HookRefreshTokensError, func(ctx context.Context, p accounts.HookPayload) {
			errorCount++
		})

		_, err := server.RefreshTokens(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken, testConn)
		require.NoError(t, err)
		_, err = server.RefreshTokens(ctx, "", "", testConn)
		require.Error(t, err)

		assert.Equal(t, 1, successCount)
		assert.Equal(t, 1, errorCount)
	})
}

func TestFindSessionByAccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		server, _ := newTestAccounts(t, nil)

		_, err := server.FindSessionByAccessToken(ctx, "")
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeInvalidToken, textCode(err))
	})

	t.Run("resolves the session", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		user, login := loginTestUser(t, server, store, "found")

		session, err := server.FindSessionByAccessToken(ctx, login.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, login.SessionID, session.ID.String())
		assert.Equal(t, user.ID, session.UserID)
	})

	t.Run("no matching session", func(t *testing.T) {
		server, _ := newTestAccounts(t, nil)

		ts := accounts.NewTokenService(newTestConfig(), nil)
		user := newTestUser("ghost")
		tokens, err := ts.MintTokens(ctx, user, accounts.SessionData{Token: "unknown", UserID: user.ID.String()})
		require.NoError(t, err)

		_, err = server.FindSessionByAccessToken(ctx, tokens.AccessToken)
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeSessionNotFound, textCode(err))
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidates the session", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "leaving")

		var successCount int
		server.Hooks().On(accounts.HookLogoutSuccess, func(ctx context.Context, p accounts.HookPayload) {
			successCount++
			assert.Equal(t, login.SessionID, p.SessionID)
		})

		require.NoError(t, server.Logout(ctx, login.Tokens.AccessToken))
		assert.False(t, store.sessionByID(login.SessionID).Valid)
		assert.Equal(t, 1, successCount)
	})

	t.Run("logout twice", func(t *testing.T) {
		server, store := newTestAccounts(t, nil)
		_, login := loginTestUser(t, server, store, "gone")

		require.NoError(t, server.Logout(ctx, login.Tokens.AccessToken))

		err := server.Logout(ctx, login.Tokens.AccessToken)
		require.Error(t, err)
		assert.Equal(t, accounts.TextCodeInvalidSession, textCode(err))
	})

	t.Run("bad token emits error hook", func(t *testing.T) {
		server, _ := newTestAccounts(t, nil)

		var errorCount int
		server.Hooks().On(accounts.HookLogoutError, func(ctx context.Context, p accounts.HookPayload) {
			errorCount++
		})

		err := server.Logout(ctx, "garbage")
		require.Error(t, err)
		assert.Equal(t, 1, errorCount)
	})
}
