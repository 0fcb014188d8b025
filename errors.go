package accounts

import "github.com/goliatone/go-errors"

const (
	TextCodeServiceNotFound        = "accounts_service_not_found"
	TextCodeAuthenticationFailed   = "accounts_authentication_failed"
	TextCodeUserDeactivated        = "accounts_user_deactivated"
	TextCodeInvalidToken           = "accounts_invalid_token"
	TextCodeTokenVerification      = "accounts_token_verification_failed"
	TextCodeSessionNotFound        = "accounts_session_not_found"
	TextCodeInvalidSession         = "accounts_invalid_session"
	TextCodeInvalidTokens          = "accounts_invalid_tokens"
	TextCodeUserNotFound           = "accounts_user_not_found"
	TextCodeImpersonatedNotFound   = "accounts_impersonated_user_not_found"
	TextCodeAmbiguousAutologin     = "accounts_ambiguous_autologin_conflict"
	TextCodeSessionTokenGeneration = "accounts_session_token_generation_failed"
)

// ErrServiceNotFound is returned when no authentication service is registered
// under the requested name.
var ErrServiceNotFound = errors.New("authentication service not found", errors.CategoryNotFound).
	WithTextCode(TextCodeServiceNotFound).
	WithCode(errors.CodeNotFound)

// ErrAuthenticationFailed is returned when a service resolves no user for the
// given params.
var ErrAuthenticationFailed = errors.New("authentication failed", errors.CategoryAuth).
	WithTextCode(TextCodeAuthenticationFailed).
	WithCode(errors.CodeUnauthorized)

// ErrUserDeactivated is returned when the resolved user is deactivated.
var ErrUserDeactivated = errors.New("user is deactivated", errors.CategoryAuth).
	WithTextCode(TextCodeUserDeactivated).
	WithCode(errors.CodeForbidden)

// ErrInvalidToken is returned when an access token is missing or empty.
var ErrInvalidToken = errors.New("an access token is required", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeBadRequest)

// ErrTokenVerificationFailed is the uniform failure for any signature,
// structure, or expiry violation. Callers can not distinguish which.
var ErrTokenVerificationFailed = errors.New("tokens are not valid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenVerification).
	WithCode(errors.CodeUnauthorized)

// ErrSessionNotFound is returned when a session token resolves to no session.
var ErrSessionNotFound = errors.New("session not found", errors.CategoryNotFound).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidSession is returned when a session exists but is no longer valid.
var ErrInvalidSession = errors.New("session is no longer valid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidSession).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidTokens is returned by RefreshTokens when either token is missing.
var ErrInvalidTokens = errors.New("an access token and a refresh token are required", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidTokens).
	WithCode(errors.CodeBadRequest)

// ErrUserNotFound is returned when a session or claim points at a user that
// no longer exists.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrImpersonatedUserNotFound is returned when the impersonation target does
// not exist and ambiguous error messages are disabled.
var ErrImpersonatedUserNotFound = errors.New("impersonated user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeImpersonatedNotFound).
	WithCode(errors.CodeNotFound)

// ErrAmbiguousAutologin rejects configurations that enable both ambiguous
// error messages and autologin after registration: an auto-issued session
// proves account existence, which is exactly what ambiguous errors hide.
var ErrAmbiguousAutologin = errors.New("ambiguous error messages and autologin can not be enabled together", errors.CategoryValidation).
	WithTextCode(TextCodeAmbiguousAutologin).
	WithCode(errors.CodeBadRequest)

// ErrSessionTokenGeneration is returned when the session token generator fails.
var ErrSessionTokenGeneration = errors.New("could not generate session token", errors.CategoryInternal).
	WithTextCode(TextCodeSessionTokenGeneration)
