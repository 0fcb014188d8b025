package accounts

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionData is the payload every access token carries under the "data"
// claim. Token is the opaque session token, not the JWT.
type SessionData struct {
	Token          string `json:"token"`
	UserID         string `json:"userId"`
	IsImpersonated bool   `json:"isImpersonated"`
}

// AccessClaims is the access token claim set. Metadata is the extension
// surface for claims decorators; Data is restored if a decorator mutates it.
type AccessClaims struct {
	jwt.RegisteredClaims
	Data     SessionData    `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RefreshClaims carries expiry only. A refresh token holds no session data;
// its sole purpose is to prove recent possession.
type RefreshClaims struct {
	jwt.RegisteredClaims
}
