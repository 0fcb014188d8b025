package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity record the orchestrator reads. Services holds
// credential and provider-internal state (e.g. password hashes) and is
// stripped by the sanitizer before a user leaves the core.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string         `bun:"username,unique" json:"username,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Deactivated   bool           `bun:"deactivated,notnull,default:false" json:"deactivated"`
	Services      map[string]any `bun:"services,type:jsonb" json:"services,omitempty"`
	Profile       map[string]any `bun:"profile,type:jsonb" json:"profile,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Session tracks a server-side login. Token is the opaque revocation handle
// embedded in access token claims; it is not the JWT itself.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ses"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID      `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Token         string         `bun:"token,notnull,unique" json:"token,omitempty"`
	Valid         bool           `bun:"valid,notnull" json:"valid"`
	IP            string         `bun:"ip" json:"ip,omitempty"`
	UserAgent     string         `bun:"user_agent" json:"user_agent,omitempty"`
	ExtraData     map[string]any `bun:"extra_data,type:jsonb" json:"extra_data,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ExtraDataImpersonatorUserID links an impersonated session back to the user
// who opened it.
const ExtraDataImpersonatorUserID = "impersonatorUserId"

// ConnectionInfo is opaque audit context stored with the session. The core
// never interprets it.
type ConnectionInfo struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Tokens is a signed access/refresh pair.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResult is returned by every operation that issues tokens.
type LoginResult struct {
	SessionID string `json:"session_id"`
	Tokens    Tokens `json:"tokens"`
	User      *User  `json:"user"`
}

// ImpersonationResult carries tokens and user only when authorized.
type ImpersonationResult struct {
	Authorized bool    `json:"authorized"`
	Tokens     *Tokens `json:"tokens,omitempty"`
	User       *User   `json:"user,omitempty"`
}

// ImpersonationTarget selects the target user by exactly one identifier.
type ImpersonationTarget interface {
	impersonationTarget()
}

// TargetUserID selects the impersonation target by user id.
type TargetUserID string

// TargetUsername selects the impersonation target by username.
type TargetUsername string

// TargetEmail selects the impersonation target by email.
type TargetEmail string

func (TargetUserID) impersonationTarget()   {}
func (TargetUsername) impersonationTarget() {}
func (TargetEmail) impersonationTarget()    {}
