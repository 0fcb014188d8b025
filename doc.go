// Package accounts is a session and token orchestration core. It resolves
// login attempts through pluggable authentication services, tracks sessions
// server-side, and issues short-lived signed access tokens paired with
// long-lived refresh tokens bound to each session.
//
// Sessions and tokens:
//   - Every session owns an opaque random token, stored in the session row
//     and embedded in the access token's claims. That token, not the JWT, is
//     the revocation handle: invalidating the session kills every access
//     token bound to it regardless of JWT expiry.
//   - RefreshTokens requires both tokens: the refresh token proves recency,
//     the access token carries the session claim. A refresh token alone is
//     never sufficient.
//   - Sessions move created -> refreshed* -> invalidated. Invalidation is
//     terminal.
//
// Extension points:
//   - AuthenticationService implementations (password, OAuth, magic links)
//     register by name and plug into LoginWithService.
//   - Hooks emits lifecycle events best-effort; OnValidateLogin registers
//     serial, veto-capable validators that run before any session is created.
//   - Config carries injected policy functions for impersonation
//     authorization, resume validation, claims decoration, and user
//     sanitization.
//
// Impersonation is opt-in: without Config.ImpersonationAuthorize every
// impersonation request resolves to an unauthorized result.
package accounts
