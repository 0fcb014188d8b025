package accounts

import (
	"context"
	"sync"
	"time"
)

// HookEvent enumerates the closed set of lifecycle events.
type HookEvent string

const (
	HookAuthenticateSuccess  HookEvent = "accounts.authenticate.success"
	HookAuthenticateError    HookEvent = "accounts.authenticate.error"
	HookLoginSuccess         HookEvent = "accounts.login.success"
	HookLoginError           HookEvent = "accounts.login.error"
	HookLogoutSuccess        HookEvent = "accounts.logout.success"
	HookLogoutError          HookEvent = "accounts.logout.error"
	HookResumeSessionSuccess HookEvent = "accounts.resume.success"
	HookResumeSessionError   HookEvent = "accounts.resume.error"
	HookRefreshTokensSuccess HookEvent = "accounts.refresh.success"
	HookRefreshTokensError   HookEvent = "accounts.refresh.error"
	HookImpersonationSuccess HookEvent = "accounts.impersonation.success"
	HookImpersonationError   HookEvent = "accounts.impersonation.error"
	HookUserDeactivated      HookEvent = "accounts.user.deactivated"
	HookUserActivated        HookEvent = "accounts.user.activated"
)

// HookPayload carries enough context to correlate an event: service name,
// connection info, the user involved, and the original error on the error
// variants.
type HookPayload struct {
	Service    string
	Connection ConnectionInfo
	Params     map[string]any
	User       *User
	SessionID  string
	Error      error
	OccurredAt time.Time
}

// HookListener consumes lifecycle events. Listener errors and panics never
// reach the emitting operation.
type HookListener func(ctx context.Context, payload HookPayload)

// LoginValidator runs serially before a session is created; returning an
// error aborts the login with that error.
type LoginValidator func(ctx context.Context, user *User) error

type hookSubscription struct {
	id int
	fn HookListener
}

type validatorSubscription struct {
	id int
	fn LoginValidator
}

// Hooks is the lifecycle event bus: fire-and-forget emission for success and
// error notifications, serial abortable dispatch for login validation.
type Hooks struct {
	mu         sync.RWMutex
	nextID     int
	listeners  map[HookEvent][]hookSubscription
	validators []validatorSubscription
	logger     Logger
}

// NewHooks returns an empty hook bus.
func NewHooks(logger Logger) *Hooks {
	if logger == nil {
		logger = defLogger{}
	}
	return &Hooks{
		listeners: map[HookEvent][]hookSubscription{},
		logger:    logger,
	}
}

// On subscribes to an event and returns an unsubscribe handle.
func (h *Hooks) On(event HookEvent, fn HookListener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.listeners[event] = append(h.listeners[event], hookSubscription{id: id, fn: fn})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.listeners[event]
		for i, sub := range subs {
			if sub.id == id {
				h.listeners[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// OnValidateLogin registers a login veto. Validators run in registration
// order; there is no default validator, so with none registered every
// authenticated login proceeds.
func (h *Hooks) OnValidateLogin(fn LoginValidator) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.validators = append(h.validators, validatorSubscription{id: id, fn: fn})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, sub := range h.validators {
			if sub.id == id {
				h.validators = append(h.validators[:i:i], h.validators[i+1:]...)
				return
			}
		}
	}
}

// Emit notifies listeners in registration order. Best effort: a panicking
// listener is logged and the remaining listeners still run.
func (h *Hooks) Emit(ctx context.Context, event HookEvent, payload HookPayload) {
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = time.Now()
	}

	h.mu.RLock()
	subs := make([]hookSubscription, len(h.listeners[event]))
	copy(subs, h.listeners[event])
	h.mu.RUnlock()

	for _, sub := range subs {
		h.safeNotify(ctx, event, sub, payload)
	}
}

func (h *Hooks) safeNotify(ctx context.Context, event HookEvent, sub hookSubscription, payload HookPayload) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("hook listener panicked", "event", string(event), "panic", r)
		}
	}()
	sub.fn(ctx, payload)
}

// RunValidateLogin runs every registered validator serially, in registration
// order, strictly before session creation. The first error aborts.
func (h *Hooks) RunValidateLogin(ctx context.Context, user *User) error {
	h.mu.RLock()
	validators := make([]validatorSubscription, len(h.validators))
	copy(validators, h.validators)
	h.mu.RUnlock()

	for _, sub := range validators {
		if err := sub.fn(ctx, user); err != nil {
			return err
		}
	}
	return nil
}
