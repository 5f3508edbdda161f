// Package services holds the client's application logic: the session store
// that owns authentication state, the credential store behind it and the
// upload orchestrator.
//
// Services are driven by a single goroutine (the REPL) and are not safe for
// concurrent use.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/storygen/internal/client/events"
	"github.com/dmitrijs2005/storygen/internal/client/models"
	"github.com/dmitrijs2005/storygen/internal/logging"
)

// State of the session.
type State int

const (
	StateUninitialized State = iota
	StateRehydrating
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRehydrating:
		return "rehydrating"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var ErrAuthInProgress = errors.New("sign in already in progress")

// Action is work deferred until the user has signed in.
type Action func(ctx context.Context)

// AuthAPI is the part of the service API the session needs.
type AuthAPI interface {
	Signup(ctx context.Context, f models.SignupFields) (*models.AuthResult, error)
	Login(ctx context.Context, f models.LoginFields) (*models.AuthResult, error)
	Me(ctx context.Context) (*models.Identity, error)
}

// Credentials persists the bearer credential.
type Credentials interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Publisher delivers auth-required notices to the controller.
type Publisher interface {
	Publish(ev events.AuthRequired) bool
}

// SessionStore owns the signed-in identity.
//
// Identity is non-nil exactly when a credential was accepted in this process,
// by Rehydrate or by Login/Signup. At most one pending action is kept; it is
// run once after the next successful sign in and dropped by Logout.
type SessionStore struct {
	api   AuthAPI
	creds Credentials
	bus   Publisher
	log   logging.Logger
	now   func() time.Time

	state      State
	identity   *models.Identity
	busy       bool
	rehydrated bool
	pending    Action
}

func NewSessionStore(api AuthAPI, creds Credentials, bus Publisher, log logging.Logger) *SessionStore {
	return &SessionStore{
		api:   api,
		creds: creds,
		bus:   bus,
		log:   log,
		now:   time.Now,
	}
}

// Rehydrate restores the session from the stored credential. It runs once;
// later calls are no-ops. Failures are logged and leave the session
// anonymous with the credential removed.
func (s *SessionStore) Rehydrate(ctx context.Context) {
	if s.state != StateUninitialized {
		return
	}
	s.state = StateRehydrating
	defer func() { s.rehydrated = true }()

	token, err := s.creds.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "could not read stored credential", "error", err)
		s.state = StateAnonymous
		return
	}
	if token == "" {
		s.state = StateAnonymous
		return
	}

	if tokenExpired(token, s.now()) {
		s.log.Info(ctx, "stored credential has expired")
		s.discard(ctx)
		return
	}

	id, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn(ctx, "stored credential rejected", "error", err)
		s.discard(ctx)
		return
	}

	s.identity = id
	s.state = StateAuthenticated
	s.log.Debug(ctx, "session restored", "email", id.Email)
}

// tokenExpired reports whether token is a JWT whose exp lies in the past.
// Opaque tokens are never considered expired locally.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}

func (s *SessionStore) discard(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil {
		s.log.Warn(ctx, "could not clear credential", "error", err)
	}
	s.identity = nil
	s.state = StateAnonymous
}

// Signup creates an account and signs in with it.
func (s *SessionStore) Signup(ctx context.Context, f models.SignupFields) error {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return err
	}
	return s.authenticate(ctx, func(ctx context.Context) (*models.AuthResult, error) {
		return s.api.Signup(ctx, f)
	})
}

// Login signs in with existing credentials.
func (s *SessionStore) Login(ctx context.Context, f models.LoginFields) error {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return err
	}
	return s.authenticate(ctx, func(ctx context.Context) (*models.AuthResult, error) {
		return s.api.Login(ctx, f)
	})
}

// authenticate runs call, persists the returned credential and then replays
// the pending action. On failure nothing about the session changes.
func (s *SessionStore) authenticate(ctx context.Context, call func(ctx context.Context) (*models.AuthResult, error)) error {
	if s.busy {
		return ErrAuthInProgress
	}
	s.busy = true

	res, err := call(ctx)
	if err == nil {
		err = s.creds.Save(ctx, res.AccessToken)
	}
	if err != nil {
		s.busy = false
		return err
	}

	user := res.User
	s.identity = &user
	s.state = StateAuthenticated
	s.busy = false
	s.log.Info(ctx, "signed in", "email", user.Email)

	if action := s.pending; action != nil {
		s.pending = nil
		action(ctx)
	}
	return nil
}

// Logout forgets the credential, the identity and any pending action.
// Storage failures are logged, never returned.
func (s *SessionStore) Logout(ctx context.Context) {
	s.pending = nil
	s.discard(ctx)
}

// HandleUnauthorized reacts to a 401 from the server: the credential and
// identity are dropped and the controller is asked to collect credentials.
// 401s seen while rehydrating or signing in are left to those flows.
func (s *SessionStore) HandleUnauthorized(ctx context.Context) {
	if s.state == StateRehydrating || s.busy {
		return
	}

	s.log.Info(ctx, "server rejected the credential")
	s.discard(ctx)

	if s.bus != nil {
		s.bus.Publish(events.AuthRequired{Reason: events.ReasonUnauthorized})
	}
}

// Defer records action to run after the next successful sign in, replacing
// any earlier one.
func (s *SessionStore) Defer(action Action) {
	s.pending = action
}

// HasPending reports whether an action waits for sign in.
func (s *SessionStore) HasPending() bool {
	return s.pending != nil
}

func (s *SessionStore) IsAuthed() bool {
	return s.state == StateAuthenticated && s.identity != nil
}

// Identity returns a copy of the signed-in identity, or nil.
func (s *SessionStore) Identity() *models.Identity {
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *SessionStore) State() State { return s.state }

// Busy reports whether a login or signup is in flight.
func (s *SessionStore) Busy() bool { return s.busy }

// Rehydrated reports whether Rehydrate has finished.
func (s *SessionStore) Rehydrated() bool { return s.rehydrated }
