package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storygen/internal/client/client"
	"github.com/dmitrijs2005/storygen/internal/client/events"
	"github.com/dmitrijs2005/storygen/internal/client/models"
	"github.com/dmitrijs2005/storygen/internal/common"
)

func jwtToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func newSession(api *fakeAPI, creds *fakeCreds) (*SessionStore, *recordingBus) {
	bus := &recordingBus{}
	return NewSessionStore(api, creds, bus, nopLogger()), bus
}

var ann = models.Identity{ID: "1", Name: "Ann", Email: "ann@x.io"}

func TestRehydrate_NoCredential(t *testing.T) {
	api := &fakeAPI{}
	s, _ := newSession(api, &fakeCreds{})

	assert.False(t, s.Rehydrated())
	s.Rehydrate(context.Background())

	assert.True(t, s.Rehydrated())
	assert.Equal(t, StateAnonymous, s.State())
	assert.False(t, s.IsAuthed())
	assert.Empty(t, api.Calls)
}

func TestRehydrate_ValidCredential(t *testing.T) {
	id := ann
	api := &fakeAPI{MeRet: &id}
	s, _ := newSession(api, &fakeCreds{token: "opaque"})

	s.Rehydrate(context.Background())

	assert.Equal(t, StateAuthenticated, s.State())
	assert.True(t, s.IsAuthed())
	assert.Equal(t, &ann, s.Identity())
	assert.Equal(t, []string{"me"}, api.Calls)
}

func TestRehydrate_RejectedCredentialIsDropped(t *testing.T) {
	creds := &fakeCreds{token: "stale"}
	api := &fakeAPI{MeErr: &client.RequestFailedError{Status: 401, Message: "Invalid token"}}
	s, bus := newSession(api, creds)

	// the HTTP client fires the 401 callback while Me is running
	api.onCall = func(ctx context.Context) { s.HandleUnauthorized(ctx) }

	s.Rehydrate(context.Background())

	assert.True(t, s.Rehydrated())
	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, s.Identity())
	assert.Empty(t, creds.token)
	assert.Equal(t, 1, creds.Cleared)
	assert.Empty(t, bus.Events)
}

func TestRehydrate_ExpiredJWTSkipsNetwork(t *testing.T) {
	creds := &fakeCreds{}
	api := &fakeAPI{}
	s, _ := newSession(api, creds)
	creds.token = jwtToken(t, time.Now().Add(-time.Hour))

	s.Rehydrate(context.Background())

	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, api.Calls)
	assert.Empty(t, creds.token)
}

func TestRehydrate_LiveJWTIsVerifiedRemotely(t *testing.T) {
	id := ann
	api := &fakeAPI{MeRet: &id}
	s, _ := newSession(api, &fakeCreds{token: jwtToken(t, time.Now().Add(time.Hour))})

	s.Rehydrate(context.Background())

	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, []string{"me"}, api.Calls)
}

func TestRehydrate_LoadErrorAndRunsOnce(t *testing.T) {
	api := &fakeAPI{}
	creds := &fakeCreds{LoadErr: errors.New("disk")}
	s, _ := newSession(api, creds)

	s.Rehydrate(context.Background())
	assert.Equal(t, StateAnonymous, s.State())

	creds.LoadErr = nil
	creds.token = "tok"
	s.Rehydrate(context.Background())
	assert.Empty(t, api.Calls)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, tokenExpired(jwtToken(t, now.Add(-time.Minute)), now))
	assert.False(t, tokenExpired(jwtToken(t, now.Add(time.Minute)), now))
	assert.False(t, tokenExpired("not-a-jwt", now))
}

func TestLogin_Success(t *testing.T) {
	creds := &fakeCreds{}
	api := &fakeAPI{LoginRet: &models.AuthResult{AccessToken: "tok", User: ann}}
	s, _ := newSession(api, creds)
	s.Rehydrate(context.Background())

	err := s.Login(context.Background(), models.LoginFields{Email: " Ann@X.io ", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "ann@x.io", api.LastLogin.Email)
	assert.Equal(t, "tok", creds.token)
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, &ann, s.Identity())
	assert.False(t, s.Busy())
}

func TestLogin_ValidationBeforeNetwork(t *testing.T) {
	api := &fakeAPI{}
	s, _ := newSession(api, &fakeCreds{})

	err := s.Login(context.Background(), models.LoginFields{Email: "bad"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, api.Calls)
}

func TestLogin_FailureKeepsStateAndPending(t *testing.T) {
	creds := &fakeCreds{}
	api := &fakeAPI{LoginErr: &client.RequestFailedError{Status: 400, Message: "Invalid email or password"}}
	s, _ := newSession(api, creds)
	s.Rehydrate(context.Background())

	ran := 0
	s.Defer(func(context.Context) { ran++ })

	err := s.Login(context.Background(), models.LoginFields{Email: "a@x.io", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())

	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, s.Identity())
	assert.True(t, s.HasPending())
	assert.Equal(t, 0, ran)
	assert.False(t, s.Busy())
}

func TestLogin_SaveFailureKeepsState(t *testing.T) {
	creds := &fakeCreds{SaveErr: errors.New("disk full")}
	api := &fakeAPI{LoginRet: &models.AuthResult{AccessToken: "tok", User: ann}}
	s, _ := newSession(api, creds)
	s.Rehydrate(context.Background())

	err := s.Login(context.Background(), models.LoginFields{Email: "a@x.io", Password: "pw"})
	require.Error(t, err)
	assert.False(t, s.IsAuthed())
}

func TestLogin_RunsPendingActionOnce(t *testing.T) {
	api := &fakeAPI{LoginRet: &models.AuthResult{AccessToken: "tok", User: ann}}
	s, _ := newSession(api, &fakeCreds{})
	s.Rehydrate(context.Background())

	var sawAuthed []bool
	s.Defer(func(context.Context) { sawAuthed = append(sawAuthed, s.IsAuthed()) })

	require.NoError(t, s.Login(context.Background(), models.LoginFields{Email: "a@x.io", Password: "pw"}))
	require.NoError(t, s.Login(context.Background(), models.LoginFields{Email: "a@x.io", Password: "pw"}))

	assert.Equal(t, []bool{true}, sawAuthed)
	assert.False(t, s.HasPending())
}

func TestDefer_ReplacesEarlierAction(t *testing.T) {
	api := &fakeAPI{LoginRet: &models.AuthResult{AccessToken: "tok", User: ann}}
	s, _ := newSession(api, &fakeCreds{})

	var ran []string
	s.Defer(func(context.Context) { ran = append(ran, "first") })
	s.Defer(func(context.Context) { ran = append(ran, "second") })

	require.NoError(t, s.Login(context.Background(), models.LoginFields{Email: "a@x.io", Password: "pw"}))
	assert.Equal(t, []string{"second"}, ran)
}

func TestSignup_Success(t *testing.T) {
	creds := &fakeCreds{}
	api := &fakeAPI{SignupRet: &models.AuthResult{AccessToken: "tok", User: ann}}
	s, _ := newSession(api, creds)

	err := s.Signup(context.Background(), models.SignupFields{Name: " Ann ", Email: "ANN@x.io", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, models.SignupFields{Name: "Ann", Email: "ann@x.io", Password: "pw"}, api.LastSignup)
	assert.Equal(t, "tok", creds.token)
	assert.True(t, s.IsAuthed())
}

func TestSignup_Validation(t *testing.T) {
	api := &fakeAPI{}
	s, _ := newSession(api, &fakeCreds{})

	err := s.Signup(context.Background(), models.SignupFields{Email: "ann@x.io", Password: "pw"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, api.Calls)
}

func TestAuthenticate_RejectsReentry(t *testing.T) {
	api := &fakeAPI{LoginRet: &models.AuthResult{AccessToken: "tok", User: ann}}
	s, _ := newSession(api, &fakeCreds{})

	var inner error
	api.onCall = func(ctx context.Context) {
		api.onCall = nil
		inner = s.Login(ctx, models.LoginFields{Email: "a@x.io", Password: "pw"})
	}

	require.NoError(t, s.Login(context.Background(), models.LoginFields{Email: "a@x.io", Password: "pw"}))
	require.ErrorIs(t, inner, ErrAuthInProgress)
}

func TestLogout(t *testing.T) {
	creds := &fakeCreds{ClearErr: errors.New("locked")}
	api := &fakeAPI{LoginRet: &models.AuthResult{AccessToken: "tok", User: ann}}
	s, _ := newSession(api, creds)
	require.NoError(t, s.Login(context.Background(), models.LoginFields{Email: "a@x.io", Password: "pw"}))

	s.Defer(func(context.Context) { t.Fatal("pending action must be discarded") })
	s.Logout(context.Background())

	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, s.Identity())
	assert.False(t, s.HasPending())
	assert.Equal(t, 1, creds.Cleared)
}

func TestHandleUnauthorized(t *testing.T) {
	creds := &fakeCreds{}
	api := &fakeAPI{LoginRet: &models.AuthResult{AccessToken: "tok", User: ann}}
	s, bus := newSession(api, creds)
	s.Rehydrate(context.Background())
	require.NoError(t, s.Login(context.Background(), models.LoginFields{Email: "a@x.io", Password: "pw"}))

	s.HandleUnauthorized(context.Background())

	assert.False(t, s.IsAuthed())
	assert.Empty(t, creds.token)
	require.Len(t, bus.Events, 1)
	assert.Equal(t, events.ReasonUnauthorized, bus.Events[0].Reason)
}

func TestHandleUnauthorized_IgnoredWhileSigningIn(t *testing.T) {
	api := &fakeAPI{LoginErr: &client.RequestFailedError{Status: 401, Message: "bad"}}
	s, bus := newSession(api, &fakeCreds{})
	s.Rehydrate(context.Background())
	api.onCall = func(ctx context.Context) { s.HandleUnauthorized(ctx) }

	require.Error(t, s.Login(context.Background(), models.LoginFields{Email: "a@x.io", Password: "pw"}))
	assert.Empty(t, bus.Events)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "rehydrating", StateRehydrating.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "anonymous", StateAnonymous.String())
	assert.Equal(t, "State(9)", State(9).String())
}
