package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storygen/internal/client/client"
	"github.com/dmitrijs2005/storygen/internal/client/events"
	"github.com/dmitrijs2005/storygen/internal/client/models"
	"github.com/dmitrijs2005/storygen/internal/client/repositories"
	"github.com/dmitrijs2005/storygen/internal/logging"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	repos, err := repositories.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos.DB
}

func insertMeta(t *testing.T, db *sql.DB, k, v string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES(?, ?)`, k, v)
	require.NoError(t, err)
}

func getMeta(t *testing.T, db *sql.DB, k string) (string, bool) {
	t.Helper()
	var v string
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, k).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false
	}
	require.NoError(t, err)
	return v, true
}

// fakeAPI implements AuthAPI and StoriesAPI.
type fakeAPI struct {
	SignupRet *models.AuthResult
	SignupErr error
	LoginRet  *models.AuthResult
	LoginErr  error
	MeRet     *models.Identity
	MeErr     error
	GenRet    *client.Response
	GenErr    error

	// onCall runs inside every call, before returning.
	onCall func(ctx context.Context)

	LastSignup models.SignupFields
	LastLogin  models.LoginFields
	LastDoc    models.Document
	Calls      []string
}

func (f *fakeAPI) hook(ctx context.Context, name string) {
	f.Calls = append(f.Calls, name)
	if f.onCall != nil {
		f.onCall(ctx)
	}
}

func (f *fakeAPI) Signup(ctx context.Context, in models.SignupFields) (*models.AuthResult, error) {
	f.LastSignup = in
	f.hook(ctx, "signup")
	return f.SignupRet, f.SignupErr
}

func (f *fakeAPI) Login(ctx context.Context, in models.LoginFields) (*models.AuthResult, error) {
	f.LastLogin = in
	f.hook(ctx, "login")
	return f.LoginRet, f.LoginErr
}

func (f *fakeAPI) Me(ctx context.Context) (*models.Identity, error) {
	f.hook(ctx, "me")
	return f.MeRet, f.MeErr
}

func (f *fakeAPI) GenerateStories(ctx context.Context, doc models.Document) (*client.Response, error) {
	f.LastDoc = doc
	f.hook(ctx, "generate")
	return f.GenRet, f.GenErr
}

type fakeCreds struct {
	token    string
	LoadErr  error
	SaveErr  error
	ClearErr error
	Cleared  int
}

func (f *fakeCreds) Load(ctx context.Context) (string, error) { return f.token, f.LoadErr }

func (f *fakeCreds) Save(ctx context.Context, token string) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.token = token
	return nil
}

func (f *fakeCreds) Clear(ctx context.Context) error {
	f.Cleared++
	f.token = ""
	return f.ClearErr
}

// recordingBus collects published events.
type recordingBus struct {
	Events []events.AuthRequired
}

func (b *recordingBus) Publish(ev events.AuthRequired) bool {
	b.Events = append(b.Events, ev)
	return true
}

func nopLogger() logging.Logger { return logging.Discard() }
