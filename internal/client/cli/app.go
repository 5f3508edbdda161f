package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/storygen/internal/client/client"
	"github.com/dmitrijs2005/storygen/internal/client/config"
	"github.com/dmitrijs2005/storygen/internal/client/events"
	"github.com/dmitrijs2005/storygen/internal/client/models"
	"github.com/dmitrijs2005/storygen/internal/client/repositories"
	"github.com/dmitrijs2005/storygen/internal/client/services"
	"github.com/dmitrijs2005/storygen/internal/export"
	"github.com/dmitrijs2005/storygen/internal/logging"
)

// ErrNotReady is returned when a command runs before the stored session has
// been restored.
var ErrNotReady = errors.New("session is not restored yet")

// reportedError wraps an error the user has already been shown.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// AlreadyReported reports whether err was printed when it happened, so the
// caller should not print it again.
func AlreadyReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// session is the part of services.SessionStore the CLI drives.
type session interface {
	Rehydrate(ctx context.Context)
	Rehydrated() bool
	Signup(ctx context.Context, f models.SignupFields) error
	Login(ctx context.Context, f models.LoginFields) error
	Logout(ctx context.Context)
	IsAuthed() bool
	Identity() *models.Identity
	Busy() bool
}

// uploader is the part of services.UploadService the CLI drives.
type uploader interface {
	Submit(ctx context.Context, doc models.Document) error
	Busy() bool
	Result() string
	Err() error
}

// pinger checks that the service is up.
type pinger interface {
	Ping(ctx context.Context) error
}

// App is the storygen command-line controller. It owns the auth prompt:
// every request for credentials published on the bus lands here.
type App struct {
	config  *config.Config
	repos   *repositories.Repositories
	session session
	uploads uploader
	health  pinger
	sink    export.Sink
	log     logging.Logger
	reader  *bufio.Reader

	authRequest *events.AuthRequired
	unsubscribe func()
}

// newSink picks the export destination. It is a seam for tests.
var newSink = func(ctx context.Context, cfg *config.Config) (export.Sink, error) {
	if cfg.S3.Enabled() {
		return export.NewS3Sink(ctx, export.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	}
	return export.NewDirSink(cfg.ExportDir), nil
}

// NewApp opens the state database and wires the HTTP client, the session
// store and the upload orchestrator. Close must be called when done.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	repos, err := repositories.InitDatabase(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	sink, err := newSink(ctx, cfg)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("export sink: %w", err)
	}

	creds := services.NewCredentialStore(repos.DB, log)
	bus := events.NewBus()

	// The client needs the unauthorized hook before the session exists.
	var store *services.SessionStore
	api := client.NewHTTPClient(cfg.ServerURL, creds, func(ctx context.Context) {
		if store != nil {
			store.HandleUnauthorized(ctx)
		}
	}, client.WithTimeout(cfg.RequestTimeout), client.WithLogger(log))

	store = services.NewSessionStore(api, creds, bus, log)
	uploads := services.NewUploadService(api, store, bus, log)

	a := &App{
		config:  cfg,
		repos:   repos,
		session: store,
		uploads: uploads,
		health:  api,
		sink:    sink,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}
	uploads.SetListener(a)

	a.unsubscribe, err = bus.Subscribe(a.onAuthRequired)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	return a, nil
}

// Start restores the stored session. Commands refuse to run before it.
func (a *App) Start(ctx context.Context) {
	a.session.Rehydrate(ctx)
}

// Run restores the session and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	a.Start(ctx)
	if !a.session.Rehydrated() {
		return ErrNotReady
	}

	if err := a.health.Ping(ctx); err != nil {
		a.log.Warn(ctx, "server is not reachable", "url", a.config.ServerURL, "error", err)
	}

	printlnFn("Welcome to storygen (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// Close releases the bus subscription and the database.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.repos != nil {
		err := a.repos.Close()
		a.repos = nil
		return err
	}
	return nil
}

func (a *App) onAuthRequired(ev events.AuthRequired) {
	a.log.Debug(context.Background(), "credentials requested", "reason", ev.Reason.String())
	a.authRequest = &ev
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthed()
}

func (a *App) getStatus() string {
	s := "anonymous"
	if id := a.session.Identity(); id != nil {
		s = id.Email
	}
	if a.uploads.Busy() {
		s += " busy"
	}
	return fmt.Sprintf("(%s)", s)
}

// Status prints the server address, whether it answers and who is signed in.
func (a *App) Status(ctx context.Context) error {
	health := "ok"
	if err := a.health.Ping(ctx); err != nil {
		health = "unreachable: " + services.UserMessage(err)
	}
	printlnFn("Server:", a.config.ServerURL, "("+health+")")

	if id := a.session.Identity(); id != nil {
		printlnFn("Signed in as", id.Email)
	} else {
		printlnFn("Not signed in.")
	}
	return nil
}
