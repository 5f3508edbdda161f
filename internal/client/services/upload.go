package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/storygen/internal/client/client"
	"github.com/dmitrijs2005/storygen/internal/client/events"
	"github.com/dmitrijs2005/storygen/internal/client/models"
	"github.com/dmitrijs2005/storygen/internal/logging"
)

var (
	// ErrEmptyResult means the server answered but no story text was found.
	ErrEmptyResult = errors.New("no stories returned from server")
	// ErrAuthRequired is returned by Submit when nobody is signed in. The
	// upload is replayed after sign in.
	ErrAuthRequired = errors.New("sign in required")
)

// StoriesListener receives the outcome of an upload.
type StoriesListener interface {
	OnStories(text string)
	OnError(err error)
}

// AuthGate is the view of the session the orchestrator needs.
type AuthGate interface {
	IsAuthed() bool
	Defer(action Action)
}

// StoriesAPI uploads a document for extraction.
type StoriesAPI interface {
	GenerateStories(ctx context.Context, doc models.Document) (*client.Response, error)
}

// extractor pulls story text out of a reply. A hit ends the search even when
// the text turns out to be blank.
type extractor func(resp *client.Response) (string, bool)

func fieldExtractor(name string) extractor {
	return func(resp *client.Response) (string, bool) {
		if !resp.JSON {
			return "", false
		}
		obj, ok := resp.Data.(map[string]any)
		if !ok {
			return "", false
		}
		s, ok := obj[name].(string)
		return s, ok
	}
}

func bareStringExtractor(resp *client.Response) (string, bool) {
	if !resp.JSON {
		return "", false
	}
	s, ok := resp.Data.(string)
	return s, ok
}

func rawExtractor(resp *client.Response) (string, bool) {
	return resp.Raw, true
}

// storyExtractors are tried in order; the first hit wins.
var storyExtractors = []extractor{
	fieldExtractor("stories"),
	fieldExtractor("user_stories"),
	fieldExtractor("result"),
	bareStringExtractor,
	rawExtractor,
}

// NormalizeStories turns a reply into trimmed story text. Replies without a
// known field fall back to the response body as sent.
func NormalizeStories(resp *client.Response) (string, error) {
	var text string
	for _, ex := range storyExtractors {
		if s, ok := ex(resp); ok {
			text = s
			break
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResult
	}
	return text, nil
}

// UploadService submits documents and holds the latest result.
type UploadService struct {
	api      StoriesAPI
	gate     AuthGate
	bus      Publisher
	listener StoriesListener
	log      logging.Logger

	busy   bool
	result string
	err    error
}

func NewUploadService(api StoriesAPI, gate AuthGate, bus Publisher, log logging.Logger) *UploadService {
	return &UploadService{api: api, gate: gate, bus: bus, log: log}
}

// SetListener replaces the listener; nil disables notifications.
func (u *UploadService) SetListener(l StoriesListener) {
	u.listener = l
}

// Submit uploads doc and reports the outcome to the listener.
//
// Invalid documents fail before anything else. Without a session no request
// is made: the upload is deferred until sign in, the controller is asked for
// credentials and ErrAuthRequired is returned.
//
// While a request is in flight Result is empty. Any failure, an empty reply
// included, restores the previous result.
func (u *UploadService) Submit(ctx context.Context, doc models.Document) (err error) {
	defer func() { u.err = err }()

	if err = doc.Validate(); err != nil {
		u.notifyError(err)
		return err
	}

	if !u.gate.IsAuthed() {
		u.gate.Defer(func(ctx context.Context) {
			_ = u.Submit(ctx, doc)
		})
		if u.bus != nil {
			u.bus.Publish(events.AuthRequired{Reason: events.ReasonLoginRequired})
		}
		return ErrAuthRequired
	}

	previous := u.result
	u.result = ""
	u.busy = true
	defer func() { u.busy = false }()

	u.log.Info(ctx, "uploading document", "name", doc.Name, "bytes", len(doc.Data))

	resp, err := u.api.GenerateStories(ctx, doc)
	if err != nil {
		u.result = previous
		u.log.Warn(ctx, "upload failed", "error", err)
		u.notifyError(err)
		return err
	}

	text, err := NormalizeStories(resp)
	if err != nil {
		u.result = previous
		u.notifyError(err)
		return err
	}

	u.result = text
	if u.listener != nil {
		u.listener.OnStories(text)
	}
	return nil
}

func (u *UploadService) notifyError(err error) {
	if u.listener != nil {
		u.listener.OnError(err)
	}
}

// Busy reports whether an upload is in flight.
func (u *UploadService) Busy() bool { return u.busy }

// Result is the last normalized story text, or "".
func (u *UploadService) Result() string { return u.result }

// Err is the outcome of the most recent Submit, including one replayed after
// sign in. It is ErrAuthRequired while an upload waits for credentials.
func (u *UploadService) Err() error { return u.err }

// UserMessage renders err for display without exposing response internals.
func UserMessage(err error) string {
	var (
		failed    *client.RequestFailedError
		malformed *client.MalformedResponseError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyResult):
		return "No stories returned from server."
	case errors.Is(err, ErrAuthRequired):
		return "Please sign in to continue."
	case errors.Is(err, client.ErrNetwork):
		return "Could not reach the server."
	case errors.As(err, &failed):
		return failed.Message
	case errors.As(err, &malformed):
		return malformed.Error()
	case models.IsValidationError(err):
		return err.Error()
	default:
		if msg := err.Error(); msg != "" {
			return msg
		}
		return "Upload failed"
	}
}
