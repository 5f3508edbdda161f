package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/storygen/internal/client/models"
	"github.com/dmitrijs2005/storygen/internal/client/services"
	"github.com/dmitrijs2005/storygen/internal/export"
	"github.com/dmitrijs2005/storygen/internal/markdown"
)

// ErrUploadInProgress rejects a second upload while one is in flight. Submit
// is synchronous, so this only happens when Upload is re-entered from code
// running inside a submit, such as a listener or transport callback.
var ErrUploadInProgress = errors.New("an upload is already in progress")

// Upload reads the file at path and submits it. The outcome is reported
// through OnStories or OnError; when nobody is signed in the upload waits
// for the auth prompt that follows the command.
func (a *App) Upload(ctx context.Context, path string) error {
	if a.uploads.Busy() {
		return ErrUploadInProgress
	}

	doc, err := models.LoadDocument(path)
	if err != nil {
		return err
	}

	printlnFn("Uploading", doc.Name, "...")
	err = a.uploads.Submit(ctx, *doc)
	if err != nil && !errors.Is(err, services.ErrAuthRequired) {
		a.log.Debug(ctx, "upload finished with error", "error", err)
	}
	return nil
}

// OnStories prints freshly generated stories.
func (a *App) OnStories(text string) {
	printlnFn(renderStories(text))
	printlnFn("Use 'export pdf|docx|html' to save them or 'copy' to copy them.")
}

func (a *App) OnError(err error) {
	printlnFn("Error:", services.UserMessage(err))
}

// Show prints the latest result again.
func (a *App) Show(ctx context.Context) error {
	text := a.uploads.Result()
	if markdown.IsBlank(text) {
		printlnFn("No stories yet. Use 'upload <path>' first.")
		return nil
	}
	printlnFn(renderStories(text))
	return nil
}

// Export encodes the latest result as format and stores it in dir, or in the
// configured destination when dir is empty.
func (a *App) Export(ctx context.Context, format, dir string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	enc, err := export.NewEncoder(f)
	if err != nil {
		return err
	}

	artifact, err := export.Export(enc, a.uploads.Result())
	if err != nil {
		return err
	}

	sink := a.sink
	if dir != "" {
		sink = export.NewDirSink(dir)
	}

	location, err := sink.Put(ctx, artifact)
	if err != nil {
		return err
	}
	a.log.Info(ctx, "exported stories", "format", string(f), "bytes", len(artifact.Data))
	printlnFn("Saved", location)
	return nil
}

// Copy puts the latest result on the clipboard. It does nothing when there
// is nothing to copy.
func (a *App) Copy(ctx context.Context) error {
	text := a.uploads.Result()
	if markdown.IsBlank(text) {
		printlnFn("Nothing to copy.")
		return nil
	}
	printFn(osc52(text))
	printlnFn("Copied to clipboard.")
	return nil
}

// osc52 wraps text in the terminal clipboard escape sequence.
func osc52(text string) string {
	return "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
}

// Generate uploads path, asks for credentials if needed and exports the
// result in each of formats. It backs the non-interactive generate command.
// Upload failures have been printed by OnError when Generate returns them;
// see AlreadyReported.
func (a *App) Generate(ctx context.Context, path string, formats []export.Format) error {
	if !a.session.Rehydrated() {
		return ErrNotReady
	}

	doc, err := models.LoadDocument(path)
	if err != nil {
		return err
	}

	err = a.uploads.Submit(ctx, *doc)
	if errors.Is(err, services.ErrAuthRequired) {
		if err := a.resolveAuthRequest(ctx); err != nil {
			return err
		}
		if !a.session.IsAuthed() {
			return services.ErrAuthRequired
		}
		// Signing in replayed the upload.
		err = a.uploads.Err()
	}
	if errors.Is(err, services.ErrAuthRequired) {
		return err
	}
	if err != nil {
		return &reportedError{err: err}
	}
	locations, err := export.Publish(ctx, a.sink, a.uploads.Result(), formats)
	if err != nil {
		return err
	}
	for _, loc := range locations {
		printlnFn("Saved", loc)
	}
	return nil
}

// renderStories formats story text for the terminal: heading markers become
// underlines and bold markers are dropped.
func renderStories(text string) string {
	var b strings.Builder
	for i, line := range markdown.ClassifyText(text) {
		if i > 0 {
			b.WriteByte('\n')
		}
		if markdown.IsBlank(line.Text) {
			continue
		}

		var plain strings.Builder
		for _, s := range line.Spans {
			plain.WriteString(s.Text)
		}
		b.WriteString(plain.String())

		width := utf8.RuneCountInString(plain.String())
		switch line.Level {
		case 1:
			b.WriteString("\n" + strings.Repeat("=", width))
		case 2, 3:
			b.WriteString("\n" + strings.Repeat("-", width))
		}
	}
	return b.String()
}
