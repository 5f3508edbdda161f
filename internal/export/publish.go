package export

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/storygen/internal/markdown"
)

// maxParallelExports bounds the encoders running at once.
const maxParallelExports = 3

// Publish encodes text in every format and stores the artifacts in sink.
// Encoding and storing run concurrently; the returned locations follow the
// order of formats. The first failure cancels the rest.
func Publish(ctx context.Context, sink Sink, text string, formats []Format) ([]string, error) {
	if markdown.IsBlank(text) {
		return nil, ErrEmptyContent
	}

	locations := make([]string, len(formats))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelExports)

	for i, f := range formats {
		i, f := i, f
		eg.Go(func() error {
			enc, err := NewEncoder(f)
			if err != nil {
				return err
			}
			artifact, err := Export(enc, text)
			if err != nil {
				return err
			}
			loc, err := sink.Put(gctx, artifact)
			if err != nil {
				return fmt.Errorf("store %s: %w", artifact.Name, err)
			}
			locations[i] = loc
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return locations, nil
}
