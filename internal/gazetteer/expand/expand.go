// Package expand derives Abbreviated and SkipGram variants from a batch
// of tokenized entries. Each rule runs as a bounded-parallel map over the
// source entries; the orchestrator is responsible for inserting the
// resulting variants into the Index serially, preserving the build's
// single-owner discipline.
package expand

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/index"
)

// Variant is a derived (non-Full) index insertion produced by an
// expansion rule.
type Variant struct {
	Tokens     []string
	SearchTerm string
	Label      string
	Type       index.MatchType
}

// maxParallel bounds the goroutines used to derive variants across
// entries in a single batch.
const maxParallel = 8

// mapEntries runs fn over every entry using a bounded worker pool and
// flattens the per-entry results in entry order, so derivation is
// deterministic regardless of worker count.
func mapEntries(ctx context.Context, entries []index.Entry, fn func(index.Entry) []Variant) ([]Variant, error) {
	perEntry := make([][]Variant, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			perEntry[i] = fn(e)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, v := range perEntry {
		total += len(v)
	}
	out := make([]Variant, 0, total)
	for _, v := range perEntry {
		out = append(out, v...)
	}
	return out, nil
}
