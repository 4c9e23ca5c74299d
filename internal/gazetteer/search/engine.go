// Package search implements the gazetteer's query path: tokenize, slide
// a fixed-width window across the query, probe every prefix of each
// window against the Index, select among the candidates per policy, and
// dedupe the resulting spans by end offset.
package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/index"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/tokenize"
)

// Policy selects which candidate prefix(es) of a matching window are
// emitted as spans.
type Policy int

const (
	// LastPreferFull starts from the longest matching prefix and
	// restricts its match set to Full matches when any are present.
	// This is the default policy.
	LastPreferFull Policy = iota
	// Last emits exactly one span per window, using the longest
	// matching prefix's full match set.
	Last
	// All emits one span per matching prefix, shortest to longest.
	All
)

// Span is a single recognized mention: the verbatim source text it
// covers, its byte offsets into the query, and the matches that apply
// to it, sorted by the Match total order.
type Span struct {
	Text    string
	Start   int
	End     int
	Matches []index.Match
}

// maxWindowParallel bounds the goroutines used to evaluate windows of a
// single query concurrently.
const maxWindowParallel = 8

// candidate is one non-absent prefix lookup within a window, in
// increasing prefix-length order.
type candidate struct {
	prefixLen int
	matches   index.MatchSet
}

// Search tokenizes text, slides a window of width W = maxLen (or the
// Index's TreeDepth when maxLen <= 0) across it, and returns the
// resulting spans after policy selection and end-offset dedupe. Returns
// (nil, nil) if W is zero or the query tokenizes to no tokens. The only
// error it returns is ctx's error when ctx is cancelled during window
// evaluation.
func Search(ctx context.Context, idx *index.Index, tok *tokenize.Tokenizer, text string, maxLen int, policy Policy) ([]Span, error) {
	tokens, err := tok.Tokenize(text)
	if err != nil {
		return nil, err
	}

	w := maxLen
	if w <= 0 {
		w = idx.TreeDepth()
	}
	if w == 0 || len(tokens) == 0 {
		return nil, nil
	}

	padded := make(tokenize.Tokens, len(tokens)+w)
	copy(padded, tokens)
	for i := len(tokens); i < len(padded); i++ {
		padded[i] = tokenize.Token{}
	}

	numWindows := len(tokens) + 1
	perWindow := make([][]Span, numWindows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWindowParallel)
	for p := 0; p < numWindows; p++ {
		p := p
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			perWindow[p] = evaluateWindow(idx, text, padded, p, w, policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]Span, 0, numWindows)
	for _, spans := range perWindow {
		ordered = append(ordered, spans...)
	}

	return dedupe(ordered), nil
}

func evaluateWindow(idx *index.Index, text string, padded tokenize.Tokens, p, w int, policy Policy) []Span {
	window := padded[p : p+w]

	var candidates []candidate
	for i := 0; i < w; i++ {
		prefix := window[:i+1].Strings()
		set, ok := idx.Lookup(prefix)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{prefixLen: i + 1, matches: set})
	}
	if len(candidates) == 0 {
		return nil
	}

	start := window[0].Start

	switch policy {
	case All:
		spans := make([]Span, 0, len(candidates))
		for _, c := range candidates {
			spans = append(spans, makeSpan(text, start, window[c.prefixLen-1].End, c.matches))
		}
		return spans
	case Last:
		last := candidates[len(candidates)-1]
		return []Span{makeSpan(text, start, window[last.prefixLen-1].End, last.matches)}
	default: // LastPreferFull
		last := candidates[len(candidates)-1]
		matches := last.matches
		if matches.HasFull() {
			matches = matches.FullOnly()
		}
		return []Span{makeSpan(text, start, window[last.prefixLen-1].End, matches)}
	}
}

func makeSpan(text string, start, end int, matches index.MatchSet) Span {
	return Span{
		Text:    text[start:end],
		Start:   start,
		End:     end,
		Matches: matches.Sorted(),
	}
}

// dedupe walks the spans in window order and drops any span whose end
// equals the previously retained span's end. Only that one neighbour is
// compared, so two spans with the same end that are separated by a
// retained span with a different end are both kept. This is a
// deliberate under-approximation: it removes the common "nested match
// ends here" case and leaves other overlaps untouched.
func dedupe(spans []Span) []Span {
	if len(spans) == 0 {
		return spans
	}
	out := make([]Span, 0, len(spans))
	out = append(out, spans[0])
	for _, s := range spans[1:] {
		if s.End == out[len(out)-1].End {
			continue
		}
		out = append(out, s)
	}
	return out
}
