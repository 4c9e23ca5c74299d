package expand

import (
	"context"
	"strings"

	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/index"
)

// SkipGramConfig parameterizes the skip-gram rule.
type SkipGramConfig struct {
	// MinLength is the eligibility floor: only entries with strictly
	// more tokens than this are expanded at all.
	MinLength int
	// MaxSkips bounds the number of interior tokens that may be deleted
	// from a single entry, counted as recursion depth rather than a
	// flat count, so a two-skip budget can remove two tokens one at a
	// time but never reuse budget across sibling branches.
	MaxSkips int
}

// SkipGrams derives, for every entry whose token sequence is longer than
// cfg.MinLength, every distinct subsequence reachable by deleting up to
// cfg.MaxSkips interior tokens (position 0 is never dropped). A branch
// stops recursing once it reaches a sequence whose length is at or below
// MinLength; that boundary sequence is still produced, it is simply not
// shortened any further. Runs as a bounded-parallel map over entries.
func SkipGrams(ctx context.Context, entries []index.Entry, cfg SkipGramConfig) ([]Variant, error) {
	return mapEntries(ctx, entries, func(e index.Entry) []Variant {
		return skipGramEntry(e, cfg)
	})
}

func skipGramEntry(e index.Entry, cfg SkipGramConfig) []Variant {
	if len(e.Tokens) <= cfg.MinLength {
		return nil
	}

	seen := make(map[string][]string)
	deleteInterior(e.Tokens, cfg.MaxSkips, cfg.MinLength, seen)

	variants := make([]Variant, 0, len(seen))
	for _, tokens := range seen {
		variants = append(variants, Variant{
			Tokens:     tokens,
			SearchTerm: e.SearchTerm,
			Label:      e.Label,
			Type:       index.SkipGram,
		})
	}
	return variants
}

// deleteInterior recursively deletes one interior token at a time,
// recording every distinct sequence produced along the way into seen,
// keyed by the joined token sequence to deduplicate across branches.
func deleteInterior(tokens []string, skipsLeft, minLength int, seen map[string][]string) {
	if skipsLeft <= 0 {
		return
	}

	for i := 1; i < len(tokens); i++ {
		variant := make([]string, 0, len(tokens)-1)
		variant = append(variant, tokens[:i]...)
		variant = append(variant, tokens[i+1:]...)

		key := strings.Join(variant, "\x1f")
		if _, ok := seen[key]; !ok {
			seen[key] = variant
		}

		if len(variant) <= minLength {
			continue
		}
		deleteInterior(variant, skipsLeft-1, minLength, seen)
	}
}
