package expand

import (
	"context"

	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/index"
)

// AbbrevConfig parameterizes the abbreviation rule.
type AbbrevConfig struct {
	// MaxIndex is the inclusive upper bound on which token positions may
	// be abbreviated. A negative or out-of-range value is clamped to
	// len(tokens)-1 per entry, so every position, the last included, is
	// eligible.
	MaxIndex int
	// MinSuffixLength, if positive, requires the combined character
	// length of the tokens after the abbreviated position to be at
	// least this long; positions failing the check are skipped.
	MinSuffixLength int
}

// Abbreviations derives, for every entry with more than one token, one
// variant per eligible position in which that token is replaced by its
// first character. It runs as a bounded-parallel map over entries; the
// per-entry order of variants is stable but the interleaving across
// entries is not meaningful (the caller inserts into an Index, which is
// unordered itself).
func Abbreviations(ctx context.Context, entries []index.Entry, cfg AbbrevConfig) ([]Variant, error) {
	return mapEntries(ctx, entries, func(e index.Entry) []Variant {
		return abbreviateEntry(e, cfg)
	})
}

func abbreviateEntry(e index.Entry, cfg AbbrevConfig) []Variant {
	n := len(e.Tokens)
	if n <= 1 {
		return nil
	}

	maxIndex := cfg.MaxIndex
	if maxIndex < 0 || maxIndex > n-1 {
		maxIndex = n - 1
	}

	var variants []Variant
	for i := 0; i <= maxIndex; i++ {
		if cfg.MinSuffixLength > 0 && suffixRuneLength(e.Tokens[i+1:]) < cfg.MinSuffixLength {
			continue
		}

		runes := []rune(e.Tokens[i])
		if len(runes) == 0 {
			continue
		}

		tokens := make([]string, n)
		copy(tokens, e.Tokens)
		tokens[i] = string(runes[0])

		variants = append(variants, Variant{
			Tokens:     tokens,
			SearchTerm: e.SearchTerm,
			Label:      e.Label,
			Type:       index.Abbreviated,
		})
	}
	return variants
}

func suffixRuneLength(tokens []string) int {
	total := 0
	for _, tok := range tokens {
		total += len([]rune(tok))
	}
	return total
}
