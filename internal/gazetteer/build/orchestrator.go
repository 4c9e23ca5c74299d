// Package build sequences the gazetteer's index construction: filter
// rows, batch-tokenize, insert the Full entries, then derive and insert
// skip-gram and abbreviation variants.
package build

import (
	"context"
	"log/slog"
	"strings"

	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/corpus"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/expand"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/index"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/tokenize"
)

// Config is the BuildConfig value consumed from the config collaborator:
// the knobs governing abbreviation and skip-gram expansion, plus an
// optional filter-list of search terms to drop before tokenization.
type Config struct {
	GenerateAbbreviations bool
	AbbrevMaxIndex        int
	AbbrevMinSuffixLength int

	GenerateSkipGrams bool
	SkipGramMinLength int
	SkipGramMaxSkips  int

	FilterList map[string]struct{}
}

// progressInterval controls how often Build logs row-count progress.
const progressInterval = 10000

// Build runs the full pipeline — filter, batch-tokenize, insert Full,
// derive skip-grams, derive abbreviations — against rows, inserting into
// idx using tok as the shared tokenizer instance. Passing the same idx
// across multiple Build calls (one per corpus) accumulates all of them
// into a single Index. Full entries are inserted before derived variants
// so that a derived key never shadows a Full one in progress accounting,
// though because all match-types coexist in storage the final result is
// identical regardless of insertion order.
func Build(ctx context.Context, cfg Config, tok *tokenize.Tokenizer, rows []corpus.Row, idx *index.Index, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	filtered := filterRows(rows, cfg.FilterList)
	logger.Info("gazetteer build: filtered rows", "input", len(rows), "kept", len(filtered))

	searchTerms := make([]string, len(filtered))
	for i, r := range filtered {
		searchTerms[i] = r.SearchTerm
	}
	tokenized, err := tok.EncodeBatch(ctx, searchTerms)
	if err != nil {
		return err
	}

	entries := make([]index.Entry, len(filtered))
	for i, r := range filtered {
		entries[i] = index.Entry{
			Tokens:     tokenized[i].Strings(),
			SearchTerm: r.SearchTerm,
			Label:      r.Label,
		}
	}

	for i, e := range entries {
		idx.Insert(e.Tokens, e.SearchTerm, e.Label, index.Full)
		if (i+1)%progressInterval == 0 {
			logger.Info("gazetteer build: inserted Full entries", "count", i+1, "total", len(entries))
		}
	}
	logger.Info("gazetteer build: Full entries inserted", "count", len(entries))

	if cfg.GenerateSkipGrams {
		variants, err := expand.SkipGrams(ctx, entries, expand.SkipGramConfig{
			MinLength: cfg.SkipGramMinLength,
			MaxSkips:  cfg.SkipGramMaxSkips,
		})
		if err != nil {
			return err
		}
		insertVariants(idx, variants)
		logger.Info("gazetteer build: skip-gram variants inserted", "count", len(variants))
	}

	if cfg.GenerateAbbreviations {
		variants, err := expand.Abbreviations(ctx, entries, expand.AbbrevConfig{
			MaxIndex:        cfg.AbbrevMaxIndex,
			MinSuffixLength: cfg.AbbrevMinSuffixLength,
		})
		if err != nil {
			return err
		}
		insertVariants(idx, variants)
		logger.Info("gazetteer build: abbreviation variants inserted", "count", len(variants))
	}

	logger.Info("gazetteer build: complete", "keys", idx.Len(), "tree_depth", idx.TreeDepth())
	return nil
}

func insertVariants(idx *index.Index, variants []expand.Variant) {
	for _, v := range variants {
		idx.Insert(v.Tokens, v.SearchTerm, v.Label, v.Type)
	}
}

func filterRows(rows []corpus.Row, filterList map[string]struct{}) []corpus.Row {
	if len(filterList) == 0 {
		return rows
	}
	out := make([]corpus.Row, 0, len(rows))
	for _, r := range rows {
		if _, dropped := filterList[strings.ToLower(r.SearchTerm)]; dropped {
			continue
		}
		out = append(out, r)
	}
	return out
}
