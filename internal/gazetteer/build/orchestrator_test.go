package build

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/corpus"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/index"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/tokenize"
)

func TestBuildInsertsFullEntries(t *testing.T) {
	tok := tokenize.New()
	rows := []corpus.Row{
		{SearchTerm: "An example", Label: "uri:example"},
		{SearchTerm: "Another term", Label: "uri:other"},
	}

	idx := index.New()
	require.NoError(t, Build(context.Background(), Config{}, tok, rows, idx, slog.Default()))

	set, ok := idx.Lookup([]string{"an", "example"})
	require.True(t, ok)
	assert.True(t, set.HasFull())
}

func TestBuildAppliesFilterList(t *testing.T) {
	tok := tokenize.New()
	rows := []corpus.Row{
		{SearchTerm: "An example", Label: "uri:example"},
		{SearchTerm: "Banned Term", Label: "uri:banned"},
	}
	cfg := Config{FilterList: map[string]struct{}{"banned term": {}}}

	idx := index.New()
	require.NoError(t, Build(context.Background(), cfg, tok, rows, idx, slog.Default()))

	_, ok := idx.Lookup([]string{"banned", "term"})
	assert.False(t, ok)
	_, ok = idx.Lookup([]string{"an", "example"})
	assert.True(t, ok)
}

func TestBuildGeneratesSkipGramsAndAbbreviations(t *testing.T) {
	tok := tokenize.New()
	rows := []corpus.Row{
		{SearchTerm: "An example phrase", Label: "uri:phrase"},
	}
	cfg := Config{
		GenerateSkipGrams: true,
		SkipGramMinLength: 2,
		SkipGramMaxSkips:  2,

		GenerateAbbreviations: true,
		AbbrevMaxIndex:        -1,
	}

	idx := index.New()
	require.NoError(t, Build(context.Background(), cfg, tok, rows, idx, slog.Default()))

	set, ok := idx.Lookup([]string{"an", "example"})
	require.True(t, ok)
	var found bool
	for m := range set {
		if m.Type == index.SkipGram && m.MatchLabel == "uri:phrase" {
			found = true
		}
	}
	assert.True(t, found)

	set, ok = idx.Lookup([]string{"a", "example", "phrase"})
	require.True(t, ok)
	found = false
	for m := range set {
		if m.Type == index.Abbreviated && m.MatchLabel == "uri:phrase" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildEmptyRowsProducesEmptyIndex(t *testing.T) {
	tok := tokenize.New()
	idx := index.New()
	require.NoError(t, Build(context.Background(), Config{}, tok, nil, idx, slog.Default()))
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.TreeDepth())
}

func TestBuildAccumulatesAcrossMultipleCalls(t *testing.T) {
	tok := tokenize.New()
	idx := index.New()

	require.NoError(t, Build(context.Background(), Config{}, tok, []corpus.Row{
		{SearchTerm: "An example", Label: "uri:example"},
	}, idx, slog.Default()))
	require.NoError(t, Build(context.Background(), Config{}, tok, []corpus.Row{
		{SearchTerm: "Another term", Label: "uri:other"},
	}, idx, slog.Default()))

	_, ok := idx.Lookup([]string{"an", "example"})
	assert.True(t, ok)
	_, ok = idx.Lookup([]string{"another", "term"})
	assert.True(t, ok)
}
