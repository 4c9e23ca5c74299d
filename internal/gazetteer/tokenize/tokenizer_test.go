package tokenize

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeBasic(t *testing.T) {
	tok := New()
	toks, err := tok.Tokenize("An example phrase")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, []string{"an", "example", "phrase"}, toks.Strings())
	assert.Equal(t, 0, toks[0].Start)
	assert.Equal(t, 2, toks[0].End)
	assert.Equal(t, 3, toks[1].Start)
	assert.Equal(t, 10, toks[1].End)
}

func TestTokenizePunctuationRemoved(t *testing.T) {
	tok := New()
	toks, err := tok.Tokenize(`P. puffinus (L.)`)
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "puffinus", "l"}, toks.Strings())
}

func TestTokenizeEmptyInput(t *testing.T) {
	tok := New()
	toks, err := tok.Tokenize("")
	require.NoError(t, err)
	assert.Empty(t, toks)

	toks, err = tok.Tokenize("   ...  ")
	require.NoError(t, err)
	assert.Empty(t, toks)
}

func TestTokenizeOffsetsRoundtrip(t *testing.T) {
	tok := New()
	text := "Luscinia megarhynchos golzii"
	toks, err := tok.Tokenize(text)
	require.NoError(t, err)
	for _, got := range toks {
		assert.Equal(t, got.Text, strings.ToLower(text[got.Start:got.End]))
	}
}

func TestEncodeBatchPreservesOrder(t *testing.T) {
	tok := New(WithMaxBatchParallel(2))
	texts := []string{"An example", "Another phrase here", "Puffinus puffinus", "", "One"}
	batch, err := tok.EncodeBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, batch, len(texts))

	for i, text := range texts {
		want, err := tok.Tokenize(text)
		require.NoError(t, err)
		assert.Equal(t, want, batch[i])
	}
}
