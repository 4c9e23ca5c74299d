package corpus

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeGzFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestReadFileBasicTabDelimited(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "corpus.tsv", "An example\turi:example\nAn example phrase\turi:phrase\n")

	rows, err := ReadFile(path, DefaultFormat(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{SearchTerm: "An example", Label: "uri:example"}, rows[0])
	assert.Equal(t, Row{SearchTerm: "An example phrase", Label: "uri:phrase"}, rows[1])
}

func TestReadFileSkipsCommentsAndBlankSearchTerms(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "corpus.tsv", "# a comment\nAn example\turi:example\n \turi:empty\n")

	rows, err := ReadFile(path, DefaultFormat(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "An example", rows[0].SearchTerm)
}

func TestReadFileHonorsDenyList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "corpus.tsv", "An example\turi:example\nBanned Term\turi:banned\n")

	deny := map[string]struct{}{"banned term": {}}
	rows, err := ReadFile(path, DefaultFormat(), deny)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "An example", rows[0].SearchTerm)
}

func TestReadFileGzipDecompression(t *testing.T) {
	dir := t.TempDir()
	path := writeGzFile(t, dir, "corpus.tsv.gz", "An example\turi:example\n")

	rows, err := ReadFile(path, DefaultFormat(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "uri:example", rows[0].Label)
}

func TestReadFileLabelFormatString(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "corpus.tsv", "An example\t12345\n")

	format := DefaultFormat()
	format.LabelFormatString = "https://example.org/taxon/{}"
	format.LabelFormatPattern = "{}"

	rows, err := ReadFile(path, format, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://example.org/taxon/12345", rows[0].Label)
}

func TestValidateFormatRejectsBadLabelFormatString(t *testing.T) {
	format := DefaultFormat()
	format.LabelFormatString = "https://example.org/taxon/"
	format.LabelFormatPattern = "{}"

	err := ValidateFormat(format)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label_format_pattern")
}

func TestValidateFormatRejectsUnsupportedQuoteCharacter(t *testing.T) {
	format := DefaultFormat()
	format.Quote = '\''

	err := ValidateFormat(format)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quote")
}

func TestValidateFormatRejectsQuotingWithoutDoubleQuote(t *testing.T) {
	format := DefaultFormat()
	format.DoubleQuote = false

	err := ValidateFormat(format)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "double_quote")
}

func TestReadFileHasHeaderSkipsFirstRow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "corpus.tsv", "search_term\tlabel\nAn example\turi:example\n")

	format := DefaultFormat()
	format.HasHeader = true

	rows, err := ReadFile(path, format, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "An example", rows[0].SearchTerm)
}

func TestReadDirConcatenatesInFileNameOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "B.tsv", "second\turi:2\n")
	writeFile(t, dir, "a.tsv", "first\turi:1\n")

	rows, err := ReadDir(context.Background(), dir, DefaultFormat(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "first", rows[0].SearchTerm)
	assert.Equal(t, "second", rows[1].SearchTerm)
}
