// Package corpus reads (search_term, label) rows out of tabular gazetteer
// source files, transparently decompressing ".gz" files and honoring an
// optional deny-list of search terms to drop.
package corpus

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/gzerr"
)

// maxFileParallel bounds the goroutines used to read a directory's files
// concurrently.
const maxFileParallel = 8

// ValidateFormat checks the format-level invariants a CorpusFormat must
// satisfy: a configured label_format_string must contain its
// substitution pattern, delimiter/quote must each be a single byte, and
// — because row parsing is built on encoding/csv, which hardcodes its
// quote character to '"' and only understands escaping a literal quote
// by doubling it — a Format that enables quoting must use quote '"' and
// DoubleQuote, rather than silently falling back to behavior the
// configured value didn't ask for.
func ValidateFormat(f Format) error {
	if f.LabelFormatString != "" && !strings.Contains(f.LabelFormatString, f.LabelFormatPattern) {
		return gzerr.ErrConfig("label_format_string %q does not contain label_format_pattern %q", f.LabelFormatString, f.LabelFormatPattern)
	}
	if utf8.RuneLen(f.Delimiter) != 1 {
		return gzerr.ErrConfig("delimiter %q is not a single byte", f.Delimiter)
	}
	if utf8.RuneLen(f.Quote) != 1 {
		return gzerr.ErrConfig("quote %q is not a single byte", f.Quote)
	}
	if f.Quoting && f.Quote != '"' {
		return gzerr.ErrConfig("quote %q is not supported: the CSV parser only recognizes '\"' as a quote character", string(f.Quote))
	}
	if f.Quoting && !f.DoubleQuote {
		return gzerr.ErrConfig("double_quote must be true when quoting is enabled: the CSV parser only escapes a literal quote by doubling it")
	}
	return nil
}

// DiscoverFiles lists the regular files directly under dir, sorted
// case-insensitively by filename so that directory iteration order never
// affects the order in which rows are read.
func DiscoverFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, gzerr.ErrIO("reading corpus directory %q: %v", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// ReadDir reads every file DiscoverFiles finds under dir, in parallel,
// and concatenates the per-file row lists in file-name order.
func ReadDir(ctx context.Context, dir string, format Format, denyList map[string]struct{}) ([]Row, error) {
	paths, err := DiscoverFiles(dir)
	if err != nil {
		return nil, err
	}

	perFile := make([][]Row, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFileParallel)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			rows, err := ReadFile(path, format, denyList)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			perFile[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, rows := range perFile {
		total += len(rows)
	}
	out := make([]Row, 0, total)
	for _, rows := range perFile {
		out = append(out, rows...)
	}
	return out, nil
}

// ReadFile parses a single corpus file per format, transparently
// decompressing a ".gz" suffix, dropping rows whose lower-cased search
// term appears in denyList (nil disables the deny-list).
func ReadFile(path string, format Format, denyList map[string]struct{}) ([]Row, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, gzerr.ErrIO("opening %q: %v", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, gzerr.ErrIO("decompressing %q: %v", path, err)
		}
		defer gz.Close()
		r = gz
	}

	return parseRows(r, format, denyList)
}

func parseRows(r io.Reader, format Format, denyList map[string]struct{}) ([]Row, error) {
	r = skipLines(r, format.SkipLines)

	// encoding/csv always quotes with '"' and always escapes a literal
	// quote by doubling it; ValidateFormat rejects any Format that asks
	// for something else rather than silently ignoring Quote/DoubleQuote.
	cr := csv.NewReader(r)
	cr.Comma = format.Delimiter
	cr.LazyQuotes = !format.Quoting
	cr.TrimLeadingSpace = false
	if format.Comment != "" {
		cr.Comment = []rune(format.Comment)[0]
	}
	if format.Flexible {
		cr.FieldsPerRecord = -1
	}

	searchIdx := format.SearchTermColumnIdx
	labelIdx := format.LabelColumnIdx

	var rows []Row
	headerPending := format.HasHeader
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, gzerr.ErrParse("parsing row: %v", err)
		}
		if headerPending {
			headerPending = false
			continue
		}
		if searchIdx >= len(record) || labelIdx >= len(record) {
			return nil, gzerr.ErrParse("row has %d columns, need search_term at %d and label at %d", len(record), searchIdx, labelIdx)
		}

		searchTerm := strings.TrimSpace(record[searchIdx])
		if searchTerm == "" {
			continue
		}

		rawLabel := record[labelIdx]
		label := rawLabel
		if format.LabelFormatString != "" {
			label = strings.ReplaceAll(format.LabelFormatString, format.LabelFormatPattern, rawLabel)
		}

		if denyList != nil {
			if _, banned := denyList[strings.ToLower(searchTerm)]; banned {
				continue
			}
		}

		rows = append(rows, Row{SearchTerm: searchTerm, Label: label})
	}
	return rows, nil
}

// skipLines discards the first n lines of r before CSV parsing begins.
func skipLines(r io.Reader, n int) io.Reader {
	if n <= 0 {
		return r
	}
	br := bufio.NewReader(r)
	for i := 0; i < n; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			break
		}
	}
	return br
}
