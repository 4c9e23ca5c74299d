// Package tokenize implements the sole segmentation authority shared by
// the build and search paths of the gazetteer: normalize, split on
// punctuation and whitespace, and emit tokens with byte offsets into
// the original input. Divergence between build-time and query-time
// tokenization silently destroys recall, so both paths must share the
// same *Tokenizer instance.
package tokenize

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

// defaultPunctuation is the set of punctuation runes removed during
// pre-tokenization, in addition to any run of whitespace. It also holds
// U+001F, the Index's key separator, so that no token can contain it.
const defaultPunctuation = ",.:\"()\x1f"

// Token is a single segment produced by the Tokenizer, carrying the byte
// offset range [Start, End) it occupied in the original, un-normalized
// input text.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokens is an ordered sequence of Token.
type Tokens []Token

// Strings returns the token texts in order, used as the lookup key into
// the Index.
func (t Tokens) Strings() []string {
	out := make([]string, len(t))
	for i, tok := range t {
		out[i] = tok.Text
	}
	return out
}

// Tokenizer is immutable after construction and safe for concurrent use,
// shared by reference between the build orchestrator and the search
// engine.
type Tokenizer struct {
	punctuation map[rune]struct{}
	// maxBatchParallel bounds the number of goroutines used by EncodeBatch.
	maxBatchParallel int
}

// Option configures a Tokenizer at construction time.
type Option func(*Tokenizer)

// WithMaxBatchParallel overrides the bounded parallelism used by
// EncodeBatch. Defaults to 8.
func WithMaxBatchParallel(n int) Option {
	return func(t *Tokenizer) {
		if n > 0 {
			t.maxBatchParallel = n
		}
	}
}

// New constructs a Tokenizer using the default punctuation set.
func New(opts ...Option) *Tokenizer {
	set := make(map[rune]struct{}, len(defaultPunctuation))
	for _, r := range defaultPunctuation {
		set[r] = struct{}{}
	}
	t := &Tokenizer{punctuation: set, maxBatchParallel: 8}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tokenizer) isSplit(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	_, ok := t.punctuation[r]
	return ok
}

// Tokenize converts text into an ordered list of tokens. It never fails on
// well-formed (valid UTF-8) text; input that normalizes to empty yields an
// empty Tokens slice.
//
// Normalization (lower-case, then Unicode NFKC) is applied to each
// emitted sub-slice independently rather than to the whole string up
// front, which keeps offset bookkeeping exact against the original,
// un-normalized byte positions. Segmentation is therefore decided on the
// original runes: a character that only becomes whitespace or one of the
// punctuation runes under NFKC (a fullwidth comma, for example) does not
// split the text, and its normalized form stays inside the token.
func (t *Tokenizer) Tokenize(text string) (Tokens, error) {
	var toks Tokens
	start := -1
	for i, r := range text {
		if t.isSplit(r) {
			if start >= 0 {
				toks = append(toks, t.makeToken(text, start, i))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, t.makeToken(text, start, len(text)))
	}
	return toks, nil
}

func (t *Tokenizer) makeToken(text string, start, end int) Token {
	raw := text[start:end]
	normalized := norm.NFKC.String(strings.ToLower(raw))
	return Token{Text: normalized, Start: start, End: end}
}

// EncodeBatch tokenizes every text in texts, semantically equal to mapping
// Tokenize over the input. The output order matches the input order; work
// is distributed over a bounded pool of goroutines.
func (t *Tokenizer) EncodeBatch(ctx context.Context, texts []string) ([]Tokens, error) {
	out := make([]Tokens, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.maxBatchParallel)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			toks, err := t.Tokenize(text)
			if err != nil {
				return err
			}
			out[i] = toks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
