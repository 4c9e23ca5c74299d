// Package index implements the gazetteer's flat multimap from a
// token-sequence key to a set of Match records. A trie was considered and
// rejected: the search path already enumerates every prefix of a window
// explicitly, so there is no shared traversal state a tree structure
// could reuse, and a flat hash map is both simpler and faster for this
// access pattern.
package index

import (
	"strings"
	"sync"
)

// keySeparator joins tokens into a map key. It cannot appear inside a
// normalized token because the Tokenizer strips it as punctuation/
// whitespace before a token is ever emitted.
const keySeparator = "\x1f"

func keyOf(tokens []string) string {
	return strings.Join(tokens, keySeparator)
}

// Index is a multimap from token sequence to a set of Match records, plus
// the running maximum key length (tree_depth). It is mutated from a
// single owner during build and is safe to read concurrently once frozen.
type Index struct {
	mu        sync.RWMutex
	buckets   map[string]MatchSet
	treeDepth int
}

// New constructs an empty Index.
func New() *Index {
	return &Index{buckets: make(map[string]MatchSet)}
}

// TreeDepth returns the length of the longest key ever inserted.
func (idx *Index) TreeDepth() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.treeDepth
}

// Insert adds a Match for the given token-sequence key, creating the
// bucket if necessary and extending TreeDepth if the key is the longest
// seen so far. Inserting an equal (tokens, match) pair twice is a no-op.
func (idx *Index) Insert(tokens []string, searchTerm, label string, matchType MatchType) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	key := keyOf(tokens)
	set, ok := idx.buckets[key]
	if !ok {
		set = make(MatchSet)
		idx.buckets[key] = set
	}
	set.Add(Match{Type: matchType, MatchString: searchTerm, MatchLabel: label})

	if len(tokens) > idx.treeDepth {
		idx.treeDepth = len(tokens)
	}
}

// Lookup returns the Match set stored for tokens, or (nil, false) if the
// key is absent. The returned set must be treated as read-only.
func (idx *Index) Lookup(tokens []string) (MatchSet, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	set, ok := idx.buckets[keyOf(tokens)]
	return set, ok
}

// Len reports the number of distinct keys stored, mainly for diagnostics
// and tests.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.buckets)
}
