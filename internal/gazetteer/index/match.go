package index

// MatchType is an ordered enumeration of how a Match was derived. Lower
// values are "better": Full dominates Abbreviated, which dominates
// SkipGram. None is a sentinel that is never stored in an Index.
type MatchType int

const (
	// Full is used exactly for the original tokenization of a source entry.
	Full MatchType = iota
	// Abbreviated marks a variant produced by the abbreviation rule.
	Abbreviated
	// SkipGram marks a variant produced by the skip-gram rule.
	SkipGram
	// None is a sentinel meaning "no match type"; never stored.
	None
)

// String renders the MatchType using its canonical name, used both for
// debugging output and for the HTTP query response's match_types field.
func (m MatchType) String() string {
	switch m {
	case Full:
		return "Full"
	case Abbreviated:
		return "Abbreviated"
	case SkipGram:
		return "SkipGram"
	default:
		return "None"
	}
}

// Entry is a build-time (token_sequence, search_term, label) triple, the
// unit Expansion Rules consume and the Index stores as the Full match of
// token_sequence. search_term is retained as provenance for reporting;
// label is an opaque payload (e.g. a URI).
type Entry struct {
	Tokens     []string
	SearchTerm string
	Label      string
}

// Match is a structurally comparable (match_type, match_string,
// match_label) triple. Because Go strings are immutable value types whose
// assignment copies only a (pointer, length) header rather than the
// underlying bytes, constructing every variant's Match directly from a
// single Entry's SearchTerm/Label — never by re-concatenating — already
// gives the "shared payload, not duplicated per variant" discipline the
// data model requires; no extra indirection is needed for that guarantee.
type Match struct {
	Type        MatchType
	MatchString string
	MatchLabel  string
}

// Less implements the total order on Match used for sorting a span's
// emitted match list: lexicographic on (match_type, match_string,
// match_label).
func (m Match) Less(other Match) bool {
	if m.Type != other.Type {
		return m.Type < other.Type
	}
	if m.MatchString != other.MatchString {
		return m.MatchString < other.MatchString
	}
	return m.MatchLabel < other.MatchLabel
}
