package corpus

// Format mirrors the tabular layout of a single corpus file.
type Format struct {
	Comment             string
	Delimiter           rune
	Quote               rune
	Quoting             bool
	DoubleQuote         bool
	Flexible            bool
	HasHeader           bool
	SkipLines           int
	SearchTermColumnIdx int
	LabelColumnIdx      int
	LabelFormatString   string
	LabelFormatPattern  string
}

// DefaultFormat returns the Format used when a corpus descriptor does
// not override a field.
func DefaultFormat() Format {
	return Format{
		Comment:             "#",
		Delimiter:           '\t',
		Quote:               '"',
		Quoting:             true,
		DoubleQuote:         true,
		Flexible:            false,
		HasHeader:           false,
		SkipLines:           0,
		SearchTermColumnIdx: 0,
		LabelColumnIdx:      1,
		LabelFormatString:   "",
		LabelFormatPattern:  "{}",
	}
}

// Row is a single parsed (search_term, label) pair.
type Row struct {
	SearchTerm string
	Label      string
}
