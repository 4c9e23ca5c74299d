// Package config loads a gazetteer build configuration document: a
// single YAML file declaring the BuildConfig flags plus one or more
// named corpus descriptors, wrapped in an apiVersion/kind envelope.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/build"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/corpus"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/gzerr"
)

// SupportedAPIVersion is the only apiVersion this loader accepts.
const SupportedAPIVersion = "gazetteer/v1"

// ExpectedKind is the only document kind this loader accepts.
const ExpectedKind = "GazetteerBuildConfig"

// document is the on-disk shape of a build configuration file.
type document struct {
	APIVersion string        `yaml:"apiVersion"`
	Kind       string        `yaml:"kind"`
	BuildFlags buildFlagsDoc `yaml:"buildConfig"`
	Corpora    []corpusDoc   `yaml:"corpora"`
}

type buildFlagsDoc struct {
	GenerateAbbreviations bool     `yaml:"generate_abbreviations"`
	AbbrevMaxIndex        int      `yaml:"abbrv_max_index"`
	AbbrevMinSuffixLength int      `yaml:"abbrv_min_suffix_length"`
	GenerateSkipGrams     bool     `yaml:"generate_skip_grams"`
	SkipGramMinLength     int      `yaml:"skip_gram_min_length"`
	SkipGramMaxSkips      int      `yaml:"skip_gram_max_skips"`
	FilterList            []string `yaml:"filter_list"`
}

type corpusDoc struct {
	Name      string     `yaml:"name"`
	Path      string     `yaml:"path"`
	Format    formatDoc  `yaml:"format"`
	Overrides *overrides `yaml:"overrides,omitempty"`
}

type formatDoc struct {
	Comment             string `yaml:"comment"`
	Delimiter           string `yaml:"delimiter"`
	Quote               string `yaml:"quote"`
	Quoting             *bool  `yaml:"quoting,omitempty"`
	DoubleQuote         *bool  `yaml:"double_quote,omitempty"`
	Flexible            bool   `yaml:"flexible"`
	HasHeader           bool   `yaml:"has_header"`
	SkipLines           int    `yaml:"skip_lines"`
	SearchTermColumnIdx *int   `yaml:"search_term_column_idx,omitempty"`
	LabelColumnIdx      *int   `yaml:"label_column_idx,omitempty"`
	LabelFormatString   string `yaml:"label_format_string"`
	LabelFormatPattern  string `yaml:"label_format_pattern"`
}

// overrides lets a single corpus entry override select build flags,
// e.g. disabling skip-grams for a corpus of already-canonical names.
type overrides struct {
	GenerateAbbreviations *bool `yaml:"generate_abbreviations,omitempty"`
	GenerateSkipGrams     *bool `yaml:"generate_skip_grams,omitempty"`
}

// Corpus is a loaded, ready-to-read corpus descriptor with its build
// flags already resolved (per-corpus overrides applied over the
// document-level defaults).
type Corpus struct {
	Name   string
	Path   string
	Format corpus.Format
	Build  build.Config
}

// Load reads and validates a build configuration document at path,
// returning one Corpus per `corpora` entry with its Format and resolved
// Config ready to hand to corpus.ReadFile/ReadDir and build.Build.
func Load(path string) ([]Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gzerr.ErrIO("reading config %q: %v", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var doc document
	if err := decoder.Decode(&doc); err != nil {
		return nil, gzerr.ErrConfig("parsing config %q: %v", path, err)
	}

	if doc.APIVersion != SupportedAPIVersion {
		return nil, gzerr.ErrConfig("%s: unsupported apiVersion %q (expected %q)", path, doc.APIVersion, SupportedAPIVersion)
	}
	if doc.Kind != ExpectedKind {
		return nil, gzerr.ErrConfig("%s: unexpected kind %q (expected %q)", path, doc.Kind, ExpectedKind)
	}

	baseBuild := build.Config{
		GenerateAbbreviations: doc.BuildFlags.GenerateAbbreviations,
		AbbrevMaxIndex:        doc.BuildFlags.AbbrevMaxIndex,
		AbbrevMinSuffixLength: doc.BuildFlags.AbbrevMinSuffixLength,
		GenerateSkipGrams:     doc.BuildFlags.GenerateSkipGrams,
		SkipGramMinLength:     doc.BuildFlags.SkipGramMinLength,
		SkipGramMaxSkips:      doc.BuildFlags.SkipGramMaxSkips,
		FilterList:            toFilterSet(doc.BuildFlags.FilterList),
	}

	corpora := make([]Corpus, 0, len(doc.Corpora))
	for _, c := range doc.Corpora {
		format, err := resolveFormat(c.Format)
		if err != nil {
			return nil, fmt.Errorf("corpus %q: %w", c.Name, err)
		}
		if err := corpus.ValidateFormat(format); err != nil {
			return nil, fmt.Errorf("corpus %q: %w", c.Name, err)
		}

		cfg := baseBuild
		if c.Overrides != nil {
			if c.Overrides.GenerateAbbreviations != nil {
				cfg.GenerateAbbreviations = *c.Overrides.GenerateAbbreviations
			}
			if c.Overrides.GenerateSkipGrams != nil {
				cfg.GenerateSkipGrams = *c.Overrides.GenerateSkipGrams
			}
		}

		corpora = append(corpora, Corpus{
			Name:   c.Name,
			Path:   c.Path,
			Format: format,
			Build:  cfg,
		})
	}

	return corpora, nil
}

func resolveFormat(doc formatDoc) (corpus.Format, error) {
	f := corpus.DefaultFormat()

	if doc.Comment != "" {
		f.Comment = doc.Comment
	}
	if doc.Delimiter != "" {
		r, err := singleRune(doc.Delimiter)
		if err != nil {
			return corpus.Format{}, gzerr.ErrConfig("delimiter: %v", err)
		}
		f.Delimiter = r
	}
	if doc.Quote != "" {
		r, err := singleRune(doc.Quote)
		if err != nil {
			return corpus.Format{}, gzerr.ErrConfig("quote: %v", err)
		}
		f.Quote = r
	}
	if doc.Quoting != nil {
		f.Quoting = *doc.Quoting
	}
	if doc.DoubleQuote != nil {
		f.DoubleQuote = *doc.DoubleQuote
	}
	f.Flexible = doc.Flexible
	f.HasHeader = doc.HasHeader
	f.SkipLines = doc.SkipLines
	if doc.SearchTermColumnIdx != nil {
		f.SearchTermColumnIdx = *doc.SearchTermColumnIdx
	}
	if doc.LabelColumnIdx != nil {
		f.LabelColumnIdx = *doc.LabelColumnIdx
	}
	f.LabelFormatString = doc.LabelFormatString
	if doc.LabelFormatPattern != "" {
		f.LabelFormatPattern = doc.LabelFormatPattern
	}
	return f, nil
}

func singleRune(s string) (rune, error) {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("%q is not a single character", s)
	}
	return runes[0], nil
}

func toFilterSet(terms []string) map[string]struct{} {
	if len(terms) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}
