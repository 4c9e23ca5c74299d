// Package httpapi exposes the gazetteer's query interface over HTTP:
// POST /v1/search decodes a SearchRequest, runs it against a frozen
// Index, and shapes the resulting spans into the documented JSON
// response.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/index"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/search"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/tokenize"
)

// fieldSeparator joins a span's match-strings/labels/types within a
// single output record.
const fieldSeparator = " | "

// Handler serves the gazetteer's HTTP query surface against a single
// frozen Index and its shared Tokenizer instance.
type Handler struct {
	idx    *index.Index
	tok    *tokenize.Tokenizer
	logger *slog.Logger
}

// NewHandler constructs a Handler. logger defaults to slog.Default() if nil.
func NewHandler(idx *index.Index, tok *tokenize.Tokenizer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{idx: idx, tok: tok, logger: logger}
}

type searchRequestBody struct {
	Text            string `json:"text"`
	MaxLen          *int   `json:"max_len,omitempty"`
	ResultSelection string `json:"result_selection,omitempty"`
}

type searchRecord struct {
	String       string `json:"string"`
	MatchStrings string `json:"match_strings"`
	MatchLabels  string `json:"match_labels"`
	MatchTypes   string `json:"match_types"`
	Begin        int    `json:"begin"`
	End          int    `json:"end"`
}

// Search handles POST /v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var body searchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	policy := search.LastPreferFull
	if body.ResultSelection != "" {
		p, ok := parsePolicy(body.ResultSelection)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown result_selection %q", body.ResultSelection))
			return
		}
		policy = p
	}

	maxLen := 0
	if body.MaxLen != nil {
		maxLen = *body.MaxLen
	}

	spans, err := search.Search(r.Context(), h.idx, h.tok, body.Text, maxLen, policy)
	if err != nil {
		h.logger.Error("search failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "search failed")
		return
	}

	records := make([]searchRecord, 0, len(spans))
	for _, s := range spans {
		records = append(records, toRecord(s))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

func toRecord(s search.Span) searchRecord {
	strs := make([]string, len(s.Matches))
	labels := make([]string, len(s.Matches))
	types := make([]string, len(s.Matches))
	for i, m := range s.Matches {
		strs[i] = m.MatchString
		labels[i] = m.MatchLabel
		types[i] = m.Type.String()
	}
	return searchRecord{
		String:       s.Text,
		MatchStrings: strings.Join(strs, fieldSeparator),
		MatchLabels:  strings.Join(labels, fieldSeparator),
		MatchTypes:   strings.Join(types, fieldSeparator),
		Begin:        s.Start,
		End:          s.End,
	}
}

func parsePolicy(s string) (search.Policy, bool) {
	switch s {
	case "All":
		return search.All, true
	case "Last":
		return search.Last, true
	case "LastPreferFull":
		return search.LastPreferFull, true
	default:
		return 0, false
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
	})
}

// CommunicationLayer serves GET /v1/communication_layer: a minimal,
// static description of the search API, confirming the service is
// reachable and documenting the request shape without implementing a
// full interactive GUI.
func (h *Handler) CommunicationLayer(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Gazetteer</title><meta charset="utf-8"/></head>
<body>
<h1>Gazetteer search API</h1>
<p>POST /v1/search with a JSON body of the form:</p>
<pre>{"text": "...", "max_len": 3, "result_selection": "LastPreferFull"}</pre>
</body>
</html>`)
}
