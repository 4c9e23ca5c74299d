package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/index"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/tokenize"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	tok := tokenize.New()
	idx := index.New()
	for _, entry := range []struct{ text, label string }{
		{"An example", "uri:example"},
		{"An example phrase", "uri:phrase"},
	} {
		toks, err := tok.Tokenize(entry.text)
		require.NoError(t, err)
		idx.Insert(toks.Strings(), entry.text, entry.label, index.Full)
	}
	return NewHandler(idx, tok, nil)
}

func doSearch(t *testing.T, h *Handler, body map[string]interface{}) (*httptest.ResponseRecorder, []searchRecord) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	var records []searchRecord
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	}
	return rec, records
}

func TestSearchHandlerBasic(t *testing.T) {
	h := newTestHandler(t)
	rec, records := doSearch(t, h, map[string]interface{}{
		"text":             "An example phrase",
		"max_len":          3,
		"result_selection": "Last",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, records, 1)
	assert.Equal(t, "uri:phrase", records[0].MatchLabels)
	assert.Equal(t, "Full", records[0].MatchTypes)
	assert.Equal(t, 0, records[0].Begin)
}

func TestSearchHandlerDefaultPolicy(t *testing.T) {
	h := newTestHandler(t)
	rec, records := doSearch(t, h, map[string]interface{}{"text": "An example"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, records, 1)
	assert.Equal(t, "uri:example", records[0].MatchLabels)
}

func TestSearchHandlerRejectsUnknownPolicy(t *testing.T) {
	h := newTestHandler(t)
	rec, _ := doSearch(t, h, map[string]interface{}{"text": "An example", "result_selection": "Bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandlerRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommunicationLayerServesHTML(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/communication_layer", nil)
	rec := httptest.NewRecorder()
	h.CommunicationLayer(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/v1/search")
}
