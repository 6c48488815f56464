package cms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pesantren/internal/sections"
)

// newTestServer answers every request with status and body, recording the
// last request it saw.
func newTestServer(t *testing.T, status int, body string, seen **http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, token string) *Client {
	return NewClient(Config{ProjectID: "abc", Dataset: "staging", APIVersion: "v2024-06-01", Token: token, BaseURL: srv.URL})
}

func TestQuery_RequestShape(t *testing.T) {
	var seen *http.Request
	srv := newTestServer(t, http.StatusOK, `{"result":{"n":3}}`, &seen)
	c := newTestClient(srv, "secret")

	var out struct{ N int }
	err := c.Query(context.Background(), `*[_type == $t]`, map[string]any{"t": "post", "limit": 5}, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, out.N)

	require.NotNil(t, seen)
	assert.Equal(t, "/v2024-06-01/data/query/staging", seen.URL.Path)
	assert.Equal(t, `*[_type == $t]`, seen.URL.Query().Get("query"))
	assert.Equal(t, `"post"`, seen.URL.Query().Get("$t"))
	assert.Equal(t, `5`, seen.URL.Query().Get("$limit"))
	assert.Equal(t, "Bearer secret", seen.Header.Get("Authorization"))
}

func TestQuery_NoTokenNoAuthHeader(t *testing.T) {
	var seen *http.Request
	srv := newTestServer(t, http.StatusOK, `{"result":null}`, &seen)

	require.NoError(t, newTestClient(srv, "").Query(context.Background(), "*", nil, nil))
	assert.Empty(t, seen.Header.Get("Authorization"))
}

func TestQuery_APIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"query error", http.StatusBadRequest, `{"error":{"description":"unable to parse","type":"queryParseError"}}`, "unable to parse"},
		{"message field", http.StatusUnauthorized, `{"message":"Unauthorized - Session not found"}`, "Unauthorized - Session not found"},
		{"plain text", http.StatusBadGateway, `upstream down`, "upstream down"},
		{"empty body", http.StatusServiceUnavailable, ``, "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.body, nil)
			err := newTestClient(srv, "").Query(context.Background(), "*", nil, nil)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestQuery_BadEnvelope(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `not json`, nil)
	var out any
	assert.Error(t, newTestClient(srv, "").Query(context.Background(), "*", nil, &out))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{ProjectID: "xyz"})
	assert.Equal(t, "https://xyz.api.sanity.io", c.config.BaseURL)
	assert.Equal(t, "production", c.config.Dataset)
	assert.Equal(t, "2024-01-01", c.config.APIVersion)
}

func TestFlattenBlocks(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"_type":"block","_key":"a","style":"h2","children":[{"_type":"span","text":"Visi","marks":["strong"]}],"markDefs":[]}`),
		json.RawMessage(`{"_type":"image","asset":{"_ref":"image-1"}}`),
		json.RawMessage(`{"_type":"block","children":[{"_type":"span","text":"Menjadi "},{"_type":"span","text":"teladan"}]}`),
	}
	got := FlattenBlocks(raw)
	require.Len(t, got, 2)
	assert.Equal(t, Block{Style: "h2", Children: []Span{{Text: "Visi", Marks: []string{"strong"}}}}, got[0])
	assert.Equal(t, "normal", got[1].Style)
	assert.Equal(t, "Visi\nMenjadi teladan", PlainText(got))
}

func TestNormalize(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{
		"_type": "heroContent",
		"badge": "PPDB",
		"body": [{"_type":"block","_key":"k","children":[{"_type":"span","text":"Ahlan"}]}],
		"items": [{"_key":"x","value":"500+"}]
	}`), &doc))

	got := normalize(doc).(map[string]any)
	assert.NotContains(t, got, "_type")
	assert.Equal(t, "PPDB", got["badge"])
	assert.Equal(t, []Block{{Style: "normal", Children: []Span{{Text: "Ahlan"}}}}, got["body"])
	assert.Equal(t, []any{map[string]any{"value": "500+"}}, got["items"])
}

func TestSectionSource_Found(t *testing.T) {
	var seen *http.Request
	srv := newTestServer(t, http.StatusOK, `{"result":{
		"_id": "section-hero",
		"_updatedAt": "2026-03-01T10:00:00Z",
		"key": "hero",
		"title": "Ahlan wa Sahlan",
		"content": {"_type": "hero", "badge": "PPDB 2026", "cta_primary": {"_type":"link","label":"Daftar","href":"/daftar"}},
		"order": 2
	}}`, &seen)
	src := NewSectionSource(newTestClient(srv, ""))

	row, err := src.FetchSection(context.Background(), "hero")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, `"hero"`, seen.URL.Query().Get("$key"))
	assert.Equal(t, "home", row.Page)
	assert.True(t, row.IsVisible, "absent isVisible means visible")
	assert.Equal(t, 2, row.OrderIndex)
	assert.Equal(t, "Ahlan wa Sahlan", *row.Title)

	again, err := src.FetchSection(context.Background(), "hero")
	require.NoError(t, err)
	assert.Equal(t, row.ID, again.ID, "ids are stable per document")

	// Content must decode under the strict hero schema.
	res := sections.NewResolver(src, nil).Resolve(context.Background(), "hero")
	require.NoError(t, res.Err)
	hero, ok := sections.As[sections.Hero](res.Data.Content)
	require.True(t, ok)
	assert.Equal(t, "PPDB 2026", hero.Badge)
	require.NotNil(t, hero.CTAPrimary)
	assert.Equal(t, "/daftar", hero.CTAPrimary.Href)
}

func TestSectionSource_Missing(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"result":null}`, nil)
	row, err := NewSectionSource(newTestClient(srv, "")).FetchSection(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, row)

	res := sections.NewResolver(NewSectionSource(newTestClient(srv, "")), nil).Resolve(context.Background(), "nope")
	assert.ErrorIs(t, res.Err, sections.ErrSectionNotFound)
}

func TestSectionSource_Hidden(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"result":{"_id":"s1","key":"cta","isVisible":false,"content":null}}`, nil)
	row, err := NewSectionSource(newTestClient(srv, "")).FetchSection(context.Background(), "cta")
	require.NoError(t, err)
	assert.False(t, row.IsVisible)
	assert.JSONEq(t, `{}`, string(row.Content))
}

func TestSectionSource_Error(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, `{"message":"boom"}`, nil)
	_, err := NewSectionSource(newTestClient(srv, "")).FetchSection(context.Background(), "hero")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestSectionSource_RichTextQuote(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"result":{
		"_id": "section-testimonials",
		"key": "testimonials",
		"content": {"items": [{
			"_key": "t1",
			"name": "Ust. Ahmad",
			"quote": [
				{"_type":"block","_key":"b1","style":"normal","children":[{"_type":"span","_key":"s1","text":"Santri ","marks":[]},{"_type":"span","_key":"s2","text":"mandiri","marks":["strong"]}]},
				{"_type":"block","_key":"b2","style":"normal","children":[{"_type":"span","_key":"s3","text":"dan berakhlak"}]}
			]
		}]}
	}}`, nil)

	res := sections.NewResolver(NewSectionSource(newTestClient(srv, "")), nil).Resolve(context.Background(), sections.KeyTestimonials)
	require.NoError(t, res.Err)
	got, ok := sections.As[sections.Testimonials](res.Data.Content)
	require.True(t, ok)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Ust. Ahmad", got.Items[0].Name)
	assert.Equal(t, sections.RichText("Santri mandiri\ndan berakhlak"), got.Items[0].Quote)
}

func TestSectionSource_ListByPage(t *testing.T) {
	var seen *http.Request
	srv := newTestServer(t, http.StatusOK, `{"result":[
		{"_id":"s1","key":"hero","content":{"badge":"PPDB"},"order":0},
		{"_id":"s2","key":"cta","isVisible":false,"order":1},
		{"_id":"s3","key":"stats","page":"home","content":{"items":[]},"order":2}
	]}`, &seen)
	src := NewSectionSource(newTestClient(srv, ""))

	rows, err := src.ListByPage(context.Background(), "home", true)
	require.NoError(t, err)
	assert.Equal(t, `"home"`, seen.URL.Query().Get("$page"))
	assert.Equal(t, "true", seen.URL.Query().Get("$visibleOnly"))
	require.Len(t, rows, 2, "hidden documents are dropped when only visible ones are asked for")
	assert.Equal(t, "hero", rows[0].Key)
	assert.Equal(t, "home", rows[0].Page)
	assert.Equal(t, "stats", rows[1].Key)

	all, err := src.ListByPage(context.Background(), "home", false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "false", seen.URL.Query().Get("$visibleOnly"))
}

func TestSectionSource_ListByPageError(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized, `{"message":"unauthorized"}`, nil)
	_, err := NewSectionSource(newTestClient(srv, "")).ListByPage(context.Background(), "home", true)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
