package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hupe1980/quarry"
	"github.com/hupe1980/quarry/testutil"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *quarry.DB) {
	t.Helper()

	db, err := quarry.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, testutil.RegisterFoo(db.Catalog()))
	foos := []testutil.Foo{
		{Bar: "bar1", Baz: "baz1"},
		{Bar: "bar2", Baz: "baz2"},
		{Bar: "bar3", Baz: "baz3"},
	}
	for _, e := range testutil.Entities(foos...) {
		require.NoError(t, db.Put(context.Background(), testutil.FooType, e.Key, e.Entity))
	}
	return New(db, opts...), db
}

func post(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestQueryList(t *testing.T) {
	s, _ := newTestServer(t)

	w := post(t, s, `{"query": "SELECT baz, bar FROM Foo WHERE bar:'bar1'"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var resp struct {
		Fields []string   `json:"fields"`
		Tuples [][]string `json:"tuples"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"baz", "bar"}, resp.Fields)
	assert.Equal(t, [][]string{{"baz1", "bar1"}}, resp.Tuples)
}

func TestQueryListEmpty(t *testing.T) {
	s, _ := newTestServer(t)

	w := post(t, s, `{"query": "SELECT bar FROM Foo WHERE bar:nomatch"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fields":["bar"],"tuples":[]}`, w.Body.String())
}

func TestQueryStream(t *testing.T) {
	s, db := newTestServer(t)

	w := post(t, s, `{"query": "SELECT bar FROM Foo", "mode": "stream", "offset": 1, "maxResults": 5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	var lines []string
	sc := bufio.NewScanner(w.Body)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	assert.Equal(t, []string{`["bar2"]`, `["bar3"]`}, lines)
	assert.Zero(t, db.OpenCursors())
}

func TestQueryErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"UnknownField", `{"query": "SELECT unknownField FROM Foo WHERE bar:'bar1'"}`, http.StatusBadRequest},
		{"UnknownType", `{"query": "SELECT bar FROM Nope"}`, http.StatusBadRequest},
		{"Syntax", `{"query": "SELECT FROM"}`, http.StatusBadRequest},
		{"StreamCompile", `{"query": "SELECT nope FROM Foo", "mode": "stream"}`, http.StatusBadRequest},
		{"MissingQuery", `{}`, http.StatusBadRequest},
		{"BadMode", `{"query": "SELECT bar FROM Foo", "mode": "iterator"}`, http.StatusBadRequest},
		{"BadJSON", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, s, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestClosedDB(t *testing.T) {
	s, db := newTestServer(t)
	require.NoError(t, db.Close())

	w := post(t, s, `{"query": "SELECT bar FROM Foo"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTypesAndHealth(t *testing.T) {
	s, _ := newTestServer(t, WithMetricsHandler(promhttp.Handler()))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/types", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"types":[{"name":"Foo","entities":3,"fields":[
		{"name":"bar","type":"string","stored":true},
		{"name":"baz","type":"string","stored":true}]}]}`, w.Body.String())

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRun(t *testing.T) {
	s, _ := newTestServer(t, WithAddr("127.0.0.1:0"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx))
}
