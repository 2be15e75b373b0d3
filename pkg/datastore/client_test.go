package datastore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rewriteRoundTripper struct{ base *url.URL }

func (r rewriteRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	c := req.Clone(req.Context())
	c.URL.Scheme = r.base.Scheme
	c.URL.Host = r.base.Host
	c.Host = r.base.Host
	return http.DefaultTransport.RoundTrip(c)
}

// newTestClient keeps the default endpoint so the real request path and query are sent,
// but routes the connection to the test server.
func newTestClient(serverURL string) *Client {
	u, _ := url.Parse(serverURL)
	return NewClient(
		WithHTTPClient(&http.Client{Transport: rewriteRoundTripper{base: u}}),
		WithUserAgent("test-agent"),
	)
}

const alphaLab = `{
  "help": "https://www.data.qld.gov.au/api/3/action/help_show?name=datastore_search",
  "success": true,
  "result": {
    "resource_id": "8b9178e0-2995-42ad-8e55-37c15b4435a3",
    "fields": [{"id": "_id", "type": "int"}, {"id": "Centre name", "type": "text"}],
    "records": [{"_id": 1, "Centre name": "Alpha Lab", "Latitude": -27.5, "Longitude": 153.0}],
    "total": 1,
    "limit": 100
  }
}`

func TestClient_Search_RequestShape(t *testing.T) {
	tests := []struct {
		name      string
		q         string
		wantQuery url.Values
	}{
		{
			name:      "empty term omits q",
			q:         "",
			wantQuery: url.Values{"resource_id": {DefaultResourceID}},
		},
		{
			name:      "term is passed through url encoded",
			q:         "marine science & reef",
			wantQuery: url.Values{"resource_id": {DefaultResourceID}, "q": {"marine science & reef"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var gotQuery url.Values
			var gotAgent string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.Query()
				gotAgent = r.Header.Get("User-Agent")
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(alphaLab))
			}))
			defer server.Close()

			res, err := newTestClient(server.URL).Search(context.Background(), tt.q)
			require.NoError(t, err)
			assert.Equal(t, "/api/3/action/datastore_search", gotPath)
			assert.Equal(t, tt.wantQuery, gotQuery)
			assert.Equal(t, "test-agent", gotAgent)
			assert.Len(t, res.Records, 1)
			assert.Equal(t, 1, res.Total)
			assert.Equal(t, DefaultResourceID, res.ResourceID)
		})
	}
}

func TestClient_Search_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantNetwork   bool
		wantMalformed bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantNetwork: true},
		{name: "not found", status: http.StatusNotFound, body: `{"success": false}`, wantNetwork: true},
		{name: "invalid json", status: http.StatusOK, body: `{"result": `, wantMalformed: true},
		{name: "success false", status: http.StatusOK, body: `{"success": false, "error": {"__type": "Not Found Error", "message": "Not found: Resource was not found."}}`, wantMalformed: true},
		{name: "missing result", status: http.StatusOK, body: `{"success": true}`, wantMalformed: true},
		{name: "missing records", status: http.StatusOK, body: `{"success": true, "result": {"total": 0}}`, wantMalformed: true},
		{name: "null records", status: http.StatusOK, body: `{"success": true, "result": {"records": null}}`, wantMalformed: true},
		{name: "records not array", status: http.StatusOK, body: `{"success": true, "result": {"records": "nope"}}`, wantMalformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Search(context.Background(), "")
			require.Error(t, err)

			var netErr *NetworkError
			var malformedErr *MalformedResponseError
			assert.Equal(t, tt.wantNetwork, errors.As(err, &netErr), "NetworkError: %v", err)
			assert.Equal(t, tt.wantMalformed, errors.As(err, &malformedErr), "MalformedResponseError: %v", err)
			if tt.wantNetwork {
				assert.Equal(t, tt.status, netErr.StatusCode)
			}
		})
	}
}

func TestClient_Search_EmptyRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "result": {"records": [], "total": 0}}`))
	}))
	defer server.Close()

	res, err := NewClient(WithEndpoint(server.URL)).Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestClient_Search_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := server.URL
	server.Close()

	_, err := NewClient(WithEndpoint(endpoint)).Search(context.Background(), "")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
}

func TestClient_Search_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(alphaLab))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(WithEndpoint(server.URL)).Search(ctx, "")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_SearchURL(t *testing.T) {
	c := NewClient(WithEndpoint("https://example.org/api/3/action/datastore_search?limit=5"), WithResourceID("abc"))

	got, err := c.SearchURL("a b")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/api/3/action/datastore_search?limit=5&q=a+b&resource_id=abc", got)
}
