package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
	"github.com/NikitaCOEUR/addrsearch/internal/session"
	"github.com/NikitaCOEUR/addrsearch/pkg/version"
)

func newClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := New(Options{Endpoint: endpoint})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "localhost:3000", "ftp://example.com/x", "http://"} {
		_, err := New(Options{Endpoint: endpoint})
		var cfgErr *derrors.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr, endpoint)
	}
}

func TestURL(t *testing.T) {
	c := newClient(t, "http://localhost:3000/api/address-suggest")

	u, err := url.Parse(c.URL(session.Request{Street: "Main St", House: "123", MaxResults: 5}))
	require.NoError(t, err)
	assert.Equal(t, "/api/address-suggest", u.Path)
	assert.Equal(t, "Main St", u.Query().Get("street"))
	assert.Equal(t, "123", u.Query().Get("num"))
	assert.Equal(t, "5", u.Query().Get("max"))
}

func TestURL_NormalizesStreet(t *testing.T) {
	c := newClient(t, "http://localhost/api")

	// "e" followed by a combining acute accent composes to a single rune.
	u, err := url.Parse(c.URL(session.Request{Street: "Cafe\u0301", House: "0"}))
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", u.Query().Get("street"))
	assert.False(t, u.Query().Has("max"))
}

func TestIssue_DecodesRows(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows":[{"num":222,"street":"MAIN ST","cityname":"LANSING","zipcode":"48933"}]}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL+"/api/address-suggest")
	resp, err := c.Issue(context.Background(), session.Request{Street: "Main", House: "222", MaxResults: 5})
	require.NoError(t, err)

	require.Len(t, resp.Rows, 1)
	assert.Equal(t, json.Number("222"), resp.Rows[0]["num"])
	assert.Equal(t, "MAIN ST", resp.Rows[0]["street"])
	assert.Empty(t, resp.ErrorCode)
	assert.False(t, resp.Overflow())

	require.NotNil(t, got)
	assert.Equal(t, "Main", got.URL.Query().Get("street"))
	assert.Equal(t, "222", got.URL.Query().Get("num"))
	assert.Equal(t, version.UserAgent(), got.Header.Get("User-Agent"))
	assert.NotEmpty(t, got.Header.Get(RequestIDHeader))
}

func TestDecode_ErrorCode(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"string", `{"rows":[],"errorCode":"2"}`, "2"},
		{"number", `{"rows":[],"errorCode":2}`, "2"},
		{"null", `{"rows":[],"errorCode":null}`, ""},
		{"absent", `{"rows":[]}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Decode([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.ErrorCode)
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"rows":[],"errorCode":{"x":1}}`))
	assert.Error(t, err)
}

func TestIssue_Overflow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rows":[{"street":"A"},{"street":"B"}],"errorCode":"2"}`))
	}))
	defer srv.Close()

	resp, err := newClient(t, srv.URL).Issue(context.Background(), session.Request{Street: "Main", House: "1"})
	require.NoError(t, err)
	assert.True(t, resp.Overflow())
	assert.Len(t, resp.Rows, 2)
}

func TestIssue_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to fetch from external API"}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Issue(context.Background(), session.Request{Street: "Main", House: "1"})
	require.Error(t, err)
	assert.False(t, derrors.IsCancelled(err))
	assert.Contains(t, err.Error(), "unexpected status 500")
	assert.Contains(t, err.Error(), "Failed to fetch from external API")

	var te *derrors.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "TRANSPORT_ERROR", te.Code())
}

func TestIssue_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Issue(context.Background(), session.Request{Street: "Main", House: "1"})
	require.Error(t, err)
	assert.False(t, derrors.IsCancelled(err))
}

func TestIssue_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := newClient(t, endpoint).Issue(context.Background(), session.Request{Street: "Main", House: "1"})
	require.Error(t, err)
	assert.False(t, derrors.IsCancelled(err))
}

func TestIssue_Cancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Issue(ctx, session.Request{Street: "Main", House: "1"})
		errc <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.True(t, derrors.IsCancelled(err), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Issue did not return after cancellation")
	}
}
