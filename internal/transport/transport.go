// Package transport issues suggestion requests to the proxy over HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
	"github.com/NikitaCOEUR/addrsearch/internal/logger"
	"github.com/NikitaCOEUR/addrsearch/internal/session"
	"github.com/NikitaCOEUR/addrsearch/pkg/version"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-Id"

// maxBody caps the size of a decoded reply.
const maxBody = 4 << 20

// Options configures a Client.
type Options struct {
	// Endpoint is the suggestion URL, e.g. http://localhost:3000/api/address-suggest.
	Endpoint string
	// HTTPClient defaults to a client without its own timeout; the session
	// controller bounds each call through its context.
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client implements session.Transport.
type Client struct {
	endpoint *url.URL
	http     *http.Client
	log      *logger.Logger
}

var _ session.Transport = (*Client)(nil)

// New validates the endpoint and returns a client.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, derrors.NewConfigurationError("transport.endpoint", "invalid endpoint URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, derrors.NewConfigurationError("transport.endpoint",
			fmt.Sprintf("endpoint must be an absolute http(s) URL, got %q", opts.Endpoint), nil)
	}

	c := &Client{endpoint: u, http: opts.HTTPClient, log: opts.Logger}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	c.log = c.log.Component("transport")
	return c, nil
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// URL builds the request URL for req.
func (c *Client) URL(req session.Request) string {
	u := *c.endpoint
	q := u.Query()
	q.Set("street", norm.NFC.String(req.Street))
	q.Set("num", req.House)
	if req.MaxResults > 0 {
		q.Set("max", strconv.Itoa(req.MaxResults))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Issue performs one GET and decodes the reply. Cancellation of ctx yields an
// error for which derrors.IsCancelled reports true.
func (c *Client) Issue(ctx context.Context, req session.Request) (*session.Response, error) {
	endpoint := c.endpoint.String()
	target := c.URL(req)
	id := uuid.NewString()
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, derrors.NewTransportError(endpoint, "failed to build request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	httpReq.Header.Set(RequestIDHeader, id)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, derrors.NewCancelledError(endpoint, ctx.Err())
		}
		return nil, derrors.NewTransportError(endpoint, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		if ctx.Err() != nil {
			return nil, derrors.NewCancelledError(endpoint, ctx.Err())
		}
		return nil, derrors.NewTransportError(endpoint, "failed to read response", err)
	}

	log := c.log.Debug().
		Str("request_id", id).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Msg("suggestion request rejected")
		var cause error
		if msg := errorMessage(body); msg != "" {
			cause = errors.New(msg)
		}
		return nil, derrors.NewTransportError(endpoint,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), cause)
	}

	out, err := Decode(body)
	if err != nil {
		return nil, derrors.NewTransportError(endpoint, "invalid response body", err)
	}
	log.Int("rows", len(out.Rows)).Str("error_code", out.ErrorCode).Msg("suggestion request done")
	return out, nil
}

type wireResponse struct {
	Rows      []session.Row   `json:"rows"`
	ErrorCode json.RawMessage `json:"errorCode"`
}

// Decode parses a suggestion service reply. Numbers inside rows are kept as
// json.Number so they render exactly as sent. The error code may be sent as
// either a string or a number.
func Decode(body []byte) (*session.Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var w wireResponse
	if err := dec.Decode(&w); err != nil {
		return nil, err
	}
	code, err := decodeCode(w.ErrorCode)
	if err != nil {
		return nil, err
	}
	return &session.Response{Rows: w.Rows, ErrorCode: code}, nil
}

func decodeCode(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", fmt.Errorf("errorCode must be a string or number: %w", err)
	}
	return n.String(), nil
}

// errorMessage extracts {"error": "..."} from a failure body when present.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(bytes.TrimSpace(body))
}
