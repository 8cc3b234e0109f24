// Package proxy relays suggestion queries from the widget to the upstream
// address service.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
	"github.com/NikitaCOEUR/addrsearch/internal/logger"
	"github.com/NikitaCOEUR/addrsearch/internal/trace"
	"github.com/NikitaCOEUR/addrsearch/internal/timing"
	"github.com/NikitaCOEUR/addrsearch/pkg/version"
)

const (
	// SuggestPath is the relay route.
	SuggestPath = "/api/address-suggest"
	// HealthPath reports liveness.
	HealthPath = "/healthz"

	requestIDHeader = "X-Request-Id"
	maxUpstreamBody = 4 << 20
)

const (
	msgMissingParams  = "Missing street or num parameter"
	msgUpstreamFailed = "Failed to fetch from external API"
)

// Config holds the relay settings.
type Config struct {
	Listen   string
	Upstream string
	Timeout  time.Duration
	// CacheSize is the number of cached replies; zero disables caching.
	CacheSize int
	CacheTTL  time.Duration
}

// Server is the relay HTTP server.
type Server struct {
	cfg      Config
	upstream *url.URL
	client   *http.Client
	cache    *expirable.LRU[string, []byte]
	group    singleflight.Group
	mux      *http.ServeMux
	log      *logger.Logger
}

// New validates cfg and builds the server routes.
func New(cfg Config, log *logger.Logger) (*Server, error) {
	u, err := url.Parse(cfg.Upstream)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, derrors.NewConfigurationError("proxy.upstream",
			fmt.Sprintf("upstream must be an absolute http(s) URL, got %q", cfg.Upstream), err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		cfg:      cfg,
		upstream: u,
		client:   &http.Client{Timeout: cfg.Timeout},
		mux:      http.NewServeMux(),
		log:      log.Component("proxy"),
	}
	if cfg.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, []byte](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc(SuggestPath, s.handleSuggest)
	s.mux.HandleFunc(HealthPath, s.handleHealth)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	s.log.Info().Str("addr", ln.Addr().String()).Str("upstream", s.upstream.String()).Msg("proxy listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("proxy shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// UpstreamURL builds the upstream query for the given parameters.
func (s *Server) UpstreamURL(street, num, limit string) string {
	u := *s.upstream
	q := u.Query()
	q.Set("street", street)
	q.Set("num", num)
	if limit != "" {
		q.Set("max", limit)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	timer := timing.NewTimer()
	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, id)

	q := r.URL.Query()
	street, num := q.Get("street"), q.Get("num")
	if street == "" || num == "" {
		writeError(w, http.StatusBadRequest, msgMissingParams)
		return
	}
	target := s.UpstreamURL(street, num, q.Get("max"))

	body, cached, err := s.fetch(r.Context(), target, id)
	timer.Mark("upstream")
	if err != nil {
		s.log.Error().Str("request_id", id).Err(err).Msg("proxy error")
		writeError(w, http.StatusInternalServerError, msgUpstreamFailed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	timer.Mark("write")

	s.log.Debug().
		Str("request_id", id).
		Str("street", street).
		Str("num", num).
		Bool("cached", cached).
		Str("timing", timer.Summary()).
		Msg("suggestion relayed")
}

// fetch returns the upstream body for target, from cache when possible.
// Concurrent misses for the same target share one upstream call. Only 2xx
// replies are cached.
func (s *Server) fetch(ctx context.Context, target, id string) ([]byte, bool, error) {
	if s.cache != nil {
		if body, ok := s.cache.Get(target); ok {
			return body, true, nil
		}
	}

	v, err, _ := s.group.Do(target, func() (any, error) {
		reply, err := s.callUpstream(context.WithoutCancel(ctx), target, id)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && reply.success() {
			s.cache.Add(target, reply.body)
		}
		return reply.body, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

// upstreamReply is a JSON body together with the status it came with.
type upstreamReply struct {
	status int
	body   []byte
}

func (r upstreamReply) success() bool {
	return r.status >= 200 && r.status <= 299
}

// callUpstream fails unless the upstream answers with a JSON body. A non-2xx
// status with a JSON body is still relayed.
func (s *Server) callUpstream(ctx context.Context, target, id string) (upstreamReply, error) {
	defer trace.Region(ctx, "proxy.upstream")()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return upstreamReply{}, derrors.NewUpstreamError(target, 0, "failed to build upstream request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set(requestIDHeader, id)

	resp, err := s.client.Do(req)
	if err != nil {
		return upstreamReply{}, derrors.NewUpstreamError(target, 0, "upstream request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return upstreamReply{}, derrors.NewUpstreamError(target, resp.StatusCode, "failed to read upstream body", err)
	}
	if !json.Valid(body) {
		return upstreamReply{}, derrors.NewUpstreamError(target, resp.StatusCode,
			fmt.Sprintf("upstream returned status %d without a JSON body", resp.StatusCode), nil)
	}
	reply := upstreamReply{status: resp.StatusCode, body: body}
	if !reply.success() {
		s.log.Warn().Str("request_id", id).Int("status", resp.StatusCode).Msg("relaying upstream error body")
	}
	return reply, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := map[string]any{
		"status":  "ok",
		"version": version.Version,
	}
	if s.cache != nil {
		resp["cached"] = s.cache.Len()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
