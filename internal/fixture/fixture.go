// Package fixture serves suggestion replies from a local row file, standing in
// for the upstream address service during development and tests.
package fixture

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
	"github.com/NikitaCOEUR/addrsearch/internal/logger"
)

// OverflowCode marks a truncated reply.
const OverflowCode = "2"

//go:embed sample.yml
var sampleRows []byte

// Config holds the fixture server settings.
type Config struct {
	Listen string
	// File is a YAML or JSON list of rows; empty serves the built-in sample.
	File string
	// MaxResults caps every reply; a smaller "max" query parameter wins.
	MaxResults int
}

// Reply is the wire shape shared with the upstream service.
type Reply struct {
	Rows      []Row  `json:"rows"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// Server answers upstream-style queries from an Index.
type Server struct {
	cfg   Config
	index *Index
	mux   *http.ServeMux
	log   *logger.Logger
}

// LoadRows reads rows from path, or the built-in sample when path is empty.
func LoadRows(path string) ([]Row, error) {
	data := sampleRows
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, derrors.NewNotFoundError("fixture file", fmt.Sprintf("fixture file not found: %s", path))
			}
			return nil, fmt.Errorf("failed to read fixture file: %w", err)
		}
	}

	var rows []Row
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, derrors.NewConfigurationError(path, "invalid fixture rows", err)
	}
	return rows, nil
}

// New loads the configured rows and builds the server.
func New(cfg Config, log *logger.Logger) (*Server, error) {
	rows, err := LoadRows(cfg.File)
	if err != nil {
		return nil, err
	}
	return NewWithRows(cfg, rows, log), nil
}

// NewWithRows builds a server over rows already in memory.
func NewWithRows(cfg Config, rows []Row, log *logger.Logger) *Server {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		cfg:   cfg,
		index: NewIndex(rows),
		mux:   http.NewServeMux(),
		log:   log.Component("fixture"),
	}
	s.mux.HandleFunc("/", s.handleQuery)
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Len returns the number of served rows.
func (s *Server) Len() int {
	return s.index.Len()
}

// Query runs a lookup the way the HTTP handler does.
func (s *Server) Query(street, num string, limit int) Reply {
	if limit <= 0 || limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}
	rows := s.index.Search(street, num)
	if len(rows) > limit {
		return Reply{Rows: rows[:limit], ErrorCode: OverflowCode}
	}
	if rows == nil {
		rows = []Row{}
	}
	return Reply{Rows: rows}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	street := q.Get("street")
	if street == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing street parameter"})
		return
	}
	limit, _ := strconv.Atoi(q.Get("max"))

	reply := s.Query(street, q.Get("num"), limit)
	s.log.Debug().
		Str("street", street).
		Str("num", q.Get("num")).
		Int("rows", len(reply.Rows)).
		Str("error_code", reply.ErrorCode).
		Msg("fixture query")
	writeJSON(w, http.StatusOK, reply)
}

// ListenAndServe serves on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	srv := &http.Server{Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	s.log.Info().Str("addr", ln.Addr().String()).Int("rows", s.Len()).Msg("fixture listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("fixture shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
