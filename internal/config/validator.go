package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
	"github.com/NikitaCOEUR/addrsearch/internal/label"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string
	Message string
}

// ValidationResult contains the results of config validation
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

func (r *ValidationResult) add(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// Validate checks a config file: schema first, then semantic checks on the
// merged result.
func Validate(path string) (*ValidationResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.NewNotFoundError("config file", fmt.Sprintf("config file not found: %s", path))
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := ValidateWithSchema(path, content)
	if err != nil || !result.Valid {
		return result, err
	}

	cfg, err := LoadFile(path)
	if err != nil {
		result.add("syntax", fmt.Sprintf("Failed to parse config: %v", err))
		return result, nil
	}
	for _, e := range cfg.Check() {
		result.add(e.Field, e.Message)
	}
	return result, nil
}

// Check runs the semantic checks the schema cannot express.
func (c *Config) Check() []ValidationError {
	var errs []ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Session.DebounceMS < 0 {
		add("session.debounce_ms", "must not be negative")
	}
	if c.Session.TimeoutMS <= 0 {
		add("session.timeout_ms", "must be positive")
	}
	if c.Session.MinQueryLength < 1 {
		add("session.min_query_length", "must be at least 1")
	}
	if c.Session.MaxResults < 1 {
		add("session.max_results", "must be at least 1")
	}
	if err := checkURL(c.Transport.Endpoint); err != nil {
		add("transport.endpoint", "%v", err)
	}
	if _, err := label.New(c.Label.Template); err != nil {
		add("label.template", "%v", err)
	}
	if err := checkURL(c.Proxy.Upstream); err != nil {
		add("proxy.upstream", "%v", err)
	}
	if c.Proxy.TimeoutMS <= 0 {
		add("proxy.timeout_ms", "must be positive")
	}
	if c.Proxy.CacheSize < 0 {
		add("proxy.cache_size", "must not be negative")
	}
	if c.Proxy.CacheTTLSeconds < 0 {
		add("proxy.cache_ttl_seconds", "must not be negative")
	}
	if c.Fixture.MaxResults < 1 {
		add("fixture.max_results", "must be at least 1")
	}
	return errs
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}
