// Package config handles loading and parsing of addrsearch configuration files.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
	"github.com/NikitaCOEUR/addrsearch/internal/fixture"
	"github.com/NikitaCOEUR/addrsearch/internal/proxy"
	"github.com/NikitaCOEUR/addrsearch/internal/session"
)

// SupportedConfigNames contains the working-directory config names, in order of preference.
var SupportedConfigNames = []string{
	".addrsearch.yml",
	".addrsearch.yaml",
	".addrsearch.toml",
	".addrsearch.json",
}

// UserConfigName is the file name looked up under the user config directory.
const UserConfigName = "config.yml"

//go:embed defaults.yml
var defaultsYAML []byte

// Config represents an addrsearch configuration.
type Config struct {
	LogLevel  string          `koanf:"log_level" yaml:"log_level" toml:"log_level" json:"log_level"`
	Session   SessionConfig   `koanf:"session" yaml:"session" toml:"session" json:"session"`
	Transport TransportConfig `koanf:"transport" yaml:"transport" toml:"transport" json:"transport"`
	Label     LabelConfig     `koanf:"label" yaml:"label" toml:"label" json:"label"`
	Proxy     ProxyConfig     `koanf:"proxy" yaml:"proxy" toml:"proxy" json:"proxy"`
	Fixture   FixtureConfig   `koanf:"fixture" yaml:"fixture" toml:"fixture" json:"fixture"`
}

// SessionConfig tunes the suggestion session controller.
type SessionConfig struct {
	DebounceMS     int `koanf:"debounce_ms" yaml:"debounce_ms" toml:"debounce_ms" json:"debounce_ms"`
	TimeoutMS      int `koanf:"timeout_ms" yaml:"timeout_ms" toml:"timeout_ms" json:"timeout_ms"`
	MinQueryLength int `koanf:"min_query_length" yaml:"min_query_length" toml:"min_query_length" json:"min_query_length"`
	MaxResults     int `koanf:"max_results" yaml:"max_results" toml:"max_results" json:"max_results"`
}

// TransportConfig locates the suggestion endpoint.
type TransportConfig struct {
	Endpoint string `koanf:"endpoint" yaml:"endpoint" toml:"endpoint" json:"endpoint"`
}

// LabelConfig holds the suggestion label template.
type LabelConfig struct {
	Template string `koanf:"template" yaml:"template" toml:"template" json:"template"`
}

// ProxyConfig configures the relay server.
type ProxyConfig struct {
	Listen          string `koanf:"listen" yaml:"listen" toml:"listen" json:"listen"`
	Upstream        string `koanf:"upstream" yaml:"upstream" toml:"upstream" json:"upstream"`
	TimeoutMS       int    `koanf:"timeout_ms" yaml:"timeout_ms" toml:"timeout_ms" json:"timeout_ms"`
	CacheSize       int    `koanf:"cache_size" yaml:"cache_size" toml:"cache_size" json:"cache_size"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds" yaml:"cache_ttl_seconds" toml:"cache_ttl_seconds" json:"cache_ttl_seconds"`
}

// FixtureConfig configures the offline upstream.
type FixtureConfig struct {
	Listen     string `koanf:"listen" yaml:"listen" toml:"listen" json:"listen"`
	File       string `koanf:"file" yaml:"file" toml:"file" json:"file"`
	MaxResults int    `koanf:"max_results" yaml:"max_results" toml:"max_results" json:"max_results"`
}

// Controller converts the session settings for the controller.
func (s SessionConfig) Controller() session.Config {
	return session.Config{
		Debounce:       time.Duration(s.DebounceMS) * time.Millisecond,
		Timeout:        time.Duration(s.TimeoutMS) * time.Millisecond,
		MinQueryLength: s.MinQueryLength,
		MaxResults:     s.MaxResults,
	}
}

// Server converts the proxy settings for the relay server.
func (p ProxyConfig) Server() proxy.Config {
	return proxy.Config{
		Listen:    p.Listen,
		Upstream:  p.Upstream,
		Timeout:   time.Duration(p.TimeoutMS) * time.Millisecond,
		CacheSize: p.CacheSize,
		CacheTTL:  time.Duration(p.CacheTTLSeconds) * time.Second,
	}
}

// Server converts the fixture settings for the fixture server.
func (f FixtureConfig) Server() fixture.Config {
	return fixture.Config{
		Listen:     f.Listen,
		File:       f.File,
		MaxResults: f.MaxResults,
	}
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	cfg, err := load("")
	if err != nil {
		panic(fmt.Sprintf("invalid built-in defaults: %v", err))
	}
	return cfg
}

// DefaultsYAML returns the built-in configuration document.
func DefaultsYAML() []byte {
	return append([]byte(nil), defaultsYAML...)
}

// LoadFile reads path on top of the built-in defaults.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.NewNotFoundError("config file", fmt.Sprintf("config file not found: %s", path))
		}
		return nil, derrors.NewConfigurationError(path, "failed to stat config", err)
	}
	return load(path)
}

// Load resolves the configuration file and loads it. An explicit path must
// exist; otherwise the working directory and the user config directory are
// searched, falling back to the built-in defaults. The returned path is empty
// when no file was used.
func Load(explicit string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := LoadFile(explicit)
		return cfg, explicit, err
	}

	path, err := Find()
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg, err := load("")
		return cfg, "", err
	}
	cfg, err := load(path)
	return cfg, path, err
}

// Find returns the first existing config file in search order, or "".
func Find() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	if path := FindInDir(cwd); path != "" {
		return path, nil
	}

	userPath, err := UserConfigPath()
	if err != nil {
		return "", nil
	}
	if _, err := os.Stat(userPath); err == nil {
		return userPath, nil
	}
	return "", nil
}

// FindInDir returns the preferred config file in dir, or "".
func FindInDir(dir string) string {
	for _, name := range SupportedConfigNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// UserConfigPath returns the per-user config file path.
func UserConfigPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "addrsearch", UserConfigName), nil
}

// Parser returns the koanf parser for a file extension.
func Parser(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, derrors.NewConfigurationError(path,
			fmt.Sprintf("unsupported config format: %s", filepath.Ext(path)), nil)
	}
}

func load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, derrors.NewConfigurationError("defaults", "failed to load defaults", err)
	}

	if path != "" {
		parser, err := Parser(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, derrors.NewConfigurationError(path, "failed to load config", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, derrors.NewConfigurationError(path, "failed to unmarshal config", err)
	}
	return cfg, nil
}
