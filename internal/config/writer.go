package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
)

// schemaComment points YAML language servers at the published schema.
const schemaComment = "# yaml-language-server: $schema=https://raw.githubusercontent.com/NikitaCOEUR/addrsearch/main/schema/addrsearch.schema.json\n"

// Formats lists the formats Marshal accepts.
var Formats = []string{"yml", "toml", "json"}

// Marshal encodes cfg in the given format (yml, yaml, toml or json).
func Marshal(cfg *Config, format string) ([]byte, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "yml", "yaml":
		var buf bytes.Buffer
		buf.WriteString(schemaComment)
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "toml":
		return toml.Marshal(cfg)
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (expected one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Write saves cfg to path in the format implied by its extension. An existing
// file is never overwritten.
func Write(path string, cfg *Config) error {
	data, err := Marshal(cfg, filepath.Ext(path))
	if err != nil {
		return derrors.NewConfigurationError(path, "failed to encode config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return derrors.NewConfigurationError(path, "failed to create config directory", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return derrors.NewConfigurationError(path, fmt.Sprintf("config file already exists: %s", path), nil)
		}
		return derrors.NewConfigurationError(path, "failed to create config file", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return derrors.NewConfigurationError(path, "failed to write config file", err)
	}
	return f.Close()
}
