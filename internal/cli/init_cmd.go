package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/NikitaCOEUR/addrsearch/internal/config"
	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
)

// InitParams contains parameters for the Init command
type InitParams struct {
	Common
	// Format is yml, toml or json.
	Format string
	// Global writes the per-user config instead of the working directory one.
	Global bool
	// Dir is the target directory for a local config; empty means the working directory.
	Dir string
}

// Init writes a config file holding the built-in defaults.
func Init(p InitParams) error {
	format := strings.TrimPrefix(strings.ToLower(p.Format), ".")
	if format == "" {
		format = "yml"
	}
	if format == "yaml" {
		format = "yml"
	}
	valid := false
	for _, f := range config.Formats {
		if f == format {
			valid = true
		}
	}
	if !valid {
		return derrors.NewValidationError("format",
			fmt.Sprintf("unsupported format %q (expected one of %s)", p.Format, strings.Join(config.Formats, ", ")), nil)
	}

	var configPath string
	if p.Global {
		userPath, err := config.UserConfigPath()
		if err != nil {
			return derrors.NewConfigurationError("", "failed to get user config path", err)
		}
		if format != "yml" {
			return derrors.NewValidationError("format", "the user config file is always YAML", nil)
		}
		configPath = userPath
	} else {
		dir := p.Dir
		if dir == "" {
			dir = "."
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve directory: %w", err)
		}
		configPath = filepath.Join(abs, ".addrsearch."+format)
	}

	if err := config.Write(configPath, config.Defaults()); err != nil {
		return err
	}

	out := p.out()
	fmt.Fprintf(out, "Created config: %s\n", configPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Edit the config file to suit your needs")
	fmt.Fprintln(out, "  2. Run 'addrsearch validate' to check it")
	fmt.Fprintln(out, "  3. Run 'addrsearch serve' and 'addrsearch search'")
	return nil
}
