// Package cli implements the addrsearch commands.
package cli

import (
	"io"
	"os"

	"github.com/NikitaCOEUR/addrsearch/internal/config"
	"github.com/NikitaCOEUR/addrsearch/internal/logger"
)

// Common holds the flags shared by every command.
type Common struct {
	ConfigPath string
	// LogLevel overrides the configured level when set.
	LogLevel string
	Out      io.Writer
	ErrOut   io.Writer
}

func (c Common) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c Common) errOut() io.Writer {
	if c.ErrOut == nil {
		return os.Stderr
	}
	return c.ErrOut
}

// setup loads the configuration and builds the logger it asks for.
func (c Common) setup() (*config.Config, *logger.Logger, error) {
	cfg, path, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel
	if c.LogLevel != "" {
		level = c.LogLevel
	}
	log := logger.New(level, c.errOut())
	if path != "" {
		log.Debug().Str("path", path).Msg("configuration loaded")
	} else {
		log.Debug().Msg("no configuration file found, using defaults")
	}
	return cfg, log, nil
}
