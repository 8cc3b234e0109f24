package cli

import (
	"context"

	"github.com/NikitaCOEUR/addrsearch/internal/fixture"
	"github.com/NikitaCOEUR/addrsearch/internal/proxy"
)

// ServeParams contains parameters for the Serve command
type ServeParams struct {
	Common
	// Listen and Upstream override the configured values when set.
	Listen   string
	Upstream string
}

// Serve runs the suggestion relay until ctx is cancelled.
func Serve(ctx context.Context, p ServeParams) error {
	cfg, log, err := p.setup()
	if err != nil {
		return err
	}
	pc := cfg.Proxy.Server()
	if p.Listen != "" {
		pc.Listen = p.Listen
	}
	if p.Upstream != "" {
		pc.Upstream = p.Upstream
	}

	srv, err := proxy.New(pc, log)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// FixtureParams contains parameters for the Fixture command
type FixtureParams struct {
	Common
	Listen string
	File   string
}

// Fixture runs the offline upstream until ctx is cancelled.
func Fixture(ctx context.Context, p FixtureParams) error {
	cfg, log, err := p.setup()
	if err != nil {
		return err
	}
	fc := cfg.Fixture.Server()
	if p.Listen != "" {
		fc.Listen = p.Listen
	}
	if p.File != "" {
		fc.File = p.File
	}

	srv, err := fixture.New(fc, log)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}
