package cli

import (
	"context"
	"fmt"

	"github.com/NikitaCOEUR/addrsearch/internal/status"
)

// StatusParams contains parameters for the Status command
type StatusParams struct {
	Common
	Probe bool
}

// Status displays the effective configuration and, optionally, relay health
func Status(ctx context.Context, p StatusParams) error {
	data, err := status.Collect(ctx, status.Options{ConfigPath: p.ConfigPath, Probe: p.Probe})
	if err != nil {
		return fmt.Errorf("failed to collect status data: %w", err)
	}

	fmt.Fprintln(p.out(), status.Render(data))
	return nil
}
