package cli

import (
	"context"
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/NikitaCOEUR/addrsearch/internal/events"
	"github.com/NikitaCOEUR/addrsearch/internal/label"
	"github.com/NikitaCOEUR/addrsearch/internal/session"
	"github.com/NikitaCOEUR/addrsearch/internal/transport"
	"github.com/NikitaCOEUR/addrsearch/internal/tui"
)

// SearchParams contains parameters for the Search command
type SearchParams struct {
	Common
	// Initial pre-fills the input and starts a lookup.
	Initial string
}

// Search runs the interactive address widget. When the user commits a
// suggestion, the raw record is printed as JSON.
func Search(ctx context.Context, p SearchParams) error {
	cfg, log, err := p.setup()
	if err != nil {
		return err
	}
	labels, err := label.New(cfg.Label.Template)
	if err != nil {
		return err
	}
	client, err := transport.New(transport.Options{Endpoint: cfg.Transport.Endpoint, Logger: log})
	if err != nil {
		return err
	}

	bus := events.New(8, log)
	defer bus.Close()
	unsubscribe := bus.Subscribe(events.TypeAddressSelected, func(e events.Event) {
		sel := e.(events.AddressSelected)
		log.Info().Str("label", sel.Label).Str("value", sel.InputValue).Msg("address selected")
	})
	defer unsubscribe()

	renderer := tui.NewRenderer()
	defer renderer.Close()
	ctrl := session.New(session.Options{
		Config:    cfg.Session.Controller(),
		Transport: client,
		Renderer:  renderer,
		Labeler:   labels,
		Logger:    log,
		OnSelect: func(sel session.Selection) {
			renderer.OnSelect(sel)
			bus.Publish(events.FromSelection(sel))
		},
	})
	defer ctrl.Close()

	model := tui.New(ctrl, renderer, "e.g. 123 Main St")
	if p.Initial != "" {
		model.SetValue(p.Initial)
		ctrl.TextChanged(p.Initial)
	}

	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(p.errOut()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	chosen := model.Chosen()
	if chosen == nil {
		return nil
	}
	enc := json.NewEncoder(p.out())
	enc.SetIndent("", "  ")
	return enc.Encode(chosen.Raw)
}
