package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/NikitaCOEUR/addrsearch/internal/label"
	"github.com/NikitaCOEUR/addrsearch/internal/session"
	"github.com/NikitaCOEUR/addrsearch/internal/transport"
)

// QueryParams contains parameters for the Query command
type QueryParams struct {
	Common
	Text string
	// JSON prints the raw rows instead of labels.
	JSON bool
}

// lastView keeps the most recent render.
type lastView struct {
	mu   sync.Mutex
	view session.View
}

func (l *lastView) Render(v session.View) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.view = v
}

func (l *lastView) SetInputValue(string) {}

// Query runs a single suggestion lookup through the session controller and
// prints the listed suggestions.
func Query(ctx context.Context, p QueryParams) error {
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

	view := &lastView{}
	ctrl := session.New(session.Options{
		Config:    cfg.Session.Controller(),
		Transport: client,
		Renderer:  view,
		Labeler:   labels,
		Logger:    log,
	})
	defer ctrl.Close()

	stop := context.AfterFunc(ctx, ctrl.Close)
	defer stop()
	ctrl.StartFetch(p.Text)
	ctrl.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	st := ctrl.State()
	if st.Err != nil {
		return fmt.Errorf("suggestion request failed: %w", st.Err)
	}

	out := p.out()
	if p.JSON {
		rows := make([]session.Row, len(st.Results))
		for i, r := range st.Results {
			rows[i] = r.Raw
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"rows": rows, "tooMany": st.TooMany})
	}

	if len(st.Results) == 0 {
		_, err := fmt.Fprintln(out, "No suggestions")
		return err
	}
	for _, r := range st.Results {
		if _, err := fmt.Fprintln(out, r.Label); err != nil {
			return err
		}
	}
	if st.TooMany {
		_, err := fmt.Fprintln(out, ctrl.Config().Advisory)
		return err
	}
	return nil
}
