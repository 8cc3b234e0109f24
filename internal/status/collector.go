// Package status collects and renders the effective addrsearch setup.
package status

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/NikitaCOEUR/addrsearch/internal/config"
	"github.com/NikitaCOEUR/addrsearch/pkg/version"
)

// probeTimeout bounds the optional health request.
const probeTimeout = 2 * time.Second

// Options controls what Collect gathers.
type Options struct {
	ConfigPath string
	// Probe requests /healthz on the transport endpoint's host.
	Probe      bool
	HTTPClient *http.Client
}

// Collect gathers the configuration resolution and, optionally, relay health.
func Collect(ctx context.Context, opts Options) (*Data, error) {
	data := &Data{
		Version:   version.Version,
		BuildTime: version.BuildTime,
		GitCommit: version.GitCommit,
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	data.CurrentDir = currentDir

	info, err := config.Describe(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration: %w", err)
	}
	data.Candidates = info.Candidates
	data.Source = info.Source()
	data.Config = info.Config
	data.Problems = info.Config.Check()

	if opts.Probe {
		client := opts.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: probeTimeout}
		}
		data.Probe = probe(ctx, client, info.Config.Transport.Endpoint)
	}
	return data, nil
}

// HealthURL derives the relay health URL from a suggestion endpoint.
func HealthURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/healthz"}).String(), nil
}

func probe(ctx context.Context, client *http.Client, endpoint string) *ProbeResult {
	target, err := HealthURL(endpoint)
	if err != nil {
		return &ProbeResult{URL: endpoint, Error: err.Error()}
	}
	result := &ProbeResult{URL: target}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	_ = resp.Body.Close()

	result.Status = resp.StatusCode
	result.Healthy = resp.StatusCode == http.StatusOK
	return result
}
