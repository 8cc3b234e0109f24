package status

import (
	"github.com/NikitaCOEUR/addrsearch/internal/config"
)

// Data contains all the information to display in status
type Data struct {
	// Header
	CurrentDir string
	Version    string
	BuildTime  string
	GitCommit  string

	// Configuration
	Candidates []config.Candidate
	Source     string
	Config     *config.Config
	Problems   []config.ValidationError

	// Endpoint probe, nil when not requested
	Probe *ProbeResult
}

// ProbeResult is the outcome of a health request against the relay.
type ProbeResult struct {
	URL     string
	Healthy bool
	Status  int
	Error   string
}
