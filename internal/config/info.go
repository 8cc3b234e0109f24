package config

import (
	"os"
	"path/filepath"
)

// Candidate is one location in the config search order.
type Candidate struct {
	Path   string
	Exists bool
	// Used marks the file the configuration was loaded from.
	Used bool
}

// Info describes how the effective configuration was resolved.
type Info struct {
	Explicit   string
	Candidates []Candidate
	Config     *Config
}

// Source returns the path the configuration came from, or "" for defaults.
func (i *Info) Source() string {
	for _, c := range i.Candidates {
		if c.Used {
			return c.Path
		}
	}
	return ""
}

// Describe resolves the configuration the way Load does and reports every
// location that was considered.
func Describe(explicit string) (*Info, error) {
	cfg, used, err := Load(explicit)
	if err != nil {
		return nil, err
	}

	info := &Info{Explicit: explicit, Config: cfg}
	if explicit != "" {
		info.Candidates = []Candidate{{Path: explicit, Exists: true, Used: true}}
		return info, nil
	}

	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		for _, name := range SupportedConfigNames {
			paths = append(paths, filepath.Join(cwd, name))
		}
	}
	if userPath, err := UserConfigPath(); err == nil {
		paths = append(paths, userPath)
	}

	for _, p := range paths {
		_, statErr := os.Stat(p)
		info.Candidates = append(info.Candidates, Candidate{
			Path:   p,
			Exists: statErr == nil,
			Used:   p == used,
		})
	}
	return info, nil
}
