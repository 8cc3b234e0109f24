package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_RoundTripsEveryFormat(t *testing.T) {
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", ".addrsearch."+format)
			cfg := Defaults()
			cfg.Session.DebounceMS = 123
			cfg.Fixture.File = "rows.yml"

			require.NoError(t, Write(path, cfg))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)

			result, err := Validate(path)
			require.NoError(t, err)
			assert.True(t, result.Valid, "%v", result.Errors)
		})
	}
}

func TestWrite_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yml")
	require.NoError(t, Write(path, Defaults()))

	err := Write(path, Defaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestMarshal(t *testing.T) {
	data, err := Marshal(Defaults(), "yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "yaml-language-server")
	assert.Contains(t, string(data), "debounce_ms: 300")

	data, err = Marshal(Defaults(), ".toml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "[session]")

	_, err = Marshal(Defaults(), "xml")
	assert.Error(t, err)
}
