package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(context.Background(), append([]string{"addrsearch"}, args...))
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	app := newApp()
	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{
		"parse", "query", "search", "serve", "fixture", "init", "validate", "schema", "status",
	}, names)
}

func TestParseCommand(t *testing.T) {
	out, err := runApp(t, "parse", "789S", "Elm", "St")
	require.NoError(t, err)
	assert.Contains(t, out, "house:  789")
	assert.Contains(t, out, "street: Elm St")
}

func TestParseCommand_MissingText(t *testing.T) {
	_, err := runApp(t, "parse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing address text")
}

func TestSchemaCommand(t *testing.T) {
	out, err := runApp(t, "schema")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestInitThenValidate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	out, err := runApp(t, "init", "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, ".addrsearch.toml")

	out, err = runApp(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
}

func TestValidateCommand_ConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  debounce_ms: -5\n"), 0o644))

	out, err := runApp(t, "--config", path, "validate")
	require.Error(t, err)
	assert.Contains(t, out, path)
}
