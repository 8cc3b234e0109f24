package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fields(result *ValidationResult) []string {
	out := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		out[i] = e.Field
	}
	return out
}

func TestValidate_ValidConfig(t *testing.T) {
	path := writeConfig(t, ".addrsearch.yml", `log_level: debug
session:
  debounce_ms: 200
  max_results: 8
label:
  template: "{{ .street | title }}"
`)
	result, err := Validate(path)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_EmptyFile(t *testing.T) {
	result, err := Validate(writeConfig(t, "c.yml", ""))
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidate_FileNotFound(t *testing.T) {
	_, err := Validate("/nonexistent/path/.addrsearch.yml")
	var nf *derrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestValidate_InvalidSyntax(t *testing.T) {
	result, err := Validate(writeConfig(t, "c.yml", "session:\n  debounce_ms: [[[\n"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "syntax", result.Errors[0].Field)
	assert.Contains(t, result.Errors[0].Message, "Invalid YML syntax")
}

func TestValidate_SchemaViolations(t *testing.T) {
	result, err := Validate(writeConfig(t, "c.json", `{
  "log_level": "loud",
  "session": {"debounce_ms": -1, "min_query_length": 0},
  "unknown": true
}`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.GreaterOrEqual(t, len(result.Errors), 4)
	assert.Contains(t, fields(result), "log_level")
	assert.Contains(t, fields(result), "session.debounce_ms")
	assert.Contains(t, fields(result), "session.min_query_length")
}

func TestValidate_SemanticErrors(t *testing.T) {
	result, err := Validate(writeConfig(t, "c.toml", `
[transport]
endpoint = "localhost:3000"

[label]
template = "{{ .street "

[proxy]
upstream = "ftp://example.com/"
`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.ElementsMatch(t, []string{"transport.endpoint", "label.template", "proxy.upstream"}, fields(result))
}

func TestValidateWithSchema_UnsupportedFormat(t *testing.T) {
	_, err := ValidateWithSchema("c.ini", []byte("x=1"))
	assert.Error(t, err)
}

func TestCheck_Ranges(t *testing.T) {
	cfg := Defaults()
	cfg.Session.DebounceMS = -5
	cfg.Session.TimeoutMS = 0
	cfg.Session.MaxResults = 0
	cfg.Proxy.CacheSize = -1
	cfg.Fixture.MaxResults = 0

	var got []string
	for _, e := range cfg.Check() {
		got = append(got, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"session.debounce_ms",
		"session.timeout_ms",
		"session.max_results",
		"proxy.cache_size",
		"fixture.max_results",
	}, got)
}

func TestSchemaJSON_IsValidJSON(t *testing.T) {
	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(GetSchemaJSON()), &schema))
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"log_level", "session", "transport", "label", "proxy", "fixture"} {
		assert.Contains(t, props, key)
	}
}

func TestSchema_AcceptsDefaults(t *testing.T) {
	result, err := ValidateWithSchema("defaults.yml", DefaultsYAML())
	require.NoError(t, err)
	assert.True(t, result.Valid, "%v", result.Errors)
}
