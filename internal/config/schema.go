package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

// GetSchemaJSON returns the JSON Schema for addrsearch configuration
func GetSchemaJSON() string {
	return schemaJSON
}

// ValidateWithSchema validates config content against the JSON Schema. The
// format is taken from the path extension.
func ValidateWithSchema(path string, content []byte) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:  true,
		Errors: []ValidationError{},
	}

	var data interface{}
	var syntaxErr error
	format := strings.ToLower(filepath.Ext(path))
	switch format {
	case ".yml", ".yaml":
		syntaxErr = yaml.Unmarshal(content, &data)
	case ".json":
		syntaxErr = json.Unmarshal(content, &data)
	case ".toml":
		var doc map[string]interface{}
		syntaxErr = toml.Unmarshal(content, &doc)
		data = doc
	default:
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}
	if syntaxErr != nil {
		result.add("syntax", fmt.Sprintf("Invalid %s syntax: %v", strings.ToUpper(strings.TrimPrefix(format, ".")), syntaxErr))
		return result, nil
	}
	// An empty document is an empty config.
	if data == nil {
		data = map[string]interface{}{}
	}

	schemaLoader := gojsonschema.NewStringLoader(GetSchemaJSON())
	documentLoader := gojsonschema.NewGoLoader(data)

	validationResult, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	for _, err := range validationResult.Errors() {
		result.add(err.Field(), err.Description())
	}
	return result, nil
}
