package cli

import (
	"fmt"
	"os"

	"github.com/NikitaCOEUR/addrsearch/internal/config"
)

// Schema displays or exports the JSON Schema for addrsearch configuration files
func Schema(c Common, outputPath string) error {
	schemaJSON := config.GetSchemaJSON()

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(schemaJSON), 0644); err != nil {
			return fmt.Errorf("failed to write schema to %s: %w", outputPath, err)
		}
		fmt.Fprintf(c.out(), "JSON Schema written to: %s\n", outputPath)
		return nil
	}

	fmt.Fprintln(c.out(), schemaJSON)
	return nil
}
