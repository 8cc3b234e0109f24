package cli

import (
	"fmt"

	"github.com/NikitaCOEUR/addrsearch/internal/config"
)

// Validate validates an addrsearch configuration file
func Validate(c Common, configPath string) error {
	if configPath == "" {
		found, err := config.Find()
		if err != nil {
			return err
		}
		if found == "" {
			return fmt.Errorf("no config file found")
		}
		configPath = found
	}

	out := c.out()
	fmt.Fprintf(out, "Validating: %s\n\n", configPath)

	result, err := config.Validate(configPath)
	if err != nil {
		return err
	}

	if result.Valid {
		fmt.Fprintln(out, "✅ Configuration is valid!")
		return nil
	}

	fmt.Fprintln(out, "❌ Configuration has errors:")
	for i, validationErr := range result.Errors {
		fmt.Fprintf(out, "%d. [%s] %s\n", i+1, validationErr.Field, validationErr.Message)
	}
	fmt.Fprintf(out, "\nFound %d error(s)\n", len(result.Errors))

	return fmt.Errorf("validation failed")
}
