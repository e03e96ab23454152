package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/keepmind9/scriptbot/internal/core"
	"github.com/spf13/cobra"
)

var (
	validateConfigPath string
	validateJSON       bool
)

// ValidationResult represents the validation result
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Config   string   `json:"config"`
	Prefix   string   `json:"prefix,omitempty"`
	Timeout  string   `json:"timeout,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate scriptbot configuration file",
	Long: `Validate the scriptbot configuration file without connecting to Discord.

This command checks:
  - YAML syntax
  - Environment variable expansion
  - Bot token presence
  - Pager and upstream settings

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors`,
	Run: func(cmd *cobra.Command, args []string) {
		path := validateConfigPath
		if path == "" {
			path = findConfigFile()
		}

		result := validateFile(path)
		outputValidationResult(cmd.OutOrStdout(), result, validateJSON)
		if !result.Valid {
			os.Exit(1)
		}
	},
}

// findConfigFile returns the first default location that exists, or
// "config.yaml" so that defaults and the environment are validated.
func findConfigFile() string {
	for _, loc := range []string{
		"config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/scriptbot/config.yaml"),
		"/etc/scriptbot/config.yaml",
	} {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return "config.yaml"
}

func validateFile(path string) ValidationResult {
	cfg, err := core.LoadConfig(path)
	if err != nil {
		return ValidationResult{
			Valid:  false,
			Config: path,
			Errors: []string{err.Error()},
		}
	}

	result := ValidationResult{
		Valid:    true,
		Config:   path,
		Prefix:   cfg.Discord.Prefix,
		Timeout:  cfg.Pager.NavigationTimeout().String(),
		Warnings: validateConfigDetails(path, cfg),
	}
	return result
}

// validateConfigDetails reports settings that load fine but are likely mistakes.
func validateConfigDetails(path string, cfg *core.Config) []string {
	var warnings []string

	if _, err := os.Stat(path); err != nil {
		warnings = append(warnings, fmt.Sprintf("Config file %s not found - using defaults and environment", path))
	}
	if cfg.Discord.GuildID == "" {
		warnings = append(warnings, "No guild_id set - slash commands are registered globally and may take up to an hour to appear")
	}
	if cfg.Logging.File == "" {
		warnings = append(warnings, "No log file configured - logs go to stdout only")
	}

	return warnings
}

func outputValidationResult(w io.Writer, result ValidationResult, jsonFormat bool) {
	if jsonFormat {
		output, err := json.Marshal(result)
		if err != nil {
			fmt.Fprintf(w, "{\"error\": \"failed to marshal json: %v\"}\n", err)
			return
		}
		fmt.Fprintln(w, string(output))
		return
	}

	if result.Valid {
		fmt.Fprintln(w, "✓ Configuration is valid")
		fmt.Fprintf(w, "  - Config: %s\n", result.Config)
		fmt.Fprintf(w, "  - Prefix: %s\n", result.Prefix)
		fmt.Fprintf(w, "  - Pager timeout: %s\n", result.Timeout)
		if len(result.Warnings) > 0 {
			fmt.Fprintln(w, "\n⚠️  Warnings:")
			for _, warning := range result.Warnings {
				fmt.Fprintf(w, "  - %s\n", warning)
			}
		}
		return
	}

	fmt.Fprintln(w, "❌ Configuration validation failed:")
	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", errMsg)
		}
	}
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfigPath, "config", "c", "", "Configuration file path")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
}
