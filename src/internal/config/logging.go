// FILE: logship/src/internal/config/logging.go
package config

import "fmt"

// LogConfig represents the shipper's own logging configuration
type LogConfig struct {
	// Output mode: "stdout", "stderr", "none"
	Output string `toml:"output"`

	// Log level: "debug", "info", "warn", "error"
	// DEBUG_ENABLED=true forces "debug"
	Level string `toml:"level"`

	// Format: "txt" or "json"
	Format string `toml:"format"`
}

// DefaultLogConfig returns sensible logging defaults
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Output: "stdout",
		Level:  "info",
		Format: "txt",
	}
}

func validateLogConfig(cfg *LogConfig) error {
	validOutputs := map[string]bool{
		"stdout": true, "stderr": true, "none": true,
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	validFormats := map[string]bool{
		"txt": true, "json": true, "": true,
	}
	if !validFormats[cfg.Format] {
		return fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	return nil
}
