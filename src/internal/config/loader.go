// FILE: logship/src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

// Load builds the configuration from defaults, an optional toml file, the
// environment and CLI arguments, then resolves it.
func Load(cliArgs []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := defaults()
	if cfg != nil {
		if err := cfg.Scan(finalConfig, ""); err != nil {
			return nil, fmt.Errorf("failed to scan config: %w", err)
		}
	}

	// LOGTYPE predates LOG_TYPE and is still accepted
	if finalConfig.LogType == "" {
		finalConfig.LogType = os.Getenv("LOGTYPE")
	}

	if err := finalConfig.Resolve(); err != nil {
		return nil, err
	}
	return finalConfig, nil
}

// Config paths map to bare upper-case names, so license_key reads LICENSE_KEY
// and delivery.max_retries reads DELIVERY_MAX_RETRIES.
func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	return strings.ToUpper(env)
}

func GetConfigPath() string {
	if configFile := os.Getenv("LOGSHIP_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGSHIP_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGSHIP_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logship.toml")
	}

	return "logship.toml"
}
