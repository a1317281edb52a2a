// FILE: logship/src/cmd/logship/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"logship/src/internal/config"
	"logship/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/spf13/cobra"
)

var logger *log.Logger

// Global flags
var (
	configFile string
	overrides  []string
	quiet      bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		FatalError(1, "Error: %v\n", err)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "logship",
		Short: "logship - ship S3 log objects to the New Relic Log API",
		Long: `logship reads one S3 object per invocation, batches its records and
delivers them as gzip compressed payloads to the New Relic Log API.

Without a subcommand it runs as an AWS Lambda handler for S3 notifications.

Examples:
  # Lambda entry point
  logship

  # Ship one object from S3
  logship run --bucket my-logs --key app/2024/01/01/app.log.gz

  # Ship one object from a local directory laid out as <root>/<bucket>/<key>
  logship run --root ./testdata --bucket my-logs --key app.log

  # Override a setting
  logship run --set delivery.max_retries=3 --bucket b --key k`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			InitOutputHandler(quiet)
			if configFile != "" {
				os.Setenv("LOGSHIP_CONFIG_FILE", configFile)
			}
		},
		RunE: runLambda,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file path (toml)")
	root.PersistentFlags().StringArrayVar(&overrides, "set", nil, "override a config value, key=value (repeatable)")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress CLI output")

	root.AddCommand(
		newLambdaCommand(),
		newRunCommand(),
		newConfigCommand(),
		newVersionCommand(),
	)

	return root
}

// loadConfig resolves configuration and starts the logger
func loadConfig() (*config.Config, error) {
	cliArgs, err := overrideArgs(overrides)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cliArgs)
	if err != nil {
		if configFile != "" && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("config file not found: %s", configFile)
		}
		return nil, err
	}

	if err := initializeLogger(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Debug("msg", "logship starting",
		"version", version.String(),
		"config_file", config.GetConfigPath(),
		"log_level", cfg.Logging.Level)

	return cfg, nil
}

// overrideArgs turns key=value pairs into the --key=value form the config
// loader reads
func overrideArgs(pairs []string) ([]string, error) {
	args := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set value %q, expected key=value", pair)
		}
		args = append(args, fmt.Sprintf("--%s=%s", key, value))
	}
	return args, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "save <path>",
		Short: "Write the resolved configuration to a toml file (license key omitted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer shutdownLogger()

			if err := cfg.SaveToFile(args[0]); err != nil {
				return err
			}
			Print("Configuration written to %s\n", args[0])
			return nil
		},
	})

	return cmd
}
