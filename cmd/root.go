package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/olivierh59500/neuralsearch/internal/config"
)

var (
	flagConfig   string
	flagEnvFile  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:          "neuralsearch",
	Short:        "NeuralSearch: an animated front end for an AI search service",
	SilenceUsage: true,
	Long: `NeuralSearch opens a window with a rotating particle globe, a docs page and
a search page that talks to an external /search and /trending service.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath, "Config file (YAML); missing file means defaults")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", config.DefaultDotEnv, "Dotenv file read before the process environment")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, dotenv and environment, then applies
// the flags the user set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig, flagEnvFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, nil
}
