// ABOUTME: Root command for the schaidule CLI
// ABOUTME: Handles global flags, configuration and logging setup

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/schaidule/schaidule-cli/internal/config"
	"github.com/schaidule/schaidule-cli/internal/logger"
)

var (
	apiURL     string
	jsonOutput bool
	configPath string
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "schaidule",
	Short: "CLI for SchAIdule course planning",
	Long: `schaidule is a terminal client for SchAIdule.

Log in, keep your completed courses, sports and goals up to date, browse the
course catalog and generate a recommended schedule.

Environment Variables:
  SCHAIDULE_API_URL      Backend API URL (default: http://localhost:5000)
  SCHAIDULE_STORAGE      Session storage backend: file, sqlite (default: file)
  SCHAIDULE_CONFIG_DIR   Directory for config.yaml and the saved session
  SCHAIDULE_LOG_LEVEL    debug, info, warn, error (default: warn)
  SCHAIDULE_LOG_FORMAT   text, json (default: text)`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			// Reported by the command itself
			return
		}
		logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides SCHAIDULE_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: <config dir>/config.yaml)")
}

// loadConfig layers the --api-url flag over file and environment settings
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// GetAPIURL returns the API URL from flag, env, config file, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("SCHAIDULE_API_URL"); envURL != "" {
		return envURL
	}
	if cfg, err := config.Load(configPath); err == nil {
		return cfg.APIURL
	}
	return config.DefaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
