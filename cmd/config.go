package cmd

import (
	"github.com/spf13/cobra"
)

var configValidate bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration serve would use, as TOML, after merging the
config file, dotenv file, environment and flags. The API key is redacted.

With --validate, also run the startup checks and fail the way serve would.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	addConfigFlags(configCmd)
	configCmd.Flags().BoolVar(&configValidate, "validate", false, "Fail if serve would refuse this configuration")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.WriteTOML(cmd.OutOrStdout()); err != nil {
		return err
	}

	if configValidate {
		if err := validateConfig(cfg); err != nil {
			return err
		}
		logSuccess("Configuration is valid")
	}
	return nil
}
