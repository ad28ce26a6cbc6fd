package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/a1utilityhub/prompt-relay/internal/logging"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

var (
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "prompt-relay",
	Short: "Server-side relay for Gemini prompts",
	Long: `prompt-relay lets a browser frontend call the Gemini generateContent API
without ever seeing the API key.

The frontend POSTs {prompt, inlineData?} to /api/prompt; the relay adds the
key on the server, makes exactly one upstream call and returns the provider's
response. Optionally it also hosts the frontend's static files.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)
