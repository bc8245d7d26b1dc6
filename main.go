package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/onurcolak/daily-campaign-mailer/environments"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"

	_ "github.com/onurcolak/daily-campaign-mailer/docs" // swagger docs
)

var (
	// Global flags
	logLevel string

	cfg *environments.Config
)

// rootCmd starts the server when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Daily campaign mailer",
	Long: `Sends the daily HTML campaign to every contact in the SendGrid list.

Run without arguments to start the HTTP API and the scheduler.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = environments.Load()
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		logger.Init(cfg.Log.Level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (default: LOG_LEVEL env or info)")

	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "Subject prefix (default: SUBJECT_PREFIX)")
	sendCmd.Flags().BoolVar(&sendTest, "test", false, "Use the test subject prefix")
	renderCmd.Flags().StringVar(&renderName, "name", "", "Display name substituted into the template")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(migrateCmd)
}

// @title Daily Campaign Mailer API
// @version 1.0
// @description Fetches the contact list, renders the daily template and sends one personalised email per contact on a schedule or on demand.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
