package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/internal/service"
	"github.com/onurcolak/daily-campaign-mailer/pkg/database"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
	"github.com/onurcolak/daily-campaign-mailer/pkg/sendgrid"
)

var (
	sendSubject string
	sendTest    bool
	renderName  string
)

var errRunFailed = errors.New("campaign run did not succeed")

// sendCmd runs the campaign once and exits.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Run the campaign once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		prefix := sendSubject
		if sendTest {
			prefix = cfg.Campaign.TestSubjectPrefix
		}

		result, runErr := a.campaigns.Run(ctx, prefix, domain.TriggerCLI)

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if runErr != nil {
			return runErr
		}
		if !result.Success {
			return errRunFailed
		}
		return nil
	},
}

// renderCmd prints today's email without sending anything.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print today's rendered email",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := sendgrid.NewClient(cfg.SendGrid, cfg.Campaign.AcceptedStatus)
		campaigns := service.NewCampaignService(client, cfg.SendGrid, cfg.Campaign)

		html, err := campaigns.Preview(renderName)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), html)
		return nil
	},
}

// migrateCmd creates the delivery log tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the delivery log tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewMySQLDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.RunMigrations(db); err != nil {
			return err
		}

		logger.Infof("Delivery log migrations applied")
		return nil
	},
}
