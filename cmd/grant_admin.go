package main

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/Dosada05/spikezone/repositories"
	"github.com/Dosada05/spikezone/services"
	"github.com/spf13/cobra"
)

var grantAdminUID string

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin",
	Short: "Give the admin role to an existing account",
	Long: `Grant-admin promotes an account, identified by its identity provider uid,
to the admin role. The account must have signed in at least once.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		uid := strings.TrimSpace(grantAdminUID)
		if uid == "" {
			return errors.New("--uid is required")
		}

		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		dbConn, err := openDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeDatabase(dbConn, logger)

		accounts := services.NewAccountService(repositories.NewPostgresAccountRepository(dbConn), logger)
		account, err := accounts.GrantAdmin(cmd.Context(), uid)
		if err != nil {
			return err
		}
		logger.Info("admin role granted", slog.Int("account_id", account.ID), slog.String("uid", account.UID))
		return nil
	},
}

func init() {
	grantAdminCmd.Flags().StringVar(&grantAdminUID, "uid", "", "identity provider uid of the account")
}
