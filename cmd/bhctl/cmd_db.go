package main

import (
	"fmt"

	"github.com/boardinghub/boardinghub-api/internal/database"
	"github.com/boardinghub/boardinghub-api/internal/modules/admin"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if err := services.NewSettingsService(database.DB).SeedDefaults(); err != nil {
			return fmt.Errorf("seeding settings failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

var (
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing one",
	Long: `Create a verified admin account with the given email and password.

If an account with the email already exists it is promoted to admin and
reactivated; its password is left unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, created, err := admin.EnsureAdmin(database.DB, adminEmail, adminPassword)
		if err != nil {
			return err
		}
		verb := "promoted"
		if created {
			verb = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s admin %s (%s)\n", verb, user.Email, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password for a new account")
	_ = createAdminCmd.MarkFlagRequired("email")
}
