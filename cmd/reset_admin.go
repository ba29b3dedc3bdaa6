package cmd

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/strideworks/sprintline/internal/config"
	"github.com/strideworks/sprintline/internal/database"
)

var resetAdminCmdFlags struct {
	Password string
}

var resetAdminCmd = &cobra.Command{
	Use:   "reset-admin",
	Short: "Reset the admin account password",
	Long:  `This command resets the password of the default admin account, creating the account if it does not exist.`,
	Run:   resetAdmin,
}

func init() {
	resetAdminCmd.Flags().StringVar(&resetAdminCmdFlags.Password, "password", "", "New admin password (defaults to the configured one)")

	rootCmd.AddCommand(resetAdminCmd)
}

func resetAdmin(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	password := resetAdminCmdFlags.Password
	if password == "" {
		password = cfg.Admin.Password
	}

	ctx := cmd.Context()
	admin, err := db.GetUserByUsername(ctx, cfg.Admin.Username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("failed to look up admin account: %v", err)
		}
		if _, err := db.CreateUser(ctx, cfg.Admin.Username, password, cfg.Admin.Email, database.RoleAdmin, nil); err != nil {
			log.Fatalf("failed to create admin account: %v", err)
		}
		log.Info("Created admin account", "username", cfg.Admin.Username)
		return
	}

	if err := db.UpdateUserPassword(ctx, admin.ID, password); err != nil {
		log.Fatalf("failed to update admin password: %v", err)
	}
	log.Info("Reset admin password", "username", cfg.Admin.Username)
}
