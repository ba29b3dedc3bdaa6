package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideworks/sprintline/internal/config"
	"github.com/strideworks/sprintline/internal/database"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display statistics about accounts, sessions and stored videos.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Admins: %d\n", stats.Admins)
		fmt.Printf("Coaches: %d\n", stats.Coaches)
		fmt.Printf("Runners: %d\n", stats.Runners)
		fmt.Printf("Sessions: %d\n", stats.Sessions)
		fmt.Printf("Performance Samples: %d\n", stats.Samples)
		fmt.Printf("Stored Videos: %d\n", stats.Videos)
		fmt.Printf("Staged Uploads: %d\n", stats.StagedUploads)
		fmt.Printf("Best Max Velocity: %.2f m/s\n", stats.BestMaxVelocity)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
