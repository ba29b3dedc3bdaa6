package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/strideworks/sprintline/internal/api"
	"github.com/strideworks/sprintline/internal/config"
	"github.com/strideworks/sprintline/internal/database"
	"github.com/strideworks/sprintline/internal/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Sprintline server",
	Long:  `Start the Sprintline server to handle uploads, session analysis and reporting.`,
	Example: `sprintline serve --config config.yml
sprintline serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if rootCmdPersistentFlags.LogLevel == "" && cfg.LogLevel != "" {
		setLogLevel(cfg.LogLevel)
	}

	exists, err := dbFileExists(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to check database file: %v", err)
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Seed the default admin account on first run only.
	engine, err := engine.New(cfg, db, !exists)
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}

	server, err := api.New(cfg, engine)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(ctx)
	})
	g.Go(func() error {
		log.Info("starting API server", "listen", cfg.Listen)
		return server.Run()
	})

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Info("sprintline started successfully")
	select {
	case <-c:
		log.Info("shutting down gracefully...")
	case <-ctx.Done():
		// One of the servers failed; the group context carries the cause.
		log.Error("server error", "error", context.Cause(ctx))
	}

	// Give time for graceful shutdown
	cancel()
	time.Sleep(2 * time.Second)
}

func dbFileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
