package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"

	"github.com/strideworks/sprintline/internal/analysis"
	"github.com/strideworks/sprintline/internal/config"
	"github.com/strideworks/sprintline/internal/database"
	"github.com/strideworks/sprintline/internal/notify/email"
)

// Engine orchestrates the upload-to-session flow: it stores uploaded segment
// videos, runs the metrics synthesizer and aggregator once all four segments
// are in, persists the results and notifies the runner's coach.
type Engine struct {
	cfg      *config.Config
	db       database.DB
	synth    *analysis.Synthesizer
	notifier *email.Notifier
}

// New creates the engine. When seedAdmin is set (first run against a fresh
// database), the default administrative account from the config is created.
func New(cfg *config.Config, db database.DB, seedAdmin bool) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	e := &Engine{
		cfg:      cfg,
		db:       db,
		synth:    analysis.NewSynthesizer(cfg.Analysis.SampleRate, cfg.Analysis.VelocityJitter, nil),
		notifier: email.New(cfg.Email),
	}

	if seedAdmin {
		if err := e.seedAdmin(context.Background()); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// seedAdmin creates the default administrative account on first run.
func (e *Engine) seedAdmin(ctx context.Context) error {
	_, err := e.db.CreateUser(ctx, e.cfg.Admin.Username, e.cfg.Admin.Password, e.cfg.Admin.Email, database.RoleAdmin, nil)
	if errors.Is(err, database.ErrUsernameTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	log.Info("Seeded default admin account", "username", e.cfg.Admin.Username)
	return nil
}

// DB exposes the underlying database for read paths in the API layer.
func (e *Engine) DB() database.DB {
	return e.db
}

// Run starts the upload retention job and blocks until the context is done.
func (e *Engine) Run(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLogger(newLogger()))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	interval := time.Duration(e.cfg.Uploads.CleanupInterval) * time.Hour
	if _, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := e.cleanupStaleUploads(ctx); err != nil {
				log.Error("upload cleanup failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("failed to schedule upload cleanup: %w", err)
	}

	scheduler.Start()
	log.Info("upload retention job scheduled", "interval", interval)

	<-ctx.Done()
	return scheduler.Shutdown()
}

// cleanupStaleUploads discards staged uploads whose session was never
// completed within the retention window, together with their files.
func (e *Engine) cleanupStaleUploads(ctx context.Context) error {
	cutoff := time.Now().Add(-time.Duration(e.cfg.Uploads.RetentionHours) * time.Hour)
	stale, err := e.db.StaleStagedUploads(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, upload := range stale {
		if err := os.Remove(upload.StoragePath); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove stale upload file", "path", upload.StoragePath, "error", err)
		}
	}
	if len(stale) > 0 {
		log.Info("discarded stale staged uploads", "count", len(stale))
	}
	return nil
}

// assumedSpeed returns the configured assumed speed for a segment.
func (e *Engine) assumedSpeed(segment analysis.Segment) float64 {
	if speed, ok := e.cfg.Analysis.AssumedSpeeds[segment.String()]; ok {
		return speed
	}
	return 8.0
}
