package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

var (
	// ErrUsernameTaken is returned when creating a user with an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrNotACoach is returned when a runner's coach reference does not
	// point to a user with the coach role.
	ErrNotACoach = errors.New("referenced user is not a coach")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrIncompleteSession is returned when a session is completed before
	// all four segments have been uploaded.
	ErrIncompleteSession = errors.New("not all segments have been uploaded")
)

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection and performs migrations.
func New(dbpath string) (*Client, error) {
	if dir := filepath.Dir(dbpath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbpath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&Session{},
		&PerformanceSample{},
		&VideoMetadata{},
		&PendingUpload{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close closes the underlying database connection.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Stats holds basic database counters, used by the db-stats command.
type Stats struct {
	Admins          int64
	Coaches         int64
	Runners         int64
	Sessions        int64
	Samples         int64
	Videos          int64
	StagedUploads   int64
	BestMaxVelocity float64
}

// GetStats returns row counts across all tables.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	counts := []struct {
		model any
		dst   *int64
		cond  []any
	}{
		{&User{}, &stats.Admins, []any{"role = ?", RoleAdmin}},
		{&User{}, &stats.Coaches, []any{"role = ?", RoleCoach}},
		{&User{}, &stats.Runners, []any{"role = ?", RoleRunner}},
		{&Session{}, &stats.Sessions, nil},
		{&PerformanceSample{}, &stats.Samples, nil},
		{&VideoMetadata{}, &stats.Videos, nil},
		{&PendingUpload{}, &stats.StagedUploads, nil},
	}
	for _, q := range counts {
		tx := c.db.WithContext(ctx).Model(q.model)
		if q.cond != nil {
			tx = tx.Where(q.cond[0], q.cond[1:]...)
		}
		if err := tx.Count(q.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	if err := c.db.WithContext(ctx).
		Model(&Session{}).
		Select("COALESCE(MAX(max_velocity), 0)").
		Scan(&stats.BestMaxVelocity).Error; err != nil {
		return nil, fmt.Errorf("failed to get best velocity: %w", err)
	}

	return &stats, nil
}
