package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Session is one complete four-segment upload-and-analysis unit for one
// runner. The summary fields are derived by the aggregator and never
// hand-edited; a session is read-only after creation except for deletion
// by an admin.
type Session struct {
	gorm.Model
	RunnerID uint `gorm:"index;not null"`
	Runner   User `gorm:"foreignKey:RunnerID"`
	CoachID  *uint

	TotalDistance float64
	MaxVelocity   float64
	AvgVelocity   float64
	TotalTime     float64

	Samples []PerformanceSample `gorm:"constraint:OnDelete:CASCADE"`
	Videos  []VideoMetadata     `gorm:"constraint:OnDelete:CASCADE"`
}

// PerformanceSample is a single synthesized measurement. Samples are
// append-only; one ordered sequence per (session, segment).
type PerformanceSample struct {
	ID        uint   `gorm:"primarykey"`
	SessionID uint   `gorm:"index;not null"`
	Segment   string `gorm:"index;not null"`
	SeqNo     int    `gorm:"not null"`
	Offset    float64
	Position  float64
	Velocity  float64
}

// VideoMetadata describes one uploaded video file; at most one per
// (session, segment), four per session.
type VideoMetadata struct {
	ID          uint   `gorm:"primarykey"`
	SessionID   uint   `gorm:"index;not null"`
	Segment     string `gorm:"not null"`
	FileName    string
	StoragePath string
	FileSize    int64
	UploadedAt  time.Time
}

// SessionResults bundles everything persisted when a four-segment session
// completes. Sample and video rows get their SessionID assigned on insert.
type SessionResults struct {
	TotalDistance float64
	MaxVelocity   float64
	AvgVelocity   float64
	TotalTime     float64
	Samples       []PerformanceSample
	Videos        []VideoMetadata
}

// CreateSessionWithResults creates the session row together with all child
// sample and video rows, and drops the runner's staged uploads, in a single
// transaction. No partial session is ever visible.
func (c *Client) CreateSessionWithResults(ctx context.Context, runnerID uint, coachID *uint, results SessionResults) (*Session, error) {
	session := Session{
		RunnerID:      runnerID,
		CoachID:       coachID,
		TotalDistance: results.TotalDistance,
		MaxVelocity:   results.MaxVelocity,
		AvgVelocity:   results.AvgVelocity,
		TotalTime:     results.TotalTime,
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		for i := range results.Samples {
			results.Samples[i].SessionID = session.ID
		}
		if len(results.Samples) > 0 {
			if err := tx.CreateInBatches(results.Samples, 500).Error; err != nil {
				return err
			}
		}
		for i := range results.Videos {
			results.Videos[i].SessionID = session.ID
		}
		if len(results.Videos) > 0 {
			if err := tx.Create(results.Videos).Error; err != nil {
				return err
			}
		}
		return tx.Where("runner_id = ?", runnerID).Delete(&PendingUpload{}).Error
	})
	if err != nil {
		log.Error("failed to create session", "runner", runnerID, "error", err)
		return nil, err
	}

	session.Samples = results.Samples
	session.Videos = results.Videos
	return &session, nil
}

// GetSession returns a session with its samples (ordered per segment) and
// video metadata preloaded.
func (c *Client) GetSession(ctx context.Context, id uint) (*Session, error) {
	var session Session
	if err := c.db.WithContext(ctx).
		Preload("Runner").
		Preload("Samples", func(db *gorm.DB) *gorm.DB {
			return db.Order("segment, seq_no")
		}).
		Preload("Videos").
		First(&session, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get session", "error", err)
		}
		return nil, err
	}
	return &session, nil
}

// GetPreviousSession returns the runner's most recent session created before
// the given one, for session-over-session comparison.
func (c *Client) GetPreviousSession(ctx context.Context, runnerID, beforeID uint) (*Session, error) {
	var session Session
	if err := c.db.WithContext(ctx).
		Where("runner_id = ? AND id < ?", runnerID, beforeID).
		Order("created_at DESC, id DESC").
		First(&session).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get previous session", "error", err)
		}
		return nil, err
	}
	return &session, nil
}

// ListSessionsForRunner returns the runner's sessions, newest first.
func (c *Client) ListSessionsForRunner(ctx context.Context, runnerID uint, limit int) ([]Session, error) {
	var sessions []Session
	tx := c.db.WithContext(ctx).
		Preload("Runner").
		Where("runner_id = ?", runnerID).
		Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&sessions).Error; err != nil {
		log.Error("failed to list sessions for runner", "error", err)
		return nil, err
	}
	return sessions, nil
}

// ListSessionsForCoach returns the sessions of all runners assigned to the
// given coach, newest first.
func (c *Client) ListSessionsForCoach(ctx context.Context, coachID uint) ([]Session, error) {
	var sessions []Session
	if err := c.db.WithContext(ctx).
		Preload("Runner").
		Joins("JOIN users ON users.id = sessions.runner_id").
		Where("users.coach_id = ?", coachID).
		Order("sessions.created_at DESC").
		Find(&sessions).Error; err != nil {
		log.Error("failed to list sessions for coach", "error", err)
		return nil, err
	}
	return sessions, nil
}

// ListAllSessions returns every session, newest first.
func (c *Client) ListAllSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.db.WithContext(ctx).
		Preload("Runner").
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		log.Error("failed to list sessions", "error", err)
		return nil, err
	}
	return sessions, nil
}

// DeleteSession removes a session and all child sample and video rows.
func (c *Client) DeleteSession(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&PerformanceSample{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&VideoMetadata{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&Session{}, id).Error
	})
}

// RunnerStatistics holds aggregated statistics across a runner's sessions.
type RunnerStatistics struct {
	TotalSessions   int64
	BestMaxVelocity float64
	AvgVelocity     float64
	BestTime        float64
	AvgTime         float64
	Trend           []TrendPoint
}

// TrendPoint is one session's headline numbers, for trend charts.
type TrendPoint struct {
	Date        time.Time
	MaxVelocity float64
	AvgVelocity float64
	TotalTime   float64
}

// GetRunnerStatistics computes overall statistics and the recent trend for
// a runner.
func (c *Client) GetRunnerStatistics(ctx context.Context, runnerID uint) (*RunnerStatistics, error) {
	var stats RunnerStatistics

	row := c.db.WithContext(ctx).
		Model(&Session{}).
		Select("COUNT(*), COALESCE(MAX(max_velocity), 0), COALESCE(AVG(avg_velocity), 0), COALESCE(MIN(total_time), 0), COALESCE(AVG(total_time), 0)").
		Where("runner_id = ?", runnerID).
		Row()
	if err := row.Scan(&stats.TotalSessions, &stats.BestMaxVelocity, &stats.AvgVelocity, &stats.BestTime, &stats.AvgTime); err != nil {
		log.Error("failed to get runner statistics", "error", err)
		return nil, err
	}

	var recent []Session
	if err := c.db.WithContext(ctx).
		Where("runner_id = ?", runnerID).
		Order("created_at DESC").
		Limit(20).
		Find(&recent).Error; err != nil {
		log.Error("failed to get runner trend", "error", err)
		return nil, err
	}
	for _, s := range recent {
		stats.Trend = append(stats.Trend, TrendPoint{
			Date:        s.CreatedAt,
			MaxVelocity: s.MaxVelocity,
			AvgVelocity: s.AvgVelocity,
			TotalTime:   s.TotalTime,
		})
	}

	return &stats, nil
}
