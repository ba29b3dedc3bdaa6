package engine

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/strideworks/sprintline/internal/analysis"
	"github.com/strideworks/sprintline/internal/database"
	"github.com/strideworks/sprintline/internal/notify/email"
)

// CompleteSession turns a runner's four staged uploads into a persisted
// session: it synthesizes the per-segment series, aggregates them into the
// session summary and stores everything atomically. The staged uploads are
// consumed in the same transaction.
func (e *Engine) CompleteSession(ctx context.Context, runnerID uint) (*database.Session, error) {
	runner, err := e.db.GetUserByID(ctx, runnerID)
	if err != nil {
		return nil, err
	}

	staged, err := e.db.StagedUploads(ctx, runnerID)
	if err != nil {
		return nil, err
	}
	bySegment := make(map[string]database.PendingUpload, len(staged))
	for _, u := range staged {
		bySegment[u.Segment] = u
	}
	if len(bySegment) < len(analysis.Segments) {
		return nil, database.ErrIncompleteSession
	}

	series := make([]analysis.Series, 0, len(analysis.Segments))
	for _, segment := range analysis.Segments {
		s, err := e.synth.Synthesize(segment.String(), e.assumedSpeed(segment))
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	summary := analysis.Aggregate(series)

	results := database.SessionResults{
		TotalDistance: summary.TotalDistance,
		MaxVelocity:   summary.MaxVelocity,
		AvgVelocity:   summary.AvgVelocity,
		TotalTime:     summary.TotalTime,
	}
	for _, s := range series {
		for i, sample := range s.Samples {
			results.Samples = append(results.Samples, database.PerformanceSample{
				Segment:  s.Segment.String(),
				SeqNo:    i,
				Offset:   sample.Time,
				Position: sample.Position,
				Velocity: sample.Velocity,
			})
		}
	}
	for _, segment := range analysis.Segments {
		upload := bySegment[segment.String()]
		results.Videos = append(results.Videos, database.VideoMetadata{
			Segment:     upload.Segment,
			FileName:    upload.FileName,
			StoragePath: upload.StoragePath,
			FileSize:    upload.FileSize,
			UploadedAt:  upload.UploadedAt,
		})
	}

	session, err := e.db.CreateSessionWithResults(ctx, runnerID, runner.CoachID, results)
	if err != nil {
		return nil, err
	}

	log.Info("session completed",
		"runner", runner.Username,
		"session", session.ID,
		"total_time", summary.TotalTime,
		"max_velocity", summary.MaxVelocity)

	e.notifyCoach(ctx, runner, session)

	return session, nil
}

// notifyCoach emails the runner's coach about the new session, if a coach is
// assigned and email notifications are configured.
func (e *Engine) notifyCoach(ctx context.Context, runner *database.User, session *database.Session) {
	if runner.CoachID == nil {
		return
	}
	coach, err := e.db.GetUserByID(ctx, *runner.CoachID)
	if err != nil {
		log.Warn("failed to load coach for notification", "error", err)
		return
	}
	notification := email.SessionNotification{
		CoachEmail:    coach.Email,
		CoachName:     coach.Username,
		RunnerName:    runner.Username,
		SessionDate:   time.Now(),
		TotalTime:     session.TotalTime,
		MaxVelocity:   session.MaxVelocity,
		AvgVelocity:   session.AvgVelocity,
		TotalDistance: session.TotalDistance,
	}
	if err := e.notifier.SendSessionCompleted(notification); err != nil {
		log.Error("failed to send session notification", "coach", coach.Username, "error", err)
	}
}

// SeriesForSession regroups stored samples into per-segment series, for
// chart rendering and export.
func SeriesForSession(session *database.Session) []analysis.Series {
	grouped := make(map[string][]analysis.Sample)
	for _, sample := range session.Samples {
		grouped[sample.Segment] = append(grouped[sample.Segment], analysis.Sample{
			Time:     sample.Offset,
			Position: sample.Position,
			Velocity: sample.Velocity,
		})
	}
	var series []analysis.Series
	for _, segment := range analysis.Segments {
		if samples, ok := grouped[segment.String()]; ok {
			series = append(series, analysis.Series{Segment: segment, Samples: samples})
		}
	}
	return series
}

// DeleteSession removes a session with its samples and video metadata, and
// best-effort deletes the video files from disk.
func (e *Engine) DeleteSession(ctx context.Context, sessionID uint) error {
	session, err := e.db.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := e.db.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	for _, video := range session.Videos {
		if err := os.Remove(video.StoragePath); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove session video file", "path", video.StoragePath, "error", err)
		}
	}
	log.Info("session deleted", "session", sessionID, "runner", session.RunnerID)
	return nil
}
