package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var segmentLabels = []string{"0-25m", "25-50m", "50-75m", "75-100m"}

func testResults() SessionResults {
	results := SessionResults{
		TotalDistance: 100,
		MaxVelocity:   9.4,
		AvgVelocity:   8.1,
		TotalTime:     12.3,
	}
	for _, segment := range segmentLabels {
		for seq := range 3 {
			results.Samples = append(results.Samples, PerformanceSample{
				Segment:  segment,
				SeqNo:    seq,
				Offset:   float64(seq) * 0.5,
				Position: float64(seq) * 12.5,
				Velocity: 8 + float64(seq)*0.5,
			})
		}
		results.Videos = append(results.Videos, VideoMetadata{
			Segment:     segment,
			FileName:    segment + ".mp4",
			StoragePath: "/tmp/" + segment + ".mp4",
			FileSize:    1024,
			UploadedAt:  time.Now(),
		})
	}
	return results
}

func TestCreateSessionWithResults(t *testing.T) {
	db := newTestClient(t)
	ctx := context.Background()

	coach, err := db.CreateUser(ctx, "coach", "secret123", "", RoleCoach, nil)
	require.NoError(t, err)
	runner, err := db.CreateUser(ctx, "runner", "secret123", "", RoleRunner, &coach.ID)
	require.NoError(t, err)

	// Staged uploads are consumed by the session creation.
	for _, segment := range segmentLabels {
		_, err := db.StageUpload(ctx, PendingUpload{
			RunnerID:    runner.ID,
			Segment:     segment,
			FileName:    segment + ".mp4",
			StoragePath: "/tmp/" + segment + ".mp4",
			UploadedAt:  time.Now(),
		})
		require.NoError(t, err)
	}

	session, err := db.CreateSessionWithResults(ctx, runner.ID, runner.CoachID, testResults())
	require.NoError(t, err)
	require.NotZero(t, session.ID)

	got, err := db.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, runner.ID, got.RunnerID)
	require.NotNil(t, got.CoachID)
	assert.Equal(t, coach.ID, *got.CoachID)
	assert.Equal(t, "runner", got.Runner.Username)
	assert.Len(t, got.Samples, 12)
	assert.Len(t, got.Videos, 4)
	assert.Equal(t, 9.4, got.MaxVelocity)

	// Samples come back ordered per segment.
	for i := 1; i < len(got.Samples); i++ {
		prev, cur := got.Samples[i-1], got.Samples[i]
		if prev.Segment == cur.Segment {
			assert.Greater(t, cur.SeqNo, prev.SeqNo)
		}
	}

	staged, err := db.StagedUploads(ctx, runner.ID)
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestGetPreviousSession(t *testing.T) {
	db := newTestClient(t)
	ctx := context.Background()

	runner, err := db.CreateUser(ctx, "runner", "secret123", "", RoleRunner, nil)
	require.NoError(t, err)
	other, err := db.CreateUser(ctx, "other", "secret123", "", RoleRunner, nil)
	require.NoError(t, err)

	first, err := db.CreateSessionWithResults(ctx, runner.ID, nil, SessionResults{TotalTime: 13.0})
	require.NoError(t, err)

	// A first session has nothing to compare against.
	_, err = db.GetPreviousSession(ctx, runner.ID, first.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Another runner's sessions never count as previous.
	_, err = db.CreateSessionWithResults(ctx, other.ID, nil, SessionResults{TotalTime: 11.0})
	require.NoError(t, err)

	second, err := db.CreateSessionWithResults(ctx, runner.ID, nil, SessionResults{TotalTime: 12.5})
	require.NoError(t, err)

	previous, err := db.GetPreviousSession(ctx, runner.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, previous.ID)
	assert.Equal(t, 13.0, previous.TotalTime)
}

func TestDeleteSession_RemovesChildren(t *testing.T) {
	db := newTestClient(t)
	ctx := context.Background()

	runner, err := db.CreateUser(ctx, "runner", "secret123", "", RoleRunner, nil)
	require.NoError(t, err)

	session, err := db.CreateSessionWithResults(ctx, runner.ID, nil, testResults())
	require.NoError(t, err)

	require.NoError(t, db.DeleteSession(ctx, session.ID))

	_, err = db.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var samples int64
	require.NoError(t, db.db.Model(&PerformanceSample{}).Where("session_id = ?", session.ID).Count(&samples).Error)
	assert.Zero(t, samples)

	var videos int64
	require.NoError(t, db.db.Model(&VideoMetadata{}).Where("session_id = ?", session.ID).Count(&videos).Error)
	assert.Zero(t, videos)
}

func TestListSessions_Scoping(t *testing.T) {
	db := newTestClient(t)
	ctx := context.Background()

	coach, err := db.CreateUser(ctx, "coach", "secret123", "", RoleCoach, nil)
	require.NoError(t, err)
	mine, err := db.CreateUser(ctx, "mine", "secret123", "", RoleRunner, &coach.ID)
	require.NoError(t, err)
	other, err := db.CreateUser(ctx, "other", "secret123", "", RoleRunner, nil)
	require.NoError(t, err)

	for i, runner := range []*User{mine, mine, other} {
		_, err := db.CreateSessionWithResults(ctx, runner.ID, runner.CoachID, SessionResults{
			TotalDistance: 100,
			TotalTime:     12 + float64(i),
		})
		require.NoError(t, err)
	}

	forRunner, err := db.ListSessionsForRunner(ctx, mine.ID, 0)
	require.NoError(t, err)
	assert.Len(t, forRunner, 2)

	limited, err := db.ListSessionsForRunner(ctx, mine.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	forCoach, err := db.ListSessionsForCoach(ctx, coach.ID)
	require.NoError(t, err)
	assert.Len(t, forCoach, 2)
	for _, s := range forCoach {
		assert.Equal(t, mine.ID, s.RunnerID)
	}

	all, err := db.ListAllSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetRunnerStatistics(t *testing.T) {
	db := newTestClient(t)
	ctx := context.Background()

	runner, err := db.CreateUser(ctx, "runner", "secret123", "", RoleRunner, nil)
	require.NoError(t, err)

	stats, err := db.GetRunnerStatistics(ctx, runner.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSessions)

	times := []float64{13.0, 12.4, 12.8}
	maxes := []float64{9.0, 9.6, 9.2}
	for i := range times {
		_, err := db.CreateSessionWithResults(ctx, runner.ID, nil, SessionResults{
			TotalDistance: 100,
			MaxVelocity:   maxes[i],
			AvgVelocity:   8,
			TotalTime:     times[i],
		})
		require.NoError(t, err)
	}

	stats, err = db.GetRunnerStatistics(ctx, runner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSessions)
	assert.Equal(t, 9.6, stats.BestMaxVelocity)
	assert.Equal(t, 12.4, stats.BestTime)
	assert.InDelta(t, (13.0+12.4+12.8)/3, stats.AvgTime, 1e-9)
	assert.Len(t, stats.Trend, 3)
}

func TestGetStats(t *testing.T) {
	db := newTestClient(t)
	ctx := context.Background()

	for i, role := range []Role{RoleAdmin, RoleCoach, RoleRunner, RoleRunner} {
		_, err := db.CreateUser(ctx, fmt.Sprintf("user%d", i), "secret123", "", role, nil)
		require.NoError(t, err)
	}

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Admins)
	assert.Equal(t, int64(1), stats.Coaches)
	assert.Equal(t, int64(2), stats.Runners)
	assert.Zero(t, stats.Sessions)
}
