package engine

import (
	"context"
	"strings"

	"github.com/strideworks/sprintline/internal/analysis"
	"github.com/strideworks/sprintline/internal/database"
)

func (suite *EngineTestSuite) TestCompleteSession_RequiresAllSegments() {
	runner := suite.createRunner("runner", nil)
	ctx := context.Background()

	_, err := suite.engine.CompleteSession(ctx, runner.ID)
	suite.ErrorIs(err, database.ErrIncompleteSession)

	_, err = suite.engine.IngestVideo(ctx, runner.ID, "0-25m", Upload{
		FileName: "start.mp4",
		Size:     5,
		Content:  strings.NewReader("bytes"),
	})
	suite.Require().NoError(err)

	_, err = suite.engine.CompleteSession(ctx, runner.ID)
	suite.ErrorIs(err, database.ErrIncompleteSession)

	// No session row leaked out of the failed attempts.
	sessions, err := suite.db.ListSessionsForRunner(ctx, runner.ID, 0)
	suite.Require().NoError(err)
	suite.Empty(sessions)
}

func (suite *EngineTestSuite) TestCompleteSession() {
	coach, err := suite.db.CreateUser(context.Background(), "coach", "secret123", "", database.RoleCoach, nil)
	suite.Require().NoError(err)
	runner := suite.createRunner("runner", &coach.ID)
	ctx := context.Background()

	suite.stageAllSegments(runner.ID)

	session, err := suite.engine.CompleteSession(ctx, runner.ID)
	suite.Require().NoError(err)
	suite.NotZero(session.ID)
	suite.Require().NotNil(session.CoachID)
	suite.Equal(coach.ID, *session.CoachID)

	// The aggregates are consistent with the stored samples.
	suite.InDelta(analysis.TrackLength, session.TotalDistance, 1e-9)
	suite.Greater(session.MaxVelocity, session.AvgVelocity)
	suite.Greater(session.TotalTime, 0.0)

	stored, err := suite.db.GetSession(ctx, session.ID)
	suite.Require().NoError(err)
	suite.Len(stored.Videos, 4)
	suite.NotEmpty(stored.Samples)

	maxVelocity := 0.0
	for _, sample := range stored.Samples {
		if sample.Velocity > maxVelocity {
			maxVelocity = sample.Velocity
		}
	}
	suite.InDelta(session.MaxVelocity, maxVelocity, 1e-9)

	// The staging area is consumed.
	state, err := suite.engine.UploadState(ctx, runner.ID)
	suite.Require().NoError(err)
	for _, staged := range state {
		suite.False(staged)
	}
}

func (suite *EngineTestSuite) TestSeriesForSession() {
	runner := suite.createRunner("runner", nil)
	ctx := context.Background()

	suite.stageAllSegments(runner.ID)
	session, err := suite.engine.CompleteSession(ctx, runner.ID)
	suite.Require().NoError(err)

	stored, err := suite.db.GetSession(ctx, session.ID)
	suite.Require().NoError(err)

	series := SeriesForSession(stored)
	suite.Require().Len(series, 4)
	for i, s := range series {
		suite.Equal(analysis.Segments[i], s.Segment)
		suite.InDelta(analysis.SegmentLength, s.FinalPosition(), 1e-9)
	}

	// Round-tripping through the database preserves the aggregates.
	summary := analysis.Aggregate(series)
	suite.InDelta(session.TotalDistance, summary.TotalDistance, 1e-9)
	suite.InDelta(session.MaxVelocity, summary.MaxVelocity, 1e-9)
	suite.InDelta(session.AvgVelocity, summary.AvgVelocity, 1e-9)
	suite.InDelta(session.TotalTime, summary.TotalTime, 1e-9)
}

func (suite *EngineTestSuite) TestDeleteSession_RemovesVideoFiles() {
	runner := suite.createRunner("runner", nil)
	ctx := context.Background()

	suite.stageAllSegments(runner.ID)
	session, err := suite.engine.CompleteSession(ctx, runner.ID)
	suite.Require().NoError(err)

	stored, err := suite.db.GetSession(ctx, session.ID)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.engine.DeleteSession(ctx, session.ID))

	for _, video := range stored.Videos {
		suite.NoFileExists(video.StoragePath)
	}

	sessions, err := suite.db.ListSessionsForRunner(ctx, runner.ID, 0)
	suite.Require().NoError(err)
	suite.Empty(sessions)
}
