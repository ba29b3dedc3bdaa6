package engine

import (
	"context"
	"os"
	"strings"
)

func (suite *EngineTestSuite) stageAllSegments(runnerID uint) {
	ctx := context.Background()
	for _, label := range []string{"0-25m", "25-50m", "50-75m", "75-100m"} {
		_, err := suite.engine.IngestVideo(ctx, runnerID, label, Upload{
			FileName: label + ".mp4",
			Size:     11,
			Content:  strings.NewReader("video bytes"),
		})
		suite.Require().NoError(err)
	}
}

func (suite *EngineTestSuite) TestIngestVideo() {
	runner := suite.createRunner("runner", nil)
	ctx := context.Background()

	staged, err := suite.engine.IngestVideo(ctx, runner.ID, "0-25m", Upload{
		FileName: "start.mp4",
		Size:     11,
		Content:  strings.NewReader("video bytes"),
	})
	suite.Require().NoError(err)
	suite.Equal("0-25m", staged.Segment)
	suite.Equal("start.mp4", staged.FileName)
	suite.Equal(int64(11), staged.FileSize)

	// The file landed in the uploads directory.
	content, err := os.ReadFile(staged.StoragePath)
	suite.Require().NoError(err)
	suite.Equal("video bytes", string(content))

	state, err := suite.engine.UploadState(ctx, runner.ID)
	suite.Require().NoError(err)
	suite.True(state["0-25m"])
	suite.False(state["25-50m"])
}

func (suite *EngineTestSuite) TestIngestVideo_ReplacesFile() {
	runner := suite.createRunner("runner", nil)
	ctx := context.Background()

	first, err := suite.engine.IngestVideo(ctx, runner.ID, "0-25m", Upload{
		FileName: "first.mp4",
		Size:     5,
		Content:  strings.NewReader("first"),
	})
	suite.Require().NoError(err)

	second, err := suite.engine.IngestVideo(ctx, runner.ID, "0-25m", Upload{
		FileName: "second.mp4",
		Size:     6,
		Content:  strings.NewReader("second"),
	})
	suite.Require().NoError(err)

	// The replaced file is gone, the new one is staged.
	_, err = os.Stat(first.StoragePath)
	suite.True(os.IsNotExist(err))
	_, err = os.Stat(second.StoragePath)
	suite.NoError(err)

	state, err := suite.engine.UploadState(ctx, runner.ID)
	suite.Require().NoError(err)
	suite.True(state["0-25m"])
}

func (suite *EngineTestSuite) TestIngestVideo_Validation() {
	runner := suite.createRunner("runner", nil)
	ctx := context.Background()

	_, err := suite.engine.IngestVideo(ctx, runner.ID, "0-30m", Upload{
		FileName: "video.mp4",
		Size:     5,
		Content:  strings.NewReader("bytes"),
	})
	suite.Error(err)

	_, err = suite.engine.IngestVideo(ctx, runner.ID, "0-25m", Upload{
		FileName: "video.mkv",
		Size:     5,
		Content:  strings.NewReader("bytes"),
	})
	suite.ErrorIs(err, ErrUnsupportedFormat)

	_, err = suite.engine.IngestVideo(ctx, runner.ID, "0-25m", Upload{
		FileName: "video.mp4",
		Size:     suite.cfg.Uploads.MaxSize + 1,
		Content:  strings.NewReader("bytes"),
	})
	suite.ErrorIs(err, ErrUploadTooLarge)

	// Oversized streams are caught even when the declared size lies.
	_, err = suite.engine.IngestVideo(ctx, runner.ID, "0-25m", Upload{
		FileName: "video.mp4",
		Size:     10,
		Content:  strings.NewReader(strings.Repeat("x", int(suite.cfg.Uploads.MaxSize)+10)),
	})
	suite.ErrorIs(err, ErrUploadTooLarge)
}

func (suite *EngineTestSuite) TestDiscardUploads() {
	runner := suite.createRunner("runner", nil)
	ctx := context.Background()

	suite.stageAllSegments(runner.ID)

	staged, err := suite.db.StagedUploads(ctx, runner.ID)
	suite.Require().NoError(err)
	suite.Require().Len(staged, 4)
	paths := make([]string, 0, len(staged))
	for _, u := range staged {
		paths = append(paths, u.StoragePath)
	}

	suite.Require().NoError(suite.engine.DiscardUploads(ctx, runner.ID))

	for _, path := range paths {
		_, err := os.Stat(path)
		suite.True(os.IsNotExist(err))
	}

	state, err := suite.engine.UploadState(ctx, runner.ID)
	suite.Require().NoError(err)
	for _, stagedSegment := range state {
		suite.False(stagedSegment)
	}
}
