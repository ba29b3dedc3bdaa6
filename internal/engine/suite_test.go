package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/strideworks/sprintline/internal/config"
	"github.com/strideworks/sprintline/internal/database"
)

// EngineTestSuite covers the upload-to-session flow against a real sqlite
// database.
type EngineTestSuite struct {
	suite.Suite
	engine *Engine
	db     *database.Client
	cfg    *config.Config
}

func (suite *EngineTestSuite) SetupTest() {
	dir := suite.T().TempDir()

	suite.cfg = &config.Config{
		Listen:     "127.0.0.1:0",
		SessionKey: "test-session-key",
		Database:   &config.DatabaseConfig{Path: filepath.Join(dir, "test.db")},
		Uploads: &config.UploadConfig{
			Dir:               filepath.Join(dir, "uploads"),
			MaxSize:           1 << 20,
			AllowedExtensions: []string{".mp4", ".avi", ".mov"},
			RetentionHours:    24,
			CleanupInterval:   6,
		},
		Analysis: &config.AnalysisConfig{
			SampleRate: 30,
			AssumedSpeeds: map[string]float64{
				"0-25m":   6.5,
				"25-50m":  8.5,
				"50-75m":  8.3,
				"75-100m": 7.9,
			},
			VelocityJitter: 0.15,
		},
		Admin: &config.AdminConfig{Username: "admin", Password: "admin123"},
		Email: &config.EmailConfig{Enabled: false},
	}

	db, err := database.New(suite.cfg.Database.Path)
	suite.Require().NoError(err)
	suite.db = db

	engine, err := New(suite.cfg, db, true)
	suite.Require().NoError(err)
	suite.engine = engine
}

func (suite *EngineTestSuite) TearDownTest() {
	if suite.db != nil {
		_ = suite.db.Close()
	}
}

func (suite *EngineTestSuite) createRunner(username string, coachID *uint) *database.User {
	runner, err := suite.db.CreateUser(context.Background(), username, "secret123", username+"@example.com", database.RoleRunner, coachID)
	suite.Require().NoError(err)
	return runner
}

// TestAdminSeeding verifies that the default admin account exists after the
// first run.
func (suite *EngineTestSuite) TestAdminSeeding() {
	admin, err := suite.db.GetUserByUsername(context.Background(), "admin")
	suite.Require().NoError(err)
	suite.Equal(database.RoleAdmin, admin.Role)

	// Creating the engine again against the same database must not fail.
	_, err = New(suite.cfg, suite.db, true)
	suite.NoError(err)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
