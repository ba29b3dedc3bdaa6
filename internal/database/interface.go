package database

import (
	"context"
	"time"
)

// DB is the persistence interface used by the engine and the API handlers.
type DB interface {
	Close() error
	GetStats(ctx context.Context) (*Stats, error)

	// Users
	CreateUser(ctx context.Context, username, password, email string, role Role, coachID *uint) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListCoaches(ctx context.Context) ([]User, error)
	ListRunnersForCoach(ctx context.Context, coachID uint) ([]User, error)
	AssignCoach(ctx context.Context, runnerID uint, coachID *uint) error
	UpdateUserPassword(ctx context.Context, userID uint, newPassword string) error
	DeleteUser(ctx context.Context, userID uint) error

	// Sessions
	CreateSessionWithResults(ctx context.Context, runnerID uint, coachID *uint, results SessionResults) (*Session, error)
	GetSession(ctx context.Context, id uint) (*Session, error)
	GetPreviousSession(ctx context.Context, runnerID, beforeID uint) (*Session, error)
	ListSessionsForRunner(ctx context.Context, runnerID uint, limit int) ([]Session, error)
	ListSessionsForCoach(ctx context.Context, coachID uint) ([]Session, error)
	ListAllSessions(ctx context.Context) ([]Session, error)
	DeleteSession(ctx context.Context, id uint) error
	GetRunnerStatistics(ctx context.Context, runnerID uint) (*RunnerStatistics, error)

	// Staged uploads
	StageUpload(ctx context.Context, upload PendingUpload) (previousPath string, err error)
	StagedUploads(ctx context.Context, runnerID uint) ([]PendingUpload, error)
	DeleteStagedUploads(ctx context.Context, runnerID uint) ([]string, error)
	StaleStagedUploads(ctx context.Context, olderThan time.Time) ([]PendingUpload, error)
}
