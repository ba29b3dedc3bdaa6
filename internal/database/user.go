package database

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Role is the access level of a user account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCoach  Role = "coach"
	RoleRunner Role = "runner"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCoach, RoleRunner:
		return Role(s), nil
	}
	return "", errors.New("invalid role: " + s)
}

// User represents a user account. Runners may reference the coach they are
// assigned to; the reference must point to a user with the coach role.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Email        string
	Role         Role  `gorm:"not null"`
	CoachID      *uint `gorm:"index"`
	Coach        *User `gorm:"foreignKey:CoachID"`
}

// HashPassword returns the hex-encoded SHA-256 digest of the password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CreateUser creates a new user account. For runners with a coach reference
// the referenced user must exist and hold the coach role.
func (c *Client) CreateUser(ctx context.Context, username, password, email string, role Role, coachID *uint) (*User, error) {
	if _, err := c.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if coachID != nil {
		if role != RoleRunner {
			return nil, ErrNotACoach
		}
		coach, err := c.GetUserByID(ctx, *coachID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotACoach
			}
			return nil, err
		}
		if coach.Role != RoleCoach {
			return nil, ErrNotACoach
		}
	}

	user := User{
		Username:     username,
		PasswordHash: HashPassword(password),
		Email:        email,
		Role:         role,
		CoachID:      coachID,
	}
	if err := c.db.WithContext(ctx).Create(&user).Error; err != nil {
		log.Error("failed to create user", "error", err)
		return nil, err
	}
	return &user, nil
}

// Authenticate checks the credentials against the users table and returns
// the matching user. There is no lockout on repeated failures.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := c.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	hash := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(user.PasswordHash)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by ID", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by username", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).Preload("Coach").Order("created_at DESC").Find(&users).Error; err != nil {
		log.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

// ListCoaches returns all users with the coach role.
func (c *Client) ListCoaches(ctx context.Context) ([]User, error) {
	var coaches []User
	if err := c.db.WithContext(ctx).Where("role = ?", RoleCoach).Order("username").Find(&coaches).Error; err != nil {
		log.Error("failed to list coaches", "error", err)
		return nil, err
	}
	return coaches, nil
}

// ListRunnersForCoach returns all runners assigned to the given coach.
func (c *Client) ListRunnersForCoach(ctx context.Context, coachID uint) ([]User, error) {
	var runners []User
	if err := c.db.WithContext(ctx).
		Where("coach_id = ? AND role = ?", coachID, RoleRunner).
		Order("username").
		Find(&runners).Error; err != nil {
		log.Error("failed to list runners for coach", "error", err)
		return nil, err
	}
	return runners, nil
}

// AssignCoach updates the coach reference of a runner. A nil coachID clears
// the assignment.
func (c *Client) AssignCoach(ctx context.Context, runnerID uint, coachID *uint) error {
	runner, err := c.GetUserByID(ctx, runnerID)
	if err != nil {
		return err
	}
	if runner.Role != RoleRunner {
		return errors.New("coach can only be assigned to a runner")
	}
	if coachID != nil {
		coach, err := c.GetUserByID(ctx, *coachID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotACoach
			}
			return err
		}
		if coach.Role != RoleCoach {
			return ErrNotACoach
		}
	}
	if err := c.db.WithContext(ctx).Model(runner).Update("coach_id", coachID).Error; err != nil {
		log.Error("failed to assign coach", "error", err)
		return err
	}
	return nil
}

// UpdateUserPassword replaces the stored password hash.
func (c *Client) UpdateUserPassword(ctx context.Context, userID uint, newPassword string) error {
	if err := c.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", userID).
		Update("password_hash", HashPassword(newPassword)).Error; err != nil {
		log.Error("failed to update user password", "error", err)
		return err
	}
	return nil
}

// DeleteUser removes a user account. Runners assigned to a deleted coach
// keep their sessions but lose the coach reference.
func (c *Client) DeleteUser(ctx context.Context, userID uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Where("coach_id = ?", userID).Update("coach_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&User{}, userID).Error
	})
}
