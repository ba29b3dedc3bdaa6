// Package models holds the JSON view models served by the API.
package models

import (
	"time"
)

// User is the session-scoped identity attached to every authenticated
// request.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	CoachID  *uint  `json:"coachId,omitempty"`
}

// IsAdmin reports whether the user may manage accounts.
func (u *User) IsAdmin() bool { return u.Role == "admin" }

// IsCoach reports whether the user may view their runners' sessions.
func (u *User) IsCoach() bool { return u.Role == "coach" }

// UserDetail is the account listing entry for the admin pages.
type UserDetail struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CoachID   *uint     `json:"coachId,omitempty"`
	CoachName string    `json:"coachName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionItem is one row in a session listing.
type SessionItem struct {
	ID            uint      `json:"id"`
	RunnerID      uint      `json:"runnerId"`
	RunnerName    string    `json:"runnerName"`
	Date          time.Time `json:"date"`
	DateRelative  string    `json:"dateRelative"`
	TotalDistance float64   `json:"totalDistance"`
	MaxVelocity   float64   `json:"maxVelocity"`
	AvgVelocity   float64   `json:"avgVelocity"`
	TotalTime     float64   `json:"totalTime"`
}

// SegmentDetail is the per-segment breakdown inside a session detail view.
type SegmentDetail struct {
	Segment  string  `json:"segment"`
	MaxSpeed float64 `json:"maxSpeed"`
	AvgSpeed float64 `json:"avgSpeed"`
	Duration float64 `json:"duration"`
	Distance float64 `json:"distance"`
}

// VideoDetail describes one stored segment video.
type VideoDetail struct {
	Segment    string    `json:"segment"`
	FileName   string    `json:"fileName"`
	FileSize   string    `json:"fileSize"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// SessionDetail is the full session view including the per-segment
// breakdown, videos, recommendations and the comparison against the
// runner's previous session.
type SessionDetail struct {
	SessionItem
	Segments        []SegmentDetail  `json:"segments"`
	Videos          []VideoDetail    `json:"videos"`
	Recommendations []Recommendation `json:"recommendations"`
	Comparison      *Comparison      `json:"comparison,omitempty"`
}

// Comparison describes how a session stacks up against the runner's
// previous one. Absent on a runner's first session.
type Comparison struct {
	MaxVelocityChange float64  `json:"maxVelocityChange"`
	AvgVelocityChange float64  `json:"avgVelocityChange"`
	TimeChange        float64  `json:"timeChange"`
	Improvements      []string `json:"improvements,omitempty"`
	Regressions       []string `json:"regressions,omitempty"`
}

// Recommendation is one derived training hint.
type Recommendation struct {
	Category string `json:"category"`
	Issue    string `json:"issue"`
	Advice   string `json:"advice"`
}

// UploadStatus reports which segments a runner has staged and whether the
// session can be completed.
type UploadStatus struct {
	Segments map[string]bool `json:"segments"`
	Complete bool            `json:"complete"`
}

// TrendPoint is one session's headline numbers for the trend chart API.
type TrendPoint struct {
	Date        time.Time `json:"date"`
	MaxVelocity float64   `json:"maxVelocity"`
	AvgVelocity float64   `json:"avgVelocity"`
	TotalTime   float64   `json:"totalTime"`
}

// RunnerStatistics summarizes a runner's history.
type RunnerStatistics struct {
	TotalSessions   int64        `json:"totalSessions"`
	BestMaxVelocity float64      `json:"bestMaxVelocity"`
	AvgVelocity     float64      `json:"avgVelocity"`
	BestTime        float64      `json:"bestTime"`
	AvgTime         float64      `json:"avgTime"`
	Trend           []TrendPoint `json:"trend"`
}
