package models

import (
	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
	"github.com/samber/lo"

	"github.com/strideworks/sprintline/internal/analysis"
	"github.com/strideworks/sprintline/internal/database"
)

// ToUser converts a database user to the session identity model.
func ToUser(u *database.User) *User {
	return &User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
		CoachID:  u.CoachID,
	}
}

// ToUserDetail converts a database user to the admin listing entry.
func ToUserDetail(u database.User) UserDetail {
	detail := UserDetail{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CoachID:   u.CoachID,
		CreatedAt: u.CreatedAt,
	}
	if u.Coach != nil {
		detail.CoachName = u.Coach.Username
	}
	return detail
}

// ToUserDetails converts a slice of database users.
func ToUserDetails(users []database.User) []UserDetail {
	return lo.Map(users, func(u database.User, _ int) UserDetail {
		return ToUserDetail(u)
	})
}

// ToSessionItem converts a database session to a listing row.
func ToSessionItem(s database.Session) SessionItem {
	item := SessionItem{
		ID:            s.ID,
		RunnerID:      s.RunnerID,
		Date:          s.CreatedAt,
		DateRelative:  timediff.TimeDiff(s.CreatedAt),
		TotalDistance: s.TotalDistance,
		MaxVelocity:   s.MaxVelocity,
		AvgVelocity:   s.AvgVelocity,
		TotalTime:     s.TotalTime,
	}
	if s.Runner.ID != 0 {
		item.RunnerName = s.Runner.Username
	}
	return item
}

// ToSessionItems converts a slice of database sessions.
func ToSessionItems(sessions []database.Session) []SessionItem {
	return lo.Map(sessions, func(s database.Session, _ int) SessionItem {
		return ToSessionItem(s)
	})
}

// ToSessionDetail builds the full session view from the stored session and
// its regrouped per-segment series.
func ToSessionDetail(s *database.Session, series []analysis.Series) SessionDetail {
	detail := SessionDetail{SessionItem: ToSessionItem(*s)}

	segments := make([]analysis.SegmentSummary, 0, len(series))
	for _, sr := range series {
		segments = append(segments, analysis.SummarizeSegment(sr))
	}
	detail.Segments = lo.Map(segments, func(sum analysis.SegmentSummary, _ int) SegmentDetail {
		return SegmentDetail{
			Segment:  sum.Segment.String(),
			MaxSpeed: sum.MaxSpeed,
			AvgSpeed: sum.AvgSpeed,
			Duration: sum.Duration,
			Distance: sum.Distance,
		}
	})

	detail.Videos = lo.Map(s.Videos, func(v database.VideoMetadata, _ int) VideoDetail {
		return VideoDetail{
			Segment:    v.Segment,
			FileName:   v.FileName,
			FileSize:   humanize.Bytes(uint64(v.FileSize)), //nolint:gosec
			UploadedAt: v.UploadedAt,
		}
	})

	summary := analysis.Aggregate(series)
	detail.Recommendations = lo.Map(
		analysis.Recommendations(summary, segments),
		func(r analysis.Recommendation, _ int) Recommendation {
			return Recommendation{Category: r.Category, Issue: r.Issue, Advice: r.Advice}
		})

	return detail
}

// ToComparison converts the analysis comparison for the detail view.
func ToComparison(c analysis.Comparison) *Comparison {
	return &Comparison{
		MaxVelocityChange: c.MaxVelocityChange,
		AvgVelocityChange: c.AvgVelocityChange,
		TimeChange:        c.TimeChange,
		Improvements:      c.Improvements,
		Regressions:       c.Regressions,
	}
}

// ToRunnerStatistics converts the database statistics bundle.
func ToRunnerStatistics(s *database.RunnerStatistics) RunnerStatistics {
	return RunnerStatistics{
		TotalSessions:   s.TotalSessions,
		BestMaxVelocity: s.BestMaxVelocity,
		AvgVelocity:     s.AvgVelocity,
		BestTime:        s.BestTime,
		AvgTime:         s.AvgTime,
		Trend: lo.Map(s.Trend, func(p database.TrendPoint, _ int) TrendPoint {
			return TrendPoint{
				Date:        p.Date,
				MaxVelocity: p.MaxVelocity,
				AvgVelocity: p.AvgVelocity,
				TotalTime:   p.TotalTime,
			}
		}),
	}
}
