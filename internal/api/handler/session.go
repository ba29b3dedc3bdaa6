package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/strideworks/sprintline/internal/analysis"
	"github.com/strideworks/sprintline/internal/api/models"
	"github.com/strideworks/sprintline/internal/charts"
	"github.com/strideworks/sprintline/internal/database"
	"github.com/strideworks/sprintline/internal/engine"
	"github.com/strideworks/sprintline/internal/report"
)

func idParam(c *gin.Context, name string) (uint, bool) {
	raw, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", name)})
		return 0, false
	}
	id, err := safecast.ToUint(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", name)})
		return 0, false
	}
	return id, true
}

// ListSessions returns the sessions visible to the caller: their own for
// runners, their runners' for coaches, everything for admins.
func (h *Handler) ListSessions(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	var (
		sessions []database.Session
		err      error
	)
	switch {
	case user.IsAdmin():
		sessions, err = h.engine.DB().ListAllSessions(ctx)
	case user.IsCoach():
		sessions, err = h.engine.DB().ListSessionsForCoach(ctx, user.ID)
	default:
		sessions, err = h.engine.DB().ListSessionsForRunner(ctx, user.ID, 0)
	}
	if err != nil {
		log.Error("failed to list sessions", "user", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": models.ToSessionItems(sessions)})
}

// loadSessionChecked loads the session from the :id path parameter and
// enforces the visibility rules. On failure it writes the error response and
// returns false.
func (h *Handler) loadSessionChecked(c *gin.Context, user *models.User) (*database.Session, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}

	session, err := h.engine.DB().GetSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return nil, false
		}
		log.Error("failed to load session", "session", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return nil, false
	}

	if !canViewSession(user, session) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return session, true
}

func canViewSession(user *models.User, session *database.Session) bool {
	switch {
	case user.IsAdmin():
		return true
	case user.IsCoach():
		return session.CoachID != nil && *session.CoachID == user.ID
	default:
		return session.RunnerID == user.ID
	}
}

// GetSession returns the full session detail view.
func (h *Handler) GetSession(c *gin.Context) {
	user := currentUser(c)

	session, ok := h.loadSessionChecked(c, user)
	if !ok {
		return
	}

	series := engine.SeriesForSession(session)
	detail := models.ToSessionDetail(session, series)

	previous, err := h.engine.DB().GetPreviousSession(c.Request.Context(), session.RunnerID, session.ID)
	switch {
	case err == nil:
		detail.Comparison = models.ToComparison(analysis.Compare(sessionSummary(session), sessionSummary(previous)))
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error("failed to load previous session", "session", session.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"session": detail})
}

func sessionSummary(s *database.Session) analysis.Summary {
	return analysis.Summary{
		TotalDistance: s.TotalDistance,
		MaxVelocity:   s.MaxVelocity,
		AvgVelocity:   s.AvgVelocity,
		TotalTime:     s.TotalTime,
	}
}

// DeleteSession removes a session. Completed sessions are immutable, only
// admins may delete them.
func (h *Handler) DeleteSession(c *gin.Context) {
	user := currentUser(c)

	session, ok := h.loadSessionChecked(c, user)
	if !ok {
		return
	}
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := h.engine.DeleteSession(c.Request.Context(), session.ID); err != nil {
		log.Error("failed to delete session", "session", session.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session"})
		return
	}

	h.statsCache.Delete(statsCacheKey(session.RunnerID))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportSession streams the session workbook as an .xlsx download.
func (h *Handler) ExportSession(c *gin.Context) {
	user := currentUser(c)

	session, ok := h.loadSessionChecked(c, user)
	if !ok {
		return
	}

	filename := fmt.Sprintf("session_%s_%s.xlsx", session.Runner.Username, session.CreatedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	wb := report.Workbook{Session: session, Series: engine.SeriesForSession(session)}
	if err := wb.Write(c.Writer); err != nil {
		log.Error("failed to export session", "session", session.ID, "error", err)
	}
}

// VelocityChart serves the velocity-vs-time chart page for a session.
func (h *Handler) VelocityChart(c *gin.Context) {
	h.renderChart(c, func(session *database.Session) error {
		return charts.RenderVelocity(c.Writer, session.Runner.Username, engine.SeriesForSession(session))
	})
}

// PositionChart serves the position-vs-time chart page for a session.
func (h *Handler) PositionChart(c *gin.Context) {
	h.renderChart(c, func(session *database.Session) error {
		return charts.RenderPosition(c.Writer, session.Runner.Username, engine.SeriesForSession(session))
	})
}

// SegmentChart serves the per-segment speed comparison page for a session.
func (h *Handler) SegmentChart(c *gin.Context) {
	h.renderChart(c, func(session *database.Session) error {
		return charts.RenderSegments(c.Writer, session.Runner.Username, segmentSummaries(engine.SeriesForSession(session)))
	})
}

func segmentSummaries(series []analysis.Series) []analysis.SegmentSummary {
	summaries := make([]analysis.SegmentSummary, 0, len(series))
	for _, s := range series {
		summaries = append(summaries, analysis.SummarizeSegment(s))
	}
	return summaries
}

func (h *Handler) renderChart(c *gin.Context, render func(*database.Session) error) {
	user := currentUser(c)

	session, ok := h.loadSessionChecked(c, user)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := render(session); err != nil {
		log.Error("failed to render chart", "session", session.ID, "error", err)
	}
}
