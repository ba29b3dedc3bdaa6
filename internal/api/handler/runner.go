package handler

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/strideworks/sprintline/internal/api/models"
	"github.com/strideworks/sprintline/internal/charts"
	"github.com/strideworks/sprintline/internal/database"
)

func statsCacheKey(runnerID uint) string {
	return fmt.Sprintf("runner-stats:%d", runnerID)
}

// ListCoaches returns all coach accounts. The route is public so the
// registration form can offer a coach selection.
func (h *Handler) ListCoaches(c *gin.Context) {
	coaches, err := h.engine.DB().ListCoaches(c.Request.Context())
	if err != nil {
		log.Error("failed to list coaches", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list coaches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coaches": models.ToUserDetails(coaches)})
}

// ListRunners returns the runners assigned to the calling coach. Admins get
// every runner.
func (h *Handler) ListRunners(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	var (
		runners []database.User
		err     error
	)
	if user.IsAdmin() {
		users, listErr := h.engine.DB().ListUsers(ctx)
		if listErr == nil {
			for _, u := range users {
				if u.Role == database.RoleRunner {
					runners = append(runners, u)
				}
			}
		}
		err = listErr
	} else {
		runners, err = h.engine.DB().ListRunnersForCoach(ctx, user.ID)
	}
	if err != nil {
		log.Error("failed to list runners", "user", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runners"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runners": models.ToUserDetails(runners)})
}

// canViewRunner mirrors the session visibility rules for runner-scoped
// routes.
func (h *Handler) canViewRunner(c *gin.Context, user *models.User, runnerID uint) bool {
	switch {
	case user.IsAdmin(), user.ID == runnerID:
		return true
	case user.IsCoach():
		runner, err := h.engine.DB().GetUserByID(c.Request.Context(), runnerID)
		if err != nil {
			return false
		}
		return runner.CoachID != nil && *runner.CoachID == user.ID
	default:
		return false
	}
}

// RunnerStatistics returns a runner's aggregated history. Results are cached
// for a few minutes and invalidated when the runner's sessions change.
func (h *Handler) RunnerStatistics(c *gin.Context) {
	user := currentUser(c)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if !h.canViewRunner(c, user, id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if cached, found := h.statsCache.Get(statsCacheKey(id)); found {
		c.JSON(http.StatusOK, gin.H{"statistics": cached})
		return
	}

	stats, err := h.engine.DB().GetRunnerStatistics(c.Request.Context(), id)
	if err != nil {
		log.Error("failed to load runner statistics", "runner", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}

	view := models.ToRunnerStatistics(stats)
	h.statsCache.SetDefault(statsCacheKey(id), view)

	c.JSON(http.StatusOK, gin.H{"statistics": view})
}

// TrendChart serves the performance trend page for a runner.
func (h *Handler) TrendChart(c *gin.Context) {
	user := currentUser(c)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if !h.canViewRunner(c, user, id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	runner, err := h.engine.DB().GetUserByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "runner not found"})
		return
	}
	stats, err := h.engine.DB().GetRunnerStatistics(c.Request.Context(), id)
	if err != nil {
		log.Error("failed to load runner statistics", "runner", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderTrend(c.Writer, runner.Username, stats.Trend); err != nil {
		log.Error("failed to render trend chart", "runner", id, "error", err)
	}
}
