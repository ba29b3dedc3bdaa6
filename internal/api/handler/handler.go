// Package handler contains the gin handlers for the API routes.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/strideworks/sprintline/internal/api/models"
	"github.com/strideworks/sprintline/internal/engine"
)

const statsCacheTTL = 5 * time.Minute

type Handler struct {
	engine     *engine.Engine
	statsCache *gocache.Cache
}

func New(eng *engine.Engine) *Handler {
	return &Handler{
		engine:     eng,
		statsCache: gocache.New(statsCacheTTL, 10*time.Minute),
	}
}

// Me returns the authenticated user's identity.
func (h *Handler) Me(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet("user").(*models.User)
}
