package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/strideworks/sprintline/internal/api/models"
	"github.com/strideworks/sprintline/internal/database"
)

// ListUsers returns all accounts for the admin pages.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.engine.DB().ListUsers(c.Request.Context())
	if err != nil {
		log.Error("failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": models.ToUserDetails(users)})
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"required"`
	CoachID  *uint  `json:"coachId"`
}

// CreateUser creates an account with any role.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := database.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	user, err := h.engine.DB().CreateUser(c.Request.Context(), req.Username, req.Password, req.Email, role, req.CoachID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "username is already taken"})
		case errors.Is(err, database.ErrNotACoach):
			c.JSON(http.StatusBadRequest, gin.H{"error": "selected coach is not a coach account"})
		default:
			log.Error("failed to create user", "username", req.Username, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": models.ToUserDetail(*user)})
}

type updatePasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// UpdatePassword sets a new password for an account.
func (h *Handler) UpdatePassword(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.DB().UpdateUserPassword(c.Request.Context(), id, req.Password); err != nil {
		log.Error("failed to update password", "user", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type assignCoachRequest struct {
	CoachID *uint `json:"coachId"`
}

// AssignCoach sets or clears a runner's coach.
func (h *Handler) AssignCoach(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req assignCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.DB().AssignCoach(c.Request.Context(), id, req.CoachID); err != nil {
		if errors.Is(err, database.ErrNotACoach) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "selected coach is not a coach account"})
			return
		}
		log.Error("failed to assign coach", "runner", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign coach"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (h *Handler) DeleteUser(c *gin.Context) {
	user := currentUser(c)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if id == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	if err := h.engine.DB().DeleteUser(c.Request.Context(), id); err != nil {
		log.Error("failed to delete user", "user", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	h.statsCache.Delete(statsCacheKey(id))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats returns database-wide counters for the admin dashboard.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.engine.DB().GetStats(c.Request.Context())
	if err != nil {
		log.Error("failed to load stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
