// Package auth implements session based authentication on top of the user
// store: login, logout, self-registration and the route guards.
package auth

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/strideworks/sprintline/internal/api/models"
	"github.com/strideworks/sprintline/internal/database"
)

const sessionUserKey = "user_id"

type Provider struct {
	db database.DB
}

func New(db database.DB) *Provider {
	return &Provider{db: db}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates the credentials and stores the user id in the cookie
// session.
func (p *Provider) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := p.db.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		log.Error("login failed", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		log.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": models.ToUser(user)})
}

// Logout clears the cookie session.
func (p *Provider) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Error("failed to clear session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"required,email"`
	CoachID  *uint  `json:"coachId"`
}

// Register creates a runner account. Coach and admin accounts are created by
// an administrator.
func (p *Provider) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := p.db.CreateUser(c.Request.Context(), req.Username, req.Password, req.Email, database.RoleRunner, req.CoachID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "username is already taken"})
		case errors.Is(err, database.ErrNotACoach):
			c.JSON(http.StatusBadRequest, gin.H{"error": "selected coach is not a coach account"})
		default:
			log.Error("registration failed", "username", req.Username, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		log.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": models.ToUser(user)})
}
