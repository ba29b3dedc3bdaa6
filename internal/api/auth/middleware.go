package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/strideworks/sprintline/internal/api/models"
	"github.com/strideworks/sprintline/internal/database"
)

// RequireAuth loads the user referenced by the cookie session and attaches
// it to the request context. Requests without a valid session are rejected.
func (p *Provider) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserKey).(uint)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		user, err := p.db.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			// Stale cookie, e.g. after the account was deleted.
			session.Clear()
			_ = session.Save()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		c.Set("user", models.ToUser(user))
	}
}

// RequireRole restricts a route group to the given roles.
func (p *Provider) RequireRole(roles ...database.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*models.User)
		if !ok || !lo.Contains(roles, database.Role(user.Role)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
