// Package api wires the HTTP surface: cookie sessions, the auth guards and
// the route tree.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/strideworks/sprintline/internal/api/auth"
	"github.com/strideworks/sprintline/internal/api/handler"
	"github.com/strideworks/sprintline/internal/config"
	"github.com/strideworks/sprintline/internal/database"
	"github.com/strideworks/sprintline/internal/engine"
)

type Server struct {
	cfg          *config.Config
	ginEngine    *gin.Engine
	engine       *engine.Engine
	authProvider *auth.Provider
}

func New(cfg *config.Config, e *engine.Engine) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	return &Server{
		cfg:          cfg,
		ginEngine:    gin.Default(),
		engine:       e,
		authProvider: auth.New(e.DB()),
	}, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("sprintline_session", store))
}

func (s *Server) setupRoutes() {
	// The chart pages carry the full echarts bundle, compress responses.
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	s.setupSession()

	h := handler.New(s.engine)

	s.ginEngine.MaxMultipartMemory = s.cfg.Uploads.MaxSize

	s.ginEngine.POST("/api/auth/login", s.authProvider.Login)
	s.ginEngine.POST("/api/auth/register", s.authProvider.Register)
	s.ginEngine.GET("/api/coaches", h.ListCoaches)

	api := s.ginEngine.Group("/api")
	api.Use(s.authProvider.RequireAuth())

	api.POST("/auth/logout", s.authProvider.Logout)
	api.GET("/me", h.Me)

	// Upload flow, runners only.
	uploads := api.Group("/uploads")
	uploads.Use(s.authProvider.RequireRole(database.RoleRunner))
	uploads.POST("/:segment", h.UploadVideo)
	uploads.GET("", h.UploadStatus)
	uploads.DELETE("", h.DiscardUploads)
	uploads.POST("/complete", h.CompleteSession)

	// Sessions, visibility enforced per handler.
	api.GET("/sessions", h.ListSessions)
	api.GET("/sessions/:id", h.GetSession)
	api.DELETE("/sessions/:id", h.DeleteSession)
	api.GET("/sessions/:id/export", h.ExportSession)
	api.GET("/sessions/:id/videos/:segment", h.ServeVideo)

	// Chart pages.
	chartsGroup := api.Group("/charts")
	chartsGroup.GET("/sessions/:id/velocity", h.VelocityChart)
	chartsGroup.GET("/sessions/:id/position", h.PositionChart)
	chartsGroup.GET("/sessions/:id/segments", h.SegmentChart)
	chartsGroup.GET("/runners/:id/trend", h.TrendChart)

	// Coach views.
	coach := api.Group("/")
	coach.Use(s.authProvider.RequireRole(database.RoleCoach, database.RoleAdmin))
	coach.GET("/runners", h.ListRunners)

	api.GET("/runners/:id/statistics", h.RunnerStatistics)

	s.setupAdminRoutes(h)
}

func (s *Server) setupAdminRoutes(h *handler.Handler) {
	admin := s.ginEngine.Group("/api/admin")
	admin.Use(s.authProvider.RequireAuth(), s.authProvider.RequireRole(database.RoleAdmin))

	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.PUT("/users/:id/password", h.UpdatePassword)
	admin.PUT("/users/:id/coach", h.AssignCoach)
	admin.DELETE("/users/:id", h.DeleteUser)
	admin.GET("/stats", h.Stats)
}

func (s *Server) Run() error {
	s.setupRoutes()

	return s.ginEngine.Run(s.cfg.Listen)
}
