package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/socialdash/config"
	"github.com/cppla/socialdash/controllers"
	"github.com/cppla/socialdash/middleware"
	"github.com/cppla/socialdash/store"
	"github.com/cppla/socialdash/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, ws *store.Workspace) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		utils.Sugar.Warnf("gin logger disabled: %v", err)
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok", "session_loading": ws.Session().State().IsLoading})
	})

	authController := controllers.NewAuthController(ws.Session())
	postController := controllers.NewPostController()
	stateController := controllers.NewStateController()
	statsController := controllers.NewStatsController()
	sessionRequired := middleware.SessionRequired(ws)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", authController.Me)
	authGroup.POST("/logout", sessionRequired, authController.Logout)
	authGroup.PATCH("/profile", sessionRequired, authController.UpdateProfile)

	protected := api.Group("")
	protected.Use(sessionRequired)

	protected.GET("/state", stateController.GetState)
	protected.DELETE("/state/error", stateController.DismissError)
	protected.GET("/events", stateController.Events)

	protected.GET("/posts", postController.ListPosts)
	protected.POST("/posts", postController.CreatePost)
	protected.POST("/posts/refresh", postController.RefreshPosts)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/like", postController.LikePost)
	protected.GET("/posts/:id/comments", postController.ListComments)
	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.POST("/posts/:id/share", postController.SharePost)

	protected.GET("/schedule", statsController.GetSchedule)
	protected.GET("/analytics", statsController.GetAnalytics)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
