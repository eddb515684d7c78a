package handlers

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/auth"
	"github.com/justsurfingit/job-application-tracker/internal/live"
	"github.com/justsurfingit/job-application-tracker/internal/middleware"
	"github.com/justsurfingit/job-application-tracker/internal/services"
)

// Deps is everything the HTTP layer needs. Scanner and Notion may be nil
// when those features are not configured.
type Deps struct {
	Tokens       *auth.Tokens
	Accounts     *services.AccountService
	Applications *services.ApplicationService
	Scanner      *services.ScanService
	Notion       *services.NotionService
	Hub          *live.Hub
	CORSOrigins  []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	// the websocket handshake carries its token in the query string
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{SkipPaths: []string{"/api/v1/ws"}}), gin.Recovery())

	config := cors.DefaultConfig()
	if len(d.CORSOrigins) == 0 || slices.Contains(d.CORSOrigins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = d.CORSOrigins
		config.AllowCredentials = true
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	authHandler := NewAuthHandler(d.Accounts, d.Tokens.TTL)
	appHandler := NewApplicationHandler(d.Applications, d.Notion)
	scanHandler := NewScanHandler(d.Scanner)
	liveHandler := NewLiveHandler(d.Hub, d.Applications)

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)
		api.GET("/statuses", Statuses)

		api.POST("/auth/signup", authHandler.SignUp)
		api.POST("/auth/signin", authHandler.SignIn)
		api.POST("/auth/signout", authHandler.SignOut)
	}

	private := api.Group("")
	private.Use(middleware.JWTAuth(d.Tokens))
	{
		private.GET("/me", authHandler.Me)
		private.PUT("/me", authHandler.UpdateMe)

		private.POST("/scan", scanHandler.Scan)
		private.POST("/scan/location", scanHandler.ScanLocation)

		private.GET("/applications", appHandler.Board)
		private.POST("/applications", appHandler.Create)
		private.GET("/applications/:id", appHandler.Get)
		private.PUT("/applications/:id", appHandler.Update)
		private.PATCH("/applications/:id/status", appHandler.UpdateStatus)
		private.POST("/applications/:id/archive", appHandler.Archive)
		private.GET("/applications/:id/events", appHandler.Events)
		private.POST("/applications/:id/notion", appHandler.ExportNotion)

		private.GET("/stats", appHandler.Stats)
	}

	api.GET("/ws", middleware.SocketAuth(d.Tokens), liveHandler.Watch)
	return r
}
