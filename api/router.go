package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/use-agent/dealscope/alerts"
	"github.com/use-agent/dealscope/api/handler"
	"github.com/use-agent/dealscope/config"
)

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Aggregator handler.Aggregator
	Alerts     alerts.Repository

	// Sessions is optional; it feeds the health status.
	Sessions handler.SessionCounter
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain: Recovery → Logger → CORS. Preflight OPTIONS requests
// are answered by the CORS middleware.
func NewRouter(deps Deps, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(cors.New(corsConfig(cfg.CORS)))

	api := r.Group("/api")

	api.GET("/health", handler.Health(deps.Aggregator, deps.Sessions, cfg.Browser.MaxSessions, startTime))

	api.POST("/scrape", handler.Scrape(deps.Aggregator, cfg.Sites))

	api.POST("/subscribe", handler.Subscribe(deps.Alerts))
	api.GET("/alerts", handler.ListAlerts(deps.Alerts))
	api.POST("/alerts/delete", handler.DeleteAlert(deps.Alerts))

	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}
