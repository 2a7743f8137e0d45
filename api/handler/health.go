package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/dealscope/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// SessionCounter reports open browser sessions. *scraper.Browser
// implements it.
type SessionCounter interface {
	ActiveSessions() int
}

// Health returns a handler for GET /api/health. Status degrades when more
// sessions are open than maxSessions; a nil counter skips the check.
func Health(agg Aggregator, sessions SessionCounter, maxSessions int, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
			Sites:   agg.Sites(),
		}
		if sessions != nil {
			resp.ActiveSessions = sessions.ActiveSessions()
			if maxSessions > 0 && resp.ActiveSessions > maxSessions {
				resp.Status = "degraded"
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
