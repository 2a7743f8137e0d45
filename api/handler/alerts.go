package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/dealscope/alerts"
	"github.com/use-agent/dealscope/models"
)

// Subscribe returns a handler for POST /api/subscribe.
func Subscribe(repo alerts.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SubscribeRequest
		if err := bindJSON(c, &req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if strings.TrimSpace(req.Contact) == "" {
			badRequest(c, "contact is required")
			return
		}

		saved, err := repo.Save(c.Request.Context(), models.NewAlert(req))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.AlertResponse{Success: true, Alert: saved})
	}
}

// ListAlerts returns a handler for GET /api/alerts.
func ListAlerts(repo alerts.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := repo.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.AlertsResponse{Success: true, Alerts: all})
	}
}

// DeleteAlert returns a handler for POST /api/alerts/delete. Deleting an
// unknown id succeeds with deleted = 0.
func DeleteAlert(repo alerts.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DeleteAlertRequest
		if err := bindJSON(c, &req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if strings.TrimSpace(req.ID) == "" {
			badRequest(c, "id is required")
			return
		}

		n, err := repo.Delete(c.Request.Context(), req.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.DeleteAlertResponse{Success: true, Deleted: n})
	}
}
