package handlers

import (
	"PMTCTCare/services"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	service *services.AlertService
}

func NewAlertHandler(service *services.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// GetAlerts runs the rule scan over all active patients and children. The
// evaluation date can be pinned with ?as_of=YYYY-MM-DD for review sessions.
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	asOf, err := parseAsOf(c)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	alerts, err := h.service.Generate(c.Request.Context(), asOf)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{
		"as_of":  asOf.Format("2006-01-02"),
		"alerts": alerts,
	})
}
