package handlers

import (
	"PMTCTCare/engine"
	"PMTCTCare/services"

	"github.com/gin-gonic/gin"
)

type LabHandler struct {
	service *services.LabService
}

func NewLabHandler(service *services.LabService) *LabHandler {
	return &LabHandler{service: service}
}

type labResultRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	Date  string `json:"date"`
}

// RecordLabResult accepts one lab result for a patient and returns the
// updated record with the clinical recommendations the result triggered.
func (h *LabHandler) RecordLabResult(c *gin.Context) {
	var req labResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	outcome, err := h.service.RecordResult(c.Request.Context(), c.Param("patient_id"), engine.TestKind(req.Kind), req.Value, date)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(200, outcome)
}
