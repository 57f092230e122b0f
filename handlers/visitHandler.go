package handlers

import (
	"PMTCTCare/engine"
	"PMTCTCare/models"
	"PMTCTCare/services"

	"github.com/gin-gonic/gin"
)

type VisitHandler struct {
	service *services.VisitService
}

func NewVisitHandler(service *services.VisitService) *VisitHandler {
	return &VisitHandler{service: service}
}

// CompleteVisit records a finished clinic visit. The checklist must be fully
// ticked or the whole visit is rejected and nothing is stored.
func (h *VisitHandler) CompleteVisit(c *gin.Context) {
	var visit models.Visit
	if err := c.ShouldBindJSON(&visit); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	patient, err := h.service.CompleteVisit(c.Request.Context(), c.Param("patient_id"), visit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(200, patient)
}

func (h *VisitHandler) RecordEACSession(c *gin.Context) {
	patient, err := h.service.RecordEACSession(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(200, patient)
}

type completeEACRequest struct {
	Date string `json:"date"`
}

func (h *VisitHandler) CompleteEAC(c *gin.Context) {
	var req completeEACRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	patient, err := h.service.CompleteEAC(c.Request.Context(), c.Param("patient_id"), date)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(200, patient)
}
