package handlers

import (
	"PMTCTCare/engine"
	"PMTCTCare/models"
	"PMTCTCare/services"

	"github.com/gin-gonic/gin"
)

type ChildHandler struct {
	service *services.ChildService
}

func NewChildHandler(service *services.ChildService) *ChildHandler {
	return &ChildHandler{service: service}
}

func (h *ChildHandler) RegisterChild(c *gin.Context) {
	var child models.Child
	if err := c.ShouldBindJSON(&child); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	// Nested route form carries the mother id in the path.
	if motherID := c.Param("patient_id"); motherID != "" {
		child.MotherID = motherID
	}
	asOf, err := parseAsOf(c)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Register(c.Request.Context(), &child, asOf); err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(201, child)
}

func (h *ChildHandler) GetChildByID(c *gin.Context) {
	child, err := h.service.GetByID(c.Request.Context(), c.Param("child_id"))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	if child == nil {
		c.JSON(404, gin.H{"error": "Child not found"})
		return
	}
	c.JSON(200, child)
}

func (h *ChildHandler) GetAllChildren(c *gin.Context) {
	children, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, children)
}

func (h *ChildHandler) GetChildrenByMother(c *gin.Context) {
	children, err := h.service.GetByMotherID(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, children)
}

type childTestRequest struct {
	Result string `json:"result"`
	Date   string `json:"date"`
}

func (h *ChildHandler) RecordDBS(c *gin.Context) {
	var req childTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	outcome, err := h.service.RecordDBS(c.Request.Context(), c.Param("child_id"), req.Result, date)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(200, outcome)
}

func (h *ChildHandler) RecordBioline(c *gin.Context) {
	var req childTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	outcome, err := h.service.RecordBioline(c.Request.Context(), c.Param("child_id"), req.Result, date)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(200, outcome)
}

type stopBreastfeedingRequest struct {
	Date string `json:"date"`
}

func (h *ChildHandler) StopBreastfeeding(c *gin.Context) {
	var req stopBreastfeedingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	child, err := h.service.StopBreastfeeding(c.Request.Context(), c.Param("child_id"), date)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(200, child)
}
