package handlers

import (
	"PMTCTCare/engine"
	"PMTCTCare/models"
	"PMTCTCare/services"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	service *services.PatientService
}

func NewPatientHandler(service *services.PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// respondEngineError maps rule engine failures onto HTTP statuses. Validation
// failures are the caller's fault, missing records are 404, anything else is
// a server error.
func respondEngineError(c *gin.Context, err error) {
	var validationErr *engine.ValidationError
	var notFoundErr *engine.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(404, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": err.Error()})
	}
}

// parseAsOf reads the evaluation date from the request, defaulting to today.
func parseAsOf(c *gin.Context) (time.Time, error) {
	raw := c.DefaultQuery("as_of", "")
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	return engine.ParseDate(raw)
}

type registerPatientRequest struct {
	Patient models.Patient     `json:"patient"`
	Labs    engine.InitialLabs `json:"initial_labs"`
}

func (h *PatientHandler) RegisterPatient(c *gin.Context) {
	var req registerPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	asOf, err := parseAsOf(c)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	recommendations, err := h.service.Register(c.Request.Context(), &req.Patient, req.Labs, asOf)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(201, gin.H{
		"patient":         req.Patient,
		"recommendations": recommendations,
	})
}

func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patient, err := h.service.GetByID(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	if patient == nil {
		c.JSON(404, gin.H{"error": "Patient not found"})
		return
	}
	c.JSON(200, patient)
}

func (h *PatientHandler) GetAllPatients(c *gin.Context) {
	patients, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, patients)
}

func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	id := c.Param("patient_id")
	var patient models.Patient
	if err := c.ShouldBindJSON(&patient); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	patient.ID = id
	if err := h.service.Update(c.Request.Context(), &patient); err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, patient)
}

func (h *PatientHandler) DeactivatePatient(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("patient_id")); err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "Patient archived"})
}

type deliveryRequest struct {
	Date string `json:"date"`
}

func (h *PatientHandler) RecordDelivery(c *gin.Context) {
	var req deliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	patient, err := h.service.RecordDelivery(c.Request.Context(), c.Param("patient_id"), date)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(200, patient)
}
