package controllers

import (
	"PMTCTCare/handlers"

	"github.com/gin-gonic/gin"
)

// SetupClinicRoutes registers the patient, child and alert endpoints.
func SetupClinicRoutes(
	router *gin.Engine,
	patientHandler *handlers.PatientHandler,
	labHandler *handlers.LabHandler,
	visitHandler *handlers.VisitHandler,
	childHandler *handlers.ChildHandler,
	alertHandler *handlers.AlertHandler,
) {
	router.POST("/patients", patientHandler.RegisterPatient)
	router.GET("/patients", patientHandler.GetAllPatients)
	router.GET("/patients/:patient_id", patientHandler.GetPatientByID)
	router.PUT("/patients/:patient_id", patientHandler.UpdatePatient)
	router.DELETE("/patients/:patient_id", patientHandler.DeactivatePatient)
	router.POST("/patients/:patient_id/delivery", patientHandler.RecordDelivery)

	router.POST("/patients/:patient_id/labs", labHandler.RecordLabResult)

	router.POST("/patients/:patient_id/visits", visitHandler.CompleteVisit)
	router.POST("/patients/:patient_id/eac/sessions", visitHandler.RecordEACSession)
	router.POST("/patients/:patient_id/eac/complete", visitHandler.CompleteEAC)

	router.GET("/patients/:patient_id/children", childHandler.GetChildrenByMother)
	router.POST("/patients/:patient_id/children", childHandler.RegisterChild)
	router.POST("/children", childHandler.RegisterChild)
	router.GET("/children", childHandler.GetAllChildren)
	router.GET("/children/:child_id", childHandler.GetChildByID)
	router.POST("/children/:child_id/dbs", childHandler.RecordDBS)
	router.POST("/children/:child_id/bioline", childHandler.RecordBioline)
	router.POST("/children/:child_id/breastfeeding-stop", childHandler.StopBreastfeeding)

	router.GET("/alerts", alertHandler.GetAlerts)
}
