package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/middleware"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/services"
)

// JobStatusRequest represents the request body for moving a job between stages
type JobStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// QualityCheckRequest represents the request body for an inspection result
type QualityCheckRequest struct {
	Passed *bool  `json:"passed" binding:"required"`
	Notes  string `json:"notes" binding:"required"`
}

// UpdateJobStatus handles POST /api/v1/jobs/:id/status
func UpdateJobStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req JobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	result, err := productionService().UpdateJobStatus(c.Request.Context(), id, models.JobStatus(req.Status), req.Notes, middleware.Actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// ScheduleJob handles POST /api/v1/jobs/:id/schedule
func ScheduleJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.ScheduleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	result, err := productionService().ScheduleJob(c.Request.Context(), id, req, middleware.Actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// CompleteJob handles POST /api/v1/jobs/:id/complete
func CompleteJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.CompleteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	result, err := productionService().CompleteJob(c.Request.Context(), id, req, middleware.Actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// QualityCheckJob handles POST /api/v1/jobs/:id/quality-check
func QualityCheckJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req QualityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	result, err := productionService().QualityCheck(c.Request.Context(), id, *req.Passed, req.Notes, middleware.Actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// RecordMaterialUsage handles POST /api/v1/jobs/:id/materials - takes stock for the job
func RecordMaterialUsage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.MaterialUsageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	result, err := productionService().RecordMaterialUsage(c.Request.Context(), id, req, middleware.Actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, result, warnings(result.Warning())...)
}

// ProductionBoard handles GET /api/v1/production/board - active jobs grouped by stage
func ProductionBoard(c *gin.Context) {
	board, err := productionService().Board(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, board)
}

// ProductionSchedule handles GET /api/v1/production/schedule?start_date=&end_date=
func ProductionSchedule(c *gin.Context) {
	r, ok := queryDateRange(c)
	if !ok {
		return
	}
	jobs, err := productionService().Schedule(c.Request.Context(), r)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, jobs)
}
