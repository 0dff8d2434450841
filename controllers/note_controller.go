package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/middleware"
)

// AddNoteRequest represents the request body for a job note
type AddNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddJobNote handles POST /api/v1/jobs/:id/notes - appends a note to the job history
func AddJobNote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	event, err := productionService().AddNote(c.Request.Context(), id, req.Text, middleware.Actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, event)
}

// GetJobEvents handles GET /api/v1/jobs/:id/events - the job history, oldest first
func GetJobEvents(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	events, err := productionService().Events(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, events)
}
