package controllers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/kendall-kelly/printshop-api/utils"
)

// GetUploadedArtwork handles GET /api/v1/uploads/*key - streams stored artwork
func GetUploadedArtwork(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	if key == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Prevent directory traversal
	if strings.Contains(key, "..") || strings.Contains(key, "\\") || path.Clean("/" + key)[1:] != key {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	serveArtwork(c, key)
}

// GetJobArtwork handles GET /api/v1/jobs/:id/artwork - streams the job's artwork file
func GetJobArtwork(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	job, err := orderService().GetJob(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	if job.FilePath == "" {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Job has no artwork")
		return
	}
	serveArtwork(c, job.FilePath)
}

func serveArtwork(c *gin.Context, key string) {
	storage := services.GetArtworkStorage()
	if storage == nil {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Artwork storage is not configured")
		return
	}

	rc, err := storage.Open(c.Request.Context(), key)
	if err != nil {
		if services.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Artwork not found")
			return
		}
		handleError(c, err)
		return
	}
	defer rc.Close()

	filename := path.Base(key)
	c.DataFromReader(http.StatusOK, -1, utils.ContentTypeFor(filename), rc, map[string]string{
		"Cache-Control":       "private, max-age=3600",
		"Content-Disposition": `inline; filename="` + filename + `"`,
	})
}
