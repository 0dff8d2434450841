package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/kendall-kelly/printshop-api/utils"
	"go.uber.org/zap"
)

func respond(c *gin.Context, status int, data interface{}, warnings ...string) {
	body := gin.H{
		"success": true,
		"data":    data,
	}
	if len(warnings) > 0 {
		body["warnings"] = warnings
	}
	c.JSON(status, body)
}

func respondList(c *gin.Context, data interface{}, page services.Page, total int64) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"meta": gin.H{
			"page":  page.Number,
			"limit": page.Size,
			"total": total,
		},
	})
}

func respondError(c *gin.Context, status int, code, message string, details ...string) {
	e := gin.H{
		"code":    code,
		"message": message,
	}
	if len(details) > 0 && details[0] != "" {
		e["details"] = details[0]
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   e,
	})
}

func respondValidation(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
}

// handleError maps service and upload errors onto HTTP statuses
func handleError(c *gin.Context, err error) {
	var upload *utils.FileUploadError
	if errors.As(err, &upload) {
		respondError(c, http.StatusBadRequest, upload.Code, upload.Message)
		return
	}

	var se *services.Error
	if !errors.As(err, &se) {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}

	status := http.StatusConflict
	switch {
	case se.Code == services.ErrValidation.Code:
		status = http.StatusBadRequest
	case se.Code == services.ErrInvalidLogin.Code:
		status = http.StatusUnauthorized
	case se.Code == services.ErrUserInactive.Code:
		status = http.StatusForbidden
	case strings.HasSuffix(se.Code, "NOT_FOUND"):
		status = http.StatusNotFound
	case se.Code == services.ErrOverpayment.Code, se.Code == services.ErrInsufficientStock.Code:
		status = http.StatusUnprocessableEntity
	}
	respondError(c, status, se.Code, se.Message)
}

// paramID reads a positive numeric path parameter; on failure it has already responded
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// queryPage reads page and limit, defaulting limit to the configured page size
func queryPage(c *gin.Context) services.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = config.GetConfig().ItemsPerPage
	}
	if limit > 100 {
		limit = 100
	}
	return services.Page{Number: page, Size: limit}
}

func queryDateRange(c *gin.Context) (services.DateRange, bool) {
	r, err := services.ParseDateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		handleError(c, err)
		return r, false
	}
	return r, true
}

func queryUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return uint(n), true
}

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB(), services.GetSequencer(), services.GetArtworkStorage()).
		WithMaxUpload(config.GetConfig().MaxUploadBytes)
}

func productionService() *services.ProductionService {
	return services.NewProductionService(config.GetDB())
}

func invoiceService() *services.InvoiceService {
	return services.NewInvoiceService(config.GetDB(), services.GetSequencer())
}
