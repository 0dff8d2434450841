package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/services"
)

// Dashboard handles GET /api/v1/dashboard
func Dashboard(c *gin.Context) {
	d, err := services.NewDashboardService(config.GetDB()).Main(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, d)
}

// Search handles GET /api/v1/search?q=&limit= across customers, orders and jobs
func Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	res, err := services.NewDashboardService(config.GetDB()).Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}
