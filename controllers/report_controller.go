package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/services"
)

type tabular interface {
	Tables() []services.Table
}

// OrderReport handles GET /api/v1/reports/orders?status=&start_date=&end_date=&format=
func OrderReport(c *gin.Context) {
	r, ok := queryDateRange(c)
	if !ok {
		return
	}
	rep, err := services.NewReportService(config.GetDB()).Orders(c.Request.Context(), c.Query("status"), r)
	if err != nil {
		handleError(c, err)
		return
	}
	writeReport(c, "orders", rep)
}

// ProductionReport handles GET /api/v1/reports/production?status=&start_date=&end_date=&format=
func ProductionReport(c *gin.Context) {
	r, ok := queryDateRange(c)
	if !ok {
		return
	}
	rep, err := services.NewReportService(config.GetDB()).Production(c.Request.Context(), c.DefaultQuery("status", services.ProductionAll), r)
	if err != nil {
		handleError(c, err)
		return
	}
	writeReport(c, "production", rep)
}

// InvoiceReport handles GET /api/v1/reports/invoices?type=&start_date=&end_date=&format=
func InvoiceReport(c *gin.Context) {
	r, ok := queryDateRange(c)
	if !ok {
		return
	}
	rep, err := services.NewReportService(config.GetDB()).Invoices(c.Request.Context(), c.DefaultQuery("type", services.InvoiceReportOutstanding), r)
	if err != nil {
		handleError(c, err)
		return
	}
	writeReport(c, "invoices", rep)
}

// writeReport renders rep as JSON, or as a spreadsheet download when format=xlsx
func writeReport(c *gin.Context, name string, rep tabular) {
	switch c.DefaultQuery("format", "json") {
	case "json":
		respond(c, http.StatusOK, rep)
	case "xlsx":
		var buf bytes.Buffer
		if err := services.WriteXLSX(&buf, rep.Tables()...); err != nil {
			handleError(c, err)
			return
		}
		filename := fmt.Sprintf("%s-report-%s.xlsx", name, time.Now().Format("20060102"))
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, services.XLSXContentType, buf.Bytes())
	default:
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "format must be json or xlsx")
	}
}
