package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/services"
)

// CreateInvoice handles POST /api/v1/orders/:id/invoices - bills the order as a Draft invoice
func CreateInvoice(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.CreateInvoiceInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err)
			return
		}
	}
	invoice, err := invoiceService().CreateInvoice(c.Request.Context(), orderID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, invoice)
}

// ListInvoices handles GET /api/v1/invoices?status=&customer_id=&start_date=&end_date=&page=&limit=
func ListInvoices(c *gin.Context) {
	customerID, ok := queryUint(c, "customer_id")
	if !ok {
		return
	}
	r, ok := queryDateRange(c)
	if !ok {
		return
	}
	page := queryPage(c)
	invoices, total, err := invoiceService().ListInvoices(c.Request.Context(), services.InvoiceFilter{
		Status:     c.Query("status"),
		CustomerID: customerID,
		Range:      r,
		Page:       page,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	respondList(c, invoices, page, total)
}

// GetInvoice handles GET /api/v1/invoices/:id - includes payments and the balance due
func GetInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	invoice, err := invoiceService().GetInvoice(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// UpdateInvoice handles PUT /api/v1/invoices/:id
func UpdateInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateInvoiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	invoice, err := invoiceService().UpdateInvoice(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// RecordPayment handles POST /api/v1/invoices/:id/payments
func RecordPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.PaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	invoice, err := invoiceService().RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, invoice)
}

// SendInvoice handles POST /api/v1/invoices/:id/send
func SendInvoice(c *gin.Context) {
	invoiceAction(c, (*services.InvoiceService).MarkSent)
}

// MarkInvoiceOverdue handles POST /api/v1/invoices/:id/overdue
func MarkInvoiceOverdue(c *gin.Context) {
	invoiceAction(c, (*services.InvoiceService).MarkOverdue)
}

// CancelInvoice handles POST /api/v1/invoices/:id/cancel
func CancelInvoice(c *gin.Context) {
	invoiceAction(c, (*services.InvoiceService).CancelInvoice)
}

func invoiceAction(c *gin.Context, action func(*services.InvoiceService, context.Context, uint) (*models.Invoice, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	invoice, err := action(invoiceService(), c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// SweepOverdueInvoices handles POST /api/v1/invoices/mark-overdue - marks every
// past-due Sent invoice Overdue (admin only)
func SweepOverdueInvoices(c *gin.Context) {
	n, err := invoiceService().MarkPastDueOverdue(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updated": n})
}

// InvoiceDashboard handles GET /api/v1/invoices/dashboard
func InvoiceDashboard(c *gin.Context) {
	d, err := invoiceService().Dashboard(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, d)
}
