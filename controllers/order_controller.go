package controllers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/middleware"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/services"
)

// ListOrders handles GET /api/v1/orders?status=&customer_id=&page=&limit=
func ListOrders(c *gin.Context) {
	customerID, ok := queryUint(c, "customer_id")
	if !ok {
		return
	}
	page := queryPage(c)
	orders, total, err := orderService().ListOrders(c.Request.Context(), services.OrderFilter{
		Status:     c.Query("status"),
		CustomerID: customerID,
		Page:       page,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	respondList(c, orders, page, total)
}

// GetOrder handles GET /api/v1/orders/:id - the order with customer, jobs and invoices
func GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := orderService().GetOrder(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// CreateOrder handles POST /api/v1/orders
func CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	order, err := orderService().CreateOrder(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

// CreateQuote handles POST /api/v1/orders/quotes - an order in Quote status numbered QUO-…
func CreateQuote(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	order, err := orderService().CreateQuote(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id
func UpdateOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	order, err := orderService().UpdateOrder(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// ApproveOrder handles POST /api/v1/orders/:id/approve
func ApproveOrder(c *gin.Context) {
	orderAction(c, (*services.OrderService).ApproveOrder)
}

// DeliverOrder handles POST /api/v1/orders/:id/deliver
func DeliverOrder(c *gin.Context) {
	orderAction(c, (*services.OrderService).DeliverOrder)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel
func CancelOrder(c *gin.Context) {
	orderAction(c, (*services.OrderService).CancelOrder)
}

func orderAction(c *gin.Context, action func(*services.OrderService, context.Context, uint) (*models.Order, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := action(orderService(), c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// AddJob handles POST /api/v1/orders/:id/jobs. Accepts JSON, or multipart form data
// with the artwork in the "file" field.
func AddJob(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	in, artwork, ok := bindJob(c)
	if !ok {
		return
	}
	job, err := orderService().AddJob(c.Request.Context(), orderID, in, artwork, middleware.Actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, job)
}

// GetJob handles GET /api/v1/jobs/:id - the job with its order, product and history
func GetJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	job, err := orderService().GetJob(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, job)
}

// UpdateJob handles PUT /api/v1/jobs/:id; a new artwork file replaces the old one
func UpdateJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	in, artwork, ok := bindJob(c)
	if !ok {
		return
	}
	job, err := orderService().UpdateJob(c.Request.Context(), id, in, artwork, middleware.Actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, job)
}

// DeleteJob handles DELETE /api/v1/jobs/:id (admin only)
func DeleteJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := orderService().DeleteJob(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Job deleted"})
}

// bindJob reads job fields from JSON or a multipart form, plus the optional artwork file
func bindJob(c *gin.Context) (services.JobInput, *multipart.FileHeader, bool) {
	var in services.JobInput
	if err := c.ShouldBind(&in); err != nil {
		respondValidation(c, err)
		return in, nil, false
	}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return in, nil, true
	}
	artwork, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, true
	}
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Could not read uploaded file", err.Error())
		return in, nil, false
	}
	return in, artwork, true
}
