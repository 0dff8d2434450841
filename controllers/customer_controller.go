package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/services"
)

// ListCustomers handles GET /api/v1/customers?search=&page=&limit=
func ListCustomers(c *gin.Context) {
	page := queryPage(c)
	customers, total, err := services.NewCustomerService(config.GetDB()).List(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		handleError(c, err)
		return
	}
	respondList(c, customers, page, total)
}

// GetCustomer handles GET /api/v1/customers/:id - includes the customer's orders
func GetCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	customer, err := services.NewCustomerService(config.GetDB()).Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, customer)
}

// CreateCustomer handles POST /api/v1/customers
func CreateCustomer(c *gin.Context) {
	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	customer, err := services.NewCustomerService(config.GetDB()).Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func UpdateCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	customer, err := services.NewCustomerService(config.GetDB()).Update(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, customer)
}
