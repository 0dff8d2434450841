package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/shopspring/decimal"
)

// StockUpdateRequest represents the request body for a manual stock adjustment
type StockUpdateRequest struct {
	Quantity   decimal.Decimal `json:"quantity"`
	IsAddition *bool           `json:"is_addition" binding:"required"`
}

// ListProducts handles GET /api/v1/products
func ListProducts(c *gin.Context) {
	products, err := services.NewProductService(config.GetDB()).List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := services.NewProductService(config.GetDB()).Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products
func CreateProduct(c *gin.Context) {
	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	product, err := services.NewProductService(config.GetDB()).Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/:id
func UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	product, err := services.NewProductService(config.GetDB()).Update(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id (admin only)
func DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := services.NewProductService(config.GetDB()).Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Product deleted"})
}

// ListMaterials handles GET /api/v1/materials; ?low_stock=true returns only items at or below reorder level
func ListMaterials(c *gin.Context) {
	materials := services.NewMaterialService(config.GetDB())
	var (
		list interface{}
		err  error
	)
	if c.Query("low_stock") == "true" {
		list, err = materials.LowStock(c.Request.Context())
	} else {
		list, err = materials.List(c.Request.Context())
	}
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, list)
}

// GetMaterial handles GET /api/v1/materials/:id
func GetMaterial(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	material, err := services.NewMaterialService(config.GetDB()).Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, material)
}

// CreateMaterial handles POST /api/v1/materials
func CreateMaterial(c *gin.Context) {
	var req services.MaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	material, err := services.NewMaterialService(config.GetDB()).Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, material)
}

// UpdateMaterial handles PUT /api/v1/materials/:id
func UpdateMaterial(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.MaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	material, err := services.NewMaterialService(config.GetDB()).Update(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, material)
}

// DeleteMaterial handles DELETE /api/v1/materials/:id (admin only)
func DeleteMaterial(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := services.NewMaterialService(config.GetDB()).Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Material deleted"})
}

// UpdateMaterialStock handles POST /api/v1/materials/:id/stock. A low stock result is
// reported as a warning, not an error.
func UpdateMaterialStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	result, err := services.NewMaterialService(config.GetDB()).UpdateStock(c.Request.Context(), id, req.Quantity, *req.IsAddition)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, result, warnings(result.Warning())...)
}

// warnings drops empty messages
func warnings(msgs ...string) []string {
	var out []string
	for _, m := range msgs {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
