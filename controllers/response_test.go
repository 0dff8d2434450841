package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/kendall-kelly/printshop-api/utils"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", services.Errorf(services.ErrValidation, "bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"login", services.ErrInvalidLogin, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"disabled", services.ErrUserInactive, http.StatusForbidden, "ACCOUNT_DISABLED"},
		{"not found", &services.Error{Code: "ORDER_NOT_FOUND", Message: "order 1 not found"}, http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"overpayment", services.ErrOverpayment, http.StatusUnprocessableEntity, "OVERPAYMENT"},
		{"stock", services.ErrInsufficientStock, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"transition", services.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{"locked", services.ErrInvoiceLocked, http.StatusConflict, "INVOICE_LOCKED"},
		{"wrapped", fmt.Errorf("saving: %w", services.ErrProductInUse), http.StatusConflict, "PRODUCT_IN_USE"},
		{"upload", &utils.FileUploadError{Code: "FILE_TOO_LARGE", Message: "too big"}, http.StatusBadRequest, "FILE_TOO_LARGE"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestQueryPage(t *testing.T) {
	setupEnv(t, false)
	tests := []struct {
		query string
		page  int
		size  int
	}{
		{"", 1, 20},
		{"?page=3&limit=5", 3, 5},
		{"?page=-2&limit=500", 1, 100},
		{"?page=x&limit=y", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			p := queryPage(c)
			assert.Equal(t, tt.page, p.Number)
			assert.Equal(t, tt.size, p.Size)
		})
	}
}

func TestRespondWarnings(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respond(c, http.StatusOK, gin.H{"id": 1}, warnings("", "low paper")...)

	body := decode(t, w)
	assert.True(t, body.Success)
	assert.Equal(t, []string{"low paper"}, body.Warnings)
}
