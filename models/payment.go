package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records money received against an invoice
type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	InvoiceID       uint            `gorm:"not null;index" json:"invoice_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	PaymentMethod   PaymentMethod   `gorm:"size:50;not null" json:"payment_method"`
	ReferenceNumber string          `gorm:"size:100" json:"reference_number"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
