package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice bills an order and accrues payments until settled
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"uniqueIndex;size:32;not null" json:"invoice_number"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	Order         *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	DueDate       time.Time       `gorm:"not null;index" json:"due_date"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status        InvoiceStatus   `gorm:"size:20;not null;default:'Draft';index" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Payments      []Payment       `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
	TotalPaid     decimal.Decimal `gorm:"-" json:"total_paid"`
	BalanceDue    decimal.Decimal `gorm:"-" json:"balance_due"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// Settle recomputes TotalPaid and BalanceDue from the loaded payments
func (i *Invoice) Settle() {
	paid := decimal.Zero
	for _, p := range i.Payments {
		paid = paid.Add(p.Amount)
	}
	i.TotalPaid = paid
	i.BalanceDue = i.TotalAmount.Sub(paid)
}
