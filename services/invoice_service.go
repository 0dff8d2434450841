package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/printshop-api/metrics"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/workflow"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPaymentTermDays is the due date offset for new invoices
const DefaultPaymentTermDays = 30

// CreateInvoiceInput is the request body for invoicing an order
type CreateInvoiceInput struct {
	Amount    *decimal.Decimal `json:"amount"`     // defaults to the order total
	TaxAmount *decimal.Decimal `json:"tax_amount"` // defaults to zero
	DueDate   string           `json:"due_date"`   // defaults to 30 days from now
	Notes     string           `json:"notes"`
}

// UpdateInvoiceInput edits an unpaid invoice
type UpdateInvoiceInput struct {
	Amount    *decimal.Decimal `json:"amount"`
	TaxAmount *decimal.Decimal `json:"tax_amount"`
	DueDate   *string          `json:"due_date"`
	Notes     *string          `json:"notes"`
}

// PaymentInput is the request body for recording a payment
type PaymentInput struct {
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     string          `json:"payment_date"` // defaults to today
	PaymentMethod   string          `json:"payment_method" binding:"required"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	Status     string
	CustomerID uint
	Range      DateRange
	Page       Page
}

// InvoiceDashboard summarises billing
type InvoiceDashboard struct {
	Counts           map[models.InvoiceStatus]int64 `json:"counts"`
	TotalOutstanding decimal.Decimal                `json:"total_outstanding"`
	Recent           []models.Invoice               `json:"recent"`
	Overdue          []models.Invoice               `json:"overdue"`
}

// InvoiceService manages invoices and payments
type InvoiceService struct {
	db  *gorm.DB
	seq Sequencer
}

// NewInvoiceService creates an invoice service
func NewInvoiceService(db *gorm.DB, seq Sequencer) *InvoiceService {
	if seq == nil {
		seq = DBSequencer{}
	}
	return &InvoiceService{db: db, seq: seq}
}

// CreateInvoice bills an order as a Draft invoice numbered INV-…
func (s *InvoiceService) CreateInvoice(ctx context.Context, orderID uint, in CreateInvoiceInput) (*models.Invoice, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		return nil, notFound(err, "order", orderID)
	}
	if order.Status == models.OrderCancelled {
		return nil, Errorf(ErrOrderClosed, "order %s is cancelled", order.OrderNumber)
	}

	amount := order.TotalAmount
	if in.Amount != nil {
		amount = *in.Amount
	}
	tax := decimal.Zero
	if in.TaxAmount != nil {
		tax = *in.TaxAmount
	}
	if amount.IsNegative() || tax.IsNegative() {
		return nil, Errorf(ErrValidation, "amount and tax must not be negative")
	}

	due, err := ParseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	if due == nil {
		d := now().AddDate(0, 0, DefaultPaymentTermDays)
		due = &d
	}

	invoice := &models.Invoice{
		OrderID:     orderID,
		DueDate:     *due,
		Amount:      amount.Round(2),
		TaxAmount:   tax.Round(2),
		TotalAmount: workflow.InvoiceTotal(amount, tax).Round(2),
		Status:      models.InvoiceDraft,
		Notes:       strings.TrimSpace(in.Notes),
	}
	err = withNumberRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := s.seq.Next(ctx, tx, workflow.PrefixInvoice, now())
			if err != nil {
				return err
			}
			invoice.ID = 0
			invoice.InvoiceNumber = number
			return tx.Omit(clause.Associations).Create(invoice).Error
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.Default().DocumentCreated(workflow.PrefixInvoice)
	zap.L().Info("invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", invoice.TotalAmount.StringFixed(2)))
	return s.GetInvoice(ctx, invoice.ID)
}

// GetInvoice loads an invoice with payments and recomputed balance
func (s *InvoiceService) GetInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Order.Customer").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payment_date, id") }).
		First(&inv, id).Error
	if err != nil {
		return nil, notFound(err, "invoice", id)
	}
	inv.Settle()
	return &inv, nil
}

// ListInvoices returns a page of invoices, newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, f InvoiceFilter) ([]models.Invoice, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Invoice{}).Scopes(f.Range.Scope("invoices.created_at"))
	if f.Status != "" {
		if !models.InvoiceStatus(f.Status).Valid() {
			return nil, 0, Errorf(ErrValidation, "unknown invoice status %q", f.Status)
		}
		q = q.Where("invoices.status = ?", f.Status)
	}
	if f.CustomerID != 0 {
		q = q.Where("invoices.order_id IN (?)",
			s.db.Model(&models.Order{}).Select("id").Where("customer_id = ?", f.CustomerID))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	var invoices []models.Invoice
	err := q.Preload("Order.Customer").Preload("Payments").
		Order("invoices.created_at DESC, invoices.id DESC").
		Scopes(f.Page.Scope).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	for i := range invoices {
		invoices[i].Settle()
	}
	return invoices, total, nil
}

// UpdateInvoice edits amounts, due date and notes of an invoice that is not paid or cancelled
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uint, in UpdateInvoiceInput) (*models.Invoice, error) {
	var due *time.Time
	if in.DueDate != nil {
		d, err := ParseDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, Errorf(ErrValidation, "due_date cannot be empty")
		}
		due = d
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoice(tx, id)
		if err != nil {
			return err
		}
		if !workflow.Editable(inv.Status) {
			return Errorf(ErrInvoiceLocked, "invoice %s is %s and cannot be edited", inv.InvoiceNumber, inv.Status)
		}
		if in.Amount != nil {
			inv.Amount = in.Amount.Round(2)
		}
		if in.TaxAmount != nil {
			inv.TaxAmount = in.TaxAmount.Round(2)
		}
		if inv.Amount.IsNegative() || inv.TaxAmount.IsNegative() {
			return Errorf(ErrValidation, "amount and tax must not be negative")
		}
		inv.TotalAmount = workflow.InvoiceTotal(inv.Amount, inv.TaxAmount)
		if inv.TotalAmount.LessThan(inv.TotalPaid) {
			return Errorf(ErrValidation, "invoice total %s cannot be less than the %s already paid",
				inv.TotalAmount.StringFixed(2), inv.TotalPaid.StringFixed(2))
		}
		if inv.TotalPaid.IsPositive() {
			inv.Status = workflow.StatusAfterPayment(inv.Status, inv.TotalAmount, inv.TotalPaid)
		}
		if due != nil {
			inv.DueDate = *due
		}
		if in.Notes != nil {
			inv.Notes = strings.TrimSpace(*in.Notes)
		}
		return tx.Omit(clause.Associations).Save(inv).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, id)
}

// MarkSent moves a Draft invoice to Sent
func (s *InvoiceService) MarkSent(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.transition(ctx, id, models.InvoiceSent)
}

// MarkOverdue moves a Sent invoice to Overdue
func (s *InvoiceService) MarkOverdue(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.transition(ctx, id, models.InvoiceOverdue)
}

// CancelInvoice cancels a Draft, Sent or Overdue invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.transition(ctx, id, models.InvoiceCancelled)
}

func (s *InvoiceService) transition(ctx context.Context, id uint, to models.InvoiceStatus) (*models.Invoice, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoice(tx, id)
		if err != nil {
			return err
		}
		if err := workflow.TransitionInvoice(inv.Status, to); err != nil {
			if inv.Status == models.InvoicePaid {
				return Errorf(ErrInvoiceLocked, "invoice %s: %s", inv.InvoiceNumber, err.Error())
			}
			return Errorf(ErrInvalidTransition, "invoice %s: %s", inv.InvoiceNumber, err.Error())
		}
		return tx.Model(inv).Update("status", to).Error
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("invoice status changed", zap.Uint("invoice_id", id), zap.String("status", string(to)))
	return s.GetInvoice(ctx, id)
}

// RecordPayment applies a payment. Amounts above the balance due are rejected
// and leave the invoice untouched; paying the balance in full marks it Paid.
func (s *InvoiceService) RecordPayment(ctx context.Context, id uint, in PaymentInput) (*models.Invoice, error) {
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, Errorf(ErrValidation, "payment amount must be at least 0.01")
	}
	method := models.PaymentMethod(in.PaymentMethod)
	if !method.Valid() {
		return nil, Errorf(ErrValidation, "unknown payment method %q", in.PaymentMethod)
	}
	paidOn, err := ParseDate(in.PaymentDate)
	if err != nil {
		return nil, err
	}
	if paidOn == nil {
		t := now()
		paidOn = &t
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoice(tx, id)
		if err != nil {
			return err
		}
		if !workflow.AcceptsPayments(inv.Status) {
			return Errorf(ErrInvoiceLocked, "invoice %s is %s and does not accept payments", inv.InvoiceNumber, inv.Status)
		}
		if amount.GreaterThan(inv.BalanceDue) {
			return Errorf(ErrOverpayment, "payment of %s exceeds the balance due of %s",
				amount.StringFixed(2), inv.BalanceDue.StringFixed(2))
		}

		payment := models.Payment{
			InvoiceID:       inv.ID,
			Amount:          amount,
			PaymentDate:     *paidOn,
			PaymentMethod:   method,
			ReferenceNumber: strings.TrimSpace(in.ReferenceNumber),
			Notes:           strings.TrimSpace(in.Notes),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		status := workflow.StatusAfterPayment(inv.Status, inv.TotalAmount, inv.TotalPaid.Add(payment.Amount))
		if status != inv.Status {
			if err := tx.Model(inv).Update("status", status).Error; err != nil {
				return fmt.Errorf("failed to update invoice status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Default().PaymentRecorded(string(method), amount.InexactFloat64())
	return s.GetInvoice(ctx, id)
}

// MarkPastDueOverdue moves every Sent invoice whose due date has passed to Overdue
func (s *InvoiceService) MarkPastDueOverdue(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", models.InvoiceSent, startOfDay(now())).
		Update("status", models.InvoiceOverdue)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark overdue invoices: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		zap.L().Info("invoices marked overdue", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

// Dashboard returns invoice counts, outstanding balance, recent and overdue invoices
func (s *InvoiceService) Dashboard(ctx context.Context) (*InvoiceDashboard, error) {
	d := &InvoiceDashboard{Counts: make(map[models.InvoiceStatus]int64), TotalOutstanding: decimal.Zero}
	for _, st := range models.InvoiceStatuses {
		d.Counts[st] = 0
	}

	var rows []struct {
		Status models.InvoiceStatus
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	for _, r := range rows {
		d.Counts[r.Status] = r.Count
	}

	var open []models.Invoice
	if err := s.db.WithContext(ctx).Preload("Payments").
		Where("status IN ?", []models.InvoiceStatus{models.InvoiceSent, models.InvoiceOverdue}).
		Find(&open).Error; err != nil {
		return nil, fmt.Errorf("failed to load outstanding invoices: %w", err)
	}
	for i := range open {
		open[i].Settle()
		d.TotalOutstanding = d.TotalOutstanding.Add(open[i].BalanceDue)
	}

	if err := s.db.WithContext(ctx).Preload("Order.Customer").
		Order("created_at DESC, id DESC").Limit(10).Find(&d.Recent).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent invoices: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("Order.Customer").Preload("Payments").
		Where("status = ?", models.InvoiceOverdue).
		Order("due_date").Find(&d.Overdue).Error; err != nil {
		return nil, fmt.Errorf("failed to load overdue invoices: %w", err)
	}
	for i := range d.Overdue {
		d.Overdue[i].Settle()
	}
	return d, nil
}

// lockInvoice loads an invoice FOR UPDATE with its payments settled
func lockInvoice(tx *gorm.DB, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error; err != nil {
		return nil, notFound(err, "invoice", id)
	}
	if err := tx.Where("invoice_id = ?", id).Find(&inv.Payments).Error; err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	inv.Settle()
	return &inv, nil
}
