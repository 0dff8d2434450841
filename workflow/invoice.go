package workflow

import (
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/shopspring/decimal"
)

// invoiceTransitions lists the explicit actions allowed from each invoice status.
// Paid is reached only by recording payments.
var invoiceTransitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.InvoiceDraft:   {models.InvoiceSent, models.InvoiceCancelled},
	models.InvoiceSent:    {models.InvoiceOverdue, models.InvoiceCancelled},
	models.InvoiceOverdue: {models.InvoiceCancelled},
}

// CanTransitionInvoice reports whether an invoice may move between two statuses by explicit action
func CanTransitionInvoice(from, to models.InvoiceStatus) bool {
	for _, next := range invoiceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionInvoice validates an explicit status change
func TransitionInvoice(from, to models.InvoiceStatus) error {
	if CanTransitionInvoice(from, to) {
		return nil
	}
	reason := ""
	switch from {
	case models.InvoicePaid:
		reason = "paid invoices cannot be changed"
	case models.InvoiceCancelled:
		reason = "invoice is cancelled"
	}
	return &TransitionError{Entity: "invoice", From: string(from), To: string(to), Reason: reason}
}

// AcceptsPayments reports whether payments can be recorded against an invoice in status s
func AcceptsPayments(s models.InvoiceStatus) bool {
	switch s {
	case models.InvoiceDraft, models.InvoiceSent, models.InvoiceOverdue:
		return true
	}
	return false
}

// Editable reports whether an invoice's amounts, due date and notes can be changed
func Editable(s models.InvoiceStatus) bool {
	return s != models.InvoicePaid && s != models.InvoiceCancelled
}

// InvoiceTotal is amount plus tax
func InvoiceTotal(amount, tax decimal.Decimal) decimal.Decimal {
	return amount.Add(tax)
}

// StatusAfterPayment returns the status an invoice moves to once totalPaid has been received.
func StatusAfterPayment(current models.InvoiceStatus, total, totalPaid decimal.Decimal) models.InvoiceStatus {
	if totalPaid.GreaterThanOrEqual(total) {
		return models.InvoicePaid
	}
	if current == models.InvoiceDraft {
		return models.InvoiceSent
	}
	return current
}
