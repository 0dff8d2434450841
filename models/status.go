package models

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderQuote        OrderStatus = "Quote"
	OrderPending      OrderStatus = "Pending"
	OrderApproved     OrderStatus = "Approved"
	OrderInProduction OrderStatus = "In Production"
	OrderCompleted    OrderStatus = "Completed"
	OrderDelivered    OrderStatus = "Delivered"
	OrderCancelled    OrderStatus = "Cancelled"
)

// OrderStatuses lists every order status in display order
var OrderStatuses = []OrderStatus{
	OrderQuote, OrderPending, OrderApproved, OrderInProduction,
	OrderCompleted, OrderDelivered, OrderCancelled,
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Closed reports whether the order no longer accepts job changes
func (s OrderStatus) Closed() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// JobStatus is the production stage of a job
type JobStatus string

const (
	JobPending      JobStatus = "Pending"
	JobPrepress     JobStatus = "Prepress"
	JobPress        JobStatus = "Press"
	JobPostpress    JobStatus = "Postpress"
	JobQualityCheck JobStatus = "Quality Check"
	JobCompleted    JobStatus = "Completed"
)

// JobStatuses lists every job status in production order
var JobStatuses = []JobStatus{
	JobPending, JobPrepress, JobPress, JobPostpress, JobQualityCheck, JobCompleted,
}

// Valid reports whether s is a known job status
func (s JobStatus) Valid() bool {
	for _, v := range JobStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// InProduction reports whether the job is on the shop floor
func (s JobStatus) InProduction() bool {
	switch s {
	case JobPrepress, JobPress, JobPostpress, JobQualityCheck:
		return true
	}
	return false
}

// InvoiceStatus is the billing state of an invoice
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "Draft"
	InvoiceSent      InvoiceStatus = "Sent"
	InvoicePaid      InvoiceStatus = "Paid"
	InvoiceOverdue   InvoiceStatus = "Overdue"
	InvoiceCancelled InvoiceStatus = "Cancelled"
)

// InvoiceStatuses lists every invoice status
var InvoiceStatuses = []InvoiceStatus{
	InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceCancelled,
}

// Valid reports whether s is a known invoice status
func (s InvoiceStatus) Valid() bool {
	for _, v := range InvoiceStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheck        PaymentMethod = "check"
	PaymentCash         PaymentMethod = "cash"
	PaymentOther        PaymentMethod = "other"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentBankTransfer, PaymentCheck, PaymentCash, PaymentOther:
		return true
	}
	return false
}
