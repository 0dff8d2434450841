package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Production report status filters
const (
	ProductionAll        = "all"
	ProductionPending    = "pending"
	ProductionInProgress = "in_progress"
	ProductionCompleted  = "completed"
)

// Invoice report kinds
const (
	InvoiceReportOutstanding = "outstanding"
	InvoiceReportPaid        = "paid"
	InvoiceReportOverdue     = "overdue"
	InvoiceReportMonthly     = "monthly"
)

// OrderReport aggregates orders created in a date range
type OrderReport struct {
	Orders      []models.Order                         `json:"orders"`
	TotalOrders int                                    `json:"total_orders"`
	TotalAmount decimal.Decimal                        `json:"total_amount"`
	ByStatus    map[models.OrderStatus]int             `json:"by_status"`
	AmountBy    map[models.OrderStatus]decimal.Decimal `json:"amount_by_status"`
}

// ProductBreakdown is one product's share of a production report
type ProductBreakdown struct {
	ProductID   uint    `json:"product_id"`
	Name        string  `json:"name"`
	Jobs        int     `json:"jobs"`
	Completed   int     `json:"completed"`
	Quantity    int     `json:"quantity"`
	ActualHours float64 `json:"actual_hours"`
}

// ProductionReport aggregates jobs created in a date range
type ProductionReport struct {
	Jobs             []models.Job             `json:"jobs"`
	TotalJobs        int                      `json:"total_jobs"`
	CompletedJobs    int                      `json:"completed_jobs"`
	CompletionRate   float64                  `json:"completion_rate"` // percent
	TotalActualHours float64                  `json:"total_actual_hours"`
	AvgTurnaroundHrs float64                  `json:"avg_turnaround_hours"`
	ByStatus         map[models.JobStatus]int `json:"by_status"`
	Products         []ProductBreakdown       `json:"products"`
}

// MonthSummary is one month of the monthly invoice report
type MonthSummary struct {
	Month       string          `json:"month"` // YYYY-MM
	Label       string          `json:"label"` // January 2024
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// InvoiceReport is the result of any invoice report kind
type InvoiceReport struct {
	Kind             string           `json:"kind"`
	Invoices         []models.Invoice `json:"invoices,omitempty"`
	Months           []MonthSummary   `json:"months,omitempty"`
	Count            int              `json:"count"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	TotalPaid        decimal.Decimal  `json:"total_paid"`
	TotalOutstanding decimal.Decimal  `json:"total_outstanding"`
}

// ReportService computes in-process reports over query results
type ReportService struct {
	db *gorm.DB
}

// NewReportService creates a report service
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Orders reports orders created in r, optionally limited to one status
func (s *ReportService) Orders(ctx context.Context, status string, r DateRange) (*OrderReport, error) {
	q := s.db.WithContext(ctx).Preload("Customer").Scopes(r.Scope("created_at"))
	if status != "" && status != ProductionAll {
		if !models.OrderStatus(status).Valid() {
			return nil, Errorf(ErrValidation, "unknown order status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	var orders []models.Order
	if err := q.Order("created_at, id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders for report: %w", err)
	}

	rep := &OrderReport{
		Orders:      orders,
		TotalOrders: len(orders),
		TotalAmount: decimal.Zero,
		ByStatus:    make(map[models.OrderStatus]int),
		AmountBy:    make(map[models.OrderStatus]decimal.Decimal),
	}
	for _, o := range orders {
		rep.TotalAmount = rep.TotalAmount.Add(o.TotalAmount)
		rep.ByStatus[o.Status]++
		rep.AmountBy[o.Status] = rep.AmountBy[o.Status].Add(o.TotalAmount)
	}
	return rep, nil
}

// Production reports jobs created in r filtered by all, pending, in_progress or completed
func (s *ReportService) Production(ctx context.Context, filter string, r DateRange) (*ProductionReport, error) {
	q := s.db.WithContext(ctx).Preload("Product").Preload("Order").Scopes(r.Scope("created_at"))
	switch filter {
	case "", ProductionAll:
	case ProductionPending:
		q = q.Where("status = ?", models.JobPending)
	case ProductionInProgress:
		q = q.Where("status IN ?", []models.JobStatus{models.JobPrepress, models.JobPress, models.JobPostpress, models.JobQualityCheck})
	case ProductionCompleted:
		q = q.Where("status = ?", models.JobCompleted)
	default:
		return nil, Errorf(ErrValidation, "unknown production filter %q", filter)
	}
	var jobs []models.Job
	if err := q.Order("created_at, id").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to load jobs for report: %w", err)
	}

	rep := &ProductionReport{Jobs: jobs, TotalJobs: len(jobs), ByStatus: make(map[models.JobStatus]int)}
	products := make(map[uint]*ProductBreakdown)
	var turnaround float64
	var turnaroundJobs int
	for _, j := range jobs {
		rep.ByStatus[j.Status]++
		pb, ok := products[j.ProductID]
		if !ok {
			pb = &ProductBreakdown{ProductID: j.ProductID}
			if j.Product != nil {
				pb.Name = j.Product.Name
			}
			products[j.ProductID] = pb
		}
		pb.Jobs++
		pb.Quantity += j.Quantity
		if j.ActualHours != nil {
			rep.TotalActualHours += *j.ActualHours
			pb.ActualHours += *j.ActualHours
		}
		if j.Status == models.JobCompleted {
			rep.CompletedJobs++
			pb.Completed++
			if h := durationHours(j.StartDate, j.CompletionDate); h > 0 {
				turnaround += h
				turnaroundJobs++
			}
		}
	}
	if rep.TotalJobs > 0 {
		rep.CompletionRate = float64(rep.CompletedJobs) / float64(rep.TotalJobs) * 100
	}
	if turnaroundJobs > 0 {
		rep.AvgTurnaroundHrs = turnaround / float64(turnaroundJobs)
	}

	rep.Products = make([]ProductBreakdown, 0, len(products))
	for _, pb := range products {
		rep.Products = append(rep.Products, *pb)
	}
	sort.Slice(rep.Products, func(i, k int) bool {
		if rep.Products[i].Jobs != rep.Products[k].Jobs {
			return rep.Products[i].Jobs > rep.Products[k].Jobs
		}
		return rep.Products[i].Name < rep.Products[k].Name
	})
	return rep, nil
}

// Invoices builds the outstanding, paid, overdue or monthly invoice report over r
func (s *ReportService) Invoices(ctx context.Context, kind string, r DateRange) (*InvoiceReport, error) {
	q := s.db.WithContext(ctx).Preload("Order.Customer").Preload("Payments").Scopes(r.Scope("created_at"))
	switch kind {
	case InvoiceReportOutstanding:
		q = q.Where("status IN ?", []models.InvoiceStatus{models.InvoiceSent, models.InvoiceOverdue}).Order("due_date, id")
	case InvoiceReportPaid:
		q = q.Where("status = ?", models.InvoicePaid).Order("created_at DESC, id DESC")
	case InvoiceReportOverdue:
		q = q.Where("status = ?", models.InvoiceOverdue).Order("due_date, id")
	case InvoiceReportMonthly:
		q = q.Order("created_at, id")
	default:
		return nil, Errorf(ErrValidation, "unknown invoice report %q", kind)
	}

	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to load invoices for report: %w", err)
	}

	rep := &InvoiceReport{
		Kind:             kind,
		Count:            len(invoices),
		TotalAmount:      decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for i := range invoices {
		invoices[i].Settle()
		inv := invoices[i]
		paid, outstanding := settlement(inv)
		rep.TotalAmount = rep.TotalAmount.Add(inv.TotalAmount)
		rep.TotalPaid = rep.TotalPaid.Add(paid)
		rep.TotalOutstanding = rep.TotalOutstanding.Add(outstanding)
	}

	if kind == InvoiceReportMonthly {
		rep.Months = monthlySummaries(invoices)
	} else {
		rep.Invoices = invoices
	}
	return rep, nil
}

func isOutstanding(s models.InvoiceStatus) bool {
	return s == models.InvoiceSent || s == models.InvoiceOverdue
}

// settlement splits an invoice's total into the paid and outstanding columns of
// the reports: Paid invoices count as paid, Sent and Overdue ones as outstanding,
// and Draft or Cancelled ones as neither.
func settlement(inv models.Invoice) (paid, outstanding decimal.Decimal) {
	switch {
	case inv.Status == models.InvoicePaid:
		return inv.TotalAmount, decimal.Zero
	case isOutstanding(inv.Status):
		return decimal.Zero, inv.TotalAmount
	}
	return decimal.Zero, decimal.Zero
}

// monthlySummaries groups invoices by creation month, oldest first
func monthlySummaries(invoices []models.Invoice) []MonthSummary {
	byMonth := make(map[string]*MonthSummary)
	for _, inv := range invoices {
		key := inv.CreatedAt.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthSummary{
				Month:       key,
				Label:       inv.CreatedAt.Format("January 2006"),
				Total:       decimal.Zero,
				Paid:        decimal.Zero,
				Outstanding: decimal.Zero,
			}
			byMonth[key] = m
		}
		m.Count++
		paid, outstanding := settlement(inv)
		m.Total = m.Total.Add(inv.TotalAmount)
		m.Paid = m.Paid.Add(paid)
		m.Outstanding = m.Outstanding.Add(outstanding)
	}

	months := make([]MonthSummary, 0, len(byMonth))
	for _, m := range byMonth {
		months = append(months, *m)
	}
	sort.Slice(months, func(i, k int) bool { return months[i].Month < months[k].Month })
	return months
}
