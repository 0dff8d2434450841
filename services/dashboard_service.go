package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kendall-kelly/printshop-api/models"
	"gorm.io/gorm"
)

const recentOrderLimit = 5

// Dashboard is the main overview page
type Dashboard struct {
	OrderCounts     map[models.OrderStatus]int64 `json:"order_counts"`
	JobCounts       map[models.JobStatus]int64   `json:"job_counts"`
	RecentOrders    []models.Order               `json:"recent_orders"`
	OverdueInvoices int64                        `json:"overdue_invoices"`
	CustomerCount   int64                        `json:"customer_count"`
	LowStock        []models.Material            `json:"low_stock"`
}

// SearchResults holds matches across customers, orders and jobs
type SearchResults struct {
	Query     string            `json:"query"`
	Customers []models.Customer `json:"customers"`
	Orders    []models.Order    `json:"orders"`
	Jobs      []models.Job      `json:"jobs"`
}

// DashboardService builds overview pages and search
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type statusCount struct {
	Status string
	Count  int64
}

// Main returns counts by status, the latest orders and what needs attention
func (s *DashboardService) Main(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	d := &Dashboard{
		OrderCounts: make(map[models.OrderStatus]int64),
		JobCounts:   make(map[models.JobStatus]int64),
	}
	for _, st := range models.OrderStatuses {
		d.OrderCounts[st] = 0
	}
	for _, st := range models.JobStatuses {
		d.JobCounts[st] = 0
	}

	var rows []statusCount
	if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	for _, r := range rows {
		d.OrderCounts[models.OrderStatus(r.Status)] = r.Count
	}

	rows = nil
	if err := db.Model(&models.Job{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	for _, r := range rows {
		d.JobCounts[models.JobStatus(r.Status)] = r.Count
	}

	if err := db.Preload("Customer").Order("created_at DESC, id DESC").Limit(recentOrderLimit).Find(&d.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}
	if err := db.Model(&models.Invoice{}).Where("status = ?", models.InvoiceOverdue).Count(&d.OverdueInvoices).Error; err != nil {
		return nil, fmt.Errorf("failed to count overdue invoices: %w", err)
	}
	if err := db.Model(&models.Customer{}).Count(&d.CustomerCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if err := db.Where("stock_level <= reorder_level").Order("name").Find(&d.LowStock).Error; err != nil {
		return nil, fmt.Errorf("failed to load low stock materials: %w", err)
	}
	return d, nil
}

// Search matches customers by name, contact or email and orders or jobs by number or notes.
// Each category returns at most limit rows.
func (s *DashboardService) Search(ctx context.Context, query string, limit int) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	res := &SearchResults{
		Query:     query,
		Customers: []models.Customer{},
		Orders:    []models.Order{},
		Jobs:      []models.Job{},
	}
	if query == "" {
		return res, nil
	}
	if limit <= 0 {
		limit = 20
	}
	like := "%" + strings.ToLower(query) + "%"
	db := s.db.WithContext(ctx)

	if err := db.Scopes(customerSearch(query)).Order("name").Limit(limit).Find(&res.Customers).Error; err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	err := db.Preload("Customer").
		Where("LOWER(order_number) LIKE ? OR LOWER(notes) LIKE ?", like, like).
		Order("created_at DESC, id DESC").Limit(limit).Find(&res.Orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search orders: %w", err)
	}
	err = db.Preload("Order").Preload("Product").
		Where("LOWER(job_number) LIKE ? OR LOWER(notes) LIKE ?", like, like).
		Order("created_at DESC, id DESC").Limit(limit).Find(&res.Jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}
	return res, nil
}
