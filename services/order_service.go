package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/kendall-kelly/printshop-api/metrics"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/utils"
	"github.com/kendall-kelly/printshop-api/workflow"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOrderInput is the request body for a new order or quote
type CreateOrderInput struct {
	CustomerID uint   `json:"customer_id" form:"customer_id" binding:"required"`
	DueDate    string `json:"due_date" form:"due_date"`
	Notes      string `json:"notes" form:"notes"`
	Status     string `json:"status" form:"status"` // Pending (default) or Quote
}

// UpdateOrderInput changes an order's header fields; status is never set directly
type UpdateOrderInput struct {
	CustomerID *uint   `json:"customer_id" form:"customer_id"`
	DueDate    *string `json:"due_date" form:"due_date"`
	Notes      *string `json:"notes" form:"notes"`
}

// JobInput carries job specifications for create and edit
type JobInput struct {
	ProductID      *uint    `json:"product_id" form:"product_id"`
	Quantity       *int     `json:"quantity" form:"quantity"`
	Width          *float64 `json:"width" form:"width"`
	Height         *float64 `json:"height" form:"height"`
	Pages          *int     `json:"pages" form:"pages"`
	Colors         *string  `json:"colors" form:"colors"`
	PaperType      *string  `json:"paper_type" form:"paper_type"`
	Finishing      *string  `json:"finishing" form:"finishing"`
	EstimatedHours *float64 `json:"estimated_hours" form:"estimated_hours"`
	Notes          *string  `json:"notes" form:"notes"`
}

// OrderFilter narrows order listings
type OrderFilter struct {
	Status     string
	CustomerID uint
	Page       Page
}

// OrderService manages orders and the jobs inside them
type OrderService struct {
	db        *gorm.DB
	seq       Sequencer
	storage   ArtworkStorage
	maxUpload int64
}

// NewOrderService creates an order service; storage may be nil when uploads are disabled
func NewOrderService(db *gorm.DB, seq Sequencer, storage ArtworkStorage) *OrderService {
	if seq == nil {
		seq = DBSequencer{}
	}
	return &OrderService{db: db, seq: seq, storage: storage, maxUpload: utils.MaxFileSize}
}

// WithMaxUpload overrides the artwork size limit; n <= 0 keeps the default
func (s *OrderService) WithMaxUpload(n int64) *OrderService {
	if n > 0 {
		s.maxUpload = n
	}
	return s
}

// CreateOrder creates an order numbered ORD-…, or a quote numbered QUO-… when Status is Quote
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	status := models.OrderStatus(in.Status)
	switch status {
	case "":
		status = models.OrderPending
	case models.OrderPending, models.OrderQuote:
	default:
		return nil, Errorf(ErrValidation, "new orders must be Pending or Quote, got %q", in.Status)
	}
	prefix := workflow.PrefixOrder
	if status == models.OrderQuote {
		prefix = workflow.PrefixQuote
	}

	due, err := ParseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	if err := s.requireCustomer(ctx, in.CustomerID); err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerID:  in.CustomerID,
		Status:      status,
		DueDate:     due,
		Notes:       strings.TrimSpace(in.Notes),
		TotalAmount: decimal.Zero,
	}
	err = withNumberRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := s.seq.Next(ctx, tx, prefix, now())
			if err != nil {
				return err
			}
			order.ID = 0
			order.OrderNumber = number
			return tx.Create(order).Error
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.Default().DocumentCreated(prefix)
	zap.L().Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.Status)))
	return s.GetOrder(ctx, order.ID)
}

// CreateQuote creates a quote for a customer
func (s *OrderService) CreateQuote(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	in.Status = string(models.OrderQuote)
	return s.CreateOrder(ctx, in)
}

// GetOrder loads an order with its customer, jobs and invoices
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Jobs", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Jobs.Product").
		Preload("Invoices").
		First(&order, id).Error
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return &order, nil
}

// ListOrders returns a page of orders, newest first, and the total count
func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		if !models.OrderStatus(f.Status).Valid() {
			return nil, 0, Errorf(ErrValidation, "unknown order status %q", f.Status)
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	var orders []models.Order
	if err := q.Preload("Customer").Order("created_at DESC, id DESC").Scopes(f.Page.Scope).Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateOrder edits customer, due date and notes
func (s *OrderService) UpdateOrder(ctx context.Context, id uint, in UpdateOrderInput) (*models.Order, error) {
	updates := map[string]interface{}{}
	if in.CustomerID != nil {
		if err := s.requireCustomer(ctx, *in.CustomerID); err != nil {
			return nil, err
		}
		updates["customer_id"] = *in.CustomerID
	}
	if in.DueDate != nil {
		due, err := ParseDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		updates["due_date"] = due
	}
	if in.Notes != nil {
		updates["notes"] = strings.TrimSpace(*in.Notes)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, id)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(order).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

// ApproveOrder moves a quote or pending order to Approved
func (s *OrderService) ApproveOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.setOrderStatus(ctx, id, models.OrderApproved, workflow.CanApproveOrder)
}

// DeliverOrder marks a completed order as delivered
func (s *OrderService) DeliverOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.setOrderStatus(ctx, id, models.OrderDelivered, workflow.CanDeliverOrder)
}

// CancelOrder cancels an order that has not been completed
func (s *OrderService) CancelOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.setOrderStatus(ctx, id, models.OrderCancelled, workflow.CanCancelOrder)
}

func (s *OrderService) setOrderStatus(ctx context.Context, id uint, to models.OrderStatus, allowed func(models.OrderStatus) bool) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, id)
		if err != nil {
			return err
		}
		if !allowed(order.Status) {
			return Errorf(ErrInvalidTransition, "cannot move order %s from %s to %s", order.OrderNumber, order.Status, to)
		}
		return tx.Model(order).Update("status", to).Error
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("order status changed", zap.Uint("order_id", id), zap.String("status", string(to)))
	return s.GetOrder(ctx, id)
}

// AddJob creates a Pending job in the order, optionally storing artwork,
// then recomputes the order total and status.
func (s *OrderService) AddJob(ctx context.Context, orderID uint, in JobInput, artwork *multipart.FileHeader, actor string) (*models.Job, error) {
	if in.ProductID == nil || *in.ProductID == 0 {
		return nil, Errorf(ErrValidation, "product_id is required")
	}
	if in.Quantity == nil || *in.Quantity <= 0 {
		return nil, Errorf(ErrValidation, "quantity must be greater than zero")
	}
	if err := s.requireProduct(ctx, *in.ProductID); err != nil {
		return nil, err
	}

	var existing models.Order
	if err := s.db.WithContext(ctx).First(&existing, orderID).Error; err != nil {
		return nil, notFound(err, "order", orderID)
	}
	if existing.Status.Closed() {
		return nil, Errorf(ErrOrderClosed, "order %s is %s", existing.OrderNumber, existing.Status)
	}

	key, err := s.storeArtwork(ctx, orderID, artwork)
	if err != nil {
		return nil, err
	}

	job := &models.Job{OrderID: orderID, Status: models.JobPending}
	applyJobInput(job, in)

	err = withNumberRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			order, err := lockOrder(tx, orderID)
			if err != nil {
				return err
			}
			if order.Status.Closed() {
				return Errorf(ErrOrderClosed, "order %s is %s", order.OrderNumber, order.Status)
			}
			number, err := s.seq.Next(ctx, tx, workflow.PrefixJob, now())
			if err != nil {
				return err
			}
			job.ID = 0
			job.JobNumber = number
			job.FilePath = key
			if err := tx.Omit(clause.Associations).Create(job).Error; err != nil {
				return err
			}
			detail := fmt.Sprintf("job created with quantity %d", job.Quantity)
			if err := appendEvent(tx, job.ID, actor, models.EventCreated, nil, job.Status, detail); err != nil {
				return err
			}
			return recalculateOrder(tx, order)
		})
	})
	if err != nil {
		s.discardArtwork(ctx, key)
		return nil, err
	}

	metrics.Default().DocumentCreated(workflow.PrefixJob)
	return s.GetJob(ctx, job.ID)
}

// UpdateJob edits a job's specifications and optionally replaces its artwork
func (s *OrderService) UpdateJob(ctx context.Context, jobID uint, in JobInput, artwork *multipart.FileHeader, actor string) (*models.Job, error) {
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, Errorf(ErrValidation, "quantity must be greater than zero")
	}
	if in.ProductID != nil {
		if err := s.requireProduct(ctx, *in.ProductID); err != nil {
			return nil, err
		}
	}

	var current models.Job
	if err := s.db.WithContext(ctx).First(&current, jobID).Error; err != nil {
		return nil, notFound(err, "job", jobID)
	}

	key, err := s.storeArtwork(ctx, current.OrderID, artwork)
	if err != nil {
		return nil, err
	}

	var replaced string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, current.OrderID)
		if err != nil {
			return err
		}
		if order.Status.Closed() {
			return Errorf(ErrOrderClosed, "order %s is %s", order.OrderNumber, order.Status)
		}
		var job models.Job
		if err := tx.First(&job, jobID).Error; err != nil {
			return notFound(err, "job", jobID)
		}
		applyJobInput(&job, in)
		if key != "" {
			replaced = job.FilePath
			job.FilePath = key
		}
		if err := tx.Omit(clause.Associations).Save(&job).Error; err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}
		event := models.EventUpdated
		detail := "job specifications updated"
		if key != "" {
			event = models.EventArtworkUploaded
			detail = "artwork replaced"
		}
		if err := appendEvent(tx, job.ID, actor, event, nil, job.Status, detail); err != nil {
			return err
		}
		return recalculateOrder(tx, order)
	})
	if err != nil {
		s.discardArtwork(ctx, key)
		return nil, err
	}
	s.discardArtwork(ctx, replaced)
	return s.GetJob(ctx, jobID)
}

// DeleteJob removes a job and re-derives its order
func (s *OrderService) DeleteJob(ctx context.Context, jobID uint) error {
	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, jobID).Error; err != nil {
		return notFound(err, "job", jobID)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, job.OrderID)
		if err != nil {
			return err
		}
		if order.Status.Closed() {
			return Errorf(ErrOrderClosed, "order %s is %s", order.OrderNumber, order.Status)
		}
		if err := tx.Delete(&models.Job{}, jobID).Error; err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		return recalculateOrder(tx, order)
	})
	if err != nil {
		return err
	}
	s.discardArtwork(ctx, job.FilePath)
	return nil
}

// GetJob loads a job with its order, product and event history
func (s *OrderService) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := s.db.WithContext(ctx).
		Preload("Order.Customer").
		Preload("Product").
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&job, id).Error
	if err != nil {
		return nil, notFound(err, "job", id)
	}
	if s.storage != nil && job.FilePath != "" {
		if url, err := s.storage.URL(ctx, job.FilePath); err == nil && url != "" {
			job.FileURL = &url
		} else if err != nil {
			zap.L().Warn("failed to resolve artwork url", zap.Uint("job_id", id), zap.Error(err))
		}
	}
	return &job, nil
}

func (s *OrderService) storeArtwork(ctx context.Context, orderID uint, artwork *multipart.FileHeader) (string, error) {
	if artwork == nil {
		return "", nil
	}
	if s.storage == nil {
		return "", errors.New("artwork storage is not configured")
	}
	if err := utils.ValidateArtworkFile(artwork, s.maxUpload); err != nil {
		return "", err
	}
	key, err := s.storage.Save(ctx, orderID, artwork)
	if err != nil {
		return "", fmt.Errorf("failed to store artwork: %w", err)
	}
	return key, nil
}

func (s *OrderService) discardArtwork(ctx context.Context, key string) {
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		zap.L().Warn("failed to delete artwork", zap.String("key", key), zap.Error(err))
	}
}

func (s *OrderService) requireCustomer(ctx context.Context, id uint) error {
	var customer models.Customer
	if err := s.db.WithContext(ctx).Select("id").First(&customer, id).Error; err != nil {
		return notFound(err, "customer", id)
	}
	return nil
}

func (s *OrderService) requireProduct(ctx context.Context, id uint) error {
	var product models.Product
	if err := s.db.WithContext(ctx).Select("id").First(&product, id).Error; err != nil {
		return notFound(err, "product", id)
	}
	return nil
}

func applyJobInput(job *models.Job, in JobInput) {
	if in.ProductID != nil {
		job.ProductID = *in.ProductID
	}
	if in.Quantity != nil {
		job.Quantity = *in.Quantity
	}
	if in.Width != nil {
		job.Width = in.Width
	}
	if in.Height != nil {
		job.Height = in.Height
	}
	if in.Pages != nil {
		job.Pages = in.Pages
	}
	if in.Colors != nil {
		job.Colors = *in.Colors
	}
	if in.PaperType != nil {
		job.PaperType = *in.PaperType
	}
	if in.Finishing != nil {
		job.Finishing = *in.Finishing
	}
	if in.EstimatedHours != nil {
		job.EstimatedHours = in.EstimatedHours
	}
	if in.Notes != nil {
		job.Notes = strings.TrimSpace(*in.Notes)
	}
}

// lockOrder loads an order FOR UPDATE; SQLite ignores the locking clause.
func lockOrder(tx *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return &order, nil
}

// recalculateOrder recomputes the total from job quantities and product
// prices and derives the status from the full set of sibling jobs.
func recalculateOrder(tx *gorm.DB, order *models.Order) error {
	var jobs []models.Job
	if err := tx.Preload("Product").Where("order_id = ?", order.ID).Find(&jobs).Error; err != nil {
		return fmt.Errorf("failed to load jobs for order %d: %w", order.ID, err)
	}

	total := decimal.Zero
	statuses := make([]models.JobStatus, 0, len(jobs))
	for _, j := range jobs {
		if j.Product != nil {
			total = total.Add(j.Product.UnitPrice.Mul(decimal.NewFromInt(int64(j.Quantity))))
		}
		statuses = append(statuses, j.Status)
	}
	status := workflow.DeriveOrderStatus(order.Status, statuses)

	if status != order.Status {
		zap.L().Info("order status derived",
			zap.String("order_number", order.OrderNumber),
			zap.String("from", string(order.Status)),
			zap.String("to", string(status)))
	}
	order.TotalAmount = total.Round(2)
	order.Status = status
	return tx.Model(order).Updates(map[string]interface{}{
		"total_amount": order.TotalAmount,
		"status":       order.Status,
	}).Error
}

// appendEvent adds an entry to a job's history
func appendEvent(tx *gorm.DB, jobID uint, actor, event string, from *models.JobStatus, to models.JobStatus, detail string) error {
	if actor == "" {
		actor = "system"
	}
	toStatus := to
	e := models.JobEvent{
		JobID:      jobID,
		Actor:      actor,
		Event:      event,
		FromStatus: from,
		ToStatus:   &toStatus,
		Detail:     detail,
		CreatedAt:  now(),
	}
	if err := tx.Create(&e).Error; err != nil {
		return fmt.Errorf("failed to record job event: %w", err)
	}
	return nil
}
