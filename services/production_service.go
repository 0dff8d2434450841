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

// ScheduleInput plans a job on the production calendar
type ScheduleInput struct {
	StartDate      string   `json:"start_date" form:"start_date"`
	CompletionDate string   `json:"completion_date" form:"completion_date"`
	EstimatedHours *float64 `json:"estimated_hours" form:"estimated_hours"`
	Notes          string   `json:"notes" form:"notes"`
}

// CompleteInput finishes a job
type CompleteInput struct {
	ActualHours    *float64 `json:"actual_hours" form:"actual_hours"`
	CompletionDate string   `json:"completion_date" form:"completion_date"`
	Notes          string   `json:"notes" form:"notes"`
}

// MaterialUsageInput records stock consumed by a job
type MaterialUsageInput struct {
	MaterialID uint            `json:"material_id" form:"material_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" form:"quantity"`
	Notes      string          `json:"notes" form:"notes"`
}

// JobResult is a job after a production change together with its order
type JobResult struct {
	Job   *models.Job   `json:"job"`
	Order *models.Order `json:"order"`
}

// ProductionService drives jobs through the shop floor stages
type ProductionService struct {
	db *gorm.DB
}

// NewProductionService creates a production service
func NewProductionService(db *gorm.DB) *ProductionService {
	return &ProductionService{db: db}
}

// UpdateJobStatus moves a job to a new stage and re-derives its order
func (s *ProductionService) UpdateJobStatus(ctx context.Context, jobID uint, to models.JobStatus, notes, actor string) (*JobResult, error) {
	if !to.Valid() {
		return nil, Errorf(ErrValidation, "unknown job status %q", to)
	}
	detail := strings.TrimSpace(notes)
	return s.mutateJob(ctx, jobID, func(tx *gorm.DB, job *models.Job) error {
		return transitionJob(tx, job, to, actor, models.EventStatusChanged, detail)
	})
}

// ScheduleJob sets the planned start, expected completion and estimated hours
func (s *ProductionService) ScheduleJob(ctx context.Context, jobID uint, in ScheduleInput, actor string) (*JobResult, error) {
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, Errorf(ErrValidation, "start_date is required")
	}
	end, err := ParseDate(in.CompletionDate)
	if err != nil {
		return nil, err
	}
	if end != nil && end.Before(*start) {
		return nil, Errorf(ErrValidation, "completion date is before start date")
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		return nil, Errorf(ErrValidation, "estimated hours cannot be negative")
	}

	return s.mutateJob(ctx, jobID, func(tx *gorm.DB, job *models.Job) error {
		job.StartDate = start
		job.CompletionDate = end
		if in.EstimatedHours != nil {
			job.EstimatedHours = in.EstimatedHours
		}
		if err := tx.Omit(clause.Associations).Save(job).Error; err != nil {
			return fmt.Errorf("failed to schedule job: %w", err)
		}
		detail := fmt.Sprintf("scheduled to start %s", start.Format(dateLayout))
		if end != nil {
			detail += fmt.Sprintf(", expected completion %s", end.Format(dateLayout))
		}
		if n := strings.TrimSpace(in.Notes); n != "" {
			detail += ": " + n
		}
		return appendEvent(tx, job.ID, actor, models.EventScheduled, nil, job.Status, detail)
	})
}

// CompleteJob marks a job Completed and records the hours spent
func (s *ProductionService) CompleteJob(ctx context.Context, jobID uint, in CompleteInput, actor string) (*JobResult, error) {
	if in.ActualHours != nil && *in.ActualHours < 0 {
		return nil, Errorf(ErrValidation, "actual hours cannot be negative")
	}
	completed, err := ParseDate(in.CompletionDate)
	if err != nil {
		return nil, err
	}

	return s.mutateJob(ctx, jobID, func(tx *gorm.DB, job *models.Job) error {
		if in.ActualHours != nil {
			job.ActualHours = in.ActualHours
		}
		if completed != nil {
			job.CompletionDate = completed
		} else if job.Status != models.JobCompleted {
			t := now()
			job.CompletionDate = &t
		}
		detail := "job completed"
		if in.ActualHours != nil {
			detail = fmt.Sprintf("job completed in %.2f hours", *in.ActualHours)
		}
		if n := strings.TrimSpace(in.Notes); n != "" {
			detail += ": " + n
		}
		return transitionJob(tx, job, models.JobCompleted, actor, models.EventCompleted, detail)
	})
}

// QualityCheck records an inspection: pass completes the job, fail sends it back to Press
func (s *ProductionService) QualityCheck(ctx context.Context, jobID uint, passed bool, notes, actor string) (*JobResult, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, Errorf(ErrValidation, "quality check notes are required")
	}
	event := models.EventQualityFailed
	if passed {
		event = models.EventQualityPassed
	}
	return s.mutateJob(ctx, jobID, func(tx *gorm.DB, job *models.Job) error {
		// a pass replaces any planned completion date with the inspection time
		if passed {
			t := now()
			job.CompletionDate = &t
		}
		return transitionJob(tx, job, workflow.QualityCheckOutcome(passed), actor, event, notes)
	})
}

// RecordMaterialUsage takes stock for a job; the job history notes the usage
func (s *ProductionService) RecordMaterialUsage(ctx context.Context, jobID uint, in MaterialUsageInput, actor string) (*StockResult, error) {
	if !in.Quantity.IsPositive() {
		return nil, Errorf(ErrValidation, "quantity must be greater than zero")
	}

	var result *StockResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.First(&job, jobID).Error; err != nil {
			return notFound(err, "job", jobID)
		}
		res, err := adjustStock(tx, in.MaterialID, in.Quantity, false)
		if err != nil {
			return err
		}
		result = res
		detail := fmt.Sprintf("used %s %s of %s", in.Quantity.String(), res.Material.Unit, res.Material.Name)
		if n := strings.TrimSpace(in.Notes); n != "" {
			detail += ": " + n
		}
		return appendEvent(tx, job.ID, actor, models.EventMaterialUsed, nil, job.Status, detail)
	})
	if err != nil {
		return nil, err
	}
	result.warn()
	return result, nil
}

// AddNote appends a free-text note to a job's history. Notes are allowed on
// delivered and cancelled orders since they do not change the job.
func (s *ProductionService) AddNote(ctx context.Context, jobID uint, note, actor string) (*models.JobEvent, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, Errorf(ErrValidation, "note text is required")
	}
	var job models.Job
	if err := s.db.WithContext(ctx).Select("id", "status").First(&job, jobID).Error; err != nil {
		return nil, notFound(err, "job", jobID)
	}
	if err := appendEvent(s.db.WithContext(ctx), job.ID, actor, models.EventNote, nil, job.Status, note); err != nil {
		return nil, err
	}
	var event models.JobEvent
	if err := s.db.WithContext(ctx).Where("job_id = ?", job.ID).Order("id DESC").First(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to load job note: %w", err)
	}
	return &event, nil
}

// Board returns active jobs grouped by production stage
func (s *ProductionService) Board(ctx context.Context) (map[models.JobStatus][]models.Job, error) {
	var jobs []models.Job
	err := s.db.WithContext(ctx).
		Preload("Order.Customer").
		Preload("Product").
		Where("status <> ?", models.JobCompleted).
		Order("created_at, id").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load production board: %w", err)
	}

	board := make(map[models.JobStatus][]models.Job)
	for _, st := range models.JobStatuses {
		if st != models.JobCompleted {
			board[st] = []models.Job{}
		}
	}
	for _, j := range jobs {
		board[j.Status] = append(board[j.Status], j)
	}
	return board, nil
}

// Schedule lists unfinished jobs in planned start order; unscheduled jobs come last
func (s *ProductionService) Schedule(ctx context.Context, r DateRange) ([]models.Job, error) {
	var jobs []models.Job
	q := s.db.WithContext(ctx).
		Preload("Order.Customer").
		Preload("Product").
		Where("status <> ?", models.JobCompleted)
	if r.Start != nil {
		q = q.Where("start_date IS NULL OR start_date >= ?", startOfDay(*r.Start))
	}
	if r.End != nil {
		q = q.Where("start_date IS NULL OR start_date < ?", startOfDay(*r.End).AddDate(0, 0, 1))
	}
	if err := q.Order("CASE WHEN start_date IS NULL THEN 1 ELSE 0 END, start_date, id").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return jobs, nil
}

// Events returns a job's history, oldest first
func (s *ProductionService) Events(ctx context.Context, jobID uint) ([]models.JobEvent, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).Select("id").First(&job, jobID).Error; err != nil {
		return nil, notFound(err, "job", jobID)
	}
	var events []models.JobEvent
	if err := s.db.WithContext(ctx).Where("job_id = ?", jobID).Order("id").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to load job events: %w", err)
	}
	return events, nil
}

// mutateJob runs fn on a job inside a transaction with its order locked,
// then re-derives the order and returns both.
func (s *ProductionService) mutateJob(ctx context.Context, jobID uint, fn func(tx *gorm.DB, job *models.Job) error) (*JobResult, error) {
	var orderID uint
	{
		var job models.Job
		if err := s.db.WithContext(ctx).Select("id", "order_id").First(&job, jobID).Error; err != nil {
			return nil, notFound(err, "job", jobID)
		}
		orderID = job.OrderID
	}

	result := &JobResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
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
		if err := fn(tx, &job); err != nil {
			return err
		}
		if err := recalculateOrder(tx, order); err != nil {
			return err
		}
		result.Job = &job
		result.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// transitionJob applies a status change, persists it and appends an event
func transitionJob(tx *gorm.DB, job *models.Job, to models.JobStatus, actor, event, detail string) error {
	from := job.Status
	if err := workflow.ApplyJobStatus(job, to, now()); err != nil {
		return Errorf(ErrInvalidTransition, "%s", err.Error())
	}
	if err := tx.Omit(clause.Associations).Save(job).Error; err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if detail == "" {
		detail = fmt.Sprintf("status changed from %s to %s", from, to)
	}
	if err := appendEvent(tx, job.ID, actor, event, &from, to, detail); err != nil {
		return err
	}
	if from != to {
		metrics.Default().JobTransition(string(from), string(to))
		zap.L().Info("job status changed",
			zap.String("job_number", job.JobNumber),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.String("actor", actor))
	}
	return nil
}

func durationHours(start, end *time.Time) float64 {
	if start == nil || end == nil || end.Before(*start) {
		return 0
	}
	return end.Sub(*start).Hours()
}
