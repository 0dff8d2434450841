package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kendall-kelly/printshop-api/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sequencer allocates the next document number for a prefix and day
type Sequencer interface {
	Next(ctx context.Context, tx *gorm.DB, prefix string, day time.Time) (string, error)
}

// DBSequencer scans existing numbers for the day and takes the next suffix.
// Two concurrent callers can compute the same number; the unique index
// rejects the loser and callers retry through withNumberRetry.
type DBSequencer struct{}

// Next returns the next free number for prefix on day
func (DBSequencer) Next(ctx context.Context, tx *gorm.DB, prefix string, day time.Time) (string, error) {
	seq, err := nextFromDB(ctx, tx, prefix, day)
	if err != nil {
		return "", err
	}
	return workflow.FormatNumber(prefix, day, seq), nil
}

func nextFromDB(ctx context.Context, tx *gorm.DB, prefix string, day time.Time) (int, error) {
	table, column, err := numberColumn(prefix)
	if err != nil {
		return 0, err
	}
	var numbers []string
	err = tx.WithContext(ctx).
		Table(table).
		Where(column+" LIKE ?", workflow.NumberPattern(prefix, day)).
		Pluck(column, &numbers).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s numbers: %w", prefix, err)
	}
	return workflow.NextSequence(numbers, prefix, day), nil
}

func numberColumn(prefix string) (table, column string, err error) {
	switch prefix {
	case workflow.PrefixOrder, workflow.PrefixQuote:
		return "orders", "order_number", nil
	case workflow.PrefixJob:
		return "jobs", "job_number", nil
	case workflow.PrefixInvoice:
		return "invoices", "invoice_number", nil
	}
	return "", "", fmt.Errorf("unknown document prefix %q", prefix)
}

var sequencerInstance Sequencer = DBSequencer{}

// GetSequencer returns the configured sequencer
func GetSequencer() Sequencer {
	return sequencerInstance
}

// SetSequencer replaces the sequencer (Redis in production, DB scan by default)
func SetSequencer(s Sequencer) {
	sequencerInstance = s
}

const maxNumberAttempts = 3

// withNumberRetry runs fn again when it fails on a unique-number collision
func withNumberRetry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		if err = fn(); !isUniqueViolation(err) {
			return err
		}
		zap.L().Warn("document number collision, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
	}
	return fmt.Errorf("failed to allocate a unique document number after %d attempts: %w", maxNumberAttempts, err)
}
