package services

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// now is the service clock; tests replace it
var now = time.Now

const dateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC 3339; an empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, Errorf(ErrValidation, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

// DateRange filters records by created_at; End is inclusive of the whole day.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ParseDateRange parses start and end dates, rejecting an end before the start
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	var err error
	if r.Start, err = ParseDate(start); err != nil {
		return r, err
	}
	if r.End, err = ParseDate(end); err != nil {
		return r, err
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return r, Errorf(ErrValidation, "end date is before start date")
	}
	return r, nil
}

// Scope applies the range to column as [start 00:00, end+1 day)
func (r DateRange) Scope(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.Start != nil {
			db = db.Where(column+" >= ?", startOfDay(*r.Start))
		}
		if r.End != nil {
			db = db.Where(column+" < ?", startOfDay(*r.End).AddDate(0, 0, 1))
		}
		return db
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// Scope applies offset and limit
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	if p.Size <= 0 {
		return db
	}
	number := p.Number
	if number <= 0 {
		number = 1
	}
	return db.Offset((number - 1) * p.Size).Limit(p.Size)
}
