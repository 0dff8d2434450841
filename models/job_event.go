package models

import "time"

// Job event kinds
const (
	EventCreated         = "created"
	EventUpdated         = "updated"
	EventStatusChanged   = "status_changed"
	EventScheduled       = "scheduled"
	EventCompleted       = "completed"
	EventQualityPassed   = "quality_check_passed"
	EventQualityFailed   = "quality_check_failed"
	EventMaterialUsed    = "material_used"
	EventArtworkUploaded = "artwork_uploaded"
	EventNote            = "note"
)

// JobEvent is one append-only entry in a job's history
type JobEvent struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	JobID      uint       `gorm:"not null;index" json:"job_id"`
	Actor      string     `gorm:"size:64;not null" json:"actor"`
	Event      string     `gorm:"size:32;not null" json:"event"`
	FromStatus *JobStatus `gorm:"size:20" json:"from_status,omitempty"`
	ToStatus   *JobStatus `gorm:"size:20" json:"to_status,omitempty"`
	Detail     string     `gorm:"type:text" json:"detail"`
	CreatedAt  time.Time  `gorm:"index" json:"timestamp"`
}

// TableName specifies the table name for the JobEvent model
func (JobEvent) TableName() string {
	return "job_events"
}
