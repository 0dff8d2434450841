package models

import (
	"time"

	"gorm.io/gorm"
)

// Job is a single produced item within an order
type Job struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	JobNumber      string     `gorm:"uniqueIndex;size:32;not null" json:"job_number"`
	OrderID        uint       `gorm:"not null;index" json:"order_id"`
	Order          *Order     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	ProductID      uint       `gorm:"not null;index" json:"product_id"`
	Product        *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity       int        `gorm:"not null;check:quantity > 0" json:"quantity"`
	Status         JobStatus  `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	StartDate      *time.Time `json:"start_date"`
	CompletionDate *time.Time `json:"completion_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	Notes          string     `gorm:"type:text" json:"notes"`

	// Print specifications
	Width     *float64 `json:"width"`
	Height    *float64 `json:"height"`
	Pages     *int     `json:"pages"`
	Colors    string   `gorm:"size:50" json:"colors"`
	PaperType string   `gorm:"size:100" json:"paper_type"`
	Finishing string   `gorm:"size:200" json:"finishing"`

	FilePath string  `gorm:"size:255" json:"file_path,omitempty"`
	FileURL  *string `gorm:"-" json:"file_url,omitempty"` // computed, artwork download location

	Events    []JobEvent     `gorm:"foreignKey:JobID" json:"events,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Job model
func (Job) TableName() string {
	return "jobs"
}
