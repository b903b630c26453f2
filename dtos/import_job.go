package dtos

import (
	"time"

	"github.com/google/uuid"
)

// ImportJob is the status of one background import batch.
type ImportJob struct {
	ID          uuid.UUID  `json:"id"`
	FileName    string     `json:"file_name"`
	Status      string     `json:"status"`   // pending, processing, completed, failed
	Progress    int        `json:"progress"` // 0-100 percentage
	Total       int        `json:"total"`
	Processed   int        `json:"processed"`
	Imported    int        `json:"imported"`
	Skipped     int        `json:"skipped"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// JobStatus constants
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Active reports whether the job still holds the import slot.
func (j ImportJob) Active() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusProcessing
}
