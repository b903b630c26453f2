package utils

import (
	"errors"
	"sync"
	"time"

	"livebait-directory/dtos"

	"github.com/google/uuid"
)

// ErrJobRunning is returned when a batch is started while another is active.
var ErrJobRunning = errors.New("an import is already running")

const jobRetention = time.Hour

// JobStore tracks import jobs in memory. At most one job is active at a
// time, so two batches never run concurrently.
type JobStore struct {
	jobs map[uuid.UUID]*dtos.ImportJob
	mu   sync.RWMutex
	now  func() time.Time
}

func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[uuid.UUID]*dtos.ImportJob),
		now:  time.Now,
	}
}

// cleanupOldJobs removes finished jobs older than jobRetention. The caller
// holds the write lock.
func (js *JobStore) cleanupOldJobs() {
	cutoff := js.now().Add(-jobRetention)
	for id, job := range js.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(js.jobs, id)
		}
	}
}

// StartJob registers a pending job, or fails with ErrJobRunning.
func (js *JobStore) StartJob(fileName string, total int) (dtos.ImportJob, error) {
	js.mu.Lock()
	defer js.mu.Unlock()

	js.cleanupOldJobs()

	for _, job := range js.jobs {
		if job.Active() {
			return dtos.ImportJob{}, ErrJobRunning
		}
	}

	job := &dtos.ImportJob{
		ID:        uuid.New(),
		FileName:  fileName,
		Status:    dtos.JobStatusPending,
		Total:     total,
		StartedAt: js.now(),
	}
	js.jobs[job.ID] = job
	return *job, nil
}

// GetJob returns a snapshot of the job.
func (js *JobStore) GetJob(id uuid.UUID) (dtos.ImportJob, bool) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	job, exists := js.jobs[id]
	if !exists {
		return dtos.ImportJob{}, false
	}
	return *job, true
}

// SetProcessing marks job as processing
func (js *JobStore) SetProcessing(id uuid.UUID) {
	js.update(id, func(job *dtos.ImportJob) {
		job.Status = dtos.JobStatusProcessing
	})
}

// SetCounts records progress of a running batch.
func (js *JobStore) SetCounts(id uuid.UUID, imported, skipped int) {
	js.update(id, func(job *dtos.ImportJob) {
		job.Imported = imported
		job.Skipped = skipped
		job.Processed = imported + skipped
		if job.Total > 0 {
			job.Progress = job.Processed * 100 / job.Total
		}
	})
}

// CompleteJob marks a job as finished, freeing the import slot. A non-nil
// err marks it failed.
func (js *JobStore) CompleteJob(id uuid.UUID, err error) {
	js.update(id, func(job *dtos.ImportJob) {
		job.Status = dtos.JobStatusCompleted
		if err != nil {
			job.Status = dtos.JobStatusFailed
			job.Error = err.Error()
		}
		job.Progress = 100
		now := js.now()
		job.CompletedAt = &now
	})
}

func (js *JobStore) update(id uuid.UUID, fn func(*dtos.ImportJob)) {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[id]; exists {
		fn(job)
	}
}
