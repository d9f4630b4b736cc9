package task

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrJobNotFound is returned when a job ID is unknown
var ErrJobNotFound = errors.New("generation job not found")

// JobStatus represents the externally visible state of a generation job
type JobStatus string

// Job lifecycle: idle until a worker picks the job up, processing
// while it runs, then exactly one of success or error.
const (
	JobStatusIdle       JobStatus = "idle"
	JobStatusProcessing JobStatus = "processing"
	JobStatusSuccess    JobStatus = "success"
	JobStatusError      JobStatus = "error"
)

// Job is a point-in-time view of a generation job's progress.
type Job struct {
	ID         uuid.UUID `json:"id"`
	DeckID     uuid.UUID `json:"deckId"`
	Status     JobStatus `json:"status"`
	Progress   int       `json:"progress"`
	Stage      string    `json:"stage"`
	Error      string    `json:"error,omitempty"`
	CardsAdded int       `json:"cardsAdded"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Terminal reports whether the job has finished, successfully or not.
func (j Job) Terminal() bool {
	return j.Status == JobStatusSuccess || j.Status == JobStatusError
}

// jobRetention is how long a finished job stays pollable. Clients poll
// on a second-scale interval, so an hour is generous.
const jobRetention = time.Hour

// JobTracker records generation job progress for polling by clients.
// Terminal jobs past the retention window are pruned on the next
// Create, keeping the map bounded over the process lifetime.
type JobTracker struct {
	mu        sync.RWMutex
	jobs      map[uuid.UUID]Job
	now       func() time.Time
	retention time.Duration
}

func NewJobTracker() *JobTracker {
	return &JobTracker{
		jobs:      make(map[uuid.UUID]Job),
		now:       time.Now,
		retention: jobRetention,
	}
}

// Create registers a new idle job for the given deck.
func (t *JobTracker) Create(deckID uuid.UUID) Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.pruneLocked(now)
	job := Job{
		ID:        uuid.New(),
		DeckID:    deckID,
		Status:    JobStatusIdle,
		Stage:     "Queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.jobs[job.ID] = job
	return job
}

// pruneLocked evicts terminal jobs whose last update is past the
// retention window. Running jobs are never evicted.
func (t *JobTracker) pruneLocked(now time.Time) {
	for id, job := range t.jobs {
		if job.Terminal() && now.Sub(job.UpdatedAt) > t.retention {
			delete(t.jobs, id)
		}
	}
}

// Get returns a snapshot of the job's current state.
func (t *JobTracker) Get(id uuid.UUID) (Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job, nil
}

// advance moves a running job forward. Progress never decreases and
// terminal jobs are left untouched.
func (t *JobTracker) advance(id uuid.UUID, progress int, stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok || job.Terminal() {
		return
	}
	job.Status = JobStatusProcessing
	if progress > job.Progress {
		job.Progress = progress
	}
	job.Stage = stage
	job.UpdatedAt = t.now()
	t.jobs[id] = job
}

// succeed marks the job complete.
func (t *JobTracker) succeed(id uuid.UUID, cardsAdded int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok || job.Terminal() {
		return
	}
	job.Status = JobStatusSuccess
	job.Progress = 100
	job.Stage = "Done"
	job.CardsAdded = cardsAdded
	job.UpdatedAt = t.now()
	t.jobs[id] = job
}

// fail marks the job failed with the collaborator's message, shown to
// the user verbatim.
func (t *JobTracker) fail(id uuid.UUID, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok || job.Terminal() {
		return
	}
	job.Status = JobStatusError
	job.Stage = "Failed"
	job.Error = message
	job.UpdatedAt = t.now()
	t.jobs[id] = job
}
