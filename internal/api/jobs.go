package api

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/insightdelivered/cashier-report-converter/internal/models"
	"github.com/insightdelivered/cashier-report-converter/internal/writer"
)

// Job states.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobDone      = "done"
	JobFailed    = "failed"
	JobCancelled = "cancelled"
)

// Job is one conversion request and, once finished, its staged output.
type Job struct {
	ID          string                     `json:"jobId"`
	Status      string                     `json:"status"`
	Filename    string                     `json:"filename"`
	Format      string                     `json:"format"`
	Progress    models.Progress            `json:"progress"`
	Count       int                        `json:"count"`
	Pages       int                        `json:"pages"`
	Dropped     int                        `json:"droppedBlocks"`
	Preview     []models.TransactionRecord `json:"preview,omitempty"`
	Diagnostics []string                   `json:"diagnostics,omitempty"`
	Warning     string                     `json:"warning,omitempty"`
	Error       string                     `json:"error,omitempty"`
	CreatedAt   time.Time                  `json:"createdAt"`
	FinishedAt  *time.Time                 `json:"finishedAt,omitempty"`

	outputPath string
	cancel     context.CancelFunc
}

// JobStore keeps jobs in memory. It is safe for concurrent use.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobStore returns an empty store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Create registers a new pending job whose output will be staged in
// outputDir, and returns a copy of it.
func (s *JobStore) Create(filename, format, outputDir string) Job {
	id := uuid.NewString()
	job := &Job{
		ID:         id,
		Status:     JobPending,
		Filename:   filename,
		Format:     format,
		CreatedAt:  time.Now(),
		outputPath: filepath.Join(outputDir, id+writer.Extension(format)),
	}
	s.mu.Lock()
	s.jobs[id] = job
	s.mu.Unlock()
	return *job
}

// Get returns a copy of the job.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Update applies fn to the job under the store lock.
func (s *JobStore) Update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

// Finished returns the finished jobs created before cutoff, oldest first.
func (s *JobStore) Finished(cutoff time.Time) []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Job
	for _, job := range s.jobs {
		if job.FinishedAt != nil && job.CreatedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Delete removes the job.
func (s *JobStore) Delete(id string) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}

// CancelAll cancels every job still running.
func (s *JobStore) CancelAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, job := range s.jobs {
		if job.cancel != nil && job.FinishedAt == nil {
			job.cancel()
		}
	}
}

// Active counts jobs that have not finished.
func (s *JobStore) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, job := range s.jobs {
		if job.FinishedAt == nil {
			n++
		}
	}
	return n
}
