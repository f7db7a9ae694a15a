package store

import (
	"fmt"
	"sync"

	"github.com/neighborjob/marketplace/internal/model"
)

// JobStore is an ordered in-memory job collection, most recent first.
type JobStore struct {
	mu   sync.RWMutex
	jobs []model.Job
}

// NewJobStore creates a job store holding seed in the given order.
func NewJobStore(seed ...model.Job) *JobStore {
	s := &JobStore{jobs: make([]model.Job, 0, len(seed))}
	for _, j := range seed {
		j.Distance = nil
		s.jobs = append(s.jobs, j)
	}
	return s
}

// Append inserts job at the front. The caller supplies a fresh id.
func (s *JobStore) Append(job model.Job) error {
	job.Distance = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.jobs {
		if existing.ID == job.ID {
			return fmt.Errorf("job %q: %w", job.ID, ErrConflict)
		}
	}

	s.jobs = append(s.jobs, model.Job{})
	copy(s.jobs[1:], s.jobs)
	s.jobs[0] = job

	return nil
}

// All returns a copy of the current sequence.
func (s *JobStore) All() []model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Get returns the job with the given id.
func (s *JobStore) Get(id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return model.Job{}, fmt.Errorf("job %q: %w", id, ErrNotFound)
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
