package storage

import (
	"fmt"
	"sort"
	"sync"

	"micrositepilot/pkg/models"
)

var ErrJobNotFound = fmt.Errorf("job not found")

// JobStore tracks in-flight and finished pipeline jobs. In-memory
// only; job state does not survive a restart. Reads return copies so
// concurrent pipeline writes cannot race with handler encoding.
type JobStore interface {
	StoreJob(job *models.Job) error
	GetJob(id string) (*models.Job, error)
	ListJobs() ([]*models.Job, error)
	UpdateJob(id string, fn func(*models.Job)) error
	UpdateJobStatus(id string, status models.JobStatus) error
}

type jobStore struct {
	jobs map[string]*models.Job
	mu   sync.RWMutex
}

func NewJobStore() JobStore {
	return &jobStore{
		jobs: make(map[string]*models.Job),
	}
}

func (s *jobStore) StoreJob(job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *jobStore) GetJob(id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *jobStore) ListJobs() ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		copied := *job
		jobs = append(jobs, &copied)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func (s *jobStore) UpdateJob(id string, fn func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return ErrJobNotFound
	}
	fn(job)
	return nil
}

func (s *jobStore) UpdateJobStatus(id string, status models.JobStatus) error {
	return s.UpdateJob(id, func(job *models.Job) {
		job.Status = status
	})
}
