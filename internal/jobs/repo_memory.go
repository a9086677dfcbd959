package jobs

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	jobs   map[int64]Job

	// HasApplications reports whether any application references a job.
	// Wired to the applications memory repo; nil means none do.
	HasApplications func(jobID int64) bool
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[int64]Job)}
}

func (r *MemoryRepo) Add(ctx context.Context, job Job) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.jobs {
		if existing.Title == job.Title && existing.Company == job.Company {
			return Job{}, ErrDuplicate
		}
	}
	r.nextID++
	job.ID = r.nextID
	r.jobs[job.ID] = job
	return job, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, jobID int64) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, jobID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.HasApplications != nil && r.HasApplications(jobID) {
		return ErrHasApplications
	}
	if _, ok := r.jobs[jobID]; !ok {
		return ErrNotFound
	}
	delete(r.jobs, jobID)
	return nil
}

// Seed loads the sample postings the SQL seed migration inserts, so the
// in-memory mode starts with the same catalogue.
func (r *MemoryRepo) Seed(ctx context.Context) error {
	for _, job := range SamplePostings() {
		if _, err := r.Add(ctx, job); err != nil && err != ErrDuplicate {
			return err
		}
	}
	return nil
}

// SamplePostings mirrors migrations/00002_seed_jobs.sql.
func SamplePostings() []Job {
	return []Job{
		{Title: "Software Engineer", Company: "TechCorp", Description: "Looking for a Python developer with 3+ years experience. Must know Django, PostgreSQL, and have strong problem-solving skills."},
		{Title: "Data Scientist", Company: "DataFlow Inc", Description: "Seeking ML engineer with Python, TensorFlow, and statistics background. PhD preferred but not required."},
		{Title: "Frontend Developer", Company: "WebWorks", Description: "React/TypeScript developer needed. Must have experience with modern CSS, REST APIs, and agile development."},
		{Title: "DevOps Engineer", Company: "CloudFirst", Description: "AWS/Docker expert wanted. Kubernetes, CI/CD, and infrastructure as code experience required."},
		{Title: "Product Manager", Company: "StartupXYZ", Description: "Technical PM with engineering background. Must understand software development lifecycle and user research."},
	}
}
