package applications

import (
	"context"
	"sort"
	"sync"
	"time"

	"ngmi-backend/internal/scoring"
)

type pairKey struct {
	userID int64
	jobID  int64
}

// MemoryRepo keeps applications and scores in process. It enforces the
// (user, job) uniqueness the PG schema declares. Jobs and Resumes feed the
// joined read models and must not call back into this repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	nextID  int64
	apps    map[int64]Application
	byPair  map[pairKey]int64
	scoreID int64
	scores  map[int64][]scoreRow

	Jobs    JobLookup
	Resumes ResumeLookup
}

type scoreRow struct {
	id int64
	Score
}

func NewMemoryRepo(jobsLookup JobLookup, resumesLookup ResumeLookup) *MemoryRepo {
	return &MemoryRepo{
		apps:    make(map[int64]Application),
		byPair:  make(map[pairKey]int64),
		scores:  make(map[int64][]scoreRow),
		Jobs:    jobsLookup,
		Resumes: resumesLookup,
	}
}

func (r *MemoryRepo) FindByUserJob(ctx context.Context, userID, jobID int64) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[pairKey{userID, jobID}]
	return id, ok, nil
}

func (r *MemoryRepo) Create(ctx context.Context, userID, jobID, resumeID int64) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{userID, jobID}
	if id, ok := r.byPair[key]; ok {
		return id, false, nil
	}
	r.nextID++
	r.apps[r.nextID] = Application{
		ID:        r.nextID,
		UserID:    userID,
		JobID:     jobID,
		ResumeID:  resumeID,
		AppliedAt: time.Now().UTC(),
		Status:    StatusSubmitted,
	}
	r.byPair[key] = r.nextID
	return r.nextID, true, nil
}

func (r *MemoryRepo) InsertScore(ctx context.Context, applicationID int64, v scoring.Verdict) (Score, error) {
	if err := ctx.Err(); err != nil {
		return Score{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[applicationID]; !ok {
		return Score{}, ErrNotFound
	}
	if len(r.scores[applicationID]) > 0 {
		return Score{}, ErrScoreExists
	}
	r.scoreID++
	s := Score{
		ApplicationID: applicationID,
		Score:         v.Score,
		Comment:       v.Comment,
		Feedback:      v.Feedback,
		GeneratedAt:   time.Now().UTC(),
	}
	r.scores[applicationID] = append(r.scores[applicationID], scoreRow{id: r.scoreID, Score: s})
	return s, nil
}

func (r *MemoryRepo) LatestScore(ctx context.Context, applicationID int64) (Score, error) {
	if err := ctx.Err(); err != nil {
		return Score{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.latestLocked(applicationID)
	if !ok {
		return Score{}, ErrNoScore
	}
	return s, nil
}

// latestLocked relies on rows being appended in id order.
func (r *MemoryRepo) latestLocked(applicationID int64) (Score, bool) {
	rows := r.scores[applicationID]
	if len(rows) == 0 {
		return Score{}, false
	}
	return rows[len(rows)-1].Score, true
}

func (r *MemoryRepo) ListForUser(ctx context.Context, userID int64) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type entry struct {
		app   Application
		score Score
		has   bool
	}
	r.mu.RLock()
	var entries []entry
	for _, app := range r.apps {
		if app.UserID != userID {
			continue
		}
		s, ok := r.latestLocked(app.ID)
		entries = append(entries, entry{app: app, score: s, has: ok})
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].app, entries[j].app
		if !a.AppliedAt.Equal(b.AppliedAt) {
			return a.AppliedAt.After(b.AppliedAt)
		}
		return a.ID > b.ID
	})

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		job, err := r.Jobs.Get(ctx, e.app.JobID)
		if err != nil {
			// Inner join semantics: rows without a posting are skipped.
			continue
		}
		item := Summary{
			ID:        e.app.ID,
			AppliedAt: e.app.AppliedAt,
			Status:    e.app.Status,
			Title:     job.Title,
			Company:   job.Company,
		}
		if e.has {
			score, comment := e.score.Score, e.score.Comment
			item.NGMIScore = &score
			item.NGMIComment = &comment
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *MemoryRepo) NGMIDetail(ctx context.Context, applicationID int64) (Detail, error) {
	if err := ctx.Err(); err != nil {
		return Detail{}, err
	}
	r.mu.RLock()
	app, ok := r.apps[applicationID]
	s, scored := r.latestLocked(applicationID)
	r.mu.RUnlock()
	if !ok || !scored {
		return Detail{}, ErrNoScore
	}

	job, err := r.Jobs.Get(ctx, app.JobID)
	if err != nil {
		return Detail{}, ErrNoScore
	}
	resume, err := r.Resumes.Get(ctx, app.ResumeID)
	if err != nil {
		return Detail{}, ErrNoScore
	}
	return Detail{
		ApplicationID:  app.ID,
		Title:          job.Title,
		Company:        job.Company,
		JobDescription: job.Description,
		ResumeFileName: resume.FileName,
		NGMIScore:      s.Score,
		NGMIComment:    s.Comment,
		Feedback:       s.Feedback,
		GeneratedAt:    s.GeneratedAt,
	}, nil
}

func (r *MemoryRepo) DeleteOwned(ctx context.Context, userID, applicationID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[applicationID]
	if !ok || app.UserID != userID {
		return ErrNotFound
	}
	r.deleteLocked(app)
	return nil
}

func (r *MemoryRepo) deleteLocked(app Application) {
	delete(r.scores, app.ID)
	delete(r.byPair, pairKey{app.UserID, app.JobID})
	delete(r.apps, app.ID)
}

// HasJob reports whether any application references the job. It backs the
// jobs memory repo's delete guard.
func (r *MemoryRepo) HasJob(jobID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, app := range r.apps {
		if app.JobID == jobID {
			return true
		}
	}
	return false
}

// DeleteByResume removes every application made with the resume together
// with its scores. It backs the resumes memory repo's cascade.
func (r *MemoryRepo) DeleteByResume(resumeID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.ResumeID == resumeID {
			r.deleteLocked(app)
		}
	}
}
