package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	nextID  int64
	resumes map[int64]Resume

	nextSkillID int64
	skills      map[string]int64
	links       map[int64]map[int64]struct{}

	// UserExists stands in for the users foreign key. Nil accepts any user.
	UserExists func(userID int64) bool
	// DeleteDependents removes applications and scores referencing a resume.
	// Wired to the applications memory repo.
	DeleteDependents func(resumeID int64)
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		resumes: make(map[int64]Resume),
		skills:  make(map[string]int64),
		links:   make(map[int64]map[int64]struct{}),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, res Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	if r.UserExists != nil && !r.UserExists(res.UserID) {
		return Resume{}, ErrUserNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	res.ID = r.nextID
	res.UploadedAt = time.Now().UTC()
	r.resumes[res.ID] = res
	return res, nil
}

func (r *MemoryRepo) Get(ctx context.Context, resumeID int64) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resumes[resumeID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return res, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID int64) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Summary{}
	for _, res := range r.resumes {
		if res.UserID == userID {
			out = append(out, Summary{ID: res.ID, FileName: res.FileName, UploadedAt: res.UploadedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) Skills(ctx context.Context, resumeID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []string{}
	for name, id := range r.skills {
		if _, ok := r.links[resumeID][id]; ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *MemoryRepo) UpsertSkill(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.skills[name]; ok {
		return id, nil
	}
	r.nextSkillID++
	r.skills[name] = r.nextSkillID
	return r.nextSkillID, nil
}

func (r *MemoryRepo) LinkSkill(ctx context.Context, resumeID, skillID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resumes[resumeID]; !ok {
		return ErrNotFound
	}
	set, ok := r.links[resumeID]
	if !ok {
		set = make(map[int64]struct{})
		r.links[resumeID] = set
	}
	set[skillID] = struct{}{}
	return nil
}

func (r *MemoryRepo) DeleteOwned(ctx context.Context, userID, resumeID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resumes[resumeID]
	if !ok || res.UserID != userID {
		return "", ErrNotFound
	}
	if r.DeleteDependents != nil {
		r.DeleteDependents(resumeID)
	}
	delete(r.links, resumeID)
	delete(r.resumes, resumeID)
	return res.FilePath, nil
}

// Owned reports whether the resume exists and belongs to the user.
func (r *MemoryRepo) Owned(resumeID, userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resumes[resumeID]
	return ok && res.UserID == userID
}
