package resumes

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-portal/internal/users"
)

// OwnerStore is the part of the user store the memory repo relies on.
type OwnerStore interface {
	GetByUsername(ctx context.Context, username string) (users.User, error)
	SetHasResume(ctx context.Context, userID string, hasResume bool) error
}

type MemoryRepo struct {
	mu      sync.RWMutex
	owners  OwnerStore
	byOwner map[string]Resume
}

func NewMemoryRepo(owners OwnerStore) *MemoryRepo {
	return &MemoryRepo{owners: owners, byOwner: make(map[string]Resume)}
}

func (r *MemoryRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byOwner[resume.OwnerID]; ok {
		return Resume{}, ErrAlreadyExists
	}
	if err := r.owners.SetHasResume(ctx, resume.OwnerID, true); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Resume{}, ErrOwnerNotFound
		}
		return Resume{}, err
	}
	if resume.ID == "" {
		resume.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	resume.CreatedAt = now
	resume.UpdatedAt = now
	r.byOwner[resume.OwnerID] = resume
	return resume, nil
}

func (r *MemoryRepo) GetByOwnerUsername(ctx context.Context, username string) (Resume, error) {
	owner, err := r.owner(ctx, username)
	if err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.byOwner[owner.ID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	resume.OwnerUsername = owner.Username
	return resume, nil
}

func (r *MemoryRepo) ExistsForOwnerUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByOwnerUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *MemoryRepo) Update(ctx context.Context, resume Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byOwner[resume.OwnerID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	resume.ID = existing.ID
	resume.CreatedAt = existing.CreatedAt
	resume.UpdatedAt = time.Now().UTC()
	r.byOwner[resume.OwnerID] = resume
	return resume, nil
}

func (r *MemoryRepo) owner(ctx context.Context, username string) (users.User, error) {
	if err := ctx.Err(); err != nil {
		return users.User{}, err
	}
	owner, err := r.owners.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	return owner, nil
}
