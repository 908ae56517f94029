package resumes

import "context"

// Repo stores at most one resume per owner.
type Repo interface {
	// Create stores the resume and marks its owner as having one. It fails with
	// ErrAlreadyExists, leaving state untouched, when the owner already has a resume.
	Create(ctx context.Context, resume Resume) (Resume, error)
	GetByOwnerUsername(ctx context.Context, username string) (Resume, error)
	ExistsForOwnerUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, resume Resume) (Resume, error)
}
