package resumes

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"resume-portal/internal/users"
)

const pgForeignKeyViolation = "23503"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	const query = `
INSERT INTO resumes (id, owner_id, job_title, skills, languages, about, experience, visible_to_anonymous, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
ON CONFLICT (owner_id) DO NOTHING
RETURNING created_at, updated_at`
	if resume.ID == "" {
		resume.ID = uuid.NewString()
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Resume{}, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, query,
		resume.ID,
		resume.OwnerID,
		resume.JobTitle,
		resume.Skills,
		resume.Languages,
		resume.About,
		resume.Experience,
		resume.VisibleToAnonymous,
	).Scan(&resume.CreatedAt, &resume.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrAlreadyExists
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Resume{}, ErrOwnerNotFound
		}
		return Resume{}, err
	}
	if err := users.SetHasResumeTx(ctx, tx, resume.OwnerID, true); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Resume{}, ErrOwnerNotFound
		}
		return Resume{}, err
	}
	if err := tx.Commit(); err != nil {
		return Resume{}, err
	}
	return resume, nil
}

func (r *PGRepo) GetByOwnerUsername(ctx context.Context, username string) (Resume, error) {
	const query = `
SELECT r.id, r.owner_id, u.username, r.job_title, r.skills, r.languages, r.about, r.experience,
       r.visible_to_anonymous, r.created_at, r.updated_at
FROM resumes r
JOIN users u ON u.id = r.owner_id
WHERE u.username = $1
LIMIT 1`
	var resume Resume
	err := r.DB.QueryRowContext(ctx, query, username).Scan(
		&resume.ID,
		&resume.OwnerID,
		&resume.OwnerUsername,
		&resume.JobTitle,
		&resume.Skills,
		&resume.Languages,
		&resume.About,
		&resume.Experience,
		&resume.VisibleToAnonymous,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

func (r *PGRepo) ExistsForOwnerUsername(ctx context.Context, username string) (bool, error) {
	const query = `
SELECT EXISTS (
  SELECT 1 FROM resumes r JOIN users u ON u.id = r.owner_id WHERE u.username = $1
)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGRepo) Update(ctx context.Context, resume Resume) (Resume, error) {
	const query = `
UPDATE resumes SET
  job_title = $2,
  skills = $3,
  languages = $4,
  about = $5,
  experience = $6,
  visible_to_anonymous = $7,
  updated_at = now()
WHERE owner_id = $1
RETURNING id, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		resume.OwnerID,
		resume.JobTitle,
		resume.Skills,
		resume.Languages,
		resume.About,
		resume.Experience,
		resume.VisibleToAnonymous,
	).Scan(&resume.ID, &resume.CreatedAt, &resume.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}
