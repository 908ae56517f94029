package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	emailUniqueIndex  = "users_email_lower_idx"
	selectUserColumns = `id, username, email, full_name, password_hash, has_resume, created_at, updated_at`
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (id, username, email, full_name, password_hash, has_resume, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, FALSE, now(), now())
RETURNING created_at, updated_at`
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	err := r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Username,
		nullableString(strings.TrimSpace(user.Email)),
		nullableString(user.FullName),
		nullableString(user.PasswordHash),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if pgErr.ConstraintName == emailUniqueIndex {
				return User{}, ErrEmailTaken
			}
			return User{}, ErrUsernameTaken
		}
		return User{}, err
	}
	user.HasResume = false
	return user, nil
}

func (r *PGRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	const query = `
SELECT ` + selectUserColumns + `
FROM users
WHERE username = $1
LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, username))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT ` + selectUserColumns + `
FROM users
WHERE lower(email) = lower($1)
LIMIT 1`
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, ErrNotFound
	}
	return scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGRepo) SetHasResume(ctx context.Context, userID string, hasResume bool) error {
	return SetHasResumeTx(ctx, r.DB, userID, hasResume)
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SetHasResumeTx flips the has_resume flag using exec, which may be a transaction.
func SetHasResumeTx(ctx context.Context, exec Execer, userID string, hasResume bool) error {
	const query = `UPDATE users SET has_resume = $2, updated_at = now() WHERE id = $1`
	res, err := exec.ExecContext(ctx, query, userID, hasResume)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (User, error) {
	var user User
	var email sql.NullString
	var fullName sql.NullString
	var passwordHash sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Username,
		&email,
		&fullName,
		&passwordHash,
		&user.HasResume,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if email.Valid {
		user.Email = email.String
	}
	if fullName.Valid {
		user.FullName = fullName.String
	}
	if passwordHash.Valid {
		user.PasswordHash = passwordHash.String
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
