package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-portal/internal/shared/auth"
	"resume-portal/internal/shared/util"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

var errNotConfigured = errors.New("users service not configured")

type Service struct {
	Repo      Repo
	Passwords *auth.PasswordConfig
}

func NewService(repo Repo, passwords *auth.PasswordConfig) *Service {
	return &Service{Repo: repo, Passwords: passwords}
}

// Registration is the input of a password signup.
type Registration struct {
	Username string
	Email    string
	FullName string
	Password string
}

func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	if s == nil || s.Repo == nil || s.Passwords == nil {
		return User{}, errNotConfigured
	}
	username := strings.TrimSpace(reg.Username)
	if !util.ValidUsername(username) {
		return User{}, util.ErrInvalidUsername
	}
	hash, err := s.Passwords.HashPassword(reg.Password)
	if err != nil {
		return User{}, err
	}
	return s.Repo.Create(ctx, User{
		Username:     username,
		Email:        strings.TrimSpace(reg.Email),
		FullName:     strings.TrimSpace(reg.FullName),
		PasswordHash: hash,
	})
}

// Authenticate returns the user when password matches, ErrInvalidCredentials otherwise.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	if s == nil || s.Repo == nil || s.Passwords == nil {
		return User{}, errNotConfigured
	}
	user, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := s.Passwords.VerifyPassword(password, user.PasswordHash); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	if s == nil || s.Repo == nil {
		return false, errNotConfigured
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}
	return s.Repo.ExistsByUsername(ctx, username)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errNotConfigured
	}
	if strings.TrimSpace(username) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByUsername(ctx, username)
}

// GoogleProfile is the subset of the Google userinfo payload used for login.
type GoogleProfile struct {
	Subject  string
	Email    string
	FullName string
}

// FindOrCreateFromGoogle returns the password-less account registered with the
// profile's email, creating one when none exists. Password accounts are never
// linked since their email is unverified; they yield ErrEmailTaken.
func (s *Service) FindOrCreateFromGoogle(ctx context.Context, profile GoogleProfile) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errNotConfigured
	}
	email := strings.TrimSpace(profile.Email)
	if email == "" || strings.TrimSpace(profile.Subject) == "" {
		return User{}, errors.New("google profile subject and email are required")
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	if err == nil {
		if user.PasswordHash != "" {
			return User{}, ErrEmailTaken
		}
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	base, err := util.SanitizeUsername(email)
	if err != nil {
		base = "user"
	}
	candidates := []string{
		base,
		base + "_" + util.ShortHash(profile.Subject, 6),
		base + "_" + util.ShortHash(profile.Subject, 12),
	}
	for _, username := range candidates {
		if len(username) > util.MaxUsernameLength {
			continue
		}
		user, err = s.Repo.Create(ctx, User{
			Username: username,
			Email:    email,
			FullName: strings.TrimSpace(profile.FullName),
		})
		if errors.Is(err, ErrUsernameTaken) {
			continue
		}
		return user, err
	}
	return User{}, fmt.Errorf("derive username for %s: %w", email, ErrUsernameTaken)
}
