package resumes

import (
	"context"
	"errors"
	"strings"
	"time"

	"resume-portal/internal/llm"
	"resume-portal/internal/shared/identity"
	"resume-portal/internal/shared/metrics"
	"resume-portal/internal/shared/telemetry"
	"resume-portal/internal/users"
)

var errNotConfigured = errors.New("resumes service not configured")

// UserLookup resolves users by username.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (users.User, error)
}

type Service struct {
	Repo      Repo
	Users     UserLookup
	Completer llm.Client
}

func NewService(repo Repo, lookup UserLookup, completer llm.Client) *Service {
	return &Service{Repo: repo, Users: lookup, Completer: completer}
}

// Create stores a resume owned by actor.
func (s *Service) Create(ctx context.Context, actor identity.Identity, form Form) (Resume, error) {
	if s == nil || s.Repo == nil || s.Users == nil {
		return Resume{}, errNotConfigured
	}
	owner, err := s.owner(ctx, actor)
	if err != nil {
		return Resume{}, err
	}
	created, err := s.Repo.Create(ctx, form.apply(Resume{OwnerID: owner.ID}))
	if err != nil {
		return Resume{}, err
	}
	created.OwnerUsername = owner.Username
	metrics.IncResumeCreated()
	telemetry.Info("resume.created", map[string]any{
		"resume_id": created.ID,
		"owner":     owner.Username,
	})
	return created, nil
}

// Update replaces the fields of actor's resume.
func (s *Service) Update(ctx context.Context, actor identity.Identity, form Form) (Resume, error) {
	if s == nil || s.Repo == nil || s.Users == nil {
		return Resume{}, errNotConfigured
	}
	owner, err := s.owner(ctx, actor)
	if err != nil {
		return Resume{}, err
	}
	updated, err := s.Repo.Update(ctx, form.apply(Resume{OwnerID: owner.ID}))
	if err != nil {
		return Resume{}, err
	}
	updated.OwnerUsername = owner.Username
	return updated, nil
}

// Get returns the resume of username along with its owner.
func (s *Service) Get(ctx context.Context, username string) (Resume, users.User, error) {
	if s == nil || s.Repo == nil || s.Users == nil {
		return Resume{}, users.User{}, errNotConfigured
	}
	resume, err := s.Repo.GetByOwnerUsername(ctx, username)
	if err != nil {
		return Resume{}, users.User{}, err
	}
	owner, err := s.Users.GetByUsername(ctx, resume.OwnerUsername)
	if err != nil {
		return Resume{}, users.User{}, err
	}
	return resume, owner, nil
}

// Ask sends the question prompt to the completion gateway.
func (s *Service) Ask(ctx context.Context, q QuestionForm) (string, error) {
	if s == nil || s.Completer == nil {
		return "", errNotConfigured
	}
	start := time.Now()
	answer, err := s.Completer.Complete(ctx, BuildQuestionPrompt(q))
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.ObserveCompletion(outcome, time.Since(start))
	return answer, err
}

func (s *Service) owner(ctx context.Context, actor identity.Identity) (users.User, error) {
	if !actor.Authenticated() {
		return users.User{}, ErrOwnerNotFound
	}
	owner, err := s.Users.GetByUsername(ctx, strings.TrimSpace(actor.Username))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, ErrOwnerNotFound
		}
		return users.User{}, err
	}
	return owner, nil
}
