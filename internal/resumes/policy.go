package resumes

import (
	"context"
	"errors"

	"resume-portal/internal/shared/identity"
)

// Denial reasons carried by Decision.
const (
	ReasonAnonymousNotAllowed = "anonymous_not_allowed"
	ReasonResumeExists        = "resume_exists"
	ReasonResumeNotFound      = "resume_not_found"
	ReasonNotOwner            = "not_owner"
)

// Decision is the outcome of an access check. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Policy answers access questions against the current store state. It never mutates.
type Policy struct {
	Repo Repo
}

func NewPolicy(repo Repo) *Policy {
	return &Policy{Repo: repo}
}

// CanView allows authenticated viewers, and anonymous viewers when the owner opted in.
func (p *Policy) CanView(viewer identity.Identity, r Resume) Decision {
	if viewer.Authenticated() || r.VisibleToAnonymous {
		return allow()
	}
	return deny(ReasonAnonymousNotAllowed)
}

// CanCreate allows creation while no resume exists for targetUsername.
func (p *Policy) CanCreate(ctx context.Context, actor identity.Identity, targetUsername string) (Decision, error) {
	exists, err := p.Repo.ExistsForOwnerUsername(ctx, targetUsername)
	if err != nil {
		return Decision{}, err
	}
	if exists {
		return deny(ReasonResumeExists), nil
	}
	return allow(), nil
}

// CanEdit allows only the owner of an existing resume.
func (p *Policy) CanEdit(ctx context.Context, actor identity.Identity, targetUsername string) (Decision, error) {
	resume, err := p.Repo.GetByOwnerUsername(ctx, targetUsername)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return deny(ReasonResumeNotFound), nil
		}
		return Decision{}, err
	}
	if !actor.Is(resume.OwnerUsername) {
		return deny(ReasonNotOwner), nil
	}
	return allow(), nil
}
