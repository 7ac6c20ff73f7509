package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

// accessChecker decides whether an actor may see or change a candidate's records.
type accessChecker struct {
	recruiters repository.RecruiterRepository
}

// recruiterFor returns the recruiter profile of a recruiter actor.
func (a accessChecker) recruiterFor(ctx context.Context, actor Actor) (*model.Recruiter, error) {
	if actor.Role != model.RoleRecruiter {
		return nil, errors.ErrForbidden
	}
	recruiter, err := a.recruiters.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrForbidden
		}
		return nil, fmt.Errorf("find recruiter: %w", err)
	}
	if !recruiter.IsActive {
		return nil, errors.ErrForbidden
	}
	return recruiter, nil
}

// canAccessCandidate allows admins, the candidate itself and the recruiter it is assigned to.
func (a accessChecker) canAccessCandidate(ctx context.Context, actor Actor, candidate *model.Candidate) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleCandidate:
		if candidate.UserID == actor.UserID {
			return nil
		}
	case model.RoleRecruiter:
		recruiter, err := a.recruiterFor(ctx, actor)
		if err != nil {
			return err
		}
		if candidate.AssignedRecruiterID != nil && *candidate.AssignedRecruiterID == recruiter.ID {
			return nil
		}
	}
	return errors.ErrForbidden
}
