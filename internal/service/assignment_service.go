package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"recruitflow/internal/cache"
	"recruitflow/internal/errors"
	"recruitflow/internal/logger"
	"recruitflow/internal/model"
	"recruitflow/internal/notify"
	"recruitflow/internal/repository"
)

// AssignInput links a candidate to a recruiter.
type AssignInput struct {
	CandidateID string `json:"candidateId" validate:"required,uuid"`
	RecruiterID string `json:"recruiterId" validate:"required,uuid"`
}

// UnassignInput releases a candidate from its recruiter.
type UnassignInput struct {
	CandidateID string `json:"candidateId" validate:"required,uuid"`
}

// AssignmentService links candidates to recruiters.
type AssignmentService interface {
	// Assign sets the candidate's recruiter. A candidate held by another recruiter is moved.
	Assign(ctx context.Context, actor Actor, candidateID, recruiterID uuid.UUID) (*model.Candidate, error)
	Unassign(ctx context.Context, actor Actor, candidateID uuid.UUID) (*model.Candidate, error)
}

type assignmentService struct {
	tx       repository.Transactor
	activity ActivityService
	notifier notify.Notifier
	cache    *cache.Client
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(tx repository.Transactor, activity ActivityService, notifier notify.Notifier, cache *cache.Client) AssignmentService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &assignmentService{tx: tx, activity: activity, notifier: notifier, cache: cache}
}

func (s *assignmentService) Assign(ctx context.Context, actor Actor, candidateID, recruiterID uuid.UUID) (*model.Candidate, error) {
	var (
		candidate *model.Candidate
		recruiter *model.Recruiter
		previous  *model.Recruiter
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		// Recruiter first so concurrent assignments to it queue on the same row.
		recruiter, err = repos.Recruiters.FindByIDForUpdate(ctx, recruiterID)
		if err != nil {
			return notFound(err, errors.ErrRecruiterNotFound, "find recruiter")
		}
		candidate, err = repos.Candidates.FindByIDForUpdate(ctx, candidateID)
		if err != nil {
			return notFound(err, errors.ErrCandidateNotFound, "find candidate")
		}

		if !recruiter.IsActive {
			return errors.ErrRecruiterInactive
		}
		if candidate.AssignedRecruiterID != nil && *candidate.AssignedRecruiterID == recruiter.ID {
			return errors.ErrAlreadyAssigned
		}

		assigned, err := repos.Candidates.CountByRecruiter(ctx, recruiter.ID)
		if err != nil {
			return fmt.Errorf("count assigned candidates: %w", err)
		}
		if !recruiter.HasCapacity(assigned) {
			return errors.ErrRecruiterAtCapacity
		}

		if candidate.AssignedRecruiterID != nil {
			previous, err = repos.Recruiters.FindByID(ctx, *candidate.AssignedRecruiterID)
			if err != nil {
				logger.WithError(err).Warn("previous recruiter not found", "recruiter_id", *candidate.AssignedRecruiterID)
				previous = nil
			}
		}

		if err := repos.Candidates.SetAssignedRecruiter(ctx, candidate.ID, &recruiter.ID); err != nil {
			return fmt.Errorf("assign recruiter: %w", err)
		}
		candidate.AssignedRecruiterID = &recruiter.ID
		recruiter.SetAssignedCount(assigned + 1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	candidate.AssignedRecruiter = recruiter
	logger.Info("candidate assigned", "candidate_id", candidate.ID, "recruiter_id", recruiter.ID)
	s.activity.Record(ctx, actorRef(actor), model.ActionCandidateAssigned, "candidate", candidate.ID,
		fmt.Sprintf("assigned to recruiter %s", recruiter.ID))
	_ = s.cache.Delete(ctx, cacheKeyAdminDashboard)

	if previous != nil {
		if err := s.notifier.CandidateUnassigned(ctx, candidate, previous); err != nil {
			logger.WithError(err).Warn("failed to send unassignment email", "candidate_id", candidate.ID)
		}
	}
	if err := s.notifier.CandidateAssigned(ctx, candidate, recruiter); err != nil {
		logger.WithError(err).Warn("failed to send assignment email", "candidate_id", candidate.ID)
	}
	return candidate, nil
}

func (s *assignmentService) Unassign(ctx context.Context, actor Actor, candidateID uuid.UUID) (*model.Candidate, error) {
	var (
		candidate *model.Candidate
		recruiter *model.Recruiter
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		candidate, err = repos.Candidates.FindByIDForUpdate(ctx, candidateID)
		if err != nil {
			return notFound(err, errors.ErrCandidateNotFound, "find candidate")
		}
		if candidate.AssignedRecruiterID == nil {
			return errors.ErrNotAssigned
		}
		recruiter, err = repos.Recruiters.FindByID(ctx, *candidate.AssignedRecruiterID)
		if err != nil {
			recruiter = nil
		}
		if err := repos.Candidates.SetAssignedRecruiter(ctx, candidate.ID, nil); err != nil {
			return fmt.Errorf("unassign recruiter: %w", err)
		}
		candidate.AssignedRecruiterID = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("candidate unassigned", "candidate_id", candidate.ID)
	s.activity.Record(ctx, actorRef(actor), model.ActionCandidateUnassigned, "candidate", candidate.ID, "")
	_ = s.cache.Delete(ctx, cacheKeyAdminDashboard)

	if recruiter != nil {
		if err := s.notifier.CandidateUnassigned(ctx, candidate, recruiter); err != nil {
			logger.WithError(err).Warn("failed to send unassignment email", "candidate_id", candidate.ID)
		}
	}
	return candidate, nil
}
