package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"recruitflow/internal/auth"
	"recruitflow/internal/cache"
	"recruitflow/internal/errors"
	"recruitflow/internal/logger"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

// CreateRecruiterInput creates a recruiter login and profile.
type CreateRecruiterInput struct {
	FullName       string `json:"fullName" validate:"required,max=255"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"omitempty,min=8"`
	Phone          string `json:"phone" validate:"max=50"`
	Department     string `json:"department" validate:"max=100"`
	Specialization string `json:"specialization" validate:"max=255"`
	MaxCandidates  int    `json:"maxCandidates" validate:"omitempty,min=1,max=1000"`
}

// UpdateRecruiterInput edits a recruiter profile. Nil fields are left alone.
type UpdateRecruiterInput struct {
	FullName       *string `json:"fullName" validate:"omitempty,min=1,max=255"`
	Phone          *string `json:"phone" validate:"omitempty,max=50"`
	Department     *string `json:"department" validate:"omitempty,max=100"`
	Specialization *string `json:"specialization" validate:"omitempty,max=255"`
	MaxCandidates  *int    `json:"maxCandidates" validate:"omitempty,min=1,max=1000"`
	IsActive       *bool   `json:"isActive"`
}

// RecruiterService manages recruiter profiles.
type RecruiterService interface {
	List(ctx context.Context, filter repository.RecruiterFilter) (*Page[model.Recruiter], error)
	// Get returns the recruiter with its assigned candidates.
	Get(ctx context.Context, id uuid.UUID) (*model.Recruiter, error)
	Create(ctx context.Context, in CreateRecruiterInput) (*model.Recruiter, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateRecruiterInput) (*model.Recruiter, error)
	// Delete soft-deletes the recruiter, disables its login and releases its candidates.
	// Job applications it worked on are kept.
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type recruiterService struct {
	recruiters repository.RecruiterRepository
	candidates repository.CandidateRepository
	tx         repository.Transactor
	activity   ActivityService
	cache      *cache.Client
}

// NewRecruiterService creates a new recruiter service.
func NewRecruiterService(
	recruiters repository.RecruiterRepository,
	candidates repository.CandidateRepository,
	tx repository.Transactor,
	activity ActivityService,
	cache *cache.Client,
) RecruiterService {
	return &recruiterService{
		recruiters: recruiters,
		candidates: candidates,
		tx:         tx,
		activity:   activity,
		cache:      cache,
	}
}

func (s *recruiterService) List(ctx context.Context, filter repository.RecruiterFilter) (*Page[model.Recruiter], error) {
	recruiters, total, err := s.recruiters.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list recruiters: %w", err)
	}
	return newPage(recruiters, total, filter.ListOptions), nil
}

func (s *recruiterService) Get(ctx context.Context, id uuid.UUID) (*model.Recruiter, error) {
	recruiter, err := s.recruiters.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrRecruiterNotFound, "find recruiter")
	}

	assigned, _, err := s.candidates.List(ctx, repository.CandidateFilter{
		RecruiterID: &recruiter.ID,
		ListOptions: repository.ListOptions{Page: 1, Limit: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("list assigned candidates: %w", err)
	}
	recruiter.AssignedCandidates = assigned
	return recruiter, nil
}

func (s *recruiterService) Create(ctx context.Context, in CreateRecruiterInput) (*model.Recruiter, error) {
	password := in.Password
	if password == "" {
		generated, err := auth.RandomPassword()
		if err != nil {
			return nil, err
		}
		password = generated
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	recruiter := &model.Recruiter{
		FullName:       strings.TrimSpace(in.FullName),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          in.Phone,
		Department:     in.Department,
		Specialization: in.Specialization,
		MaxCandidates:  in.MaxCandidates,
		IsActive:       true,
	}
	if recruiter.MaxCandidates <= 0 {
		recruiter.MaxCandidates = model.DefaultMaxCandidates
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ensureEmailFree(ctx, repos.Users, in.Email); err != nil {
			return err
		}
		user := &model.User{
			Email:        in.Email,
			Username:     in.Email,
			FullName:     recruiter.FullName,
			PasswordHash: hash,
			Role:         model.RoleRecruiter,
			Status:       model.UserStatusActive,
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		recruiter.UserID = user.ID
		return repos.Recruiters.Create(ctx, recruiter)
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, errors.ErrEmailTaken
		}
		return nil, err
	}

	recruiter.SetAssignedCount(0)
	_ = s.cache.Delete(ctx, cacheKeyAdminDashboard)
	return recruiter, nil
}

func (s *recruiterService) Update(ctx context.Context, id uuid.UUID, in UpdateRecruiterInput) (*model.Recruiter, error) {
	recruiter, err := s.recruiters.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrRecruiterNotFound, "find recruiter")
	}

	if in.FullName != nil {
		recruiter.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Phone != nil {
		recruiter.Phone = *in.Phone
	}
	if in.Department != nil {
		recruiter.Department = *in.Department
	}
	if in.Specialization != nil {
		recruiter.Specialization = *in.Specialization
	}
	if in.MaxCandidates != nil {
		if int64(*in.MaxCandidates) < recruiter.AssignedCount {
			return nil, errors.Validation(fmt.Sprintf(
				"maxCandidates cannot be lower than the %d candidates currently assigned", recruiter.AssignedCount))
		}
		recruiter.MaxCandidates = *in.MaxCandidates
	}
	if in.IsActive != nil {
		recruiter.IsActive = *in.IsActive
	}

	if err := s.recruiters.Update(ctx, recruiter); err != nil {
		return nil, fmt.Errorf("update recruiter: %w", err)
	}
	recruiter.SetAssignedCount(recruiter.AssignedCount)
	_ = s.cache.Delete(ctx, cacheKeyAdminDashboard)
	return recruiter, nil
}

func (s *recruiterService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	var (
		userID   uuid.UUID
		released int64
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		recruiter, err := repos.Recruiters.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrRecruiterNotFound, "find recruiter")
		}
		userID = recruiter.UserID

		released, err = repos.Candidates.UnassignAllFromRecruiter(ctx, recruiter.ID)
		if err != nil {
			return err
		}
		if err := repos.Recruiters.Delete(ctx, recruiter.ID); err != nil {
			return err
		}
		return repos.Users.SetStatus(ctx, recruiter.UserID, model.UserStatusInactive)
	})
	if err != nil {
		return err
	}

	logger.Info("recruiter deleted", "recruiter_id", id, "released_candidates", released)
	s.activity.Record(ctx, actorRef(actor), model.ActionRecruiterDeleted, "recruiter", id,
		fmt.Sprintf("released %d candidates", released))
	_ = s.cache.Delete(ctx, cacheKeyAdminDashboard, userStatusKey(userID))
	return nil
}
