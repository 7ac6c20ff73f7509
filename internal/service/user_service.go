package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recruitflow/internal/auth"
	"recruitflow/internal/cache"
	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

// CreateUserInput is an admin-created account. Recruiter and candidate roles also get a profile.
type CreateUserInput struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"omitempty,min=8"`
	FullName string     `json:"fullName" validate:"required,max=255"`
	Username string     `json:"username" validate:"max=100"`
	Role     model.Role `json:"role" validate:"required,oneof=admin recruiter candidate"`
	Phone    string     `json:"phone" validate:"max=50"`
	// Recruiter profile fields.
	Department     string `json:"department" validate:"max=100"`
	Specialization string `json:"specialization" validate:"max=255"`
	MaxCandidates  int    `json:"maxCandidates" validate:"omitempty,min=1,max=1000"`
}

// UpdateUserInput changes the mutable fields of a user. Nil fields are left alone.
type UpdateUserInput struct {
	FullName *string           `json:"fullName" validate:"omitempty,max=255"`
	Username *string           `json:"username" validate:"omitempty,max=100"`
	Status   *model.UserStatus `json:"status" validate:"omitempty,oneof=active inactive suspended"`
	Password *string           `json:"password" validate:"omitempty,min=8"`
}

// UserService manages login identities.
type UserService interface {
	List(ctx context.Context, filter repository.UserFilter) (*Page[model.User], error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, in CreateUserInput) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*model.User, error)
	// Delete deactivates and soft-deletes the user. A recruiter profile is deactivated and released.
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type userService struct {
	repo  repository.UserRepository
	tx    repository.Transactor
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, tx repository.Transactor, cache *cache.Client) UserService {
	return &userService{repo: repo, tx: tx, cache: cache}
}

func (s *userService) List(ctx context.Context, filter repository.UserFilter) (*Page[model.User], error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, errors.ErrInvalidInput
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return newPage(users, total, filter.ListOptions), nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound, "find user")
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if err := ensureEmailFree(ctx, s.repo, in.Email); err != nil {
		return nil, err
	}

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

	username := in.Username
	if username == "" {
		username = in.Email
	}
	user := &model.User{
		Email:        in.Email,
		Username:     username,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		Role:         in.Role,
		Status:       model.UserStatusActive,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		switch user.Role {
		case model.RoleRecruiter:
			return repos.Recruiters.Create(ctx, &model.Recruiter{
				UserID:         user.ID,
				FullName:       user.FullName,
				Email:          user.Email,
				Phone:          in.Phone,
				Department:     in.Department,
				Specialization: in.Specialization,
				MaxCandidates:  in.MaxCandidates,
				IsActive:       true,
			})
		case model.RoleCandidate:
			first, last := splitName(user.FullName)
			return repos.Candidates.Create(ctx, &model.Candidate{
				UserID:        user.ID,
				FirstName:     first,
				LastName:      last,
				Email:         user.Email,
				Phone:         in.Phone,
				Status:        model.CandidateStatusNew,
				PaymentStatus: model.PaymentStatusPending,
			})
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, errors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound, "find user")
	}

	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Username != nil {
		user.Username = strings.TrimSpace(*in.Username)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, errors.ErrInvalidStatus
		}
		user.Status = *in.Status
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, userStatusKey(user.ID))
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.UserID == id {
		return errors.Validation("you cannot delete your own account")
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.FindByID(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrUserNotFound, "find user")
		}

		if user.Role == model.RoleRecruiter {
			recruiter, err := repos.Recruiters.FindByUserID(ctx, user.ID)
			switch {
			case err == nil:
				recruiter.IsActive = false
				if err := repos.Recruiters.Update(ctx, recruiter); err != nil {
					return err
				}
				if _, err := repos.Candidates.UnassignAllFromRecruiter(ctx, recruiter.ID); err != nil {
					return err
				}
			case !stderrors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		if err := repos.Users.SetStatus(ctx, user.ID, model.UserStatusInactive); err != nil {
			return err
		}
		return repos.Users.Delete(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, userStatusKey(id), cacheKeyAdminDashboard)
	return nil
}

// splitName splits a display name into first name and the rest.
func splitName(full string) (string, string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(full), " ")
	return first, strings.TrimSpace(rest)
}
