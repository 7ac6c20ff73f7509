package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"recruitflow/internal/auth"
	"recruitflow/internal/cache"
	"recruitflow/internal/errors"
	"recruitflow/internal/logger"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

// defaultSubscriptionDays applies when a paid candidate references an unknown plan.
const defaultSubscriptionDays = 30

// CandidateProfileInput holds the profile fields a candidate may edit. Nil fields are left alone.
type CandidateProfileInput struct {
	FirstName       *string   `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName        *string   `json:"lastName" validate:"omitempty,max=100"`
	Phone           *string   `json:"phone" validate:"omitempty,max=50"`
	Location        *string   `json:"location" validate:"omitempty,max=255"`
	Headline        *string   `json:"headline" validate:"omitempty,max=255"`
	Summary         *string   `json:"summary" validate:"omitempty,max=5000"`
	Skills          *[]string `json:"skills" validate:"omitempty,max=100,dive,max=100"`
	ExperienceYears *int      `json:"experienceYears" validate:"omitempty,min=0,max=80"`
	Experience      *string   `json:"experience" validate:"omitempty,max=20000"`
	Education       *string   `json:"education" validate:"omitempty,max=5000"`
	LinkedInURL     *string   `json:"linkedinUrl" validate:"omitempty,url,max=255"`
}

// UpdateCandidateInput is the admin edit of a candidate.
type UpdateCandidateInput struct {
	CandidateProfileInput
	Email            *string                `json:"email" validate:"omitempty,email"`
	Status           *model.CandidateStatus `json:"status" validate:"omitempty,oneof=new active interviewing placed inactive"`
	SubscriptionPlan *string                `json:"subscriptionPlan" validate:"omitempty,max=100"`
}

// CreateCandidateInput is the admin form for a new candidate.
type CreateCandidateInput struct {
	FirstName        string                `json:"firstName" validate:"required,max=100"`
	LastName         string                `json:"lastName" validate:"max=100"`
	Email            string                `json:"email" validate:"required,email"`
	Password         string                `json:"password" validate:"omitempty,min=8"`
	Phone            string                `json:"phone" validate:"max=50"`
	Location         string                `json:"location" validate:"max=255"`
	Headline         string                `json:"headline" validate:"max=255"`
	Summary          string                `json:"summary" validate:"max=5000"`
	Skills           []string              `json:"skills" validate:"max=100,dive,max=100"`
	ExperienceYears  int                   `json:"experienceYears" validate:"min=0,max=80"`
	Experience       string                `json:"experience" validate:"max=20000"`
	Education        string                `json:"education" validate:"max=5000"`
	LinkedInURL      string                `json:"linkedinUrl" validate:"omitempty,url,max=255"`
	Status           model.CandidateStatus `json:"status" validate:"omitempty,oneof=new active interviewing placed inactive"`
	SubscriptionPlan string                `json:"subscriptionPlan" validate:"max=100"`
	PaymentStatus    model.PaymentStatus   `json:"paymentStatus" validate:"omitempty,oneof=pending paid failed expired refunded"`
}

// CandidateService manages candidate profiles and subscriptions.
type CandidateService interface {
	// Admin operations.
	List(ctx context.Context, filter repository.CandidateFilter) (*Page[model.Candidate], error)
	Get(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
	Create(ctx context.Context, in CreateCandidateInput) (*model.Candidate, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateCandidateInput) (*model.Candidate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdatePaymentStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.PaymentStatus) (*model.Candidate, error)

	// Candidate self-service.
	Profile(ctx context.Context, userID uuid.UUID) (*model.Candidate, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in CandidateProfileInput) (*model.Candidate, error)
	Subscribe(ctx context.Context, userID uuid.UUID, planID string) (*model.Candidate, *model.SubscriptionPayment, error)

	// Recruiter operations; only candidates assigned to the recruiter are visible.
	ListAssigned(ctx context.Context, actor Actor, filter repository.CandidateFilter) (*Page[model.Candidate], error)
	GetForActor(ctx context.Context, actor Actor, id uuid.UUID) (*model.Candidate, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.CandidateStatus) (*model.Candidate, error)
}

type candidateService struct {
	candidates repository.CandidateRepository
	tx         repository.Transactor
	access     accessChecker
	activity   ActivityService
	cache      *cache.Client
}

// NewCandidateService creates a new candidate service.
func NewCandidateService(
	candidates repository.CandidateRepository,
	recruiters repository.RecruiterRepository,
	tx repository.Transactor,
	activity ActivityService,
	cache *cache.Client,
) CandidateService {
	return &candidateService{
		candidates: candidates,
		tx:         tx,
		access:     accessChecker{recruiters: recruiters},
		activity:   activity,
		cache:      cache,
	}
}

func (s *candidateService) List(ctx context.Context, filter repository.CandidateFilter) (*Page[model.Candidate], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	candidates, total, err := s.candidates.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return newPage(candidates, total, filter.ListOptions), nil
}

func (s *candidateService) Get(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	candidate, err := s.candidates.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrCandidateNotFound, "find candidate")
	}
	return candidate, nil
}

// Create registers the login and the profile together. A random password is set when none is given.
func (s *candidateService) Create(ctx context.Context, in CreateCandidateInput) (*model.Candidate, error) {
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

	status := in.Status
	if status == "" {
		status = model.CandidateStatusNew
	}
	paymentStatus := in.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = model.PaymentStatusPending
	}

	candidate := &model.Candidate{
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		FullName:         model.JoinName(in.FirstName, in.LastName),
		Email:            in.Email,
		Phone:            in.Phone,
		Location:         in.Location,
		Headline:         in.Headline,
		Summary:          in.Summary,
		Skills:           cleanSkills(in.Skills),
		ExperienceYears:  in.ExperienceYears,
		Experience:       in.Experience,
		Education:        in.Education,
		LinkedInURL:      in.LinkedInURL,
		Status:           status,
		SubscriptionPlan: normalizePlanID(in.SubscriptionPlan),
		PaymentStatus:    paymentStatus,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ensureEmailFree(ctx, repos.Users, in.Email); err != nil {
			return err
		}
		user := &model.User{
			Email:        in.Email,
			Username:     in.Email,
			FullName:     model.JoinName(in.FirstName, in.LastName),
			PasswordHash: hash,
			Role:         model.RoleCandidate,
			Status:       model.UserStatusActive,
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		candidate.UserID = user.ID
		return repos.Candidates.Create(ctx, candidate)
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, errors.ErrEmailTaken
		}
		if stderrors.Is(err, errors.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create candidate: %w", err)
	}

	_ = s.cache.Delete(ctx, cacheKeyAdminDashboard)
	return candidate, nil
}

// Update edits the profile. A new email moves the candidate's login to the same address.
func (s *candidateService) Update(ctx context.Context, id uuid.UUID, in UpdateCandidateInput) (*model.Candidate, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, errors.ErrInvalidStatus
	}

	var candidate *model.Candidate
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		candidate, err = repos.Candidates.FindByID(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrCandidateNotFound, "find candidate")
		}

		applyProfile(candidate, in.CandidateProfileInput)
		if in.Status != nil {
			candidate.Status = *in.Status
		}
		if in.SubscriptionPlan != nil {
			candidate.SubscriptionPlan = normalizePlanID(*in.SubscriptionPlan)
		}
		if in.Email != nil && !sameEmail(*in.Email, candidate.Email) {
			if err := changeLoginEmail(ctx, repos, candidate.UserID, *in.Email); err != nil {
				return err
			}
			candidate.Email = *in.Email
		}
		return repos.Candidates.Update(ctx, candidate)
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, errors.ErrEmailTaken
		}
		return nil, err
	}
	return candidate, nil
}

// Delete soft-deletes the candidate and disables its login. Job applications are kept.
func (s *candidateService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		candidate, err := repos.Candidates.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrCandidateNotFound, "find candidate")
		}
		if err := repos.Candidates.Delete(ctx, candidate.ID); err != nil {
			return err
		}
		if err := repos.Users.SetStatus(ctx, candidate.UserID, model.UserStatusInactive); err != nil {
			return err
		}
		return repos.Users.Delete(ctx, candidate.UserID)
	})
	if err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, cacheKeyAdminDashboard)
	return nil
}

// UpdatePaymentStatus records a payment outcome. Marking a candidate paid starts the
// subscription period of its plan.
func (s *candidateService) UpdatePaymentStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.PaymentStatus) (*model.Candidate, error) {
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}

	var candidate *model.Candidate
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		candidate, err = repos.Candidates.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrCandidateNotFound, "find candidate")
		}

		now := time.Now()
		candidate.PaymentStatus = status
		if status == model.PaymentStatusPaid {
			days := defaultSubscriptionDays
			if candidate.SubscriptionPlan != "" {
				plan, err := repos.Plans.FindByPlanID(ctx, candidate.SubscriptionPlan)
				switch {
				case err == nil:
					days = plan.DurationDays
				case !stderrors.Is(err, gorm.ErrRecordNotFound):
					return err
				}
			}
			expires := now.AddDate(0, 0, days)
			candidate.SubscriptionExpiresAt = &expires
		}
		if err := repos.Candidates.Update(ctx, candidate); err != nil {
			return err
		}

		payment, err := repos.Payments.FindLatestByCandidate(ctx, candidate.ID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		payment.Status = status
		if status == model.PaymentStatusPaid {
			payment.PaidAt = &now
		}
		return repos.Payments.Update(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorRef(actor), model.ActionPaymentStatus, "candidate", candidate.ID, string(status))
	_ = s.cache.Delete(ctx, cacheKeyAdminDashboard)
	return candidate, nil
}

func (s *candidateService) Profile(ctx context.Context, userID uuid.UUID) (*model.Candidate, error) {
	candidate, err := s.candidates.FindByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, errors.ErrCandidateNotFound, "find candidate")
	}
	return candidate, nil
}

func (s *candidateService) UpdateProfile(ctx context.Context, userID uuid.UUID, in CandidateProfileInput) (*model.Candidate, error) {
	candidate, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	applyProfile(candidate, in)
	if err := s.candidates.Update(ctx, candidate); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return candidate, nil
}

// Subscribe selects a plan and opens a pending payment for its price.
func (s *candidateService) Subscribe(ctx context.Context, userID uuid.UUID, planID string) (*model.Candidate, *model.SubscriptionPayment, error) {
	var (
		candidate *model.Candidate
		payment   *model.SubscriptionPayment
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		plan, err := repos.Plans.FindByPlanID(ctx, normalizePlanID(planID))
		if err != nil {
			return notFound(err, errors.ErrPlanNotFound, "find plan")
		}
		if !plan.IsActive() {
			return errors.ErrPlanInactive
		}

		candidate, err = repos.Candidates.FindByUserID(ctx, userID)
		if err != nil {
			return notFound(err, errors.ErrCandidateNotFound, "find candidate")
		}
		candidate.SubscriptionPlan = plan.PlanID
		candidate.PaymentStatus = model.PaymentStatusPending
		if err := repos.Candidates.Update(ctx, candidate); err != nil {
			return err
		}

		payment = &model.SubscriptionPayment{
			CandidateID: candidate.ID,
			PlanID:      plan.PlanID,
			Amount:      plan.Price,
			Currency:    plan.Currency,
			Status:      model.PaymentStatusPending,
		}
		return repos.Payments.Create(ctx, payment)
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("candidate subscribed", "candidate_id", candidate.ID, "plan", candidate.SubscriptionPlan)
	return candidate, payment, nil
}

func (s *candidateService) ListAssigned(ctx context.Context, actor Actor, filter repository.CandidateFilter) (*Page[model.Candidate], error) {
	recruiter, err := s.access.recruiterFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	filter.RecruiterID = &recruiter.ID
	filter.Assigned = nil
	return s.List(ctx, filter)
}

func (s *candidateService) GetForActor(ctx context.Context, actor Actor, id uuid.UUID) (*model.Candidate, error) {
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.canAccessCandidate(ctx, actor, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

func (s *candidateService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.CandidateStatus) (*model.Candidate, error) {
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	candidate, err := s.GetForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	previous := candidate.Status
	candidate.Status = status
	if err := s.candidates.Update(ctx, candidate); err != nil {
		return nil, fmt.Errorf("update candidate status: %w", err)
	}

	s.activity.Record(ctx, actorRef(actor), model.ActionCandidateStatus, "candidate", candidate.ID,
		fmt.Sprintf("%s -> %s", previous, status))
	return candidate, nil
}

func applyProfile(c *model.Candidate, in CandidateProfileInput) {
	if in.FirstName != nil {
		c.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		c.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Location != nil {
		c.Location = *in.Location
	}
	if in.Headline != nil {
		c.Headline = *in.Headline
	}
	if in.Summary != nil {
		c.Summary = *in.Summary
	}
	if in.Skills != nil {
		c.Skills = cleanSkills(*in.Skills)
	}
	if in.ExperienceYears != nil {
		c.ExperienceYears = *in.ExperienceYears
	}
	if in.Experience != nil {
		c.Experience = *in.Experience
	}
	if in.Education != nil {
		c.Education = *in.Education
	}
	if in.LinkedInURL != nil {
		c.LinkedInURL = *in.LinkedInURL
	}
	c.FullName = model.JoinName(c.FirstName, c.LastName)
}

// cleanSkills trims entries and drops blanks and case-insensitive duplicates.
func cleanSkills(skills []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, skill)
	}
	return out
}
