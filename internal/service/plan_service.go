package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"recruitflow/internal/cache"
	"recruitflow/internal/errors"
	"recruitflow/internal/logger"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

// CreatePlanInput defines a subscription plan.
type CreatePlanInput struct {
	PlanID       string           `json:"planId" validate:"required,max=100"`
	Name         string           `json:"name" validate:"required,max=255"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	Currency     string           `json:"currency" validate:"omitempty,len=3"`
	DurationDays int              `json:"durationDays" validate:"required,min=1"`
	Features     []string         `json:"features"`
	Status       model.PlanStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	SortOrder    int              `json:"sortOrder"`
}

// UpdatePlanInput edits a plan. Nil fields are left alone.
type UpdatePlanInput struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Currency     *string          `json:"currency" validate:"omitempty,len=3"`
	DurationDays *int             `json:"durationDays" validate:"omitempty,min=1"`
	Features     *[]string        `json:"features"`
	SortOrder    *int             `json:"sortOrder"`
}

// PlanService manages the subscription catalogue.
type PlanService interface {
	List(ctx context.Context, status model.PlanStatus) ([]model.Plan, error)
	// ListActive returns purchasable plans, served from cache when possible.
	ListActive(ctx context.Context) ([]model.Plan, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Plan, error)
	Create(ctx context.Context, in CreatePlanInput) (*model.Plan, error)
	Update(ctx context.Context, id uuid.UUID, in UpdatePlanInput) (*model.Plan, error)
	SetStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.PlanStatus) (*model.Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// SeedDefaults inserts the default catalogue, skipping plans that already exist.
	SeedDefaults(ctx context.Context) (int, error)
}

type planService struct {
	repo     repository.PlanRepository
	activity ActivityService
	cache    *cache.Client
}

// NewPlanService creates a new plan service.
func NewPlanService(repo repository.PlanRepository, activity ActivityService, cache *cache.Client) PlanService {
	return &planService{repo: repo, activity: activity, cache: cache}
}

func (s *planService) List(ctx context.Context, status model.PlanStatus) ([]model.Plan, error) {
	if status != "" && !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	plans, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	if plans == nil {
		plans = []model.Plan{}
	}
	return plans, nil
}

func (s *planService) ListActive(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	if s.cache.GetJSON(ctx, cacheKeyActivePlans, &plans) {
		return plans, nil
	}

	plans, err := s.List(ctx, model.PlanStatusActive)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, cacheKeyActivePlans, plans, activePlansTTL); err != nil {
		logger.WithError(err).Debug("failed to cache active plans")
	}
	return plans, nil
}

func (s *planService) Get(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrPlanNotFound, "find plan")
	}
	return plan, nil
}

func (s *planService) Create(ctx context.Context, in CreatePlanInput) (*model.Plan, error) {
	if in.Price.IsNegative() {
		return nil, errors.Validation("price must not be negative")
	}
	planID := normalizePlanID(in.PlanID)
	if _, err := s.repo.FindByPlanID(ctx, planID); err == nil {
		return nil, errors.ErrPlanIDTaken
	} else if err = notFound(err, nil, "find plan"); err != nil {
		return nil, err
	}

	plan := &model.Plan{
		PlanID:       planID,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Price:        in.Price,
		Currency:     strings.ToUpper(in.Currency),
		DurationDays: in.DurationDays,
		Features:     cleanSkills(in.Features),
		Status:       in.Status,
		SortOrder:    in.SortOrder,
	}
	if plan.Currency == "" {
		plan.Currency = "USD"
	}
	if plan.Status == "" {
		plan.Status = model.PlanStatusActive
	}

	if err := s.repo.Create(ctx, plan); err != nil {
		if isDuplicateKey(err) {
			return nil, errors.ErrPlanIDTaken
		}
		return nil, fmt.Errorf("create plan: %w", err)
	}
	s.invalidate(ctx)
	return plan, nil
}

func (s *planService) Update(ctx context.Context, id uuid.UUID, in UpdatePlanInput) (*model.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		plan.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		plan.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, errors.Validation("price must not be negative")
		}
		plan.Price = *in.Price
	}
	if in.Currency != nil {
		plan.Currency = strings.ToUpper(*in.Currency)
	}
	if in.DurationDays != nil {
		plan.DurationDays = *in.DurationDays
	}
	if in.Features != nil {
		plan.Features = cleanSkills(*in.Features)
	}
	if in.SortOrder != nil {
		plan.SortOrder = *in.SortOrder
	}

	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	s.invalidate(ctx)
	return plan, nil
}

func (s *planService) SetStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.PlanStatus) (*model.Plan, error) {
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Status == status {
		return plan, nil
	}

	previous := plan.Status
	plan.Status = status
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("update plan status: %w", err)
	}
	s.invalidate(ctx)
	s.activity.Record(ctx, actorRef(actor), model.ActionPlanStatus, "plan", plan.ID,
		fmt.Sprintf("%s -> %s", previous, status))
	return plan, nil
}

func (s *planService) Delete(ctx context.Context, id uuid.UUID) error {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	plan.Status = model.PlanStatusInactive
	if err := s.repo.Update(ctx, plan); err != nil {
		return fmt.Errorf("deactivate plan: %w", err)
	}
	if err := s.repo.Delete(ctx, plan.ID); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *planService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, plan := range model.DefaultPlans() {
		_, err := s.repo.FindByPlanID(ctx, plan.PlanID)
		if err == nil {
			continue
		}
		if err = notFound(err, nil, "find plan"); err != nil {
			return created, err
		}
		if err := s.repo.Create(ctx, &plan); err != nil {
			return created, fmt.Errorf("seed plan %s: %w", plan.PlanID, err)
		}
		created++
	}
	if created > 0 {
		logger.Info("default plans seeded", "created", created)
		s.invalidate(ctx)
	}
	return created, nil
}

func (s *planService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, cacheKeyActivePlans)
}

// normalizePlanID returns the stored form of a plan identifier.
func normalizePlanID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
