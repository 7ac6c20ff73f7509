package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recruitflow/internal/model"
)

// PlanRepository defines plan persistence operations.
type PlanRepository interface {
	Create(ctx context.Context, plan *model.Plan) error
	Update(ctx context.Context, plan *model.Plan) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Plan, error)
	FindByPlanID(ctx context.Context, planID string) (*model.Plan, error)
	List(ctx context.Context, status model.PlanStatus) ([]model.Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository.
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, plan *model.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepository) Update(ctx context.Context, plan *model.Plan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *planRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	var plan model.Plan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) FindByPlanID(ctx context.Context, planID string) (*model.Plan, error) {
	var plan model.Plan
	if err := r.db.WithContext(ctx).Where("plan_id = ?", planID).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// List returns plans ordered for display; an empty status returns all.
func (r *planRepository) List(ctx context.Context, status model.PlanStatus) ([]model.Plan, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var plans []model.Plan
	if err := q.Order("sort_order ASC, price ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Delete soft-deletes the plan.
func (r *planRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Plan{}).Error
}
