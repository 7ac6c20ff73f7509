package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recruitflow/internal/model"
)

// assignedCountSelect derives the recruiter side of the assignment from candidates.
const assignedCountSelect = "recruiters.*, (SELECT COUNT(*) FROM candidates WHERE candidates.assigned_recruiter_id = recruiters.id AND candidates.deleted_at IS NULL) AS assigned_count"

// RecruiterFilter narrows recruiter listings.
type RecruiterFilter struct {
	Department string
	IsActive   *bool
	Query      string
	ListOptions
}

// RecruiterRepository defines recruiter persistence operations.
type RecruiterRepository interface {
	Create(ctx context.Context, recruiter *model.Recruiter) error
	Update(ctx context.Context, recruiter *model.Recruiter) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recruiter, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Recruiter, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Recruiter, error)
	List(ctx context.Context, filter RecruiterFilter) ([]model.Recruiter, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type recruiterRepository struct {
	db *gorm.DB
}

// NewRecruiterRepository creates a new recruiter repository.
func NewRecruiterRepository(db *gorm.DB) RecruiterRepository {
	return &recruiterRepository{db: db}
}

func (r *recruiterRepository) Create(ctx context.Context, recruiter *model.Recruiter) error {
	recruiter.Email = normalizeEmail(recruiter.Email)
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(recruiter).Error
}

func (r *recruiterRepository) Update(ctx context.Context, recruiter *model.Recruiter) error {
	recruiter.Email = normalizeEmail(recruiter.Email)
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(recruiter).Error
}

// FindByID loads the recruiter with its assigned count.
func (r *recruiterRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Recruiter, error) {
	var recruiter model.Recruiter
	if err := r.db.WithContext(ctx).Select(assignedCountSelect).
		Where("recruiters.id = ?", id).First(&recruiter).Error; err != nil {
		return nil, err
	}
	recruiter.SetAssignedCount(recruiter.AssignedCount)
	return &recruiter, nil
}

// FindByIDForUpdate finds a recruiter by ID with a row-level lock. Use inside a transaction.
// Locking the recruiter row serializes concurrent assignments to the same recruiter.
func (r *recruiterRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Recruiter, error) {
	var recruiter model.Recruiter
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&recruiter).Error; err != nil {
		return nil, err
	}
	return &recruiter, nil
}

func (r *recruiterRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Recruiter, error) {
	var recruiter model.Recruiter
	if err := r.db.WithContext(ctx).Select(assignedCountSelect).
		Where("recruiters.user_id = ?", userID).First(&recruiter).Error; err != nil {
		return nil, err
	}
	recruiter.SetAssignedCount(recruiter.AssignedCount)
	return &recruiter, nil
}

func (r *recruiterRepository) List(ctx context.Context, filter RecruiterFilter) ([]model.Recruiter, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Recruiter{})
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Query != "" {
		p := likePattern(filter.Query)
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(specialization) LIKE ?", p, p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recruiters []model.Recruiter
	if err := q.Select(assignedCountSelect).Order("recruiters.created_at DESC").
		Scopes(paginate(filter.ListOptions)).Find(&recruiters).Error; err != nil {
		return nil, 0, err
	}
	for i := range recruiters {
		recruiters[i].SetAssignedCount(recruiters[i].AssignedCount)
	}
	return recruiters, total, nil
}

// Delete soft-deletes the recruiter. Job applications that reference it are kept.
func (r *recruiterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Recruiter{}).Error
}
