package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recruitflow/internal/model"
)

// CandidateFilter narrows candidate listings.
type CandidateFilter struct {
	Status        model.CandidateStatus
	PaymentStatus model.PaymentStatus
	// Assigned filters on whether a recruiter is set; nil means either.
	Assigned    *bool
	RecruiterID *uuid.UUID
	Query       string
	ListOptions
}

// CandidateRepository defines candidate persistence operations.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *model.Candidate) error
	Update(ctx context.Context, candidate *model.Candidate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Candidate, error)
	List(ctx context.Context, filter CandidateFilter) ([]model.Candidate, int64, error)
	ListAll(ctx context.Context) ([]model.Candidate, error)
	CountByRecruiter(ctx context.Context, recruiterID uuid.UUID) (int64, error)
	SetAssignedRecruiter(ctx context.Context, candidateID uuid.UUID, recruiterID *uuid.UUID) error
	UnassignAllFromRecruiter(ctx context.Context, recruiterID uuid.UUID) (int64, error)
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type candidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository creates a new candidate repository.
func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *model.Candidate) error {
	candidate.Email = normalizeEmail(candidate.Email)
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(candidate).Error
}

func (r *candidateRepository) Update(ctx context.Context, candidate *model.Candidate) error {
	candidate.Email = normalizeEmail(candidate.Email)
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(candidate).Error
}

// FindByID loads the candidate with its uploaded resumes.
func (r *candidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	var candidate model.Candidate
	if err := r.db.WithContext(ctx).Preload("Resumes").Where("id = ?", id).First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

// FindByIDForUpdate finds a candidate by ID with a row-level lock. Use inside a transaction.
func (r *candidateRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	var candidate model.Candidate
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Candidate, error) {
	var candidate model.Candidate
	if err := r.db.WithContext(ctx).Preload("Resumes").Where("user_id = ?", userID).First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) List(ctx context.Context, filter CandidateFilter) ([]model.Candidate, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Candidate{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Assigned != nil {
		if *filter.Assigned {
			q = q.Where("assigned_recruiter_id IS NOT NULL")
		} else {
			q = q.Where("assigned_recruiter_id IS NULL")
		}
	}
	if filter.RecruiterID != nil {
		q = q.Where("assigned_recruiter_id = ?", *filter.RecruiterID)
	}
	if filter.Query != "" {
		p := likePattern(filter.Query)
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var candidates []model.Candidate
	if err := q.Preload("AssignedRecruiter").Order("created_at DESC").
		Scopes(paginate(filter.ListOptions)).Find(&candidates).Error; err != nil {
		return nil, 0, err
	}
	return candidates, total, nil
}

// ListAll returns every candidate with its recruiter, for exports.
func (r *candidateRepository) ListAll(ctx context.Context) ([]model.Candidate, error) {
	var candidates []model.Candidate
	if err := r.db.WithContext(ctx).Preload("AssignedRecruiter").Order("created_at ASC").Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *candidateRepository) CountByRecruiter(ctx context.Context, recruiterID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("assigned_recruiter_id = ?", recruiterID).
		Count(&n).Error
	return n, err
}

func (r *candidateRepository) SetAssignedRecruiter(ctx context.Context, candidateID uuid.UUID, recruiterID *uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("id = ?", candidateID).
		Update("assigned_recruiter_id", recruiterID).Error
}

// UnassignAllFromRecruiter clears the recruiter from every candidate it holds.
func (r *candidateRepository) UnassignAllFromRecruiter(ctx context.Context, recruiterID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("assigned_recruiter_id = ?", recruiterID).
		Update("assigned_recruiter_id", nil)
	return res.RowsAffected, res.Error
}

// ExpireSubscriptions marks paid subscriptions that ended before now as expired.
func (r *candidateRepository) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("payment_status = ? AND subscription_expires_at IS NOT NULL AND subscription_expires_at < ?", model.PaymentStatusPaid, now).
		Update("payment_status", model.PaymentStatusExpired)
	return res.RowsAffected, res.Error
}

// Delete soft-deletes the candidate.
func (r *candidateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Candidate{}).Error
}

// ResumeRepository defines persistence for uploaded resume files.
type ResumeRepository interface {
	Create(ctx context.Context, resume *model.Resume) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Resume, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Resume, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type resumeRepository struct {
	db *gorm.DB
}

// NewResumeRepository creates a new resume repository.
func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(ctx context.Context, resume *model.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *resumeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Resume, error) {
	var resume model.Resume
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resume).Error; err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *resumeRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Resume, error) {
	var resumes []model.Resume
	if err := r.db.WithContext(ctx).Where("candidate_id = ?", candidateID).
		Order("created_at DESC").Find(&resumes).Error; err != nil {
		return nil, err
	}
	return resumes, nil
}

func (r *resumeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Resume{}).Error
}
