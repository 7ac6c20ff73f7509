package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recruitflow/internal/model"
)

// JobApplicationFilter narrows job application listings.
type JobApplicationFilter struct {
	CandidateID *uuid.UUID
	// RecruiterID restricts results to candidates currently assigned to this recruiter.
	RecruiterID *uuid.UUID
	Status      model.ApplicationStatus
	Query       string
	ListOptions
}

// JobApplicationRepository defines job application persistence operations.
type JobApplicationRepository interface {
	Create(ctx context.Context, app *model.JobApplication) error
	Update(ctx context.Context, app *model.JobApplication) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.JobApplication, error)
	List(ctx context.Context, filter JobApplicationFilter) ([]model.JobApplication, int64, error)
	ListAll(ctx context.Context) ([]model.JobApplication, error)
	CountByStatus(ctx context.Context, recruiterID *uuid.UUID) (map[string]int64, error)
	CountGenerated(ctx context.Context, recruiterID *uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type jobApplicationRepository struct {
	db *gorm.DB
}

// NewJobApplicationRepository creates a new job application repository.
func NewJobApplicationRepository(db *gorm.DB) JobApplicationRepository {
	return &jobApplicationRepository{db: db}
}

func (r *jobApplicationRepository) Create(ctx context.Context, app *model.JobApplication) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error
}

func (r *jobApplicationRepository) Update(ctx context.Context, app *model.JobApplication) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(app).Error
}

func (r *jobApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.JobApplication, error) {
	var app model.JobApplication
	if err := r.db.WithContext(ctx).Preload("Candidate").Where("id = ?", id).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *jobApplicationRepository) scoped(ctx context.Context, filter JobApplicationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.JobApplication{})
	if filter.CandidateID != nil {
		q = q.Where("job_applications.candidate_id = ?", *filter.CandidateID)
	}
	if filter.RecruiterID != nil {
		q = q.Where("job_applications.candidate_id IN (?)",
			r.db.Model(&model.Candidate{}).Select("id").Where("assigned_recruiter_id = ?", *filter.RecruiterID))
	}
	if filter.Status != "" {
		q = q.Where("job_applications.status = ?", filter.Status)
	}
	if filter.Query != "" {
		p := likePattern(filter.Query)
		q = q.Where("LOWER(job_applications.job_title) LIKE ? OR LOWER(job_applications.company) LIKE ?", p, p)
	}
	return q
}

func (r *jobApplicationRepository) List(ctx context.Context, filter JobApplicationFilter) ([]model.JobApplication, int64, error) {
	q := r.scoped(ctx, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []model.JobApplication
	if err := q.Preload("Candidate").Order("job_applications.created_at DESC").
		Scopes(paginate(filter.ListOptions)).Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// ListAll returns every application with its candidate, for exports.
func (r *jobApplicationRepository) ListAll(ctx context.Context) ([]model.JobApplication, error) {
	var apps []model.JobApplication
	if err := r.db.WithContext(ctx).Preload("Candidate").Order("created_at ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

type statusCount struct {
	Status string
	Count  int64
}

// CountByStatus groups applications by status, optionally for one recruiter's candidates.
func (r *jobApplicationRepository) CountByStatus(ctx context.Context, recruiterID *uuid.UUID) (map[string]int64, error) {
	var rows []statusCount
	err := r.scoped(ctx, JobApplicationFilter{RecruiterID: recruiterID}).
		Select("job_applications.status AS status, COUNT(*) AS count").
		Group("job_applications.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(model.ApplicationStatuses))
	for _, s := range model.ApplicationStatuses {
		counts[string(s)] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountGenerated counts applications that carry a generated resume.
func (r *jobApplicationRepository) CountGenerated(ctx context.Context, recruiterID *uuid.UUID) (int64, error) {
	var n int64
	err := r.scoped(ctx, JobApplicationFilter{RecruiterID: recruiterID}).
		Where("job_applications.resume_status = ?", model.ResumeStatusGenerated).
		Count(&n).Error
	return n, err
}

func (r *jobApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.JobApplication{}).Error
}
