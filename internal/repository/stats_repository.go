package repository

import (
	"context"

	"gorm.io/gorm"

	"recruitflow/internal/model"
)

// StatsRepository computes dashboard counters.
type StatsRepository interface {
	AdminCounts(ctx context.Context) (*model.AdminDashboard, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// AdminCounts fills the counter fields of the admin dashboard.
func (r *statsRepository) AdminCounts(ctx context.Context) (*model.AdminDashboard, error) {
	db := r.db.WithContext(ctx)
	d := &model.AdminDashboard{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&d.TotalUsers, db.Model(&model.User{})},
		{&d.TotalCandidates, db.Model(&model.Candidate{})},
		{&d.TotalRecruiters, db.Model(&model.Recruiter{})},
		{&d.ActiveRecruiters, db.Model(&model.Recruiter{}).Where("is_active = ?", true)},
		{&d.UnassignedCandidates, db.Model(&model.Candidate{}).Where("assigned_recruiter_id IS NULL")},
		{&d.TotalApplications, db.Model(&model.JobApplication{})},
		{&d.RecruitersAtCapacity, db.Model(&model.Recruiter{}).
			Where("max_candidates <= (SELECT COUNT(*) FROM candidates WHERE candidates.assigned_recruiter_id = recruiters.id AND candidates.deleted_at IS NULL)")},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var rows []statusCount
	if err := db.Model(&model.Candidate{}).
		Select("payment_status AS status, COUNT(*) AS count").
		Group("payment_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	d.CandidatesByPayment = make(map[string]int64, len(rows))
	for _, row := range rows {
		d.CandidatesByPayment[row.Status] = row.Count
	}

	return d, nil
}
