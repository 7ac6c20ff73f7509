package service

import (
	"context"
	"fmt"

	"recruitflow/internal/cache"
	"recruitflow/internal/logger"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

const recentActivityLimit = 10

// DashboardService aggregates counters for the admin and recruiter dashboards.
type DashboardService interface {
	Admin(ctx context.Context) (*model.AdminDashboard, error)
	Recruiter(ctx context.Context, actor Actor) (*model.RecruiterDashboard, error)
}

type dashboardService struct {
	stats        repository.StatsRepository
	applications repository.JobApplicationRepository
	payments     repository.PaymentRepository
	activity     repository.ActivityLogRepository
	access       accessChecker
	cache        *cache.Client
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	stats repository.StatsRepository,
	applications repository.JobApplicationRepository,
	payments repository.PaymentRepository,
	activity repository.ActivityLogRepository,
	recruiters repository.RecruiterRepository,
	cache *cache.Client,
) DashboardService {
	return &dashboardService{
		stats:        stats,
		applications: applications,
		payments:     payments,
		activity:     activity,
		access:       accessChecker{recruiters: recruiters},
		cache:        cache,
	}
}

func (s *dashboardService) Admin(ctx context.Context) (*model.AdminDashboard, error) {
	var cached model.AdminDashboard
	if s.cache.GetJSON(ctx, cacheKeyAdminDashboard, &cached) {
		return &cached, nil
	}

	d, err := s.stats.AdminCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	if d.ApplicationsByStatus, err = s.applications.CountByStatus(ctx, nil); err != nil {
		return nil, fmt.Errorf("applications by status: %w", err)
	}
	if d.ResumesGenerated, err = s.applications.CountGenerated(ctx, nil); err != nil {
		return nil, fmt.Errorf("resumes generated: %w", err)
	}
	if d.SubscriptionRevenue, err = s.payments.SumPaid(ctx); err != nil {
		return nil, fmt.Errorf("subscription revenue: %w", err)
	}
	recent, _, err := s.activity.List(ctx, repository.ListOptions{Page: 1, Limit: recentActivityLimit})
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	if recent == nil {
		recent = []model.ActivityLog{}
	}
	d.RecentActivity = recent

	if err := s.cache.SetJSON(ctx, cacheKeyAdminDashboard, d, adminDashboardTTL); err != nil {
		logger.WithError(err).Debug("failed to cache admin dashboard")
	}
	return d, nil
}

func (s *dashboardService) Recruiter(ctx context.Context, actor Actor) (*model.RecruiterDashboard, error) {
	recruiter, err := s.access.recruiterFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.applications.CountByStatus(ctx, &recruiter.ID)
	if err != nil {
		return nil, fmt.Errorf("applications by status: %w", err)
	}
	generated, err := s.applications.CountGenerated(ctx, &recruiter.ID)
	if err != nil {
		return nil, fmt.Errorf("resumes generated: %w", err)
	}

	return &model.RecruiterDashboard{
		Recruiter:            recruiter,
		AssignedCandidates:   recruiter.AssignedCount,
		MaxCandidates:        recruiter.MaxCandidates,
		Workload:             recruiter.Workload,
		ApplicationsByStatus: byStatus,
		ResumesGenerated:     generated,
	}, nil
}
