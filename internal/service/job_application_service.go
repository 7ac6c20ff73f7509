package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

// CreateJobApplicationInput is a new job application for a candidate.
type CreateJobApplicationInput struct {
	CandidateID    string                  `json:"candidateId" validate:"required,uuid"`
	JobTitle       string                  `json:"jobTitle" validate:"required,max=255"`
	Company        string                  `json:"company" validate:"required,max=255"`
	JobURL         string                  `json:"jobUrl" validate:"omitempty,url,max=1024"`
	Location       string                  `json:"location" validate:"max=255"`
	JobDescription string                  `json:"jobDescription"`
	Status         model.ApplicationStatus `json:"status"`
	Notes          string                  `json:"notes"`
}

// UpdateJobApplicationInput edits a job application. Nil fields are left alone.
type UpdateJobApplicationInput struct {
	JobTitle       *string                  `json:"jobTitle" validate:"omitempty,min=1,max=255"`
	Company        *string                  `json:"company" validate:"omitempty,min=1,max=255"`
	JobURL         *string                  `json:"jobUrl" validate:"omitempty,max=1024"`
	Location       *string                  `json:"location" validate:"omitempty,max=255"`
	JobDescription *string                  `json:"jobDescription"`
	Status         *model.ApplicationStatus `json:"status"`
	ResumeText     *string                  `json:"resumeText"`
	Notes          *string                  `json:"notes"`
}

// JobApplicationService manages job applications. Recruiters only see their own candidates' applications.
type JobApplicationService interface {
	List(ctx context.Context, actor Actor, filter repository.JobApplicationFilter) (*Page[model.JobApplication], error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.JobApplication, error)
	Create(ctx context.Context, actor Actor, in CreateJobApplicationInput) (*model.JobApplication, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in UpdateJobApplicationInput) (*model.JobApplication, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.ApplicationStatus) (*model.JobApplication, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type jobApplicationService struct {
	applications repository.JobApplicationRepository
	candidates   repository.CandidateRepository
	access       accessChecker
	activity     ActivityService
	now          func() time.Time
}

// NewJobApplicationService creates a new job application service.
func NewJobApplicationService(
	applications repository.JobApplicationRepository,
	candidates repository.CandidateRepository,
	recruiters repository.RecruiterRepository,
	activity ActivityService,
) JobApplicationService {
	return &jobApplicationService{
		applications: applications,
		candidates:   candidates,
		access:       accessChecker{recruiters: recruiters},
		activity:     activity,
		now:          time.Now,
	}
}

func (s *jobApplicationService) List(ctx context.Context, actor Actor, filter repository.JobApplicationFilter) (*Page[model.JobApplication], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.ErrInvalidStatus
	}

	switch actor.Role {
	case model.RoleAdmin:
	case model.RoleRecruiter:
		recruiter, err := s.access.recruiterFor(ctx, actor)
		if err != nil {
			return nil, err
		}
		filter.RecruiterID = &recruiter.ID
	case model.RoleCandidate:
		candidate, err := s.candidates.FindByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, notFound(err, errors.ErrCandidateNotFound, "find candidate")
		}
		filter.CandidateID = &candidate.ID
		filter.RecruiterID = nil
	default:
		return nil, errors.ErrForbidden
	}

	apps, total, err := s.applications.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list job applications: %w", err)
	}
	return newPage(apps, total, filter.ListOptions), nil
}

func (s *jobApplicationService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.JobApplication, error) {
	app, err := s.applications.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrJobApplicationNotFound, "find job application")
	}
	if err := s.authorize(ctx, actor, app.CandidateID); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *jobApplicationService) Create(ctx context.Context, actor Actor, in CreateJobApplicationInput) (*model.JobApplication, error) {
	candidateID, err := uuid.Parse(in.CandidateID)
	if err != nil {
		return nil, errors.ErrInvalidID
	}
	status := in.Status
	if status == "" {
		status = model.ApplicationStatusSaved
	}
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}

	candidate, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return nil, notFound(err, errors.ErrCandidateNotFound, "find candidate")
	}
	if err := s.access.canAccessCandidate(ctx, actor, candidate); err != nil {
		return nil, err
	}

	app := &model.JobApplication{
		CandidateID:    candidate.ID,
		RecruiterID:    candidate.AssignedRecruiterID,
		JobTitle:       strings.TrimSpace(in.JobTitle),
		Company:        strings.TrimSpace(in.Company),
		JobURL:         in.JobURL,
		Location:       in.Location,
		JobDescription: in.JobDescription,
		Status:         status,
		ResumeStatus:   model.ResumeStatusNone,
		Notes:          in.Notes,
	}
	if status == model.ApplicationStatusApplied {
		now := s.now()
		app.AppliedAt = &now
	}

	if err := s.applications.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create job application: %w", err)
	}
	return app, nil
}

func (s *jobApplicationService) Update(ctx context.Context, actor Actor, id uuid.UUID, in UpdateJobApplicationInput) (*model.JobApplication, error) {
	app, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.JobTitle != nil {
		app.JobTitle = strings.TrimSpace(*in.JobTitle)
	}
	if in.Company != nil {
		app.Company = strings.TrimSpace(*in.Company)
	}
	if in.JobURL != nil {
		app.JobURL = *in.JobURL
	}
	if in.Location != nil {
		app.Location = *in.Location
	}
	if in.JobDescription != nil {
		app.JobDescription = *in.JobDescription
	}
	if in.Notes != nil {
		app.Notes = *in.Notes
	}
	if in.ResumeText != nil {
		app.ResumeText = *in.ResumeText
		if strings.TrimSpace(app.ResumeText) != "" && app.ResumeStatus == model.ResumeStatusNone {
			app.ResumeStatus = model.ResumeStatusGenerated
		}
	}
	previous := app.Status
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, errors.ErrInvalidStatus
		}
		s.setStatus(app, *in.Status)
	}

	if err := s.applications.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update job application: %w", err)
	}
	if previous != app.Status {
		s.recordStatus(ctx, actor, app, previous)
	}
	return app, nil
}

func (s *jobApplicationService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.ApplicationStatus) (*model.JobApplication, error) {
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	app, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if app.Status == status {
		return app, nil
	}

	previous := app.Status
	s.setStatus(app, status)
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update job application status: %w", err)
	}
	s.recordStatus(ctx, actor, app, previous)
	return app, nil
}

func (s *jobApplicationService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	app, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.applications.Delete(ctx, app.ID); err != nil {
		return fmt.Errorf("delete job application: %w", err)
	}
	return nil
}

// authorize checks the actor against the candidate the application belongs to.
// Candidates may read their own applications through List only.
func (s *jobApplicationService) authorize(ctx context.Context, actor Actor, candidateID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role != model.RoleRecruiter {
		return errors.ErrForbidden
	}
	candidate, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return notFound(err, errors.ErrJobApplicationNotFound, "find candidate")
	}
	return s.access.canAccessCandidate(ctx, actor, candidate)
}

func (s *jobApplicationService) setStatus(app *model.JobApplication, status model.ApplicationStatus) {
	app.Status = status
	if status == model.ApplicationStatusApplied && app.AppliedAt == nil {
		now := s.now()
		app.AppliedAt = &now
	}
}

func (s *jobApplicationService) recordStatus(ctx context.Context, actor Actor, app *model.JobApplication, previous model.ApplicationStatus) {
	s.activity.Record(ctx, actorRef(actor), model.ActionApplicationStatus, "job_application", app.ID,
		fmt.Sprintf("%s -> %s", previous, app.Status))
}
