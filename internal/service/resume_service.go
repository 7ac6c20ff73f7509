package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"recruitflow/internal/errors"
	"recruitflow/internal/llm"
	"recruitflow/internal/logger"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

const (
	defaultGeneratedJobTitle = "Untitled role"
	defaultGeneratedCompany  = "Unspecified company"
)

// GenerateResumeInput asks for a resume tailored to one job.
type GenerateResumeInput struct {
	CandidateID      string `json:"candidateId" validate:"required,uuid"`
	JobDescription   string `json:"jobDescription"`
	JobTitle         string `json:"jobTitle" validate:"max=255"`
	Company          string `json:"company" validate:"max=255"`
	JobApplicationID string `json:"jobApplicationId" validate:"omitempty,uuid"`
}

// GeneratedResume is the outcome of a generation request.
type GeneratedResume struct {
	JobApplication *model.JobApplication `json:"jobApplication"`
	ResumeText     string                `json:"resumeText"`
	MatchScore     int                   `json:"matchScore"`
}

// ResumeService generates tailored resumes with the text generator.
type ResumeService interface {
	Generate(ctx context.Context, actor Actor, in GenerateResumeInput) (*GeneratedResume, error)
}

type resumeService struct {
	generator    llm.Generator
	candidates   repository.CandidateRepository
	applications repository.JobApplicationRepository
	access       accessChecker
	activity     ActivityService

	ratePerMinute int
	limiters      sync.Map // uuid.UUID -> *rate.Limiter
}

// NewResumeService creates a resume service. ratePerMinute <= 0 disables rate limiting.
func NewResumeService(
	generator llm.Generator,
	candidates repository.CandidateRepository,
	recruiters repository.RecruiterRepository,
	applications repository.JobApplicationRepository,
	activity ActivityService,
	ratePerMinute int,
) ResumeService {
	return &resumeService{
		generator:     generator,
		candidates:    candidates,
		applications:  applications,
		access:        accessChecker{recruiters: recruiters},
		activity:      activity,
		ratePerMinute: ratePerMinute,
	}
}

func (s *resumeService) Generate(ctx context.Context, actor Actor, in GenerateResumeInput) (*GeneratedResume, error) {
	if strings.TrimSpace(in.JobDescription) == "" {
		return nil, errors.ErrJobDescriptionRequired
	}
	candidateID, err := uuid.Parse(in.CandidateID)
	if err != nil {
		return nil, errors.ErrInvalidID
	}

	candidate, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return nil, notFound(err, errors.ErrCandidateNotFound, "find candidate")
	}
	if actor.Role == model.RoleCandidate {
		return nil, errors.ErrForbidden
	}
	if err := s.access.canAccessCandidate(ctx, actor, candidate); err != nil {
		return nil, err
	}

	var app *model.JobApplication
	if in.JobApplicationID != "" {
		appID, err := uuid.Parse(in.JobApplicationID)
		if err != nil {
			return nil, errors.ErrInvalidID
		}
		app, err = s.applications.FindByID(ctx, appID)
		if err != nil {
			return nil, notFound(err, errors.ErrJobApplicationNotFound, "find job application")
		}
		if app.CandidateID != candidate.ID {
			return nil, errors.ErrForbidden
		}
	}

	if !s.allow(actor.UserID) {
		return nil, errors.ErrRateLimited
	}

	if app != nil {
		app.ResumeStatus = model.ResumeStatusGenerating
		if err := s.applications.Update(ctx, app); err != nil {
			return nil, fmt.Errorf("update job application: %w", err)
		}
	}

	jobTitle := strings.TrimSpace(in.JobTitle)
	company := strings.TrimSpace(in.Company)
	if app != nil {
		if jobTitle == "" {
			jobTitle = app.JobTitle
		}
		if company == "" {
			company = app.Company
		}
	}

	log := logger.With("candidate_id", candidate.ID, "actor_id", actor.UserID)
	started := time.Now()
	prompt := buildResumePrompt(candidate, jobTitle, company, in.JobDescription)

	text, genErr := s.generator.Generate(ctx, prompt)
	if genErr == nil {
		text = llm.StripFences(text)
		if text == "" {
			genErr = errors.ErrEmptyGeneration
		}
	}
	if genErr != nil {
		log.Warn("resume generation failed", "error", genErr, "duration", time.Since(started))
		s.markFailed(ctx, actor, app, genErr)
		if stderrors.Is(genErr, errors.ErrEmptyGeneration) {
			return nil, genErr
		}
		return nil, fmt.Errorf("%w: %w", errors.ErrGenerationFailed, genErr)
	}

	score := matchScore(candidate.Skills, in.JobDescription)
	if app == nil {
		if jobTitle == "" {
			jobTitle = defaultGeneratedJobTitle
		}
		if company == "" {
			company = defaultGeneratedCompany
		}
		app = &model.JobApplication{
			CandidateID:    candidate.ID,
			RecruiterID:    candidate.AssignedRecruiterID,
			JobTitle:       jobTitle,
			Company:        company,
			JobDescription: in.JobDescription,
			Status:         model.ApplicationStatusSaved,
			ResumeStatus:   model.ResumeStatusGenerated,
			ResumeText:     text,
			MatchScore:     score,
		}
		if err := s.applications.Create(ctx, app); err != nil {
			return nil, fmt.Errorf("create job application: %w", err)
		}
	} else {
		app.JobDescription = in.JobDescription
		app.ResumeStatus = model.ResumeStatusGenerated
		app.ResumeText = text
		app.MatchScore = score
		if err := s.applications.Update(ctx, app); err != nil {
			return nil, fmt.Errorf("update job application: %w", err)
		}
	}

	log.Info("resume generated", "job_application_id", app.ID, "match_score", score, "duration", time.Since(started))
	s.activity.Record(ctx, actorRef(actor), model.ActionResumeGenerated, "job_application", app.ID,
		fmt.Sprintf("match score %d", score))

	return &GeneratedResume{JobApplication: app, ResumeText: text, MatchScore: score}, nil
}

// markFailed records the failure on an existing application. Errors are logged only.
func (s *resumeService) markFailed(ctx context.Context, actor Actor, app *model.JobApplication, cause error) {
	if app == nil {
		return
	}
	app.ResumeStatus = model.ResumeStatusFailed
	if err := s.applications.Update(ctx, app); err != nil {
		logger.WithError(err).Warn("failed to mark resume generation failed", "job_application_id", app.ID)
	}
	s.activity.Record(ctx, actorRef(actor), model.ActionResumeFailed, "job_application", app.ID, cause.Error())
}

// allow takes a token from the caller's bucket.
func (s *resumeService) allow(userID uuid.UUID) bool {
	if s.ratePerMinute <= 0 {
		return true
	}
	limiter, _ := s.limiters.LoadOrStore(userID,
		rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.ratePerMinute)), s.ratePerMinute))
	return limiter.(*rate.Limiter).Allow()
}
