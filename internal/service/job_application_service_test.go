package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

func TestJobApplicationService_Create(t *testing.T) {
	recruiterUser := uuid.New()
	recruiterID := uuid.New()
	candidateID := uuid.New()
	recruiter := &model.Recruiter{ID: recruiterID, UserID: recruiterUser, IsActive: true}
	actor := Actor{UserID: recruiterUser, Role: model.RoleRecruiter}

	tests := []struct {
		name          string
		input         CreateJobApplicationInput
		candidate     *model.Candidate
		expectedError error
		wantStatus    model.ApplicationStatus
	}{
		{
			name:       "defaults to saved",
			input:      CreateJobApplicationInput{CandidateID: candidateID.String(), JobTitle: "Engineer", Company: "Acme"},
			candidate:  &model.Candidate{ID: candidateID, AssignedRecruiterID: &recruiterID},
			wantStatus: model.ApplicationStatusSaved,
		},
		{
			name:       "applied sets applied date",
			input:      CreateJobApplicationInput{CandidateID: candidateID.String(), JobTitle: "Engineer", Company: "Acme", Status: model.ApplicationStatusApplied},
			candidate:  &model.Candidate{ID: candidateID, AssignedRecruiterID: &recruiterID},
			wantStatus: model.ApplicationStatusApplied,
		},
		{
			name:          "invalid status",
			input:         CreateJobApplicationInput{CandidateID: candidateID.String(), JobTitle: "Engineer", Company: "Acme", Status: "hired"},
			expectedError: errors.ErrInvalidStatus,
		},
		{
			name:          "unassigned candidate",
			input:         CreateJobApplicationInput{CandidateID: candidateID.String(), JobTitle: "Engineer", Company: "Acme"},
			candidate:     &model.Candidate{ID: candidateID},
			expectedError: errors.ErrForbidden,
		},
		{
			name:          "malformed candidate id",
			input:         CreateJobApplicationInput{CandidateID: "abc", JobTitle: "Engineer", Company: "Acme"},
			expectedError: errors.ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps := new(MockJobApplicationRepository)
			candidates := new(MockCandidateRepository)
			recruiters := new(MockRecruiterRepository)
			if tt.candidate != nil {
				candidates.On("FindByID", mock.Anything, candidateID).Return(tt.candidate, nil)
				recruiters.On("FindByUserID", mock.Anything, recruiterUser).Return(recruiter, nil)
			}
			if tt.expectedError == nil {
				apps.On("Create", mock.Anything, mock.AnythingOfType("*model.JobApplication")).Return(nil)
			}

			svc := NewJobApplicationService(apps, candidates, recruiters, &recordedActivity{})
			app, err := svc.Create(context.Background(), actor, tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				apps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, app.Status)
			assert.Equal(t, model.ResumeStatusNone, app.ResumeStatus)
			assert.Equal(t, &recruiterID, app.RecruiterID)
			assert.Equal(t, tt.wantStatus == model.ApplicationStatusApplied, app.AppliedAt != nil)
		})
	}
}

func TestJobApplicationService_ListScopesRecruiter(t *testing.T) {
	recruiterUser := uuid.New()
	recruiterID := uuid.New()
	apps := new(MockJobApplicationRepository)
	recruiters := new(MockRecruiterRepository)
	recruiters.On("FindByUserID", mock.Anything, recruiterUser).Return(&model.Recruiter{ID: recruiterID, IsActive: true}, nil)
	apps.On("List", mock.Anything, mock.MatchedBy(func(f repository.JobApplicationFilter) bool {
		return f.RecruiterID != nil && *f.RecruiterID == recruiterID
	})).Return([]model.JobApplication{{ID: uuid.New()}}, int64(1), nil)

	svc := NewJobApplicationService(apps, new(MockCandidateRepository), recruiters, &recordedActivity{})
	page, err := svc.List(context.Background(), Actor{UserID: recruiterUser, Role: model.RoleRecruiter}, repository.JobApplicationFilter{})

	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
	apps.AssertExpectations(t)
}

func TestJobApplicationService_UpdateStatus(t *testing.T) {
	appID := uuid.New()
	candidateID := uuid.New()
	admin := Actor{UserID: uuid.New(), Role: model.RoleAdmin}

	apps := new(MockJobApplicationRepository)
	app := &model.JobApplication{ID: appID, CandidateID: candidateID, Status: model.ApplicationStatusSaved}
	apps.On("FindByID", mock.Anything, appID).Return(app, nil)
	apps.On("Update", mock.Anything, app).Return(nil)
	activity := &recordedActivity{}

	svc := NewJobApplicationService(apps, new(MockCandidateRepository), new(MockRecruiterRepository), activity)

	updated, err := svc.UpdateStatus(context.Background(), admin, appID, model.ApplicationStatusApplied)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusApplied, updated.Status)
	assert.NotNil(t, updated.AppliedAt)
	assert.Equal(t, []string{model.ActionApplicationStatus}, activity.Actions())

	_, err = svc.UpdateStatus(context.Background(), admin, appID, "bogus")
	assert.ErrorIs(t, err, errors.ErrInvalidStatus)
}
