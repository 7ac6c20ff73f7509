package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

type assignmentFixture struct {
	candidates *MockCandidateRepository
	recruiters *MockRecruiterRepository
	notifier   *MockNotifier
	activity   *recordedActivity
	svc        AssignmentService
}

func newAssignmentFixture() *assignmentFixture {
	f := &assignmentFixture{
		candidates: new(MockCandidateRepository),
		recruiters: new(MockRecruiterRepository),
		notifier:   new(MockNotifier),
		activity:   &recordedActivity{},
	}
	tx := fakeTransactor{repos: repository.Repositories{Candidates: f.candidates, Recruiters: f.recruiters}}
	f.svc = NewAssignmentService(tx, f.activity, f.notifier, nil)
	return f
}

func TestAssignmentService_Assign(t *testing.T) {
	admin := Actor{UserID: uuid.New(), Role: model.RoleAdmin}
	candidateID := uuid.New()
	recruiterID := uuid.New()
	otherRecruiterID := uuid.New()

	tests := []struct {
		name          string
		setup         func(f *assignmentFixture)
		expectedError error
		wantActions   []string
	}{
		{
			name: "assigns unassigned candidate",
			setup: func(f *assignmentFixture) {
				f.recruiters.On("FindByIDForUpdate", mock.Anything, recruiterID).
					Return(&model.Recruiter{ID: recruiterID, MaxCandidates: 2, IsActive: true}, nil)
				f.candidates.On("FindByIDForUpdate", mock.Anything, candidateID).
					Return(&model.Candidate{ID: candidateID}, nil)
				f.candidates.On("CountByRecruiter", mock.Anything, recruiterID).Return(int64(1), nil)
				f.candidates.On("SetAssignedRecruiter", mock.Anything, candidateID, &recruiterID).Return(nil)
				f.notifier.On("CandidateAssigned", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			wantActions: []string{model.ActionCandidateAssigned},
		},
		{
			name: "moves candidate from another recruiter",
			setup: func(f *assignmentFixture) {
				f.recruiters.On("FindByIDForUpdate", mock.Anything, recruiterID).
					Return(&model.Recruiter{ID: recruiterID, MaxCandidates: 2, IsActive: true}, nil)
				f.candidates.On("FindByIDForUpdate", mock.Anything, candidateID).
					Return(&model.Candidate{ID: candidateID, AssignedRecruiterID: &otherRecruiterID}, nil)
				f.candidates.On("CountByRecruiter", mock.Anything, recruiterID).Return(int64(0), nil)
				f.recruiters.On("FindByID", mock.Anything, otherRecruiterID).
					Return(&model.Recruiter{ID: otherRecruiterID}, nil)
				f.candidates.On("SetAssignedRecruiter", mock.Anything, candidateID, &recruiterID).Return(nil)
				f.notifier.On("CandidateUnassigned", mock.Anything, mock.Anything, mock.Anything).Return(nil)
				f.notifier.On("CandidateAssigned", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			wantActions: []string{model.ActionCandidateAssigned},
		},
		{
			name: "notification failure is not returned",
			setup: func(f *assignmentFixture) {
				f.recruiters.On("FindByIDForUpdate", mock.Anything, recruiterID).
					Return(&model.Recruiter{ID: recruiterID, MaxCandidates: 2, IsActive: true}, nil)
				f.candidates.On("FindByIDForUpdate", mock.Anything, candidateID).
					Return(&model.Candidate{ID: candidateID}, nil)
				f.candidates.On("CountByRecruiter", mock.Anything, recruiterID).Return(int64(0), nil)
				f.candidates.On("SetAssignedRecruiter", mock.Anything, candidateID, &recruiterID).Return(nil)
				f.notifier.On("CandidateAssigned", mock.Anything, mock.Anything, mock.Anything).Return(stderrors.New("smtp down"))
			},
			wantActions: []string{model.ActionCandidateAssigned},
		},
		{
			name: "recruiter at capacity",
			setup: func(f *assignmentFixture) {
				f.recruiters.On("FindByIDForUpdate", mock.Anything, recruiterID).
					Return(&model.Recruiter{ID: recruiterID, MaxCandidates: 2, IsActive: true}, nil)
				f.candidates.On("FindByIDForUpdate", mock.Anything, candidateID).
					Return(&model.Candidate{ID: candidateID}, nil)
				f.candidates.On("CountByRecruiter", mock.Anything, recruiterID).Return(int64(2), nil)
			},
			expectedError: errors.ErrRecruiterAtCapacity,
		},
		{
			name: "inactive recruiter",
			setup: func(f *assignmentFixture) {
				f.recruiters.On("FindByIDForUpdate", mock.Anything, recruiterID).
					Return(&model.Recruiter{ID: recruiterID, MaxCandidates: 2, IsActive: false}, nil)
				f.candidates.On("FindByIDForUpdate", mock.Anything, candidateID).
					Return(&model.Candidate{ID: candidateID}, nil)
			},
			expectedError: errors.ErrRecruiterInactive,
		},
		{
			name: "already assigned to the same recruiter",
			setup: func(f *assignmentFixture) {
				f.recruiters.On("FindByIDForUpdate", mock.Anything, recruiterID).
					Return(&model.Recruiter{ID: recruiterID, MaxCandidates: 2, IsActive: true}, nil)
				f.candidates.On("FindByIDForUpdate", mock.Anything, candidateID).
					Return(&model.Candidate{ID: candidateID, AssignedRecruiterID: &recruiterID}, nil)
			},
			expectedError: errors.ErrAlreadyAssigned,
		},
		{
			name: "recruiter not found",
			setup: func(f *assignmentFixture) {
				f.recruiters.On("FindByIDForUpdate", mock.Anything, recruiterID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrRecruiterNotFound,
		},
		{
			name: "candidate not found",
			setup: func(f *assignmentFixture) {
				f.recruiters.On("FindByIDForUpdate", mock.Anything, recruiterID).
					Return(&model.Recruiter{ID: recruiterID, MaxCandidates: 2, IsActive: true}, nil)
				f.candidates.On("FindByIDForUpdate", mock.Anything, candidateID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrCandidateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssignmentFixture()
			tt.setup(f)

			candidate, err := f.svc.Assign(context.Background(), admin, candidateID, recruiterID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, candidate)
				f.candidates.AssertNotCalled(t, "SetAssignedRecruiter", mock.Anything, mock.Anything, mock.Anything)
				assert.Empty(t, f.activity.Actions())
			} else {
				require.NoError(t, err)
				require.NotNil(t, candidate.AssignedRecruiterID)
				assert.Equal(t, recruiterID, *candidate.AssignedRecruiterID)
				assert.Equal(t, tt.wantActions, f.activity.Actions())
			}

			f.candidates.AssertExpectations(t)
			f.recruiters.AssertExpectations(t)
			f.notifier.AssertExpectations(t)
		})
	}
}

func TestAssignmentService_Unassign(t *testing.T) {
	admin := Actor{UserID: uuid.New(), Role: model.RoleAdmin}
	candidateID := uuid.New()
	recruiterID := uuid.New()

	t.Run("clears the recruiter", func(t *testing.T) {
		f := newAssignmentFixture()
		f.candidates.On("FindByIDForUpdate", mock.Anything, candidateID).
			Return(&model.Candidate{ID: candidateID, AssignedRecruiterID: &recruiterID}, nil)
		f.recruiters.On("FindByID", mock.Anything, recruiterID).Return(&model.Recruiter{ID: recruiterID}, nil)
		f.candidates.On("SetAssignedRecruiter", mock.Anything, candidateID, (*uuid.UUID)(nil)).Return(nil)
		f.notifier.On("CandidateUnassigned", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		candidate, err := f.svc.Unassign(context.Background(), admin, candidateID)

		require.NoError(t, err)
		assert.Nil(t, candidate.AssignedRecruiterID)
		assert.Equal(t, []string{model.ActionCandidateUnassigned}, f.activity.Actions())
		f.candidates.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("not assigned", func(t *testing.T) {
		f := newAssignmentFixture()
		f.candidates.On("FindByIDForUpdate", mock.Anything, candidateID).Return(&model.Candidate{ID: candidateID}, nil)

		_, err := f.svc.Unassign(context.Background(), admin, candidateID)

		assert.ErrorIs(t, err, errors.ErrNotAssigned)
	})
}
