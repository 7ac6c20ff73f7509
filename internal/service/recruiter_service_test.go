package service

import (
	"context"
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

func TestRecruiterService_Delete(t *testing.T) {
	admin := Actor{UserID: uuid.New(), Role: model.RoleAdmin}
	recruiterID := uuid.New()
	userID := uuid.New()

	t.Run("releases candidates and disables login", func(t *testing.T) {
		users := new(MockUserRepository)
		candidates := new(MockCandidateRepository)
		recruiters := new(MockRecruiterRepository)
		apps := new(MockJobApplicationRepository)
		activity := &recordedActivity{}

		recruiters.On("FindByIDForUpdate", mock.Anything, recruiterID).Return(&model.Recruiter{ID: recruiterID, UserID: userID}, nil)
		candidates.On("UnassignAllFromRecruiter", mock.Anything, recruiterID).Return(int64(3), nil)
		recruiters.On("Delete", mock.Anything, recruiterID).Return(nil)
		users.On("SetStatus", mock.Anything, userID, model.UserStatusInactive).Return(nil)

		tx := fakeTransactor{repos: repository.Repositories{
			Users: users, Candidates: candidates, Recruiters: recruiters, Applications: apps,
		}}
		svc := NewRecruiterService(recruiters, candidates, tx, activity, nil)

		require.NoError(t, svc.Delete(context.Background(), admin, recruiterID))
		assert.Equal(t, []string{model.ActionRecruiterDeleted}, activity.Actions())
		users.AssertExpectations(t)
		candidates.AssertExpectations(t)
		recruiters.AssertExpectations(t)
		apps.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		recruiters := new(MockRecruiterRepository)
		recruiters.On("FindByIDForUpdate", mock.Anything, recruiterID).Return(nil, gorm.ErrRecordNotFound)
		tx := fakeTransactor{repos: repository.Repositories{Recruiters: recruiters}}
		svc := NewRecruiterService(recruiters, new(MockCandidateRepository), tx, &recordedActivity{}, nil)

		assert.ErrorIs(t, svc.Delete(context.Background(), admin, recruiterID), errors.ErrRecruiterNotFound)
	})
}

func TestRecruiterService_UpdateRejectsCapacityBelowAssigned(t *testing.T) {
	id := uuid.New()
	recruiters := new(MockRecruiterRepository)
	recruiters.On("FindByID", mock.Anything, id).Return(&model.Recruiter{ID: id, MaxCandidates: 10, AssignedCount: 5}, nil)
	svc := NewRecruiterService(recruiters, new(MockCandidateRepository), fakeTransactor{}, &recordedActivity{}, nil)

	limit := 4
	_, err := svc.Update(context.Background(), id, UpdateRecruiterInput{MaxCandidates: &limit})

	var httpErr *errors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "VALIDATION_ERROR", httpErr.Code)
	recruiters.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRecruiterService_CreateDefaultsCapacity(t *testing.T) {
	users := new(MockUserRepository)
	recruiters := new(MockRecruiterRepository)
	users.On("FindByEmail", mock.Anything, "r@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleRecruiter
	})).Return(nil)
	recruiters.On("Create", mock.Anything, mock.AnythingOfType("*model.Recruiter")).Return(nil)

	tx := fakeTransactor{repos: repository.Repositories{Users: users, Recruiters: recruiters}}
	svc := NewRecruiterService(recruiters, new(MockCandidateRepository), tx, &recordedActivity{}, nil)

	recruiter, err := svc.Create(context.Background(), CreateRecruiterInput{FullName: "Rita", Email: "r@example.com"})

	require.NoError(t, err)
	assert.Equal(t, model.DefaultMaxCandidates, recruiter.MaxCandidates)
	assert.True(t, recruiter.IsActive)
	assert.NotEqual(t, uuid.Nil, recruiter.UserID)
	assert.Zero(t, recruiter.Workload)
}
