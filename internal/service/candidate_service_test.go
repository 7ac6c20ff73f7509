package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

type candidateFixture struct {
	users      *MockUserRepository
	candidates *MockCandidateRepository
	recruiters *MockRecruiterRepository
	plans      *MockPlanRepository
	payments   *MockPaymentRepository
	activity   *recordedActivity
	svc        CandidateService
}

func newCandidateFixture() *candidateFixture {
	f := &candidateFixture{
		users:      new(MockUserRepository),
		candidates: new(MockCandidateRepository),
		recruiters: new(MockRecruiterRepository),
		plans:      new(MockPlanRepository),
		payments:   new(MockPaymentRepository),
		activity:   &recordedActivity{},
	}
	tx := fakeTransactor{repos: repository.Repositories{
		Users:      f.users,
		Candidates: f.candidates,
		Recruiters: f.recruiters,
		Plans:      f.plans,
		Payments:   f.payments,
	}}
	f.svc = NewCandidateService(f.candidates, f.recruiters, tx, f.activity, nil)
	return f
}

func TestCandidateService_Create(t *testing.T) {
	f := newCandidateFixture()
	f.users.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	f.candidates.On("Create", mock.Anything, mock.AnythingOfType("*model.Candidate")).Return(nil)

	candidate, err := f.svc.Create(context.Background(), CreateCandidateInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Skills:    []string{" Go ", "go", "", "SQL"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", candidate.FullName)
	assert.Equal(t, model.CandidateStatusNew, candidate.Status)
	assert.Equal(t, model.PaymentStatusPending, candidate.PaymentStatus)
	assert.Equal(t, []string{"Go", "SQL"}, []string(candidate.Skills))
	assert.NotEqual(t, uuid.Nil, candidate.UserID)
}

func TestCandidateService_CreateDuplicateEmail(t *testing.T) {
	f := newCandidateFixture()
	f.users.On("FindByEmail", mock.Anything, "ada@example.com").Return(&model.User{}, nil)

	_, err := f.svc.Create(context.Background(), CreateCandidateInput{FirstName: "Ada", Email: "ada@example.com"})

	assert.ErrorIs(t, err, errors.ErrEmailTaken)
	f.candidates.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCandidateService_Update(t *testing.T) {
	id := uuid.New()
	userID := uuid.New()

	t.Run("email change moves the login", func(t *testing.T) {
		f := newCandidateFixture()
		candidate := &model.Candidate{ID: id, UserID: userID, FirstName: "Ada", Email: "ada@example.com"}
		user := &model.User{ID: userID, Email: "ada@example.com", Username: "ada@example.com"}

		f.candidates.On("FindByID", mock.Anything, id).Return(candidate, nil)
		f.users.On("FindByEmail", mock.Anything, "Ada.King@Example.com").Return(nil, gorm.ErrRecordNotFound)
		f.users.On("FindByID", mock.Anything, userID).Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)
		f.candidates.On("Update", mock.Anything, candidate).Return(nil)

		email := "Ada.King@Example.com"
		updated, err := f.svc.Update(context.Background(), id, UpdateCandidateInput{Email: &email})

		require.NoError(t, err)
		assert.Equal(t, email, updated.Email)
		assert.Equal(t, "ada.king@example.com", user.Email)
		assert.Equal(t, "ada.king@example.com", user.Username)
		f.users.AssertExpectations(t)
	})

	t.Run("email owned by another user", func(t *testing.T) {
		f := newCandidateFixture()
		candidate := &model.Candidate{ID: id, UserID: userID, FirstName: "Ada", Email: "ada@example.com"}

		f.candidates.On("FindByID", mock.Anything, id).Return(candidate, nil)
		f.users.On("FindByEmail", mock.Anything, "recruiter@example.com").Return(&model.User{ID: uuid.New()}, nil)

		email := "recruiter@example.com"
		_, err := f.svc.Update(context.Background(), id, UpdateCandidateInput{Email: &email})

		assert.ErrorIs(t, err, errors.ErrEmailTaken)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.candidates.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("same email in other case leaves the login alone", func(t *testing.T) {
		f := newCandidateFixture()
		candidate := &model.Candidate{ID: id, UserID: userID, FirstName: "Ada", Email: "ada@example.com"}

		f.candidates.On("FindByID", mock.Anything, id).Return(candidate, nil)
		f.candidates.On("Update", mock.Anything, candidate).Return(nil)

		email := "ADA@example.com"
		_, err := f.svc.Update(context.Background(), id, UpdateCandidateInput{Email: &email})

		require.NoError(t, err)
		f.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}

func TestCandidateService_UpdatePaymentStatusPaid(t *testing.T) {
	f := newCandidateFixture()
	id := uuid.New()
	candidate := &model.Candidate{ID: id, SubscriptionPlan: "executive", PaymentStatus: model.PaymentStatusPending}
	payment := &model.SubscriptionPayment{CandidateID: id, Status: model.PaymentStatusPending}

	f.candidates.On("FindByIDForUpdate", mock.Anything, id).Return(candidate, nil)
	f.plans.On("FindByPlanID", mock.Anything, "executive").Return(&model.Plan{PlanID: "executive", DurationDays: 90}, nil)
	f.candidates.On("Update", mock.Anything, candidate).Return(nil)
	f.payments.On("FindLatestByCandidate", mock.Anything, id).Return(payment, nil)
	f.payments.On("Update", mock.Anything, payment).Return(nil)

	admin := Actor{UserID: uuid.New(), Role: model.RoleAdmin}
	updated, err := f.svc.UpdatePaymentStatus(context.Background(), admin, id, model.PaymentStatusPaid)

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, updated.PaymentStatus)
	require.NotNil(t, updated.SubscriptionExpiresAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 90), *updated.SubscriptionExpiresAt, time.Minute)
	assert.Equal(t, model.PaymentStatusPaid, payment.Status)
	assert.NotNil(t, payment.PaidAt)
	assert.Equal(t, []string{model.ActionPaymentStatus}, f.activity.Actions())
}

func TestCandidateService_Subscribe(t *testing.T) {
	userID := uuid.New()

	t.Run("opens pending payment", func(t *testing.T) {
		f := newCandidateFixture()
		candidate := &model.Candidate{ID: uuid.New(), UserID: userID, PaymentStatus: model.PaymentStatusExpired}
		f.plans.On("FindByPlanID", mock.Anything, "basic").
			Return(&model.Plan{PlanID: "basic", Price: decimal.NewFromInt(29), Currency: "USD", Status: model.PlanStatusActive}, nil)
		f.candidates.On("FindByUserID", mock.Anything, userID).Return(candidate, nil)
		f.candidates.On("Update", mock.Anything, candidate).Return(nil)
		f.payments.On("Create", mock.Anything, mock.AnythingOfType("*model.SubscriptionPayment")).Return(nil)

		updated, payment, err := f.svc.Subscribe(context.Background(), userID, " Basic ")

		require.NoError(t, err)
		assert.Equal(t, "basic", updated.SubscriptionPlan)
		assert.Equal(t, model.PaymentStatusPending, updated.PaymentStatus)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(29)))
		assert.Equal(t, model.PaymentStatusPending, payment.Status)
	})

	t.Run("inactive plan", func(t *testing.T) {
		f := newCandidateFixture()
		f.plans.On("FindByPlanID", mock.Anything, "old").Return(&model.Plan{PlanID: "old", Status: model.PlanStatusInactive}, nil)

		_, _, err := f.svc.Subscribe(context.Background(), userID, "old")

		assert.ErrorIs(t, err, errors.ErrPlanInactive)
	})
}

func TestCandidateService_GetForActor(t *testing.T) {
	candidateID := uuid.New()
	ownerUser := uuid.New()
	recruiterUser := uuid.New()
	recruiterID := uuid.New()

	tests := []struct {
		name          string
		actor         Actor
		assignedTo    *uuid.UUID
		recruiter     *model.Recruiter
		expectedError error
	}{
		{name: "admin", actor: Actor{UserID: uuid.New(), Role: model.RoleAdmin}},
		{name: "the candidate itself", actor: Actor{UserID: ownerUser, Role: model.RoleCandidate}},
		{name: "another candidate", actor: Actor{UserID: uuid.New(), Role: model.RoleCandidate}, expectedError: errors.ErrForbidden},
		{
			name:       "assigned recruiter",
			actor:      Actor{UserID: recruiterUser, Role: model.RoleRecruiter},
			assignedTo: &recruiterID,
			recruiter:  &model.Recruiter{ID: recruiterID, IsActive: true},
		},
		{
			name:          "unassigned recruiter",
			actor:         Actor{UserID: recruiterUser, Role: model.RoleRecruiter},
			recruiter:     &model.Recruiter{ID: recruiterID, IsActive: true},
			expectedError: errors.ErrForbidden,
		},
		{
			name:          "deactivated recruiter",
			actor:         Actor{UserID: recruiterUser, Role: model.RoleRecruiter},
			assignedTo:    &recruiterID,
			recruiter:     &model.Recruiter{ID: recruiterID, IsActive: false},
			expectedError: errors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCandidateFixture()
			f.candidates.On("FindByID", mock.Anything, candidateID).
				Return(&model.Candidate{ID: candidateID, UserID: ownerUser, AssignedRecruiterID: tt.assignedTo}, nil)
			if tt.recruiter != nil {
				f.recruiters.On("FindByUserID", mock.Anything, recruiterUser).Return(tt.recruiter, nil)
			}

			candidate, err := f.svc.GetForActor(context.Background(), tt.actor, candidateID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, candidate)
			} else {
				require.NoError(t, err)
				assert.Equal(t, candidateID, candidate.ID)
			}
		})
	}
}
