package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCandidateRepository is a mock implementation of CandidateRepository.
type MockCandidateRepository struct {
	mock.Mock
}

func (m *MockCandidateRepository) Create(ctx context.Context, candidate *model.Candidate) error {
	args := m.Called(ctx, candidate)
	if candidate.ID == uuid.Nil {
		candidate.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockCandidateRepository) Update(ctx context.Context, candidate *model.Candidate) error {
	args := m.Called(ctx, candidate)
	return args.Error(0)
}

func (m *MockCandidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Candidate, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) List(ctx context.Context, filter repository.CandidateFilter) ([]model.Candidate, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Candidate), args.Get(1).(int64), args.Error(2)
}

func (m *MockCandidateRepository) ListAll(ctx context.Context) ([]model.Candidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) CountByRecruiter(ctx context.Context, recruiterID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recruiterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCandidateRepository) SetAssignedRecruiter(ctx context.Context, candidateID uuid.UUID, recruiterID *uuid.UUID) error {
	args := m.Called(ctx, candidateID, recruiterID)
	return args.Error(0)
}

func (m *MockCandidateRepository) UnassignAllFromRecruiter(ctx context.Context, recruiterID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recruiterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCandidateRepository) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCandidateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRecruiterRepository is a mock implementation of RecruiterRepository.
type MockRecruiterRepository struct {
	mock.Mock
}

func (m *MockRecruiterRepository) Create(ctx context.Context, recruiter *model.Recruiter) error {
	args := m.Called(ctx, recruiter)
	if recruiter.ID == uuid.Nil {
		recruiter.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRecruiterRepository) Update(ctx context.Context, recruiter *model.Recruiter) error {
	args := m.Called(ctx, recruiter)
	return args.Error(0)
}

func (m *MockRecruiterRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Recruiter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recruiter), args.Error(1)
}

func (m *MockRecruiterRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Recruiter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recruiter), args.Error(1)
}

func (m *MockRecruiterRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Recruiter, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recruiter), args.Error(1)
}

func (m *MockRecruiterRepository) List(ctx context.Context, filter repository.RecruiterFilter) ([]model.Recruiter, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Recruiter), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecruiterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockJobApplicationRepository is a mock implementation of JobApplicationRepository.
type MockJobApplicationRepository struct {
	mock.Mock
}

func (m *MockJobApplicationRepository) Create(ctx context.Context, app *model.JobApplication) error {
	args := m.Called(ctx, app)
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockJobApplicationRepository) Update(ctx context.Context, app *model.JobApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockJobApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.JobApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.JobApplication), args.Error(1)
}

func (m *MockJobApplicationRepository) List(ctx context.Context, filter repository.JobApplicationFilter) ([]model.JobApplication, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.JobApplication), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobApplicationRepository) ListAll(ctx context.Context) ([]model.JobApplication, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.JobApplication), args.Error(1)
}

func (m *MockJobApplicationRepository) CountByStatus(ctx context.Context, recruiterID *uuid.UUID) (map[string]int64, error) {
	args := m.Called(ctx, recruiterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockJobApplicationRepository) CountGenerated(ctx context.Context, recruiterID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, recruiterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPlanRepository is a mock implementation of PlanRepository.
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *model.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Update(ctx context.Context, plan *model.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindByPlanID(ctx context.Context, planID string) (*model.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func (m *MockPlanRepository) List(ctx context.Context, status model.PlanStatus) ([]model.Plan, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Plan), args.Error(1)
}

func (m *MockPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *model.SubscriptionPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *model.SubscriptionPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (*model.SubscriptionPayment, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubscriptionPayment), args.Error(1)
}

func (m *MockPaymentRepository) SumPaid(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockGenerator is a mock implementation of llm.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) CandidateAssigned(ctx context.Context, candidate *model.Candidate, recruiter *model.Recruiter) error {
	args := m.Called(ctx, candidate, recruiter)
	return args.Error(0)
}

func (m *MockNotifier) CandidateUnassigned(ctx context.Context, candidate *model.Candidate, recruiter *model.Recruiter) error {
	args := m.Called(ctx, candidate, recruiter)
	return args.Error(0)
}

// fakeTransactor runs fn directly against the mocked repositories.
type fakeTransactor struct {
	repos repository.Repositories
}

func (f fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return fn(ctx, f.repos)
}

// recordedActivity captures Record calls.
type recordedActivity struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordedActivity) Record(_ context.Context, _ *uuid.UUID, action, _ string, _ uuid.UUID, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordedActivity) List(context.Context, repository.ListOptions) (*Page[model.ActivityLog], error) {
	return newPage[model.ActivityLog](nil, 0, repository.ListOptions{}), nil
}

func (r *recordedActivity) Close() {}

func (r *recordedActivity) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.actions...)
}
