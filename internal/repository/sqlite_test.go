package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recruitflow/internal/db"
	"recruitflow/internal/model"
)

// newTestDB opens a migrated sqlite database that lives for the duration of the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "recruitflow.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{Email: email, Username: email, PasswordHash: "hash", Role: role, Status: model.UserStatusActive}
	require.NoError(t, NewUserRepository(conn).Create(context.Background(), user))
	return user
}

func seedRecruiter(t *testing.T, conn *gorm.DB, email string, maxCandidates int) *model.Recruiter {
	t.Helper()
	user := seedUser(t, conn, email, model.RoleRecruiter)
	recruiter := &model.Recruiter{UserID: user.ID, FullName: email, Email: email, MaxCandidates: maxCandidates, IsActive: true}
	require.NoError(t, NewRecruiterRepository(conn).Create(context.Background(), recruiter))
	return recruiter
}

func seedCandidate(t *testing.T, conn *gorm.DB, first, last, email string, recruiterID *uuid.UUID) *model.Candidate {
	t.Helper()
	user := seedUser(t, conn, email, model.RoleCandidate)
	candidate := &model.Candidate{
		UserID:              user.ID,
		FirstName:           first,
		LastName:            last,
		Email:               email,
		Status:              model.CandidateStatusNew,
		PaymentStatus:       model.PaymentStatusPending,
		AssignedRecruiterID: recruiterID,
	}
	require.NoError(t, NewCandidateRepository(conn).Create(context.Background(), candidate))
	return candidate
}

func TestUserRepository_EmailCase(t *testing.T) {
	conn := newTestDB(t)
	users := NewUserRepository(conn)
	ctx := context.Background()

	user := &model.User{Email: " Ann@Example.COM ", PasswordHash: "hash", Role: model.RoleAdmin, Status: model.UserStatusActive}
	require.NoError(t, users.Create(ctx, user))
	assert.Equal(t, "ann@example.com", user.Email)

	found, err := users.FindByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	err = users.Create(ctx, &model.User{Email: "ann@example.com", PasswordHash: "hash", Role: model.RoleAdmin})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	user.Email = "Ann.New@Example.com"
	require.NoError(t, users.Update(ctx, user))

	reloaded, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann.new@example.com", reloaded.Email)

	_, err = users.FindByEmail(ctx, "ann@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCandidateRepository_List(t *testing.T) {
	conn := newTestDB(t)
	candidates := NewCandidateRepository(conn)
	ctx := context.Background()

	recruiter := seedRecruiter(t, conn, "rita@example.com", 5)
	ada := seedCandidate(t, conn, "Ada", "Lovelace", "Ada@Example.com", &recruiter.ID)
	grace := seedCandidate(t, conn, "Grace", "Hopper", "grace@example.com", nil)

	t.Run("created candidates are listed", func(t *testing.T) {
		list, total, err := candidates.List(ctx, CandidateFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)
	})

	t.Run("query matches full name and stored email", func(t *testing.T) {
		list, total, err := candidates.List(ctx, CandidateFilter{Query: "LOVELACE"})
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		assert.Equal(t, ada.ID, list[0].ID)
		assert.Equal(t, "Ada Lovelace", list[0].FullName)
		assert.Equal(t, "ada@example.com", list[0].Email)
		require.NotNil(t, list[0].AssignedRecruiter)
		assert.Equal(t, recruiter.ID, list[0].AssignedRecruiter.ID)

		list, _, err = candidates.List(ctx, CandidateFilter{Query: "ada@"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, ada.ID, list[0].ID)
	})

	t.Run("assignment filters", func(t *testing.T) {
		unassigned := false
		list, total, err := candidates.List(ctx, CandidateFilter{Assigned: &unassigned})
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		assert.Equal(t, grace.ID, list[0].ID)

		list, total, err = candidates.List(ctx, CandidateFilter{RecruiterID: &recruiter.ID})
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		assert.Equal(t, ada.ID, list[0].ID)
	})

	t.Run("soft-deleted candidates are hidden", func(t *testing.T) {
		require.NoError(t, candidates.Delete(ctx, grace.ID))

		_, total, err := candidates.List(ctx, CandidateFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}

func TestRecruiterRepository_AssignedCount(t *testing.T) {
	conn := newTestDB(t)
	recruiters := NewRecruiterRepository(conn)
	candidates := NewCandidateRepository(conn)
	ctx := context.Background()

	busy := seedRecruiter(t, conn, "Busy@Example.com", 4)
	idle := seedRecruiter(t, conn, "idle@example.com", 0)
	seedCandidate(t, conn, "Ada", "Lovelace", "ada@example.com", &busy.ID)
	seedCandidate(t, conn, "Alan", "Turing", "alan@example.com", &busy.ID)
	gone := seedCandidate(t, conn, "Grace", "Hopper", "grace@example.com", &busy.ID)
	require.NoError(t, candidates.Delete(ctx, gone.ID))

	found, err := recruiters.FindByID(ctx, busy.ID)
	require.NoError(t, err)
	assert.Equal(t, "busy@example.com", found.Email)
	assert.Equal(t, int64(2), found.AssignedCount)
	assert.Equal(t, 50.0, found.Workload)

	byUser, err := recruiters.FindByUserID(ctx, idle.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), byUser.AssignedCount)
	assert.Equal(t, model.DefaultMaxCandidates, byUser.MaxCandidates)

	list, total, err := recruiters.List(ctx, RecruiterFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	counts := make(map[uuid.UUID]int64, len(list))
	for _, r := range list {
		counts[r.ID] = r.AssignedCount
	}
	assert.Equal(t, int64(2), counts[busy.ID])
	assert.Equal(t, int64(0), counts[idle.ID])
}

func TestJobApplicationRepository_RecruiterScope(t *testing.T) {
	conn := newTestDB(t)
	apps := NewJobApplicationRepository(conn)
	ctx := context.Background()

	rita := seedRecruiter(t, conn, "rita@example.com", 5)
	sam := seedRecruiter(t, conn, "sam@example.com", 5)
	ada := seedCandidate(t, conn, "Ada", "Lovelace", "ada@example.com", &rita.ID)
	alan := seedCandidate(t, conn, "Alan", "Turing", "alan@example.com", &sam.ID)

	require.NoError(t, apps.Create(ctx, &model.JobApplication{CandidateID: ada.ID, JobTitle: "Engineer", Company: "Acme"}))
	require.NoError(t, apps.Create(ctx, &model.JobApplication{
		CandidateID: ada.ID, JobTitle: "Analyst", Company: "Initech",
		Status: model.ApplicationStatusApplied, ResumeStatus: model.ResumeStatusGenerated,
	}))
	require.NoError(t, apps.Create(ctx, &model.JobApplication{
		CandidateID: alan.ID, JobTitle: "Cryptographer", Company: "Bletchley",
		ResumeStatus: model.ResumeStatusGenerated,
	}))

	t.Run("list is limited to the recruiter's candidates", func(t *testing.T) {
		list, total, err := apps.List(ctx, JobApplicationFilter{RecruiterID: &rita.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, app := range list {
			assert.Equal(t, ada.ID, app.CandidateID)
		}

		list, total, err = apps.List(ctx, JobApplicationFilter{RecruiterID: &rita.ID, Query: "initech"})
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		assert.Equal(t, "Analyst", list[0].JobTitle)
	})

	t.Run("status counts are zero-filled", func(t *testing.T) {
		counts, err := apps.CountByStatus(ctx, &rita.ID)
		require.NoError(t, err)
		assert.Len(t, counts, len(model.ApplicationStatuses))
		assert.Equal(t, int64(1), counts[string(model.ApplicationStatusSaved)])
		assert.Equal(t, int64(1), counts[string(model.ApplicationStatusApplied)])
		interviews, ok := counts[string(model.ApplicationStatusInterview)]
		assert.True(t, ok)
		assert.Zero(t, interviews)

		all, err := apps.CountByStatus(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), all[string(model.ApplicationStatusSaved)])
	})

	t.Run("generated resumes", func(t *testing.T) {
		n, err := apps.CountGenerated(ctx, &rita.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = apps.CountGenerated(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("reassignment moves the scope", func(t *testing.T) {
		require.NoError(t, NewCandidateRepository(conn).SetAssignedRecruiter(ctx, alan.ID, &rita.ID))

		_, total, err := apps.List(ctx, JobApplicationFilter{RecruiterID: &rita.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		_, total, err = apps.List(ctx, JobApplicationFilter{RecruiterID: &sam.ID})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestCandidateRepository_ExpireSubscriptions(t *testing.T) {
	conn := newTestDB(t)
	candidates := NewCandidateRepository(conn)
	ctx := context.Background()

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	lapsed := seedCandidate(t, conn, "Ada", "Lovelace", "ada@example.com", nil)
	current := seedCandidate(t, conn, "Alan", "Turing", "alan@example.com", nil)
	unpaid := seedCandidate(t, conn, "Grace", "Hopper", "grace@example.com", nil)

	lapsed.PaymentStatus, lapsed.SubscriptionExpiresAt = model.PaymentStatusPaid, &past
	current.PaymentStatus, current.SubscriptionExpiresAt = model.PaymentStatusPaid, &future
	unpaid.SubscriptionExpiresAt = &past
	for _, c := range []*model.Candidate{lapsed, current, unpaid} {
		require.NoError(t, candidates.Update(ctx, c))
	}

	n, err := candidates.ExpireSubscriptions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	want := map[uuid.UUID]model.PaymentStatus{
		lapsed.ID:  model.PaymentStatusExpired,
		current.ID: model.PaymentStatusPaid,
		unpaid.ID:  model.PaymentStatusPending,
	}
	for id, status := range want {
		got, err := candidates.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, got.PaymentStatus)
	}

	n, err = candidates.ExpireSubscriptions(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
