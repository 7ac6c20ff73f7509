package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the repositories that take part in multi-table writes.
type Repositories struct {
	Users        UserRepository
	Candidates   CandidateRepository
	Recruiters   RecruiterRepository
	Applications JobApplicationRepository
	Plans        PlanRepository
	Payments     PaymentRepository
}

// Transactor runs a function with repositories bound to one database transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a GORM-backed transactor.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// NewRepositories binds every repository to db.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:        NewUserRepository(db),
		Candidates:   NewCandidateRepository(db),
		Recruiters:   NewRecruiterRepository(db),
		Applications: NewJobApplicationRepository(db),
		Plans:        NewPlanRepository(db),
		Payments:     NewPaymentRepository(db),
	}
}
