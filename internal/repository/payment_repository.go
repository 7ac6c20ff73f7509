package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"recruitflow/internal/model"
)

// PaymentRepository defines subscription payment persistence operations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.SubscriptionPayment) error
	Update(ctx context.Context, payment *model.SubscriptionPayment) error
	FindLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (*model.SubscriptionPayment, error)
	SumPaid(ctx context.Context) (decimal.Decimal, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment record.
func (r *paymentRepository) Create(ctx context.Context, payment *model.SubscriptionPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// Update updates an existing payment record.
func (r *paymentRepository) Update(ctx context.Context, payment *model.SubscriptionPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// FindLatestByCandidate returns the most recent payment for a candidate.
func (r *paymentRepository) FindLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (*model.SubscriptionPayment, error) {
	var payment model.SubscriptionPayment
	if err := r.db.WithContext(ctx).Where("candidate_id = ?", candidateID).
		Order("created_at DESC").First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// SumPaid totals all paid subscription payments.
func (r *paymentRepository) SumPaid(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.SubscriptionPayment{}).
		Where("status = ?", model.PaymentStatusPaid).
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// ActivityLogRepository defines activity log persistence operations.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
	CreateBatch(ctx context.Context, entries []model.ActivityLog) error
	List(ctx context.Context, opts ListOptions) ([]model.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

// Create creates a new activity log entry.
func (r *activityLogRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateBatch creates multiple activity log entries in a single statement batch.
func (r *activityLogRepository) CreateBatch(ctx context.Context, entries []model.ActivityLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(entries, 100).Error
}

// List returns entries newest first.
func (r *activityLogRepository) List(ctx context.Context, opts ListOptions) ([]model.ActivityLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ActivityLog{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.ActivityLog
	if err := q.Order("created_at DESC").Scopes(paginate(opts)).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
