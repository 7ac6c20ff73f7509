package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubscriptionPayment records a candidate's payment for a plan.
type SubscriptionPayment struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	CandidateID uuid.UUID       `json:"candidateId" gorm:"type:char(36);not null;index"`
	PlanID      string          `json:"planId" gorm:"size:100;not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency    string          `json:"currency" gorm:"size:3;not null"`
	Status      PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PaidAt      *time.Time      `json:"paidAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (p *SubscriptionPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
