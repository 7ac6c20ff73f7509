package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanStatus toggles whether a plan can be purchased.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusInactive PlanStatus = "inactive"
)

// Valid reports whether s is a known plan status.
func (s PlanStatus) Valid() bool {
	return s == PlanStatusActive || s == PlanStatusInactive
}

// Plan is a subscription tier. Candidates reference it by PlanID, not by primary key.
type Plan struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	PlanID       string                      `json:"planId" gorm:"uniqueIndex;size:100;not null"`
	Name         string                      `json:"name" gorm:"size:255;not null"`
	Description  string                      `json:"description" gorm:"type:text"`
	Price        decimal.Decimal             `json:"price" gorm:"type:decimal(12,2);not null"`
	Currency     string                      `json:"currency" gorm:"size:3;not null;default:'USD'"`
	DurationDays int                         `json:"durationDays" gorm:"not null"`
	Features     datatypes.JSONSlice[string] `json:"features"`
	Status       PlanStatus                  `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	SortOrder    int                         `json:"sortOrder" gorm:"default:0"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt              `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the plan can be purchased.
func (p *Plan) IsActive() bool {
	return p.Status == PlanStatusActive
}

// DefaultPlans is the catalogue inserted by seeding.
func DefaultPlans() []Plan {
	return []Plan{
		{
			PlanID:       "basic",
			Name:         "Basic",
			Description:  "Profile review and a dedicated recruiter.",
			Price:        decimal.NewFromInt(29),
			Currency:     "USD",
			DurationDays: 30,
			Features:     datatypes.JSONSlice[string]{"Dedicated recruiter", "5 tailored resumes per month", "Application tracking"},
			Status:       PlanStatusActive,
			SortOrder:    1,
		},
		{
			PlanID:       "professional",
			Name:         "Professional",
			Description:  "Active job search with weekly applications.",
			Price:        decimal.NewFromInt(79),
			Currency:     "USD",
			DurationDays: 30,
			Features:     datatypes.JSONSlice[string]{"Dedicated recruiter", "Unlimited tailored resumes", "Weekly applications", "Interview preparation"},
			Status:       PlanStatusActive,
			SortOrder:    2,
		},
		{
			PlanID:       "executive",
			Name:         "Executive",
			Description:  "Senior search with priority handling.",
			Price:        decimal.NewFromInt(199),
			Currency:     "USD",
			DurationDays: 90,
			Features:     datatypes.JSONSlice[string]{"Senior recruiter", "Unlimited tailored resumes", "Daily applications", "Salary negotiation support"},
			Status:       PlanStatusActive,
			SortOrder:    3,
		},
	}
}
