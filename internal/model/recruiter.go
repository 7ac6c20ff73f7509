package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMaxCandidates is the workload cap used when none is given.
const DefaultMaxCandidates = 10

// Recruiter is a staff profile that supports a subset of candidates.
type Recruiter struct {
	ID             uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	UserID         uuid.UUID      `json:"userId" gorm:"type:char(36);uniqueIndex;not null"`
	FullName       string         `json:"fullName" gorm:"size:255;index"`
	Email          string         `json:"email" gorm:"size:255;index"`
	Phone          string         `json:"phone" gorm:"size:50"`
	Department     string         `json:"department" gorm:"size:100;index"`
	Specialization string         `json:"specialization" gorm:"size:255"`
	MaxCandidates  int            `json:"maxCandidates" gorm:"not null;default:10"`
	IsActive       bool           `json:"isActive" gorm:"not null;default:true;index"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// AssignedCount and Workload are filled by queries; they are never stored.
	AssignedCount int64   `json:"assignedCount" gorm:"->;-:migration"`
	Workload      float64 `json:"workload" gorm:"-"`

	// Relations
	AssignedCandidates []Candidate `json:"assignedCandidates,omitempty" gorm:"foreignKey:AssignedRecruiterID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Recruiter) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.MaxCandidates <= 0 {
		r.MaxCandidates = DefaultMaxCandidates
	}
	return nil
}

// SetAssignedCount records the assigned count and derives Workload as a percentage of MaxCandidates.
func (r *Recruiter) SetAssignedCount(n int64) {
	r.AssignedCount = n
	r.Workload = 0
	if r.MaxCandidates > 0 {
		r.Workload = math.Round(float64(n)*10000/float64(r.MaxCandidates)) / 100
	}
}

// HasCapacity reports whether one more candidate fits under MaxCandidates.
func (r *Recruiter) HasCapacity(assigned int64) bool {
	return assigned < int64(r.MaxCandidates)
}
