package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CandidateStatus tracks where a candidate is in the placement pipeline.
type CandidateStatus string

const (
	CandidateStatusNew          CandidateStatus = "new"
	CandidateStatusActive       CandidateStatus = "active"
	CandidateStatusInterviewing CandidateStatus = "interviewing"
	CandidateStatusPlaced       CandidateStatus = "placed"
	CandidateStatusInactive     CandidateStatus = "inactive"
)

// Valid reports whether s is a known candidate status.
func (s CandidateStatus) Valid() bool {
	switch s {
	case CandidateStatusNew, CandidateStatusActive, CandidateStatusInterviewing, CandidateStatusPlaced, CandidateStatusInactive:
		return true
	}
	return false
}

// PaymentStatus is the subscription payment state of a candidate.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusExpired  PaymentStatus = "expired"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusExpired, PaymentStatusRefunded:
		return true
	}
	return false
}

// Candidate is a job seeker profile. The assignment to a recruiter is stored here only;
// a recruiter's candidate list is always derived from AssignedRecruiterID.
type Candidate struct {
	ID                    uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	UserID                uuid.UUID                   `json:"userId" gorm:"type:char(36);uniqueIndex;not null"`
	FirstName             string                      `json:"firstName" gorm:"size:100;not null"`
	LastName              string                      `json:"lastName" gorm:"size:100"`
	FullName              string                      `json:"fullName" gorm:"size:255;index"`
	Email                 string                      `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone                 string                      `json:"phone" gorm:"size:50"`
	Location              string                      `json:"location" gorm:"size:255"`
	Headline              string                      `json:"headline" gorm:"size:255"`
	Summary               string                      `json:"summary" gorm:"type:text"`
	Skills                datatypes.JSONSlice[string] `json:"skills"`
	ExperienceYears       int                         `json:"experienceYears" gorm:"default:0"`
	Experience            string                      `json:"experience" gorm:"type:text"`
	Education             string                      `json:"education" gorm:"type:text"`
	LinkedInURL           string                      `json:"linkedinUrl" gorm:"size:255"`
	Status                CandidateStatus             `json:"status" gorm:"type:varchar(20);not null;default:'new';index"`
	AssignedRecruiterID   *uuid.UUID                  `json:"assignedRecruiterId" gorm:"type:char(36);index"`
	SubscriptionPlan      string                      `json:"subscriptionPlan" gorm:"size:100;index"`
	PaymentStatus         PaymentStatus               `json:"paymentStatus" gorm:"type:varchar(20);not null;default:'pending';index"`
	SubscriptionExpiresAt *time.Time                  `json:"subscriptionExpiresAt,omitempty"`
	CreatedAt             time.Time                   `json:"createdAt"`
	UpdatedAt             time.Time                   `json:"updatedAt"`
	DeletedAt             gorm.DeletedAt              `json:"-" gorm:"index"`

	// Relations
	User              *User      `json:"-" gorm:"foreignKey:UserID"`
	AssignedRecruiter *Recruiter `json:"assignedRecruiter,omitempty" gorm:"foreignKey:AssignedRecruiterID"`
	Resumes           []Resume   `json:"resumes,omitempty" gorm:"foreignKey:CandidateID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps FullName in step with the name parts.
func (c *Candidate) BeforeSave(tx *gorm.DB) error {
	c.FullName = JoinName(c.FirstName, c.LastName)
	return nil
}

// JoinName joins non-empty name parts with a single space.
func JoinName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// Resume is an uploaded resume file owned by a candidate.
type Resume struct {
	ID           uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	CandidateID  uuid.UUID      `json:"candidateId" gorm:"type:char(36);not null;index"`
	OriginalName string         `json:"originalName" gorm:"size:255;not null"`
	StoragePath  string         `json:"-" gorm:"size:512;not null"`
	ContentType  string         `json:"contentType" gorm:"size:100"`
	Size         int64          `json:"size"`
	CreatedAt    time.Time      `json:"createdAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Resume) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
