package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationStatus tracks a candidate's pursuit of one job.
type ApplicationStatus string

const (
	ApplicationStatusSaved     ApplicationStatus = "saved"
	ApplicationStatusApplied   ApplicationStatus = "applied"
	ApplicationStatusInterview ApplicationStatus = "interview"
	ApplicationStatusOffer     ApplicationStatus = "offer"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusSaved,
	ApplicationStatusApplied,
	ApplicationStatusInterview,
	ApplicationStatusOffer,
	ApplicationStatusRejected,
	ApplicationStatusWithdrawn,
}

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ResumeStatus is the state of AI resume generation for an application.
type ResumeStatus string

const (
	ResumeStatusNone       ResumeStatus = "none"
	ResumeStatusGenerating ResumeStatus = "generating"
	ResumeStatusGenerated  ResumeStatus = "generated"
	ResumeStatusFailed     ResumeStatus = "failed"
)

// JobApplication tracks one candidate's pursuit of one job, including the generated resume text.
type JobApplication struct {
	ID             uuid.UUID         `json:"id" gorm:"type:char(36);primaryKey"`
	CandidateID    uuid.UUID         `json:"candidateId" gorm:"type:char(36);not null;index"`
	RecruiterID    *uuid.UUID        `json:"recruiterId" gorm:"type:char(36);index"`
	JobTitle       string            `json:"jobTitle" gorm:"size:255;not null"`
	Company        string            `json:"company" gorm:"size:255;not null;index"`
	JobURL         string            `json:"jobUrl" gorm:"size:1024"`
	Location       string            `json:"location" gorm:"size:255"`
	JobDescription string            `json:"jobDescription" gorm:"type:text"`
	Status         ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;default:'saved';index"`
	ResumeStatus   ResumeStatus      `json:"resumeStatus" gorm:"type:varchar(20);not null;default:'none'"`
	ResumeText     string            `json:"resumeText" gorm:"type:text"`
	MatchScore     int               `json:"matchScore" gorm:"default:0"`
	Notes          string            `json:"notes" gorm:"type:text"`
	AppliedAt      *time.Time        `json:"appliedAt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt    `json:"-" gorm:"index"`

	// Relations
	Candidate *Candidate `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
}

// BeforeCreate sets UUID and defaults before creating the record.
func (j *JobApplication) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = ApplicationStatusSaved
	}
	if j.ResumeStatus == "" {
		j.ResumeStatus = ResumeStatusNone
	}
	return nil
}
