package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity actions recorded in the audit trail.
const (
	ActionCandidateAssigned   = "candidate.assigned"
	ActionCandidateUnassigned = "candidate.unassigned"
	ActionCandidateStatus     = "candidate.status_changed"
	ActionPaymentStatus       = "candidate.payment_status_changed"
	ActionRecruiterDeleted    = "recruiter.deleted"
	ActionResumeGenerated     = "resume.generated"
	ActionResumeFailed        = "resume.failed"
	ActionApplicationStatus   = "application.status_changed"
	ActionPlanStatus          = "plan.status_changed"
)

// ActivityLog is an audit entry for an admin or recruiter action.
// Entries are written asynchronously and never updated.
type ActivityLog struct {
	ID         uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	ActorID    *uuid.UUID `json:"actorId,omitempty" gorm:"type:char(36);index"`
	Action     string     `json:"action" gorm:"size:100;not null;index"`
	EntityType string     `json:"entityType" gorm:"size:50;not null"`
	EntityID   uuid.UUID  `json:"entityId" gorm:"type:char(36);not null;index"`
	Details    string     `json:"details,omitempty" gorm:"type:text"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
