package application

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unipath/unipath/core"
)

// Status is the university-side state of a submitted application.
type Status string

const (
	StatusPending          Status = "PENDING"
	StatusSubmitted        Status = "SUBMITTED"
	StatusUnderReview      Status = "UNDER_REVIEW"
	StatusAccepted         Status = "ACCEPTED"
	StatusRejected         Status = "REJECTED"
	StatusDeferred         Status = "DEFERRED"
	StatusWaitlisted       Status = "WAITLISTED"
	StatusConditionalOffer Status = "CONDITIONAL_OFFER"
)

var AllStatuses = []Status{
	StatusPending,
	StatusSubmitted,
	StatusUnderReview,
	StatusAccepted,
	StatusRejected,
	StatusDeferred,
	StatusWaitlisted,
	StatusConditionalOffer,
}

func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Priority distinguishes a student's first-choice applications from fallbacks.
type Priority string

const (
	PriorityPrimary Priority = "PRIMARY"
	PriorityBackup  Priority = "BACKUP"
)

func (p Priority) IsValid() bool {
	return p == PriorityPrimary || p == PriorityBackup
}

// Application is one student-university record. UniversityCountry is stored in
// canonical form so the progress milestones can match it against country tracks.
type Application struct {
	ID                string    `json:"id"`
	StudentID         string    `json:"student_id"`
	UniversityName    string    `json:"university_name"`
	UniversityCountry string    `json:"university_country"`
	Program           string    `json:"program,omitempty"`
	Status            Status    `json:"status"`
	Priority          Priority  `json:"priority"`
	CreatedAt         time.Time `json:"created_at"` // UTC
	UpdatedAt         time.Time `json:"updated_at"` // UTC
}

// NewApplication contains information needed to record an Application.
type NewApplication struct {
	UniversityName    string   `json:"university_name" validate:"required"`
	UniversityCountry string   `json:"university_country" validate:"required"`
	Program           string   `json:"program"`
	Priority          Priority `json:"priority" validate:"omitempty,apppriority"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.UniversityName = core.CleanString(na.UniversityName)
	na.UniversityCountry = core.CleanString(na.UniversityCountry)
	na.Program = core.CleanString(na.Program)
	if na.Priority == "" {
		na.Priority = PriorityPrimary
	}
	return validate.Struct(na)
}

// UpdateApplicationStatus records a decision from the university.
type UpdateApplicationStatus struct {
	Status Status `json:"status" validate:"required,appstatus"`
}

func (ua *UpdateApplicationStatus) Validate(validate *validator.Validate) error {
	return validate.Struct(ua)
}
