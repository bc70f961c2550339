package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/unipath/unipath/core"
)

// VisaStatus tracks the visa leg of a country track.
type VisaStatus string

const (
	VisaNotStarted VisaStatus = "NOT_STARTED"
	VisaInProgress VisaStatus = "IN_PROGRESS"
	VisaApproved   VisaStatus = "APPROVED"
	VisaRejected   VisaStatus = "REJECTED"
)

type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`

	// CurrentPhase is derived: the most advanced phase across the student's
	// country tracks. Per-track phases are authoritative for gating and
	// progress; this slot only feeds student-level listings.
	CurrentPhase Phase `json:"current_phase"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// ApplicationCounts are per-track aggregates refreshed from the student's
// application records.
type ApplicationCounts struct {
	Total    int `json:"total"`
	Primary  int `json:"primary"`
	Backup   int `json:"backup"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}

// StudentCountryProfile is one student's application track for one destination
// country. Tracks progress independently; a student has at most one per country.
type StudentCountryProfile struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Country   string `json:"country"` // canonical form

	CurrentPhase Phase `json:"current_phase"`

	Applications ApplicationCounts `json:"applications"`

	FeesPaid          decimal.Decimal `json:"fees_paid"`
	ScholarshipAmount decimal.Decimal `json:"scholarship_amount"`

	VisaStatus VisaStatus `json:"visa_status"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// ActivityEntry is the audit record persisted for every accepted phase change.
type ActivityEntry struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Country   string    `json:"country"`
	FromPhase Phase     `json:"from_phase"`
	ToPhase   Phase     `json:"to_phase"`
	Direction Direction `json:"direction"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// ProfileProgress is the display DTO for dashboard progress bars. Phase is
// carried verbatim so a UI can distinguish "not started" from unrecognized
// stored data; both render as 0%.
type ProfileProgress struct {
	Country  string `json:"country"`
	Phase    Phase  `json:"phase"`
	Progress int    `json:"progress"`
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, ns.Email)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

func (us *UpdateStudent) Validate(ctx context.Context, origStu Student, validate *validator.Validate, svc Service) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = origStu.Name
	}

	email := core.CleanString(us.Email, true /* lower */)
	if email != "" {
		us.Email = email
	} else {
		us.Email = origStu.Email
	}

	us.Phone = core.CleanString(us.Phone)
	if us.Phone == "" {
		us.Phone = origStu.Phone
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, us.Email, origStu)
}

// NewCountryTrack opens a country profile; the track restarts at the first phase.
type NewCountryTrack struct {
	Country string `json:"country" validate:"required"`
}

func (nc *NewCountryTrack) Validate(validate *validator.Validate) error {
	nc.Country = CanonicalCountry(nc.Country)
	return validate.Struct(nc)
}

// PhaseChangeRequest is a counselor's request to move a track to TargetPhase.
type PhaseChangeRequest struct {
	TargetPhase Phase `json:"target_phase" validate:"required,phase"`
}

func (pr *PhaseChangeRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(pr)
}

// QueryFilter applies AND on its fields; Search matches name or email.
type QueryFilter struct {
	Search      string    `query:"search"`
	Phase       Phase     `query:"phase"`
	Country     string    `query:"country"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Phase == "" && qf.Country == "" && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if qf.Country != "" {
		qf.Country = CanonicalCountry(qf.Country)
	}
}
