package document

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unipath/unipath/core"
)

// Type identifies a kind of supporting document in the counselor's catalog.
type Type string

// Core catalog. The first five make up the standard set collected for every
// student; the rest are requested per destination country.
const (
	TypePassport             Type = "PASSPORT"
	TypeAcademicTranscript   Type = "ACADEMIC_TRANSCRIPT"
	TypeRecommendationLetter Type = "RECOMMENDATION_LETTER"
	TypeStatementOfPurpose   Type = "STATEMENT_OF_PURPOSE"
	TypeCVResume             Type = "CV_RESUME"

	TypeEnglishTest        Type = "ENGLISH_TEST"
	TypeFinancialStatement Type = "FINANCIAL_STATEMENT"
	TypeTBTestResult       Type = "TB_TEST_RESULT"
	TypeCASStatement       Type = "CAS_STATEMENT"
	TypeVisaForm           Type = "VISA_FORM"
	TypeSponsorLetter      Type = "SPONSOR_LETTER"
	TypeBirthCertificate   Type = "BIRTH_CERTIFICATE"
)

var AllTypes = []Type{
	TypePassport,
	TypeAcademicTranscript,
	TypeRecommendationLetter,
	TypeStatementOfPurpose,
	TypeCVResume,
	TypeEnglishTest,
	TypeFinancialStatement,
	TypeTBTestResult,
	TypeCASStatement,
	TypeVisaForm,
	TypeSponsorLetter,
	TypeBirthCertificate,
}

func (t Type) IsValid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Status is the review state of an uploaded document.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusExpired     Status = "EXPIRED"
	StatusUnderReview Status = "UNDER_REVIEW"
)

var AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusExpired, StatusUnderReview}

func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Document is the metadata record the phase rules consume. The file itself is
// stored elsewhere; only type and review status matter here.
type Document struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Type      Type      `json:"type"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// CountsTowardRequirement reports whether this document satisfies a phase-entry
// requirement: only PENDING and APPROVED documents do.
func (d Document) CountsTowardRequirement() bool {
	return d.Status == StatusPending || d.Status == StatusApproved
}

// NewDocument contains information needed to register a Document.
type NewDocument struct {
	Type  Type   `json:"type" validate:"required,doctype"`
	Notes string `json:"notes"`
}

func (nd *NewDocument) Validate(validate *validator.Validate) error {
	nd.Notes = core.CleanString(nd.Notes)
	return validate.Struct(nd)
}

// UpdateDocumentStatus moves a document through review.
type UpdateDocumentStatus struct {
	Status Status `json:"status" validate:"required,docstatus"`
}

func (ud *UpdateDocumentStatus) Validate(validate *validator.Validate) error {
	return validate.Struct(ud)
}
