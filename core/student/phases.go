package student

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/unipath/unipath/core/document"
)

// Phase is one stage of the application pipeline a country track moves through.
type Phase string

const (
	PhaseDocumentCollection     Phase = "DOCUMENT_COLLECTION"
	PhaseUniversityShortlisting Phase = "UNIVERSITY_SHORTLISTING"
	PhaseApplicationSubmission  Phase = "APPLICATION_SUBMISSION"
	PhaseOfferReceived          Phase = "OFFER_RECEIVED"
	PhaseInitialPayment         Phase = "INITIAL_PAYMENT"
	PhaseInterview              Phase = "INTERVIEW"
	PhaseFinancialTBTest        Phase = "FINANCIAL_TB_TEST"
	PhaseCASVisa                Phase = "CAS_VISA"
	PhaseVisaApplication        Phase = "VISA_APPLICATION"
	PhaseEnrollment             Phase = "ENROLLMENT"
)

// Sequence is the canonical pipeline order. A phase's index here defines its
// 10-point progress band; the order is fixed and total.
var Sequence = []Phase{
	PhaseDocumentCollection,
	PhaseUniversityShortlisting,
	PhaseApplicationSubmission,
	PhaseOfferReceived,
	PhaseInitialPayment,
	PhaseInterview,
	PhaseFinancialTBTest,
	PhaseCASVisa,
	PhaseVisaApplication,
	PhaseEnrollment,
}

var phaseLabels = map[Phase]string{
	PhaseDocumentCollection:     "Document Collection",
	PhaseUniversityShortlisting: "University Shortlisting",
	PhaseApplicationSubmission:  "Application Submission",
	PhaseOfferReceived:          "Offer Received",
	PhaseInitialPayment:         "Initial Payment",
	PhaseInterview:              "Interview",
	PhaseFinancialTBTest:        "Financial & TB Test",
	PhaseCASVisa:                "CAS / Visa Statement",
	PhaseVisaApplication:        "Visa Application",
	PhaseEnrollment:             "Enrollment",
}

// requiredDocuments maps a target phase to the document types that must be on
// file (pending or approved) before a track may enter it. Phases absent from
// the table require nothing; the only seeded rule guards the exit from
// document collection.
var requiredDocuments = map[Phase][]document.Type{
	PhaseUniversityShortlisting: {
		document.TypePassport,
		document.TypeAcademicTranscript,
		document.TypeRecommendationLetter,
		document.TypeStatementOfPurpose,
		document.TypeCVResume,
	},
}

// Index returns the phase's position in Sequence, or -1 if unknown.
func (p Phase) Index() int {
	for i, ph := range Sequence {
		if p == ph {
			return i
		}
	}
	return -1
}

func (p Phase) IsValid() bool { return p.Index() >= 0 }

// Label returns the human-readable phase name shown to counselors.
func (p Phase) Label() string {
	if label, ok := phaseLabels[p]; ok {
		return label
	}
	return string(p)
}

// RequiredDocuments returns the document types gating entry into target.
// The returned slice is a copy; callers may mutate it.
func RequiredDocuments(target Phase) []document.Type {
	required := requiredDocuments[target]
	out := make([]document.Type, len(required))
	copy(out, required)
	return out
}

// Direction tells whether a phase change moved the track forward or backward
// in the sequence. Backward moves are permitted; only gated edges are guarded.
type Direction string

const (
	DirectionForward  Direction = "FORWARD"
	DirectionBackward Direction = "BACKWARD"
)

// PhaseChange is an accepted transition, returned for the caller to persist.
type PhaseChange struct {
	From      Phase     `json:"from"`
	To        Phase     `json:"to"`
	Direction Direction `json:"direction"`
}

// Describe renders the activity-log message for this change.
func (pc PhaseChange) Describe() string {
	return fmt.Sprintf("phase changed from %s to %s", pc.From.Label(), pc.To.Label())
}

var (
	// ErrInvalidPhase flags a phase string that is not a Sequence member.
	ErrInvalidPhase = errors.New("invalid phase")
	// ErrNoChangeRequested flags a transition onto the current phase; such
	// no-ops are rejected so the activity log stays meaningful.
	ErrNoChangeRequested = errors.New("student is already in the requested phase")
)

// PhaseChangeError is a rejected transition. Consumers enumerate
// MissingDocuments to build remediation guidance, so the list itself is part
// of the contract, not just the message.
type PhaseChangeError struct {
	TargetPhase      Phase           `json:"target_phase"`
	PhaseDescription string          `json:"phase_description"`
	MissingDocuments []document.Type `json:"missing_documents"`
}

func (e *PhaseChangeError) Error() string {
	missing := make([]string, len(e.MissingDocuments))
	for i, t := range e.MissingDocuments {
		missing[i] = string(t)
	}
	return fmt.Sprintf("cannot enter %s: missing required documents: %s",
		e.TargetPhase.Label(), strings.Join(missing, ", "))
}

// Remediation returns per-document guidance lines for user display.
func (e *PhaseChangeError) Remediation() []string {
	lines := make([]string, 0, len(e.MissingDocuments))
	for _, t := range e.MissingDocuments {
		lines = append(lines, fmt.Sprintf("upload or approve a %s document", t))
	}
	return lines
}

// RequestPhaseChange validates a transition from current to target given the
// student's document snapshot. It is pure: callers fetch documents and persist
// the accepted phase within one transaction if they need protection against
// concurrent requests racing on a stale snapshot.
func RequestPhaseChange(current, target Phase, docs []document.Document) (PhaseChange, error) {
	if !current.IsValid() {
		return PhaseChange{}, errors.Wrapf(ErrInvalidPhase, "current phase %q", current)
	}
	if !target.IsValid() {
		return PhaseChange{}, errors.Wrapf(ErrInvalidPhase, "target phase %q", target)
	}
	if current == target {
		return PhaseChange{}, ErrNoChangeRequested
	}

	if missing := missingDocuments(target, docs); len(missing) > 0 {
		return PhaseChange{}, &PhaseChangeError{
			TargetPhase:      target,
			PhaseDescription: target.Label(),
			MissingDocuments: missing,
		}
	}

	direction := DirectionForward
	if target.Index() < current.Index() {
		direction = DirectionBackward
	}
	return PhaseChange{From: current, To: target, Direction: direction}, nil
}

// missingDocuments computes required(target) minus the types satisfied by the
// snapshot, preserving the rule table's order.
func missingDocuments(target Phase, docs []document.Document) []document.Type {
	required := requiredDocuments[target]
	if len(required) == 0 {
		return nil
	}

	satisfied := make(map[document.Type]bool, len(docs))
	for _, doc := range docs {
		if doc.CountsTowardRequirement() {
			satisfied[doc.Type] = true
		}
	}

	var missing []document.Type
	for _, t := range required {
		if !satisfied[t] {
			missing = append(missing, t)
		}
	}
	return missing
}
