package student

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/unipath/unipath/core/document"
)

func TestSequenceTotality(t *testing.T) {
	if len(Sequence) != 10 {
		t.Fatalf("len(Sequence) = %d, want 10", len(Sequence))
	}

	seen := make(map[Phase]bool, len(Sequence))
	for i, p := range Sequence {
		if seen[p] {
			t.Errorf("duplicate phase %s", p)
		}
		seen[p] = true

		if got := p.Index(); got != i {
			t.Errorf("%s.Index() = %d, want %d", p, got, i)
		}
		if !p.IsValid() {
			t.Errorf("%s.IsValid() = false", p)
		}
		if p.Label() == string(p) {
			t.Errorf("%s has no human label", p)
		}
	}

	if Phase("SOME_PHASE").Index() != -1 {
		t.Error(`Index() for unknown phase should be -1`)
	}
}

func TestRequestPhaseChange(t *testing.T) {
	doc := func(typ document.Type, status document.Status) document.Document {
		return document.Document{Type: typ, Status: status}
	}
	fullSet := []document.Document{
		doc(document.TypePassport, document.StatusApproved),
		doc(document.TypeAcademicTranscript, document.StatusPending),
		doc(document.TypeRecommendationLetter, document.StatusApproved),
		doc(document.TypeStatementOfPurpose, document.StatusPending),
		doc(document.TypeCVResume, document.StatusApproved),
	}

	tests := []struct {
		name        string
		current     Phase
		target      Phase
		docs        []document.Document
		want        PhaseChange
		wantErr     error
		wantMissing []document.Type
	}{
		{
			name:    "invalid current phase",
			current: "SOME_PHASE", target: PhaseUniversityShortlisting,
			wantErr: ErrInvalidPhase,
		},
		{
			name:    "invalid target phase",
			current: PhaseDocumentCollection, target: "SOME_PHASE",
			wantErr: ErrInvalidPhase,
		},
		{
			name:    "no-op transition rejected",
			current: PhaseInterview, target: PhaseInterview,
			wantErr: ErrNoChangeRequested,
		},
		{
			name:    "gated edge with no documents",
			current: PhaseDocumentCollection, target: PhaseUniversityShortlisting,
			wantMissing: []document.Type{
				document.TypePassport,
				document.TypeAcademicTranscript,
				document.TypeRecommendationLetter,
				document.TypeStatementOfPurpose,
				document.TypeCVResume,
			},
		},
		{
			name:    "gated edge with partial documents",
			current: PhaseDocumentCollection, target: PhaseUniversityShortlisting,
			docs: []document.Document{
				doc(document.TypePassport, document.StatusApproved),
				doc(document.TypeAcademicTranscript, document.StatusPending),
			},
			wantMissing: []document.Type{
				document.TypeRecommendationLetter,
				document.TypeStatementOfPurpose,
				document.TypeCVResume,
			},
		},
		{
			name:    "rejected and expired documents do not satisfy",
			current: PhaseDocumentCollection, target: PhaseUniversityShortlisting,
			docs: []document.Document{
				doc(document.TypePassport, document.StatusRejected),
				doc(document.TypeAcademicTranscript, document.StatusExpired),
				doc(document.TypeRecommendationLetter, document.StatusUnderReview),
				doc(document.TypeStatementOfPurpose, document.StatusPending),
				doc(document.TypeCVResume, document.StatusApproved),
			},
			wantMissing: []document.Type{
				document.TypePassport,
				document.TypeAcademicTranscript,
				document.TypeRecommendationLetter,
			},
		},
		{
			name:    "gated edge satisfied",
			current: PhaseDocumentCollection, target: PhaseUniversityShortlisting,
			docs:    fullSet,
			want:    PhaseChange{From: PhaseDocumentCollection, To: PhaseUniversityShortlisting, Direction: DirectionForward},
		},
		{
			name:    "later phases are not gated",
			current: PhaseOfferReceived, target: PhaseInitialPayment,
			want: PhaseChange{From: PhaseOfferReceived, To: PhaseInitialPayment, Direction: DirectionForward},
		},
		{
			name:    "phase skipping is permitted",
			current: PhaseUniversityShortlisting, target: PhaseEnrollment,
			want: PhaseChange{From: PhaseUniversityShortlisting, To: PhaseEnrollment, Direction: DirectionForward},
		},
		{
			name:    "backward transition is permitted",
			current: PhaseVisaApplication, target: PhaseInterview,
			want: PhaseChange{From: PhaseVisaApplication, To: PhaseInterview, Direction: DirectionBackward},
		},
		{
			name:    "re-entering shortlisting from later phase still requires documents",
			current: PhaseOfferReceived, target: PhaseUniversityShortlisting,
			wantMissing: []document.Type{
				document.TypePassport,
				document.TypeAcademicTranscript,
				document.TypeRecommendationLetter,
				document.TypeStatementOfPurpose,
				document.TypeCVResume,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequestPhaseChange(tt.current, tt.target, tt.docs)

			if tt.wantMissing != nil {
				var pcErr *PhaseChangeError
				if !errors.As(err, &pcErr) {
					t.Fatalf("RequestPhaseChange() error = %v, want *PhaseChangeError", err)
				}
				if !reflect.DeepEqual(pcErr.MissingDocuments, tt.wantMissing) {
					t.Errorf("MissingDocuments = %v, want %v", pcErr.MissingDocuments, tt.wantMissing)
				}
				if pcErr.TargetPhase != tt.target {
					t.Errorf("TargetPhase = %s, want %s", pcErr.TargetPhase, tt.target)
				}
				if pcErr.PhaseDescription != tt.target.Label() {
					t.Errorf("PhaseDescription = %q, want %q", pcErr.PhaseDescription, tt.target.Label())
				}
				if len(pcErr.Remediation()) != len(tt.wantMissing) {
					t.Errorf("Remediation() has %d lines, want %d", len(pcErr.Remediation()), len(tt.wantMissing))
				}
				return
			}

			if tt.wantErr != nil {
				if errors.Cause(err) != tt.wantErr {
					t.Fatalf("RequestPhaseChange() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("RequestPhaseChange() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("RequestPhaseChange() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRequiredDocumentsCopy(t *testing.T) {
	required := RequiredDocuments(PhaseUniversityShortlisting)
	if len(required) != 5 {
		t.Fatalf("len(required) = %d, want 5", len(required))
	}

	required[0] = "TAMPERED"
	if fresh := RequiredDocuments(PhaseUniversityShortlisting); fresh[0] != document.TypePassport {
		t.Error("RequiredDocuments() must return a copy")
	}

	if got := RequiredDocuments(PhaseEnrollment); len(got) != 0 {
		t.Errorf("ungated phase requires %v, want none", got)
	}
}
