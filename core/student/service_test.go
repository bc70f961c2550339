package student_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/unipath/unipath/core"
	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/document"
	"github.com/unipath/unipath/core/student"
	dummydb "github.com/unipath/unipath/storage/database/dummy"
	testutil "github.com/unipath/unipath/tests"
)

func newTestService(t *testing.T) (student.Service, student.Repository, document.Repository, application.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	stuRepo := dummydb.NewStudentRepository(db)
	docRepo := dummydb.NewDocumentRepository(db)
	appRepo := dummydb.NewApplicationRepository(db)
	svc := student.NewService(nil, stuRepo, docRepo, appRepo, testutil.NopLogger{})
	return svc, stuRepo, docRepo, appRepo
}

func TestServiceCreateAndUniqueness(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	stu, err := svc.Create(ctx, student.NewStudent{Name: "Amina Osei", Email: "amina@test.cd"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if stu.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if stu.CurrentPhase != student.PhaseDocumentCollection {
		t.Errorf("new student phase = %s, want %s", stu.CurrentPhase, student.PhaseDocumentCollection)
	}

	err = svc.CheckEmailUniqueness(ctx, "amina@test.cd")
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("CheckEmailUniqueness() error = %v, want *core.ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "email" {
		t.Errorf("ValidationError fields = %+v, want single email field error", vErr.Fields)
	}

	// excluding the student themselves passes
	if err := svc.CheckEmailUniqueness(ctx, "amina@test.cd", stu); err != nil {
		t.Errorf("CheckEmailUniqueness() with exclusion failed: %v", err)
	}
}

func TestServiceAddCountryTrack(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	stu, _ := svc.Create(ctx, student.NewStudent{Name: "Joe Kasongo", Email: "joe@test.cd"})

	profile, err := svc.AddCountryTrack(ctx, stu.ID, student.NewCountryTrack{Country: "U.K."})
	if err != nil {
		t.Fatalf("AddCountryTrack() failed: %v", err)
	}
	if profile.Country != student.CountryUK {
		t.Errorf("profile country = %q, want canonical %q", profile.Country, student.CountryUK)
	}
	if profile.CurrentPhase != student.PhaseDocumentCollection {
		t.Errorf("new track phase = %s, want %s", profile.CurrentPhase, student.PhaseDocumentCollection)
	}
	if profile.VisaStatus != student.VisaNotStarted {
		t.Errorf("new track visa status = %s, want %s", profile.VisaStatus, student.VisaNotStarted)
	}

	// same country under another alias is a duplicate
	_, err = svc.AddCountryTrack(ctx, stu.ID, student.NewCountryTrack{Country: "United Kingdom"})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("duplicate AddCountryTrack() error = %v, want *core.ValidationError", err)
	}

	// a second, distinct country is fine
	if _, err := svc.AddCountryTrack(ctx, stu.ID, student.NewCountryTrack{Country: "Canada"}); err != nil {
		t.Errorf("second AddCountryTrack() failed: %v", err)
	}

	tracks, err := svc.CountryTracks(ctx, stu.ID)
	if err != nil {
		t.Fatalf("CountryTracks() failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Errorf("len(tracks) = %d, want 2", len(tracks))
	}

	// unknown student
	if _, err := svc.AddCountryTrack(ctx, "nope", student.NewCountryTrack{Country: "France"}); errors.Cause(err) != student.ErrNotFound {
		t.Errorf("AddCountryTrack() for unknown student error = %v, want %v", err, student.ErrNotFound)
	}
}

func TestServiceChangePhase(t *testing.T) {
	ctx := context.Background()
	svc, _, docRepo, _ := newTestService(t)

	stu, _ := svc.Create(ctx, student.NewStudent{Name: "Lea M", Email: "lea@test.cd"})
	if _, err := svc.AddCountryTrack(ctx, stu.ID, student.NewCountryTrack{Country: "UK"}); err != nil {
		t.Fatalf("AddCountryTrack() failed: %v", err)
	}

	// blocked: no documents on file
	_, err := svc.ChangePhase(ctx, stu.ID, "UK", student.PhaseUniversityShortlisting)
	var pcErr *student.PhaseChangeError
	if !errors.As(err, &pcErr) {
		t.Fatalf("ChangePhase() error = %v, want *student.PhaseChangeError", err)
	}
	if len(pcErr.MissingDocuments) != 5 {
		t.Errorf("missing %d documents, want 5", len(pcErr.MissingDocuments))
	}

	// rejection must not have moved the track
	progress, err := svc.Progress(ctx, stu.ID, "United Kingdom")
	if err != nil {
		t.Fatalf("Progress() failed: %v", err)
	}
	if progress.Phase != student.PhaseDocumentCollection {
		t.Errorf("phase after rejection = %s, want %s", progress.Phase, student.PhaseDocumentCollection)
	}

	// put the full required set on file (mixed pending/approved)
	testutil.CreateDocument(t, docRepo, stu.ID, document.TypePassport, document.StatusApproved)
	testutil.CreateDocument(t, docRepo, stu.ID, document.TypeAcademicTranscript, document.StatusPending)
	testutil.CreateDocument(t, docRepo, stu.ID, document.TypeRecommendationLetter, document.StatusApproved)
	testutil.CreateDocument(t, docRepo, stu.ID, document.TypeStatementOfPurpose, document.StatusPending)
	testutil.CreateDocument(t, docRepo, stu.ID, document.TypeCVResume, document.StatusApproved)

	change, err := svc.ChangePhase(ctx, stu.ID, "U.K.", student.PhaseUniversityShortlisting)
	if err != nil {
		t.Fatalf("ChangePhase() failed: %v", err)
	}
	if change.From != student.PhaseDocumentCollection || change.To != student.PhaseUniversityShortlisting {
		t.Errorf("change = %+v", change)
	}
	if change.Direction != student.DirectionForward {
		t.Errorf("direction = %s, want %s", change.Direction, student.DirectionForward)
	}

	// no-op re-request is rejected
	if _, err := svc.ChangePhase(ctx, stu.ID, "UK", student.PhaseUniversityShortlisting); errors.Cause(err) != student.ErrNoChangeRequested {
		t.Errorf("no-op ChangePhase() error = %v, want %v", err, student.ErrNoChangeRequested)
	}

	// invalid target phase
	if _, err := svc.ChangePhase(ctx, stu.ID, "UK", "SOME_PHASE"); errors.Cause(err) != student.ErrInvalidPhase {
		t.Errorf("invalid target ChangePhase() error = %v, want %v", err, student.ErrInvalidPhase)
	}

	// activity log recorded the accepted change only
	entries, err := svc.Activities(ctx, stu.ID)
	if err != nil {
		t.Fatalf("Activities() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].ToPhase != student.PhaseUniversityShortlisting || entries[0].Message == "" {
		t.Errorf("activity entry = %+v", entries[0])
	}

	// derived student-level phase follows the most advanced track
	got, err := svc.GetByID(ctx, stu.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.CurrentPhase != student.PhaseUniversityShortlisting {
		t.Errorf("derived phase = %s, want %s", got.CurrentPhase, student.PhaseUniversityShortlisting)
	}

	// unknown track
	if _, err := svc.ChangePhase(ctx, stu.ID, "France", student.PhaseInterview); errors.Cause(err) != student.ErrProfileNotFound {
		t.Errorf("ChangePhase() for untracked country error = %v, want %v", err, student.ErrProfileNotFound)
	}
}

func TestServiceProgress(t *testing.T) {
	ctx := context.Background()
	svc, stuRepo, docRepo, appRepo := newTestService(t)

	stu := testutil.CreateStudent(t, stuRepo, "Nadia", "nadia@test.cd")
	testutil.CreateProfile(t, stuRepo, stu.ID, "UK", student.PhaseApplicationSubmission)
	testutil.CreateProfile(t, stuRepo, stu.ID, "Canada", student.PhaseDocumentCollection)

	testutil.CreateDocument(t, docRepo, stu.ID, document.TypePassport, document.StatusApproved)
	testutil.CreateDocument(t, docRepo, stu.ID, document.TypeAcademicTranscript, document.StatusPending)
	testutil.CreateDocument(t, docRepo, stu.ID, document.TypeCVResume, document.StatusApproved)
	testutil.CreateApplication(t, appRepo, stu.ID, "UCL", "U.K.", application.StatusSubmitted, application.PriorityPrimary)

	// UK track: submission band with a submitted application
	uk, err := svc.Progress(ctx, stu.ID, "United Kingdom")
	if err != nil {
		t.Fatalf("Progress() failed: %v", err)
	}
	if uk.Progress != 30 {
		t.Errorf("UK progress = %d, want 30", uk.Progress)
	}

	// Canada track: document band, 3 of 5 on file
	ca, err := svc.Progress(ctx, stu.ID, "Canada")
	if err != nil {
		t.Fatalf("Progress() failed: %v", err)
	}
	if ca.Progress != 6 {
		t.Errorf("Canada progress = %d, want 6", ca.Progress)
	}

	all, err := svc.ProgressAll(ctx, stu.ID)
	if err != nil {
		t.Fatalf("ProgressAll() failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}
}

func TestServiceRefreshApplicationCounts(t *testing.T) {
	ctx := context.Background()
	svc, stuRepo, _, appRepo := newTestService(t)

	stu := testutil.CreateStudent(t, stuRepo, "Omar", "omar@test.cd")
	testutil.CreateProfile(t, stuRepo, stu.ID, "UK", student.PhaseOfferReceived)

	testutil.CreateApplication(t, appRepo, stu.ID, "UCL", "UK", application.StatusAccepted, application.PriorityPrimary)
	testutil.CreateApplication(t, appRepo, stu.ID, "Leeds", "U.K.", application.StatusRejected, application.PriorityBackup)
	testutil.CreateApplication(t, appRepo, stu.ID, "Kent", "United Kingdom", application.StatusSubmitted, application.PriorityBackup)
	// a different country's application must not be counted
	testutil.CreateApplication(t, appRepo, stu.ID, "MIT", "USA", application.StatusPending, application.PriorityPrimary)

	profile, err := svc.RefreshApplicationCounts(ctx, stu.ID, "United Kingdom")
	if err != nil {
		t.Fatalf("RefreshApplicationCounts() failed: %v", err)
	}

	want := student.ApplicationCounts{Total: 3, Primary: 1, Backup: 2, Accepted: 1, Rejected: 1, Pending: 1}
	if profile.Applications != want {
		t.Errorf("counts = %+v, want %+v", profile.Applications, want)
	}
}
