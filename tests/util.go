package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/unipath/unipath/core"
	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/document"
	"github.com/unipath/unipath/core/student"
)

// NopLogger discards everything; tests assert on behavior, not logs.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// NewValidators returns a fully initialized validator + translator pair.
func NewValidators() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	document.InitValidators(validate, translator)
	application.InitValidators(validate, translator)
	return validate, translator
}

func CreateStudent(t *testing.T, repo student.Repository, name, email string, createdAt ...time.Time) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	stu, err := repo.CreateStudent(context.Background(), student.Student{
		Name:         name,
		Email:        email,
		CurrentPhase: student.PhaseDocumentCollection,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func CreateProfile(t *testing.T, repo student.Repository, studentID, country string, phase student.Phase) student.StudentCountryProfile {
	t.Helper()

	now := time.Now().UTC()
	profile, err := repo.CreateProfile(context.Background(), student.StudentCountryProfile{
		StudentID:    studentID,
		Country:      student.CanonicalCountry(country),
		CurrentPhase: phase,
		VisaStatus:   student.VisaNotStarted,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	return profile
}

func CreateDocument(t *testing.T, repo document.Repository, studentID string, typ document.Type, status document.Status) document.Document {
	t.Helper()

	now := time.Now().UTC()
	doc, err := repo.CreateDocument(context.Background(), document.Document{
		StudentID: studentID,
		Type:      typ,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateDocument() failed: %v", err)
	}
	return doc
}

func CreateApplication(t *testing.T, repo application.Repository, studentID, university, country string, status application.Status, priority application.Priority) application.Application {
	t.Helper()

	now := time.Now().UTC()
	app, err := repo.CreateApplication(context.Background(), application.Application{
		StudentID:         studentID,
		UniversityName:    university,
		UniversityCountry: student.CanonicalCountry(country),
		Status:            status,
		Priority:          priority,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		t.Fatalf("CreateApplication() failed: %v", err)
	}
	return app
}
