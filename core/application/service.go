package application

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/unipath/unipath/core"
)

var ErrNotFound = errors.New("application not found")

type (
	Repository interface {
		CreateApplication(ctx context.Context, app Application, exec ...core.DBExecutor) (Application, error)
		GetApplicationByID(ctx context.Context, id string, exec ...core.DBExecutor) (Application, error)
		QueryStudentApplications(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Application, error)
		UpdateApplication(ctx context.Context, app Application, exec ...core.DBExecutor) (Application, error)
	}

	Service interface {
		Create(ctx context.Context, studentID string, na NewApplication) (Application, error)
		GetByID(ctx context.Context, id string) (Application, error)
		ByStudent(ctx context.Context, studentID string) ([]Application, error)
		UpdateStatus(ctx context.Context, id string, status Status) (Application, error)
	}

	service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, logger core.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (svc *service) Create(ctx context.Context, studentID string, na NewApplication) (Application, error) {
	now := time.Now().UTC()
	app := Application{
		StudentID:         studentID,
		UniversityName:    na.UniversityName,
		UniversityCountry: na.UniversityCountry,
		Program:           na.Program,
		Status:            StatusPending,
		Priority:          na.Priority,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return svc.repo.CreateApplication(ctx, app)
}

func (svc *service) GetByID(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplicationByID(ctx, id)
}

func (svc *service) ByStudent(ctx context.Context, studentID string) ([]Application, error) {
	return svc.repo.QueryStudentApplications(ctx, studentID)
}

func (svc *service) UpdateStatus(ctx context.Context, id string, status Status) (Application, error) {
	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateApplication(ctx, app)
}
