package document

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/unipath/unipath/core"
)

var ErrNotFound = errors.New("document not found")

type (
	Repository interface {
		CreateDocument(ctx context.Context, doc Document, exec ...core.DBExecutor) (Document, error)
		GetDocumentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Document, error)
		QueryStudentDocuments(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Document, error)
		UpdateDocument(ctx context.Context, doc Document, exec ...core.DBExecutor) (Document, error)
	}

	Service interface {
		Create(ctx context.Context, studentID string, nd NewDocument) (Document, error)
		GetByID(ctx context.Context, id string) (Document, error)
		ByStudent(ctx context.Context, studentID string) ([]Document, error)
		UpdateStatus(ctx context.Context, id string, status Status) (Document, error)
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

func (svc *service) Create(ctx context.Context, studentID string, nd NewDocument) (Document, error) {
	now := time.Now().UTC()
	doc := Document{
		StudentID: studentID,
		Type:      nd.Type,
		Status:    StatusPending, // all uploads start in review
		Notes:     nd.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateDocument(ctx, doc)
}

func (svc *service) GetByID(ctx context.Context, id string) (Document, error) {
	return svc.repo.GetDocumentByID(ctx, id)
}

func (svc *service) ByStudent(ctx context.Context, studentID string) ([]Document, error) {
	return svc.repo.QueryStudentDocuments(ctx, studentID)
}

func (svc *service) UpdateStatus(ctx context.Context, id string, status Status) (Document, error) {
	doc, err := svc.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return Document{}, err
	}
	doc.Status = status
	doc.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDocument(ctx, doc)
}
