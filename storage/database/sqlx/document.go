package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/unipath/unipath/core"
	"github.com/unipath/unipath/core/document"
)

type documentRepository struct {
	exec core.DBExecutor
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(exec core.DBExecutor) *documentRepository {
	return &documentRepository{exec: exec}
}

func (repo documentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

type documentRow struct {
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	Type      null.String `db:"type"`
	Status    null.String `db:"status"`
	Notes     null.String `db:"notes"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (r documentRow) unrow() document.Document {
	return document.Document{
		ID:        r.ID,
		StudentID: r.StudentID,
		Type:      document.Type(r.Type.String),
		Status:    document.Status(r.Status.String),
		Notes:     r.Notes.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func (repo documentRepository) CreateDocument(ctx context.Context, doc document.Document, exec ...core.DBExecutor) (document.Document, error) {
	doc.ID = uuid.New().String()
	q := `INSERT INTO document (id, student_id, type, status, notes, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		doc.ID, doc.StudentID, doc.Type, doc.Status, doc.Notes, doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		return document.Document{}, errors.Wrap(err, "inserting document")
	}
	return doc, nil
}

func (repo documentRepository) GetDocumentByID(ctx context.Context, id string, exec ...core.DBExecutor) (document.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return document.Document{}, document.ErrNotFound
	}

	q := `SELECT id, student_id, type, status, notes, created_at, updated_at FROM document WHERE id = $1`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, id)
	if err != nil {
		return document.Document{}, errors.Wrap(err, "finding document by ID")
	}
	defer func() { _ = rows.Close() }()

	var recs []documentRow
	err = sqlx.StructScan(rows, &recs)
	if err := trapNoRowsErr(len(recs) > 0, document.ErrNotFound, err, "finding document by ID"); err != nil {
		return document.Document{}, err
	}
	return recs[0].unrow(), nil
}

func (repo documentRepository) QueryStudentDocuments(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]document.Document, error) {
	q := `SELECT id, student_id, type, status, notes, created_at, updated_at
		  FROM document WHERE student_id = $1 ORDER BY created_at`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}
	defer func() { _ = rows.Close() }()

	var recs []documentRow
	if err = sqlx.StructScan(rows, &recs); err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}
	docs := make([]document.Document, 0, len(recs))
	for _, r := range recs {
		docs = append(docs, r.unrow())
	}
	return docs, nil
}

func (repo documentRepository) UpdateDocument(ctx context.Context, doc document.Document, exec ...core.DBExecutor) (document.Document, error) {
	q := `UPDATE document SET type = $2, status = $3, notes = $4, updated_at = $5 WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q,
		doc.ID, doc.Type, doc.Status, doc.Notes, doc.UpdatedAt.UTC())
	if err != nil {
		return document.Document{}, errors.Wrap(err, "updating document")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return document.Document{}, document.ErrNotFound
	}
	return doc, nil
}
