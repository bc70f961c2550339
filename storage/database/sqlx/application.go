package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/unipath/unipath/core"
	"github.com/unipath/unipath/core/application"
)

type applicationRepository struct {
	exec core.DBExecutor
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(exec core.DBExecutor) *applicationRepository {
	return &applicationRepository{exec: exec}
}

func (repo applicationRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

type applicationRow struct {
	ID                string      `db:"id"`
	StudentID         string      `db:"student_id"`
	UniversityName    null.String `db:"university_name"`
	UniversityCountry null.String `db:"university_country"`
	Program           null.String `db:"program"`
	Status            null.String `db:"status"`
	Priority          null.String `db:"priority"`
	CreatedAt         null.Time   `db:"created_at"`
	UpdatedAt         null.Time   `db:"updated_at"`
}

func (r applicationRow) unrow() application.Application {
	return application.Application{
		ID:                r.ID,
		StudentID:         r.StudentID,
		UniversityName:    r.UniversityName.String,
		UniversityCountry: r.UniversityCountry.String,
		Program:           r.Program.String,
		Status:            application.Status(r.Status.String),
		Priority:          application.Priority(r.Priority.String),
		CreatedAt:         r.CreatedAt.Time,
		UpdatedAt:         r.UpdatedAt.Time,
	}
}

func (repo applicationRepository) CreateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	app.ID = uuid.New().String()
	q := `INSERT INTO application (id, student_id, university_name, university_country, program, status, priority, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		app.ID, app.StudentID, app.UniversityName, app.UniversityCountry, app.Program,
		app.Status, app.Priority, app.CreatedAt.UTC(), app.UpdatedAt.UTC())
	if err != nil {
		return application.Application{}, errors.Wrap(err, "inserting application")
	}
	return app, nil
}

func (repo applicationRepository) GetApplicationByID(ctx context.Context, id string, exec ...core.DBExecutor) (application.Application, error) {
	if _, err := uuid.Parse(id); err != nil {
		return application.Application{}, application.ErrNotFound
	}

	q := `SELECT id, student_id, university_name, university_country, program, status, priority, created_at, updated_at
		  FROM application WHERE id = $1`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, id)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "finding application by ID")
	}
	defer func() { _ = rows.Close() }()

	var recs []applicationRow
	err = sqlx.StructScan(rows, &recs)
	if err := trapNoRowsErr(len(recs) > 0, application.ErrNotFound, err, "finding application by ID"); err != nil {
		return application.Application{}, err
	}
	return recs[0].unrow(), nil
}

func (repo applicationRepository) QueryStudentApplications(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]application.Application, error) {
	q := `SELECT id, student_id, university_name, university_country, program, status, priority, created_at, updated_at
		  FROM application WHERE student_id = $1 ORDER BY created_at`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	defer func() { _ = rows.Close() }()

	var recs []applicationRow
	if err = sqlx.StructScan(rows, &recs); err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	apps := make([]application.Application, 0, len(recs))
	for _, r := range recs {
		apps = append(apps, r.unrow())
	}
	return apps, nil
}

func (repo applicationRepository) UpdateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	q := `UPDATE application SET university_name = $2, university_country = $3, program = $4, status = $5, priority = $6, updated_at = $7
		  WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q,
		app.ID, app.UniversityName, app.UniversityCountry, app.Program, app.Status, app.Priority, app.UpdatedAt.UTC())
	if err != nil {
		return application.Application{}, errors.Wrap(err, "updating application")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return application.Application{}, application.ErrNotFound
	}
	return app, nil
}
