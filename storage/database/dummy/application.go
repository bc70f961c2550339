package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/unipath/unipath/core"
	"github.com/unipath/unipath/core/application"
)

type applicationRepository struct {
	db *applicationTable
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *DB) application.Repository {
	return &applicationRepository{db: db.application}
}

func (repo *applicationRepository) CreateApplication(_ context.Context, app application.Application, _ ...core.DBExecutor) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	app.ID = uuid.New().String()
	repo.db.table[app.ID] = &app
	return app, nil
}

func (repo *applicationRepository) GetApplicationByID(_ context.Context, id string, _ ...core.DBExecutor) (application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if app, ok := repo.db.table[id]; ok {
		return *app, nil
	}
	return application.Application{}, application.ErrNotFound
}

func (repo *applicationRepository) QueryStudentApplications(_ context.Context, studentID string, _ ...core.DBExecutor) ([]application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	apps := make([]application.Application, 0)
	for _, app := range repo.db.table {
		if app.StudentID == studentID {
			apps = append(apps, *app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.Before(apps[j].CreatedAt) })
	return apps, nil
}

func (repo *applicationRepository) UpdateApplication(_ context.Context, app application.Application, _ ...core.DBExecutor) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[app.ID]; !ok {
		return application.Application{}, application.ErrNotFound
	}
	repo.db.table[app.ID] = &app
	return app, nil
}
