package dummydb

import (
	"sync"

	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/document"
	"github.com/unipath/unipath/core/student"
)

type (
	DB struct {
		student     *studentTable
		profile     *profileTable
		activity    *activityTable
		document    *documentTable
		application *applicationTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	profileTable struct {
		sync.RWMutex
		table map[string]*student.StudentCountryProfile
	}

	activityTable struct {
		sync.RWMutex
		table map[string]*student.ActivityEntry
	}

	documentTable struct {
		sync.RWMutex
		table map[string]*document.Document
	}

	applicationTable struct {
		sync.RWMutex
		table map[string]*application.Application
	}
)

func Open() (*DB, error) {
	db := &DB{
		student:     &studentTable{table: make(map[string]*student.Student)},
		profile:     &profileTable{table: make(map[string]*student.StudentCountryProfile)},
		activity:    &activityTable{table: make(map[string]*student.ActivityEntry)},
		document:    &documentTable{table: make(map[string]*document.Document)},
		application: &applicationTable{table: make(map[string]*application.Application)},
	}
	return db, nil
}
