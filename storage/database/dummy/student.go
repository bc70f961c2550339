package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/unipath/unipath/core"
	"github.com/unipath/unipath/core/student"
)

type studentRepository struct {
	students   *studentTable
	profiles   *profileTable
	activities *activityTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{
		students:   db.student,
		profiles:   db.profile,
		activities: db.activity,
	}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.students.table))
	for _, s := range repo.students.table {
		students = append(students, *s)
	}
	return students
}

func (repo *studentRepository) CheckEmailUniqueness(_ context.Context, email string, excludedStudents []student.Student, _ ...core.DBExecutor) error {
	repo.students.RLock()
	defer repo.students.RUnlock()

	for _, stu := range repo.query() {
		if stu.Email == email && !isExcluded(stu, excludedStudents) {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, stu student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.students.Lock()
	defer repo.students.Unlock()

	stu.ID = uuid.New().String()
	repo.students.table[stu.ID] = &stu
	return stu, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.students.RLock()
	students := repo.query()
	repo.students.RUnlock()

	if filter != nil && !filter.IsEmpty() {
		students = repo.applyFilter(students, filter)
	}

	// stable listing order; ordering params beyond created_at are a sql concern
	sort.Slice(students, func(i, j int) bool { return students[i].CreatedAt.After(students[j].CreatedAt) })
	return students, nil
}

func (repo *studentRepository) applyFilter(students []student.Student, filter *student.QueryFilter) []student.Student {
	matched := make([]student.Student, 0, len(students))
	for _, stu := range students {
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(stu.Name), needle) &&
				!strings.Contains(strings.ToLower(stu.Email), needle) {
				continue
			}
		}
		if filter.Phase != "" && stu.CurrentPhase != filter.Phase {
			continue
		}
		if filter.Country != "" && !repo.hasCountry(stu.ID, filter.Country) {
			continue
		}
		if !filter.CreatedFrom.IsZero() && stu.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && stu.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		matched = append(matched, stu)
	}
	return matched
}

func (repo *studentRepository) hasCountry(studentID, country string) bool {
	repo.profiles.RLock()
	defer repo.profiles.RUnlock()

	for _, p := range repo.profiles.table {
		if p.StudentID == studentID && student.SameCountry(p.Country, country) {
			return true
		}
	}
	return false
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string, _ ...core.DBExecutor) (student.Student, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()

	if stu, ok := repo.students.table[id]; ok {
		return *stu, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, stu student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.students.Lock()
	defer repo.students.Unlock()

	if _, ok := repo.students.table[stu.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.students.table[stu.ID] = &stu
	return stu, nil
}

func (repo *studentRepository) DeleteStudentsByID(_ context.Context, ids ...string) error {
	repo.students.Lock()
	defer repo.students.Unlock()

	for _, id := range ids {
		delete(repo.students.table, id)
	}
	return nil
}

func (repo *studentRepository) CreateProfile(_ context.Context, profile student.StudentCountryProfile, _ ...core.DBExecutor) (student.StudentCountryProfile, error) {
	repo.profiles.Lock()
	defer repo.profiles.Unlock()

	profile.ID = uuid.New().String()
	repo.profiles.table[profile.ID] = &profile
	return profile, nil
}

func (repo *studentRepository) QueryStudentProfiles(_ context.Context, studentID string, _ ...core.DBExecutor) ([]student.StudentCountryProfile, error) {
	repo.profiles.RLock()
	defer repo.profiles.RUnlock()

	profiles := make([]student.StudentCountryProfile, 0)
	for _, p := range repo.profiles.table {
		if p.StudentID == studentID {
			profiles = append(profiles, *p)
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Country < profiles[j].Country })
	return profiles, nil
}

func (repo *studentRepository) GetProfile(_ context.Context, studentID, country string, _ ...core.DBExecutor) (student.StudentCountryProfile, error) {
	repo.profiles.RLock()
	defer repo.profiles.RUnlock()

	for _, p := range repo.profiles.table {
		if p.StudentID == studentID && student.SameCountry(p.Country, country) {
			return *p, nil
		}
	}
	return student.StudentCountryProfile{}, student.ErrProfileNotFound
}

func (repo *studentRepository) UpdateProfile(_ context.Context, profile student.StudentCountryProfile, _ ...core.DBExecutor) (student.StudentCountryProfile, error) {
	repo.profiles.Lock()
	defer repo.profiles.Unlock()

	if _, ok := repo.profiles.table[profile.ID]; !ok {
		return student.StudentCountryProfile{}, student.ErrProfileNotFound
	}
	repo.profiles.table[profile.ID] = &profile
	return profile, nil
}

func (repo *studentRepository) CreateActivity(_ context.Context, entry student.ActivityEntry, _ ...core.DBExecutor) (student.ActivityEntry, error) {
	repo.activities.Lock()
	defer repo.activities.Unlock()

	entry.ID = uuid.New().String()
	repo.activities.table[entry.ID] = &entry
	return entry, nil
}

func (repo *studentRepository) QueryStudentActivities(_ context.Context, studentID string, _ ...core.DBExecutor) ([]student.ActivityEntry, error) {
	repo.activities.RLock()
	defer repo.activities.RUnlock()

	entries := make([]student.ActivityEntry, 0)
	for _, e := range repo.activities.table {
		if e.StudentID == studentID {
			entries = append(entries, *e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}

func isExcluded(stu student.Student, excluded []student.Student) bool {
	for _, ex := range excluded {
		if stu.ID == ex.ID {
			return true
		}
	}
	return false
}
