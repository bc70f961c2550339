package sqlxrepos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/unipath/unipath/core"
	"github.com/unipath/unipath/core/student"
)

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

type studentRow struct {
	ID           string      `db:"id"`
	Name         null.String `db:"name"`
	Email        null.String `db:"email"`
	Phone        null.String `db:"phone"`
	CurrentPhase null.String `db:"current_phase"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
}

func (r studentRow) unrow() student.Student {
	return student.Student{
		ID:           r.ID,
		Name:         r.Name.String,
		Email:        r.Email.String,
		Phone:        r.Phone.String,
		CurrentPhase: student.Phase(r.CurrentPhase.String),
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

type profileRow struct {
	ID                string          `db:"id"`
	StudentID         string          `db:"student_id"`
	Country           null.String     `db:"country"`
	CurrentPhase      null.String     `db:"current_phase"`
	AppsTotal         int             `db:"apps_total"`
	AppsPrimary       int             `db:"apps_primary"`
	AppsBackup        int             `db:"apps_backup"`
	AppsAccepted      int             `db:"apps_accepted"`
	AppsRejected      int             `db:"apps_rejected"`
	AppsPending       int             `db:"apps_pending"`
	FeesPaid          decimal.Decimal `db:"fees_paid"`
	ScholarshipAmount decimal.Decimal `db:"scholarship_amount"`
	VisaStatus        null.String     `db:"visa_status"`
	CreatedAt         null.Time       `db:"created_at"`
	UpdatedAt         null.Time       `db:"updated_at"`
}

func (r profileRow) unrow() student.StudentCountryProfile {
	return student.StudentCountryProfile{
		ID:           r.ID,
		StudentID:    r.StudentID,
		Country:      r.Country.String,
		CurrentPhase: student.Phase(r.CurrentPhase.String),
		Applications: student.ApplicationCounts{
			Total:    r.AppsTotal,
			Primary:  r.AppsPrimary,
			Backup:   r.AppsBackup,
			Accepted: r.AppsAccepted,
			Rejected: r.AppsRejected,
			Pending:  r.AppsPending,
		},
		FeesPaid:          r.FeesPaid,
		ScholarshipAmount: r.ScholarshipAmount,
		VisaStatus:        student.VisaStatus(r.VisaStatus.String),
		CreatedAt:         r.CreatedAt.Time,
		UpdatedAt:         r.UpdatedAt.Time,
	}
}

type activityRow struct {
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	Country   null.String `db:"country"`
	FromPhase null.String `db:"from_phase"`
	ToPhase   null.String `db:"to_phase"`
	Direction null.String `db:"direction"`
	Message   null.String `db:"message"`
	CreatedAt null.Time   `db:"created_at"`
}

func (r activityRow) unrow() student.ActivityEntry {
	return student.ActivityEntry{
		ID:        r.ID,
		StudentID: r.StudentID,
		Country:   r.Country.String,
		FromPhase: student.Phase(r.FromPhase.String),
		ToPhase:   student.Phase(r.ToPhase.String),
		Direction: student.Direction(r.Direction.String),
		Message:   r.Message.String,
		CreatedAt: r.CreatedAt.Time,
	}
}

// trapNoRowsErr maps an empty result to the given sentinel.
func trapNoRowsErr(found bool, notFound error, err error, msg string) error {
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if !found {
		return notFound
	}
	return nil
}

func (repo studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedStudents []student.Student, exec ...core.DBExecutor) error {
	q := `SELECT EXISTS (SELECT 1 FROM student WHERE email = ?)`
	args := []interface{}{email}

	if len(excludedStudents) > 0 {
		ids := make([]string, 0, len(excludedStudents))
		for _, stu := range excludedStudents {
			ids = append(ids, stu.ID)
		}
		var err error
		q, args, err = sqlx.In(`SELECT EXISTS (SELECT 1 FROM student WHERE email = ? AND id NOT IN (?))`, email, ids)
		if err != nil {
			return errors.Wrap(err, "checking email uniqueness")
		}
	}

	var exists bool
	q = sqlx.Rebind(sqlx.DOLLAR, q)
	if err := repo.getExec(exec).QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return student.ErrEmailExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, stu student.Student, exec ...core.DBExecutor) (student.Student, error) {
	stu.ID = uuid.New().String()
	q := `INSERT INTO student (id, name, email, phone, current_phase, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		stu.ID, stu.Name, stu.Email, stu.Phone, stu.CurrentPhase, stu.CreatedAt.UTC(), stu.UpdatedAt.UTC())
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return stu, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	q := `SELECT id, name, email, phone, current_phase, created_at, updated_at FROM student`
	var where []string
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			where = append(where, `(name ILIKE ? OR email ILIKE ?)`)
			val := "%" + filter.Search + "%"
			args = append(args, val, val)
		}
		if filter.Phase != "" {
			where = append(where, `current_phase = ?`)
			args = append(args, filter.Phase)
		}
		if filter.Country != "" {
			where = append(where, `id IN (SELECT student_id FROM student_country_profile WHERE LOWER(country) = LOWER(?))`)
			args = append(args, filter.Country)
		}
		if !filter.CreatedFrom.IsZero() {
			where = append(where, `created_at >= ?`)
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			where = append(where, `created_at <= ?`)
			args = append(args, filter.CreatedTo.UTC())
		}
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		q += " ORDER BY " + strings.Join(orderList, ", ")
	} else {
		q += " ORDER BY created_at DESC"
	}

	rows, err := repo.getExec(exec).QueryContext(ctx, sqlx.Rebind(sqlx.DOLLAR, q), args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	defer func() { _ = rows.Close() }()

	var recs []studentRow
	if err = sqlx.StructScan(rows, &recs); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(recs))
	for _, r := range recs {
		students = append(students, r.unrow())
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}

	q := `SELECT id, name, email, phone, current_phase, created_at, updated_at FROM student WHERE id = $1`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, id)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	defer func() { _ = rows.Close() }()

	var recs []studentRow
	err = sqlx.StructScan(rows, &recs)
	if err := trapNoRowsErr(len(recs) > 0, student.ErrNotFound, err, "finding student by ID"); err != nil {
		return student.Student{}, err
	}
	return recs[0].unrow(), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, stu student.Student, exec ...core.DBExecutor) (student.Student, error) {
	q := `UPDATE student SET name = $2, email = $3, phone = $4, current_phase = $5, updated_at = $6 WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q,
		stu.ID, stu.Name, stu.Email, stu.Phone, stu.CurrentPhase, stu.UpdatedAt.UTC())
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return stu, nil
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting students")
	}
	if _, err = repo.exec.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}

func (repo studentRepository) CreateProfile(ctx context.Context, profile student.StudentCountryProfile, exec ...core.DBExecutor) (student.StudentCountryProfile, error) {
	profile.ID = uuid.New().String()
	q := `INSERT INTO student_country_profile
		  (id, student_id, country, current_phase, fees_paid, scholarship_amount, visa_status, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		profile.ID, profile.StudentID, profile.Country, profile.CurrentPhase,
		profile.FeesPaid, profile.ScholarshipAmount, profile.VisaStatus,
		profile.CreatedAt.UTC(), profile.UpdatedAt.UTC())
	if err != nil {
		return student.StudentCountryProfile{}, errors.Wrap(err, "inserting country profile")
	}
	return profile, nil
}

const profileColumns = `id, student_id, country, current_phase,
	apps_total, apps_primary, apps_backup, apps_accepted, apps_rejected, apps_pending,
	fees_paid, scholarship_amount, visa_status, created_at, updated_at`

func (repo studentRepository) QueryStudentProfiles(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]student.StudentCountryProfile, error) {
	q := `SELECT ` + profileColumns + ` FROM student_country_profile WHERE student_id = $1 ORDER BY created_at`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying country profiles")
	}
	defer func() { _ = rows.Close() }()

	var recs []profileRow
	if err = sqlx.StructScan(rows, &recs); err != nil {
		return nil, errors.Wrap(err, "querying country profiles")
	}
	profiles := make([]student.StudentCountryProfile, 0, len(recs))
	for _, r := range recs {
		profiles = append(profiles, r.unrow())
	}
	return profiles, nil
}

func (repo studentRepository) GetProfile(ctx context.Context, studentID, country string, exec ...core.DBExecutor) (student.StudentCountryProfile, error) {
	q := `SELECT ` + profileColumns + ` FROM student_country_profile WHERE student_id = $1 AND LOWER(country) = LOWER($2)`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, studentID, country)
	if err != nil {
		return student.StudentCountryProfile{}, errors.Wrap(err, "finding country profile")
	}
	defer func() { _ = rows.Close() }()

	var recs []profileRow
	err = sqlx.StructScan(rows, &recs)
	if err := trapNoRowsErr(len(recs) > 0, student.ErrProfileNotFound, err, "finding country profile"); err != nil {
		return student.StudentCountryProfile{}, err
	}
	return recs[0].unrow(), nil
}

func (repo studentRepository) UpdateProfile(ctx context.Context, profile student.StudentCountryProfile, exec ...core.DBExecutor) (student.StudentCountryProfile, error) {
	q := `UPDATE student_country_profile SET current_phase = $2,
		  apps_total = $3, apps_primary = $4, apps_backup = $5, apps_accepted = $6, apps_rejected = $7, apps_pending = $8,
		  fees_paid = $9, scholarship_amount = $10, visa_status = $11, updated_at = $12
		  WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q,
		profile.ID, profile.CurrentPhase,
		profile.Applications.Total, profile.Applications.Primary, profile.Applications.Backup,
		profile.Applications.Accepted, profile.Applications.Rejected, profile.Applications.Pending,
		profile.FeesPaid, profile.ScholarshipAmount, profile.VisaStatus, profile.UpdatedAt.UTC())
	if err != nil {
		return student.StudentCountryProfile{}, errors.Wrap(err, "updating country profile")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return student.StudentCountryProfile{}, student.ErrProfileNotFound
	}
	return profile, nil
}

func (repo studentRepository) CreateActivity(ctx context.Context, entry student.ActivityEntry, exec ...core.DBExecutor) (student.ActivityEntry, error) {
	entry.ID = uuid.New().String()
	q := `INSERT INTO activity_entry (id, student_id, country, from_phase, to_phase, direction, message, created_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		entry.ID, entry.StudentID, entry.Country, entry.FromPhase, entry.ToPhase,
		entry.Direction, entry.Message, entry.CreatedAt.UTC())
	if err != nil {
		return student.ActivityEntry{}, errors.Wrap(err, "inserting activity entry")
	}
	return entry, nil
}

func (repo studentRepository) QueryStudentActivities(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]student.ActivityEntry, error) {
	q := `SELECT id, student_id, country, from_phase, to_phase, direction, message, created_at
		  FROM activity_entry WHERE student_id = $1 ORDER BY created_at DESC`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying activity entries")
	}
	defer func() { _ = rows.Close() }()

	var recs []activityRow
	if err = sqlx.StructScan(rows, &recs); err != nil {
		return nil, errors.Wrap(err, "querying activity entries")
	}
	entries := make([]student.ActivityEntry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, r.unrow())
	}
	return entries, nil
}
