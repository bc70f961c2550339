package student

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/unipath/unipath/core"
	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/document"
)

var (
	// errors
	ErrNotFound              = errors.New("student not found")
	ErrEmailExists           = errors.New("a student with this email already exists")
	ErrProfileNotFound       = errors.New("country profile not found")
	ErrCountryAlreadyTracked = errors.New("a profile for this country already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedStudents []Student, exec ...core.DBExecutor) error
		CreateStudent(ctx context.Context, stu Student, exec ...core.DBExecutor) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Student.Name or Student.Email.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Student, error)
		GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, stu Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error

		CreateProfile(ctx context.Context, profile StudentCountryProfile, exec ...core.DBExecutor) (StudentCountryProfile, error)
		QueryStudentProfiles(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]StudentCountryProfile, error)
		GetProfile(ctx context.Context, studentID, country string, exec ...core.DBExecutor) (StudentCountryProfile, error)
		UpdateProfile(ctx context.Context, profile StudentCountryProfile, exec ...core.DBExecutor) (StudentCountryProfile, error)

		CreateActivity(ctx context.Context, entry ActivityEntry, exec ...core.DBExecutor) (ActivityEntry, error)
		QueryStudentActivities(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]ActivityEntry, error)
	}

	Service interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...Student) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, ids ...string) error

		AddCountryTrack(ctx context.Context, studentID string, nc NewCountryTrack) (StudentCountryProfile, error)
		CountryTracks(ctx context.Context, studentID string) ([]StudentCountryProfile, error)
		ChangePhase(ctx context.Context, studentID, country string, target Phase) (PhaseChange, error)
		Progress(ctx context.Context, studentID, country string) (ProfileProgress, error)
		ProgressAll(ctx context.Context, studentID string) ([]ProfileProgress, error)
		RefreshApplicationCounts(ctx context.Context, studentID, country string) (StudentCountryProfile, error)
		Activities(ctx context.Context, studentID string) ([]ActivityEntry, error)
	}

	service struct {
		db      core.DB
		repo    Repository
		docRepo document.Repository
		appRepo application.Repository
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, docRepo document.Repository, appRepo application.Repository, logger core.Logger) Service {
	return &service{
		db:      db,
		repo:    repo,
		docRepo: docRepo,
		appRepo: appRepo,
		logger:  logger,
	}
}

// atomic runs fn transactionally when a transactional DB is configured;
// in-memory repositories ignore the executor.
func (svc *service) atomic(ctx context.Context, fn core.AtomicFunc) error {
	if svc.db == nil {
		return fn(nil)
	}
	return core.Atomic(ctx, svc.db, fn)
}

func (svc *service) CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...Student) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedStudents); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	stu := Student{
		Name:         ns.Name,
		Email:        ns.Email,
		Phone:        ns.Phone,
		CurrentPhase: PhaseDocumentCollection,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateStudent(ctx, stu)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	stu, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	stu.Name = us.Name
	stu.Email = us.Email
	stu.Phone = us.Phone
	stu.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, stu)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

func (svc *service) AddCountryTrack(ctx context.Context, studentID string, nc NewCountryTrack) (StudentCountryProfile, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return StudentCountryProfile{}, err
	}

	country := CanonicalCountry(nc.Country)
	if _, err := svc.repo.GetProfile(ctx, studentID, country); err == nil {
		return StudentCountryProfile{}, core.NewValidationError(
			ErrCountryAlreadyTracked,
			core.FieldError{Field: "country", Error: ErrCountryAlreadyTracked.Error()},
		)
	} else if errors.Cause(err) != ErrProfileNotFound {
		return StudentCountryProfile{}, err
	}

	now := time.Now().UTC()
	profile := StudentCountryProfile{
		StudentID:    studentID,
		Country:      country,
		CurrentPhase: PhaseDocumentCollection, // every track restarts at the top of the pipeline
		VisaStatus:   VisaNotStarted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateProfile(ctx, profile)
}

func (svc *service) CountryTracks(ctx context.Context, studentID string) ([]StudentCountryProfile, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryStudentProfiles(ctx, studentID)
}

// ChangePhase validates and persists a phase transition for one country track.
// The document snapshot read, validation and phase write all happen inside a
// single transaction so two concurrent requests cannot both pass validation
// against a stale snapshot.
func (svc *service) ChangePhase(ctx context.Context, studentID, country string, target Phase) (PhaseChange, error) {
	country = CanonicalCountry(country)

	var change PhaseChange
	err := svc.atomic(ctx, func(tx core.DBTransactor) error {
		profile, err := svc.repo.GetProfile(ctx, studentID, country, execArgs(tx)...)
		if err != nil {
			return err
		}

		docs, err := svc.docRepo.QueryStudentDocuments(ctx, studentID, execArgs(tx)...)
		if err != nil {
			return errors.Wrap(err, "loading document snapshot")
		}

		change, err = RequestPhaseChange(profile.CurrentPhase, target, docs)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		profile.CurrentPhase = change.To
		profile.UpdatedAt = now
		if _, err = svc.repo.UpdateProfile(ctx, profile, execArgs(tx)...); err != nil {
			return err
		}

		entry := ActivityEntry{
			StudentID: studentID,
			Country:   country,
			FromPhase: change.From,
			ToPhase:   change.To,
			Direction: change.Direction,
			Message:   change.Describe(),
			CreatedAt: now,
		}
		if _, err = svc.repo.CreateActivity(ctx, entry, execArgs(tx)...); err != nil {
			return err
		}

		return svc.syncDerivedPhase(ctx, studentID, tx)
	})
	if err != nil {
		return PhaseChange{}, err
	}

	svc.logger.Info(fmt.Sprintf("student %s (%s): %s", studentID, country, change.Describe()))
	return change, nil
}

func (svc *service) Progress(ctx context.Context, studentID, country string) (ProfileProgress, error) {
	profile, err := svc.repo.GetProfile(ctx, studentID, CanonicalCountry(country))
	if err != nil {
		return ProfileProgress{}, err
	}
	return svc.profileProgress(ctx, profile)
}

func (svc *service) ProgressAll(ctx context.Context, studentID string) ([]ProfileProgress, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	profiles, err := svc.repo.QueryStudentProfiles(ctx, studentID)
	if err != nil {
		return nil, err
	}

	out := make([]ProfileProgress, 0, len(profiles))
	for _, profile := range profiles {
		pp, err := svc.profileProgress(ctx, profile)
		if err != nil {
			return nil, err
		}
		out = append(out, pp)
	}
	return out, nil
}

func (svc *service) profileProgress(ctx context.Context, profile StudentCountryProfile) (ProfileProgress, error) {
	docs, err := svc.docRepo.QueryStudentDocuments(ctx, profile.StudentID)
	if err != nil {
		return ProfileProgress{}, errors.Wrap(err, "loading documents")
	}
	apps, err := svc.appRepo.QueryStudentApplications(ctx, profile.StudentID)
	if err != nil {
		return ProfileProgress{}, errors.Wrap(err, "loading applications")
	}
	return ProfileProgress{
		Country:  profile.Country,
		Phase:    profile.CurrentPhase,
		Progress: ComputeProgress(profile, docs, apps),
	}, nil
}

// RefreshApplicationCounts recomputes a track's application aggregates from the
// student's application records. Called after application writes.
func (svc *service) RefreshApplicationCounts(ctx context.Context, studentID, country string) (StudentCountryProfile, error) {
	country = CanonicalCountry(country)

	profile, err := svc.repo.GetProfile(ctx, studentID, country)
	if err != nil {
		return StudentCountryProfile{}, err
	}
	apps, err := svc.appRepo.QueryStudentApplications(ctx, studentID)
	if err != nil {
		return StudentCountryProfile{}, errors.Wrap(err, "loading applications")
	}

	var counts ApplicationCounts
	for _, app := range apps {
		if !SameCountry(app.UniversityCountry, country) {
			continue
		}
		counts.Total++
		switch app.Priority {
		case application.PriorityPrimary:
			counts.Primary++
		case application.PriorityBackup:
			counts.Backup++
		}
		switch app.Status {
		case application.StatusAccepted, application.StatusConditionalOffer:
			counts.Accepted++
		case application.StatusRejected:
			counts.Rejected++
		case application.StatusPending, application.StatusSubmitted, application.StatusUnderReview:
			counts.Pending++
		}
	}

	profile.Applications = counts
	profile.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, profile)
}

func (svc *service) Activities(ctx context.Context, studentID string) ([]ActivityEntry, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryStudentActivities(ctx, studentID)
}

// syncDerivedPhase keeps the student-level phase equal to the most advanced
// track phase. Track phases are authoritative; this slot only feeds listings.
func (svc *service) syncDerivedPhase(ctx context.Context, studentID string, tx core.DBTransactor) error {
	profiles, err := svc.repo.QueryStudentProfiles(ctx, studentID, execArgs(tx)...)
	if err != nil {
		return err
	}

	derived := PhaseDocumentCollection
	for _, profile := range profiles {
		if profile.CurrentPhase.Index() > derived.Index() {
			derived = profile.CurrentPhase
		}
	}

	stu, err := svc.repo.GetStudentByID(ctx, studentID, execArgs(tx)...)
	if err != nil {
		return err
	}
	if stu.CurrentPhase == derived {
		return nil
	}
	stu.CurrentPhase = derived
	stu.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateStudent(ctx, stu, execArgs(tx)...)
	return err
}

// execArgs threads the transaction through to repositories only when one is in play.
func execArgs(tx core.DBTransactor) []core.DBExecutor {
	if tx == nil {
		return nil
	}
	return []core.DBExecutor{tx}
}
