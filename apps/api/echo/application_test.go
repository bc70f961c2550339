package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/student"
	testutil "github.com/unipath/unipath/tests"
)

func Test_applicationApi(t *testing.T) {
	ctx := context.Background()
	srv, repos := setup(t)
	stu := testutil.CreateStudent(t, repos.stu, "Awa Ndiaye", "awa@test.cd")
	testutil.CreateProfile(t, repos.stu, stu.ID, student.CountryUK, student.PhaseUniversityShortlisting)

	var appID string

	t.Run("create canonicalizes country and refreshes counts", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/v1/students/"+stu.ID+"/applications",
			jsonBody(t, map[string]string{"university_name": "UCL", "university_country": "U.K.", "program": "CS"}))
		checkCode(t, rec, http.StatusCreated)

		var app application.Application
		decodeBody(t, rec, &app)
		if app.UniversityCountry != student.CountryUK {
			t.Errorf("university_country = %q; want %q", app.UniversityCountry, student.CountryUK)
		}
		if app.Status != application.StatusPending || app.Priority != application.PriorityPrimary {
			t.Errorf("unexpected defaults: %+v", app)
		}
		appID = app.ID

		profile, err := repos.stu.GetProfile(ctx, stu.ID, student.CountryUK)
		if err != nil {
			t.Fatalf("GetProfile() failed, %v", err)
		}
		if profile.Applications.Total != 1 || profile.Applications.Primary != 1 || profile.Applications.Pending != 1 {
			t.Errorf("counts not refreshed: %+v", profile.Applications)
		}
	})

	t.Run("create for untracked country still succeeds", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/v1/students/"+stu.ID+"/applications",
			jsonBody(t, map[string]string{"university_name": "MIT", "university_country": "USA", "priority": "BACKUP"}))
		checkCode(t, rec, http.StatusCreated)
	})

	t.Run("missing university name", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/v1/students/"+stu.ID+"/applications",
			jsonBody(t, map[string]string{"university_country": "U.K."}))
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("list", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/v1/students/"+stu.ID+"/applications")
		checkCode(t, rec, http.StatusOK)
		var apps []application.Application
		decodeBody(t, rec, &apps)
		if len(apps) != 2 {
			t.Errorf("got %d applications; want 2", len(apps))
		}
	})

	t.Run("accepting an offer updates counts", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPut, "/v1/applications/"+appID+"/status",
			jsonBody(t, map[string]string{"status": "ACCEPTED"}))
		checkCode(t, rec, http.StatusOK)

		profile, err := repos.stu.GetProfile(ctx, stu.ID, student.CountryUK)
		if err != nil {
			t.Fatalf("GetProfile() failed, %v", err)
		}
		if profile.Applications.Accepted != 1 || profile.Applications.Pending != 0 {
			t.Errorf("counts not refreshed: %+v", profile.Applications)
		}
	})

	t.Run("update status unknown application", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPut, "/v1/applications/lol/status",
			jsonBody(t, map[string]string{"status": "ACCEPTED"}))
		checkCode(t, rec, http.StatusNotFound)
	})
}
