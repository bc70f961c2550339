package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/unipath/unipath/core"
	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/document"
	"github.com/unipath/unipath/core/student"
	dummydb "github.com/unipath/unipath/storage/database/dummy"
	testutil "github.com/unipath/unipath/tests"
)

type testRepos struct {
	stu student.Repository
	doc document.Repository
	app application.Repository
}

func setup(t *testing.T) (Server, testRepos) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repos := testRepos{
		stu: dummydb.NewStudentRepository(db),
		doc: dummydb.NewDocumentRepository(db),
		app: dummydb.NewApplicationRepository(db),
	}

	logger := testutil.NopLogger{}
	validate, translator := testutil.NewValidators()

	srv := NewServer(ServerDeps{
		Conf:           &core.Config{TestMode: true},
		Logger:         logger,
		StudentSvc:     student.NewService(nil, repos.stu, repos.doc, repos.app, logger),
		DocumentSvc:    document.NewService(repos.doc, logger),
		ApplicationSvc: application.NewService(repos.app, logger),
		Validate:       validate,
		Translator:     translator,
	})
	return srv, repos
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func doRequest(srv Server, method, path string, data ...[]byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("jsonBody() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("code = %d; want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}
