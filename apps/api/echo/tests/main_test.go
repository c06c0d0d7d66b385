package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	echoapi "github.com/trezcool/aulavirtual/apps/api/echo"
	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/user"
	emailsvc "github.com/trezcool/aulavirtual/services/email"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
	"github.com/trezcool/aulavirtual/tests"
)

var errMissingToken = httpErr{Detail: "missing or malformed jwt"}

type env struct {
	db     *inmemdb.DB
	app    echoapi.Server
	mailer *emailsvc.ConsoleService
	seeded inmemdb.Seeded

	adminToken, teacherToken, editorToken, studentToken string
}

// setup returns a freshly seeded API.
func setup(t *testing.T) *env {
	db := inmemdb.Open(nil)
	seeded, err := inmemdb.Seed(db)
	if err != nil {
		t.Fatalf("inmemdb.Seed(): %v", err)
	}
	mailer := emailsvc.NewConsoleService(testutil.NewTestConfig(), core.NopLogger)
	return &env{
		db:           db,
		app:          testutil.NewServer(db, mailer),
		mailer:       mailer,
		seeded:       seeded,
		adminToken:   getToken(t, seeded.Admin),
		teacherToken: getToken(t, seeded.Teacher),
		editorToken:  getToken(t, seeded.Editor),
		studentToken: getToken(t, seeded.Student),
	}
}

type httpErr struct {
	Detail string `json:"detail"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (e *env) serve(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	e.app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, usr user.User) string {
	return testutil.UserToken(t, usr, 0)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarshall(%s): %v", rec.Body.String(), err)
	}
}

func detail(msg string) []byte {
	data, _ := json.Marshal(httpErr{Detail: msg})
	return data
}

func message(msg string) []byte {
	data, _ := json.Marshal(map[string]string{"message": msg})
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v (%s)", rec.Code, wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, e *env, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, e.serve(tt))
		})
	}
}
