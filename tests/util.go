package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	echoapi "github.com/trezcool/aulavirtual/apps/api/echo"
	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
	"github.com/trezcool/aulavirtual/core/user"
	emailsvc "github.com/trezcool/aulavirtual/services/email"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

// SecretKey signs every token minted by tests.
const SecretKey = "test-secret"

func init() {
	inmemdb.PasswordHashCost = bcrypt.MinCost
}

// API is a reference API running on an httptest server.
type API struct {
	Server *httptest.Server
	DB     *inmemdb.DB
	Mailer *emailsvc.ConsoleService
	Seeded inmemdb.Seeded
}

// BaseURL is what api.Options.BaseURL expects.
func (a *API) BaseURL() string { return a.Server.URL + "/api" }

// Token logs usr in without going through /auth/login.
func (a *API) Token(t *testing.T, usr user.User) string {
	t.Helper()
	return UserToken(t, usr, time.Hour)
}

// NewTestConfig returns the config used by test services.
func NewTestConfig() *core.Config {
	return &core.Config{Env: "TEST", TestMode: true, AppName: "Aula Virtual Test", Locale: "es"}
}

// NewServer returns the reference API handler over db, without listening.
func NewServer(db *inmemdb.DB, mailer core.EmailService) echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		DisableReqLogs:  true,
		TestMode:        true,
		AppName:         "Aula Virtual Test",
		SecretKey:       SecretKey,
		FrontendBaseURL: "http://aula.test",
		DB:              db,
		Mailer:          mailer,
	})
}

// StartAPI starts a seeded reference API; it is closed when the test ends.
func StartAPI(t *testing.T) *API {
	t.Helper()
	db := inmemdb.Open(nil)
	seeded, err := inmemdb.Seed(db)
	if err != nil {
		t.Fatalf("StartAPI() failed to seed: %v", err)
	}
	mailer := emailsvc.NewConsoleService(NewTestConfig(), core.NopLogger)
	srv := httptest.NewServer(NewServer(db, mailer))
	t.Cleanup(srv.Close)
	return &API{Server: srv, DB: db, Mailer: mailer, Seeded: seeded}
}

// CreateUser stores a user with the given role; the password is inmemdb.DevPassword.
func CreateUser(t *testing.T, db *inmemdb.DB, email string, role auth.Role) user.User {
	t.Helper()
	usr, err := db.CreateUser(user.NewUser{
		Email:     email,
		FirstName: "Test",
		LastName:  string(role),
		Password:  inmemdb.DevPassword,
		Role:      role,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateCourse stores a course with numSections topic sections (plus section 0).
func CreateCourse(t *testing.T, db *inmemdb.DB, shortname, categoryID string, numSections int, createdBy string) course.Course {
	t.Helper()
	crs, err := db.CreateCourse(course.NewCourse{
		Fullname:    "Course " + shortname,
		Shortname:   shortname,
		CategoryID:  categoryID,
		NumSections: numSections,
	}, createdBy)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

// CreateItem appends an item to sectionID.
func CreateItem(t *testing.T, db *inmemdb.DB, sectionID, title string, typ course.ItemType) course.Item {
	t.Helper()
	item, err := db.CreateItem(sectionID, course.NewItem{Title: title, Type: typ})
	if err != nil {
		t.Fatalf("CreateItem() failed: %v", err)
	}
	return item
}

// UserToken mints an HS256 bearer token for usr. A zero ttl yields a token without expiry.
func UserToken(t *testing.T, usr user.User, ttl time.Duration, now ...time.Time) string {
	t.Helper()
	issued := time.Now()
	if len(now) > 0 {
		issued = now[0]
	}
	claims := auth.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:  usr.ID,
			IssuedAt: issued.Unix(),
		},
		Email: usr.Email,
		Role:  string(usr.Role),
	}
	if ttl != 0 {
		claims.ExpiresAt = issued.Add(ttl).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(SecretKey))
	if err != nil {
		t.Fatalf("UserToken() failed: %v", err)
	}
	return token
}

// Token mints a bearer token for a new user with the given role.
func Token(t *testing.T, role auth.Role, ttl time.Duration, now ...time.Time) string {
	t.Helper()
	usr := user.User{ID: uuid.New().String(), Email: string(role) + "@aula.test", Role: role}
	return UserToken(t, usr, ttl, now...)
}

// Session returns an in-memory session logged in with the given role ("" for anonymous).
func Session(t *testing.T, role auth.Role) *auth.Session {
	t.Helper()
	sess := auth.NewSession(auth.NewMemoryStore(), nil)
	if role != "" {
		if err := sess.SetToken(Token(t, role, time.Hour)); err != nil {
			t.Fatalf("Session() failed: %v", err)
		}
	}
	return sess
}
