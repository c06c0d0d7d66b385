// Package inmemdb is the in-memory storage of the reference API.
package inmemdb

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/course"
	"github.com/trezcool/aulavirtual/core/enrollment"
	"github.com/trezcool/aulavirtual/core/evaluation"
	"github.com/trezcool/aulavirtual/core/message"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PasswordHashCost is lowered by tests.
var PasswordHashCost = bcrypt.DefaultCost

// DB holds every table behind a single lock; all reads return copies.
type DB struct {
	mu    sync.RWMutex
	clock core.Clock
	last  time.Time // last timestamp handed out

	users       map[string]*userRecord
	resetTokens map[string]*resetToken
	categories  map[string]*course.Category
	courses     map[string]*course.Course
	sections    map[string]*course.Section
	items       map[string]*course.Item
	enrollments map[string]*enrollment.Enrollment
	methods     map[string]*enrollment.Method
	grades      map[string]*gradeRecord
	qcategories map[string]*evaluation.QuestionCategory
	questions   map[string]*evaluation.Question
	threads     map[string]*message.Thread
	messages    map[string][]*message.Message // by thread id
}

func Open(clock core.Clock) *DB {
	if clock == nil {
		clock = core.SystemClock
	}
	return &DB{
		clock:       clock,
		users:       make(map[string]*userRecord),
		resetTokens: make(map[string]*resetToken),
		categories:  make(map[string]*course.Category),
		courses:     make(map[string]*course.Course),
		sections:    make(map[string]*course.Section),
		items:       make(map[string]*course.Item),
		enrollments: make(map[string]*enrollment.Enrollment),
		methods:     make(map[string]*enrollment.Method),
		grades:      make(map[string]*gradeRecord),
		qcategories: make(map[string]*evaluation.QuestionCategory),
		questions:   make(map[string]*evaluation.Question),
		threads:     make(map[string]*message.Thread),
		messages:    make(map[string][]*message.Message),
	}
}

// timeLayout is fixed width, so timestamps sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// now returns strictly increasing timestamps; callers hold the write lock.
func (db *DB) now() string {
	t := db.clock.Now().UTC()
	if !t.After(db.last) {
		t = db.last.Add(time.Nanosecond)
	}
	db.last = t
	return t.Format(timeLayout)
}

func newID() string {
	return uuid.New().String()
}

func paginate(n, skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if skip > n {
		skip = n
	}
	end := n
	if limit > 0 && skip+limit < n {
		end = skip + limit
	}
	return skip, end
}
