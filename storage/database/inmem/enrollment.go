package inmemdb

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/enrollment"
)

var (
	ErrUnknownUser = errors.New("unknown user")
	ErrInvalidCode = errors.New("invalid enrollment code")
)

func (db *DB) withUser(e *enrollment.Enrollment) enrollment.Enrollment {
	cp := *e
	if rec, ok := db.users[e.UserID]; ok {
		cp.User = &enrollment.UserSummary{FirstName: rec.FirstName, LastName: rec.LastName, Email: rec.Email}
	}
	return cp
}

func (db *DB) ListEnrollments(courseID string, filter enrollment.QueryFilter) []enrollment.Enrollment {
	db.mu.RLock()
	defer db.mu.RUnlock()

	search := strings.ToLower(core.CleanString(filter.Search))
	enrollments := make([]enrollment.Enrollment, 0)
	for _, e := range db.enrollments {
		if e.CourseID != courseID {
			continue
		}
		if filter.Role != "" && e.Role != filter.Role {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		enr := db.withUser(e)
		if search != "" {
			if enr.User == nil {
				continue
			}
			haystack := strings.ToLower(enr.User.FirstName + " " + enr.User.LastName + " " + enr.User.Email)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		enrollments = append(enrollments, enr)
	}
	sort.SliceStable(enrollments, func(i, j int) bool { return enrollments[i].EnrolledAt < enrollments[j].EnrolledAt })
	start, end := paginate(len(enrollments), filter.Skip, filter.Limit)
	return enrollments[start:end]
}

func (db *DB) enroll(courseID, userID string, role enrollment.Role, enrolledBy string) (*enrollment.Enrollment, error) {
	if _, ok := db.users[userID]; !ok {
		return nil, ErrUnknownUser
	}
	for _, e := range db.enrollments {
		if e.CourseID == courseID && e.UserID == userID {
			return nil, ErrDuplicate
		}
	}
	enr := &enrollment.Enrollment{
		ID:         newID(),
		CourseID:   courseID,
		UserID:     userID,
		Role:       role,
		Status:     enrollment.StatusActive,
		EnrolledAt: db.now(),
		EnrolledBy: enrolledBy,
	}
	db.enrollments[enr.ID] = enr
	return enr, nil
}

func (db *DB) Enroll(courseID string, data enrollment.NewEnrollment, enrolledBy string) (enrollment.Enrollment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.courses[courseID]; !ok {
		return enrollment.Enrollment{}, ErrNotFound
	}
	enr, err := db.enroll(courseID, data.UserID, data.Role, enrolledBy)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	return db.withUser(enr), nil
}

// BulkEnroll enrolls every known, not yet enrolled user of userIDs; the others are skipped.
func (db *DB) BulkEnroll(courseID string, userIDs []string, role enrollment.Role, enrolledBy string) (enrolled, skipped int, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.courses[courseID]; !ok {
		return 0, 0, ErrNotFound
	}
	for _, uid := range userIDs {
		if _, err := db.enroll(courseID, uid, role, enrolledBy); err != nil {
			skipped++
			continue
		}
		enrolled++
	}
	return enrolled, skipped, nil
}

func (db *DB) GetEnrollment(id string) (enrollment.Enrollment, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if e, ok := db.enrollments[id]; ok {
		return db.withUser(e), nil
	}
	return enrollment.Enrollment{}, ErrNotFound
}

func (db *DB) UpdateEnrollment(id string, data enrollment.UpdateEnrollment) (enrollment.Enrollment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.enrollments[id]
	if !ok {
		return enrollment.Enrollment{}, ErrNotFound
	}
	if data.Role != nil {
		e.Role = *data.Role
	}
	if data.Status != nil {
		e.Status = *data.Status
		if e.Status == enrollment.StatusEnded && e.CompletedAt == "" {
			e.CompletedAt = db.now()
		}
	}
	return db.withUser(e), nil
}

func (db *DB) DeleteEnrollment(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.enrollments[id]; !ok {
		return ErrNotFound
	}
	delete(db.enrollments, id)
	return nil
}

// Enrollment methods

func (db *DB) ListMethods(courseID string) []enrollment.Method {
	db.mu.RLock()
	defer db.mu.RUnlock()

	methods := make([]enrollment.Method, 0)
	for _, m := range db.methods {
		if m.CourseID == courseID {
			methods = append(methods, *m)
		}
	}
	sort.SliceStable(methods, func(i, j int) bool { return methods[i].Code < methods[j].Code })
	return methods
}

// CreateMethod stores an enabled method; an empty code gets a random 8 characters one.
func (db *DB) CreateMethod(courseID, methodType, code string, role enrollment.Role) (enrollment.Method, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.courses[courseID]; !ok {
		return enrollment.Method{}, ErrNotFound
	}
	if code == "" {
		code = strings.ToUpper(uuid.New().String()[:8])
	}
	if role == "" {
		role = enrollment.RoleStudent
	}
	m := &enrollment.Method{
		ID:       newID(),
		CourseID: courseID,
		Type:     methodType,
		Code:     code,
		Role:     role,
		Enabled:  true,
	}
	db.methods[m.ID] = m
	return *m, nil
}

// EnrollWithCode enrolls userID through an enabled code method.
func (db *DB) EnrollWithCode(code, userID string) (enrollment.Enrollment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	code = strings.TrimSpace(code)
	for _, m := range db.methods {
		if !m.Enabled || m.Type != enrollment.MethodCode || !strings.EqualFold(m.Code, code) {
			continue
		}
		enr, err := db.enroll(m.CourseID, userID, m.Role, userID)
		if err != nil {
			return enrollment.Enrollment{}, err
		}
		return *enr, nil
	}
	return enrollment.Enrollment{}, ErrInvalidCode
}

// MyEnrollments returns the active enrollments of userID with their course embedded.
func (db *DB) MyEnrollments(userID string) []enrollment.Enrollment {
	db.mu.RLock()
	defer db.mu.RUnlock()

	enrollments := make([]enrollment.Enrollment, 0)
	for _, e := range db.enrollments {
		if e.UserID != userID || e.Status != enrollment.StatusActive {
			continue
		}
		enr := *e
		if crs, ok := db.courses[e.CourseID]; ok {
			enr.Course = &enrollment.CourseSummary{
				Fullname:  crs.Fullname,
				Shortname: crs.Shortname,
				Status:    string(crs.Status),
			}
		}
		enrollments = append(enrollments, enr)
	}
	sort.SliceStable(enrollments, func(i, j int) bool { return enrollments[i].EnrolledAt > enrollments[j].EnrolledAt })
	return enrollments
}
