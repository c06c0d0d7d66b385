package inmemdb

import (
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
	"github.com/trezcool/aulavirtual/core/enrollment"
	"github.com/trezcool/aulavirtual/core/user"
)

// DevPassword is the password of every seeded account.
const DevPassword = "aula1234"

// Seeded holds the seeded rows.
type Seeded struct {
	Admin, Teacher, Editor, Student user.User
	Category                        course.Category
	Course                          course.Course
	EnrollmentCode                  string
}

// Seed fills an empty DB with demo accounts and one published course, for local development.
func Seed(db *DB) (Seeded, error) {
	var (
		s   Seeded
		err error
	)
	accounts := []struct {
		dst          *user.User
		email, first string
		role         auth.Role
	}{
		{&s.Admin, "admin@aulavirtual.local", "Admin", auth.RoleAdmin},
		{&s.Teacher, "profesor@aulavirtual.local", "Profesor", auth.RoleTeacher},
		{&s.Editor, "editor@aulavirtual.local", "Editor", auth.RoleEditor},
		{&s.Student, "estudiante@aulavirtual.local", "Estudiante", auth.RoleStudent},
	}
	for _, acc := range accounts {
		*acc.dst, err = db.CreateUser(user.NewUser{
			Email:     acc.email,
			FirstName: acc.first,
			LastName:  "Demo",
			Password:  DevPassword,
			Role:      acc.role,
		})
		if err != nil {
			return s, errors.Wrapf(err, "seeding %s", acc.email)
		}
	}

	if s.Category, err = db.CreateCategory(course.NewCategory{Name: "General", Description: "Cursos de ejemplo"}); err != nil {
		return s, errors.Wrap(err, "seeding category")
	}
	s.Course, err = db.CreateCourse(course.NewCourse{
		Fullname:    "Introducción a la Programación",
		Shortname:   "PROG-101",
		CategoryID:  s.Category.ID,
		Summary:     "Curso de ejemplo",
		Format:      course.FormatTopics,
		NumSections: 3,
		Tags:        []string{"programacion"},
	}, s.Teacher.ID)
	if err != nil {
		return s, errors.Wrap(err, "seeding course")
	}
	published := course.StatusPublished
	if s.Course, err = db.UpdateCourse(s.Course.ID, course.UpdateCourse{Status: &published}); err != nil {
		return s, errors.Wrap(err, "publishing course")
	}

	sections := db.ListSections(s.Course.ID, false)
	items := []struct {
		section int
		data    course.NewItem
	}{
		{0, course.NewItem{Title: "Bienvenida", Type: course.ItemPage, Content: map[string]interface{}{"body": "¡Bienvenidos al curso!"}}},
		{0, course.NewItem{Title: "Foro de dudas", Type: course.ItemForum}},
		{1, course.NewItem{Title: "Variables y tipos", Type: course.ItemPage}},
		{1, course.NewItem{Title: "Tarea 1", Type: course.ItemAssignment}},
		{2, course.NewItem{Title: "Cuestionario 1", Type: course.ItemQuiz}},
	}
	for _, it := range items {
		if it.section >= len(sections) {
			continue
		}
		if _, err = db.CreateItem(sections[it.section].ID, it.data); err != nil {
			return s, errors.Wrapf(err, "seeding item %q", it.data.Title)
		}
	}

	if _, err = db.Enroll(s.Course.ID, enrollment.NewEnrollment{UserID: s.Student.ID, Role: enrollment.RoleStudent}, s.Admin.ID); err != nil {
		return s, errors.Wrap(err, "seeding enrollment")
	}
	method, err := db.CreateMethod(s.Course.ID, enrollment.MethodCode, "BIENVENIDA", enrollment.RoleStudent)
	if err != nil {
		return s, errors.Wrap(err, "seeding enrollment code")
	}
	s.EnrollmentCode = method.Code
	return s, nil
}
