package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/aulavirtual/apps/content"
	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
	"github.com/trezcool/aulavirtual/core/enrollment"
	"github.com/trezcool/aulavirtual/core/evaluation"
	"github.com/trezcool/aulavirtual/core/user"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
	"github.com/trezcool/aulavirtual/tests"
)

type cliTest struct {
	name       string
	args       []string // without program name
	input      string   // answers to confirmations
	wantErr    error
	wantErrStr string
	wantOut    []string
	notOut     []string
}

type env struct {
	ref *testutil.API
}

func setup(t *testing.T) *env {
	return &env{ref: testutil.StartAPI(t)}
}

// cli returns a command line logged in as usr; a zero usr is logged out.
func (e *env) cli(t *testing.T, usr user.User, input string) (*commandLine, *bytes.Buffer) {
	t.Helper()
	out := new(bytes.Buffer)
	store := auth.NewMemoryStore()
	if usr.ID != "" {
		require.NoError(t, store.Save(e.ref.Token(t, usr)))
	}
	cli := newCommandLine(options{
		BaseURL: e.ref.BaseURL(),
		Timeout: 5 * time.Second,
		Store:   store,
		Locale:  "es",
		In:      strings.NewReader(input),
		Out:     out,
	})
	return cli, out
}

func (e *env) runCLITests(t *testing.T, usr user.User, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"aula"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			cli, out := e.cli(t, usr, tt.input)
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			for _, not := range tt.notOut {
				assert.NotContains(t, out.String(), not)
			}
		})
	}
}

func sectionsOf(t *testing.T, db *inmemdb.DB, courseID string) []course.Section {
	t.Helper()
	secs := db.ListSections(courseID, false)
	require.NotEmpty(t, secs)
	return secs
}

func Test_commandLine_help(t *testing.T) {
	e := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:", "content -id ID"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "flag help", args: []string{"courses", "-h"}, wantErr: errHelp},
		{name: "missing id", args: []string{"course-show"}, wantErr: errHelp, wantOut: []string{"-id"}},
		{name: "blank id", args: []string{"content", "-id", "  "}, wantErr: errHelp},
		{name: "missing position", args: []string{"section-move", "-course", "c", "-id", "s"}, wantErr: errHelp},
		{name: "bad flag value", args: []string{"courses", "-visible", "lol"}, wantErrStr: "invalid value"},
	}
	e.runCLITests(t, e.ref.Seeded.Teacher, tests)
}

func Test_commandLine_login(t *testing.T) {
	e := setup(t)
	teacher := e.ref.Seeded.Teacher
	readPassword := readPasswordFunc
	defer func() { readPasswordFunc = readPassword }()

	var pwd string
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }

	cli, out := e.cli(t, user.User{}, "")

	assert.Equal(t, errHelp, cli.run([]string{"aula", "login"}))
	assert.Equal(t, errHelp, cli.run([]string{"aula", "login", "-email", teacher.Email}), "no password")

	pwd = "nope"
	err := cli.run([]string{"aula", "login", "-email", teacher.Email})
	require.Error(t, err)
	assert.Equal(t, "Credenciales incorrectas", core.ServerMessage(err))
	assert.Contains(t, out.String(), "No se pudo iniciar sesión: Credenciales incorrectas")

	pwd = inmemdb.DevPassword
	require.NoError(t, cli.run([]string{"aula", "login", "-email", teacher.Email}))
	assert.Contains(t, out.String(), "Sesión iniciada como Profesor Demo (teacher)")

	out.Reset()
	require.NoError(t, cli.run([]string{"aula", "whoami"}))
	assert.Contains(t, out.String(), teacher.Email)

	require.NoError(t, cli.run([]string{"aula", "logout"}))
	out.Reset()
	assert.Equal(t, core.ErrUnauthorized, cli.run([]string{"aula", "whoami"}))
	assert.Contains(t, out.String(), "No has iniciado sesión")
}

func Test_commandLine_sessionExpired(t *testing.T) {
	e := setup(t)
	cli, out := e.cli(t, user.User{}, "")
	expired := testutil.UserToken(t, e.ref.Seeded.Teacher, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, cli.client.Session().SetToken(expired))

	err := cli.run([]string{"aula", "courses"})
	assert.True(t, core.IsUnauthorized(err))
	assert.Contains(t, out.String(), "Tu sesión ha expirado. Inicia sesión de nuevo.")
	assert.Empty(t, cli.client.Session().Token())
}

func Test_commandLine_courses(t *testing.T) {
	e := setup(t)
	crs := e.ref.Seeded.Course

	e.runCLITests(t, e.ref.Seeded.Teacher, []cliTest{
		{name: "list", args: []string{"courses"}, wantOut: []string{"PROG-101", "[published]", crs.Fullname}},
		{name: "no results", args: []string{"courses", "-search", "química"}, wantOut: []string{"Sin resultados"}},
		{name: "filter", args: []string{"courses", "-visible", "false"}, wantOut: []string{"Sin resultados"}},
		{
			name: "create", args: []string{"course-create", "-fullname", "Bases de Datos", "-shortname", "BD-1", "-category", e.ref.Seeded.Category.ID, "-sections", "2"},
			wantOut: []string{"Creado", "BD-1", "[draft]"},
		},
		{
			name: "create, invalid shortname", args: []string{"course-create", "-fullname", "X", "-shortname", "B D", "-category", e.ref.Seeded.Category.ID},
			wantErrStr: "shortname", wantOut: []string{"No se pudo crear: shortname: only letters, digits, dashes and underscores are allowed"},
		},
		{name: "show", args: []string{"course-show", "-id", crs.ID}, wantOut: []string{crs.Fullname, "Estudiantes", "topics"}},
		{name: "show unknown", args: []string{"course-show", "-id", "lol"}, wantErrStr: "404", wantOut: []string{"No se pudo cargar el contenido: Curso no encontrado"}},
	})

	e.runCLITests(t, e.ref.Seeded.Student, []cliTest{
		{name: "student show has no stats", args: []string{"course-show", "-id", crs.ID}, wantOut: []string{crs.Fullname}, notOut: []string{"Estudiantes"}},
		{name: "student create", args: []string{"course-create", "-fullname", "X", "-shortname", "X", "-category", e.ref.Seeded.Category.ID}, wantErrStr: "403"},
	})
}

func Test_commandLine_content(t *testing.T) {
	e := setup(t)
	db := e.ref.DB
	crs := e.ref.Seeded.Course
	secs := sectionsOf(t, db, crs.ID)
	forum := db.ListItems(secs[0].ID, false)[1]
	require.Equal(t, "Foro de dudas", forum.Title)

	e.runCLITests(t, e.ref.Seeded.Teacher, []cliTest{
		{
			name: "hide section", args: []string{"section-visibility", "-course", crs.ID, "-id", secs[3].ID},
			wantOut: []string{"Visibilidad actualizada", "Tema 3", "[oculto]"},
		},
		{name: "unknown section", args: []string{"section-visibility", "-course", crs.ID, "-id", "lol"}, wantErr: errNotFound, wantOut: []string{"No encontrado: lol"}},
		{name: "teacher tree", args: []string{"content", "-id", crs.ID}, wantOut: []string{"Bienvenida", "Cuestionario 1", "4 secciones"}, notOut: []string{"Tema 3"}},
		{name: "edit tree", args: []string{"content", "-id", crs.ID, "-edit"}, wantOut: []string{"(edición)", "Tema 3", "#" + forum.ID}},
		{name: "preview", args: []string{"content", "-id", crs.ID, "-preview", "-edit"}, wantOut: []string{"(vista de estudiante)", "No puedes editar este contenido"}, notOut: []string{"Tema 3"}},
		{
			name: "breadcrumb", args: []string{"content", "-id", crs.ID, "-section", secs[1].ID},
			wantOut: []string{"General › " + crs.Fullname + " › Tema 1"},
		},
		{name: "delete declined", args: []string{"item-delete", "-course", crs.ID, "-id", forum.ID}, input: "n\n", wantOut: []string{"¿Eliminar «Foro de dudas»?", "Cancelado"}},
		{name: "duplicate", args: []string{"item-duplicate", "-course", crs.ID, "-id", forum.ID}, input: "s\n", wantOut: []string{"Duplicado", "Foro de dudas (Copia)"}},
		{name: "move section", args: []string{"section-move", "-course", crs.ID, "-id", secs[1].ID, "-position", "2"}, wantOut: []string{"Movido"}},
	})

	_, err := db.GetItem(forum.ID)
	require.NoError(t, err, "declined deletes make no call")
	assert.Equal(t, []string{"Introducción", "Tema 2", "Tema 1", "Tema 3"}, func() []string {
		var titles []string
		for _, sec := range db.ListSections(crs.ID, false) {
			titles = append(titles, sec.Title)
		}
		return titles
	}())

	e.runCLITests(t, e.ref.Seeded.Teacher, []cliTest{
		{name: "delete", args: []string{"item-delete", "-course", crs.ID, "-id", forum.ID}, input: "s\n", wantOut: []string{"Eliminado"}},
		{name: "hide item", args: []string{"item-visibility", "-course", crs.ID, "-id", db.ListItems(secs[0].ID, false)[0].ID}, wantOut: []string{"Visibilidad actualizada"}},
	})
	_, err = db.GetItem(forum.ID)
	assert.Equal(t, inmemdb.ErrNotFound, err)
	assert.False(t, db.ListItems(secs[0].ID, false)[0].Visible)

	e.runCLITests(t, e.ref.Seeded.Student, []cliTest{
		{name: "student cannot edit", args: []string{"item-visibility", "-course", crs.ID, "-id", forum.ID}, wantErr: content.ErrLocked, wantOut: []string{"No puedes editar este contenido"}},
		{name: "student tree", args: []string{"content", "-id", crs.ID}, notOut: []string{"Bienvenida", "Tema 3"}},
	})

	archived := course.StatusArchived
	_, err = db.UpdateCourse(crs.ID, course.UpdateCourse{Status: &archived})
	require.NoError(t, err)
	e.runCLITests(t, e.ref.Seeded.Teacher, []cliTest{
		{
			name: "archived", args: []string{"section-visibility", "-course", crs.ID, "-id", secs[1].ID},
			wantErr: content.ErrLocked, wantOut: []string{"Los cursos archivados no se pueden editar"},
		},
	})
}

func Test_commandLine_enrollments(t *testing.T) {
	e := setup(t)
	crs := e.ref.Seeded.Course
	outsider := testutil.CreateUser(t, e.ref.DB, "outsider@aula.test", auth.RoleStudent)

	e.runCLITests(t, e.ref.Seeded.Teacher, []cliTest{
		{name: "code", args: []string{"enrollment-code", "-course", crs.ID, "-code", "PROG2024"}, wantOut: []string{"Creado", "PROG2024", "student"}},
		{name: "list", args: []string{"enrollments", "-course", crs.ID}, wantOut: []string{"estudiante@aulavirtual.local"}},
		{name: "no teachers", args: []string{"enrollments", "-course", crs.ID, "-role", "teacher"}, wantOut: []string{"Sin resultados"}},
		{name: "enroll twice", args: []string{"enroll", "-course", crs.ID, "-user", e.ref.Seeded.Student.ID}, wantErrStr: "400", wantOut: []string{"El usuario ya está matriculado en este curso"}},
		{name: "enroll editor", args: []string{"enroll", "-course", crs.ID, "-user", e.ref.Seeded.Editor.ID, "-role", "editor"}, wantOut: []string{"Creado", "editor@aulavirtual.local"}},
	})

	e.runCLITests(t, outsider, []cliTest{
		{name: "no courses", args: []string{"my-courses"}, wantOut: []string{"Sin resultados"}},
		{name: "bad code", args: []string{"enroll-code", "-code", "nope"}, wantErrStr: "400", wantOut: []string{"Código de matriculación inválido"}},
		{name: "self enroll", args: []string{"enroll-code", "-code", " prog2024 "}, wantOut: []string{"Matriculación exitosa"}},
		{name: "my courses", args: []string{"my-courses"}, wantOut: []string{"PROG-101", crs.Fullname}},
	})

	enrollments := e.ref.DB.ListEnrollments(crs.ID, enrollment.QueryFilter{Search: outsider.Email})
	require.Len(t, enrollments, 1)
	e.runCLITests(t, e.ref.Seeded.Teacher, []cliTest{
		{name: "unenroll declined", args: []string{"unenroll", "-id", enrollments[0].ID}, wantOut: []string{"¿Dar de baja esta matriculación?", "Cancelado"}},
		{name: "unenroll", args: []string{"unenroll", "-id", enrollments[0].ID}, input: "sí\n", wantOut: []string{"Eliminado"}},
		{name: "unenroll again", args: []string{"unenroll", "-id", enrollments[0].ID}, input: "s\n", wantErrStr: "404", wantOut: []string{"Matriculación no encontrada"}},
	})
}

func Test_commandLine_grades(t *testing.T) {
	e := setup(t)
	db := e.ref.DB
	crs := e.ref.Seeded.Course
	student := e.ref.Seeded.Student
	quiz := db.ListItems(sectionsOf(t, db, crs.ID)[2].ID, false)[0]
	require.Equal(t, course.ItemQuiz, quiz.Type)

	e.runCLITests(t, e.ref.Seeded.Teacher, []cliTest{
		{
			name: "out of range", args: []string{"grade", "-course", crs.ID, "-item", quiz.ID, "-user", student.ID, "-grade", "150"},
			wantErrStr: "grade", wantOut: []string{"grade must be 100 or less"},
		},
		{
			name: "grade", args: []string{"grade", "-course", crs.ID, "-item", quiz.ID, "-user", student.ID, "-grade", "88.5", "-feedback", "Bien"},
			wantOut: []string{"Calificación guardada"},
		},
		{name: "gradebook", args: []string{"gradebook", "-course", crs.ID}, wantOut: []string{"Cuestionario 1", "Estudiante Demo", "88.5"}},
		{name: "question category", args: []string{"question-category-create", "-course", crs.ID, "-name", "Parcial"}, wantOut: []string{"Creado", "Parcial"}},
	})

	e.runCLITests(t, student, []cliTest{
		{name: "my grades", args: []string{"my-grades", "-course", crs.ID}, wantOut: []string{"Cuestionario 1", "88.5", "Bien"}},
		{name: "no gradebook", args: []string{"gradebook", "-course", crs.ID}, wantErrStr: "403"},
	})

	cats := db.ListQuestionCategories(crs.ID)
	require.Len(t, cats, 1)
	e.runCLITests(t, e.ref.Seeded.Editor, []cliTest{
		{
			name: "no correct option", args: []string{"question-create", "-course", crs.ID, "-category", cats[0].ID, "-type", "multiple_choice", "-text", "¿2+2?", "-option", "3", "-option", "5"},
			wantErrStr: "options", wantOut: []string{"options does not match the question type"},
		},
		{
			name: "multiple choice", args: []string{"question-create", "-course", crs.ID, "-category", cats[0].ID, "-type", "multiple_choice", "-text", "¿2+2?", "-option", "3", "-option", "* 4"},
			wantOut: []string{"Creado", "¿2+2?", "multiple_choice"},
		},
		{name: "questions", args: []string{"questions", "-course", crs.ID, "-type", "multiple_choice"}, wantOut: []string{"¿2+2?"}},
		{name: "categories", args: []string{"question-categories", "-course", crs.ID}, wantOut: []string{"Parcial"}},
	})

	questions := db.ListQuestions(crs.ID, evaluation.QuestionFilter{})
	require.Len(t, questions, 1)
	assert.True(t, questions[0].Options[1].Correct)
	assert.Equal(t, "4", questions[0].Options[1].Text)
}

func Test_commandLine_messages(t *testing.T) {
	e := setup(t)
	student := e.ref.Seeded.Student

	e.runCLITests(t, e.ref.Seeded.Teacher, []cliTest{
		{name: "no subject", args: []string{"send", "-to", student.ID, "-body", "Hola"}, wantErrStr: "subject", wantOut: []string{"subject: this field is required"}},
		{name: "send", args: []string{"send", "-to", student.ID, "-subject", "Tarea 1", "-body", "¿Dudas?"}, wantOut: []string{"Creado", "Tarea 1"}},
	})

	threads := e.ref.DB.ListThreads(student.ID)
	require.Len(t, threads, 1)
	e.runCLITests(t, student, []cliTest{
		{name: "unread", args: []string{"unread"}, wantOut: []string{"1"}},
		{name: "threads", args: []string{"threads"}, wantOut: []string{"Tarea 1", "Profesor Demo"}},
		{name: "read", args: []string{"thread", "-id", threads[0].ID}, wantOut: []string{"Profesor Demo", "¿Dudas?"}},
		{name: "read all", args: []string{"unread"}, wantOut: []string{"0"}},
		{name: "reply", args: []string{"reply", "-id", threads[0].ID, "-body", "Ninguna"}, wantOut: []string{"Guardado", "Estudiante Demo", "Ninguna"}},
	})

	e.runCLITests(t, e.ref.Seeded.Editor, []cliTest{
		{name: "empty inbox", args: []string{"threads"}, wantOut: []string{"Sin resultados"}},
		{name: "outsider", args: []string{"thread", "-id", threads[0].ID}, wantErrStr: "404", wantOut: []string{"Hilo no encontrado"}},
	})
}

func Test_commandLine_users(t *testing.T) {
	e := setup(t)

	e.runCLITests(t, e.ref.Seeded.Admin, []cliTest{
		{name: "all", args: []string{"users"}, wantOut: []string{"admin@aulavirtual.local", "profesor@aulavirtual.local"}},
		{name: "by role", args: []string{"users", "-role", "student"}, wantOut: []string{"Estudiante Demo"}, notOut: []string{"admin@aulavirtual.local"}},
		{name: "inactive", args: []string{"users", "-status", "inactive"}, wantOut: []string{"Sin resultados"}},
	})
	e.runCLITests(t, e.ref.Seeded.Student, []cliTest{
		{name: "forbidden", args: []string{"users"}, wantErrStr: "403", wantOut: []string{"No tienes permisos para realizar esta acción"}},
	})
}
