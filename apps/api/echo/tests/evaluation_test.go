package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/aulavirtual/core/course"
	"github.com/trezcool/aulavirtual/core/evaluation"
)

func gradableItems(t *testing.T, e *env) (assignment, quiz course.Item) {
	t.Helper()
	for _, sec := range e.db.ListSections(e.seeded.Course.ID, false) {
		for _, it := range e.db.ListItems(sec.ID, false) {
			switch it.Type {
			case course.ItemAssignment:
				assignment = it
			case course.ItemQuiz:
				quiz = it
			}
		}
	}
	require.NotEmpty(t, assignment.ID)
	require.NotEmpty(t, quiz.ID)
	return assignment, quiz
}

func gradePath(courseID, itemID, userID, grade, feedback string) string {
	q := url.Values{}
	q.Set("course_id", courseID)
	q.Set("item_id", itemID)
	q.Set("user_id", userID)
	q.Set("grade", grade)
	if feedback != "" {
		q.Set("feedback", feedback)
	}
	return "/api/grades?" + q.Encode()
}

func Test_evaluationApi_grades(t *testing.T) {
	e := setup(t)
	crs := e.seeded.Course
	student := e.seeded.Student
	assignment, quiz := gradableItems(t, e)

	tests := []httpTest{
		{
			name: "students cannot grade", method: http.MethodPost, token: e.studentToken,
			path: gradePath(crs.ID, assignment.ID, student.ID, "90", ""), wantCode: http.StatusForbidden,
		},
		{
			name: "grade not a number", method: http.MethodPost, token: e.teacherToken,
			path:     gradePath(crs.ID, assignment.ID, student.ID, "lol", ""),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"detail": {"grade": "must be a number"}}`),
		},
		{
			name: "grade out of range", method: http.MethodPost, token: e.teacherToken,
			path: gradePath(crs.ID, assignment.ID, student.ID, "101", ""), wantCode: http.StatusBadRequest,
		},
		{
			name: "item of another course", method: http.MethodPost, token: e.teacherToken,
			path:     gradePath("lol", assignment.ID, student.ID, "90", ""),
			wantCode: http.StatusNotFound, wantData: detail("Item no encontrado"),
		},
		{
			name: "unknown user", method: http.MethodPost, token: e.teacherToken,
			path:     gradePath(crs.ID, assignment.ID, "lol", "90", ""),
			wantCode: http.StatusNotFound, wantData: detail("Usuario no encontrado"),
		},
		{name: "gradebook forbidden for students", path: "/api/courses/" + crs.ID + "/gradebook", token: e.studentToken, wantCode: http.StatusForbidden},
		{name: "gradebook of unknown course", path: "/api/courses/lol/gradebook", token: e.teacherToken, wantCode: http.StatusNotFound},
	}
	runHTTPTests(t, e, tests)

	var gradeID string
	t.Run("set grade", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPost, token: e.teacherToken,
			path: gradePath(crs.ID, assignment.ID, student.ID, "70", "Bien"),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res evaluation.SetGradeResult
		unmarshall(t, rec, &res)
		assert.Equal(t, "Calificación guardada", res.Message)
		gradeID = res.GradeID

		// upsert keeps the id
		rec = e.serve(httpTest{
			method: http.MethodPost, token: e.teacherToken,
			path: gradePath(crs.ID, assignment.ID, student.ID, "80.5", "Muy bien"),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshall(t, rec, &res)
		assert.Equal(t, gradeID, res.GradeID)

		rec = e.serve(httpTest{method: http.MethodPost, token: e.teacherToken, path: gradePath(crs.ID, quiz.ID, student.ID, "60", "")})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("gradebook", func(t *testing.T) {
		rec := e.serve(httpTest{path: "/api/courses/" + crs.ID + "/gradebook", token: e.teacherToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var gb evaluation.Gradebook
		unmarshall(t, rec, &gb)

		assert.Equal(t, crs.Fullname, gb.Course.Fullname)
		assert.Equal(t, "0-100", gb.Settings.Scale)
		require.Len(t, gb.Items, 2)
		require.Len(t, gb.Students, 1)

		row := gb.Students[0]
		assert.Equal(t, student.Email, row.User.Email)
		cell := row.Grades[assignment.ID]
		require.NotNil(t, cell.Grade)
		assert.Equal(t, 80.5, *cell.Grade)
		require.NotNil(t, cell.Feedback)
		assert.Equal(t, "Muy bien", *cell.Feedback)
		require.NotNil(t, row.Average)
		assert.Equal(t, 70.25, *row.Average)
	})

	t.Run("my grades", func(t *testing.T) {
		rec := e.serve(httpTest{path: "/api/courses/" + crs.ID + "/my-grades", token: e.studentToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var grades []evaluation.MyGrade
		unmarshall(t, rec, &grades)
		require.Len(t, grades, 2)
		assert.Equal(t, quiz.ID, grades[0].ItemID)
		require.NotNil(t, grades[1].Item)
		assert.Equal(t, assignment.Title, grades[1].Item.Title)

		unmarshall(t, e.serve(httpTest{path: "/api/courses/" + crs.ID + "/my-grades", token: e.teacherToken}), &grades)
		assert.Empty(t, grades)
	})
}

func Test_evaluationApi_questions(t *testing.T) {
	e := setup(t)
	crs := e.seeded.Course
	base := "/api/courses/" + crs.ID

	tests := []httpTest{
		{name: "students forbidden", path: base + "/questions", token: e.studentToken, wantCode: http.StatusForbidden},
		{
			name: "category name required", method: http.MethodPost, path: base + "/question-categories", token: e.editorToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"detail": {"name": "this field is required"}}`),
		},
		{
			name: "category of unknown course", method: http.MethodPost, path: "/api/courses/lol/question-categories?name=X",
			token: e.editorToken, wantCode: http.StatusNotFound,
		},
	}
	runHTTPTests(t, e, tests)

	var qc evaluation.QuestionCategory
	t.Run("create category", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPost, path: base + "/question-categories?name=Variables&description=Tipos+b%C3%A1sicos",
			token: e.editorToken,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshall(t, rec, &qc)
		assert.Equal(t, "Variables", qc.Name)
		assert.Equal(t, "Tipos básicos", qc.Description)

		var cats []evaluation.QuestionCategory
		unmarshall(t, e.serve(httpTest{path: base + "/question-categories", token: e.teacherToken}), &cats)
		assert.Len(t, cats, 1)
	})

	newQuestion := func(nq evaluation.NewQuestion) []byte {
		if nq.CategoryID == "" {
			nq.CategoryID = qc.ID
		}
		return marshallObj(t, nq)
	}
	tests = []httpTest{
		{
			name: "unknown category", method: http.MethodPost, path: base + "/questions", token: e.editorToken,
			body:     newQuestion(evaluation.NewQuestion{CategoryID: "lol", Type: evaluation.Essay, Text: "Explica"}),
			wantCode: http.StatusBadRequest, wantData: detail("Categoría no encontrada"),
		},
		{
			name: "multiple choice without a correct option", method: http.MethodPost, path: base + "/questions", token: e.editorToken,
			body: newQuestion(evaluation.NewQuestion{
				Type: evaluation.MultipleChoice, Text: "¿Cuál?",
				Options: []evaluation.Option{{Text: "a"}, {Text: "b"}},
			}),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"detail": {"options": "options does not match the question type"}}`),
		},
		{
			name: "true false needs an answer", method: http.MethodPost, path: base + "/questions", token: e.editorToken,
			body:     newQuestion(evaluation.NewQuestion{Type: evaluation.TrueFalse, Text: "¿Sí?", CorrectAnswer: "maybe"}),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"detail": {"correct_answer": "correct_answer does not match the question type"}}`),
		},
	}
	runHTTPTests(t, e, tests)

	var tf evaluation.Question
	t.Run("create", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPost, path: base + "/questions", token: e.editorToken,
			body: newQuestion(evaluation.NewQuestion{Type: evaluation.TrueFalse, Text: " Go es compilado ", CorrectAnswer: "TRUE"}),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshall(t, rec, &tf)
		assert.Equal(t, "Go es compilado", tf.Text)
		assert.Equal(t, 10.0, tf.Points)
		require.NotNil(t, tf.CorrectAnswer)
		assert.Equal(t, "true", *tf.CorrectAnswer)
		assert.Equal(t, e.seeded.Editor.ID, tf.CreatedBy)

		rec = e.serve(httpTest{
			method: http.MethodPost, path: base + "/questions", token: e.teacherToken,
			body: newQuestion(evaluation.NewQuestion{
				Type: evaluation.MultipleChoice, Text: "¿Cuál es un entero?", Points: 5,
				Options: []evaluation.Option{{Text: "int", Correct: true}, {Text: "string"}},
			}),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("list and filter", func(t *testing.T) {
		var qs []evaluation.Question
		unmarshall(t, e.serve(httpTest{path: base + "/questions", token: e.teacherToken}), &qs)
		assert.Len(t, qs, 2)

		unmarshall(t, e.serve(httpTest{path: base + "/questions?question_type=true_false", token: e.teacherToken}), &qs)
		require.Len(t, qs, 1)
		assert.Equal(t, tf.ID, qs[0].ID)

		unmarshall(t, e.serve(httpTest{path: base + "/questions?category_id=lol", token: e.teacherToken}), &qs)
		assert.Empty(t, qs)
	})

	t.Run("update", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPatch, path: "/api/questions/" + tf.ID, token: e.editorToken,
			body: []byte(`{"points": 2, "feedback": "Sí, lo es"}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var q evaluation.Question
		unmarshall(t, rec, &q)
		assert.Equal(t, 2.0, q.Points)
		require.NotNil(t, q.Feedback)
		assert.Equal(t, "Sí, lo es", *q.Feedback)
		assert.Equal(t, tf.Text, q.Text)
	})

	tests = []httpTest{
		{
			name: "update with bad points", method: http.MethodPatch, path: "/api/questions/" + tf.ID, token: e.editorToken,
			body: []byte(`{"points": -1}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "update unknown", method: http.MethodPatch, path: "/api/questions/lol", token: e.editorToken,
			body: []byte(`{}`), wantCode: http.StatusNotFound, wantData: detail("Pregunta no encontrada"),
		},
		{name: "editors cannot delete", method: http.MethodDelete, path: "/api/questions/" + tf.ID, token: e.editorToken, wantCode: http.StatusForbidden},
		{name: "delete", method: http.MethodDelete, path: "/api/questions/" + tf.ID, token: e.teacherToken, wantData: message("Pregunta eliminada")},
		{
			name: "delete twice", method: http.MethodDelete, path: "/api/questions/" + tf.ID, token: e.teacherToken,
			wantCode: http.StatusNotFound, wantData: detail("Pregunta no encontrada"),
		},
	}
	runHTTPTests(t, e, tests)
}
