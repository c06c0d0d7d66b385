package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/aulavirtual/core/course"
)

func sectionTitles(secs []course.Section) []string {
	titles := make([]string, 0, len(secs))
	for _, s := range secs {
		titles = append(titles, s.Title)
	}
	return titles
}

func Test_contentApi_sections(t *testing.T) {
	e := setup(t)
	crs := e.seeded.Course
	secs := e.db.ListSections(crs.ID, false)
	require.Len(t, secs, 4)
	base := "/api/courses/" + crs.ID + "/sections"

	hidden := false
	_, err := e.db.UpdateSection(secs[3].ID, course.UpdateSection{Visible: &hidden})
	require.NoError(t, err)

	t.Run("students only see visible sections", func(t *testing.T) {
		rec := e.serve(httpTest{path: base, token: e.studentToken})
		require.Equal(t, http.StatusOK, rec.Code)
		var got []course.Section
		unmarshall(t, rec, &got)
		assert.Len(t, got, 3)

		rec = e.serve(httpTest{path: base, token: e.teacherToken})
		unmarshall(t, rec, &got)
		assert.Len(t, got, 4)
	})

	tests := []httpTest{
		{name: "auth required", path: base, wantCode: http.StatusUnauthorized},
		{name: "unknown course", path: "/api/courses/lol/sections", token: e.teacherToken, wantCode: http.StatusNotFound},
		{
			name: "hidden section for students", path: base + "/" + secs[3].ID, token: e.studentToken,
			wantCode: http.StatusNotFound, wantData: detail("Sección no encontrada"),
		},
		{name: "hidden section for editors", path: base + "/" + secs[3].ID, token: e.editorToken},
		{
			name: "students cannot create", method: http.MethodPost, path: base, token: e.studentToken,
			body: []byte(`{"title": "Nope"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "title required", method: http.MethodPost, path: base, token: e.editorToken,
			body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"detail": {"title": "this field is required"}}`),
		},
		{
			name: "bad position", method: http.MethodPost, path: base + "/" + secs[1].ID + "/move?new_position=lol",
			token: e.teacherToken, wantCode: http.StatusBadRequest,
		},
		{
			name: "same position", method: http.MethodPost, path: base + "/" + secs[1].ID + "/move?new_position=1",
			token: e.teacherToken, wantData: message("Sin cambios"),
		},
		{
			name: "editors cannot delete", method: http.MethodDelete, path: base + "/" + secs[3].ID,
			token: e.editorToken, wantCode: http.StatusForbidden,
		},
		{
			name: "section of another course", path: "/api/courses/" + crs.ID + "x/sections/" + secs[1].ID,
			token: e.teacherToken, wantCode: http.StatusNotFound,
		},
	}
	runHTTPTests(t, e, tests)

	t.Run("create appends", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPost, path: base, token: e.editorToken,
			body: []byte(`{"title": "  Tema 4 ", "summary": "Extra"}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var sec course.Section
		unmarshall(t, rec, &sec)
		assert.Equal(t, "Tema 4", sec.Title)
		assert.Equal(t, 4, sec.Position)
		assert.Equal(t, crs.ID, sec.CourseID)
	})

	t.Run("move", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPost, path: base + "/" + secs[1].ID + "/move?new_position=3", token: e.teacherToken,
			wantData: message("Sección movida de 1 a 3"),
		}
		checkCodeAndData(t, tt, e.serve(tt))
		assert.Equal(t,
			[]string{"Introducción", "Tema 2", "Tema 3", "Tema 1", "Tema 4"},
			sectionTitles(e.db.ListSections(crs.ID, false)),
		)
	})

	t.Run("delete needs force when not empty", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodDelete, path: base + "/" + secs[1].ID, token: e.teacherToken,
			wantCode: http.StatusBadRequest, wantData: detail("La sección tiene 2 elementos. Usa force=true para confirmar."),
		}
		checkCodeAndData(t, tt, e.serve(tt))

		tt = httpTest{
			method: http.MethodDelete, path: base + "/" + secs[1].ID + "?force=true", token: e.teacherToken,
			wantData: message("Sección eliminada"),
		}
		checkCodeAndData(t, tt, e.serve(tt))
		assert.Empty(t, e.db.ListItems(secs[1].ID, false))

		tt = httpTest{
			method: http.MethodDelete, path: base + "/" + secs[3].ID, token: e.teacherToken,
			wantData: message("Sección eliminada"),
		}
		checkCodeAndData(t, tt, e.serve(tt))
		assert.Len(t, e.db.ListSections(crs.ID, false), 3)
	})
}

func Test_contentApi_items(t *testing.T) {
	e := setup(t)
	crs := e.seeded.Course
	secs := e.db.ListSections(crs.ID, false)
	intro := e.db.ListItems(secs[0].ID, false)
	require.Len(t, intro, 2)
	welcome, forum := intro[0], intro[1]

	t.Run("create", func(t *testing.T) {
		body := marshallObj(t, course.NewItem{Title: "Lectura", Type: course.ItemURL, Content: map[string]interface{}{"url": "https://go.dev"}})
		rec := e.serve(httpTest{method: http.MethodPost, path: "/api/sections/" + secs[3].ID + "/items", token: e.editorToken, body: body})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var item course.Item
		unmarshall(t, rec, &item)
		assert.Equal(t, course.ItemURL, item.Type)
		assert.Equal(t, crs.ID, item.CourseID)
		assert.True(t, item.Visible)
		assert.Equal(t, "https://go.dev", item.Content["url"])
	})

	tests := []httpTest{
		{
			name: "invalid type", method: http.MethodPost, path: "/api/sections/" + secs[3].ID + "/items", token: e.editorToken,
			body: []byte(`{"title": "X", "item_type": "lol"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown section", method: http.MethodPost, path: "/api/sections/lol/items", token: e.editorToken,
			body: []byte(`{"title": "X", "item_type": "page"}`), wantCode: http.StatusNotFound, wantData: detail("Sección no encontrada"),
		},
		{name: "retrieve", path: "/api/items/" + welcome.ID, token: e.studentToken, wantData: marshallObj(t, welcome)},
		{name: "unknown item", path: "/api/items/lol", token: e.teacherToken, wantCode: http.StatusNotFound, wantData: detail("Item no encontrado")},
		{
			name: "visibility required", method: http.MethodPatch, path: "/api/items/" + forum.ID + "/visibility",
			token: e.teacherToken, wantCode: http.StatusBadRequest,
		},
		{
			name: "students cannot hide", method: http.MethodPatch, path: "/api/items/" + forum.ID + "/visibility?visible=false",
			token: e.studentToken, wantCode: http.StatusForbidden,
		},
		{
			name: "hide", method: http.MethodPatch, path: "/api/items/" + forum.ID + "/visibility?visible=false",
			token: e.teacherToken, wantData: message("Item oculto"),
		},
		{
			name: "hidden for students", path: "/api/items/" + forum.ID, token: e.studentToken,
			wantCode: http.StatusNotFound, wantData: detail("Item no encontrado"),
		},
		{
			name: "duplicate to unknown section", method: http.MethodPost, path: "/api/items/" + welcome.ID + "/duplicate?target_section_id=lol",
			token: e.editorToken, wantCode: http.StatusNotFound, wantData: detail("Sección destino no encontrada"),
		},
	}
	runHTTPTests(t, e, tests)

	t.Run("students list visible items", func(t *testing.T) {
		var got []course.Item
		unmarshall(t, e.serve(httpTest{path: "/api/sections/" + secs[0].ID + "/items", token: e.studentToken}), &got)
		assert.Len(t, got, 1)
		unmarshall(t, e.serve(httpTest{path: "/api/sections/" + secs[0].ID + "/items", token: e.teacherToken}), &got)
		assert.Len(t, got, 2)
	})

	t.Run("show again", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPatch, path: "/api/items/" + forum.ID + "/visibility?visible=true",
			token: e.teacherToken, wantData: message("Item visible"),
		}
		checkCodeAndData(t, tt, e.serve(tt))
	})

	t.Run("update", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPatch, path: "/api/items/" + welcome.ID, token: e.editorToken,
			body: []byte(`{"title": "Hola"}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var item course.Item
		unmarshall(t, rec, &item)
		assert.Equal(t, "Hola", item.Title)
		assert.Equal(t, welcome.Position, item.Position)
	})

	t.Run("duplicate", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPost, path: "/api/items/" + forum.ID + "/duplicate?target_section_id=" + secs[2].ID,
			token: e.editorToken,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var dup course.Item
		unmarshall(t, rec, &dup)
		assert.NotEqual(t, forum.ID, dup.ID)
		assert.Equal(t, "Foro de dudas (Copia)", dup.Title)
		assert.Equal(t, secs[2].ID, dup.SectionID)
		assert.Len(t, e.db.ListItems(secs[2].ID, false), 2)
	})

	t.Run("move to another section", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPost, path: "/api/items/" + welcome.ID + "/move?target_section_id=" + secs[1].ID + "&new_position=0",
			token: e.teacherToken,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		left := e.db.ListItems(secs[0].ID, false)
		require.Len(t, left, 1)
		assert.Equal(t, forum.ID, left[0].ID)
		assert.Equal(t, 0, left[0].Position)

		moved := e.db.ListItems(secs[1].ID, false)
		require.Len(t, moved, 3)
		assert.Equal(t, welcome.ID, moved[0].ID)
		for i, it := range moved {
			assert.Equal(t, i, it.Position)
		}
	})

	t.Run("delete", func(t *testing.T) {
		tt := httpTest{method: http.MethodDelete, path: "/api/items/" + forum.ID, token: e.editorToken, wantData: message("Item eliminado")}
		checkCodeAndData(t, tt, e.serve(tt))
		_, err := e.db.GetItem(forum.ID)
		assert.Error(t, err)
	})

	t.Run("archived course is read only", func(t *testing.T) {
		archived := course.StatusArchived
		_, err := e.db.UpdateCourse(crs.ID, course.UpdateCourse{Status: &archived})
		require.NoError(t, err)

		tt := httpTest{
			method: http.MethodPatch, path: "/api/items/" + welcome.ID + "/visibility?visible=false",
			token: e.teacherToken, wantCode: http.StatusBadRequest,
		}
		checkCodeAndData(t, tt, e.serve(tt))
	})
}
