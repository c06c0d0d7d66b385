package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/aulavirtual/core/course"
)

func Test_categoryApi(t *testing.T) {
	e := setup(t)
	general := e.seeded.Category

	tests := []httpTest{
		{name: "auth required", path: "/api/categories", wantCode: http.StatusUnauthorized},
		{
			name: "students cannot create", method: http.MethodPost, path: "/api/categories", token: e.studentToken,
			body: []byte(`{"name": "X"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "teachers cannot create", method: http.MethodPost, path: "/api/categories", token: e.teacherToken,
			body: []byte(`{"name": "X"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "name required", method: http.MethodPost, path: "/api/categories", token: e.adminToken,
			body: []byte(`{"name": "  "}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"detail": {"name": "this field is required"}}`),
		},
		{
			name: "unknown parent", method: http.MethodPost, path: "/api/categories", token: e.adminToken,
			body: []byte(`{"name": "X", "parent_id": "lol"}`), wantCode: http.StatusBadRequest, wantData: detail("Categoría no encontrada"),
		},
		{name: "unknown", path: "/api/categories/lol", token: e.studentToken, wantCode: http.StatusNotFound, wantData: detail("Categoría no encontrada")},
		{
			name: "in use", method: http.MethodDelete, path: "/api/categories/" + general.ID, token: e.adminToken,
			wantCode: http.StatusBadRequest, wantData: detail("No se puede eliminar: hay 1 cursos en esta categoría"),
		},
	}
	runHTTPTests(t, e, tests)

	var child course.Category
	t.Run("create child", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPost, path: "/api/categories", token: e.adminToken,
			body: marshallObj(t, course.NewCategory{Name: " Ciencias ", ParentID: general.ID, Position: 1}),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshall(t, rec, &child)
		assert.Equal(t, "Ciencias", child.Name)
		assert.Equal(t, general.ID, child.ParentID)
		assert.True(t, child.Visible)
	})

	t.Run("lists and tree", func(t *testing.T) {
		var roots []course.Category
		unmarshall(t, e.serve(httpTest{path: "/api/categories", token: e.studentToken}), &roots)
		require.Len(t, roots, 1)
		assert.Equal(t, 1, roots[0].CourseCount)

		var children []course.Category
		unmarshall(t, e.serve(httpTest{path: "/api/categories?parent_id=" + general.ID, token: e.studentToken}), &children)
		require.Len(t, children, 1)
		assert.Equal(t, child.ID, children[0].ID)

		var tree []*course.Category
		unmarshall(t, e.serve(httpTest{path: "/api/categories/tree", token: e.studentToken}), &tree)
		require.Len(t, tree, 1)
		require.Len(t, tree[0].Children, 1)
		assert.Equal(t, "Ciencias", tree[0].Children[0].Name)
	})

	t.Run("hidden categories", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPatch, path: "/api/categories/" + child.ID, token: e.adminToken,
			body: []byte(`{"visible": false}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var children []course.Category
		path := "/api/categories?include_hidden=true&parent_id=" + general.ID
		unmarshall(t, e.serve(httpTest{path: path, token: e.studentToken}), &children)
		assert.Empty(t, children)
		unmarshall(t, e.serve(httpTest{path: path, token: e.teacherToken}), &children)
		assert.Len(t, children, 1)

		var tree []*course.Category
		unmarshall(t, e.serve(httpTest{path: "/api/categories/tree", token: e.adminToken}), &tree)
		require.Len(t, tree, 1)
		assert.Empty(t, tree[0].Children)
	})

	tests = []httpTest{
		{
			name: "own parent", method: http.MethodPatch, path: "/api/categories/" + child.ID, token: e.adminToken,
			body: []byte(`{"parent_id": "` + child.ID + `"}`), wantCode: http.StatusBadRequest, wantData: detail("Categoría no encontrada"),
		},
		{
			name: "has subcategories", method: http.MethodDelete, path: "/api/categories/" + general.ID, token: e.adminToken,
			wantCode: http.StatusBadRequest,
		},
		{name: "delete", method: http.MethodDelete, path: "/api/categories/" + child.ID, token: e.adminToken, wantData: message("Categoría eliminada")},
		{name: "gone", path: "/api/categories/" + child.ID, token: e.adminToken, wantCode: http.StatusNotFound},
	}
	runHTTPTests(t, e, tests)
}
