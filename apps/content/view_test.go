package content

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
	"github.com/trezcool/aulavirtual/tests"
)

// stubBackend serves a fixed course and counts calls per endpoint.
type stubBackend struct {
	mu       sync.Mutex
	course   course.Course
	sections []course.Section
	items    map[string][]course.Item
	fail     map[string]error
	calls    map[string]int
}

func newStubBackend(status course.Status) *stubBackend {
	return &stubBackend{
		course: course.Course{ID: "c1", Fullname: "Álgebra", CategoryID: "cat1", Status: status, Visible: true},
		sections: []course.Section{
			{ID: "s1", CourseID: "c1", Title: "Tema 1", Position: 1, Visible: true},
			{ID: "s0", CourseID: "c1", Title: "Introducción", Position: 0, Visible: true},
			{ID: "s2", CourseID: "c1", Title: "Tema 2", Position: 2, Visible: false},
		},
		items: map[string][]course.Item{
			"s0": {{ID: "i1", SectionID: "s0", Title: "Bienvenida", Type: course.ItemLabel, Visible: true}},
			"s1": {
				{ID: "i3", SectionID: "s1", Title: "Tarea", Type: course.ItemAssignment, Position: 1, Visible: false},
				{ID: "i2", SectionID: "s1", Title: "Lectura", Type: course.ItemPage, Position: 0, Visible: true},
			},
			"s2": {{ID: "i4", SectionID: "s2", Title: "Quiz", Type: course.ItemQuiz, Visible: true}},
		},
		fail:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (b *stubBackend) hit(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
	return b.fail[name]
}

func (b *stubBackend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *stubBackend) failOn(name string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[name] = err
}

func (b *stubBackend) GetCourse(context.Context, string) (course.Course, error) {
	if err := b.hit("GetCourse"); err != nil {
		return course.Course{}, err
	}
	return b.course, nil
}

func (b *stubBackend) ListSections(context.Context, string) ([]course.Section, error) {
	if err := b.hit("ListSections"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]course.Section(nil), b.sections...), nil
}

func (b *stubBackend) ListItems(_ context.Context, sectionID string) ([]course.Item, error) {
	if err := b.hit("ListItems"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]course.Item(nil), b.items[sectionID]...), nil
}

func (b *stubBackend) CourseStats(context.Context, string) (course.Stats, error) {
	if err := b.hit("CourseStats"); err != nil {
		return course.Stats{}, err
	}
	return course.Stats{SectionCount: len(b.sections), ItemCount: 4}, nil
}

func (b *stubBackend) GetCategory(_ context.Context, id string) (course.Category, error) {
	if err := b.hit("GetCategory"); err != nil {
		return course.Category{}, err
	}
	return course.Category{ID: id, Name: "Matemáticas"}, nil
}

func (b *stubBackend) UpdateSection(_ context.Context, _, id string, data course.UpdateSection) (course.Section, error) {
	if err := b.hit("UpdateSection"); err != nil {
		return course.Section{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.sections {
		if b.sections[i].ID == id && data.Visible != nil {
			b.sections[i].Visible = *data.Visible
			return b.sections[i], nil
		}
	}
	return course.Section{}, &core.APIError{StatusCode: 404, Message: "Sección no encontrada"}
}

func (b *stubBackend) SetItemVisibility(_ context.Context, id string, visible bool) error {
	if err := b.hit("SetItemVisibility"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for sid, items := range b.items {
		for i := range items {
			if items[i].ID == id {
				b.items[sid][i].Visible = visible
			}
		}
	}
	return nil
}

func (b *stubBackend) DeleteItem(context.Context, string) error {
	return b.hit("DeleteItem")
}

func (b *stubBackend) DuplicateItem(context.Context, string, string) (course.Item, error) {
	return course.Item{}, b.hit("DuplicateItem")
}

func (b *stubBackend) MoveSection(context.Context, string, string, int) error {
	return b.hit("MoveSection")
}

func (b *stubBackend) MoveItem(context.Context, string, string, int) error {
	return b.hit("MoveItem")
}

type notice struct {
	level core.Level
	msg   string
}

type recorder struct {
	notices []notice
	answer  bool
	prompts []string
}

func (r *recorder) Notify(level core.Level, msg string) {
	r.notices = append(r.notices, notice{level, msg})
}

func (r *recorder) Confirm(prompt string) bool {
	r.prompts = append(r.prompts, prompt)
	return r.answer
}

func setup(t *testing.T, role auth.Role, status course.Status) (*View, *stubBackend, *recorder) {
	backend := newStubBackend(status)
	rec := new(recorder)
	v := NewView(Options{
		Backend:   backend,
		Session:   testutil.Session(t, role),
		Notifier:  rec,
		Confirmer: rec,
		Notices:   core.NewNotices("es"),
	})
	return v, backend, rec
}

func load(t *testing.T, v *View) {
	t.Helper()
	require.NoError(t, v.Load(context.Background(), "c1"))
}

func treeIDs(tree []SectionNode) []string {
	ids := make([]string, 0)
	for _, sec := range tree {
		ids = append(ids, sec.ID)
		for _, item := range sec.Items {
			ids = append(ids, sec.ID+"/"+item.ID)
		}
	}
	return ids
}

func TestEditAffordance(t *testing.T) {
	tests := []struct {
		role    auth.Role
		preview bool
		status  course.Status
		want    EditState
	}{
		{auth.RoleAdmin, false, course.StatusDraft, Editable},
		{auth.RoleTeacher, false, course.StatusPublished, Editable},
		{auth.RoleEditor, false, course.StatusSuspended, Editable},
		{auth.RoleStudent, false, course.StatusPublished, Locked},
		{"", false, course.StatusPublished, Locked},
		{auth.RoleTeacher, true, course.StatusPublished, Locked},
		{auth.RoleAdmin, false, course.StatusArchived, Locked},
		{auth.RoleEditor, false, course.StatusArchived, Locked},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("%s/preview=%v/%s", tt.role, tt.preview, tt.status)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, EditAffordance(tt.role, tt.preview, tt.status))
		})
	}
}

func TestView_Load(t *testing.T) {
	tests := []struct {
		name      string
		role      auth.Role
		status    course.Status
		editMode  bool
		wantIDs   []string
		wantStats bool
	}{
		{
			name:    "student sees visible entries only",
			role:    auth.RoleStudent,
			wantIDs: []string{"s0", "s0/i1", "s1", "s1/i2"},
		},
		{
			name:     "student on a draft course, asking for edit mode",
			role:     auth.RoleStudent,
			status:   course.StatusDraft,
			editMode: true,
			wantIDs:  []string{"s0", "s0/i1", "s1", "s1/i2"},
		},
		{
			name:      "teacher outside edit mode",
			role:      auth.RoleTeacher,
			wantIDs:   []string{"s0", "s0/i1", "s1", "s1/i2"},
			wantStats: true,
		},
		{
			name:      "teacher in edit mode sees hidden entries",
			role:      auth.RoleTeacher,
			editMode:  true,
			wantIDs:   []string{"s0", "s0/i1", "s1", "s1/i2", "s1/i3", "s2", "s2/i4"},
			wantStats: true,
		},
		{
			name:     "editor gets no stats",
			role:     auth.RoleEditor,
			editMode: true,
			wantIDs:  []string{"s0", "s0/i1", "s1", "s1/i2", "s1/i3", "s2", "s2/i4"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.status
			if status == "" {
				status = course.StatusPublished
			}
			v, backend, _ := setup(t, tt.role, status)
			load(t, v)
			gotEdit := v.SetEditMode(tt.editMode)

			assert.Equal(t, tt.wantIDs, treeIDs(v.Tree()))
			if !auth.Can(tt.role, auth.EditContent) {
				assert.False(t, gotEdit)
				assert.Equal(t, Locked, v.EditState())
				assert.False(t, v.EditMode())
			}
			assert.Equal(t, len(backend.sections), backend.count("ListItems"))
			if tt.wantStats {
				assert.Equal(t, 1, backend.count("CourseStats"))
				assert.NotNil(t, v.Stats())
			} else {
				assert.Zero(t, backend.count("CourseStats"))
				assert.Nil(t, v.Stats())
			}
		})
	}
}

func TestView_withoutSession(t *testing.T) {
	v := NewView(Options{Backend: newStubBackend(course.StatusPublished)})
	load(t, v)

	assert.Equal(t, []string{"s0", "s0/i1", "s1", "s1/i2"}, treeIDs(v.Tree()))
	assert.Nil(t, v.Stats())
	assert.Equal(t, Locked, v.EditState())
	assert.False(t, v.SetEditMode(true))
}

func TestView_Tree_hiddenFlags(t *testing.T) {
	v, _, _ := setup(t, auth.RoleTeacher, course.StatusPublished)
	load(t, v)
	require.True(t, v.SetEditMode(true))

	for _, sec := range v.Tree() {
		assert.Equal(t, sec.ID == "s2", sec.Hidden, sec.ID)
		for _, item := range sec.Items {
			assert.Equal(t, item.ID == "i3", item.Hidden, item.ID)
		}
	}
}

func TestView_Load_failureKeepsState(t *testing.T) {
	v, backend, rec := setup(t, auth.RoleTeacher, course.StatusPublished)
	load(t, v)
	before := treeIDs(v.Tree())

	backend.failOn("ListItems", &core.APIError{StatusCode: 500, Message: "boom"})
	err := v.Load(context.Background(), "c1")
	require.Error(t, err)

	assert.Equal(t, before, treeIDs(v.Tree()))
	crs, ok := v.Course()
	assert.True(t, ok)
	assert.Equal(t, "c1", crs.ID)
	if assert.Len(t, rec.notices, 1) {
		assert.Equal(t, core.LevelError, rec.notices[0].level)
		assert.Equal(t, "No se pudo cargar el contenido: boom", rec.notices[0].msg)
	}
}

func TestView_Load_unauthorized(t *testing.T) {
	v, backend, rec := setup(t, auth.RoleTeacher, course.StatusPublished)
	backend.failOn("GetCourse", core.ErrUnauthorized)

	err := v.Load(context.Background(), "c1")
	assert.True(t, core.IsUnauthorized(err))
	_, ok := v.Course()
	assert.False(t, ok)
	if assert.Len(t, rec.notices, 1) {
		assert.Equal(t, core.LevelWarning, rec.notices[0].level)
	}
}

func TestView_ToggleItemVisibility(t *testing.T) {
	v, backend, _ := setup(t, auth.RoleTeacher, course.StatusPublished)
	load(t, v)
	loads := backend.count("GetCourse")

	item, ok := v.Item("i2")
	require.True(t, ok)
	require.NoError(t, v.ToggleItemVisibility(context.Background(), item))

	assert.Equal(t, 1, backend.count("SetItemVisibility"))
	assert.Equal(t, loads+1, backend.count("GetCourse"))
	item, _ = v.Item("i2")
	assert.False(t, item.Visible)
}

func TestView_ToggleItemVisibility_failureSkipsReload(t *testing.T) {
	v, backend, rec := setup(t, auth.RoleTeacher, course.StatusPublished)
	load(t, v)
	loads := backend.count("GetCourse")
	backend.failOn("SetItemVisibility", &core.APIError{StatusCode: 400, Message: "Los cursos archivados no se pueden editar"})

	item, _ := v.Item("i2")
	err := v.ToggleItemVisibility(context.Background(), item)
	require.Error(t, err)

	assert.Equal(t, loads, backend.count("GetCourse"))
	item, _ = v.Item("i2")
	assert.True(t, item.Visible)
	if assert.Len(t, rec.notices, 1) {
		assert.Equal(t, "No se pudo actualizar: Los cursos archivados no se pueden editar", rec.notices[0].msg)
	}
}

func TestView_ToggleSectionVisibility(t *testing.T) {
	v, backend, _ := setup(t, auth.RoleEditor, course.StatusDraft)
	load(t, v)
	loads := backend.count("ListSections")

	sec, ok := v.Section("s2")
	require.True(t, ok)
	require.NoError(t, v.ToggleSectionVisibility(context.Background(), sec))

	assert.Equal(t, 1, backend.count("UpdateSection"))
	assert.Equal(t, loads+1, backend.count("ListSections"))
	assert.Contains(t, treeIDs(v.Tree()), "s2")
}

func TestView_archivedIsLocked(t *testing.T) {
	v, backend, _ := setup(t, auth.RoleAdmin, course.StatusArchived)
	load(t, v)

	assert.Equal(t, Locked, v.EditState())
	assert.False(t, v.SetEditMode(true))
	assert.NotContains(t, treeIDs(v.Tree()), "s2")

	item, _ := v.Item("i2")
	assert.Equal(t, ErrLocked, v.ToggleItemVisibility(context.Background(), item))
	assert.Equal(t, ErrLocked, v.DeleteItem(context.Background(), item))
	assert.Zero(t, backend.count("SetItemVisibility"))
	assert.Zero(t, backend.count("DeleteItem"))
	assert.Contains(t, v.Warnings(), "Los cursos archivados no se pueden editar")
}

func TestView_studentIsLocked(t *testing.T) {
	v, backend, _ := setup(t, auth.RoleStudent, course.StatusPublished)
	load(t, v)

	assert.Equal(t, Locked, v.EditState())
	v.SetPreview(true)
	assert.False(t, v.Preview())

	sec, _ := v.Section("s1")
	assert.Equal(t, ErrLocked, v.ToggleSectionVisibility(context.Background(), sec))
	assert.Zero(t, backend.count("UpdateSection"))
	assert.Empty(t, v.Warnings())
}

func TestView_previewDropsEditMode(t *testing.T) {
	v, _, _ := setup(t, auth.RoleTeacher, course.StatusPublished)
	load(t, v)
	require.True(t, v.SetEditMode(true))

	v.SetPreview(true)
	assert.True(t, v.Preview())
	assert.Equal(t, Locked, v.EditState())
	assert.False(t, v.EditMode())
	assert.NotContains(t, treeIDs(v.Tree()), "s2")

	v.SetPreview(false)
	assert.Equal(t, Editable, v.EditState())
}

func TestView_DeleteItem(t *testing.T) {
	tests := []struct {
		name      string
		answer    bool
		wantErr   error
		wantCalls int
	}{
		{name: "declined", answer: false, wantErr: core.ErrCanceled},
		{name: "confirmed", answer: true, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, backend, rec := setup(t, auth.RoleTeacher, course.StatusPublished)
			load(t, v)
			loads := backend.count("GetCourse")
			rec.answer = tt.answer

			item, _ := v.Item("i2")
			err := v.DeleteItem(context.Background(), item)
			assert.Equal(t, tt.wantErr, errors.Cause(err))
			assert.Equal(t, tt.wantCalls, backend.count("DeleteItem"))
			assert.Equal(t, loads+tt.wantCalls, backend.count("GetCourse"))
			assert.Equal(t, []string{"¿Eliminar «Lectura»? Esta acción no se puede deshacer."}, rec.prompts)
		})
	}
}

func TestView_DuplicateItem(t *testing.T) {
	v, backend, rec := setup(t, auth.RoleTeacher, course.StatusPublished)
	load(t, v)
	item, _ := v.Item("i1")

	assert.Equal(t, core.ErrCanceled, v.DuplicateItem(context.Background(), item))
	assert.Zero(t, backend.count("DuplicateItem"))

	rec.answer = true
	require.NoError(t, v.DuplicateItem(context.Background(), item))
	assert.Equal(t, 1, backend.count("DuplicateItem"))
	if assert.NotEmpty(t, rec.notices) {
		assert.Equal(t, notice{core.LevelSuccess, "Duplicado"}, rec.notices[len(rec.notices)-1])
	}
}

func TestView_Move(t *testing.T) {
	v, backend, rec := setup(t, auth.RoleTeacher, course.StatusPublished)
	load(t, v)
	loads := backend.count("GetCourse")

	sec, _ := v.Section("s1")
	require.NoError(t, v.MoveSection(context.Background(), sec, 2))
	item, _ := v.Item("i2")
	require.NoError(t, v.MoveItem(context.Background(), item, "s2", 0))
	assert.Equal(t, loads+2, backend.count("GetCourse"))

	backend.failOn("MoveItem", &core.APIError{StatusCode: 404, Message: "Sección destino no encontrada"})
	assert.Error(t, v.MoveItem(context.Background(), item, "nope", 0))
	assert.Equal(t, loads+2, backend.count("GetCourse"))
	if assert.NotEmpty(t, rec.notices) {
		assert.Equal(t, "No se pudo mover: Sección destino no encontrada", rec.notices[len(rec.notices)-1].msg)
	}
}

func TestView_localState(t *testing.T) {
	v, backend, _ := setup(t, auth.RoleStudent, course.StatusPublished)
	assert.Equal(t, ErrNotLoaded, v.Reload(context.Background()))
	assert.Nil(t, v.Breadcrumb())
	load(t, v)

	v.ToggleSectionExpanded("s1")
	v.SetActiveSection("s1")
	for _, sec := range v.Tree() {
		assert.Equal(t, sec.ID == "s1", sec.Expanded, sec.ID)
		assert.Equal(t, sec.ID == "s1", sec.Active, sec.ID)
	}
	v.ToggleSectionExpanded("s1")
	for _, sec := range v.Tree() {
		assert.False(t, sec.Expanded, sec.ID)
	}
	assert.Equal(t, []string{"Matemáticas", "Álgebra", "Tema 1"}, v.Breadcrumb())

	// local state changes never hit the API
	assert.Equal(t, 1, backend.count("GetCourse"))
}

func TestView_Warnings_publishedButHidden(t *testing.T) {
	v, backend, _ := setup(t, auth.RoleTeacher, course.StatusPublished)
	backend.course.Visible = false
	load(t, v)

	assert.Equal(t, []string{"El curso está publicado pero oculto: los estudiantes no lo verán"}, v.Warnings())
	assert.Equal(t, Editable, v.EditState())
}
