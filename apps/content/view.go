// Package content is the course-content view model: the section/item tree of one course
// plus the UI-only state an authoring screen needs.
package content

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
)

var (
	ErrNotLoaded = errors.New("content not loaded")
	ErrLocked    = errors.New("content is not editable")
)

type (
	// Backend is the part of the API the view needs; *api.Client implements it.
	Backend interface {
		GetCourse(ctx context.Context, id string) (course.Course, error)
		ListSections(ctx context.Context, courseID string) ([]course.Section, error)
		ListItems(ctx context.Context, sectionID string) ([]course.Item, error)
		CourseStats(ctx context.Context, id string) (course.Stats, error)
		GetCategory(ctx context.Context, id string) (course.Category, error)
		UpdateSection(ctx context.Context, courseID, id string, data course.UpdateSection) (course.Section, error)
		SetItemVisibility(ctx context.Context, id string, visible bool) error
		DeleteItem(ctx context.Context, id string) error
		DuplicateItem(ctx context.Context, id, targetSectionID string) (course.Item, error)
		MoveSection(ctx context.Context, courseID, id string, newPosition int) error
		MoveItem(ctx context.Context, id, targetSectionID string, newPosition int) error
	}

	Options struct {
		Backend   Backend
		Session   *auth.Session
		Notifier  core.Notifier
		Confirmer core.Confirmer
		Notices   *core.Notices
		Logger    core.Logger
	}

	// View is driven by a single UI loop and is not safe for concurrent use.
	View struct {
		backend   Backend
		session   *auth.Session
		notifier  core.Notifier
		confirmer core.Confirmer
		notices   *core.Notices
		logger    core.Logger

		// server state, replaced wholesale by every successful Load
		courseID string
		course   *course.Course
		category *course.Category
		sections []sectionNode
		stats    *course.Stats

		// UI-only state
		expanded      map[string]bool
		activeSection string
		preview       bool
		editMode      bool
	}

	sectionNode struct {
		section course.Section
		items   []course.Item
	}
)

func NewView(opts Options) *View {
	v := &View{
		backend:   opts.Backend,
		session:   opts.Session,
		notifier:  opts.Notifier,
		confirmer: opts.Confirmer,
		notices:   opts.Notices,
		logger:    opts.Logger,
		expanded:  make(map[string]bool),
	}
	if v.session == nil {
		v.session = auth.NewSession(auth.NewMemoryStore(), nil)
	}
	if v.notices == nil {
		v.notices = core.NewNotices("es")
	}
	if v.logger == nil {
		v.logger = core.NopLogger
	}
	return v
}

// Load fetches the course and its sections, then its category, every section's items and
// (for teacher-or-above) the stats concurrently. Any failure fails the whole load and keeps the previous state.
func (v *View) Load(ctx context.Context, courseID string) error {
	var (
		crs      course.Course
		sections []course.Section
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		crs, err = v.backend.GetCourse(gctx, courseID)
		return err
	})
	g.Go(func() (err error) {
		sections, err = v.backend.ListSections(gctx, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return v.fail(core.NoticeLoadFailed, errors.Wrap(err, "loading course"))
	}

	nodes := make([]sectionNode, len(sections))
	var (
		stats    *course.Stats
		category *course.Category
	)
	g, gctx = errgroup.WithContext(ctx)
	if crs.CategoryID != "" {
		g.Go(func() error {
			cat, err := v.backend.GetCategory(gctx, crs.CategoryID)
			if err != nil {
				return err
			}
			category = &cat
			return nil
		})
	}
	for i, sec := range sections {
		i, sec := i, sec
		nodes[i].section = sec
		g.Go(func() error {
			items, err := v.backend.ListItems(gctx, sec.ID)
			if err != nil {
				return err
			}
			sort.SliceStable(items, func(a, b int) bool { return items[a].Position < items[b].Position })
			nodes[i].items = items
			return nil
		})
	}
	if v.session.Can(auth.ViewStats) {
		g.Go(func() error {
			s, err := v.backend.CourseStats(gctx, courseID)
			if err != nil {
				return err
			}
			stats = &s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return v.fail(core.NoticeLoadFailed, errors.Wrap(err, "loading course content"))
	}
	sort.SliceStable(nodes, func(a, b int) bool { return nodes[a].section.Position < nodes[b].section.Position })

	v.courseID = courseID
	v.course = &crs
	v.category = category
	v.sections = nodes
	v.stats = stats
	return nil
}

// Reload re-runs Load for the current course.
func (v *View) Reload(ctx context.Context) error {
	if v.course == nil {
		return ErrNotLoaded
	}
	return v.Load(ctx, v.courseID)
}

// ToggleSectionVisibility flips the section's visible flag with one update call, then reloads.
func (v *View) ToggleSectionVisibility(ctx context.Context, sec course.Section) error {
	if err := v.requireEditable(); err != nil {
		return err
	}
	visible := !sec.Visible
	if _, err := v.backend.UpdateSection(ctx, sec.CourseID, sec.ID, course.UpdateSection{Visible: &visible}); err != nil {
		return v.fail(core.NoticeUpdateFailed, errors.Wrap(err, "updating section visibility"))
	}
	return v.Reload(ctx)
}

// ToggleItemVisibility flips the item's visible flag with one update call, then reloads.
func (v *View) ToggleItemVisibility(ctx context.Context, item course.Item) error {
	if err := v.requireEditable(); err != nil {
		return err
	}
	if err := v.backend.SetItemVisibility(ctx, item.ID, !item.Visible); err != nil {
		return v.fail(core.NoticeUpdateFailed, errors.Wrap(err, "updating item visibility"))
	}
	return v.Reload(ctx)
}

// DeleteItem asks for confirmation first; declining issues no call and returns core.ErrCanceled.
func (v *View) DeleteItem(ctx context.Context, item course.Item) error {
	if err := v.requireEditable(); err != nil {
		return err
	}
	if !v.confirm(core.NoticeConfirmDelete, item.Title) {
		return core.ErrCanceled
	}
	if err := v.backend.DeleteItem(ctx, item.ID); err != nil {
		return v.fail(core.NoticeDeleteFailed, errors.Wrap(err, "deleting item"))
	}
	v.notify(core.LevelSuccess, v.notices.T(core.NoticeDeleted))
	return v.Reload(ctx)
}

// DuplicateItem asks for confirmation first; the copy lands in the item's own section.
func (v *View) DuplicateItem(ctx context.Context, item course.Item) error {
	if err := v.requireEditable(); err != nil {
		return err
	}
	if !v.confirm(core.NoticeConfirmDuplicate, item.Title) {
		return core.ErrCanceled
	}
	if _, err := v.backend.DuplicateItem(ctx, item.ID, ""); err != nil {
		return v.fail(core.NoticeDuplicateFailed, errors.Wrap(err, "duplicating item"))
	}
	v.notify(core.LevelSuccess, v.notices.T(core.NoticeDuplicated))
	return v.Reload(ctx)
}

// MoveSection asks the API to reorder; positions stay server-assigned.
func (v *View) MoveSection(ctx context.Context, sec course.Section, newPosition int) error {
	if err := v.requireEditable(); err != nil {
		return err
	}
	if err := v.backend.MoveSection(ctx, sec.CourseID, sec.ID, newPosition); err != nil {
		return v.fail(core.NoticeMoveFailed, errors.Wrap(err, "moving section"))
	}
	return v.Reload(ctx)
}

func (v *View) MoveItem(ctx context.Context, item course.Item, targetSectionID string, newPosition int) error {
	if err := v.requireEditable(); err != nil {
		return err
	}
	if err := v.backend.MoveItem(ctx, item.ID, targetSectionID, newPosition); err != nil {
		return v.fail(core.NoticeMoveFailed, errors.Wrap(err, "moving item"))
	}
	return v.Reload(ctx)
}

// Local UI state

func (v *View) ToggleSectionExpanded(sectionID string) {
	v.expanded[sectionID] = !v.expanded[sectionID]
}

func (v *View) SetActiveSection(sectionID string) {
	v.activeSection = sectionID
}

func (v *View) ActiveSection() string { return v.activeSection }

// SetPreview switches the simulated student view; only roles allowed to preview can turn it on.
func (v *View) SetPreview(on bool) {
	v.preview = on && v.session.Can(auth.Preview)
}

func (v *View) Preview() bool { return v.preview }

// SetEditMode only takes effect while the edit affordance is open; it reports the resulting mode.
func (v *View) SetEditMode(on bool) bool {
	v.editMode = on && v.EditState() == Editable
	return v.editMode
}

// EditMode is re-gated on every read: losing the affordance drops edit mode.
func (v *View) EditMode() bool {
	return v.editMode && v.EditState() == Editable
}

func (v *View) EditState() EditState {
	if v.course == nil {
		return Locked
	}
	return EditAffordance(v.session.Role(), v.preview, v.course.Status)
}

// Accessors

func (v *View) Course() (course.Course, bool) {
	if v.course == nil {
		return course.Course{}, false
	}
	return *v.course, true
}

// Stats is nil unless the viewer is teacher-or-above.
func (v *View) Stats() *course.Stats { return v.stats }

// Warnings lists warned-but-allowed states of the loaded course.
func (v *View) Warnings() []string {
	var warnings []string
	if v.course != nil && v.course.PublishedButHidden() {
		warnings = append(warnings, v.notices.T(core.NoticePublishedHidden))
	}
	if v.course != nil && v.course.IsReadOnly() && v.session.Can(auth.EditContent) {
		warnings = append(warnings, v.notices.T(core.NoticeArchivedReadOnly))
	}
	return warnings
}

// Breadcrumb is the category, course and active section titles, the missing ones skipped.
func (v *View) Breadcrumb() []string {
	if v.course == nil {
		return nil
	}
	var crumbs []string
	if v.category != nil {
		crumbs = append(crumbs, v.category.Name)
	}
	crumbs = append(crumbs, v.course.Fullname)
	for _, node := range v.sections {
		if node.section.ID == v.activeSection {
			crumbs = append(crumbs, node.section.Title)
			break
		}
	}
	return crumbs
}

func (v *View) requireEditable() error {
	if v.course == nil {
		return ErrNotLoaded
	}
	if v.EditState() != Editable {
		return ErrLocked
	}
	return nil
}

func (v *View) confirm(key, title string) bool {
	if v.confirmer == nil {
		return false
	}
	return v.confirmer.Confirm(v.notices.T(key, title))
}

func (v *View) notify(level core.Level, msg string) {
	if v.notifier != nil {
		v.notifier.Notify(level, msg)
	}
}

// fail surfaces err as a localized notice and returns it; prior state is never touched.
func (v *View) fail(key string, err error) error {
	if core.IsUnauthorized(err) {
		v.notify(core.LevelWarning, v.notices.T(core.NoticeSessionExpired))
	} else {
		v.notify(core.LevelError, v.notices.Failure(key, err))
	}
	v.logger.Warn(key, err)
	return err
}
