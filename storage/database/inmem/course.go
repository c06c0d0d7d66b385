package inmemdb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
	"github.com/trezcool/aulavirtual/core/enrollment"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownSection  = errors.New("unknown section")
)

// CategoryInUseError is returned when deleting a category that still holds courses or subcategories.
type CategoryInUseError struct {
	Courses       int
	Subcategories int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category in use: %d courses, %d subcategories", e.Courses, e.Subcategories)
}

// Viewer is who a query runs for.
type Viewer struct {
	ID   string
	Role auth.Role
}

const (
	introTitle   = "Introducción"
	introSummary = "Sección de bienvenida y recursos generales del curso."
	copySuffix   = " (Copia)"
)

func copyCourse(c *course.Course) course.Course {
	cp := *c
	cp.Tags = append(make([]string, 0, len(c.Tags)), c.Tags...)
	return cp
}

func copyCategory(c *course.Category) course.Category {
	cp := *c
	cp.Children = nil
	return cp
}

// Categories

func (db *DB) ListCategories(parentID string, includeHidden bool) []course.Category {
	db.mu.RLock()
	defer db.mu.RUnlock()

	cats := make([]course.Category, 0)
	for _, c := range db.categories {
		if c.ParentID != parentID {
			continue
		}
		if !c.Visible && !includeHidden {
			continue
		}
		cats = append(cats, copyCategory(c))
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Position < cats[j].Position })
	return cats
}

// CategoryTree returns the visible categories nested under their parents.
func (db *DB) CategoryTree() []*course.Category {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var build func(parentID string) []*course.Category
	build = func(parentID string) []*course.Category {
		nodes := make([]*course.Category, 0)
		for _, c := range db.categories {
			if c.ParentID != parentID || !c.Visible {
				continue
			}
			node := copyCategory(c)
			node.Children = build(c.ID)
			nodes = append(nodes, &node)
		}
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Position < nodes[j].Position })
		return nodes
	}
	return build("")
}

func (db *DB) GetCategory(id string) (course.Category, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if c, ok := db.categories[id]; ok {
		return copyCategory(c), nil
	}
	return course.Category{}, ErrNotFound
}

func (db *DB) CreateCategory(data course.NewCategory) (course.Category, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if data.ParentID != "" {
		if _, ok := db.categories[data.ParentID]; !ok {
			return course.Category{}, ErrUnknownCategory
		}
	}
	cat := &course.Category{
		ID:          newID(),
		Name:        data.Name,
		Description: data.Description,
		ParentID:    data.ParentID,
		Position:    data.Position,
		Visible:     true,
	}
	db.categories[cat.ID] = cat
	return copyCategory(cat), nil
}

func (db *DB) UpdateCategory(id string, data course.UpdateCategory) (course.Category, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cat, ok := db.categories[id]
	if !ok {
		return course.Category{}, ErrNotFound
	}
	if data.ParentID != nil && *data.ParentID != "" {
		if _, ok := db.categories[*data.ParentID]; !ok || *data.ParentID == id {
			return course.Category{}, ErrUnknownCategory
		}
	}
	if data.Name != nil {
		cat.Name = core.CleanString(*data.Name)
	}
	if data.Description != nil {
		cat.Description = *data.Description
	}
	if data.ParentID != nil {
		cat.ParentID = *data.ParentID
	}
	if data.Position != nil {
		cat.Position = *data.Position
	}
	if data.Visible != nil {
		cat.Visible = *data.Visible
	}
	return copyCategory(cat), nil
}

func (db *DB) DeleteCategory(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.categories[id]; !ok {
		return ErrNotFound
	}
	var inUse CategoryInUseError
	for _, c := range db.courses {
		if c.CategoryID == id {
			inUse.Courses++
		}
	}
	for _, c := range db.categories {
		if c.ParentID == id {
			inUse.Subcategories++
		}
	}
	if inUse.Courses > 0 || inUse.Subcategories > 0 {
		return &inUse
	}
	delete(db.categories, id)
	return nil
}

// Courses

func (db *DB) findCourseByShortname(shortname string) *course.Course {
	for _, c := range db.courses {
		if strings.EqualFold(c.Shortname, shortname) {
			return c
		}
	}
	return nil
}

func (db *DB) isEnrolled(courseID, userID string, roles ...enrollment.Role) bool {
	for _, e := range db.enrollments {
		if e.CourseID != courseID || e.UserID != userID || e.Status != enrollment.StatusActive {
			continue
		}
		if len(roles) == 0 {
			return true
		}
		for _, r := range roles {
			if e.Role == r {
				return true
			}
		}
	}
	return false
}

// IsEnrolled reports an active enrollment of userID in courseID, optionally restricted to roles.
func (db *DB) IsEnrolled(courseID, userID string, roles ...enrollment.Role) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.isEnrolled(courseID, userID, roles...)
}

// QueryCourses lists courses by last update. Students only get published & visible courses
// or the ones they are enrolled in; they cannot filter on status or visibility.
func (db *DB) QueryCourses(filter course.QueryFilter, viewer Viewer) []course.Course {
	db.mu.RLock()
	defer db.mu.RUnlock()

	student := viewer.Role == auth.RoleStudent
	search := strings.ToLower(core.CleanString(filter.Search))
	courses := make([]course.Course, 0)
	for _, c := range db.courses {
		if student {
			if !(c.Status == course.StatusPublished && c.Visible) && !db.isEnrolled(c.ID, viewer.ID) {
				continue
			}
		} else {
			if filter.Status != "" && c.Status != filter.Status {
				continue
			}
			if filter.Visible != nil && c.Visible != *filter.Visible {
				continue
			}
		}
		if filter.CategoryID != "" && c.CategoryID != filter.CategoryID {
			continue
		}
		if filter.CreatedBy != "" && c.CreatedBy != filter.CreatedBy {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Fullname), search) &&
			!strings.Contains(strings.ToLower(c.Shortname), search) {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(c.Tags, filter.Tags) {
			continue
		}
		courses = append(courses, copyCourse(c))
	}
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].UpdatedAt > courses[j].UpdatedAt })

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	start, end := paginate(len(courses), filter.Skip, limit)
	return courses[start:end]
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if strings.EqualFold(t, strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

// CreateCourse creates a draft course with its intro section and num_sections topic/week sections.
func (db *DB) CreateCourse(data course.NewCourse, createdBy string) (course.Course, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.findCourseByShortname(data.Shortname) != nil {
		return course.Course{}, ErrDuplicate
	}
	cat, ok := db.categories[data.CategoryID]
	if !ok {
		return course.Course{}, ErrUnknownCategory
	}

	now := db.now()
	crs := &course.Course{
		ID:          newID(),
		Fullname:    data.Fullname,
		Shortname:   data.Shortname,
		CategoryID:  data.CategoryID,
		Summary:     data.Summary,
		Status:      course.StatusDraft,
		Visible:     true,
		Format:      data.Format,
		NumSections: data.NumSections,
		Language:    data.Language,
		Tags:        append(make([]string, 0, len(data.Tags)), data.Tags...),
		StartDate:   data.StartDate,
		EndDate:     data.EndDate,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if crs.Format == "" {
		crs.Format = course.FormatTopics
	}
	if crs.Language == "" {
		crs.Language = "es"
	}
	db.courses[crs.ID] = crs
	cat.CourseCount++

	db.insertSection(crs.ID, introTitle, introSummary, 0)
	label := "Semana"
	if crs.Format == course.FormatTopics {
		label = "Tema"
	}
	for i := 1; i <= crs.NumSections; i++ {
		db.insertSection(crs.ID, fmt.Sprintf("%s %d", label, i), "", i)
	}
	return copyCourse(crs), nil
}

func (db *DB) GetCourse(id string) (course.Course, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if c, ok := db.courses[id]; ok {
		return copyCourse(c), nil
	}
	return course.Course{}, ErrNotFound
}

func (db *DB) UpdateCourse(id string, data course.UpdateCourse) (course.Course, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	crs, ok := db.courses[id]
	if !ok {
		return course.Course{}, ErrNotFound
	}
	if data.Shortname != nil {
		if other := db.findCourseByShortname(*data.Shortname); other != nil && other.ID != id {
			return course.Course{}, ErrDuplicate
		}
	}
	if data.CategoryID != nil && *data.CategoryID != crs.CategoryID {
		newCat, ok := db.categories[*data.CategoryID]
		if !ok {
			return course.Course{}, ErrUnknownCategory
		}
		if oldCat, ok := db.categories[crs.CategoryID]; ok {
			oldCat.CourseCount--
		}
		newCat.CourseCount++
		crs.CategoryID = newCat.ID
	}

	// only save set fields
	if data.Fullname != nil {
		crs.Fullname = core.CleanString(*data.Fullname)
	}
	if data.Shortname != nil {
		crs.Shortname = core.CleanString(*data.Shortname)
	}
	if data.Summary != nil {
		crs.Summary = *data.Summary
	}
	if data.Format != nil {
		crs.Format = *data.Format
	}
	if data.NumSections != nil {
		crs.NumSections = *data.NumSections
	}
	if data.Language != nil {
		crs.Language = *data.Language
	}
	if data.Tags != nil {
		crs.Tags = append(make([]string, 0, len(data.Tags)), data.Tags...)
	}
	if data.StartDate != nil {
		crs.StartDate = *data.StartDate
	}
	if data.EndDate != nil {
		crs.EndDate = *data.EndDate
	}
	if data.Visible != nil {
		crs.Visible = *data.Visible
	}
	if data.Status != nil {
		crs.Status = *data.Status
	}
	crs.UpdatedAt = db.now()
	return copyCourse(crs), nil
}

// DeleteCourse removes the course and everything hanging from it.
func (db *DB) DeleteCourse(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.courses[id]; !ok {
		return ErrNotFound
	}
	db.deleteCourse(id)
	return nil
}

func (db *DB) deleteCourse(id string) {
	crs := db.courses[id]
	if cat, ok := db.categories[crs.CategoryID]; ok {
		cat.CourseCount--
	}
	for sid, s := range db.sections {
		if s.CourseID == id {
			delete(db.sections, sid)
		}
	}
	for iid, it := range db.items {
		if it.CourseID == id {
			delete(db.items, iid)
		}
	}
	for eid, e := range db.enrollments {
		if e.CourseID == id {
			delete(db.enrollments, eid)
		}
	}
	for mid, m := range db.methods {
		if m.CourseID == id {
			delete(db.methods, mid)
		}
	}
	for gid, g := range db.grades {
		if g.CourseID == id {
			delete(db.grades, gid)
		}
	}
	for qid, q := range db.questions {
		if q.CourseID == id {
			delete(db.questions, qid)
		}
	}
	for cid, qc := range db.qcategories {
		if qc.CourseID == id {
			delete(db.qcategories, cid)
		}
	}
	delete(db.courses, id)
}

// DuplicateCourse copies the course with its sections and items into a new draft.
func (db *DB) DuplicateCourse(id, shortname, fullname, createdBy string) (course.Course, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	src, ok := db.courses[id]
	if !ok {
		return course.Course{}, ErrNotFound
	}
	if db.findCourseByShortname(shortname) != nil {
		return course.Course{}, ErrDuplicate
	}
	if fullname == "" {
		fullname = src.Fullname + copySuffix
	}

	now := db.now()
	crs := copyCourse(src)
	crs.ID = newID()
	crs.Shortname = shortname
	crs.Fullname = fullname
	crs.Status = course.StatusDraft
	crs.CreatedBy = createdBy
	crs.CreatedAt = now
	crs.UpdatedAt = now
	db.courses[crs.ID] = &crs
	if cat, ok := db.categories[crs.CategoryID]; ok {
		cat.CourseCount++
	}

	for _, s := range db.sections {
		if s.CourseID != id {
			continue
		}
		sec := *s
		sec.ID = newID()
		sec.CourseID = crs.ID
		sec.CreatedAt, sec.UpdatedAt = now, now
		db.sections[sec.ID] = &sec
		for _, it := range db.items {
			if it.SectionID != s.ID {
				continue
			}
			item := copyItem(it)
			item.ID = newID()
			item.SectionID = sec.ID
			item.CourseID = crs.ID
			item.CreatedAt, item.UpdatedAt = now, now
			db.items[item.ID] = &item
		}
	}
	return copyCourse(&crs), nil
}

// BulkCourses applies action to the existing courses of ids and returns how many were affected.
func (db *DB) BulkCourses(action course.BulkAction, ids []string) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int
	now := db.now()
	for _, id := range ids {
		crs, ok := db.courses[id]
		if !ok {
			continue
		}
		n++
		switch action {
		case course.BulkDelete:
			db.deleteCourse(id)
			continue
		case course.BulkHide:
			crs.Visible = false
		case course.BulkShow:
			crs.Visible = true
		case course.BulkSuspend:
			crs.Status = course.StatusSuspended
		case course.BulkArchive:
			crs.Status = course.StatusArchived
		}
		crs.UpdatedAt = now
	}
	return n
}

func (db *DB) CourseStats(id string) (course.Stats, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if _, ok := db.courses[id]; !ok {
		return course.Stats{}, ErrNotFound
	}
	var stats course.Stats
	for _, s := range db.sections {
		if s.CourseID == id {
			stats.SectionCount++
		}
	}
	for _, it := range db.items {
		if it.CourseID == id {
			stats.ItemCount++
		}
	}
	for _, e := range db.enrollments {
		if e.CourseID != id || e.Status != enrollment.StatusActive {
			continue
		}
		stats.EnrollmentCount++
		if e.Role == enrollment.RoleStudent {
			stats.StudentCount++
		}
	}
	return stats, nil
}
