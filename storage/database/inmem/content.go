package inmemdb

import (
	"fmt"
	"sort"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/course"
)

// SectionNotEmptyError is returned when deleting a section holding items without force.
type SectionNotEmptyError struct {
	Items int
}

func (e *SectionNotEmptyError) Error() string {
	return fmt.Sprintf("section has %d items", e.Items)
}

func copyItem(it *course.Item) course.Item {
	cp := *it
	if it.Content != nil {
		cp.Content = make(map[string]interface{}, len(it.Content))
		for k, v := range it.Content {
			cp.Content[k] = v
		}
	}
	return cp
}

// Sections

func (db *DB) insertSection(courseID, title, summary string, position int) *course.Section {
	now := db.now()
	sec := &course.Section{
		ID:        newID(),
		CourseID:  courseID,
		Title:     title,
		Summary:   summary,
		Position:  position,
		Visible:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.sections[sec.ID] = sec
	return sec
}

func (db *DB) courseSections(courseID string) []*course.Section {
	secs := make([]*course.Section, 0)
	for _, s := range db.sections {
		if s.CourseID == courseID {
			secs = append(secs, s)
		}
	}
	sort.SliceStable(secs, func(i, j int) bool { return secs[i].Position < secs[j].Position })
	return secs
}

func (db *DB) ListSections(courseID string, visibleOnly bool) []course.Section {
	db.mu.RLock()
	defer db.mu.RUnlock()

	secs := make([]course.Section, 0)
	for _, s := range db.courseSections(courseID) {
		if visibleOnly && !s.Visible {
			continue
		}
		secs = append(secs, *s)
	}
	return secs
}

func (db *DB) GetSection(id string) (course.Section, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if s, ok := db.sections[id]; ok {
		return *s, nil
	}
	return course.Section{}, ErrNotFound
}

// CreateSection appends the section after the last one unless a position is given.
func (db *DB) CreateSection(courseID string, data course.NewSection) (course.Section, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.courses[courseID]; !ok {
		return course.Section{}, ErrNotFound
	}
	pos := data.Position
	if pos <= 0 {
		pos = 0
		for _, s := range db.courseSections(courseID) {
			if s.Position >= pos {
				pos = s.Position + 1
			}
		}
	}
	return *db.insertSection(courseID, data.Title, data.Summary, pos), nil
}

func (db *DB) UpdateSection(id string, data course.UpdateSection) (course.Section, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	sec, ok := db.sections[id]
	if !ok {
		return course.Section{}, ErrNotFound
	}
	if data.Title != nil {
		sec.Title = core.CleanString(*data.Title)
	}
	if data.Summary != nil {
		sec.Summary = *data.Summary
	}
	if data.Position != nil {
		sec.Position = *data.Position
	}
	if data.Visible != nil {
		sec.Visible = *data.Visible
	}
	sec.UpdatedAt = db.now()
	return *sec, nil
}

// DeleteSection refuses to drop a section holding items unless force is set.
func (db *DB) DeleteSection(id string, force bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.sections[id]; !ok {
		return ErrNotFound
	}
	items := db.sectionItems(id)
	if len(items) > 0 && !force {
		return &SectionNotEmptyError{Items: len(items)}
	}
	for _, it := range items {
		delete(db.items, it.ID)
	}
	delete(db.sections, id)
	return nil
}

// MoveSection moves the section to newPosition, shifting its siblings, and returns the old position.
func (db *DB) MoveSection(id string, newPosition int) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	sec, ok := db.sections[id]
	if !ok {
		return 0, ErrNotFound
	}
	oldPosition := sec.Position
	now := db.now()
	for _, s := range db.courseSections(sec.CourseID) {
		if s.ID == id {
			continue
		}
		if shifted, ok := shift(s.Position, oldPosition, newPosition); ok {
			s.Position = shifted
			s.UpdatedAt = now
		}
	}
	sec.Position = newPosition
	sec.UpdatedAt = now
	return oldPosition, nil
}

// shift returns the new position of a sibling at pos when an entry moves from oldPos to newPos.
func shift(pos, oldPos, newPos int) (int, bool) {
	switch {
	case newPos > oldPos && pos > oldPos && pos <= newPos:
		return pos - 1, true
	case newPos < oldPos && pos >= newPos && pos < oldPos:
		return pos + 1, true
	}
	return pos, false
}

// Items

func (db *DB) sectionItems(sectionID string) []*course.Item {
	items := make([]*course.Item, 0)
	for _, it := range db.items {
		if it.SectionID == sectionID {
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items
}

func (db *DB) nextItemPosition(sectionID string) int {
	pos := 0
	for _, it := range db.sectionItems(sectionID) {
		if it.Position >= pos {
			pos = it.Position + 1
		}
	}
	return pos
}

func (db *DB) ListItems(sectionID string, visibleOnly bool) []course.Item {
	db.mu.RLock()
	defer db.mu.RUnlock()

	items := make([]course.Item, 0)
	for _, it := range db.sectionItems(sectionID) {
		if visibleOnly && !it.Visible {
			continue
		}
		items = append(items, copyItem(it))
	}
	return items
}

func (db *DB) GetItem(id string) (course.Item, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if it, ok := db.items[id]; ok {
		return copyItem(it), nil
	}
	return course.Item{}, ErrNotFound
}

func (db *DB) CreateItem(sectionID string, data course.NewItem) (course.Item, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	sec, ok := db.sections[sectionID]
	if !ok {
		return course.Item{}, ErrNotFound
	}
	pos := data.Position
	if pos <= 0 {
		pos = db.nextItemPosition(sectionID)
	}
	now := db.now()
	item := &course.Item{
		ID:          newID(),
		SectionID:   sectionID,
		CourseID:    sec.CourseID,
		Type:        data.Type,
		Title:       data.Title,
		Description: data.Description,
		Position:    pos,
		Visible:     true,
		Content:     data.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db.items[item.ID] = item
	return copyItem(item), nil
}

func (db *DB) UpdateItem(id string, data course.UpdateItem) (course.Item, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	item, ok := db.items[id]
	if !ok {
		return course.Item{}, ErrNotFound
	}
	if data.Title != nil {
		item.Title = core.CleanString(*data.Title)
	}
	if data.Description != nil {
		item.Description = *data.Description
	}
	if data.Position != nil {
		item.Position = *data.Position
	}
	if data.Visible != nil {
		item.Visible = *data.Visible
	}
	if data.Content != nil {
		item.Content = data.Content
	}
	item.UpdatedAt = db.now()
	return copyItem(item), nil
}

func (db *DB) SetItemVisibility(id string, visible bool) error {
	_, err := db.UpdateItem(id, course.UpdateItem{Visible: &visible})
	return err
}

func (db *DB) DeleteItem(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.items[id]; !ok {
		return ErrNotFound
	}
	delete(db.items, id)
	for gid, g := range db.grades {
		if g.ItemID == id {
			delete(db.grades, gid)
		}
	}
	return nil
}

// DuplicateItem copies the item at the end of targetSectionID (its own section when empty).
func (db *DB) DuplicateItem(id, targetSectionID string) (course.Item, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	src, ok := db.items[id]
	if !ok {
		return course.Item{}, ErrNotFound
	}
	if targetSectionID == "" {
		targetSectionID = src.SectionID
	}
	target, ok := db.sections[targetSectionID]
	if !ok {
		return course.Item{}, ErrUnknownSection
	}

	now := db.now()
	item := copyItem(src)
	item.ID = newID()
	item.SectionID = target.ID
	item.CourseID = target.CourseID
	item.Title = src.Title + copySuffix
	item.Position = db.nextItemPosition(target.ID)
	item.CreatedAt, item.UpdatedAt = now, now
	db.items[item.ID] = &item
	return copyItem(&item), nil
}

// MoveItem moves the item to newPosition of targetSectionID, closing the gap it leaves behind.
func (db *DB) MoveItem(id, targetSectionID string, newPosition int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	item, ok := db.items[id]
	if !ok {
		return ErrNotFound
	}
	if targetSectionID == "" {
		targetSectionID = item.SectionID
	}
	target, ok := db.sections[targetSectionID]
	if !ok {
		return ErrUnknownSection
	}

	now := db.now()
	oldPosition := item.Position
	if targetSectionID == item.SectionID {
		for _, it := range db.sectionItems(item.SectionID) {
			if it.ID == id {
				continue
			}
			if shifted, ok := shift(it.Position, oldPosition, newPosition); ok {
				it.Position = shifted
				it.UpdatedAt = now
			}
		}
	} else {
		for _, it := range db.sectionItems(item.SectionID) {
			if it.ID != id && it.Position > oldPosition {
				it.Position--
				it.UpdatedAt = now
			}
		}
		for _, it := range db.sectionItems(targetSectionID) {
			if it.Position >= newPosition {
				it.Position++
				it.UpdatedAt = now
			}
		}
		item.SectionID = targetSectionID
		item.CourseID = target.CourseID
	}
	item.Position = newPosition
	item.UpdatedAt = now
	return nil
}
