package content

import (
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
)

// EditState is the edit affordance of the content view.
type EditState int

const (
	Locked EditState = iota
	Editable
)

func (s EditState) String() string {
	if s == Editable {
		return "editable"
	}
	return "locked"
}

// EditAffordance is editable iff the role may edit content, the viewer is not previewing
// and the course is not archived. It is recomputed from these three inputs on every read.
func EditAffordance(role auth.Role, preview bool, status course.Status) EditState {
	if auth.Can(role, auth.EditContent) && !preview && status != course.StatusArchived {
		return Editable
	}
	return Locked
}

// Renders reports whether an entry with the given visibility is part of the rendered tree.
func Renders(visible, editMode bool) bool {
	return visible || editMode
}
