package content

import (
	"github.com/trezcool/aulavirtual/core/course"
)

type (
	// SectionNode is a section as rendered: hidden entries only appear in edit mode,
	// and then carry Hidden so widgets can badge them.
	SectionNode struct {
		course.Section
		Items    []ItemNode
		Hidden   bool
		Expanded bool
		Active   bool
	}

	ItemNode struct {
		course.Item
		Hidden bool
	}
)

// Tree returns the rendered section tree in position order.
func (v *View) Tree() []SectionNode {
	editMode := v.EditMode()
	tree := make([]SectionNode, 0, len(v.sections))
	for _, node := range v.sections {
		if !Renders(node.section.Visible, editMode) {
			continue
		}
		sn := SectionNode{
			Section:  node.section,
			Items:    make([]ItemNode, 0, len(node.items)),
			Hidden:   !node.section.Visible,
			Expanded: v.expanded[node.section.ID],
			Active:   node.section.ID == v.activeSection,
		}
		for _, item := range node.items {
			if !Renders(item.Visible, editMode) {
				continue
			}
			sn.Items = append(sn.Items, ItemNode{Item: item, Hidden: !item.Visible})
		}
		tree = append(tree, sn)
	}
	return tree
}

// Section looks a loaded section up by id.
func (v *View) Section(id string) (course.Section, bool) {
	for _, node := range v.sections {
		if node.section.ID == id {
			return node.section, true
		}
	}
	return course.Section{}, false
}

// Item looks a loaded item up by id.
func (v *View) Item(id string) (course.Item, bool) {
	for _, node := range v.sections {
		for _, item := range node.items {
			if item.ID == id {
				return item, true
			}
		}
	}
	return course.Item{}, false
}
