package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/aulavirtual/core"
)

type Category struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	ParentID    string      `json:"parent_id,omitempty"`
	Position    int         `json:"position"`
	Visible     bool        `json:"visible"`
	CourseCount int         `json:"course_count"`
	Children    []*Category `json:"children,omitempty"` // only set by the tree endpoint
}

type NewCategory struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	Position    int    `json:"position"`
}

func (nc *NewCategory) Validate(validate *validator.Validate, translator ut.Translator) error {
	nc.Name = core.CleanString(nc.Name)
	return core.ValidateStruct(validate, translator, nc)
}

type UpdateCategory struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	Position    *int    `json:"position,omitempty"`
	Visible     *bool   `json:"visible,omitempty"`
}

// Section is an ordered grouping of items (a topic or a week). Position is server-assigned.
type Section struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	Position  int    `json:"position"`
	Visible   bool   `json:"visible"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type NewSection struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title" validate:"required,max=255"`
	Summary  string `json:"summary,omitempty"`
	Position int    `json:"position"`
}

func (ns *NewSection) Validate(validate *validator.Validate, translator ut.Translator) error {
	ns.Title = core.CleanString(ns.Title)
	return core.ValidateStruct(validate, translator, ns)
}

type UpdateSection struct {
	Title    *string `json:"title,omitempty"`
	Summary  *string `json:"summary,omitempty"`
	Position *int    `json:"position,omitempty"`
	Visible  *bool   `json:"visible,omitempty"`
}

type ItemType string

const (
	ItemPage       ItemType = "page"
	ItemFile       ItemType = "file"
	ItemVideo      ItemType = "video"
	ItemURL        ItemType = "url"
	ItemForum      ItemType = "forum"
	ItemAssignment ItemType = "assignment"
	ItemQuiz       ItemType = "quiz"
	ItemFeedback   ItemType = "feedback"
	ItemLabel      ItemType = "label"
)

var ItemTypes = []ItemType{
	ItemPage, ItemFile, ItemVideo, ItemURL, ItemForum, ItemAssignment, ItemQuiz, ItemFeedback, ItemLabel,
}

func (t ItemType) Valid() bool {
	for _, it := range ItemTypes {
		if t == it {
			return true
		}
	}
	return false
}

// Gradable items show up as gradebook columns.
func (t ItemType) Gradable() bool {
	return t == ItemAssignment || t == ItemQuiz
}

// Item is a single piece of course content or activity.
type Item struct {
	ID          string                 `json:"id"`
	SectionID   string                 `json:"section_id"`
	CourseID    string                 `json:"course_id"`
	Type        ItemType               `json:"item_type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Position    int                    `json:"position"`
	Visible     bool                   `json:"visible"`
	Content     map[string]interface{} `json:"content,omitempty"`
	CreatedAt   string                 `json:"created_at,omitempty"`
	UpdatedAt   string                 `json:"updated_at,omitempty"`
}

type NewItem struct {
	Title       string                 `json:"title" validate:"required,max=255"`
	Type        ItemType               `json:"item_type" validate:"required,oneof=page file video url forum assignment quiz feedback label"`
	Description string                 `json:"description,omitempty"`
	Position    int                    `json:"position"`
	Content     map[string]interface{} `json:"content,omitempty"`
}

func (ni *NewItem) Validate(validate *validator.Validate, translator ut.Translator) error {
	ni.Title = core.CleanString(ni.Title)
	return core.ValidateStruct(validate, translator, ni)
}

type UpdateItem struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	Position    *int                   `json:"position,omitempty"`
	Visible     *bool                  `json:"visible,omitempty"`
	Content     map[string]interface{} `json:"content,omitempty"`
}
