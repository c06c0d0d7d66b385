package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/aulavirtual/core"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusSuspended Status = "suspended"
	StatusArchived  Status = "archived"
)

type Format string

const (
	FormatTopics Format = "topics"
	FormatWeeks  Format = "weeks"
	FormatFree   Format = "free"
)

type Course struct {
	ID          string   `json:"id"`
	Fullname    string   `json:"fullname"`
	Shortname   string   `json:"shortname"`
	CategoryID  string   `json:"category_id"`
	Summary     string   `json:"summary,omitempty"`
	Status      Status   `json:"status"`
	Visible     bool     `json:"visible"`
	Format      Format   `json:"format"`
	NumSections int      `json:"num_sections"`
	Language    string   `json:"language,omitempty"`
	Tags        []string `json:"tags"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	CreatedBy   string   `json:"created_by,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// IsReadOnly reports whether the course is archived; archived courses cannot be edited.
func (c Course) IsReadOnly() bool {
	return c.Status == StatusArchived
}

// PublishedButHidden is an inconsistent but allowed state: it is warned about, never rejected.
func (c Course) PublishedButHidden() bool {
	return c.Status == StatusPublished && !c.Visible
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Fullname    string   `json:"fullname" validate:"required,max=255"`
	Shortname   string   `json:"shortname" validate:"required,max=100,shortname"`
	CategoryID  string   `json:"category_id" validate:"required"`
	Summary     string   `json:"summary,omitempty"`
	Format      Format   `json:"format,omitempty" validate:"omitempty,oneof=topics weeks free"`
	NumSections int      `json:"num_sections" validate:"min=0,max=52"`
	Language    string   `json:"language,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
}

// Validate checks the trimmed names; the course is stored with the names as given.
func (nc *NewCourse) Validate(validate *validator.Validate, translator ut.Translator) error {
	trimmed := *nc
	trimmed.Fullname = core.CleanString(nc.Fullname)
	trimmed.Shortname = core.CleanString(nc.Shortname)
	trimmed.CategoryID = core.CleanString(nc.CategoryID)
	return core.ValidateStruct(validate, translator, &trimmed)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Fullname    *string  `json:"fullname,omitempty" validate:"omitempty,max=255"`
	Shortname   *string  `json:"shortname,omitempty" validate:"omitempty,max=100,shortname"`
	CategoryID  *string  `json:"category_id,omitempty"`
	Summary     *string  `json:"summary,omitempty"`
	Format      *Format  `json:"format,omitempty" validate:"omitempty,oneof=topics weeks free"`
	NumSections *int     `json:"num_sections,omitempty" validate:"omitempty,min=0,max=52"`
	Language    *string  `json:"language,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	StartDate   *string  `json:"start_date,omitempty"`
	EndDate     *string  `json:"end_date,omitempty"`
	Visible     *bool    `json:"visible,omitempty"`
	Status      *Status  `json:"status,omitempty" validate:"omitempty,oneof=draft published suspended archived"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidateStruct(validate, translator, uc)
}

type QueryFilter struct {
	Search     string
	Status     Status
	Visible    *bool
	CategoryID string
	Tags       []string
	CreatedBy  string
	Skip       int
	Limit      int
}

// BulkAction is applied by POST /courses/bulk.
type BulkAction string

const (
	BulkHide    BulkAction = "hide"
	BulkShow    BulkAction = "show"
	BulkSuspend BulkAction = "suspend"
	BulkArchive BulkAction = "archive"
	BulkDelete  BulkAction = "delete"
)

func (a BulkAction) Valid() bool {
	switch a {
	case BulkHide, BulkShow, BulkSuspend, BulkArchive, BulkDelete:
		return true
	}
	return false
}

// Stats is only served to teacher-or-above.
type Stats struct {
	SectionCount    int `json:"section_count"`
	ItemCount       int `json:"item_count"`
	EnrollmentCount int `json:"enrollment_count"`
	StudentCount    int `json:"student_count"`
}
