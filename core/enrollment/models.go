package enrollment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/aulavirtual/core"
)

// Role is the role bound to a user within a single course.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleEditor  Role = "editor"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusEnded     Status = "ended"
)

// UserSummary is embedded by the API when listing course enrollments.
type UserSummary struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// CourseSummary is embedded by the API in /my-enrollments.
type CourseSummary struct {
	Fullname  string `json:"fullname"`
	Shortname string `json:"shortname"`
	Status    string `json:"status"`
}

type Enrollment struct {
	ID                 string         `json:"id"`
	CourseID           string         `json:"course_id"`
	UserID             string         `json:"user_id"`
	Role               Role           `json:"role"`
	Status             Status         `json:"status"`
	ProgressPercentage float64        `json:"progress_percentage"`
	EnrolledAt         string         `json:"enrolled_at,omitempty"`
	EnrolledBy         string         `json:"enrolled_by,omitempty"`
	CompletedAt        string         `json:"completed_at,omitempty"`
	User               *UserSummary   `json:"user,omitempty"`
	Course             *CourseSummary `json:"course,omitempty"`
}

type NewEnrollment struct {
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=student teacher editor"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate, translator ut.Translator) error {
	ne.UserID = core.CleanString(ne.UserID)
	if ne.Role == "" {
		ne.Role = RoleStudent
	}
	return core.ValidateStruct(validate, translator, ne)
}

type UpdateEnrollment struct {
	Role   *Role   `json:"role,omitempty" validate:"omitempty,oneof=student teacher editor"`
	Status *Status `json:"status,omitempty" validate:"omitempty,oneof=active suspended ended"`
}

func (ue *UpdateEnrollment) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidateStruct(validate, translator, ue)
}

type QueryFilter struct {
	Role   Role
	Status Status
	Search string
	Skip   int
	Limit  int
}

// BulkResult is returned by POST /courses/{id}/enrollments/bulk.
type BulkResult struct {
	Message  string `json:"message"`
	Enrolled int    `json:"enrolled"`
	Skipped  int    `json:"skipped"`
}

// MethodCode is the only self-enrollment method type the clients create.
const MethodCode = "code"

// Method is a self-enrollment method (an enrollment code).
type Method struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Type     string `json:"type"`
	Code     string `json:"code"`
	Role     Role   `json:"role"`
	Enabled  bool   `json:"enabled"`
}
