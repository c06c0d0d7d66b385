package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      auth.Role `json:"role"`
	Status    Status    `json:"status"`
	Language  string    `json:"language,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt string    `json:"created_at,omitempty"`
	UpdatedAt string    `json:"updated_at,omitempty"`
	LastLogin string    `json:"last_login,omitempty"`
}

func (u User) FullName() string {
	return core.CleanString(u.FirstName + " " + u.LastName)
}

func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email     string    `json:"email" validate:"required,email"`
	FirstName string    `json:"first_name" validate:"required"`
	LastName  string    `json:"last_name" validate:"required"`
	Password  string    `json:"password" validate:"required"`
	Role      auth.Role `json:"role,omitempty" validate:"omitempty,role"`
	Language  string    `json:"language,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	Phone     string    `json:"phone,omitempty"`
}

func (nu *NewUser) Validate(validate *validator.Validate, translator ut.Translator) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	return core.ValidateStruct(validate, translator, nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	FirstName *string    `json:"first_name,omitempty"`
	LastName  *string    `json:"last_name,omitempty"`
	Role      *auth.Role `json:"role,omitempty" validate:"omitempty,role"`
	Status    *Status    `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
	Language  *string    `json:"language,omitempty"`
	Timezone  *string    `json:"timezone,omitempty"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Password  *string    `json:"password,omitempty"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidateStruct(validate, translator, uu)
}

type QueryFilter struct {
	Search string
	Role   auth.Role
	Status Status
	Skip   int
	Limit  int
}

// BulkAction is applied by POST /users/bulk.
type BulkAction string

const (
	BulkDeactivate BulkAction = "deactivate"
	BulkReactivate BulkAction = "reactivate"
	BulkChangeRole BulkAction = "change_role" // needs a role
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.ValidateStruct(validate, translator, lr)
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type PasswordReset struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

func (pr *PasswordReset) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidateStruct(validate, translator, pr)
}
