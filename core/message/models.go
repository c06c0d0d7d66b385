package message

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/aulavirtual/core"
)

type ThreadType string

const (
	ThreadMessage      ThreadType = "message"
	ThreadAnnouncement ThreadType = "announcement"
)

type Thread struct {
	ID            string     `json:"id"`
	Subject       string     `json:"subject"`
	Type          ThreadType `json:"type"`
	CourseID      string     `json:"course_id,omitempty"`
	CreatedBy     string     `json:"created_by"`
	RecipientID   string     `json:"recipient_id,omitempty"`
	Participants  []string   `json:"participants"`
	ReadBy        []string   `json:"read_by"`
	CreatedAt     string     `json:"created_at"`
	LastMessageAt string     `json:"last_message_at"`
	SenderName    string     `json:"sender_name,omitempty"`
	Preview       string     `json:"preview,omitempty"`
	Unread        bool       `json:"unread"`
}

type Message struct {
	ID         string   `json:"id"`
	ThreadID   string   `json:"thread_id"`
	SenderID   string   `json:"sender_id"`
	SenderName string   `json:"sender_name,omitempty"`
	Content    string   `json:"content"`
	CreatedAt  string   `json:"created_at"`
	ReadBy     []string `json:"read_by"`
}

type NewThread struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Subject     string `json:"subject" validate:"required,max=255"`
	Content     string `json:"content" validate:"required"`
	CourseID    string `json:"course_id,omitempty"`
}

func (nt *NewThread) Validate(validate *validator.Validate, translator ut.Translator) error {
	nt.Subject = core.CleanString(nt.Subject)
	nt.Content = core.CleanString(nt.Content)
	return core.ValidateStruct(validate, translator, nt)
}

type Reply struct {
	Content string `json:"content" validate:"required"`
}

func (r *Reply) Validate(validate *validator.Validate, translator ut.Translator) error {
	r.Content = core.CleanString(r.Content)
	return core.ValidateStruct(validate, translator, r)
}

type UnreadCount struct {
	UnreadCount int `json:"unread_count"`
}
