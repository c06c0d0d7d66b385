package evaluation

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/course"
)

// Gradebook

type GradeCell struct {
	Grade    *float64 `json:"grade"`
	Feedback *string  `json:"feedback"`
	GradedAt *string  `json:"graded_at"`
}

type StudentRow struct {
	UserID   string               `json:"user_id"`
	User     StudentSummary       `json:"user"`
	Grades   map[string]GradeCell `json:"grades"` // keyed by item id
	Average  *float64             `json:"average"`
	Progress float64              `json:"progress"`
}

type StudentSummary struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type Gradebook struct {
	Course struct {
		ID       string `json:"id"`
		Fullname string `json:"fullname"`
	} `json:"course"`
	Items    []course.Item `json:"items"`
	Students []StudentRow  `json:"students"`
	Settings struct {
		Scale        string  `json:"scale"`
		PassingGrade float64 `json:"passing_grade"`
	} `json:"gradebook_settings"`
}

// SetGrade upserts the grade of a user on a gradable item.
type SetGrade struct {
	CourseID string  `json:"course_id" validate:"required"`
	ItemID   string  `json:"item_id" validate:"required"`
	UserID   string  `json:"user_id" validate:"required"`
	Grade    float64 `json:"grade" validate:"min=0,max=100"`
	Feedback string  `json:"feedback,omitempty"`
}

func (sg *SetGrade) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidateStruct(validate, translator, sg)
}

type SetGradeResult struct {
	Message string `json:"message"`
	GradeID string `json:"grade_id"`
}

type MyGrade struct {
	ID       string   `json:"id"`
	ItemID   string   `json:"item_id"`
	CourseID string   `json:"course_id"`
	Grade    float64  `json:"grade"`
	Feedback *string  `json:"feedback"`
	GradedAt string   `json:"graded_at"`
	Item     *ItemRef `json:"item,omitempty"`
}

type ItemRef struct {
	Title string          `json:"title"`
	Type  course.ItemType `json:"item_type"`
}

// Question bank

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
)

type QuestionCategory struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type Option struct {
	Text    string `json:"text" validate:"required"`
	Correct bool   `json:"correct"`
}

type Question struct {
	ID            string       `json:"id"`
	CourseID      string       `json:"course_id"`
	CategoryID    string       `json:"category_id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"question_text"`
	Points        float64      `json:"points"`
	Options       []Option     `json:"options"`
	CorrectAnswer *string      `json:"correct_answer"`
	Feedback      *string      `json:"feedback"`
	CreatedBy     string       `json:"created_by,omitempty"`
	CreatedAt     string       `json:"created_at,omitempty"`
}

const (
	questionAnswerTag  = "question_answer"
	questionAnswerText = "{0} does not match the question type"
)

// NewQuestion carries options or a correct-answer value depending on its type.
type NewQuestion struct {
	CategoryID    string       `json:"category_id" validate:"required"`
	Type          QuestionType `json:"type" validate:"required,oneof=multiple_choice true_false short_answer essay"`
	Text          string       `json:"question_text" validate:"required"`
	Points        float64      `json:"points" validate:"gt=0"`
	Options       []Option     `json:"options,omitempty" validate:"dive"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Feedback      string       `json:"feedback,omitempty"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate, translator ut.Translator) error {
	nq.Text = core.CleanString(nq.Text)
	nq.CorrectAnswer = core.CleanString(nq.CorrectAnswer)
	if nq.Type == TrueFalse {
		nq.CorrectAnswer = strings.ToLower(nq.CorrectAnswer)
	}
	if nq.Points == 0 {
		nq.Points = 10
	}
	return core.ValidateStruct(validate, translator, nq)
}

type UpdateQuestion struct {
	CategoryID    *string  `json:"category_id,omitempty"`
	Text          *string  `json:"question_text,omitempty"`
	Points        *float64 `json:"points,omitempty" validate:"omitempty,gt=0"`
	Options       []Option `json:"options,omitempty" validate:"omitempty,dive"`
	CorrectAnswer *string  `json:"correct_answer,omitempty"`
	Feedback      *string  `json:"feedback,omitempty"`
}

func (uq *UpdateQuestion) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidateStruct(validate, translator, uq)
}

type QuestionFilter struct {
	CategoryID string
	Type       QuestionType
}

// InitValidators registers the type-dependent answer checks of NewQuestion.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(questionStructValidation, NewQuestion{})
	core.RegisterCustomTranslation(validate, translator, questionAnswerTag, questionAnswerText)
}

func questionStructValidation(sl validator.StructLevel) {
	nq, ok := sl.Current().Interface().(NewQuestion)
	if !ok {
		return
	}
	switch nq.Type {
	case MultipleChoice:
		var correct int
		for _, opt := range nq.Options {
			if opt.Correct {
				correct++
			}
		}
		if len(nq.Options) < 2 || correct == 0 {
			sl.ReportError(nq.Options, "options", "Options", questionAnswerTag, "")
		}
	case TrueFalse:
		if nq.CorrectAnswer != "true" && nq.CorrectAnswer != "false" {
			sl.ReportError(nq.CorrectAnswer, "correct_answer", "CorrectAnswer", questionAnswerTag, "")
		}
	case ShortAnswer:
		if nq.CorrectAnswer == "" {
			sl.ReportError(nq.CorrectAnswer, "correct_answer", "CorrectAnswer", questionAnswerTag, "")
		}
	case Essay:
		if len(nq.Options) > 0 {
			sl.ReportError(nq.Options, "options", "Options", questionAnswerTag, "")
		}
		if nq.CorrectAnswer != "" {
			sl.ReportError(nq.CorrectAnswer, "correct_answer", "CorrectAnswer", questionAnswerTag, "")
		}
	}
}
