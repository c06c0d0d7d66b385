package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/trezcool/aulavirtual/core/evaluation"
)

func (c *Client) Gradebook(ctx context.Context, courseID string) (evaluation.Gradebook, error) {
	var gb evaluation.Gradebook
	req := c.request(ctx).SetPathParam("course", courseID)
	err := c.do(req, http.MethodGet, "/courses/{course}/gradebook", &gb)
	return gb, err
}

// SetGrade sends the grade as query parameters, as the API expects.
func (c *Client) SetGrade(ctx context.Context, data evaluation.SetGrade) (evaluation.SetGradeResult, error) {
	var res evaluation.SetGradeResult
	draft := data
	if err := c.check(&draft); err != nil {
		return res, err
	}
	params := map[string]string{
		"course_id": data.CourseID,
		"item_id":   data.ItemID,
		"user_id":   data.UserID,
		"grade":     strconv.FormatFloat(data.Grade, 'f', -1, 64),
	}
	if data.Feedback != "" {
		params["feedback"] = data.Feedback
	}
	err := c.do(c.request(ctx).SetQueryParams(params), http.MethodPost, "/grades", &res)
	return res, err
}

func (c *Client) MyGrades(ctx context.Context, courseID string) ([]evaluation.MyGrade, error) {
	grades := make([]evaluation.MyGrade, 0)
	req := c.request(ctx).SetPathParam("course", courseID)
	err := c.do(req, http.MethodGet, "/courses/{course}/my-grades", &grades)
	return grades, err
}

// Question bank

func (c *Client) ListQuestionCategories(ctx context.Context, courseID string) ([]evaluation.QuestionCategory, error) {
	cats := make([]evaluation.QuestionCategory, 0)
	req := c.request(ctx).SetPathParam("course", courseID)
	err := c.do(req, http.MethodGet, "/courses/{course}/question-categories", &cats)
	return cats, err
}

func (c *Client) CreateQuestionCategory(ctx context.Context, courseID, name, description string) (evaluation.QuestionCategory, error) {
	var cat evaluation.QuestionCategory
	req := c.request(ctx).SetPathParam("course", courseID).SetQueryParam("name", name)
	if description != "" {
		req.SetQueryParam("description", description)
	}
	err := c.do(req, http.MethodPost, "/courses/{course}/question-categories", &cat)
	return cat, err
}

func (c *Client) ListQuestions(ctx context.Context, courseID string, filter evaluation.QuestionFilter) ([]evaluation.Question, error) {
	req := c.request(ctx).SetPathParam("course", courseID)
	if filter.CategoryID != "" {
		req.SetQueryParam("category_id", filter.CategoryID)
	}
	if filter.Type != "" {
		req.SetQueryParam("question_type", string(filter.Type))
	}
	questions := make([]evaluation.Question, 0)
	err := c.do(req, http.MethodGet, "/courses/{course}/questions", &questions)
	return questions, err
}

func (c *Client) CreateQuestion(ctx context.Context, courseID string, data evaluation.NewQuestion) (evaluation.Question, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return evaluation.Question{}, err
	}
	var q evaluation.Question
	req := c.request(ctx).SetPathParam("course", courseID).SetBody(data)
	err := c.do(req, http.MethodPost, "/courses/{course}/questions", &q)
	return q, err
}

func (c *Client) UpdateQuestion(ctx context.Context, id string, data evaluation.UpdateQuestion) (evaluation.Question, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return evaluation.Question{}, err
	}
	var q evaluation.Question
	req := c.request(ctx).SetPathParam("id", id).SetBody(data)
	err := c.do(req, http.MethodPatch, "/questions/{id}", &q)
	return q, err
}

func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	return c.do(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/questions/{id}", nil)
}
