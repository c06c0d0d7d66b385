package api

import (
	"context"
	"net/http"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/enrollment"
)

func (c *Client) ListEnrollments(ctx context.Context, courseID string, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	req := c.request(ctx).SetPathParam("course", courseID)
	if filter.Role != "" {
		req.SetQueryParam("role", string(filter.Role))
	}
	if filter.Status != "" {
		req.SetQueryParam("status", string(filter.Status))
	}
	if s := core.CleanString(filter.Search); s != "" {
		req.SetQueryParam("search", s)
	}
	setPaging(req, filter.Skip, filter.Limit)

	enrollments := make([]enrollment.Enrollment, 0)
	err := c.do(req, http.MethodGet, "/courses/{course}/enrollments", &enrollments)
	return enrollments, err
}

func (c *Client) Enroll(ctx context.Context, courseID string, data enrollment.NewEnrollment) (enrollment.Enrollment, error) {
	data.CourseID = courseID
	draft := data
	if err := c.check(&draft); err != nil {
		return enrollment.Enrollment{}, err
	}
	var enr enrollment.Enrollment
	req := c.request(ctx).SetPathParam("course", courseID).SetBody(data)
	err := c.do(req, http.MethodPost, "/courses/{course}/enrollments", &enr)
	return enr, err
}

func (c *Client) UpdateEnrollment(ctx context.Context, id string, data enrollment.UpdateEnrollment) (enrollment.Enrollment, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return enrollment.Enrollment{}, err
	}
	var enr enrollment.Enrollment
	req := c.request(ctx).SetPathParam("id", id).SetBody(data)
	err := c.do(req, http.MethodPatch, "/enrollments/{id}", &enr)
	return enr, err
}

// Unenroll must only be called once the user confirmed.
func (c *Client) Unenroll(ctx context.Context, id string) error {
	return c.do(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/enrollments/{id}", nil)
}

func (c *Client) BulkEnroll(ctx context.Context, courseID string, role enrollment.Role, userIDs ...string) (enrollment.BulkResult, error) {
	var res enrollment.BulkResult
	req := c.request(ctx).
		SetPathParam("course", courseID).
		SetQueryParam("role", string(role)).
		SetBody(userIDs)
	err := c.do(req, http.MethodPost, "/courses/{course}/enrollments/bulk", &res)
	return res, err
}

func (c *Client) ListEnrollmentMethods(ctx context.Context, courseID string) ([]enrollment.Method, error) {
	methods := make([]enrollment.Method, 0)
	req := c.request(ctx).SetPathParam("course", courseID)
	err := c.do(req, http.MethodGet, "/courses/{course}/enrollment-methods", &methods)
	return methods, err
}

// CreateEnrollmentCode lets the server generate the code when code is empty.
func (c *Client) CreateEnrollmentCode(ctx context.Context, courseID, code string, role enrollment.Role) (enrollment.Method, error) {
	var method enrollment.Method
	req := c.request(ctx).SetPathParam("course", courseID).SetQueryParams(map[string]string{
		"method_type": enrollment.MethodCode,
		"role":        string(role),
	})
	if code != "" {
		req.SetQueryParam("enrollment_code", code)
	}
	err := c.do(req, http.MethodPost, "/courses/{course}/enrollment-methods", &method)
	return method, err
}

type SelfEnrollResponse struct {
	Message      string `json:"message"`
	EnrollmentID string `json:"enrollment_id"`
}

func (c *Client) EnrollWithCode(ctx context.Context, code string) (SelfEnrollResponse, error) {
	var res SelfEnrollResponse
	req := c.request(ctx).SetQueryParam("code", core.CleanString(code))
	err := c.do(req, http.MethodPost, "/enroll/code", &res)
	return res, err
}

func (c *Client) MyEnrollments(ctx context.Context) ([]enrollment.Enrollment, error) {
	enrollments := make([]enrollment.Enrollment, 0)
	err := c.do(c.request(ctx), http.MethodGet, "/my-enrollments", &enrollments)
	return enrollments, err
}
