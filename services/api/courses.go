package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/course"
)

func setPaging(req *resty.Request, skip, limit int) {
	if skip > 0 {
		req.SetQueryParam("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
}

func (c *Client) ListCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	req := c.request(ctx)
	if s := core.CleanString(filter.Search); s != "" {
		req.SetQueryParam("search", s)
	}
	if filter.Status != "" {
		req.SetQueryParam("status", string(filter.Status))
	}
	if filter.Visible != nil {
		req.SetQueryParam("visible", strconv.FormatBool(*filter.Visible))
	}
	if filter.CategoryID != "" {
		req.SetQueryParam("category_id", filter.CategoryID)
	}
	if len(filter.Tags) > 0 {
		req.SetQueryParam("tags", strings.Join(filter.Tags, ","))
	}
	if filter.CreatedBy != "" {
		req.SetQueryParam("created_by", filter.CreatedBy)
	}
	setPaging(req, filter.Skip, filter.Limit)

	courses := make([]course.Course, 0)
	err := c.do(req, http.MethodGet, "/courses", &courses)
	return courses, err
}

func (c *Client) CreateCourse(ctx context.Context, data course.NewCourse) (course.Course, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return course.Course{}, err
	}
	var crs course.Course
	err := c.do(c.request(ctx).SetBody(data), http.MethodPost, "/courses", &crs)
	return crs, err
}

func (c *Client) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var crs course.Course
	err := c.do(c.request(ctx).SetPathParam("id", id), http.MethodGet, "/courses/{id}", &crs)
	return crs, errors.Wrap(err, "getting course")
}

func (c *Client) UpdateCourse(ctx context.Context, id string, data course.UpdateCourse) (course.Course, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return course.Course{}, err
	}
	var crs course.Course
	req := c.request(ctx).SetPathParam("id", id).SetBody(data)
	err := c.do(req, http.MethodPatch, "/courses/{id}", &crs)
	return crs, err
}

func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	return c.do(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/courses/{id}", nil)
}

// DuplicateCourse copies the course with its sections and items; the copy starts as a draft.
// An empty newFullname lets the API name it "<fullname> (Copia)".
func (c *Client) DuplicateCourse(ctx context.Context, id, newShortname, newFullname string) (course.Course, error) {
	var crs course.Course
	req := c.request(ctx).SetPathParam("id", id).SetQueryParam("new_shortname", core.CleanString(newShortname))
	if s := core.CleanString(newFullname); s != "" {
		req.SetQueryParam("new_fullname", s)
	}
	err := c.do(req, http.MethodPost, "/courses/{id}/duplicate", &crs)
	return crs, err
}

func (c *Client) BulkCourses(ctx context.Context, action course.BulkAction, ids ...string) (MessageResponse, error) {
	var res MessageResponse
	if !action.Valid() {
		return res, core.NewValidationError(nil, core.FieldError{Field: "action", Error: "invalid action"})
	}
	req := c.request(ctx).SetQueryParam("action", string(action)).SetBody(ids)
	err := c.do(req, http.MethodPost, "/courses/bulk", &res)
	return res, err
}

func (c *Client) CourseStats(ctx context.Context, id string) (course.Stats, error) {
	var stats course.Stats
	err := c.do(c.request(ctx).SetPathParam("id", id), http.MethodGet, "/courses/{id}/stats", &stats)
	return stats, errors.Wrap(err, "getting course stats")
}

// Categories

func (c *Client) ListCategories(ctx context.Context) ([]course.Category, error) {
	cats := make([]course.Category, 0)
	err := c.do(c.request(ctx), http.MethodGet, "/categories", &cats)
	return cats, err
}

func (c *Client) CategoryTree(ctx context.Context) ([]*course.Category, error) {
	tree := make([]*course.Category, 0)
	err := c.do(c.request(ctx), http.MethodGet, "/categories/tree", &tree)
	return tree, err
}

func (c *Client) GetCategory(ctx context.Context, id string) (course.Category, error) {
	var cat course.Category
	err := c.do(c.request(ctx).SetPathParam("id", id), http.MethodGet, "/categories/{id}", &cat)
	return cat, errors.Wrap(err, "getting category")
}

func (c *Client) CreateCategory(ctx context.Context, data course.NewCategory) (course.Category, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return course.Category{}, err
	}
	var cat course.Category
	err := c.do(c.request(ctx).SetBody(data), http.MethodPost, "/categories", &cat)
	return cat, err
}

func (c *Client) UpdateCategory(ctx context.Context, id string, data course.UpdateCategory) (course.Category, error) {
	var cat course.Category
	req := c.request(ctx).SetPathParam("id", id).SetBody(data)
	err := c.do(req, http.MethodPatch, "/categories/{id}", &cat)
	return cat, err
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/categories/{id}", nil)
}
