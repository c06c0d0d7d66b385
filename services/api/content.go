package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core/course"
)

// Sections

func (c *Client) ListSections(ctx context.Context, courseID string) ([]course.Section, error) {
	sections := make([]course.Section, 0)
	req := c.request(ctx).SetPathParam("course", courseID)
	err := c.do(req, http.MethodGet, "/courses/{course}/sections", &sections)
	return sections, errors.Wrap(err, "listing sections")
}

func (c *Client) CreateSection(ctx context.Context, courseID string, data course.NewSection) (course.Section, error) {
	data.CourseID = courseID
	draft := data
	if err := c.check(&draft); err != nil {
		return course.Section{}, err
	}
	var sec course.Section
	req := c.request(ctx).SetPathParam("course", courseID).SetBody(data)
	err := c.do(req, http.MethodPost, "/courses/{course}/sections", &sec)
	return sec, err
}

func (c *Client) GetSection(ctx context.Context, courseID, id string) (course.Section, error) {
	var sec course.Section
	req := c.request(ctx).SetPathParams(map[string]string{"course": courseID, "id": id})
	err := c.do(req, http.MethodGet, "/courses/{course}/sections/{id}", &sec)
	return sec, err
}

func (c *Client) UpdateSection(ctx context.Context, courseID, id string, data course.UpdateSection) (course.Section, error) {
	var sec course.Section
	req := c.request(ctx).SetPathParams(map[string]string{"course": courseID, "id": id}).SetBody(data)
	err := c.do(req, http.MethodPatch, "/courses/{course}/sections/{id}", &sec)
	return sec, err
}

// DeleteSection refuses sections holding items unless force is set.
func (c *Client) DeleteSection(ctx context.Context, courseID, id string, force bool) error {
	req := c.request(ctx).SetPathParams(map[string]string{"course": courseID, "id": id})
	if force {
		req.SetQueryParam("force", "true")
	}
	return c.do(req, http.MethodDelete, "/courses/{course}/sections/{id}", nil)
}

func (c *Client) MoveSection(ctx context.Context, courseID, id string, newPosition int) error {
	req := c.request(ctx).
		SetPathParams(map[string]string{"course": courseID, "id": id}).
		SetQueryParam("new_position", strconv.Itoa(newPosition))
	return c.do(req, http.MethodPost, "/courses/{course}/sections/{id}/move", nil)
}

// Items

func (c *Client) ListItems(ctx context.Context, sectionID string) ([]course.Item, error) {
	items := make([]course.Item, 0)
	req := c.request(ctx).SetPathParam("section", sectionID)
	err := c.do(req, http.MethodGet, "/sections/{section}/items", &items)
	return items, errors.Wrap(err, "listing items")
}

func (c *Client) CreateItem(ctx context.Context, sectionID string, data course.NewItem) (course.Item, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return course.Item{}, err
	}
	var item course.Item
	req := c.request(ctx).SetPathParam("section", sectionID).SetBody(data)
	err := c.do(req, http.MethodPost, "/sections/{section}/items", &item)
	return item, err
}

func (c *Client) GetItem(ctx context.Context, id string) (course.Item, error) {
	var item course.Item
	err := c.do(c.request(ctx).SetPathParam("id", id), http.MethodGet, "/items/{id}", &item)
	return item, err
}

func (c *Client) UpdateItem(ctx context.Context, id string, data course.UpdateItem) (course.Item, error) {
	var item course.Item
	req := c.request(ctx).SetPathParam("id", id).SetBody(data)
	err := c.do(req, http.MethodPatch, "/items/{id}", &item)
	return item, err
}

func (c *Client) SetItemVisibility(ctx context.Context, id string, visible bool) error {
	req := c.request(ctx).SetPathParam("id", id).SetQueryParam("visible", strconv.FormatBool(visible))
	return c.do(req, http.MethodPatch, "/items/{id}/visibility", nil)
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/items/{id}", nil)
}

// DuplicateItem copies the item into targetSectionID, or its own section when empty.
func (c *Client) DuplicateItem(ctx context.Context, id, targetSectionID string) (course.Item, error) {
	var item course.Item
	req := c.request(ctx).SetPathParam("id", id)
	if targetSectionID != "" {
		req.SetQueryParam("target_section_id", targetSectionID)
	}
	err := c.do(req, http.MethodPost, "/items/{id}/duplicate", &item)
	return item, err
}

func (c *Client) MoveItem(ctx context.Context, id, targetSectionID string, newPosition int) error {
	req := c.request(ctx).SetPathParam("id", id).SetQueryParams(map[string]string{
		"target_section_id": targetSectionID,
		"new_position":      strconv.Itoa(newPosition),
	})
	return c.do(req, http.MethodPost, "/items/{id}/move", nil)
}
