package api

import (
	"context"
	"net/http"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/message"
	"github.com/trezcool/aulavirtual/core/user"
)

func (c *Client) ListUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	req := c.request(ctx)
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

	users := make([]user.User, 0)
	err := c.do(req, http.MethodGet, "/users", &users)
	return users, err
}

func (c *Client) CreateUser(ctx context.Context, data user.NewUser) (user.User, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return user.User{}, err
	}
	var usr user.User
	err := c.do(c.request(ctx).SetBody(data), http.MethodPost, "/users", &usr)
	return usr, err
}

func (c *Client) GetUser(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	err := c.do(c.request(ctx).SetPathParam("id", id), http.MethodGet, "/users/{id}", &usr)
	return usr, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, data user.UpdateUser) (user.User, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return user.User{}, err
	}
	var usr user.User
	req := c.request(ctx).SetPathParam("id", id).SetBody(data)
	err := c.do(req, http.MethodPatch, "/users/{id}", &usr)
	return usr, err
}

// BulkUsers applies action to ids; role is only read by user.BulkChangeRole.
func (c *Client) BulkUsers(ctx context.Context, action user.BulkAction, role auth.Role, ids ...string) (MessageResponse, error) {
	var res MessageResponse
	req := c.request(ctx).SetQueryParam("action", string(action)).SetBody(ids)
	if action == user.BulkChangeRole {
		req.SetQueryParam("role", string(role))
	}
	err := c.do(req, http.MethodPost, "/users/bulk", &res)
	return res, err
}

// Messages

func (c *Client) ListThreads(ctx context.Context) ([]message.Thread, error) {
	threads := make([]message.Thread, 0)
	err := c.do(c.request(ctx), http.MethodGet, "/messages/threads", &threads)
	return threads, err
}

func (c *Client) CreateThread(ctx context.Context, data message.NewThread) (message.Thread, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return message.Thread{}, err
	}
	params := map[string]string{
		"recipient_id": data.RecipientID,
		"subject":      data.Subject,
		"content":      data.Content,
	}
	if data.CourseID != "" {
		params["course_id"] = data.CourseID
	}
	var thread message.Thread
	err := c.do(c.request(ctx).SetQueryParams(params), http.MethodPost, "/messages/threads", &thread)
	return thread, err
}

// ThreadMessages also marks the thread as read for the current user.
func (c *Client) ThreadMessages(ctx context.Context, threadID string) ([]message.Message, error) {
	msgs := make([]message.Message, 0)
	req := c.request(ctx).SetPathParam("id", threadID)
	err := c.do(req, http.MethodGet, "/messages/threads/{id}/messages", &msgs)
	return msgs, err
}

func (c *Client) Reply(ctx context.Context, threadID string, data message.Reply) (message.Message, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return message.Message{}, err
	}
	var msg message.Message
	req := c.request(ctx).SetPathParam("id", threadID).SetQueryParam("content", data.Content)
	err := c.do(req, http.MethodPost, "/messages/threads/{id}/messages", &msg)
	return msg, err
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var res message.UnreadCount
	err := c.do(c.request(ctx), http.MethodGet, "/messages/unread-count", &res)
	return res.UnreadCount, err
}
