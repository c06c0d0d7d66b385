package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core/user"
)

// Login authenticates and stores the issued bearer token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (user.User, error) {
	data := user.LoginRequest{Email: email, Password: password}
	draft := data
	if err := c.check(&draft); err != nil {
		return user.User{}, err
	}

	var res user.LoginResponse
	if err := c.do(c.request(ctx).SetBody(data), http.MethodPost, "/auth/login", &res); err != nil {
		return user.User{}, err
	}
	if err := c.session.SetToken(res.AccessToken); err != nil {
		return user.User{}, errors.Wrap(err, "storing token")
	}
	return c.Me(ctx)
}

// Logout only forgets the token; the API keeps no server-side session.
func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) Register(ctx context.Context, data user.NewUser) (user.User, error) {
	draft := data
	if err := c.check(&draft); err != nil {
		return user.User{}, err
	}
	var usr user.User
	err := c.do(c.request(ctx).SetBody(data), http.MethodPost, "/auth/register", &usr)
	return usr, err
}

func (c *Client) Me(ctx context.Context) (user.User, error) {
	var usr user.User
	err := c.do(c.request(ctx), http.MethodGet, "/auth/me", &usr)
	return usr, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (MessageResponse, error) {
	var res MessageResponse
	body := map[string]string{"email": email}
	err := c.do(c.request(ctx).SetBody(body), http.MethodPost, "/auth/forgot-password", &res)
	return res, err
}

func (c *Client) ResetPassword(ctx context.Context, data user.PasswordReset) (MessageResponse, error) {
	var res MessageResponse
	draft := data
	if err := c.check(&draft); err != nil {
		return res, err
	}
	err := c.do(c.request(ctx).SetBody(data), http.MethodPost, "/auth/reset-password", &res)
	return res, err
}
