// Package api is the typed client of the Aula Virtual REST API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/evaluation"
	"github.com/trezcool/aulavirtual/core/user"
)

// login failures are plain bad credentials, not an expired session
var sessionlessPaths = map[string]bool{
	"/auth/login":           true,
	"/auth/forgot-password": true,
	"/auth/reset-password":  true,
}

type (
	Options struct {
		BaseURL string
		Timeout time.Duration
		Session *auth.Session
		Logger  core.Logger

		// OnUnauthorized is called after a 401 cleared the session (navigate to login).
		OnUnauthorized func()

		// HTTPClient overrides the transport (tests).
		HTTPClient *http.Client
	}

	Client struct {
		rest           *resty.Client
		session        *auth.Session
		logger         core.Logger
		onUnauthorized func()
		validate       *validator.Validate
		translator     ut.Translator
	}

	form interface {
		Validate(*validator.Validate, ut.Translator) error
	}
)

func New(opts Options) *Client {
	var rest *resty.Client
	if opts.HTTPClient != nil {
		rest = resty.NewWithClient(opts.HTTPClient)
	} else {
		rest = resty.New()
	}
	rest.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	rest.SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		rest.SetTimeout(opts.Timeout)
	}

	logger := opts.Logger
	if logger == nil {
		logger = core.NopLogger
	}
	onUnauthorized := opts.OnUnauthorized
	if onUnauthorized == nil {
		onUnauthorized = func() {}
	}
	validate, translator := core.NewValidator(user.InitValidators, evaluation.InitValidators)

	return &Client{
		rest:           rest,
		session:        opts.Session,
		logger:         logger,
		onUnauthorized: onUnauthorized,
		validate:       validate,
		translator:     translator,
	}
}

func (c *Client) Session() *auth.Session { return c.session }

// Validator exposes the client-side form validator.
func (c *Client) Validator() (*validator.Validate, ut.Translator) { return c.validate, c.translator }

// check runs client-side form validation on a copy; a failing form is never submitted
// and a passing one is sent as the caller built it.
func (c *Client) check(f form) error {
	return f.Validate(c.validate, c.translator)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.rest.R().SetContext(ctx)
	if token := c.session.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// do executes req and decodes a successful JSON body into result (may be nil).
func (c *Client) do(req *resty.Request, method, path string, result interface{}) error {
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn("request failed", errors.Wrapf(err, "%s %s", method, path))
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.IsSuccess() {
		return nil
	}

	if resp.StatusCode() == http.StatusUnauthorized && !sessionlessPaths[path] {
		c.logger.Info("unauthorized, clearing session", map[string]interface{}{"method": method, "path": path})
		if err = c.session.Clear(); err != nil {
			c.logger.Error("clearing session", err)
		}
		c.onUnauthorized()
		return core.ErrUnauthorized
	}

	apiErr := &core.APIError{StatusCode: resp.StatusCode(), Message: errorMessage(resp.Body())}
	c.logger.Warn("request failed", errors.Wrapf(apiErr, "%s %s", method, path))
	return apiErr
}

// errorMessage extracts the server-supplied message: {"detail": "..."}, {"detail": {field: msg}},
// {"message": "..."} or {"error": "..."}.
func errorMessage(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			return s
		}
		var fields map[string]string
		if json.Unmarshal(payload.Detail, &fields) == nil && len(fields) > 0 {
			msgs := make([]string, 0, len(fields))
			for fld, msg := range fields {
				msgs = append(msgs, fld+": "+msg)
			}
			sort.Strings(msgs)
			return strings.Join(msgs, "; ")
		}
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// MessageResponse is the {"message": ...} body of most action endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}
