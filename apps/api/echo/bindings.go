package echoapi

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Paging reads the skip & limit query params.
type Paging struct {
	Skip  int
	Limit int
}

func (p *Paging) Bind(ctx echo.Context) {
	p.Skip = queryInt(ctx, "skip", 0)
	p.Limit = queryInt(ctx, "limit", 0)
}

func queryInt(ctx echo.Context, name string, def int) int {
	if n, err := strconv.Atoi(ctx.QueryParam(name)); err == nil {
		return n
	}
	return def
}

// queryBool returns nil when the param is absent or not a boolean.
func queryBool(ctx echo.Context, name string) *bool {
	if b, err := strconv.ParseBool(ctx.QueryParam(name)); err == nil {
		return &b
	}
	return nil
}

func queryFloat(ctx echo.Context, name string) (float64, bool) {
	f, err := strconv.ParseFloat(ctx.QueryParam(name), 64)
	return f, err == nil
}

// queryList splits a comma separated param.
func queryList(ctx echo.Context, name string) []string {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil
	}
	var vals []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			vals = append(vals, v)
		}
	}
	return vals
}

// bindIDs reads a JSON array of ids from the body.
func bindIDs(ctx echo.Context) ([]string, error) {
	ids := make([]string, 0)
	if ctx.Request().ContentLength == 0 {
		return ids, nil
	}
	if err := json.NewDecoder(ctx.Request().Body).Decode(&ids); err != nil {
		return nil, badRequest("Se esperaba una lista de ids")
	}
	return ids, nil
}
