package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/devShreyas21/studentPortal/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field1,-field2` (a leading "-" means descending).
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// pathID reads a positive id written in canonical decimal (no sign, no leading zero) from the
// `name` path param. Anything else is a 404.
func pathID(ctx echo.Context, name string) (int64, error) {
	val := ctx.Param(name)
	if val == "" || val[0] == '0' || strings.IndexFunc(val, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, errHttpNotFound
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// queryInt reads an integer query param, falling back to `def` when absent or malformed.
func queryInt(ctx echo.Context, name string, def int) int {
	val := ctx.QueryParam(name)
	if val == "" {
		return def
	}
	n, err := cast.ToIntE(val)
	if err != nil {
		return def
	}
	return n
}
