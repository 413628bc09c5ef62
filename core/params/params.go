package params

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"go-event-cms/core/constants"
)

// QueryParams carries the common list-endpoint query string values.
type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

func NewQueryParams(c echo.Context) QueryParams {
	p := QueryParams{
		PageNumber: 1,
		PageSize:   constants.DefaultPageSize,
		Search:     c.QueryParam("search"),
	}

	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		p.PageNumber = n
	}
	if n, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && n > 0 {
		p.PageSize = n
	}
	if p.PageSize > constants.MaxPageSize {
		p.PageSize = constants.MaxPageSize
	}

	return p
}

func (p QueryParams) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}
