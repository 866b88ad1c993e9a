package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination is offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// SetLinkHeaders adds RFC 8288 Link headers for a paginated response. Geo
// list endpoints are meaningless without their lat/lng (and filter) query
// parameters, so everything except offset and limit is carried into the
// generated links unchanged.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	link := func(offset int, rel string) string {
		parts := []string{fmt.Sprintf("offset=%d", offset), fmt.Sprintf("limit=%d", p.Limit)}
		c.Context().QueryArgs().VisitAll(func(k, v []byte) {
			key := string(k)
			if key == "offset" || key == "limit" {
				return
			}
			parts = append(parts, key+"="+string(v))
		})
		return fmt.Sprintf(`<%s?%s>; rel=%q`, c.Path(), strings.Join(parts, "&"), rel)
	}

	links := []string{link(0, "first")}

	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, link(prev, "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}

	last := p.Total - p.Limit
	if last < 0 {
		last = 0
	}
	links = append(links, link(last, "last"))

	c.Set("Link", strings.Join(links, ", "))
}
