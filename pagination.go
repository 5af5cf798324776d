package users

import "github.com/gofiber/fiber/v2"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is the paginated list envelope.
type Page struct {
	Content    any `json:"content"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalPages int `json:"totalPages"`
}

// ParsePagination reads page and size from the query string. Pages are
// zero based; anything out of range falls back to the defaults instead
// of failing the request.
func ParsePagination(c *fiber.Ctx) (page, size int) {
	page = c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}

	size = c.QueryInt("size", DefaultPageSize)
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}

	return page, size
}

// TotalPages computes the page count for a total row count.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
