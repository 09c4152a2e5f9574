package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageResponse is a zero-based page of results.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPageResponse wraps one page of content with its position in the full result.
func NewPageResponse[T any](content []T, total int64, page, size int) PageResponse[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return PageResponse[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}

// MaxPage keeps page*size inside an int32 offset.
const MaxPage = math.MaxInt32 / MaxPageSize

// ParsePageParams reads the zero-based page and the page size from the query.
// Invalid values fall back to the first page and the default size; the size
// is capped at MaxPageSize and the page at MaxPage.
func ParsePageParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}
	if page > MaxPage {
		page = MaxPage
	}
	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
