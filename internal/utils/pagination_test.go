package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPageResponse(t *testing.T) {
	page := NewPageResponse([]string{"a", "b"}, 12, 1, 5)

	assert.Equal(t, int64(12), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.Number)
	assert.False(t, page.First)
	assert.False(t, page.Last)

	last := NewPageResponse([]string{"k", "l"}, 12, 2, 5)
	assert.True(t, last.Last)
}

func TestNewPageResponseEmpty(t *testing.T) {
	page := NewPageResponse[int](nil, 0, 0, 10)

	assert.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
	assert.Equal(t, 0, page.TotalPages)
	assert.True(t, page.First)
	assert.True(t, page.Last)
}

func TestParsePageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{"", 0, DefaultPageSize},
		{"?page=2&size=25", 2, 25},
		{"?page=-1&size=0", 0, DefaultPageSize},
		{"?page=abc&size=500", 0, MaxPageSize},
		{"?page=9223372036854775807&size=100", MaxPage, MaxPageSize},
		{"?page=999999999999", MaxPage, DefaultPageSize},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/templates"+tc.query, nil)

		page, size := ParsePageParams(c)
		assert.Equal(t, tc.wantPage, page, tc.query)
		assert.Equal(t, tc.wantSize, size, tc.query)
	}
}
