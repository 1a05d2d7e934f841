package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 20}, Pagination{}.Normalize())
	assert.Equal(t, Pagination{Page: 3, Limit: 100}, Pagination{Page: 3, Limit: 500}.Normalize())
	assert.Equal(t, Pagination{Page: 1, Limit: 5}, Pagination{Page: -2, Limit: 5}.Normalize())
}

func TestMeta(t *testing.T) {
	cases := []struct {
		name  string
		p     Pagination
		total int64
		pages int
	}{
		{name: "empty", p: Pagination{}, total: 0, pages: 0},
		{name: "exact", p: Pagination{Limit: 10}, total: 30, pages: 3},
		{name: "partial last page", p: Pagination{Limit: 10}, total: 31, pages: 4},
		{name: "capped limit", p: Pagination{Limit: 1000}, total: 250, pages: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := tc.p.Meta(tc.total)
			assert.Equal(t, tc.pages, meta.TotalPages)
			assert.Equal(t, tc.total, meta.Total)
			assert.LessOrEqual(t, meta.Limit, MaxLimit)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{}.Offset())
	assert.Equal(t, 40, Pagination{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, math.MaxInt, Pagination{Page: math.MaxInt, Limit: 20}.Offset())
	assert.Equal(t, math.MaxInt, Pagination{Page: math.MaxInt / 2, Limit: MaxLimit}.Offset())
	assert.GreaterOrEqual(t, Pagination{Page: math.MaxInt / MaxLimit, Limit: MaxLimit}.Offset(), 0)
}

func TestNewPageNeverNil(t *testing.T) {
	page := NewPage[int](nil, Pagination{}, 0)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 1, page.Meta.Page)
}
