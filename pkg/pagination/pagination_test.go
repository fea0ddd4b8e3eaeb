package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		want     Params
	}{
		{"defaults for zero values", 0, 0, Params{Page: 1, PageSize: DefaultPageSize}},
		{"negative values", -3, -10, Params{Page: 1, PageSize: DefaultPageSize}},
		{"valid values pass through", 3, 25, Params{Page: 3, PageSize: 25}},
		{"oversized page size is capped", 1, 5000, Params{Page: 1, PageSize: MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.page, tt.pageSize))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 40, Params{Page: 5, PageSize: 10}.Offset())
}

func TestNewMetadata(t *testing.T) {
	tests := []struct {
		name  string
		total int
		p     Params
		want  Metadata
	}{
		{
			name:  "empty set has zero pages",
			total: 0,
			p:     Params{Page: 1, PageSize: 10},
			want:  Metadata{Total: 0, Page: 1, PageSize: 10, Pages: 0},
		},
		{
			name:  "exact multiple",
			total: 20,
			p:     Params{Page: 1, PageSize: 10},
			want:  Metadata{Total: 20, Page: 1, PageSize: 10, Pages: 2},
		},
		{
			name:  "partial last page rounds up",
			total: 21,
			p:     Params{Page: 1, PageSize: 10},
			want:  Metadata{Total: 21, Page: 1, PageSize: 10, Pages: 3},
		},
		{
			name:  "single item",
			total: 1,
			p:     Params{Page: 1, PageSize: 10},
			want:  Metadata{Total: 1, Page: 1, PageSize: 10, Pages: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMetadata(tt.total, tt.p))
		})
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	t.Run("first page", func(t *testing.T) {
		got, meta := Page(items, Params{Page: 1, PageSize: 3})
		assert.Equal(t, []int{1, 2, 3}, got)
		assert.Equal(t, Metadata{Total: 7, Page: 1, PageSize: 3, Pages: 3}, meta)
	})

	t.Run("partial last page", func(t *testing.T) {
		got, _ := Page(items, Params{Page: 3, PageSize: 3})
		assert.Equal(t, []int{7}, got)
	})

	t.Run("page past the end is empty, not an error", func(t *testing.T) {
		got, meta := Page(items, Params{Page: 9, PageSize: 3})
		assert.Empty(t, got)
		assert.Equal(t, 3, meta.Pages)
	})

	t.Run("empty input", func(t *testing.T) {
		got, meta := Page([]int{}, Params{Page: 1, PageSize: 10})
		assert.Empty(t, got)
		assert.Equal(t, 0, meta.Pages)
	})
}
