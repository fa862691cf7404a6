package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	assert.Equal(t, 10, NormalizeLimit(10))
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Window(items, Params{Limit: 2, Offset: 1})
	assert.Equal(t, []int{2, 3}, page.Items)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 1, page.Offset)

	tail := Window(items, Params{Limit: 10, Offset: 4})
	assert.Equal(t, []int{5}, tail.Items)

	past := Window(items, Params{Limit: 2, Offset: 9})
	assert.Empty(t, past.Items)
	assert.NotNil(t, past.Items)
	assert.Equal(t, 5, past.Total)

	negative := Window(items, Params{Limit: 2, Offset: -1})
	assert.Equal(t, []int{1, 2}, negative.Items)
	assert.Equal(t, 0, negative.Offset)
}

func TestWindowCopiesItems(t *testing.T) {
	items := []string{"a", "b"}
	page := Window(items, Params{Limit: 2})
	page.Items[0] = "z"
	assert.Equal(t, "a", items[0])
}
