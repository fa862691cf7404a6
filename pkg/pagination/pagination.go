package pagination

import (
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many items any page can return.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers.
type Params struct {
	Limit  int
	Offset int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize clamps the offset at zero and normalizes the limit.
func (p Params) Normalize() Params {
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: NormalizeLimit(p.Limit), Offset: offset}
}

// Window slices a page out of a list the backend returned in full.
// An offset past the end yields an empty page with the real total.
func Window[T any](items []T, params Params) types.Page[T] {
	params = params.Normalize()
	total := len(items)

	start := params.Offset
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	page := make([]T, end-start)
	copy(page, items[start:end])
	return types.Page[T]{
		Items:  page,
		Offset: params.Offset,
		Limit:  params.Limit,
		Total:  total,
	}
}
