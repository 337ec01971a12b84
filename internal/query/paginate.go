package query

import (
	"context"
	"fmt"
)

type Page[T any] struct {
	Items []T
	Count int
	Total int64
	Page  int
	Pages int
	Limit int
}

// Paginate runs q against f and counts every match of q.Filter regardless of
// skip/limit. Asking for a page past the end yields no items, not an error.
func Paginate[T any](ctx context.Context, f Finder[T], q Query) (Page[T], error) {
	items, err := f.Find(ctx, q)
	if err != nil {
		return Page[T]{}, fmt.Errorf("find: %w", err)
	}
	total, err := f.Count(ctx, q.Filter)
	if err != nil {
		return Page[T]{}, fmt.Errorf("count: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return Page[T]{
		Items: items,
		Count: len(items),
		Total: total,
		Page:  q.Page,
		Pages: TotalPages(total, q.Limit),
		Limit: q.Limit,
	}, nil
}

// TotalPages is ceil(total/limit), and 0 for an empty collection.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
