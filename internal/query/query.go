// Package query turns recognized list parameters into a storage-neutral
// filter/sort/skip/limit description and pages through results with it.
package query

import (
	"context"
	"errors"
	"fmt"
)

// MaxLimit bounds the page size a client may request.
const MaxLimit = 100

var (
	ErrInvalidQuery   = errors.New("invalid query")
	ErrSearchRequired = errors.New("search query is required")
)

// ParamError reports which parameter was rejected. It unwraps to ErrInvalidQuery.
type ParamError struct {
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid query parameter %q: %s", e.Param, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidQuery }

type Op int

const (
	// OpEq is an exact match.
	OpEq Op = iota
	// OpContainsFold is a case-insensitive substring match on a text field.
	OpContainsFold
	// OpHasFold matches when any element of a list field contains the value, ignoring case.
	OpHasFold
)

type Cond struct {
	Field string
	Op    Op
	Value any
}

// Filter: All 中条件取 AND；Any 非空时其中至少一个成立
type Filter struct {
	All []Cond
	Any []Cond
}

func (f Filter) Empty() bool { return len(f.All) == 0 && len(f.Any) == 0 }

type Sort struct {
	Field string
	Desc  bool
}

type Query struct {
	Filter Filter
	Sort   []Sort
	Page   int
	Skip   int
	Limit  int
}

// Finder is the capability a collection must offer to be paged.
type Finder[T any] interface {
	Find(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, f Filter) (int64, error)
}
