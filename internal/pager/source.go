package pager

import (
	"context"
	"errors"
)

// Unknown marks a total page count the source cannot report. Sessions with
// an unknown total can always go forward and never jump to the last page.
const Unknown = 0

// ErrEmptyPage is returned when a source yields a page with no records.
var ErrEmptyPage = errors.New("page is empty")

// Source resolves the records shown on a page.
type Source[T any] interface {
	// Page returns the records for page n (1-based) and the total page
	// count, or Unknown.
	Page(ctx context.Context, n int) ([]T, int, error)
}

// LocalSource pages over a result set fetched once.
type LocalSource[T any] struct {
	items   []T
	perPage int
}

// NewLocalSource splits items into pages of perPage records.
func NewLocalSource[T any](items []T, perPage int) *LocalSource[T] {
	if perPage < 1 {
		perPage = 1
	}
	return &LocalSource[T]{items: items, perPage: perPage}
}

// TotalPages returns the number of pages, at least 1.
func (l *LocalSource[T]) TotalPages() int {
	if len(l.items) == 0 {
		return 1
	}
	return (len(l.items) + l.perPage - 1) / l.perPage
}

func (l *LocalSource[T]) Page(_ context.Context, n int) ([]T, int, error) {
	total := l.TotalPages()
	if n < 1 || n > total || len(l.items) == 0 {
		return nil, total, ErrEmptyPage
	}
	start := (n - 1) * l.perPage
	end := min(start+l.perPage, len(l.items))
	return l.items[start:end], total, nil
}

// FetchFunc loads one page from a remote API.
type FetchFunc[T any] func(ctx context.Context, page int) ([]T, int, error)

// DynamicSource fetches pages on demand and holds only the current one.
type DynamicSource[T any] struct {
	fetch FetchFunc[T]

	page  int
	items []T
	total int
}

// NewDynamicSource creates a source backed by fetch.
func NewDynamicSource[T any](fetch FetchFunc[T]) *DynamicSource[T] {
	return &DynamicSource[T]{fetch: fetch}
}

// Prime stores an already fetched page so the first render does not refetch it.
func (d *DynamicSource[T]) Prime(page int, items []T, total int) *DynamicSource[T] {
	d.page, d.items, d.total = page, items, total
	return d
}

func (d *DynamicSource[T]) Page(ctx context.Context, n int) ([]T, int, error) {
	if d.page == n && len(d.items) > 0 {
		return d.items, d.total, nil
	}
	items, total, err := d.fetch(ctx, n)
	if err != nil {
		return nil, total, err
	}
	if len(items) == 0 {
		return nil, total, ErrEmptyPage
	}
	if total != Unknown && total < n {
		total = n
	}
	d.page, d.items, d.total = n, items, total
	return items, total, nil
}
