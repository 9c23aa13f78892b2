// Package catalogcallback adapts plain functions into catalog row sources,
// for callers that already hold normalized rows from another system.
package catalogcallback

import (
	"context"

	"github.com/goliatone/go-catalog/catalog"
)

// SourceFunc builds a RowIterator.
type SourceFunc func(ctx context.Context) (catalog.RowIterator, error)

// Source wraps a callback function as a RowSource.
type Source struct {
	fn SourceFunc
}

// NewSource creates a callback-based RowSource.
func NewSource(fn SourceFunc) *Source {
	return &Source{fn: fn}
}

// Open delegates to the configured callback.
func (s *Source) Open(ctx context.Context) (catalog.RowIterator, error) {
	if s == nil || s.fn == nil {
		return nil, catalog.NewError(catalog.KindValidation, "callback source requires a function", nil)
	}
	return s.fn(ctx)
}

// IteratorFunc yields a row or io.EOF.
type IteratorFunc func(ctx context.Context) (catalog.CatalogRow, error)

// FuncIterator wraps a function into a RowIterator.
type FuncIterator struct {
	NextFunc  IteratorFunc
	CloseFunc func() error
}

func (it *FuncIterator) Next(ctx context.Context) (catalog.CatalogRow, error) {
	if it == nil || it.NextFunc == nil {
		return catalog.CatalogRow{}, catalog.NewError(catalog.KindValidation, "iterator requires NextFunc", nil)
	}
	return it.NextFunc(ctx)
}

func (it *FuncIterator) Close() error {
	if it == nil || it.CloseFunc == nil {
		return nil
	}
	return it.CloseFunc()
}
