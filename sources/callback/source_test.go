package catalogcallback

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/goliatone/go-catalog/catalog"
)

func TestSource_OpenCallsFunc(t *testing.T) {
	called := false
	rows := []catalog.CatalogRow{{Code: "H-01", Description: "Hammer"}}
	source := NewSource(func(ctx context.Context) (catalog.RowIterator, error) {
		_ = ctx
		called = true
		return catalog.SliceSource(rows).Open(ctx)
	})

	it, err := source.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	row, err := it.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if row.Code != "H-01" {
		t.Fatalf("expected row data")
	}
	if !called {
		t.Fatalf("expected callback to be invoked")
	}
}

func TestSource_NilFunc(t *testing.T) {
	if _, err := NewSource(nil).Open(context.Background()); catalog.KindFromError(err) != catalog.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFuncIterator_NextNil(t *testing.T) {
	it := &FuncIterator{}
	if _, err := it.Next(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if err := it.Close(); err != nil {
		t.Fatalf("expected nil close, got %v", err)
	}
}

func TestSource_FeedsExporter(t *testing.T) {
	remaining := 3
	closed := false
	source := NewSource(func(ctx context.Context) (catalog.RowIterator, error) {
		return &FuncIterator{
			NextFunc: func(ctx context.Context) (catalog.CatalogRow, error) {
				if remaining == 0 {
					return catalog.CatalogRow{}, io.EOF
				}
				remaining--
				return catalog.CatalogRow{Code: "T", Description: "Tool"}, nil
			},
			CloseFunc: func() error {
				closed = true
				return nil
			},
		}, nil
	})

	buf := &bytes.Buffer{}
	result, err := catalog.NewExporter().Run(context.Background(), catalog.ExportRequest{Source: source, Output: buf})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d", result.Rows)
	}
	if !closed {
		t.Fatalf("expected iterator closed")
	}
}
