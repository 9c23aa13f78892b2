// Package catalogsql reads catalog rows from a database table through Bun.
package catalogsql

import (
	"context"
	"io"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-catalog/catalog"
)

const defaultBatchSize = 200

// Item is the table layout read by Source.
type Item struct {
	bun.BaseModel `bun:"table:catalog_items,alias:catalog_items"`

	Code        string `bun:",pk"`
	Description string `bun:",notnull"`
	Image       []byte `bun:"image"`
	ImageRef    string `bun:"image_ref"`
	Position    int    `bun:",notnull"`
}

// ImageResolver turns an image reference into image bytes.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

// Source reads catalog items ordered by position then code.
type Source struct {
	DB        *bun.DB
	Images    ImageResolver
	Logger    catalog.Logger
	BatchSize int
	// Filter narrows the select, e.g. to one product group.
	Filter func(*bun.SelectQuery) *bun.SelectQuery
}

var _ catalog.RowSource = (*Source)(nil)

// NewSource creates a Bun-backed row source.
func NewSource(db *bun.DB) *Source {
	return &Source{DB: db, BatchSize: defaultBatchSize}
}

// Open starts a paged read of the items table.
func (s *Source) Open(ctx context.Context) (catalog.RowIterator, error) {
	if s == nil || s.DB == nil {
		return nil, catalog.NewError(catalog.KindValidation, "catalog database not configured", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	batch := s.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	logger := s.Logger
	if logger == nil {
		logger = catalog.NopLogger{}
	}
	return &iterator{source: s, batch: batch, logger: logger}, nil
}

type iterator struct {
	source *Source
	batch  int
	logger catalog.Logger

	buf    []Item
	offset int
	done   bool
	closed bool
}

func (it *iterator) Next(ctx context.Context) (catalog.CatalogRow, error) {
	if it.closed {
		return catalog.CatalogRow{}, io.EOF
	}
	for len(it.buf) == 0 {
		if it.done {
			return catalog.CatalogRow{}, io.EOF
		}
		if err := it.fetch(ctx); err != nil {
			return catalog.CatalogRow{}, err
		}
	}

	item := it.buf[0]
	it.buf = it.buf[1:]
	return it.toRow(ctx, item), nil
}

func (it *iterator) fetch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var items []Item
	query := it.source.DB.NewSelect().Model(&items)
	if it.source.Filter != nil {
		query = it.source.Filter(query)
	}
	err := query.
		Order("position ASC", "code ASC").
		Limit(it.batch).
		Offset(it.offset).
		Scan(ctx)
	if err != nil {
		return catalog.NewError(catalog.KindInternal, "query catalog items", err)
	}
	it.offset += len(items)
	if len(items) < it.batch {
		it.done = true
	}
	it.buf = items
	return nil
}

func (it *iterator) toRow(ctx context.Context, item Item) catalog.CatalogRow {
	row := catalog.CatalogRow{Code: item.Code, Description: item.Description}
	if len(item.Image) > 0 {
		row.Image = item.Image
		return row
	}
	if item.ImageRef == "" || it.source.Images == nil {
		return row
	}
	data, err := it.source.Images.Resolve(ctx, item.ImageRef)
	if err != nil {
		it.logger.Debugf("catalog: item %s image unresolved: %v", item.Code, err)
		return row
	}
	row.Image = data
	return row
}

func (it *iterator) Close() error {
	it.closed = true
	it.buf = nil
	return nil
}
