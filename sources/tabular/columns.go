// Package catalogtabular reads catalog rows from CSV and XLSX uploads.
//
// Header cells are matched against column aliases so the different sheet
// layouts in use (English, Dutch, Spanish captions, Base64 or URL image
// columns) all normalize into catalog.CatalogRow.
package catalogtabular

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/goliatone/go-catalog/catalog"
)

// ColumnMap lists accepted header captions per catalog field.
type ColumnMap struct {
	Code        []string
	Description []string
	Image       []string
}

// DefaultColumnMap covers the sheet layouts seen in catalog uploads.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		Code:        []string{"code", "codigo", "código", "gereedschapscode", "artikelcode", "nummer", "item code", "id"},
		Description: []string{"description", "omschrijving", "beschrijving", "descripcion", "descripción", "naam", "name"},
		Image:       []string{"image", "afbeelding", "foto", "photo", "picture", "imagen", "image url", "image_url", "image base64", "image_base64", "afbeelding url"},
	}
}

// ImageResolver turns an image cell into image bytes.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

// Options configures how records become catalog rows.
type Options struct {
	Columns ColumnMap
	Images  ImageResolver
	Logger  catalog.Logger
}

type columnIndex struct {
	code        int
	description int
	image       int
}

// resolveColumns matches header cells to fields. The first matching column
// wins for each field.
func resolveColumns(header []string, cols ColumnMap) (columnIndex, error) {
	idx := columnIndex{code: -1, description: -1, image: -1}
	match := func(cell string, aliases []string) bool {
		key := normalizeHeader(cell)
		for _, alias := range aliases {
			if key != "" && key == normalizeHeader(alias) {
				return true
			}
		}
		return false
	}

	for i, cell := range header {
		switch {
		case idx.code < 0 && match(cell, cols.Code):
			idx.code = i
		case idx.description < 0 && match(cell, cols.Description):
			idx.description = i
		case idx.image < 0 && match(cell, cols.Image):
			idx.image = i
		}
	}

	var missing []string
	if idx.code < 0 {
		missing = append(missing, "code")
	}
	if idx.description < 0 {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return idx, catalog.NewError(catalog.KindValidation, fmt.Sprintf("missing %s column in header %q", strings.Join(missing, " and "), header), nil)
	}
	return idx, nil
}

func normalizeHeader(cell string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(cell)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// rowMapper converts records into catalog rows.
type rowMapper struct {
	idx    columnIndex
	images ImageResolver
	logger catalog.Logger
}

func newRowMapper(header []string, opts Options) (*rowMapper, error) {
	cols := opts.Columns
	if len(cols.Code) == 0 && len(cols.Description) == 0 && len(cols.Image) == 0 {
		cols = DefaultColumnMap()
	}
	idx, err := resolveColumns(header, cols)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = catalog.NopLogger{}
	}
	return &rowMapper{idx: idx, images: opts.Images, logger: logger}, nil
}

// mapRecord builds a row; ok is false for blank records. line is used for
// log messages only.
func (m *rowMapper) mapRecord(ctx context.Context, record []string, line int) (catalog.CatalogRow, bool) {
	row := catalog.CatalogRow{
		Code:        cellAt(record, m.idx.code),
		Description: cellAt(record, m.idx.description),
	}
	if row.Code == "" && row.Description == "" {
		return catalog.CatalogRow{}, false
	}

	if ref := cellAt(record, m.idx.image); ref != "" && m.images != nil {
		data, err := m.images.Resolve(ctx, ref)
		if err != nil {
			m.logger.Debugf("catalog: line %d image unresolved: %v", line, err)
		} else {
			row.Image = data
		}
	}
	return row, true
}

func (m *rowMapper) hasImageColumn() bool {
	return m.idx.image >= 0
}

func cellAt(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	value := strings.TrimSpace(record[i])
	switch strings.ToLower(value) {
	case "nan", "<na>", "none", "null":
		return ""
	}
	return value
}
