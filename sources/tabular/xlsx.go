package catalogtabular

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-catalog/catalog"
	"github.com/xuri/excelize/v2"
)

// XLSXSource reads catalog rows from a workbook sheet. An empty Sheet
// selects the first sheet. When the image cell is empty, a picture
// anchored in that cell is used instead.
type XLSXSource struct {
	Opener  Opener
	Sheet   string
	Options Options
}

// NewXLSXSource creates an XLSX row source.
func NewXLSXSource(opener Opener, opts Options) *XLSXSource {
	return &XLSXSource{Opener: opener, Options: opts}
}

// Open loads the workbook and returns an iterator over the sheet rows.
func (s *XLSXSource) Open(ctx context.Context) (catalog.RowIterator, error) {
	if s == nil {
		return nil, catalog.NewError(catalog.KindValidation, "xlsx source is nil", nil)
	}
	rc, err := s.Opener.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	file, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, catalog.NewError(catalog.KindValidation, "open xlsx upload", err)
	}

	sheet := s.Sheet
	if sheet == "" {
		sheet = file.GetSheetName(0)
	}
	if index, err := file.GetSheetIndex(sheet); err != nil || index < 0 {
		_ = file.Close()
		return nil, catalog.NewError(catalog.KindNotFound, fmt.Sprintf("sheet %q not found", sheet), err)
	}

	rows, err := file.Rows(sheet)
	if err != nil {
		_ = file.Close()
		return nil, catalog.NewError(catalog.KindValidation, "read xlsx rows", err)
	}

	it := &xlsxIterator{file: file, rows: rows, sheet: sheet}
	if !rows.Next() {
		_ = it.Close()
		return nil, catalog.NewError(catalog.KindValidation, "xlsx sheet has no header row", rows.Error())
	}
	header, err := rows.Columns()
	if err != nil {
		_ = it.Close()
		return nil, catalog.NewError(catalog.KindValidation, "read xlsx header", err)
	}
	it.line = 1

	it.mapper, err = newRowMapper(header, s.Options)
	if err != nil {
		_ = it.Close()
		return nil, err
	}
	return it, nil
}

type xlsxIterator struct {
	file   *excelize.File
	rows   *excelize.Rows
	sheet  string
	mapper *rowMapper
	line   int
}

func (it *xlsxIterator) Next(ctx context.Context) (catalog.CatalogRow, error) {
	if it.rows == nil {
		return catalog.CatalogRow{}, io.EOF
	}
	for it.rows.Next() {
		if err := ctx.Err(); err != nil {
			return catalog.CatalogRow{}, err
		}
		it.line++
		record, err := it.rows.Columns()
		if err != nil {
			return catalog.CatalogRow{}, catalog.NewError(catalog.KindValidation, "read xlsx row", err)
		}
		row, ok := it.mapper.mapRecord(ctx, record, it.line)
		if !ok {
			continue
		}
		if !row.HasImage() && it.mapper.hasImageColumn() {
			row.Image = it.anchoredPicture()
		}
		return row, nil
	}
	if err := it.rows.Error(); err != nil {
		return catalog.CatalogRow{}, catalog.NewError(catalog.KindValidation, "read xlsx rows", err)
	}
	return catalog.CatalogRow{}, io.EOF
}

func (it *xlsxIterator) anchoredPicture() []byte {
	cell, err := excelize.CoordinatesToCellName(it.mapper.idx.image+1, it.line)
	if err != nil {
		return nil
	}
	pictures, err := it.file.GetPictures(it.sheet, cell)
	if err != nil {
		it.mapper.logger.Debugf("catalog: line %d picture lookup failed: %v", it.line, err)
		return nil
	}
	for _, pic := range pictures {
		if len(pic.File) > 0 {
			return pic.File
		}
	}
	return nil
}

func (it *xlsxIterator) Close() error {
	var err error
	if it.rows != nil {
		err = it.rows.Close()
		it.rows = nil
	}
	if it.file != nil {
		if closeErr := it.file.Close(); err == nil {
			err = closeErr
		}
		it.file = nil
	}
	return err
}
