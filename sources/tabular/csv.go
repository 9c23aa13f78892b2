package catalogtabular

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"

	"github.com/goliatone/go-catalog/catalog"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSource reads catalog rows from a CSV upload. A zero Delimiter is
// detected from the header line.
type CSVSource struct {
	Opener    Opener
	Delimiter rune
	Options   Options
}

// NewCSVSource creates a CSV row source.
func NewCSVSource(opener Opener, opts Options) *CSVSource {
	return &CSVSource{Opener: opener, Options: opts}
}

// Open reads the header and returns an iterator over the remaining records.
func (s *CSVSource) Open(ctx context.Context) (catalog.RowIterator, error) {
	if s == nil {
		return nil, catalog.NewError(catalog.KindValidation, "csv source is nil", nil)
	}
	rc, err := s.Opener.open(ctx)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(rc)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	delimiter := s.Delimiter
	if delimiter == 0 {
		delimiter = sniffDelimiter(br)
	}

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		_ = rc.Close()
		if errors.Is(err, io.EOF) {
			return nil, catalog.NewError(catalog.KindValidation, "csv upload has no header row", nil)
		}
		return nil, catalog.NewError(catalog.KindValidation, "read csv header", err)
	}

	mapper, err := newRowMapper(header, s.Options)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	return &csvIterator{reader: reader, closer: rc, mapper: mapper, line: 1}, nil
}

type csvIterator struct {
	reader *csv.Reader
	closer io.Closer
	mapper *rowMapper
	line   int
}

func (it *csvIterator) Next(ctx context.Context) (catalog.CatalogRow, error) {
	for {
		if err := ctx.Err(); err != nil {
			return catalog.CatalogRow{}, err
		}
		record, err := it.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return catalog.CatalogRow{}, io.EOF
			}
			return catalog.CatalogRow{}, catalog.NewError(catalog.KindValidation, "read csv record", err)
		}
		it.line++
		if row, ok := it.mapper.mapRecord(ctx, record, it.line); ok {
			return row, nil
		}
	}
}

func (it *csvIterator) Close() error {
	if it.closer == nil {
		return nil
	}
	err := it.closer.Close()
	it.closer = nil
	return err
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab in
// the first line. Spreadsheet exports in comma-decimal locales use ';'.
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(4096)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t'} {
		if n := bytes.Count(head, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}
