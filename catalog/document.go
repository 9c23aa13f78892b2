package catalog

import (
	"bytes"
	"io"
)

// PrimitiveKind identifies a drawing operation.
type PrimitiveKind string

const (
	PrimitiveRect  PrimitiveKind = "rect"
	PrimitiveText  PrimitiveKind = "text"
	PrimitiveImage PrimitiveKind = "image"
)

// Role tags what a primitive belongs to.
type Role string

const (
	RoleTitle       Role = "title"
	RoleHeader      Role = "header"
	RoleImageBox    Role = "image_box"
	RoleImage       Role = "image"
	RoleCode        Role = "code"
	RoleDescription Role = "description"
)

// Primitive is one drawing operation placed on a page.
type Primitive struct {
	Kind PrimitiveKind
	Role Role
	X    float64
	Y    float64
	W    float64
	H    float64
	Text string
	Fill bool
	// Row is the source row index, -1 for title and header primitives.
	Row int
}

// ColumnPlacement is one header cell.
type ColumnPlacement struct {
	Label string
	X     float64
	Width float64
}

// HeaderPlacement records where a page header was drawn.
type HeaderPlacement struct {
	Y       float64
	Height  float64
	Columns []ColumnPlacement
}

// RowPlacement records where a catalog row landed on its page.
type RowPlacement struct {
	Index             int
	Top               float64
	Bottom            float64
	ImageBottom       float64
	CodeBottom        float64
	DescriptionBottom float64
	CodeLines         int
	DescriptionLines  int
	ImagePlaced       bool
}

// Page is a finalized page of the document.
type Page struct {
	Number     int
	Header     HeaderPlacement
	Primitives []Primitive
	Rows       []RowPlacement
}

// Document is a rendered catalog: the page layout plus its PDF encoding.
type Document struct {
	Layout LayoutConfig
	Pages  []Page
	pdf    []byte
}

// Bytes returns the PDF byte stream.
func (d *Document) Bytes() []byte {
	if d == nil {
		return nil
	}
	return d.pdf
}

// WriteTo writes the PDF byte stream to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if d == nil {
		return 0, NewError(KindInternal, "document is nil", nil)
	}
	return bytes.NewReader(d.pdf).WriteTo(w)
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// RowCount returns the number of row groups drawn across all pages.
func (d *Document) RowCount() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, page := range d.Pages {
		total += len(page.Rows)
	}
	return total
}

// HeaderCount returns how many header rows were drawn across all pages.
func (d *Document) HeaderCount() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, page := range d.Pages {
		if len(page.Header.Columns) > 0 {
			total++
		}
	}
	return total
}
