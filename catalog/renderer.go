package catalog

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	cellInset     = 1.0
	thumbnailType = "JPG"
)

// Renderer lays out catalog rows as a three column PDF table.
// The zero value is ready to use.
type Renderer struct {
	Logger  Logger
	Creator string
}

// Render lays out rows with cfg and returns the finished document. Invalid
// layouts fail with a KindConfig error before any drawing. Rows never fail:
// missing or undecodable images leave an empty image box. The result holds
// at least one page with a header, even for no rows.
func (r Renderer) Render(ctx context.Context, rows []CatalogRow, cfg LayoutConfig) (*Document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	state := newRenderState(cfg, loggerOrNop(r.Logger), r.Creator)
	state.openPage()
	if title := strings.TrimSpace(cfg.Title); title != "" {
		state.drawTitle(title)
	}
	state.drawHeader()

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if state.needsBreak() {
			state.openPage()
			state.drawHeader()
		}
		state.drawRow(i, row)
	}

	return state.close()
}

// renderState is the mutable cursor of one render call.
type renderState struct {
	pdf     *fpdf.Fpdf
	cfg     LayoutConfig
	font    fontFace
	logger  Logger
	doc     *Document
	page    *Page
	columns []ColumnPlacement
	x       float64
	y       float64
}

func newRenderState(cfg LayoutConfig, logger Logger, creator string) *renderState {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight},
	})
	pdf.SetMargins(cfg.Margin, cfg.Margin, cfg.Margin)
	pdf.SetAutoPageBreak(false, cfg.BottomMargin)
	pdf.SetCellMargin(cellInset)
	if creator != "" {
		pdf.SetCreator(creator, true)
	}
	if cfg.Title != "" {
		pdf.SetTitle(cfg.Title, true)
	}

	return &renderState{
		pdf:     pdf,
		cfg:     cfg,
		font:    loadFont(pdf, cfg, logger),
		logger:  logger,
		doc:     &Document{Layout: cfg},
		columns: cfg.Columns(),
	}
}

func (s *renderState) openPage() {
	s.finishPage()
	s.pdf.AddPage()
	s.font.use(s.pdf, "", s.cfg.FontSize)
	s.page = &Page{Number: len(s.doc.Pages) + 1}
	s.x = s.cfg.Margin
	s.y = s.cfg.Margin
}

func (s *renderState) finishPage() {
	if s.page == nil {
		return
	}
	s.doc.Pages = append(s.doc.Pages, *s.page)
	s.page = nil
}

func (s *renderState) needsBreak() bool {
	return s.y+s.cfg.ImageHeight+s.cfg.RowSpacing > s.cfg.ContentBottom()
}

func (s *renderState) drawTitle(title string) {
	width := s.cfg.PageWidth - 2*s.cfg.Margin
	s.font.use(s.pdf, s.font.headerStyle, s.cfg.FontSize)
	s.pdf.SetXY(s.x, s.y)
	s.pdf.CellFormat(width, s.cfg.LineHeight, s.font.translate(title), "", 0, "C", false, 0, "")
	s.font.use(s.pdf, "", s.cfg.FontSize)

	s.record(Primitive{Kind: PrimitiveText, Role: RoleTitle, X: s.x, Y: s.y, W: width, H: s.cfg.LineHeight, Text: title, Row: -1})
	s.y += s.cfg.LineHeight + titleGap
}

func (s *renderState) drawHeader() {
	fill := s.cfg.HeaderFill
	s.pdf.SetFillColor(fill.R, fill.G, fill.B)
	s.font.use(s.pdf, s.font.headerStyle, s.cfg.FontSize)

	columns := make([]ColumnPlacement, len(s.columns))
	copy(columns, s.columns)
	for _, col := range columns {
		s.pdf.SetXY(col.X, s.y)
		s.pdf.CellFormat(col.Width, s.cfg.LineHeight, s.font.translate(col.Label), "1", 0, "C", true, 0, "")
		s.record(Primitive{Kind: PrimitiveRect, Role: RoleHeader, X: col.X, Y: s.y, W: col.Width, H: s.cfg.LineHeight, Fill: true, Row: -1})
		s.record(Primitive{Kind: PrimitiveText, Role: RoleHeader, X: col.X, Y: s.y, W: col.Width, H: s.cfg.LineHeight, Text: col.Label, Row: -1})
	}
	s.font.use(s.pdf, "", s.cfg.FontSize)

	s.page.Header = HeaderPlacement{Y: s.y, Height: s.cfg.LineHeight, Columns: columns}
	s.y += s.cfg.LineHeight
	s.x = s.cfg.Margin
}

func (s *renderState) drawRow(index int, row CatalogRow) {
	top := s.y
	imageCol, codeCol, descCol := s.columns[0], s.columns[1], s.columns[2]

	imageBottom, placed := s.drawImageBox(index, imageCol.X, top, row.Image)
	codeBottom, codeLines := s.drawTextCell(index, RoleCode, codeCol, top, row.Code)
	descBottom, descLines := s.drawTextCell(index, RoleDescription, descCol, top, row.Description)

	bottom := math.Max(imageBottom, math.Max(codeBottom, descBottom))
	s.page.Rows = append(s.page.Rows, RowPlacement{
		Index:             index,
		Top:               top,
		Bottom:            bottom,
		ImageBottom:       imageBottom,
		CodeBottom:        codeBottom,
		DescriptionBottom: descBottom,
		CodeLines:         codeLines,
		DescriptionLines:  descLines,
		ImagePlaced:       placed,
	})

	s.y = bottom + s.cfg.RowSpacing
	s.x = s.cfg.Margin
}

// drawImageBox outlines the fixed size image box and places the thumbnail
// inside it when the bytes decode.
func (s *renderState) drawImageBox(index int, x, y float64, raw []byte) (float64, bool) {
	w, h := s.cfg.ImageWidth, s.cfg.ImageHeight
	s.pdf.Rect(x, y, w, h, "D")
	s.record(Primitive{Kind: PrimitiveRect, Role: RoleImageBox, X: x, Y: y, W: w, H: h, Row: index})

	if len(raw) == 0 {
		return y + h, false
	}

	thumb, err := buildThumbnail(raw, w, h, s.cfg.ImageDPI, s.cfg.PreserveAspect)
	if err != nil {
		s.logger.Debugf("catalog: row %d image skipped: %v", index, err)
		return y + h, false
	}

	name := fmt.Sprintf("row-%d", index)
	opts := fpdf.ImageOptions{ImageType: thumbnailType}
	info := s.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(thumb.data))
	if info == nil || s.pdf.Err() {
		s.logger.Debugf("catalog: row %d image rejected: %v", index, s.pdf.Error())
		s.pdf.ClearError()
		return y + h, false
	}

	ix, iy := x+thumb.x, y+thumb.y
	s.pdf.ImageOptions(name, ix, iy, thumb.w, thumb.h, false, opts, 0, "")
	if s.pdf.Err() {
		s.logger.Debugf("catalog: row %d image not placed: %v", index, s.pdf.Error())
		s.pdf.ClearError()
		return y + h, false
	}
	s.record(Primitive{Kind: PrimitiveImage, Role: RoleImage, X: ix, Y: iy, W: thumb.w, H: thumb.h, Row: index})
	return y + h, true
}

// drawTextCell writes wrapped text inside a bordered cell whose height
// follows the text.
func (s *renderState) drawTextCell(index int, role Role, col ColumnPlacement, y float64, text string) (float64, int) {
	lh := s.cfg.TextLineHeight
	lines := wrapText(text, col.Width-2*cellInset, s.measure)
	for i, line := range lines {
		s.pdf.SetXY(col.X, y+float64(i)*lh)
		s.pdf.CellFormat(col.Width, lh, s.font.translate(line), "", 0, "L", false, 0, "")
	}
	height := float64(len(lines)) * lh
	s.pdf.Rect(col.X, y, col.Width, height, "D")

	s.record(Primitive{Kind: PrimitiveRect, Role: role, X: col.X, Y: y, W: col.Width, H: height, Row: index})
	s.record(Primitive{Kind: PrimitiveText, Role: role, X: col.X, Y: y, W: col.Width, H: height, Text: strings.Join(lines, "\n"), Row: index})
	return y + height, len(lines)
}

func (s *renderState) measure(text string) float64 {
	return s.pdf.GetStringWidth(s.font.translate(text))
}

func (s *renderState) record(p Primitive) {
	s.page.Primitives = append(s.page.Primitives, p)
}

func (s *renderState) close() (*Document, error) {
	s.finishPage()

	var buf bytes.Buffer
	if err := s.pdf.Output(&buf); err != nil {
		return nil, NewError(KindInternal, "write pdf", err)
	}
	s.doc.pdf = buf.Bytes()
	return s.doc, nil
}
