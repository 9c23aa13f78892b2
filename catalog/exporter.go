package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

const contentTypePDF = "application/pdf"

// ExportRequest describes one catalog export.
type ExportRequest struct {
	// Source is drained when Rows is nil.
	Source   RowSource
	Rows     []CatalogRow
	Layout   *LayoutConfig
	Output   io.Writer
	Filename string
	// Store persists the PDF in the exporter's artifact store.
	Store bool
}

// ExportResult captures a completed export.
type ExportResult struct {
	ID       string
	Filename string
	Rows     int
	Pages    int
	Bytes    int64
	Artifact *ArtifactRef
}

// Exporter reads rows, renders the catalog and delivers the PDF.
type Exporter struct {
	Renderer    Renderer
	Store       ArtifactStore
	Logger      Logger
	MaxRows     int
	Now         func() time.Time
	IDGenerator func() string
}

// NewExporter creates an exporter with default collaborators.
func NewExporter() *Exporter {
	return &Exporter{
		Logger:      NopLogger{},
		Now:         time.Now,
		IDGenerator: uuid.NewString,
	}
}

// Run executes an export request.
func (e *Exporter) Run(ctx context.Context, req ExportRequest) (ExportResult, error) {
	if e == nil {
		return ExportResult{}, AsGoError(NewError(KindInternal, "exporter is nil", nil))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.IDGenerator == nil {
		e.IDGenerator = uuid.NewString
	}
	logger := loggerOrNop(e.Logger)

	if req.Output == nil && !req.Store {
		return ExportResult{}, AsGoError(NewError(KindValidation, "output writer or store is required", nil))
	}
	if req.Store && e.Store == nil {
		return ExportResult{}, AsGoError(NewError(KindValidation, "artifact store is not configured", nil))
	}

	layout := DefaultLayout()
	if req.Layout != nil {
		layout = *req.Layout
	}

	id := e.IDGenerator()
	now := e.Now()
	filename, err := renderFilename(req.Filename, id, layout.Title, now)
	if err != nil {
		return ExportResult{}, AsGoError(err)
	}

	rows := req.Rows
	if rows == nil {
		rows, err = e.collect(ctx, req.Source)
		if err != nil {
			logger.Errorf("catalog export %s: read rows: %v", id, err)
			return ExportResult{}, AsGoError(err)
		}
	}

	renderer := e.Renderer
	if renderer.Logger == nil {
		renderer.Logger = logger
	}
	doc, err := renderer.Render(ctx, rows, layout)
	if err != nil {
		logger.Errorf("catalog export %s: render: %v", id, err)
		return ExportResult{}, AsGoError(err)
	}

	result := ExportResult{
		ID:       id,
		Filename: filename,
		Rows:     doc.RowCount(),
		Pages:    doc.PageCount(),
		Bytes:    int64(len(doc.Bytes())),
	}

	if req.Output != nil {
		if _, err := doc.WriteTo(req.Output); err != nil {
			return result, AsGoError(NewError(KindInternal, "write catalog", err))
		}
	}

	if req.Store {
		ref, err := e.Store.Put(ctx, id+"/"+filename, bytes.NewReader(doc.Bytes()), ArtifactMeta{
			ContentType: contentTypePDF,
			Filename:    filename,
			Pages:       result.Pages,
			Rows:        result.Rows,
			CreatedAt:   now,
		})
		if err != nil {
			logger.Errorf("catalog export %s: store: %v", id, err)
			return result, AsGoError(err)
		}
		result.Artifact = &ref
	}

	logger.Infof("catalog export %s: %d rows, %d pages, %d bytes", id, result.Rows, result.Pages, result.Bytes)
	return result, nil
}

func (e *Exporter) collect(ctx context.Context, source RowSource) ([]CatalogRow, error) {
	if source == nil {
		return nil, NewError(KindValidation, "row source is required", nil)
	}
	it, err := source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = it.Close()
	}()

	rows := []CatalogRow{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := it.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		rows = append(rows, row)
		if e.MaxRows > 0 && len(rows) > e.MaxRows {
			return nil, NewError(KindValidation, "max rows exceeded", nil)
		}
	}
	return rows, nil
}

// SliceSource serves rows from memory.
type SliceSource []CatalogRow

// Open returns an iterator over a copy of the slice header.
func (s SliceSource) Open(ctx context.Context) (RowIterator, error) {
	_ = ctx
	return &sliceIterator{rows: s}, nil
}

type sliceIterator struct {
	rows  []CatalogRow
	index int
}

func (it *sliceIterator) Next(ctx context.Context) (CatalogRow, error) {
	_ = ctx
	if it.index >= len(it.rows) {
		return CatalogRow{}, io.EOF
	}
	row := it.rows[it.index]
	it.index++
	return row, nil
}

func (it *sliceIterator) Close() error { return nil }
