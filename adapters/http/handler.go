// Package cataloghttp exposes catalog exports over net/http. A multipart
// upload of a CSV or XLSX sheet is turned into a PDF catalog, either streamed
// back directly or kept in the exporter's artifact store for later download.
package cataloghttp

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-catalog/catalog"
	catalogtabular "github.com/goliatone/go-catalog/sources/tabular"
)

const (
	defaultBasePath       = "/catalogs"
	defaultMaxUploadBytes = 32 << 20
)

// Config configures the HTTP adapter.
type Config struct {
	Exporter       *catalog.Exporter
	Layout         *catalog.LayoutConfig
	Columns        catalogtabular.ColumnMap
	Images         catalogtabular.ImageResolver
	BasePath       string
	MaxUploadBytes int64
	Logger         catalog.Logger
}

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	cfg Config
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Exporter == nil {
		cfg.Exporter = catalog.NewExporter()
	}
	if cfg.BasePath == "" {
		cfg.BasePath = defaultBasePath
	}
	cfg.BasePath = "/" + strings.Trim(cfg.BasePath, "/")
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = catalog.NopLogger{}
	}
	return &Handler{cfg: cfg}
}

// RegisterRoutes registers handlers on a compatible router.
func (h *Handler) RegisterRoutes(router any) {
	switch r := router.(type) {
	case interface{ Handle(string, http.Handler) }:
		r.Handle(h.basePath(), h)
		r.Handle(h.basePath()+"/", h)
	case interface {
		HandleFunc(string, func(http.ResponseWriter, *http.Request))
	}:
		r.HandleFunc(h.basePath(), h.ServeHTTP)
		r.HandleFunc(h.basePath()+"/", h.ServeHTTP)
	}
}

// ServeHTTP routes catalog endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	if h == nil {
		writeError(w, catalog.NewError(catalog.KindInternal, "handler is nil", nil))
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == h.basePath():
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeStatus(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
			return
		}
		h.handleExport(w, r)
	case strings.HasPrefix(path, h.basePath()+"/"):
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeStatus(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
			return
		}
		h.handleDownload(w, r, strings.TrimPrefix(path, h.basePath()+"/"))
	default:
		writeError(w, catalog.NewError(catalog.KindNotFound, "route not found", nil))
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	upload, err := decodeUpload(w, r, h.cfg.MaxUploadBytes)
	if err != nil {
		writeError(w, err)
		return
	}

	layout := catalog.DefaultLayout()
	if h.cfg.Layout != nil {
		layout = *h.cfg.Layout
	}
	if upload.Title != "" {
		layout.Title = upload.Title
	}

	source := h.sourceFor(upload)
	var buf bytes.Buffer
	req := catalog.ExportRequest{
		Source:   source,
		Layout:   &layout,
		Filename: upload.Filename,
		Store:    upload.Store,
	}
	if !upload.Store {
		req.Output = &buf
	}

	result, err := h.cfg.Exporter.Run(r.Context(), req)
	if err != nil {
		h.cfg.Logger.Errorf("catalog upload %q: %v", upload.Name, err)
		writeError(w, err)
		return
	}

	if upload.Store {
		key := result.ID + "/" + result.Filename
		if result.Artifact != nil {
			key = result.Artifact.Key
		}
		writeJSON(w, http.StatusCreated, exportResponse{
			ID:          result.ID,
			Filename:    result.Filename,
			Rows:        result.Rows,
			Pages:       result.Pages,
			Bytes:       result.Bytes,
			DownloadURL: h.basePath() + "/" + key,
		})
		return
	}

	writePDF(w, "", result.Filename, buf.Len())
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request, key string) {
	store := h.cfg.Exporter.Store
	if store == nil {
		writeError(w, catalog.NewError(catalog.KindNotFound, "artifact store is not configured", nil))
		return
	}

	reader, meta, err := store.Open(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	filename := meta.Filename
	if filename == "" {
		filename = key[strings.LastIndex(key, "/")+1:]
	}
	size := -1
	if meta.Size > 0 {
		size = int(meta.Size)
	}
	writePDF(w, meta.ContentType, filename, size)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, reader); err != nil {
		h.cfg.Logger.Errorf("catalog download %q: %v", key, err)
	}
}

func (h *Handler) sourceFor(upload uploadRequest) catalog.RowSource {
	opts := catalogtabular.Options{
		Columns: h.cfg.Columns,
		Images:  h.cfg.Images,
		Logger:  h.cfg.Logger,
	}
	opener := catalogtabular.BytesOpener(upload.Data)
	if upload.Format == formatXLSX {
		src := catalogtabular.NewXLSXSource(opener, opts)
		src.Sheet = upload.Sheet
		return src
	}
	return catalogtabular.NewCSVSource(opener, opts)
}

func (h *Handler) basePath() string {
	if h == nil || h.cfg.BasePath == "" {
		return defaultBasePath
	}
	return h.cfg.BasePath
}

func writePDF(w http.ResponseWriter, contentType, filename string, size int) {
	if contentType == "" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if size >= 0 {
		w.Header().Set("Content-Length", strconv.Itoa(size))
	}
	w.WriteHeader(http.StatusOK)
}
