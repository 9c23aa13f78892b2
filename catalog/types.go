package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// CatalogRow is one tool/equipment entry.
type CatalogRow struct {
	Code        string
	Description string
	// Image holds encoded raster bytes; empty means no image.
	Image []byte
}

// HasImage reports whether the row carries image bytes.
func (r CatalogRow) HasImage() bool {
	return len(r.Image) > 0
}

// RowIterator streams catalog rows. Next returns io.EOF when exhausted.
type RowIterator interface {
	Next(ctx context.Context) (CatalogRow, error)
	Close() error
}

// RowSource opens row iterators.
type RowSource interface {
	Open(ctx context.Context) (RowIterator, error)
}

// RGB is an 8-bit color.
type RGB struct {
	R int `yaml:"r"`
	G int `yaml:"g"`
	B int `yaml:"b"`
}

func (c RGB) valid() bool {
	return inByte(c.R) && inByte(c.G) && inByte(c.B)
}

func inByte(v int) bool {
	return v >= 0 && v <= 255
}

// ArtifactMeta captures stored artifact metadata.
type ArtifactMeta struct {
	ContentType string
	Size        int64
	Filename    string
	Pages       int
	Rows        int
	CreatedAt   time.Time
}

// ArtifactRef references a stored artifact.
type ArtifactRef struct {
	Key  string
	Meta ArtifactMeta
}

// ArtifactStore stores generated catalogs.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error)
	Delete(ctx context.Context, key string) error
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// SlogLogger adapts a slog.Logger to Logger.
type SlogLogger struct {
	base *slog.Logger
}

// NewSlogLogger wraps base; a nil base uses slog.Default.
func NewSlogLogger(base *slog.Logger) SlogLogger {
	if base == nil {
		base = slog.Default()
	}
	return SlogLogger{base: base}
}

func (l SlogLogger) Debugf(format string, args ...any) {
	l.base.Debug(fmt.Sprintf(format, args...))
}

func (l SlogLogger) Infof(format string, args ...any) {
	l.base.Info(fmt.Sprintf(format, args...))
}

func (l SlogLogger) Errorf(format string, args ...any) {
	l.base.Error(fmt.Sprintf(format, args...))
}

func loggerOrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
