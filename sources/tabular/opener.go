package catalogtabular

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/goliatone/go-catalog/catalog"
)

// Opener returns a fresh reader over an uploaded file.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// BytesOpener serves an in-memory upload.
func BytesOpener(data []byte) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		_ = ctx
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}

// FileOpener reads an upload from disk.
func FileOpener(path string) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		_ = ctx
		file, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, catalog.NewError(catalog.KindNotFound, "upload "+path+" not found", err)
			}
			return nil, err
		}
		return file, nil
	}
}

func (o Opener) open(ctx context.Context) (io.ReadCloser, error) {
	if o == nil {
		return nil, catalog.NewError(catalog.KindValidation, "source opener is required", nil)
	}
	return o(ctx)
}
