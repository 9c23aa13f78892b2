package catalogimages

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-catalog/catalog"
)

// DirResolver reads image files relative to Root. References may not
// escape Root.
type DirResolver struct {
	Root     string
	MaxBytes int64
}

func (r *DirResolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	_ = ctx
	if r == nil || r.Root == "" {
		return nil, ErrUnsupported
	}
	if strings.Contains(ref, "://") || strings.HasPrefix(strings.ToLower(ref), "data:") {
		return nil, ErrUnsupported
	}

	target, err := r.resolvePath(ref)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, catalog.NewError(catalog.KindNotFound, fmt.Sprintf("image %q not found", ref), err))
		}
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, catalog.NewError(catalog.KindValidation, fmt.Sprintf("image %q is a directory", ref), nil)
	}

	limit := maxBytes(r.MaxBytes)
	if info.Size() > limit {
		return nil, fmt.Errorf("image %q exceeds %d bytes", ref, limit)
	}
	return io.ReadAll(io.LimitReader(file, limit))
}

func (r *DirResolver) resolvePath(ref string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(ref))
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || rel == "." {
		return "", catalog.NewError(catalog.KindValidation, "invalid image path", nil)
	}

	root, err := filepath.Abs(r.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", catalog.NewError(catalog.KindValidation, "image path escapes root", nil)
	}
	return target, nil
}
