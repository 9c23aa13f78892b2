// Package storefs keeps generated catalogs on the local filesystem. Each
// artifact is written atomically next to a JSON metadata sidecar.
package storefs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-catalog/catalog"
)

// Store provides filesystem-backed artifact storage.
type Store struct {
	Root string
	Now  func() time.Time
}

var _ catalog.ArtifactStore = (*Store)(nil)

// NewStore creates a filesystem-backed artifact store.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

// Put stores an artifact on disk.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta catalog.ArtifactMeta) (catalog.ArtifactRef, error) {
	_ = ctx
	pathOnDisk, err := s.locate(key)
	if err != nil {
		return catalog.ArtifactRef{}, err
	}
	if err := os.MkdirAll(filepath.Dir(pathOnDisk), 0o755); err != nil {
		return catalog.ArtifactRef{}, err
	}

	var size int64
	err = writeAtomic(pathOnDisk, ".catalog-*", func(w io.Writer) error {
		n, err := io.Copy(w, r)
		size = n
		return err
	})
	if err != nil {
		return catalog.ArtifactRef{}, err
	}

	meta.Size = size
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(pathOnDisk))
	}
	if meta.Filename == "" {
		meta.Filename = filepath.Base(pathOnDisk)
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		return catalog.ArtifactRef{}, err
	}
	err = writeAtomic(metaPath(pathOnDisk), ".meta-*", func(w io.Writer) error {
		_, err := w.Write(payload)
		return err
	})
	if err != nil {
		return catalog.ArtifactRef{}, err
	}

	return catalog.ArtifactRef{Key: key, Meta: meta}, nil
}

// Open reads an artifact from disk.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, catalog.ArtifactMeta, error) {
	_ = ctx
	pathOnDisk, err := s.locate(key)
	if err != nil {
		return nil, catalog.ArtifactMeta{}, err
	}

	file, err := os.Open(pathOnDisk)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, catalog.ArtifactMeta{}, catalog.NewError(catalog.KindNotFound, fmt.Sprintf("artifact %q not found", key), err)
		}
		return nil, catalog.ArtifactMeta{}, err
	}

	meta := readMeta(pathOnDisk)
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(pathOnDisk))
	}
	if meta.Size == 0 {
		if info, err := file.Stat(); err == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}
	return file, meta, nil
}

// Delete removes an artifact and its metadata. Missing artifacts are not
// an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	pathOnDisk, err := s.locate(key)
	if err != nil {
		return err
	}
	_ = os.Remove(pathOnDisk)
	_ = os.Remove(metaPath(pathOnDisk))
	return nil
}

func (s *Store) locate(key string) (string, error) {
	if s == nil {
		return "", catalog.NewError(catalog.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return "", catalog.NewError(catalog.KindValidation, "store root is required", nil)
	}
	if key == "" {
		return "", catalog.NewError(catalog.KindValidation, "artifact key is required", nil)
	}

	rel := strings.TrimPrefix(path.Clean("/"+key), "/")
	if rel == "" || rel == "." {
		return "", catalog.NewError(catalog.KindValidation, "invalid artifact key", nil)
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", catalog.NewError(catalog.KindValidation, "artifact key escapes root", nil)
	}
	return target, nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// writeAtomic writes through a temp file in the target directory and
// renames it into place.
func writeAtomic(target, pattern string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), pattern)
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func readMeta(pathOnDisk string) catalog.ArtifactMeta {
	data, err := os.ReadFile(metaPath(pathOnDisk))
	if err != nil {
		return catalog.ArtifactMeta{}
	}
	var meta catalog.ArtifactMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return catalog.ArtifactMeta{}
	}
	return meta
}

func metaPath(pathOnDisk string) string {
	return pathOnDisk + ".meta.json"
}
