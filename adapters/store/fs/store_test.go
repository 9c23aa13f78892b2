package storefs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-catalog/catalog"
)

func TestStore_PutOpenDelete(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	ref, err := store.Put(context.Background(), "catalogs/tools.pdf", bytes.NewBufferString("%PDF-1.3"), catalog.ArtifactMeta{
		Filename: "tools.pdf",
		Pages:    2,
		Rows:     14,
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref.Meta.Size != 8 {
		t.Fatalf("expected size 8, got %d", ref.Meta.Size)
	}
	if ref.Meta.CreatedAt.IsZero() {
		t.Fatalf("expected created_at set")
	}
	if ref.Meta.ContentType != "application/pdf" {
		t.Fatalf("expected pdf content type, got %q", ref.Meta.ContentType)
	}

	reader, meta, err := store.Open(context.Background(), "catalogs/tools.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.3" {
		t.Fatalf("expected payload, got %q", string(data))
	}
	if meta.Filename != "tools.pdf" || meta.Pages != 2 || meta.Rows != 14 {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	if err := store.Delete(context.Background(), "catalogs/tools.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, _, err = store.Open(context.Background(), "catalogs/tools.pdf")
	if catalog.KindFromError(err) != catalog.KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(root, "catalogs"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no leftover files, got %d", len(entries))
	}
}

func TestStore_KeyValidation(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, key := range []string{"", "/", "."} {
		if _, err := store.Put(context.Background(), key, bytes.NewBufferString("x"), catalog.ArtifactMeta{}); catalog.KindFromError(err) != catalog.KindValidation {
			t.Fatalf("%q: expected validation error, got %v", key, err)
		}
	}

	ref, err := store.Put(context.Background(), "../../outside.pdf", bytes.NewBufferString("x"), catalog.ArtifactMeta{})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Root, "outside.pdf")); err != nil {
		t.Fatalf("expected key confined to root: %v", err)
	}
	if ref.Meta.Filename != "outside.pdf" {
		t.Fatalf("expected filename from key, got %q", ref.Meta.Filename)
	}

	if _, err := (&Store{}).Put(context.Background(), "a.pdf", bytes.NewBufferString("x"), catalog.ArtifactMeta{}); catalog.KindFromError(err) != catalog.KindValidation {
		t.Fatalf("expected root required error, got %v", err)
	}
}

func TestStore_WithExporter(t *testing.T) {
	store := NewStore(t.TempDir())
	store.Now = func() time.Time { return time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC) }

	exp := catalog.NewExporter()
	exp.Store = store
	exp.IDGenerator = func() string { return "run-1" }
	exp.Now = store.Now

	result, err := exp.Run(context.Background(), catalog.ExportRequest{
		Rows:  []catalog.CatalogRow{{Code: "H-01", Description: "Hamer"}},
		Store: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Artifact == nil || result.Artifact.Key != "run-1/gereedschappen_20240304.pdf" {
		t.Fatalf("unexpected artifact: %+v", result.Artifact)
	}

	reader, meta, err := store.Open(context.Background(), result.Artifact.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		_ = reader.Close()
	}()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) || int64(len(data)) != result.Bytes {
		t.Fatalf("expected stored pdf of %d bytes", result.Bytes)
	}
	if meta.Rows != 1 || meta.Pages != 1 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}
