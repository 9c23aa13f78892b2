package catalog

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/goregular"
)

func writeFont(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	return path
}

func debugLogger(buf *bytes.Buffer) Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func newTestPDF() *fpdf.Fpdf {
	return fpdf.NewCustom(&fpdf.InitType{UnitStr: "mm", Size: fpdf.SizeType{Wd: 210, Ht: 297}})
}

func TestLoadFont_UnicodeFont(t *testing.T) {
	cfg := DefaultLayout()
	cfg.FontPath = writeFont(t, "Go-Regular.ttf", goregular.TTF)

	face := loadFont(newTestPDF(), cfg, NopLogger{})
	if !face.unicode || face.family != unicodeFamily {
		t.Fatalf("expected unicode font, got %+v", face)
	}
	if face.headerStyle != "" {
		t.Fatalf("expected plain header style for embedded font, got %q", face.headerStyle)
	}
	if got := face.translate("Größe 🔧"); got != "Größe ?" {
		t.Fatalf("expected astral rune clamped, got %q", got)
	}
}

func TestLoadFont_GarbageFallsBack(t *testing.T) {
	cfg := DefaultLayout()
	cfg.FontPath = writeFont(t, "broken.ttf", []byte("definitely not a truetype font"))

	var logs bytes.Buffer
	pdf := newTestPDF()
	face := loadFont(pdf, cfg, debugLogger(&logs))
	if face.unicode || face.family != "Helvetica" {
		t.Fatalf("expected core font fallback, got %+v", face)
	}
	if pdf.Err() {
		t.Fatalf("expected pdf error cleared, got %v", pdf.Error())
	}
	if !strings.Contains(logs.String(), "broken.ttf") || !strings.Contains(logs.String(), "level=DEBUG") {
		t.Fatalf("expected debug fallback log, got %q", logs.String())
	}
}

func TestRender_WithUnicodeFont(t *testing.T) {
	cfg := DefaultLayout()
	cfg.FontPath = writeFont(t, "Go-Regular.ttf", goregular.TTF)
	cfg.Title = "Gereedschappenoverzicht – Ø"
	desc := strings.Repeat("Schroevendraaier – Ø 5mm, Größe “M” 🔧 Ωmega ", 4)

	doc, err := Renderer{}.Render(context.Background(), []CatalogRow{
		{Code: "Å-1", Description: desc},
		{Code: "Ω-2", Description: "Zaag"},
	}, cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.PageCount() != 1 || doc.RowCount() != 2 {
		t.Fatalf("expected 1 page with 2 rows, got %d pages %d rows", doc.PageCount(), doc.RowCount())
	}
	rows := doc.Pages[0].Rows
	if rows[0].DescriptionLines < 2 {
		t.Fatalf("expected long description to wrap, got %d lines", rows[0].DescriptionLines)
	}
	if rows[0].CodeLines != 1 || rows[1].DescriptionLines != 1 {
		t.Fatalf("unexpected line counts %+v", rows)
	}
	if !almostEqual(rows[0].DescriptionBottom-rows[0].Top, float64(rows[0].DescriptionLines)*cfg.TextLineHeight) {
		t.Fatalf("description height does not follow line count")
	}
	data := doc.Bytes()
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected pdf output")
	}
	if !bytes.Contains(data, []byte("FontFile2")) {
		t.Fatalf("expected embedded truetype font")
	}
}

func TestRender_GarbageFontFallsBack(t *testing.T) {
	cfg := DefaultLayout()
	cfg.FontPath = writeFont(t, "broken.ttf", []byte("definitely not a truetype font"))

	doc, err := Renderer{}.Render(context.Background(), []CatalogRow{{Code: "Å-1", Description: "Größe “M”"}}, cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.RowCount() != 1 || len(doc.Bytes()) == 0 {
		t.Fatalf("expected rendered fallback document")
	}
	if bytes.Contains(doc.Bytes(), []byte("FontFile2")) {
		t.Fatalf("expected core font, found embedded font")
	}
}

func TestSlogLogger_ReportsSkippedImage(t *testing.T) {
	var logs bytes.Buffer
	r := Renderer{Logger: debugLogger(&logs)}
	doc, err := r.Render(context.Background(), []CatalogRow{{Code: "X", Description: "broken", Image: []byte("not an image")}}, DefaultLayout())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.Pages[0].Rows[0].ImagePlaced {
		t.Fatalf("expected no image placed")
	}
	out := logs.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "row 0 image skipped") {
		t.Fatalf("expected debug skip line, got %q", out)
	}

	logs.Reset()
	NewSlogLogger(slog.New(slog.NewTextHandler(&logs, nil))).Debugf("hidden %d", 1)
	if logs.Len() != 0 {
		t.Fatalf("expected debug filtered at info level, got %q", logs.String())
	}
	if NewSlogLogger(nil).base == nil {
		t.Fatalf("expected default slog logger")
	}
}
