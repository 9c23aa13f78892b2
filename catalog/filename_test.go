package catalog

import (
	"testing"
	"time"
)

func TestRenderFilename(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		pattern string
		want    string
	}{
		{"", "gereedschappen_20240102.pdf"},
		{"catalog_{{.Timestamp}}", "catalog_20240102T030405Z.pdf"},
		{"{{.ID}}.PDF", "exp-1.PDF"},
		{"tools-{{.Title}}", "tools-Werkplaats.pdf"},
	}
	for _, tc := range cases {
		got, err := renderFilename(tc.pattern, "exp-1", "Werkplaats", now)
		if err != nil {
			t.Fatalf("%q: %v", tc.pattern, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.pattern, tc.want, got)
		}
	}
}

func TestRenderFilename_Rejects(t *testing.T) {
	now := time.Now()
	for _, pattern := range []string{"{{.Missing}}", "{{", "   {{.Title}}", "../{{.ID}}"} {
		if _, err := renderFilename(pattern, "exp-1", "", now); KindFromError(err) != KindValidation {
			t.Fatalf("%q: expected validation error, got %v", pattern, err)
		}
	}
}
