package catalog

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// DefaultFilename names catalogs when a request sets no template.
const DefaultFilename = "gereedschappen_{{.Date}}"

type filenameData struct {
	ID        string
	Title     string
	Timestamp string
	Date      string
}

func renderFilename(pattern, id, title string, now time.Time) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultFilename
	}

	data := filenameData{
		ID:        id,
		Title:     title,
		Timestamp: now.UTC().Format("20060102T150405Z"),
		Date:      now.UTC().Format("20060102"),
	}

	tmpl, err := template.New("filename").Option("missingkey=error").Parse(pattern)
	if err != nil {
		return "", NewError(KindValidation, "invalid filename template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewError(KindValidation, "invalid filename template", err)
	}

	result := strings.TrimSpace(buf.String())
	if result == "" {
		return "", NewError(KindValidation, "empty filename", nil)
	}
	if strings.ContainsAny(result, `/\`) {
		return "", NewError(KindValidation, fmt.Sprintf("filename %q must not contain path separators", result), nil)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".pdf") {
		result += ".pdf"
	}
	return result, nil
}
