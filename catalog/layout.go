package catalog

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// MinDescriptionWidth is the narrowest readable description column, in mm.
const MinDescriptionWidth = 20.0

const titleGap = 5.0

// HeaderLabels are the column captions drawn in the header row.
type HeaderLabels struct {
	Image       string `yaml:"image"`
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
}

// LayoutConfig holds the geometry and typography of one render call.
// Lengths are millimetres, FontSize is points.
type LayoutConfig struct {
	PageWidth      float64      `yaml:"page_width"`
	PageHeight     float64      `yaml:"page_height"`
	Margin         float64      `yaml:"margin"`
	BottomMargin   float64      `yaml:"bottom_margin"`
	ImageWidth     float64      `yaml:"image_width"`
	ImageHeight    float64      `yaml:"image_height"`
	CodeWidth      float64      `yaml:"code_width"`
	Gutter         float64      `yaml:"gutter"`
	RowSpacing     float64      `yaml:"row_spacing"`
	LineHeight     float64      `yaml:"line_height"`
	TextLineHeight float64      `yaml:"text_line_height"`
	FontFamily     string       `yaml:"font_family"`
	FontSize       float64      `yaml:"font_size"`
	FontPath       string       `yaml:"font_path"`
	HeaderFill     RGB          `yaml:"header_fill"`
	HeaderLabels   HeaderLabels `yaml:"header_labels"`
	Title          string       `yaml:"title"`
	ImageDPI       float64      `yaml:"image_dpi"`
	PreserveAspect bool         `yaml:"preserve_aspect"`
}

// DefaultTitle is printed above the header on page 1 unless overridden.
const DefaultTitle = "Gereedschappenoverzicht"

// DefaultLayout returns an A4 portrait layout.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		PageWidth:      210,
		PageHeight:     297,
		Margin:         10,
		BottomMargin:   15,
		ImageWidth:     30,
		ImageHeight:    20,
		CodeWidth:      40,
		Gutter:         0,
		RowSpacing:     2,
		LineHeight:     10,
		TextLineHeight: 6,
		FontFamily:     "Helvetica",
		FontSize:       12,
		HeaderFill:     RGB{R: 220, G: 220, B: 220},
		HeaderLabels: HeaderLabels{
			Image:       "Image",
			Code:        "Code",
			Description: "Description",
		},
		Title:    DefaultTitle,
		ImageDPI: 150,
	}
}

// DescriptionWidth is the width left for the description column.
func (c LayoutConfig) DescriptionWidth() float64 {
	return c.PageWidth - 2*c.Margin - c.ImageWidth - c.CodeWidth - c.Gutter
}

// ContentBottom is the lowest y a row may reach.
func (c LayoutConfig) ContentBottom() float64 {
	return c.PageHeight - c.BottomMargin
}

// Columns returns the header cell geometry, left to right.
func (c LayoutConfig) Columns() []ColumnPlacement {
	gap := c.Gutter / 2
	imageX := c.Margin
	codeX := imageX + c.ImageWidth + gap
	descX := codeX + c.CodeWidth + gap
	return []ColumnPlacement{
		{Label: c.HeaderLabels.Image, X: imageX, Width: c.ImageWidth},
		{Label: c.HeaderLabels.Code, X: codeX, Width: c.CodeWidth},
		{Label: c.HeaderLabels.Description, X: descX, Width: c.DescriptionWidth()},
	}
}

// Validate checks the layout before any drawing happens.
func (c LayoutConfig) Validate() error {
	positives := []struct {
		name  string
		value float64
	}{
		{"page width", c.PageWidth},
		{"page height", c.PageHeight},
		{"image width", c.ImageWidth},
		{"image height", c.ImageHeight},
		{"code width", c.CodeWidth},
		{"line height", c.LineHeight},
		{"text line height", c.TextLineHeight},
		{"font size", c.FontSize},
		{"image dpi", c.ImageDPI},
	}
	for _, p := range positives {
		if !(p.value > 0) {
			return ConfigError(fmt.Sprintf("%s must be positive", p.name))
		}
	}

	nonNegatives := []struct {
		name  string
		value float64
	}{
		{"margin", c.Margin},
		{"bottom margin", c.BottomMargin},
		{"gutter", c.Gutter},
		{"row spacing", c.RowSpacing},
	}
	for _, p := range nonNegatives {
		if !(p.value >= 0) {
			return ConfigError(fmt.Sprintf("%s must not be negative", p.name))
		}
	}

	if strings.TrimSpace(c.FontFamily) == "" {
		return ConfigError("font family is required")
	}
	if !c.HeaderFill.valid() {
		return ConfigError("header fill components must be within 0..255")
	}

	if width := c.DescriptionWidth(); width < MinDescriptionWidth {
		return ConfigError(fmt.Sprintf("description width %.1fmm is below the %.1fmm minimum", width, MinDescriptionWidth))
	}

	// Page 1 must hold the title band, the header and one image row.
	top := c.Margin
	if c.hasTitle() {
		top += c.LineHeight + titleGap
	}
	if top+c.LineHeight+c.ImageHeight+c.RowSpacing > c.ContentBottom() {
		if c.hasTitle() {
			return ConfigError("page height cannot fit the title, header and one image row")
		}
		return ConfigError("page height cannot fit the header and one image row")
	}
	return nil
}

func (c LayoutConfig) hasTitle() bool {
	return strings.TrimSpace(c.Title) != ""
}

// DecodeLayout reads YAML overrides on top of DefaultLayout and validates
// the result. An empty document yields the defaults.
func DecodeLayout(r io.Reader) (LayoutConfig, error) {
	cfg := DefaultLayout()
	if r == nil {
		return cfg, nil
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return LayoutConfig{}, NewError(KindConfig, "decode layout", err)
	}
	if err := cfg.Validate(); err != nil {
		return LayoutConfig{}, err
	}
	return cfg, nil
}
