package catalog

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

const unicodeFamily = "catalog-unicode"

// fontFace is the font selected for one render call.
type fontFace struct {
	family      string
	headerStyle string
	unicode     bool
	translate   func(string) string
}

// loadFont registers the Unicode font at cfg.FontPath, falling back to the
// core font cfg.FontFamily with cp1252 translation when it cannot be used.
func loadFont(pdf *fpdf.Fpdf, cfg LayoutConfig, logger Logger) fontFace {
	if path := strings.TrimSpace(cfg.FontPath); path != "" {
		face, err := loadUnicodeFont(pdf, path, cfg.FontSize)
		if err == nil {
			return face
		}
		pdf.ClearError()
		logger.Debugf("catalog: font %q unavailable, using %s: %v", path, cfg.FontFamily, err)
	}
	return coreFont(pdf, cfg)
}

func loadUnicodeFont(pdf *fpdf.Fpdf, path string, size float64) (face fontFace, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fontFace{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse font: %v", r)
		}
	}()

	pdf.AddUTF8FontFromBytes(unicodeFamily, "", data)
	if pdf.Err() {
		return fontFace{}, pdf.Error()
	}
	pdf.SetFont(unicodeFamily, "", size)
	if pdf.Err() {
		return fontFace{}, pdf.Error()
	}
	return fontFace{
		family:    unicodeFamily,
		unicode:   true,
		translate: clampToBMP,
	}, nil
}

func coreFont(pdf *fpdf.Fpdf, cfg LayoutConfig) fontFace {
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if pdf.Err() || translate == nil {
		pdf.ClearError()
		translate = asciiOnly
	}

	family := cfg.FontFamily
	pdf.SetFont(family, "", cfg.FontSize)
	if pdf.Err() {
		pdf.ClearError()
		family = "Helvetica"
	}

	headerStyle := "B"
	pdf.SetFont(family, headerStyle, cfg.FontSize)
	if pdf.Err() {
		pdf.ClearError()
		headerStyle = ""
	}
	pdf.SetFont(family, "", cfg.FontSize)

	return fontFace{family: family, headerStyle: headerStyle, translate: translate}
}

func (f fontFace) use(pdf *fpdf.Fpdf, style string, size float64) {
	if f.unicode {
		style = ""
	}
	pdf.SetFont(f.family, style, size)
}

// clampToBMP replaces runes the embedded font tables cannot index.
func clampToBMP(s string) string {
	for _, r := range s {
		if r > 0xFFFF || r == utf8.RuneError {
			return strings.Map(func(r rune) rune {
				if r > 0xFFFF || r == utf8.RuneError {
					return '?'
				}
				return r
			}, s)
		}
	}
	return s
}

func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf {
			return '?'
		}
		return r
	}, s)
}
