package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	imagePadding     = 1.0
	thumbnailQuality = 85
	mmPerInch        = 25.4

	maxImageDimension       = 32768
	maxImagePixels    int64 = 64 * 1024 * 1024
)

var errNoImage = errors.New("no image bytes")

// thumbnail is a JPEG sized for an image box. Offsets and sizes are mm,
// relative to the box origin.
type thumbnail struct {
	data []byte
	x    float64
	y    float64
	w    float64
	h    float64
}

// buildThumbnail decodes raw and scales it into a box of boxW x boxH mm.
// Without preserveAspect the image is stretched to the padded box.
func buildThumbnail(raw []byte, boxW, boxH, dpi float64, preserveAspect bool) (thumb thumbnail, err error) {
	if len(raw) == 0 {
		return thumbnail{}, errNoImage
	}
	defer func() {
		if r := recover(); r != nil {
			thumb = thumbnail{}
			err = fmt.Errorf("decode image: %v", r)
		}
	}()

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return thumbnail{}, err
	}
	if err := validateImageBounds(cfg.Width, cfg.Height); err != nil {
		return thumbnail{}, err
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return thumbnail{}, err
	}
	bounds := src.Bounds()
	if err := validateImageBounds(bounds.Dx(), bounds.Dy()); err != nil {
		return thumbnail{}, err
	}

	pad := imagePadding
	if boxW <= 2*pad || boxH <= 2*pad {
		pad = 0
	}
	areaW := boxW - 2*pad
	areaH := boxH - 2*pad

	drawW, drawH := areaW, areaH
	if preserveAspect {
		ratio := float64(bounds.Dx()) / float64(bounds.Dy())
		drawH = areaW / ratio
		if drawH > areaH {
			drawH = areaH
			drawW = areaH * ratio
		}
	}

	scaled := imaging.Resize(src, toPixels(drawW, dpi), toPixels(drawH, dpi), imaging.Lanczos)
	size := scaled.Bounds().Size()
	flat := imaging.Overlay(imaging.New(size.X, size.Y, color.White), scaled, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		return thumbnail{}, err
	}

	return thumbnail{
		data: buf.Bytes(),
		x:    pad + (areaW-drawW)/2,
		y:    pad + (areaH-drawH)/2,
		w:    drawW,
		h:    drawH,
	}, nil
}

func validateImageBounds(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image bounds invalid (%d x %d)", width, height)
	}
	if width > maxImageDimension || height > maxImageDimension {
		return fmt.Errorf("image dimension exceeds limit (%d x %d)", width, height)
	}
	if pixels := int64(width) * int64(height); pixels > maxImagePixels {
		return fmt.Errorf("image pixel count %d exceeds limit %d", pixels, maxImagePixels)
	}
	return nil
}

func toPixels(mm, dpi float64) int {
	px := int(math.Round(mm / mmPerInch * dpi))
	if px < 1 {
		return 1
	}
	return px
}
