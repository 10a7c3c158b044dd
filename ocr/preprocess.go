package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Tesseract reads the OCR-B glyphs of an MRZ poorly below this height in
// pixels per text line.
const minLineHeight = 32

// prepareImage converts a camera crop to grayscale and upscales it so that
// every MRZ line is at least minLineHeight pixels high. lines is the
// expected number of MRZ lines.
func prepareImage(data []byte, lines int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image is empty")
	}
	if lines < 1 {
		lines = 1
	}

	scale := 1.0
	if lineHeight := bounds.Dy() / lines; lineHeight < minLineHeight {
		scale = float64(minLineHeight) / float64(max(lineHeight, 1))
	}
	width := int(math.Ceil(float64(bounds.Dx()) * scale))
	height := int(math.Ceil(float64(bounds.Dy()) * scale))

	dst := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
