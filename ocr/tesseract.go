// Package ocr turns images of an MRZ into the raw text that the MRZ parser
// consumes.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// The only characters that may appear in an MRZ.
const mrzAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789<"

// Recognizer returns the OCR text of one image, lines separated by newlines.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

type TesseractRecognizer struct {
	clientFactory func() *gosseract.Client
	languages     []string
	// expected MRZ lines, used to upscale small crops
	lines int
}

// NewTesseractRecognizer uses the given traineddata languages, "eng" when
// none are given. A dedicated "mrz" or "ocrb" model gives better results.
func NewTesseractRecognizer(languages ...string) *TesseractRecognizer {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractRecognizer{
		clientFactory: gosseract.NewClient,
		languages:     languages,
		lines:         3,
	}
}

func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prepared, err := prepareImage(image, r.lines)
	if err != nil {
		return "", err
	}

	c := r.clientFactory()
	defer func() {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close tesseract client", "error", err)
		}
	}()

	if err := c.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetWhitelist(mrzAlphabet); err != nil {
		return "", fmt.Errorf("set whitelist: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetImageFromBytes(prepared); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	slog.Debug("Recognized image", "lines", strings.Count(text, "\n")+1)
	return text, nil
}
