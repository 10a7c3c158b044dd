package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func renderLines(t *testing.T, lines ...string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 340, 20*len(lines)+10))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	for i, line := range lines {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.Black,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(10, 20*(i+1)),
		}
		d.DrawString(line)
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareImage(t *testing.T) {
	t.Run("small crops are upscaled to grayscale", func(t *testing.T) {
		data := renderLines(t, "P<UTOERIKSSON<<ANNA<MARIA", "L898902C36UTO7408122F")
		prepared, err := prepareImage(data, 2)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(prepared))
		require.NoError(t, err)
		require.IsType(t, &image.Gray{}, img)
		require.GreaterOrEqual(t, img.Bounds().Dy(), 2*minLineHeight)
		require.Greater(t, img.Bounds().Dx(), 340)
	})

	t.Run("large images keep their size", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 400, 300))
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))

		prepared, err := prepareImage(buf.Bytes(), 3)
		require.NoError(t, err)
		decoded, err := png.Decode(bytes.NewReader(prepared))
		require.NoError(t, err)
		require.Equal(t, image.Rect(0, 0, 400, 300), decoded.Bounds())
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := prepareImage([]byte("not an image"), 2)
		require.Error(t, err)
	})
}

func TestRecognizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTesseractRecognizer().Recognize(ctx, renderLines(t, "P<UTO"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestTesseractRecognize(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}

	text, err := NewTesseractRecognizer().Recognize(context.Background(), renderLines(t, "P<UTOERIKSSON<<ANNA"))
	require.NoError(t, err)
	require.Contains(t, text, "UTO")
}
