package imaging

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/text-scanner-mcp/internal/roi"
)

func TestCrop_Inside(t *testing.T) {
	img := newQuadrantImage(100, 100)

	out, fitted, err := Crop(img, roi.Rect{X: 0, Y: 0, W: 50, H: 50})
	require.NoError(t, err)
	assert.Equal(t, roi.Rect{X: 0, Y: 0, W: 50, H: 50}, fitted)
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())

	r, g, b := rgbAt(out, 25, 25)
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})
}

func TestCrop_ContentOffset(t *testing.T) {
	img := newQuadrantImage(100, 100)

	out, _, err := Crop(img, roi.Rect{X: 50, Y: 50, W: 20, H: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Bounds().Min.X)
	assert.Equal(t, 0, out.Bounds().Min.Y)

	r, g, b := rgbAt(out, 0, 0)
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})
}

func TestCrop_ClampsOverhang(t *testing.T) {
	img := newSolidImage(100, 100, color.White)

	out, fitted, err := Crop(img, roi.Rect{X: 80, Y: 70, W: 50, H: 50})
	require.NoError(t, err)
	assert.Equal(t, roi.Rect{X: 80, Y: 70, W: 20, H: 30}, fitted)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 30, out.Bounds().Dy())
}

func TestCrop_Invalid(t *testing.T) {
	img := newSolidImage(100, 100, color.White)

	tests := []struct {
		name string
		rect roi.Rect
	}{
		{"fully outside", roi.Rect{X: 200, Y: 200, W: 10, H: 10}},
		{"zero width", roi.Rect{X: 10, Y: 10, W: 0, H: 10}},
		{"zero height", roi.Rect{X: 10, Y: 10, W: 10, H: 0}},
		{"touching right edge", roi.Rect{X: 100, Y: 0, W: 5, H: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Crop(img, tt.rect)
			require.Error(t, err)
			assert.True(t, errors.Is(err, roi.ErrInvalidROI), "got %v", err)
		})
	}
}

func TestCrop_NilFrame(t *testing.T) {
	_, _, err := Crop(nil, roi.Rect{X: 0, Y: 0, W: 5, H: 5})
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	enc, err := Encode(newQuadrantImage(40, 30))
	require.NoError(t, err)
	assert.Equal(t, 40, enc.Width)
	assert.Equal(t, 30, enc.Height)
	assert.Equal(t, "image/png", enc.MimeType)

	data, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 40, decoded.Bounds().Dx())
	assert.Equal(t, 30, decoded.Bounds().Dy())
}
