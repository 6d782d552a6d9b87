package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ironsheep/text-scanner-mcp/internal/roi"
)

// EncodedImage is a PNG ready to be sent over the wire.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop cuts the ROI out of a frame. The ROI is first fitted to the frame
// with roi.Resolve, so a rectangle left over from a larger frame is clamped
// and one that misses the frame entirely returns roi.ErrInvalidROI.
//
// The returned rectangle is the region actually cropped, in frame
// coordinates. The cropped image itself starts at (0,0).
func Crop(img image.Image, r roi.Rect) (image.Image, roi.Rect, error) {
	if img == nil {
		return nil, roi.Rect{}, errors.New("no frame to crop")
	}
	fitted, err := roi.Resolve(r, roi.SizeOf(img))
	if err != nil {
		return nil, roi.Rect{}, err
	}
	rect := fitted.Bounds().Add(img.Bounds().Min)
	return imaging.Crop(img, rect), fitted, nil
}

// Encode renders img as a base64 PNG.
func Encode(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}

	size := roi.SizeOf(img)
	return &EncodedImage{
		Width:       size.W,
		Height:      size.H,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
