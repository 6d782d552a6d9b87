package source

import (
	"image"

	"github.com/pkg/errors"
	"github.com/vova616/screenshot"
)

// Screen captures the display. An empty Rect captures the whole primary
// screen.
type Screen struct {
	Rect image.Rectangle
}

// Open checks that a screen is available.
func (s *Screen) Open() error {
	if _, err := screenshot.ScreenRect(); err != nil {
		return errors.Wrap(err, "screen capture unavailable")
	}
	return nil
}

// Read grabs one frame.
func (s *Screen) Read() (image.Image, error) {
	var (
		img *image.RGBA
		err error
	)
	if s.Rect.Empty() {
		img, err = screenshot.CaptureScreen()
	} else {
		img, err = screenshot.CaptureRect(s.Rect)
	}
	if err != nil {
		return nil, errors.Wrap(err, "capture screen")
	}
	return img, nil
}

// Close is a no-op; screen capture holds no handle between reads.
func (s *Screen) Close() error { return nil }
