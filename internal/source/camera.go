package source

import (
	"image"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrEndOfStream is returned by Read when the feed has no more frames.
var ErrEndOfStream = errors.New("end of stream")

// Camera is a frame feed.
type Camera interface {
	// Open acquires the device. It must be called before Read.
	Open() error

	// Read returns the next frame.
	Read() (image.Image, error)

	// Close releases the device. Closing an unopened camera is a no-op.
	Close() error
}

// New builds the camera described by spec. The camera is not opened.
// loop makes finite feeds start over instead of ending.
func New(spec string, loop bool) (Camera, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(spec), ":")
	switch kind {
	case "screen":
		if arg == "" {
			return &Screen{}, nil
		}
		r, err := parseRect(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "camera %q", spec)
		}
		return &Screen{Rect: r}, nil

	case "dir":
		if arg == "" {
			return nil, errors.Errorf("camera %q: missing directory", spec)
		}
		return &Dir{Path: arg, Loop: loop}, nil

	case "device":
		id, err := strconv.Atoi(arg)
		if err != nil || id < 0 {
			return nil, errors.Errorf("camera %q: device must be a non-negative number", spec)
		}
		return newDevice(id)
	}
	return nil, errors.Errorf("unknown camera source %q", spec)
}

// parseRect reads "x,y,w,h".
func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, errors.Errorf("expected x,y,w,h, got %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, errors.Errorf("expected x,y,w,h, got %q", s)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, errors.Errorf("empty screen rectangle %q", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}
