package session

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/text-scanner-mcp/internal/config"
	"github.com/ironsheep/text-scanner-mcp/internal/ocr"
	"github.com/ironsheep/text-scanner-mcp/internal/roi"
	"github.com/ironsheep/text-scanner-mcp/internal/source"
)

// fakeEngine records what it was asked to recognize and returns a canned
// result.
type fakeEngine struct {
	mu     sync.Mutex
	result ocr.Result
	err    error
	images []image.Image
	opts   []ocr.Options
}

func (f *fakeEngine) Recognize(_ context.Context, img image.Image, opts ocr.Options) (*ocr.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, img)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	res := f.result
	res.Words = append([]ocr.Word(nil), f.result.Words...)
	return &res, nil
}

func (f *fakeEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.images)
}

func (f *fakeEngine) last() image.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.images[len(f.images)-1]
}

// fakeCamera plays a fixed list of frames.
type fakeCamera struct {
	frames  []image.Image
	next    int
	openErr error
	opened  bool
	closed  bool
}

func (c *fakeCamera) Open() error {
	if c.openErr != nil {
		return c.openErr
	}
	c.opened = true
	return nil
}

func (c *fakeCamera) Read() (image.Image, error) {
	if c.next >= len(c.frames) {
		return nil, source.ErrEndOfStream
	}
	img := c.frames[c.next]
	c.next++
	return img, nil
}

func (c *fakeCamera) Close() error {
	c.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestSession builds a session with a 500x500 viewport.
func newTestSession(t *testing.T, eng ocr.Engine) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.Display = config.DisplayConfig{Width: 500, Height: 500}
	cfg.Output.DefaultPath = filepath.Join(t.TempDir(), "ocr_result.png")
	require.NoError(t, cfg.Validate())

	s, err := New(cfg, eng, quietLogger())
	require.NoError(t, err)
	return s
}

// useCamera makes every camera the session opens be cam.
func useCamera(s *Session, cam *fakeCamera) {
	s.newCamera = func(string, bool) (source.Camera, error) { return cam, nil }
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// gradient runs from dark to light, or light to dark when reversed.
func gradient(w, h int, reversed bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			if reversed {
				v = 255 - v
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// spokenWords is raw engine output with one junk entry on each side of the
// threshold.
func spokenWords() ocr.Result {
	return ocr.Result{
		Text: " Hello Hi \n",
		Words: []ocr.Word{
			{Text: "", Confidence: 10},
			{Text: "Hello", Confidence: 55, Bounds: roi.Rect{X: 1, Y: 2, W: 30, H: 10}},
			{Text: "Hi", Confidence: 41, Bounds: roi.Rect{X: 40, Y: 2, W: 12, H: 10}},
			{Text: "  ", Confidence: 39},
		},
	}
}
