package session

import (
	"context"
	"image"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/text-scanner-mcp/internal/config"
	"github.com/ironsheep/text-scanner-mcp/internal/detection"
	"github.com/ironsheep/text-scanner-mcp/internal/imaging"
	"github.com/ironsheep/text-scanner-mcp/internal/ocr"
	"github.com/ironsheep/text-scanner-mcp/internal/roi"
	"github.com/ironsheep/text-scanner-mcp/internal/source"
)

// State is everything one scanning session knows. It is owned by the
// session goroutine and never shared.
type State struct {
	// Frame is the current frame at original resolution.
	Frame image.Image

	// Shown is what the display surface shows and what Save writes: the
	// frame itself, or its annotated copy after an OCR run.
	Shown image.Image

	// Origin describes where Frame came from.
	Origin string

	Selector roi.Selector
	Last     *Scan

	camera     source.Camera
	cameraSpec string
	watching   bool
	lastHash   *goimagehash.ImageHash
	frames     int64
}

// Snapshot captures the recognition inputs.
func (st *State) Snapshot() Snapshot {
	snap := Snapshot{Image: st.Frame}
	if r, ok := st.Selector.ROI(); ok {
		snap.ROI = &r
	}
	return snap
}

// Live reports whether the camera is being polled.
func (st *State) Live() bool {
	return st.camera != nil
}

// Options configures a Session.
type Options struct {
	Viewport     roi.Size
	Camera       string
	Loop         bool
	PollInterval time.Duration
	HashDistance int
	SavePath     string
}

// Session serializes every command and camera tick on one goroutine.
//
// Public methods post a command to the loop started by Run and wait for it
// to finish, so they are safe to call from any goroutine. Nothing else
// touches State.
type Session struct {
	opts     Options
	rec      *Recognizer
	renderer *imaging.Renderer
	cache    *imaging.ImageCache
	log      *logrus.Entry

	// newCamera builds cameras; tests replace it.
	newCamera func(spec string, loop bool) (source.Camera, error)

	cmds    chan command
	stopped chan struct{}
	ticker  *time.Ticker
	tick    <-chan time.Time
	started time.Time

	state State
}

type command struct {
	fn   func()
	done chan struct{}
}

// New creates a session from the configuration. engine does the
// recognition; log may be nil.
func New(cfg *config.Config, engine ocr.Engine, log *logrus.Logger) (*Session, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	style, err := cfg.Style()
	if err != nil {
		return nil, err
	}
	ocrOpts, err := cfg.OCROptions()
	if err != nil {
		return nil, err
	}

	return &Session{
		opts: Options{
			Viewport:     cfg.Viewport(),
			Camera:       cfg.Camera.Source,
			Loop:         cfg.Camera.Loop,
			PollInterval: cfg.Camera.PollInterval,
			HashDistance: cfg.Scan.HashDistance,
			SavePath:     cfg.Output.DefaultPath,
		},
		rec: &Recognizer{
			Engine:        engine,
			Options:       ocrOpts,
			MinConfidence: cfg.OCR.MinConfidence,
			Preprocess:    cfg.Preprocess,
			Style:         style,
		},
		renderer:  imaging.NewRenderer(cfg.Viewport(), style),
		cache:     imaging.NewImageCache(),
		log:       log.WithField("component", "session"),
		newCamera: source.New,
		cmds:      make(chan command),
		stopped:   make(chan struct{}),
		started:   time.Now(),
	}, nil
}

// Run executes commands and camera ticks until ctx is cancelled. The
// camera, if running, is released on the way out and cached files are
// dropped.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)
	defer s.cache.Clear()
	defer s.stopCamera()

	s.log.Debug("session loop started")
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("session loop stopped")
			return nil
		case c := <-s.cmds:
			c.fn()
			close(c.done)
		case <-s.tick:
			s.poll(ctx)
		}
	}
}

// do runs fn on the session goroutine and waits for it.
func (s *Session) do(ctx context.Context, fn func()) error {
	c := command{fn: fn, done: make(chan struct{})}
	select {
	case s.cmds <- c:
	case <-s.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadImage replaces the frame with an image file. A running camera is
// stopped and the ROI cleared.
func (s *Session) LoadImage(ctx context.Context, path string) (info *FrameInfo, err error) {
	if derr := s.do(ctx, func() { info, err = s.loadImage(path) }); derr != nil {
		return nil, derr
	}
	return info, err
}

// StartCamera opens a camera and starts polling it. An empty spec uses the
// configured source.
func (s *Session) StartCamera(ctx context.Context, spec string) (info *FrameInfo, err error) {
	if derr := s.do(ctx, func() { info, err = s.startCamera(spec) }); derr != nil {
		return nil, derr
	}
	return info, err
}

// StopCamera stops polling. The last frame stays on screen.
func (s *Session) StopCamera(ctx context.Context) (info *CameraState, err error) {
	if derr := s.do(ctx, func() { info = s.cameraStopped() }); derr != nil {
		return nil, derr
	}
	return info, nil
}

// CaptureFrame freezes the current frame.
func (s *Session) CaptureFrame(ctx context.Context) (info *FrameInfo, err error) {
	if derr := s.do(ctx, func() { info, err = s.captureFrame() }); derr != nil {
		return nil, derr
	}
	return info, err
}

// BeginDrag starts a selection at a display-space point.
func (s *Session) BeginDrag(ctx context.Context, p image.Point) (sel *Selection, err error) {
	if derr := s.do(ctx, func() { sel = s.beginDrag(p) }); derr != nil {
		return nil, derr
	}
	return sel, nil
}

// UpdateDrag moves the live corner of the selection.
func (s *Session) UpdateDrag(ctx context.Context, p image.Point) (sel *Selection, err error) {
	if derr := s.do(ctx, func() { sel = s.updateDrag(p) }); derr != nil {
		return nil, derr
	}
	return sel, nil
}

// EndDrag commits the selection.
func (s *Session) EndDrag(ctx context.Context, p image.Point) (sel *Selection, err error) {
	if derr := s.do(ctx, func() { sel = s.endDrag(p) }); derr != nil {
		return nil, derr
	}
	return sel, nil
}

// SelectROI performs a whole drag from a to b.
func (s *Session) SelectROI(ctx context.Context, a, b image.Point) (sel *Selection, err error) {
	if derr := s.do(ctx, func() {
		s.beginDrag(a)
		sel = s.endDrag(b)
	}); derr != nil {
		return nil, derr
	}
	return sel, nil
}

// ClearROI drops the committed ROI and shows the plain frame again.
func (s *Session) ClearROI(ctx context.Context) (sel *Selection, err error) {
	if derr := s.do(ctx, func() { sel = s.clearROI() }); derr != nil {
		return nil, derr
	}
	return sel, nil
}

// RunOCR recognizes the committed ROI, or the whole frame without one.
func (s *Session) RunOCR(ctx context.Context) (scan *Scan, err error) {
	if derr := s.do(ctx, func() { scan, err = s.runOCR(ctx) }); derr != nil {
		return nil, derr
	}
	return scan, err
}

// Render draws the display surface. A positive grid overlays display
// coordinates every grid pixels.
func (s *Session) Render(ctx context.Context, grid int) (img *image.NRGBA, err error) {
	if derr := s.do(ctx, func() { img, err = s.render(grid) }); derr != nil {
		return nil, derr
	}
	return img, err
}

// SuggestRegions looks for text in the current frame.
func (s *Session) SuggestRegions(ctx context.Context, opts detection.Options) (sg *Suggestions, err error) {
	if derr := s.do(ctx, func() { sg, err = s.suggestRegions(opts) }); derr != nil {
		return nil, derr
	}
	return sg, err
}

// Save writes the shown frame to path, or to the default path if empty.
func (s *Session) Save(ctx context.Context, path string) (saved string, err error) {
	if derr := s.do(ctx, func() { saved, err = s.save(path) }); derr != nil {
		return "", derr
	}
	return saved, err
}

// Watch turns continuous scanning on or off.
func (s *Session) Watch(ctx context.Context, on bool) (info *CameraState, err error) {
	if derr := s.do(ctx, func() { info, err = s.watch(on) }); derr != nil {
		return nil, derr
	}
	return info, err
}

// Status reports the session state and process statistics.
func (s *Session) Status(ctx context.Context) (st *Status, err error) {
	if derr := s.do(ctx, func() { st = s.status() }); derr != nil {
		return nil, derr
	}
	return st, nil
}
