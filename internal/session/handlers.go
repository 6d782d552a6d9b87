package session

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/ironsheep/text-scanner-mcp/internal/detection"
	"github.com/ironsheep/text-scanner-mcp/internal/imaging"
	"github.com/ironsheep/text-scanner-mcp/internal/roi"
	"github.com/ironsheep/text-scanner-mcp/internal/source"
)

// FrameInfo describes the current frame after a load or capture.
type FrameInfo struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Origin  string  `json:"origin"`
	Format  string  `json:"format,omitempty"`
	Bytes   int64   `json:"file_size_bytes,omitempty"`
	Live    bool    `json:"live"`
	Scale   float64 `json:"scale"`
	Message string  `json:"message,omitempty"`
}

// CameraState reports the camera after a start, stop or watch change.
type CameraState struct {
	Source   string `json:"source,omitempty"`
	Live     bool   `json:"live"`
	Watching bool   `json:"watching"`
	Frames   int64  `json:"frames"`
}

// Selection reports the ROI selector after a gesture.
type Selection struct {
	// Changed is false when the gesture was ignored.
	Changed  bool        `json:"changed"`
	Dragging bool        `json:"dragging"`
	ROI      *roi.Rect   `json:"roi"`
	Overlay  roi.Overlay `json:"overlay"`
	Scale    float64     `json:"scale"`
}

// Suggestion is a likely text region, in both coordinate spaces. Dragging
// over Display selects it.
type Suggestion struct {
	Image      roi.Rect  `json:"image"`
	Display    roi.FRect `json:"display"`
	Confidence float64   `json:"confidence"`
}

// Suggestions lists text regions, most confident first.
type Suggestions struct {
	Regions []Suggestion `json:"regions"`
	Scale   float64      `json:"scale"`
}

// Status is a summary of the session.
type Status struct {
	HasImage bool         `json:"has_image"`
	Width    int          `json:"width,omitempty"`
	Height   int          `json:"height,omitempty"`
	Origin   string       `json:"origin,omitempty"`
	Viewport roi.Size     `json:"viewport"`
	ROI      *roi.Rect    `json:"roi"`
	Dragging bool         `json:"dragging"`
	Camera   CameraState  `json:"camera"`
	LastScan *Scan        `json:"last_scan,omitempty"`
	Cached   int          `json:"cached_frames"`
	Uptime   string       `json:"uptime"`
	Process  ProcessStats `json:"process"`
}

// ProcessStats are resource figures for the server process.
type ProcessStats struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
}

func (s *Session) basis() roi.Basis {
	return s.renderer.Basis(s.state.Frame)
}

func (s *Session) frameInfo() *FrameInfo {
	size := roi.SizeOf(s.state.Frame)
	return &FrameInfo{
		Width:  size.W,
		Height: size.H,
		Origin: s.state.Origin,
		Live:   s.state.Live(),
		Scale:  s.basis().Scale(),
	}
}

func (s *Session) cameraState() *CameraState {
	return &CameraState{
		Source:   s.state.cameraSpec,
		Live:     s.state.Live(),
		Watching: s.state.watching,
		Frames:   s.state.frames,
	}
}

// show replaces the frame and drops anything drawn on the old one. The
// committed ROI is kept.
func (s *Session) show(frame image.Image, origin string) {
	s.state.Frame = frame
	s.state.Shown = frame
	s.state.Origin = origin
}

func (s *Session) loadImage(path string) (*FrameInfo, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		s.log.WithError(err).WithField("path", path).Warn("load failed")
		return nil, errors.Wrapf(ErrLoad, "%v", err)
	}

	s.stopCamera()
	s.show(img, "file:"+path)
	s.state.Selector.Reset()
	s.state.Last = nil

	info := s.frameInfo()
	if d, err := imaging.Describe(path); err == nil {
		info.Format = d.Format
		info.Bytes = d.FileSizeBytes
	}
	s.log.WithField("path", filepath.Base(path)).
		WithField("size", roi.SizeOf(img)).
		Info("image loaded")
	return info, nil
}

func (s *Session) startCamera(spec string) (*FrameInfo, error) {
	if spec == "" {
		spec = s.opts.Camera
	}
	s.stopCamera()

	cam, err := s.newCamera(spec, s.opts.Loop)
	if err != nil {
		return nil, errors.Wrapf(ErrCamera, "%v", err)
	}
	if err := cam.Open(); err != nil {
		return nil, errors.Wrapf(ErrCamera, "%s: %v", spec, err)
	}
	frame, err := cam.Read()
	if err != nil {
		cam.Close()
		return nil, errors.Wrapf(ErrCamera, "%s: first frame: %v", spec, err)
	}

	s.state.camera = cam
	s.state.cameraSpec = spec
	s.state.frames = 1
	s.show(frame, "camera:"+spec)

	s.ticker = time.NewTicker(s.opts.PollInterval)
	s.tick = s.ticker.C
	s.log.WithField("source", spec).WithField("interval", s.opts.PollInterval).Info("camera started")
	return s.frameInfo(), nil
}

// stopCamera halts polling and releases the device.
func (s *Session) stopCamera() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
		s.tick = nil
	}
	if s.state.camera == nil {
		return
	}
	if err := s.state.camera.Close(); err != nil {
		s.log.WithError(err).Warn("camera close")
	}
	s.state.camera = nil
	s.state.watching = false
	s.state.lastHash = nil
	s.log.WithField("frames", s.state.frames).Info("camera stopped")
}

func (s *Session) cameraStopped() *CameraState {
	s.stopCamera()
	return s.cameraState()
}

// poll reads one camera frame. Failed reads are skipped; the end of a
// finite feed stops the camera.
func (s *Session) poll(ctx context.Context) {
	if s.state.camera == nil {
		return
	}
	frame, err := s.state.camera.Read()
	switch {
	case errors.Is(err, source.ErrEndOfStream):
		s.log.Info("camera feed ended")
		s.stopCamera()
		return
	case err != nil:
		s.log.WithError(err).Debug("frame read failed")
		return
	}

	s.state.frames++
	s.show(frame, s.state.Origin)
	if s.state.watching {
		s.scanIfChanged(ctx)
	}
}

// scanIfChanged re-runs OCR when the ROI content moved away from what was
// last scanned.
func (s *Session) scanIfChanged(ctx context.Context) {
	snap := s.state.Snapshot()
	target := snap.Image
	if snap.ROI != nil {
		cropped, _, err := imaging.Crop(snap.Image, *snap.ROI)
		if err != nil {
			s.log.WithError(err).Debug("watch: roi does not fit frame")
			return
		}
		target = cropped
	}

	hash, err := goimagehash.DifferenceHash(target)
	if err != nil {
		s.log.WithError(err).Warn("watch: hash failed")
		return
	}
	if s.state.lastHash != nil {
		dist, err := s.state.lastHash.Distance(hash)
		if err == nil && dist <= s.opts.HashDistance {
			return
		}
	}

	scan, err := s.recognize(ctx, snap)
	if err != nil {
		s.log.WithError(err).Warn("watch: scan failed")
		return
	}
	s.state.lastHash = hash
	s.state.Last = scan
	s.state.Shown = scan.Annotated
}

func (s *Session) captureFrame() (*FrameInfo, error) {
	if s.state.Frame == nil {
		return nil, ErrNoFrame
	}
	s.stopCamera()
	s.state.Origin = "capture"
	info := s.frameInfo()
	info.Message = "Frame captured. Select ROI and click 'Run OCR'."
	return info, nil
}

func (s *Session) selection(changed bool) *Selection {
	b := s.basis()
	sel := &Selection{
		Changed:  changed,
		Dragging: s.state.Selector.Dragging(),
		Overlay:  s.state.Selector.Overlay(b),
		Scale:    b.Scale(),
	}
	if r, ok := s.state.Selector.ROI(); ok {
		sel.ROI = &r
	}
	return sel
}

func (s *Session) beginDrag(p image.Point) *Selection {
	return s.selection(s.state.Selector.BeginDrag(s.basis(), p))
}

func (s *Session) updateDrag(p image.Point) *Selection {
	return s.selection(s.state.Selector.UpdateDrag(p))
}

func (s *Session) endDrag(p image.Point) *Selection {
	changed := s.state.Selector.EndDrag(s.basis(), p)
	if r, ok := s.state.Selector.ROI(); ok && changed {
		s.log.WithField("roi", r).Debug("roi committed")
	}
	return s.selection(changed)
}

func (s *Session) clearROI() *Selection {
	changed := s.state.Selector.Clear()
	s.state.Shown = s.state.Frame
	return s.selection(changed)
}

func (s *Session) recognize(ctx context.Context, snap Snapshot) (*Scan, error) {
	scan, err := s.rec.Recognize(ctx, snap)
	if err != nil {
		return nil, err
	}
	s.log.WithField("run_id", scan.ID).
		WithField("region", scan.Region).
		WithField("words", len(scan.Words)).
		WithField("duration_ms", scan.DurationMS).
		Info("ocr finished")
	return scan, nil
}

func (s *Session) runOCR(ctx context.Context) (*Scan, error) {
	if s.state.Frame == nil {
		return nil, ErrNoImage
	}
	scan, err := s.recognize(ctx, s.state.Snapshot())
	if err != nil {
		s.log.WithError(err).Warn("ocr failed")
		return nil, err
	}
	s.state.Last = scan
	s.state.Shown = scan.Annotated
	return scan, nil
}

func (s *Session) render(grid int) (*image.NRGBA, error) {
	if s.state.Shown == nil {
		return nil, ErrNoImage
	}
	return s.renderer.Render(s.state.Shown, s.state.Selector.Overlay(s.basis()), grid), nil
}

func (s *Session) suggestRegions(opts detection.Options) (*Suggestions, error) {
	if s.state.Frame == nil {
		return nil, ErrNoImage
	}
	b := s.basis()
	regions := detection.FindTextRegions(s.state.Frame, opts)

	sg := &Suggestions{Regions: make([]Suggestion, 0, len(regions)), Scale: b.Scale()}
	for _, r := range regions {
		sg.Regions = append(sg.Regions, Suggestion{
			Image:      r.Bounds,
			Display:    b.ImageToDisplay(r.Bounds),
			Confidence: r.Confidence,
		})
	}
	s.log.WithField("regions", len(sg.Regions)).Debug("text regions suggested")
	return sg, nil
}

func (s *Session) save(path string) (string, error) {
	if s.state.Shown == nil {
		return "", ErrNothingToSave
	}
	if path == "" {
		path = s.opts.SavePath
	}
	saved, err := imaging.Save(s.state.Shown, path)
	if err != nil {
		return "", err
	}
	s.log.WithField("path", saved).Info("result saved")
	return saved, nil
}

func (s *Session) watch(on bool) (*CameraState, error) {
	if on && !s.state.Live() {
		return nil, ErrNotLive
	}
	s.state.watching = on
	s.state.lastHash = nil
	return s.cameraState(), nil
}

func (s *Session) status() *Status {
	st := &Status{
		HasImage: s.state.Frame != nil,
		Origin:   s.state.Origin,
		Viewport: s.opts.Viewport,
		Dragging: s.state.Selector.Dragging(),
		Camera:   *s.cameraState(),
		LastScan: s.state.Last,
		Cached:   s.cache.Len(),
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Process:  processStats(),
	}
	if st.HasImage {
		size := roi.SizeOf(s.state.Frame)
		st.Width, st.Height = size.W, size.H
	}
	if r, ok := s.state.Selector.ROI(); ok {
		st.ROI = &r
	}
	return st
}

func processStats() ProcessStats {
	ps := ProcessStats{
		PID:        int32(os.Getpid()),
		Goroutines: runtime.NumGoroutine(),
	}
	p, err := process.NewProcess(ps.PID)
	if err != nil {
		return ps
	}
	if mem, err := p.MemoryInfo(); err == nil {
		ps.RSSBytes = mem.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		ps.CPUPercent = cpu
	}
	return ps
}
