package roi

import "github.com/pkg/errors"

// ErrInvalidROI is returned when a stored ROI leaves nothing to crop
// from the current frame.
var ErrInvalidROI = errors.New("invalid ROI")

// Basis pairs the original frame size with the viewport it is displayed in.
// It is the only input the mappings need; callers build a fresh one from the
// current frame and viewport for every gesture or redraw.
type Basis struct {
	Image   Size `json:"image"`
	Display Size `json:"display"`
}

// Valid reports whether a frame is loaded and the viewport has an area.
func (b Basis) Valid() bool {
	return b.Image.Valid() && b.Display.Valid()
}

// Scale returns image pixels per display pixel, using the larger of the two
// axis ratios. It returns 0 when the basis is not valid.
func (b Basis) Scale() float64 {
	if !b.Valid() {
		return 0
	}
	sx := float64(b.Image.W) / float64(b.Display.W)
	sy := float64(b.Image.H) / float64(b.Display.H)
	return max(sx, sy)
}

// DisplayToImage maps a display-space rectangle into the frame and clamps it
// to the frame bounds. The zero Rect is returned without a valid basis.
func (b Basis) DisplayToImage(r Rect) Rect {
	return b.DisplayToImageF(FRect{X: float64(r.X), Y: float64(r.Y), W: float64(r.W), H: float64(r.H)})
}

// DisplayToImageF is DisplayToImage for fractional display coordinates.
//
// Each component is multiplied by Scale and truncated toward zero. X and Y
// are then held inside [0, width] and [0, height], and W and H are cut so
// that X+W <= image width and Y+H <= image height, never going below 0. A
// rectangle entirely past the right or bottom edge comes out empty at the
// edge; Resolve rejects it at crop time.
func (b Basis) DisplayToImageF(r FRect) Rect {
	scale := b.Scale()
	if scale == 0 {
		return Rect{}
	}
	x := min(max(0, int(r.X*scale)), b.Image.W)
	y := min(max(0, int(r.Y*scale)), b.Image.H)
	w := max(0, min(int(r.W*scale), b.Image.W-x))
	h := max(0, min(int(r.H*scale), b.Image.H-y))
	return Rect{X: x, Y: y, W: w, H: h}
}

// ImageToDisplay is the inverse mapping, kept in floating point. It is used
// for drawing only and applies no clamping.
func (b Basis) ImageToDisplay(r Rect) FRect {
	scale := b.Scale()
	if scale == 0 {
		return FRect{}
	}
	inv := 1.0 / scale
	return FRect{
		X: float64(r.X) * inv,
		Y: float64(r.Y) * inv,
		W: float64(r.W) * inv,
		H: float64(r.H) * inv,
	}
}

// Resolve fits a stored ROI to the frame it is about to crop. A rectangle
// that sticks out of the frame is clamped; one that has no pixels inside the
// frame, or none at all, yields ErrInvalidROI.
func Resolve(r Rect, frame Size) (Rect, error) {
	if r.Empty() {
		return Rect{}, errors.Wrapf(ErrInvalidROI, "empty region %s", r)
	}
	x0, y0 := max(0, r.X), max(0, r.Y)
	x1, y1 := min(r.X+r.W, frame.W), min(r.Y+r.H, frame.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, errors.Wrapf(ErrInvalidROI, "region %s outside %dx%d frame", r, frame.W, frame.H)
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, nil
}
