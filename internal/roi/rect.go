package roi

import (
	"fmt"
	"image"
)

// Size is a width and height in pixels.
type Size struct {
	W int `json:"width"`
	H int `json:"height"`
}

// SizeOf returns the dimensions of img, or the zero Size for a nil image.
func SizeOf(img image.Image) Size {
	if img == nil {
		return Size{}
	}
	b := img.Bounds()
	return Size{W: b.Dx(), H: b.Dy()}
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.W > 0 && s.H > 0
}

// Rect is an integer rectangle given by its top-left corner and extent.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"width"`
	H int `json:"height"`
}

// FromPoints returns the canonical rectangle spanned by two corners,
// with non-negative width and height whatever the drag direction.
func FromPoints(a, b image.Point) Rect {
	x, w := a.X, b.X-a.X
	if w < 0 {
		x, w = b.X, -w
	}
	y, h := a.Y, b.Y-a.Y
	if h < 0 {
		y, h = b.Y, -h
	}
	return Rect{X: x, Y: y, W: w, H: h}
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Bounds converts r to an image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Origin returns the top-left corner.
func (r Rect) Origin() image.Point {
	return image.Pt(r.X, r.Y)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// FRect is a rectangle in floating-point display coordinates.
type FRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Bounds truncates r to whole pixels for drawing.
func (r FRect) Bounds() image.Rectangle {
	x, y := int(r.X), int(r.Y)
	return image.Rect(x, y, x+int(r.W), y+int(r.H))
}
