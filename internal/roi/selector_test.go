package roi

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basis(iw, ih, dw, dh int) Basis {
	return Basis{Image: Size{W: iw, H: ih}, Display: Size{W: dw, H: dh}}
}

func TestBasis_Scale(t *testing.T) {
	tests := []struct {
		name  string
		basis Basis
		want  float64
	}{
		{"tall image", basis(1000, 2000, 500, 500), 4},
		{"wide image", basis(1440, 540, 720, 540), 2},
		{"smaller than viewport", basis(360, 270, 720, 540), 0.5},
		{"no image", basis(0, 0, 720, 540), 0},
		{"no viewport", basis(640, 480, 0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.basis.Scale())
		})
	}
}

func TestSelector_DragScenario(t *testing.T) {
	b := basis(1000, 2000, 500, 500)
	var s Selector

	require.True(t, s.BeginDrag(b, image.Pt(10, 10)))
	require.True(t, s.UpdateDrag(image.Pt(30, 45)))
	require.True(t, s.EndDrag(b, image.Pt(60, 60)))

	got, ok := s.ROI()
	require.True(t, ok)
	assert.Equal(t, Rect{X: 40, Y: 40, W: 200, H: 200}, got)
	assert.False(t, s.Dragging())
}

func TestSelector_ReverseDragNormalizes(t *testing.T) {
	b := basis(1000, 2000, 500, 500)
	var s Selector

	s.BeginDrag(b, image.Pt(60, 60))
	s.EndDrag(b, image.Pt(10, 10))

	got, ok := s.ROI()
	require.True(t, ok)
	assert.Equal(t, Rect{X: 40, Y: 40, W: 200, H: 200}, got)
}

func TestSelector_ClickWithoutMove(t *testing.T) {
	b := basis(640, 480, 720, 540)
	var s Selector

	s.BeginDrag(b, image.Pt(100, 100))
	s.EndDrag(b, image.Pt(100, 100))

	got, ok := s.ROI()
	require.True(t, ok)
	assert.Zero(t, got.W)
	assert.Zero(t, got.H)
	assert.True(t, got.Empty())
}

func TestSelector_NoImageIsNoop(t *testing.T) {
	var s Selector
	none := basis(0, 0, 720, 540)

	assert.False(t, s.BeginDrag(none, image.Pt(5, 5)))
	assert.False(t, s.Dragging())
	assert.False(t, s.UpdateDrag(image.Pt(10, 10)))
	assert.False(t, s.EndDrag(none, image.Pt(10, 10)))

	_, ok := s.ROI()
	assert.False(t, ok)
	assert.Equal(t, Rect{}, none.DisplayToImage(Rect{X: 1, Y: 2, W: 3, H: 4}))
	assert.Equal(t, FRect{}, none.ImageToDisplay(Rect{X: 1, Y: 2, W: 3, H: 4}))
}

func TestSelector_ReleaseWithoutPress(t *testing.T) {
	b := basis(640, 480, 720, 540)
	var s Selector

	assert.False(t, s.EndDrag(b, image.Pt(10, 10)))
	_, ok := s.ROI()
	assert.False(t, ok)
}

func TestSelector_FrameLostMidDragKeepsPreviousROI(t *testing.T) {
	b := basis(1000, 2000, 500, 500)
	var s Selector
	s.BeginDrag(b, image.Pt(10, 10))
	s.EndDrag(b, image.Pt(60, 60))

	s.BeginDrag(b, image.Pt(0, 0))
	assert.True(t, s.EndDrag(basis(0, 0, 500, 500), image.Pt(100, 100)))

	got, ok := s.ROI()
	require.True(t, ok)
	assert.Equal(t, Rect{X: 40, Y: 40, W: 200, H: 200}, got)
}

func TestSelector_ClampsToImage(t *testing.T) {
	tests := []struct {
		name       string
		basis      Basis
		start, end image.Point
	}{
		{"past bottom right", basis(100, 100, 50, 50), image.Pt(20, 20), image.Pt(90, 90)},
		{"negative start", basis(100, 100, 50, 50), image.Pt(-10, -10), image.Pt(30, 30)},
		{"entirely outside", basis(100, 100, 50, 50), image.Pt(70, 70), image.Pt(90, 95)},
		{"huge drag", basis(1000, 2000, 500, 500), image.Pt(-500, -500), image.Pt(5000, 5000)},
		{"fractional scale", basis(333, 777, 720, 540), image.Pt(100, 100), image.Pt(719, 539)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Selector
			s.BeginDrag(tt.basis, tt.start)
			s.EndDrag(tt.basis, tt.end)

			r, ok := s.ROI()
			require.True(t, ok)
			assert.GreaterOrEqual(t, r.X, 0)
			assert.GreaterOrEqual(t, r.Y, 0)
			assert.GreaterOrEqual(t, r.W, 0)
			assert.GreaterOrEqual(t, r.H, 0)
			assert.LessOrEqual(t, r.X+r.W, tt.basis.Image.W)
			assert.LessOrEqual(t, r.Y+r.H, tt.basis.Image.H)
		})
	}
}

func TestSelector_DragPastEdgeStaysOnFrame(t *testing.T) {
	b := basis(100, 100, 50, 50)
	var s Selector
	s.BeginDrag(b, image.Pt(70, 70))
	s.EndDrag(b, image.Pt(90, 95))

	r, ok := s.ROI()
	require.True(t, ok)
	assert.Equal(t, Rect{X: 100, Y: 100, W: 0, H: 0}, r)

	_, err := Resolve(r, b.Image)
	assert.True(t, errors.Is(err, ErrInvalidROI))
}

func TestBasis_DisplayToImageClampsOrigin(t *testing.T) {
	b := basis(100, 100, 50, 50)
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside", Rect{X: 10, Y: 10, W: 20, H: 20}, Rect{X: 20, Y: 20, W: 40, H: 40}},
		{"x past edge", Rect{X: 60, Y: 10, W: 5, H: 5}, Rect{X: 100, Y: 20, W: 0, H: 10}},
		{"y past edge", Rect{X: 10, Y: 80, W: 5, H: 5}, Rect{X: 20, Y: 100, W: 10, H: 0}},
		{"on the edge", Rect{X: 50, Y: 50, W: 1, H: 1}, Rect{X: 100, Y: 100, W: 0, H: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.DisplayToImage(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got.X+got.W, b.Image.W)
			assert.LessOrEqual(t, got.Y+got.H, b.Image.H)
		})
	}
}

func TestSelector_InProgressRectIsRaw(t *testing.T) {
	b := basis(100, 100, 50, 50)
	var s Selector

	s.BeginDrag(b, image.Pt(40, 40))
	s.UpdateDrag(image.Pt(-20, 70))

	ov := s.Overlay(b)
	require.NotNil(t, ov.Drag)
	assert.Equal(t, Rect{X: -20, Y: 40, W: 60, H: 30}, *ov.Drag)
	assert.Nil(t, ov.Committed)
}

func TestSelector_OverlayProjectsCommitted(t *testing.T) {
	b := basis(1000, 2000, 500, 500)
	var s Selector
	s.BeginDrag(b, image.Pt(10, 10))
	s.EndDrag(b, image.Pt(60, 60))

	ov := s.Overlay(b)
	assert.Nil(t, ov.Drag)
	require.NotNil(t, ov.Committed)
	assert.InDelta(t, 10, ov.Committed.X, 1e-9)
	assert.InDelta(t, 50, ov.Committed.W, 1e-9)

	// A differently sized frame reprojects the same image-space rectangle.
	ov = s.Overlay(basis(2000, 4000, 500, 500))
	require.NotNil(t, ov.Committed)
	assert.InDelta(t, 5, ov.Committed.X, 1e-9)
	assert.InDelta(t, 25, ov.Committed.W, 1e-9)
}

func TestSelector_Clear(t *testing.T) {
	b := basis(640, 480, 720, 540)
	var s Selector
	s.BeginDrag(b, image.Pt(10, 10))
	s.EndDrag(b, image.Pt(100, 100))

	assert.True(t, s.Clear())
	_, ok := s.ROI()
	assert.False(t, ok)
	assert.Nil(t, s.Overlay(b).Committed)
}

func TestSelector_Reset(t *testing.T) {
	b := basis(640, 480, 720, 540)
	var s Selector
	s.BeginDrag(b, image.Pt(10, 10))
	s.EndDrag(b, image.Pt(100, 100))
	s.BeginDrag(b, image.Pt(1, 1))

	s.Reset()
	assert.False(t, s.Dragging())
	_, ok := s.ROI()
	assert.False(t, ok)
}

func TestBasis_RoundTrip(t *testing.T) {
	images := []Size{{1000, 2000}, {640, 480}, {1920, 1080}, {333, 777}, {50, 50}, {4001, 3}}
	displays := []Size{{500, 500}, {720, 540}, {101, 67}, {1280, 720}}
	rects := []Rect{
		{0, 0, 1, 1},
		{3, 7, 11, 13},
		{10, 20, 30, 40},
		{0, 0, 50, 50},
		{17, 1, 29, 2},
	}

	for _, is := range images {
		for _, ds := range displays {
			b := Basis{Image: is, Display: ds}
			for _, src := range rects {
				// Start from a rectangle that is already valid in image space.
				want, err := Resolve(src, is)
				if err != nil {
					continue
				}
				got := b.DisplayToImageF(b.ImageToDisplay(want))
				assert.InDelta(t, want.X, got.X, 1, "x for %v in %v", want, b)
				assert.InDelta(t, want.Y, got.Y, 1, "y for %v in %v", want, b)
				assert.InDelta(t, want.W, got.W, 1, "w for %v in %v", want, b)
				assert.InDelta(t, want.H, got.H, 1, "h for %v in %v", want, b)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	frame := Size{W: 320, H: 240}

	tests := []struct {
		name    string
		in      Rect
		want    Rect
		wantErr bool
	}{
		{"inside", Rect{10, 10, 100, 50}, Rect{10, 10, 100, 50}, false},
		{"overhangs right and bottom", Rect{300, 200, 100, 100}, Rect{300, 200, 20, 40}, false},
		{"larger frame ROI", Rect{0, 0, 1920, 1080}, Rect{0, 0, 320, 240}, false},
		{"negative origin", Rect{-10, -5, 30, 30}, Rect{0, 0, 20, 25}, false},
		{"entirely right of frame", Rect{400, 10, 50, 50}, Rect{}, true},
		{"entirely below frame", Rect{10, 240, 50, 50}, Rect{}, true},
		{"zero area", Rect{10, 10, 0, 0}, Rect{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.in, frame)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidROI))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromPoints(t *testing.T) {
	assert.Equal(t, Rect{X: 1, Y: 2, W: 3, H: 4}, FromPoints(image.Pt(4, 6), image.Pt(1, 2)))
	assert.Equal(t, Rect{X: 1, Y: 2, W: 3, H: 4}, FromPoints(image.Pt(1, 6), image.Pt(4, 2)))
	assert.Equal(t, Rect{X: 5, Y: 5}, FromPoints(image.Pt(5, 5), image.Pt(5, 5)))
}
