package roi

import "image"

// Selector is the drag-and-commit state behind ROI selection.
//
// The zero value has no drag in progress and no committed ROI. Selector is
// a plain value owned by the session state; it is not safe for concurrent
// use and does not need to be, since gestures arrive one at a time.
//
// Methods that change what should be on screen return true so the caller
// can schedule a redraw.
type Selector struct {
	dragging  bool
	start     image.Point
	end       image.Point
	committed *Rect
}

// BeginDrag starts a new rectangle at p. Without a loaded frame there is no
// scale to map against, so the call is ignored.
func (s *Selector) BeginDrag(b Basis, p image.Point) bool {
	if !b.Valid() {
		return false
	}
	s.dragging = true
	s.start = p
	s.end = p
	return true
}

// UpdateDrag moves the live corner while a drag is in progress.
func (s *Selector) UpdateDrag(p image.Point) bool {
	if !s.dragging {
		return false
	}
	s.end = p
	return true
}

// EndDrag finishes the drag at p and commits the mapped, clamped rectangle.
// A release without a matching press is ignored. If the frame went away
// during the drag the gesture is dropped and the previous ROI kept.
func (s *Selector) EndDrag(b Basis, p image.Point) bool {
	if !s.dragging {
		return false
	}
	s.dragging = false
	s.end = p
	if !b.Valid() {
		return true
	}
	r := b.DisplayToImage(FromPoints(s.start, s.end))
	s.committed = &r
	return true
}

// Clear drops the committed ROI.
func (s *Selector) Clear() bool {
	s.committed = nil
	return true
}

// Reset drops both the committed ROI and any drag in progress.
func (s *Selector) Reset() {
	*s = Selector{}
}

// Dragging reports whether a drag is in progress.
func (s *Selector) Dragging() bool {
	return s.dragging
}

// ROI returns the committed image-space rectangle.
func (s *Selector) ROI() (Rect, bool) {
	if s.committed == nil {
		return Rect{}, false
	}
	return *s.committed, true
}

// DragRect returns the normalized display-space rectangle of the drag in
// progress. Corners are used as-is, without clamping.
func (s *Selector) DragRect() (Rect, bool) {
	if !s.dragging {
		return Rect{}, false
	}
	return FromPoints(s.start, s.end), true
}

// Overlay describes what a redraw has to outline on top of the frame.
type Overlay struct {
	// Drag is the rectangle being dragged, drawn solid, in display space.
	Drag *Rect `json:"drag,omitempty"`

	// Committed is the stored ROI projected into display space, drawn dashed.
	Committed *FRect `json:"committed,omitempty"`
}

// Overlay returns the outlines to draw for basis b. Neither outline affects
// stored state.
func (s *Selector) Overlay(b Basis) Overlay {
	var ov Overlay
	if r, ok := s.DragRect(); ok {
		ov.Drag = &r
	}
	if r, ok := s.ROI(); ok && b.Valid() {
		d := b.ImageToDisplay(r)
		ov.Committed = &d
	}
	return ov
}
