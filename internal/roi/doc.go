// Package roi tracks the region-of-interest drag gesture and maps rectangles
// between display space and image space.
//
// # Coordinate Spaces
//
// Display space is the pixel grid of the fixed-size viewport the frame is
// rendered into. Image space is the pixel grid of the original, unscaled
// frame. Both use a top-left origin with X growing rightward and Y growing
// downward.
//
// The frame is scaled into the viewport by a single factor
//
//	scale = max(imageW/displayW, imageH/displayH)
//
// so one display pixel covers scale image pixels on both axes. The factor is
// never stored; it is recomputed from the current Basis on every mapping, so
// a committed ROI stays correct when the frame or the viewport changes size.
//
// # Selector Lifecycle
//
// A Selector holds two pieces of state: the in-progress drag (two raw
// display-space corners) and the committed ROI in image space. The committed
// ROI is replaced only when a drag ends, and removed by Clear or Reset.
// Frames arriving from a camera do not touch it.
//
// Mapping never fails. Degenerate geometry collapses to an empty Rect, and
// Resolve reports ErrInvalidROI when the rectangle has to be used for a crop.
package roi
