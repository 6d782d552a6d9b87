package imaging

import (
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ironsheep/text-scanner-mcp/internal/roi"
)

// Renderer is the display surface: a fixed-size viewport the current frame
// is scaled into, with the ROI outlines drawn on top.
//
// The frame is divided by roi.Basis.Scale and anchored at the viewport's
// top-left corner, so display coordinates map to frame coordinates without
// an offset. Whatever the frame does not cover is filled with the style
// background.
type Renderer struct {
	Viewport roi.Size
	Style    Style
}

// NewRenderer creates a renderer for a viewport of the given size.
func NewRenderer(viewport roi.Size, style Style) *Renderer {
	return &Renderer{Viewport: viewport, Style: style}
}

// Basis returns the mapping basis for frame on this viewport.
func (r *Renderer) Basis(frame image.Image) roi.Basis {
	return roi.Basis{Image: roi.SizeOf(frame), Display: r.Viewport}
}

// Render draws one redraw of the display surface. frame may be nil, in
// which case only the background is drawn. A positive grid adds a
// coordinate grid with that spacing in display pixels.
func (r *Renderer) Render(frame image.Image, ov roi.Overlay, grid int) *image.NRGBA {
	canvas := imaging.New(r.Viewport.W, r.Viewport.H, r.Style.Background)

	b := r.Basis(frame)
	if scale := b.Scale(); scale > 0 {
		w := max(1, int(float64(b.Image.W)/scale))
		h := max(1, int(float64(b.Image.H)/scale))
		scaled := imaging.Resize(frame, w, h, imaging.Lanczos)
		canvas = imaging.Paste(canvas, scaled, image.Pt(0, 0))
	}

	if grid > 0 {
		DrawGrid(canvas, grid, r.Style.Grid, r.Style.Label)
	}
	if ov.Drag != nil {
		StrokeRect(canvas, ov.Drag.Bounds(), r.Style.Drag, r.Style.LineWidth)
	}
	if ov.Committed != nil {
		DashRect(canvas, ov.Committed.Bounds(), r.Style.ROI, r.Style.LineWidth)
	}
	return canvas
}

// Save writes img to path. The format follows the extension; a path
// without one gets ".png". The final path is returned.
func Save(img image.Image, path string) (string, error) {
	if img == nil {
		return "", errors.New("nothing to save")
	}
	if filepath.Ext(path) == "" {
		path += ".png"
	}
	if err := imaging.Save(img, path); err != nil {
		return "", errors.Wrapf(err, "save %s", path)
	}
	return path, nil
}
