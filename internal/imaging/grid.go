package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// MinGridSpacing keeps grid labels from overlapping.
const MinGridSpacing = 20

// DrawGrid draws a coordinate grid over dst every spacing pixels and labels
// each crossing with its coordinates. On the display surface those are the
// coordinates the drag tools expect, so a client can read a ROI off the
// picture. Lines are blended over the image; spacing below MinGridSpacing
// is raised to it.
func DrawGrid(dst draw.Image, spacing int, line, label color.Color) {
	if spacing < MinGridSpacing {
		spacing = MinGridSpacing
	}
	b := dst.Bounds()
	src := image.NewUniform(line)

	for x := b.Min.X + spacing; x < b.Max.X; x += spacing {
		draw.Draw(dst, image.Rect(x, b.Min.Y, x+1, b.Max.Y), src, image.Point{}, draw.Over)
	}
	for y := b.Min.Y + spacing; y < b.Max.Y; y += spacing {
		draw.Draw(dst, image.Rect(b.Min.X, y, b.Max.X, y+1), src, image.Point{}, draw.Over)
	}

	for y := b.Min.Y + spacing; y < b.Max.Y; y += spacing {
		for x := b.Min.X + spacing; x < b.Max.X; x += spacing {
			drawLabel(dst, x+2, y+11, fmt.Sprintf("%d,%d", x-b.Min.X, y-b.Min.Y), label)
		}
	}
}
