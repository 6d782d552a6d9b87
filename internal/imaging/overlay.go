package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/text-scanner-mcp/internal/roi"
)

const (
	dashOn  = 8
	dashOff = 6
)

// Style holds the colours and stroke used for every overlay.
type Style struct {
	Box        color.Color // recognized word boxes
	Label      color.Color // word labels above the boxes
	Drag       color.Color // drag rectangle in progress
	ROI        color.Color // committed ROI outline
	Background color.Color // viewport area outside the frame
	Grid       color.Color // coordinate grid, blended over the display
	LineWidth  int
	LabelRunes int // labels are cut to this many runes
}

// DefaultStyle matches the scanner's dark theme.
func DefaultStyle() Style {
	return Style{
		Box:        color.NRGBA{80, 220, 100, 255},
		Label:      color.NRGBA{255, 100, 100, 255},
		Drag:       color.NRGBA{0, 255, 100, 255},
		ROI:        color.NRGBA{255, 80, 80, 255},
		Background: color.NRGBA{43, 43, 43, 255},
		Grid:       color.NRGBA{255, 255, 255, 96},
		LineWidth:  3,
		LabelRunes: 30,
	}
}

// StyleColors are hex colour strings ("#rrggbb") for a Style.
type StyleColors struct {
	Box        string `yaml:"box" json:"box"`
	Label      string `yaml:"label" json:"label"`
	Drag       string `yaml:"drag" json:"drag"`
	ROI        string `yaml:"roi" json:"roi"`
	Background string `yaml:"background" json:"background"`
	Grid       string `yaml:"grid" json:"grid"`
}

// ParseStyle builds a Style from hex colours. Empty strings keep the
// default colour.
func ParseStyle(c StyleColors, lineWidth, labelRunes int) (Style, error) {
	s := DefaultStyle()
	fields := []struct {
		name string
		hex  string
		dst  *color.Color
	}{
		{"box", c.Box, &s.Box},
		{"label", c.Label, &s.Label},
		{"drag", c.Drag, &s.Drag},
		{"roi", c.ROI, &s.ROI},
		{"background", c.Background, &s.Background},
		{"grid", c.Grid, &s.Grid},
	}
	for _, f := range fields {
		if f.hex == "" {
			continue
		}
		parsed, err := colorful.Hex(f.hex)
		if err != nil {
			return Style{}, errors.Wrapf(err, "%s colour %q", f.name, f.hex)
		}
		r, g, b := parsed.RGB255()
		*f.dst = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	if lineWidth > 0 {
		s.LineWidth = lineWidth
	}
	if labelRunes > 0 {
		s.LabelRunes = labelRunes
	}
	return s, nil
}

// Box is a labelled rectangle in frame coordinates.
type Box struct {
	Rect  roi.Rect
	Label string
}

// Annotate returns a copy of img with each box outlined and its label
// written just above it. The source frame is left untouched.
func Annotate(img image.Image, boxes []Box, style Style) *image.NRGBA {
	out := imaging.Clone(img)
	for _, b := range boxes {
		r := b.Rect.Bounds()
		StrokeRect(out, r, style.Box, style.LineWidth)
		drawLabel(out, r.Min.X, r.Min.Y-8, truncateRunes(b.Label, style.LabelRunes), style.Label)
	}
	return out
}

// StrokeRect draws a solid outline of the given width inside r.
func StrokeRect(dst draw.Image, r image.Rectangle, c color.Color, width int) {
	strokeRect(dst, r, c, width, false)
}

// DashRect draws a dashed outline of the given width inside r.
func DashRect(dst draw.Image, r image.Rectangle, c color.Color, width int) {
	strokeRect(dst, r, c, width, true)
}

func strokeRect(dst draw.Image, r image.Rectangle, c color.Color, width int, dashed bool) {
	r = r.Canon()
	if width < 1 {
		width = 1
	}
	clip := dst.Bounds()
	on := func(i int) bool {
		return !dashed || i%(dashOn+dashOff) < dashOn
	}

	for t := 0; t < width; t++ {
		top, bottom := r.Min.Y+t, r.Max.Y-1-t
		left, right := r.Min.X+t, r.Max.X-1-t
		if top > bottom || left > right {
			break
		}
		for x := left; x <= right; x++ {
			if on(x - r.Min.X) {
				setClipped(dst, clip, x, top, c)
				setClipped(dst, clip, x, bottom, c)
			}
		}
		for y := top; y <= bottom; y++ {
			if on(y - r.Min.Y) {
				setClipped(dst, clip, left, y, c)
				setClipped(dst, clip, right, y, c)
			}
		}
	}
}

func setClipped(dst draw.Image, clip image.Rectangle, x, y int, c color.Color) {
	if image.Pt(x, y).In(clip) {
		dst.Set(x, y, c)
	}
}

// drawLabel writes text with its baseline at (x, y) in the 7x13 bitmap font.
func drawLabel(dst draw.Image, x, y int, text string, c color.Color) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
