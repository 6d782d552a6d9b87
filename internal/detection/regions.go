package detection

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/text-scanner-mcp/internal/roi"
)

const (
	// edgeThreshold is the central-difference gradient that counts as an edge.
	edgeThreshold = 60

	minDensity    = 0.05
	maxDensity    = 0.4
	targetDensity = 0.2
)

// windows are typical text-line extents, smallest last.
var windows = []roi.Size{
	{W: 100, H: 30},
	{W: 150, H: 40},
	{W: 200, H: 50},
	{W: 80, H: 25},
}

// Region is a candidate text area.
type Region struct {
	Bounds     roi.Rect `json:"bounds"`
	Confidence float64  `json:"confidence"`
}

// Options tunes FindTextRegions.
type Options struct {
	// MinConfidence drops weaker windows before merging, 0..1.
	MinConfidence float64

	// Limit caps the number of regions returned; 0 means no cap.
	Limit int
}

// DefaultOptions are used by the scanner's suggestion tool.
func DefaultOptions() Options {
	return Options{MinConfidence: 0.3, Limit: 10}
}

// FindTextRegions returns candidate text regions in img, most confident
// first. Frames smaller than the smallest window yield nothing.
func FindTextRegions(img image.Image, opts Options) []Region {
	if img == nil {
		return nil
	}
	em := newEdgeMap(img)

	var candidates []Region
	for _, win := range windows {
		stepX, stepY := win.W/2, win.H/2
		area := float64(win.W * win.H)
		for y := 0; y+win.H <= em.h; y += stepY {
			for x := 0; x+win.W <= em.w; x += stepX {
				density := float64(em.count(x, y, win.W, win.H)) / area
				if density < minDensity || density > maxDensity {
					continue
				}
				conf := em.horizontalScore(x, y, win.W, win.H) *
					(1 - math.Abs(density-targetDensity)/targetDensity)
				if conf < opts.MinConfidence {
					continue
				}
				candidates = append(candidates, Region{
					Bounds:     roi.Rect{X: x, Y: y, W: win.W, H: win.H},
					Confidence: math.Round(conf*1000) / 1000,
				})
			}
		}
	}

	regions := merge(candidates)
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Confidence > regions[j].Confidence
	})
	if opts.Limit > 0 && len(regions) > opts.Limit {
		regions = regions[:opts.Limit]
	}
	return regions
}

// edgeMap is a binary gradient image with a summed-area table for fast
// window counts.
type edgeMap struct {
	w, h  int
	edges []bool
	sum   []int // (w+1)*(h+1) prefix sums
}

func newEdgeMap(img image.Image) *edgeMap {
	gray := imaging.Grayscale(img)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	em := &edgeMap{w: w, h: h, edges: make([]bool, w*h), sum: make([]int, (w+1)*(h+1))}

	// Grayscale leaves R=G=B; read R.
	at := func(x, y int) int {
		return int(gray.Pix[y*gray.Stride+x*4])
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			dx := abs(at(x+1, y) - at(x-1, y))
			dy := abs(at(x, y+1) - at(x, y-1))
			em.edges[y*w+x] = dx > edgeThreshold || dy > edgeThreshold
		}
	}

	for y := 0; y < h; y++ {
		row := 0
		for x := 0; x < w; x++ {
			if em.edges[y*w+x] {
				row++
			}
			em.sum[(y+1)*(w+1)+x+1] = em.sum[y*(w+1)+x+1] + row
		}
	}
	return em
}

func (em *edgeMap) at(x, y int) bool {
	return em.edges[y*em.w+x]
}

// count returns the number of edge pixels in the window.
func (em *edgeMap) count(x, y, w, h int) int {
	s := em.w + 1
	return em.sum[(y+h)*s+x+w] - em.sum[y*s+x+w] - em.sum[(y+h)*s+x] + em.sum[y*s+x]
}

// horizontalScore is the share of edge runs found scanning rows rather than
// columns. Glyph strokes cut across rows many times, so lines of text score
// high.
func (em *edgeMap) horizontalScore(x, y, w, h int) float64 {
	rowRuns, colRuns := 0, 0
	for r := y; r < y+h; r++ {
		in := false
		for c := x; c < x+w; c++ {
			e := em.at(c, r)
			if e && !in {
				rowRuns++
			}
			in = e
		}
	}
	for c := x; c < x+w; c++ {
		in := false
		for r := y; r < y+h; r++ {
			e := em.at(c, r)
			if e && !in {
				colRuns++
			}
			in = e
		}
	}
	if rowRuns+colRuns == 0 {
		return 0
	}
	return float64(rowRuns) / float64(rowRuns+colRuns)
}

// merge folds overlapping candidates into their union, keeping the best
// confidence. It repeats until no two regions overlap.
func merge(candidates []Region) []Region {
	merged := append([]Region(nil), candidates...)
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(merged); i++ {
			for j := i + 1; j < len(merged); j++ {
				a, b := merged[i].Bounds.Bounds(), merged[j].Bounds.Bounds()
				if !a.Overlaps(b) {
					continue
				}
				u := a.Union(b)
				merged[i].Bounds = roi.Rect{X: u.Min.X, Y: u.Min.Y, W: u.Dx(), H: u.Dy()}
				merged[i].Confidence = math.Max(merged[i].Confidence, merged[j].Confidence)
				merged = append(merged[:j], merged[j+1:]...)
				changed = true
				j = i
			}
		}
	}
	return merged
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
