package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// PreprocessOptions tunes the binarization applied before OCR.
type PreprocessOptions struct {
	// DenoiseRadius is the median filter radius. 0 disables denoising.
	DenoiseRadius float64 `yaml:"denoise_radius" json:"denoise_radius"`

	// BlockSize is the side of the neighbourhood the local threshold is
	// computed over. Must be odd and at least 3.
	BlockSize int `yaml:"block_size" json:"block_size"`

	// Offset is subtracted from the local mean; pixels brighter than
	// mean-Offset become white.
	Offset float64 `yaml:"offset" json:"offset"`

	// AutoInvert flips mostly-dark crops first, so light text on a dark
	// background still comes out black on white.
	AutoInvert bool `yaml:"auto_invert" json:"auto_invert"`
}

// DefaultPreprocessOptions returns settings suited to printed text.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		DenoiseRadius: 1,
		BlockSize:     31,
		Offset:        12,
		AutoInvert:    true,
	}
}

// Preprocess converts a frame into a black-and-white image for the OCR
// engine: grayscale, optional inversion of dark crops, median denoise, then
// an adaptive threshold against a Gaussian-weighted local mean.
func Preprocess(img image.Image, opts PreprocessOptions) *image.Gray {
	gray := imaging.Grayscale(img)
	if opts.AutoInvert && meanLuma(gray) < 128 {
		gray = imaging.Invert(gray)
	}

	var src image.Image = gray
	if opts.DenoiseRadius > 0 {
		src = effect.Median(src, opts.DenoiseRadius)
	}

	block := opts.BlockSize
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	// Same sigma OpenCV derives for a Gaussian adaptive threshold. bild's
	// kernel is exp(-x²/4r), so r = sigma²/2.
	sigma := 0.3*(float64(block-1)*0.5-1) + 0.8
	mean := blur.Gaussian(src, sigma*sigma/2)

	return adaptiveThreshold(src, mean, opts.Offset)
}

func adaptiveThreshold(src, mean image.Image, offset float64) *image.Gray {
	bounds := src.Bounds()
	mb := mean.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			v := luma(src.At(bounds.Min.X+x, bounds.Min.Y+y))
			m := luma(mean.At(mb.Min.X+x, mb.Min.Y+y))
			if v > m-offset {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// meanLuma averages a grayscale NRGBA image.
func meanLuma(gray *image.NRGBA) float64 {
	b := gray.Bounds()
	if b.Empty() {
		return 0
	}
	var sum int
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			sum += int(row[i])
		}
	}
	return float64(sum) / float64(b.Dx()*b.Dy())
}

// luma reads an 8-bit intensity; inputs here are already gray so the red
// channel is enough.
func luma(c color.Color) float64 {
	r, _, _, _ := c.RGBA()
	return float64(r >> 8)
}
