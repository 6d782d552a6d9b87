package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/text-scanner-mcp/internal/roi"
)

// oemDefault is the engine mode Tesseract picks on its own; it is the only
// mode the gosseract binding can initialize with.
const oemDefault = 3

// Tesseract is an Engine backed by the Tesseract library through gosseract.
//
// A fresh client is created for every call, so a Tesseract value may be
// shared between goroutines.
type Tesseract struct {
	// TessdataPrefix is the directory holding the traineddata files.
	// Empty means the library default (the TESSDATA_PREFIX environment
	// variable, then the compiled-in path).
	TessdataPrefix string

	log *logrus.Entry
}

// NewTesseract creates a Tesseract engine.
func NewTesseract(tessdataPrefix string, log *logrus.Logger) *Tesseract {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tesseract{
		TessdataPrefix: tessdataPrefix,
		log:            log.WithField("component", "tesseract"),
	}
}

// Recognize runs Tesseract on img.
//
// The image is handed over as PNG. Words come from the word-level iterator
// with boxes relative to img's top-left corner and confidences on the
// engine's 0-100 scale. Every failure wraps ErrEngine.
//
// The call is not interruptible; ctx is only checked before it starts.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.Wrap(ErrEngine, "no image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrapf(ErrEngine, "encode image: %v", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := t.configure(client, opts); err != nil {
		return nil, err
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, errors.Wrapf(ErrEngine, "set image: %v", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, errors.Wrapf(ErrEngine, "recognize text: %v", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, errors.Wrapf(ErrEngine, "word boxes: %v", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:       b.Word,
			Bounds:     roi.Rect{X: b.Box.Min.X, Y: b.Box.Min.Y, W: b.Box.Dx(), H: b.Box.Dy()},
			Confidence: b.Confidence,
		})
	}

	return &Result{Text: text, Words: words}, nil
}

func (t *Tesseract) configure(client *gosseract.Client, opts Options) error {
	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return errors.Wrapf(ErrEngine, "tessdata prefix: %v", err)
		}
	}

	lang := opts.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return errors.Wrapf(ErrEngine, "set language %q: %v", lang, err)
	}

	if opts.OEM >= 0 && opts.OEM != oemDefault {
		t.log.WithField("oem", opts.OEM).Warn("engine mode not supported by binding, using default")
	}
	if opts.PSM >= 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PSM)); err != nil {
			return errors.Wrapf(ErrEngine, "page segmentation mode %d: %v", opts.PSM, err)
		}
	}
	for k, v := range opts.Variables {
		if err := client.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return errors.Wrapf(ErrEngine, "set variable %s: %v", k, err)
		}
	}
	return nil
}

// Version reports the linked Tesseract version.
func (t *Tesseract) Version() string {
	return gosseract.Version()
}
