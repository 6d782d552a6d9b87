package ocr

import (
	"context"
	"image"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ironsheep/text-scanner-mcp/internal/roi"
)

// ErrEngine marks a failure inside the OCR engine itself: the engine is not
// installed, its language data is missing, or it rejected the input. No
// partial result accompanies it.
var ErrEngine = errors.New("ocr engine failure")

// DefaultConfig is the engine configuration used when none is given.
const DefaultConfig = "--oem 3 --psm 6"

// DefaultMinConfidence is the word filter threshold on the 0-100 scale.
const DefaultMinConfidence = 40

// Word is one recognized word.
type Word struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Bounds is the word's box. Engines report it relative to the image
	// they were given; Offset moves it into frame coordinates.
	Bounds roi.Rect `json:"bounds"`

	// Confidence is the engine's score on a 0 to 100 scale. Engines report
	// -1 for entries that are not real words.
	Confidence float64 `json:"confidence"`
}

// Result is what an engine returns for one image.
type Result struct {
	// Text is the plain transcript with the engine's own line breaks.
	Text string `json:"text"`

	// Words is the raw word list, unfiltered.
	Words []Word `json:"words"`
}

// Engine recognizes text in an image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, opts Options) (*Result, error)
}

// Options configures one recognition call.
type Options struct {
	// Language is the engine language code, for example "eng".
	Language string `json:"language"`

	// OEM selects the engine mode. -1 leaves the engine default.
	OEM int `json:"oem"`

	// PSM selects the page segmentation mode. -1 leaves the engine default.
	PSM int `json:"psm"`

	// Variables are extra engine parameters.
	Variables map[string]string `json:"variables,omitempty"`
}

// ParseOptions builds Options from a command-line style configuration
// string such as "--oem 3 --psm 6". Recognized flags are --oem, --psm,
// -l <lang> and -c <name>=<value>; the long flags also accept "--oem=3".
// lang is the language used when the string carries no -l.
func ParseOptions(config, lang string) (Options, error) {
	opts := Options{Language: lang, OEM: -1, PSM: -1}
	if opts.Language == "" {
		opts.Language = "eng"
	}

	fields := strings.Fields(config)
	for i := 0; i < len(fields); i++ {
		flag, value, attached := fields[i], "", false
		if strings.HasPrefix(flag, "--") {
			if f, v, ok := strings.Cut(flag, "="); ok {
				flag, value, attached = f, v, true
			}
		}

		switch flag {
		case "--oem", "--psm", "-l", "-c":
		default:
			return Options{}, errors.Errorf("unknown engine option %q", fields[i])
		}
		if !attached {
			if i+1 >= len(fields) {
				return Options{}, errors.Errorf("engine option %s needs a value", flag)
			}
			i++
			value = fields[i]
		}

		switch flag {
		case "--oem", "--psm":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return Options{}, errors.Errorf("engine option %s: invalid value %q", flag, value)
			}
			if flag == "--oem" {
				opts.OEM = n
			} else {
				opts.PSM = n
			}
		case "-l":
			opts.Language = value
		case "-c":
			name, v, ok := strings.Cut(value, "=")
			if !ok || name == "" {
				return Options{}, errors.Errorf("engine option -c: expected name=value, got %q", value)
			}
			if opts.Variables == nil {
				opts.Variables = make(map[string]string)
			}
			opts.Variables[name] = v
		}
	}
	return opts, nil
}

// FilterWords keeps the words worth showing: integer confidence strictly
// above min and text that is not blank once trimmed. Kept words carry the
// trimmed text. Order is preserved.
func FilterWords(words []Word, min int) []Word {
	kept := make([]Word, 0, len(words))
	for _, w := range words {
		if int(w.Confidence) <= min {
			continue
		}
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		w.Text = text
		kept = append(kept, w)
	}
	return kept
}

// Offset returns a copy of words with every box shifted by origin.
func Offset(words []Word, origin image.Point) []Word {
	out := make([]Word, len(words))
	for i, w := range words {
		w.Bounds.X += origin.X
		w.Bounds.Y += origin.Y
		out[i] = w
	}
	return out
}
