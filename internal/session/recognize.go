package session

import (
	"context"
	"image"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/ironsheep/text-scanner-mcp/internal/imaging"
	"github.com/ironsheep/text-scanner-mcp/internal/ocr"
	"github.com/ironsheep/text-scanner-mcp/internal/roi"
)

// NoTextDetected is the transcript shown when the engine found nothing.
const NoTextDetected = "No text detected."

// Snapshot is the immutable input of one recognition: the frame as it was
// when the request arrived and the ROI committed at that moment.
type Snapshot struct {
	Image image.Image
	ROI   *roi.Rect
}

// Scan is the outcome of one OCR run.
type Scan struct {
	ID string `json:"id"`

	// Text is the trimmed transcript, or NoTextDetected.
	Text string `json:"text"`

	// Words are the kept words in frame coordinates.
	Words []ocr.Word `json:"words"`

	// Region is the part of the frame that was recognized.
	Region roi.Rect `json:"region"`

	// FullFrame is set when no ROI was committed.
	FullFrame bool `json:"full_frame"`

	DurationMS int64     `json:"duration_ms"`
	At         time.Time `json:"at"`

	// Annotated is the frame with word boxes drawn on it.
	Annotated *image.NRGBA `json:"-"`
}

// Recognizer runs the OCR pipeline on a snapshot: crop to the ROI,
// binarize, recognize, filter, shift boxes back into the frame and draw
// them.
type Recognizer struct {
	Engine        ocr.Engine
	Options       ocr.Options
	MinConfidence int
	Preprocess    imaging.PreprocessOptions
	Style         imaging.Style
}

// Recognize runs the pipeline. It does not touch any session state.
func (r *Recognizer) Recognize(ctx context.Context, snap Snapshot) (*Scan, error) {
	if snap.Image == nil {
		return nil, ErrNoImage
	}
	start := time.Now()

	target := snap.Image
	region := roi.Rect{W: snap.Image.Bounds().Dx(), H: snap.Image.Bounds().Dy()}
	if snap.ROI != nil {
		cropped, fitted, err := imaging.Crop(snap.Image, *snap.ROI)
		if err != nil {
			return nil, err
		}
		target, region = cropped, fitted
	}

	res, err := r.Engine.Recognize(ctx, imaging.Preprocess(target, r.Preprocess), r.Options)
	if err != nil {
		if errors.Is(err, ocr.ErrEngine) || ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.Wrapf(ocr.ErrEngine, "%v", err)
	}

	words := ocr.Offset(ocr.FilterWords(res.Words, r.MinConfidence), region.Origin())
	boxes := make([]imaging.Box, len(words))
	for i, w := range words {
		boxes[i] = imaging.Box{Rect: w.Bounds, Label: w.Text}
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		text = NoTextDetected
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "run id")
	}

	return &Scan{
		ID:         id.String(),
		Text:       text,
		Words:      words,
		Region:     region,
		FullFrame:  snap.ROI == nil,
		DurationMS: time.Since(start).Milliseconds(),
		At:         start,
		Annotated:  imaging.Annotate(snap.Image, boxes, r.Style),
	}, nil
}
