package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ironsheep/text-scanner-mcp/internal/ocr"
	"github.com/ironsheep/text-scanner-mcp/internal/roi"
)

var (
	// ErrLoad means an image file could not be read or decoded.
	ErrLoad = errors.New("failed to load image")

	// ErrCamera means the camera could not be opened or delivered no frame.
	ErrCamera = errors.New("could not open camera")

	// ErrNoImage means an action needs a frame and none is loaded.
	ErrNoImage = errors.New("load or capture an image first")

	// ErrNoFrame means there is no frame to capture.
	ErrNoFrame = errors.New("no frame to capture")

	// ErrNothingToSave means no frame has been shown yet.
	ErrNothingToSave = errors.New("nothing to save")

	// ErrNotLive means continuous scanning was requested without a camera.
	ErrNotLive = errors.New("camera is not running")

	// ErrClosed is returned by calls made after the session loop stopped.
	ErrClosed = errors.New("session closed")
)

// Level is how serious a notice is.
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Notice is the user-facing form of a failed action.
type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// NoticeFor classifies err. Input errors are warnings, engine failures are
// critical and actions that had nothing to work on are informational.
func NoticeFor(err error) Notice {
	n := Notice{Level: LevelWarning, Title: "Error", Message: err.Error()}
	switch {
	case errors.Is(err, ErrNoImage):
		n = Notice{Level: LevelInfo, Title: "Info", Message: "Load or capture an image first."}
	case errors.Is(err, ErrNoFrame):
		n = Notice{Level: LevelInfo, Title: "Info", Message: "No frame to capture."}
	case errors.Is(err, ErrNothingToSave):
		n = Notice{Level: LevelInfo, Title: "Info", Message: "Nothing to save."}
	case errors.Is(err, ErrNotLive):
		n = Notice{Level: LevelInfo, Title: "Info", Message: "Start the camera first."}
	case errors.Is(err, ErrLoad):
		n.Message = "Failed to load image."
	case errors.Is(err, ErrCamera):
		n = Notice{Level: LevelWarning, Title: "Camera", Message: "Could not open camera."}
	case errors.Is(err, roi.ErrInvalidROI):
		n.Message = "Invalid ROI."
	case errors.Is(err, ocr.ErrEngine):
		n = Notice{Level: LevelCritical, Title: "Tesseract Error", Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		n.Message = "Request cancelled."
	}
	if n.Message != err.Error() {
		n.Detail = err.Error()
	}
	return n
}
