// Package session is the scanner's orchestration layer.
//
// A Session owns one State: the current frame, what is shown for it, the ROI
// selector, the last OCR result and the camera. Every command (load, camera
// control, drag gestures, OCR, render, save) and every camera tick runs on
// the single goroutine started by Run, so State needs no locking. Public
// methods queue a command and wait for it.
//
// OCR itself is a pure step: Recognizer takes a Snapshot of the frame and
// ROI and returns a Scan or an error, without touching the session.
//
// Failures come back as errors wrapping one of the package sentinels,
// roi.ErrInvalidROI or ocr.ErrEngine. NoticeFor turns any of them into the
// message a user should see, with an info, warning or critical level.
package session
