// Package ocr recognizes text in frames using Tesseract.
//
// The Engine interface is the seam between the scanner and the recognizer.
// Tesseract implements it with the gosseract/v2 binding; tests substitute
// their own engine.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Set TESSDATA_PREFIX (or ocr.tessdata_prefix in the config file) when the
// language data lives somewhere the library does not look by default.
//
// # Configuration
//
// Engine settings are given as a Tesseract style flag string, parsed by
// ParseOptions. The default is "--oem 3 --psm 6": default engine mode, one
// uniform block of text.
//
// # Word Filtering
//
// Engines return every word they saw, including empty entries with a
// negative confidence. FilterWords keeps words whose integer confidence is
// strictly above the threshold (40 by default) and whose text is not blank.
// Offset moves boxes from crop coordinates back into frame coordinates.
//
// # Errors
//
// Every engine failure wraps ErrEngine. Such a failure aborts the request;
// no partial result is returned.
package ocr
