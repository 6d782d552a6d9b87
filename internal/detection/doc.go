// Package detection finds places in a frame that are likely to hold text,
// so a client can pick a region of interest without guessing.
//
// The detector is a heuristic, not a recognizer. It marks strong intensity
// gradients, slides windows of typical text-line sizes across the frame and
// keeps windows whose edge density and horizontal structure look like
// printed text. Overlapping windows are merged into one region.
//
// All coordinates are frame pixels with (0, 0) at the top-left corner.
package detection
