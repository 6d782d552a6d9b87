// Package server implements the MCP (Model Context Protocol) server for the
// text scanner.
//
// The server exposes one scanner session as a set of tools. A client loads
// an image or starts a camera, drags out a region of interest in display
// coordinates, runs OCR on it and renders or saves the annotated result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Source:
//   - scanner_load_image: Load a file as the current frame
//   - scanner_start_camera: Poll a camera for new frames
//   - scanner_stop_camera: Stop polling
//   - scanner_capture_frame: Freeze the live feed
//
// ROI Selection (display coordinates):
//   - scanner_drag_begin, scanner_drag_move, scanner_drag_end: Mouse gesture
//   - scanner_select_roi: Whole drag in one call
//   - scanner_suggest_regions: Likely text lines to select
//   - scanner_clear_roi: Back to full-frame scanning
//
// Recognition:
//   - scanner_run_ocr: Recognize text in the ROI
//   - scanner_watch: Rescan every changed camera frame
//
// Output:
//   - scanner_render: Display surface as a PNG, optionally with a grid
//   - scanner_save_result: Write the annotated frame to disk
//   - scanner_status: Session and process state
//
// # Error Handling
//
// Malformed requests, unknown tools and missing arguments are JSON-RPC
// errors. Anything the session refuses comes back as a normal tool result
// holding a notice with a level, title and message; "isError" is set for
// warning and critical notices only, so a client can tell "load an image
// first" apart from a failing OCR engine.
package server
