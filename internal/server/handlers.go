package server

import (
	"context"
	"encoding/json"
	"image"
	"time"

	"github.com/pkg/errors"

	"github.com/ironsheep/text-scanner-mcp/internal/detection"
	"github.com/ironsheep/text-scanner-mcp/internal/imaging"
	"github.com/ironsheep/text-scanner-mcp/internal/session"
)

// errInvalidArgs marks requests the tool could not even start on.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "scanner_load_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// imageResult is returned by tools that produce a picture. It is sent as
// MCP image content next to the JSON description.
type imageResult struct {
	img  *imaging.EncodedImage
	info interface{}
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// A successful call wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// When the session refuses the action the result carries a notice instead,
// and "isError" is set unless the notice is merely informational. Unknown
// tools and malformed arguments are JSON-RPC errors.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	log := s.log.WithField("tool", params.Name).WithField("elapsed", time.Since(start))

	if errors.Is(err, errInvalidArgs) {
		log.WithError(err).Warn("rejected tool call")
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if err != nil {
		notice := session.NoticeFor(err)
		log.WithError(err).WithField("level", notice.Level).Info("tool refused")
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: map[string]interface{}{
				"content": []map[string]interface{}{textContent(map[string]interface{}{"notice": notice})},
				"isError": notice.Level != session.LevelInfo,
			},
		}
	}
	log.Debug("tool done")

	content := []map[string]interface{}{}
	if ir, ok := result.(*imageResult); ok {
		content = append(content, map[string]interface{}{
			"type":     "image",
			"data":     ir.img.ImageBase64,
			"mimeType": ir.img.MimeType,
		})
		result = ir.info
	}
	content = append(content, textContent(result))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

func textContent(v interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type": "text",
		"text": mustMarshalJSON(v),
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Source
	case "scanner_load_image":
		return s.handleLoadImage(ctx, args)
	case "scanner_start_camera":
		return s.handleStartCamera(ctx, args)
	case "scanner_stop_camera":
		return s.scanner.StopCamera(ctx)
	case "scanner_capture_frame":
		return s.scanner.CaptureFrame(ctx)

	// ROI Selection
	case "scanner_drag_begin":
		return s.handlePoint(ctx, args, s.scanner.BeginDrag)
	case "scanner_drag_move":
		return s.handlePoint(ctx, args, s.scanner.UpdateDrag)
	case "scanner_drag_end":
		return s.handlePoint(ctx, args, s.scanner.EndDrag)
	case "scanner_select_roi":
		return s.handleSelectROI(ctx, args)
	case "scanner_suggest_regions":
		return s.handleSuggestRegions(ctx, args)
	case "scanner_clear_roi":
		return s.scanner.ClearROI(ctx)

	// Recognition
	case "scanner_run_ocr":
		return s.scanner.RunOCR(ctx)
	case "scanner_watch":
		return s.handleWatch(ctx, args)

	// Output
	case "scanner_render":
		return s.handleRender(ctx, args)
	case "scanner_save_result":
		return s.handleSave(ctx, args)
	case "scanner_status":
		return s.scanner.Status(ctx)

	default:
		return nil, errors.Wrapf(errInvalidArgs, "unknown tool: %s", name)
	}
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return errors.Wrapf(errInvalidArgs, "%v", err)
	}
	return nil
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Source Handlers ===

type loadImageArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLoadImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a loadImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.Wrap(errInvalidArgs, "path is required")
	}
	return s.scanner.LoadImage(ctx, a.Path)
}

type startCameraArgs struct {
	Source string `json:"source"`
}

func (s *Server) handleStartCamera(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a startCameraArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.scanner.StartCamera(ctx, a.Source)
}

// === ROI Selection Handlers ===

type pointArgs struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

func (s *Server) handlePoint(ctx context.Context, args json.RawMessage, fn func(context.Context, image.Point) (*session.Selection, error)) (interface{}, error) {
	var a pointArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.X == nil || a.Y == nil {
		return nil, errors.Wrap(errInvalidArgs, "x and y are required")
	}
	return fn(ctx, image.Pt(*a.X, *a.Y))
}

type selectROIArgs struct {
	X1 *int `json:"x1"`
	Y1 *int `json:"y1"`
	X2 *int `json:"x2"`
	Y2 *int `json:"y2"`
}

func (s *Server) handleSelectROI(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a selectROIArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.X1 == nil || a.Y1 == nil || a.X2 == nil || a.Y2 == nil {
		return nil, errors.Wrap(errInvalidArgs, "x1, y1, x2 and y2 are required")
	}
	return s.scanner.SelectROI(ctx, image.Pt(*a.X1, *a.Y1), image.Pt(*a.X2, *a.Y2))
}

type suggestArgs struct {
	MinConfidence *float64 `json:"min_confidence"`
	Limit         *int     `json:"limit"`
}

func (s *Server) handleSuggestRegions(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a suggestArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts := detection.DefaultOptions()
	if a.MinConfidence != nil {
		if *a.MinConfidence < 0 || *a.MinConfidence > 1 {
			return nil, errors.Wrap(errInvalidArgs, "min_confidence must be between 0 and 1")
		}
		opts.MinConfidence = *a.MinConfidence
	}
	if a.Limit != nil {
		if *a.Limit < 0 {
			return nil, errors.Wrap(errInvalidArgs, "limit must not be negative")
		}
		opts.Limit = *a.Limit
	}
	return s.scanner.SuggestRegions(ctx, opts)
}

// === Recognition Handlers ===

type watchArgs struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleWatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a watchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Enabled == nil {
		return nil, errors.Wrap(errInvalidArgs, "enabled is required")
	}
	return s.scanner.Watch(ctx, *a.Enabled)
}

// === Output Handlers ===

type renderArgs struct {
	Grid int `json:"grid"`
}

func (s *Server) handleRender(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Grid < 0 {
		return nil, errors.Wrap(errInvalidArgs, "grid must not be negative")
	}
	if a.Grid > 0 {
		a.Grid = max(a.Grid, imaging.MinGridSpacing)
	}
	img, err := s.scanner.Render(ctx, a.Grid)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.Encode(img)
	if err != nil {
		return nil, err
	}
	return &imageResult{
		img: enc,
		info: map[string]interface{}{
			"width":     enc.Width,
			"height":    enc.Height,
			"mime_type": enc.MimeType,
			"grid":      a.Grid,
		},
	}, nil
}

type saveArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleSave(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a saveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	saved, err := s.scanner.Save(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"path":    saved,
		"message": "Result saved to:\n" + saved,
	}, nil
}
