package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func pointSchema(what string) map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"x": intProp(what + " X in display coordinates"),
		"y": intProp(what + " Y in display coordinates"),
	}, "x", "y")
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Source
		{
			Name:        "scanner_load_image",
			Description: "Load a PNG, JPEG, GIF, BMP or PDF (first page) file as the current frame. Stops the camera and clears the ROI.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the image file",
				},
			}, "path"),
		},
		{
			Name:        "scanner_start_camera",
			Description: "Open a camera and replace the frame with a new capture every poll interval. The committed ROI is kept across frames.",
			InputSchema: objectSchema(map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Camera source: screen, screen:x,y,w,h, dir:<path> or device:<n>. Defaults to the configured source.",
				},
			}),
		},
		{
			Name:        "scanner_stop_camera",
			Description: "Stop polling the camera. The last frame stays loaded.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "scanner_capture_frame",
			Description: "Freeze the live feed on the current frame so a ROI can be selected and scanned.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// ROI Selection
		{
			Name:        "scanner_drag_begin",
			Description: "Press: start dragging a ROI rectangle at a display point. Ignored when no frame is loaded.",
			InputSchema: pointSchema("Start"),
		},
		{
			Name:        "scanner_drag_move",
			Description: "Move: update the live corner of the ROI being dragged.",
			InputSchema: pointSchema("Current"),
		},
		{
			Name:        "scanner_drag_end",
			Description: "Release: commit the dragged rectangle, mapped to image pixels and clamped to the frame.",
			InputSchema: pointSchema("End"),
		},
		{
			Name:        "scanner_select_roi",
			Description: "Drag from (x1,y1) to (x2,y2) in one call and commit the result as the ROI.",
			InputSchema: objectSchema(map[string]interface{}{
				"x1": intProp("Drag start X in display coordinates"),
				"y1": intProp("Drag start Y in display coordinates"),
				"x2": intProp("Drag end X in display coordinates"),
				"y2": intProp("Drag end Y in display coordinates"),
			}, "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "scanner_suggest_regions",
			Description: "Find areas of the current frame that look like lines of text. Each region is given in image pixels and in display coordinates, ready for scanner_select_roi.",
			InputSchema: objectSchema(map[string]interface{}{
				"min_confidence": map[string]interface{}{
					"type":        "number",
					"description": "Minimum confidence 0-1 (default: 0.3)",
				},
				"limit": intProp("Maximum number of regions (default: 10)"),
			}),
		},
		{
			Name:        "scanner_clear_roi",
			Description: "Clear the ROI. The next OCR run covers the whole frame.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// Recognition
		{
			Name:        "scanner_run_ocr",
			Description: "Recognize text in the ROI, or the whole frame without one. Returns the transcript and the word boxes in image pixels.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "scanner_watch",
			Description: "Turn continuous scanning on or off. While on, every camera frame whose ROI content changed is scanned again.",
			InputSchema: objectSchema(map[string]interface{}{
				"enabled": map[string]interface{}{
					"type":        "boolean",
					"description": "true to start scanning, false to stop",
				},
			}, "enabled"),
		},

		// Output
		{
			Name:        "scanner_render",
			Description: "Render the display surface as a PNG: the frame scaled into the viewport with word boxes, the drag rectangle and the dashed ROI.",
			InputSchema: objectSchema(map[string]interface{}{
				"grid": intProp("Overlay a grid labelled with display coordinates every N pixels (default: off, minimum 20)"),
			}),
		},
		{
			Name:        "scanner_save_result",
			Description: "Save the annotated frame at full resolution.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Output file. The extension selects the format; .png is added when missing. Defaults to ocr_result.png.",
				},
			}),
		},
		{
			Name:        "scanner_status",
			Description: "Report the frame, ROI, camera, last OCR result and process resource usage.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
