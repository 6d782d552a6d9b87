package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/text-scanner-mcp/internal/detection"
	"github.com/ironsheep/text-scanner-mcp/internal/session"
)

// Scanner is the session the tools drive.
type Scanner interface {
	LoadImage(ctx context.Context, path string) (*session.FrameInfo, error)
	StartCamera(ctx context.Context, spec string) (*session.FrameInfo, error)
	StopCamera(ctx context.Context) (*session.CameraState, error)
	CaptureFrame(ctx context.Context) (*session.FrameInfo, error)
	BeginDrag(ctx context.Context, p image.Point) (*session.Selection, error)
	UpdateDrag(ctx context.Context, p image.Point) (*session.Selection, error)
	EndDrag(ctx context.Context, p image.Point) (*session.Selection, error)
	SelectROI(ctx context.Context, a, b image.Point) (*session.Selection, error)
	ClearROI(ctx context.Context) (*session.Selection, error)
	RunOCR(ctx context.Context) (*session.Scan, error)
	SuggestRegions(ctx context.Context, opts detection.Options) (*session.Suggestions, error)
	Render(ctx context.Context, grid int) (*image.NRGBA, error)
	Save(ctx context.Context, path string) (string, error)
	Watch(ctx context.Context, on bool) (*session.CameraState, error)
	Status(ctx context.Context) (*session.Status, error)
}

// Server handles MCP protocol communication
type Server struct {
	scanner Scanner
	version string
	log     *logrus.Entry
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// New creates a new MCP server instance
func New(scanner Scanner, version string, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		scanner: scanner,
		version: version,
		log:     log.WithField("component", "server"),
	}
}

// Run reads requests from r, one per line, and writes responses to w until
// r is exhausted or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(r)
		// Increase buffer size for large requests
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)

		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	encoder := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return errors.Wrap(err, "read requests")
			}
			s.log.Debug("input closed")
			return nil
		case line := <-lines:
			if len(line) == 0 {
				continue
			}
			resp := s.handleLine(ctx, line)
			if resp == nil {
				continue
			}
			if err := encoder.Encode(resp); err != nil {
				return errors.Wrap(err, "write response")
			}
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line []byte) *MCPResponse {
	var req MCPRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.log.WithError(err).Warn("failed to parse request")
		return s.errorResponse(nil, codeParseError, "Parse error", err.Error())
	}
	return s.handleRequest(ctx, &req)
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.WithField("method", req.Method).Debug("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "text-scanner-mcp",
				"version": s.version,
			},
		},
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}
