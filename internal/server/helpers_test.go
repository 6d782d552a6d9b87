package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/text-scanner-mcp/internal/detection"
	"github.com/ironsheep/text-scanner-mcp/internal/roi"
	"github.com/ironsheep/text-scanner-mcp/internal/session"
)

// fakeScanner records the calls it receives. err, when set, is returned
// by every call.
type fakeScanner struct {
	calls   []string
	points  []image.Point
	path    string
	spec    string
	watch   bool
	grid    int
	suggest detection.Options
	err     error
}

func (f *fakeScanner) record(name string, pts ...image.Point) error {
	f.calls = append(f.calls, name)
	f.points = append(f.points, pts...)
	return f.err
}

func (f *fakeScanner) frame() *session.FrameInfo {
	return &session.FrameInfo{Width: 640, Height: 480, Origin: f.path, Scale: 1}
}

func (f *fakeScanner) selection() *session.Selection {
	return &session.Selection{Changed: true, ROI: &roi.Rect{X: 1, Y: 2, W: 3, H: 4}, Scale: 1}
}

func (f *fakeScanner) LoadImage(_ context.Context, path string) (*session.FrameInfo, error) {
	f.path = path
	if err := f.record("LoadImage"); err != nil {
		return nil, err
	}
	return f.frame(), nil
}

func (f *fakeScanner) StartCamera(_ context.Context, spec string) (*session.FrameInfo, error) {
	f.spec = spec
	if err := f.record("StartCamera"); err != nil {
		return nil, err
	}
	return f.frame(), nil
}

func (f *fakeScanner) StopCamera(context.Context) (*session.CameraState, error) {
	if err := f.record("StopCamera"); err != nil {
		return nil, err
	}
	return &session.CameraState{}, nil
}

func (f *fakeScanner) CaptureFrame(context.Context) (*session.FrameInfo, error) {
	if err := f.record("CaptureFrame"); err != nil {
		return nil, err
	}
	return f.frame(), nil
}

func (f *fakeScanner) BeginDrag(_ context.Context, p image.Point) (*session.Selection, error) {
	if err := f.record("BeginDrag", p); err != nil {
		return nil, err
	}
	return f.selection(), nil
}

func (f *fakeScanner) UpdateDrag(_ context.Context, p image.Point) (*session.Selection, error) {
	if err := f.record("UpdateDrag", p); err != nil {
		return nil, err
	}
	return f.selection(), nil
}

func (f *fakeScanner) EndDrag(_ context.Context, p image.Point) (*session.Selection, error) {
	if err := f.record("EndDrag", p); err != nil {
		return nil, err
	}
	return f.selection(), nil
}

func (f *fakeScanner) SelectROI(_ context.Context, a, b image.Point) (*session.Selection, error) {
	if err := f.record("SelectROI", a, b); err != nil {
		return nil, err
	}
	return f.selection(), nil
}

func (f *fakeScanner) ClearROI(context.Context) (*session.Selection, error) {
	if err := f.record("ClearROI"); err != nil {
		return nil, err
	}
	return &session.Selection{Changed: true}, nil
}

func (f *fakeScanner) RunOCR(context.Context) (*session.Scan, error) {
	if err := f.record("RunOCR"); err != nil {
		return nil, err
	}
	return &session.Scan{ID: "scan-1", Text: "Hello"}, nil
}

func (f *fakeScanner) SuggestRegions(_ context.Context, opts detection.Options) (*session.Suggestions, error) {
	f.suggest = opts
	if err := f.record("SuggestRegions"); err != nil {
		return nil, err
	}
	return &session.Suggestions{Scale: 1}, nil
}

func (f *fakeScanner) Render(_ context.Context, grid int) (*image.NRGBA, error) {
	f.grid = grid
	if err := f.record("Render"); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	img.Set(0, 0, color.White)
	return img, nil
}

func (f *fakeScanner) Save(_ context.Context, path string) (string, error) {
	f.path = path
	if err := f.record("Save"); err != nil {
		return "", err
	}
	if path == "" {
		path = "ocr_result.png"
	}
	return path, nil
}

func (f *fakeScanner) Watch(_ context.Context, on bool) (*session.CameraState, error) {
	f.watch = on
	if err := f.record("Watch"); err != nil {
		return nil, err
	}
	return &session.CameraState{Live: true, Watching: on}, nil
}

func (f *fakeScanner) Status(context.Context) (*session.Status, error) {
	if err := f.record("Status"); err != nil {
		return nil, err
	}
	return &session.Status{HasImage: true}, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestServer(sc Scanner) *Server {
	return New(sc, "test", quietLogger())
}

// callTool builds a tools/call request.
func callTool(t *testing.T, name string, args interface{}) *MCPRequest {
	t.Helper()
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	return &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: raw}
}

// toolContent returns the content list of a successful tools/call response.
func toolContent(t *testing.T, resp *MCPResponse) ([]map[string]interface{}, bool) {
	t.Helper()
	if resp == nil {
		t.Fatal("nil response")
	}
	if resp.Error != nil {
		t.Fatalf("unexpected JSON-RPC error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result is %T, want map", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) == 0 {
		t.Fatalf("content missing: %#v", result["content"])
	}
	isError, _ := result["isError"].(bool)
	return content, isError
}

// lastText decodes the JSON text of the last content item into v.
func lastText(t *testing.T, content []map[string]interface{}, v interface{}) {
	t.Helper()
	item := content[len(content)-1]
	if item["type"] != "text" {
		t.Fatalf("last content type = %v, want text", item["type"])
	}
	text, _ := item["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("content text is not JSON: %v\n%s", err, text)
	}
}
