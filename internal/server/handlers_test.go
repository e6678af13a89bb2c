package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/image-edit-mcp/internal/editor"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// createTestImage creates an image with an opaque red square centred on a
// transparent canvas, like a background-removed cutout.
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := height / 4; y < height*3/4; y++ {
		for x := width / 4; x < width*3/4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}
	return img
}

func encodeTestPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// createTestImageFile writes a test image into a temp dir and returns its path
func createTestImageFile(t *testing.T, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cutout.png")
	if err := os.WriteFile(path, encodeTestPNG(t, createTestImage(width, height)), 0644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) {
	t.Helper()
	resp := callToolRaw(t, s, name, args)
	if resp.Error != nil {
		t.Fatalf("%s: unexpected error: %+v", name, resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("%s: result should be a map", name)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("%s: content should hold one item", name)
	}
	if content[0]["type"] != "text" {
		t.Errorf("%s: content type got %v, want text", name, content[0]["type"])
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
		t.Fatalf("%s: failed to decode result: %v", name, err)
	}
}

func callToolRaw(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	paramsJSON, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

func openTestSession(t *testing.T, s *Server, width, height int) string {
	t.Helper()
	var opened openResult
	callTool(t, s, "editor_open", map[string]interface{}{"path": createTestImageFile(t, width, height)}, &opened)
	if opened.SessionID == "" {
		t.Fatal("editor_open returned no session ID")
	}
	return opened.SessionID
}

func TestHandleEditorOpen_Path(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 120, 80)

	var opened openResult
	callTool(t, s, "editor_open", map[string]interface{}{"path": path}, &opened)

	if opened.Width != 120 || opened.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 120x80", opened.Width, opened.Height)
	}
	if opened.Source != path {
		t.Errorf("source: got %q, want %q", opened.Source, path)
	}
	if opened.Info == nil || opened.Info.Format != "png" {
		t.Errorf("info: got %+v, want png format", opened.Info)
	}
	if s.SessionCount() != 1 {
		t.Errorf("SessionCount: got %d, want 1", s.SessionCount())
	}
}

func TestHandleEditorOpen_Data(t *testing.T) {
	s := newTestServer(t)
	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodeTestPNG(t, createTestImage(40, 30)))

	var opened openResult
	callTool(t, s, "editor_open", map[string]interface{}{"data": data, "name": "portrait.png"}, &opened)

	if opened.Width != 40 || opened.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", opened.Width, opened.Height)
	}

	var res exportResult
	callTool(t, s, "editor_export", map[string]interface{}{"session_id": opened.SessionID}, &res)
	if res.ExportResult == nil || res.Filename != "portrait-edited.png" {
		t.Errorf("export filename: got %+v, want portrait-edited.png", res.ExportResult)
	}
}

func TestHandleEditorOpen_URL(t *testing.T) {
	body := encodeTestPNG(t, createTestImage(64, 48))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	s := newTestServer(t)
	var opened openResult
	callTool(t, s, "editor_open", map[string]interface{}{
		"url":            srv.URL + "/cat.png",
		"display_width":  32,
		"display_height": 24,
	}, &opened)

	if opened.Width != 64 || opened.Height != 48 {
		t.Errorf("dimensions: got %dx%d, want 64x48", opened.Width, opened.Height)
	}

	var st editor.State
	callTool(t, s, "editor_state", map[string]interface{}{"session_id": opened.SessionID}, &st)
	if st.Viewport.DisplayWidth != 32 || st.Viewport.DisplayHeight != 24 {
		t.Errorf("viewport: got %+v, want 32x24", st.Viewport)
	}
}

func TestHandleEditorOpen_IntoExistingSessionKeepsFilters(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 100)

	callTool(t, s, "editor_set_filter", map[string]interface{}{"session_id": id, "name": "sepia", "value": 60}, nil)

	var opened openResult
	callTool(t, s, "editor_open", map[string]interface{}{
		"session_id": id,
		"path":       createTestImageFile(t, 50, 40),
	}, &opened)
	if opened.SessionID != id {
		t.Errorf("session ID: got %s, want %s", opened.SessionID, id)
	}
	if opened.Width != 50 {
		t.Errorf("width: got %d, want 50", opened.Width)
	}

	var st editor.State
	callTool(t, s, "editor_state", map[string]interface{}{"session_id": id}, &st)
	if st.Filters.Sepia != 60 {
		t.Errorf("sepia: got %v, want 60", st.Filters.Sepia)
	}
	if s.SessionCount() != 1 {
		t.Errorf("SessionCount: got %d, want 1", s.SessionCount())
	}
}

func TestHandleEditorOpen_Errors(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 10, 10)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"no source", map[string]interface{}{}},
		{"two sources", map[string]interface{}{"path": path, "url": "http://example.com/a.png"}},
		{"missing file", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"bad base64", map[string]interface{}{"data": "!!!"}},
		{"unknown session", map[string]interface{}{"path": path, "session_id": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callToolRaw(t, s, "editor_open", tt.args)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}

	if s.SessionCount() != 0 {
		t.Errorf("failed opens should not leave sessions, got %d", s.SessionCount())
	}
}

func TestHandleEditorOpen_TooLarge(t *testing.T) {
	s := newTestServer(t)
	s.cache = imaging.NewImageCache(imaging.WithMaxBytes(16))

	resp := callToolRaw(t, s, "editor_open", map[string]interface{}{"path": createTestImageFile(t, 50, 50)})
	if resp.Error == nil {
		t.Fatal("expected size limit error")
	}
}

func TestHandleEditorClose(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 20, 20)

	callTool(t, s, "editor_close", map[string]interface{}{"session_id": id}, nil)
	if s.SessionCount() != 0 {
		t.Errorf("SessionCount: got %d, want 0", s.SessionCount())
	}

	resp := callToolRaw(t, s, "editor_state", map[string]interface{}{"session_id": id})
	if resp.Error == nil {
		t.Fatal("closed session should be unknown")
	}
	resp = callToolRaw(t, s, "editor_close", map[string]interface{}{"session_id": id})
	if resp.Error == nil {
		t.Fatal("closing twice should fail")
	}
}

func TestHandleEditorSetFilter_Clamps(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 20, 20)

	tests := []struct {
		tool  string
		name  string
		value float64
		want  float64
	}{
		{"editor_set_filter", "brightness", 500, 200},
		{"editor_set_filter", "hue", -400, -180},
		{"editor_set_filter", "gamma", 0, 20},
		{"editor_set_effect", "pixelate", 0, 1},
		{"editor_set_effect", "filmGrain", 30, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res setValueResult
			callTool(t, s, tt.tool, map[string]interface{}{"session_id": id, "name": tt.name, "value": tt.value}, &res)
			if res.Value != tt.want {
				t.Errorf("stored value: got %v, want %v", res.Value, tt.want)
			}
		})
	}
}

func TestHandleEditorSetFilter_Errors(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 20, 20)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"unknown filter", "editor_set_filter", map[string]interface{}{"session_id": id, "name": "glow", "value": 1}},
		{"unknown effect", "editor_set_effect", map[string]interface{}{"session_id": id, "name": "brightness", "value": 1}},
		{"missing value", "editor_set_filter", map[string]interface{}{"session_id": id, "name": "blur"}},
		{"unknown session", "editor_set_filter", map[string]interface{}{"session_id": "x", "name": "blur", "value": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := callToolRaw(t, s, tt.tool, tt.args); resp.Error == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHandleEditorApplyPresetAndReset(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 20, 20)

	var filters editor.FilterParameters
	callTool(t, s, "editor_apply_preset", map[string]interface{}{"session_id": id, "preset": "vintage"}, &filters)
	if filters.Sepia != 40 || filters.Vignette != 30 {
		t.Errorf("vintage not applied: %+v", filters)
	}

	if resp := callToolRaw(t, s, "editor_apply_preset", map[string]interface{}{"session_id": id, "preset": "noir"}); resp.Error == nil {
		t.Error("unknown preset should fail")
	}

	var st editor.State
	callTool(t, s, "editor_reset", map[string]interface{}{"session_id": id}, &st)
	if st.Filters != editor.DefaultFilters() {
		t.Errorf("filters after reset: got %+v", st.Filters)
	}
	if st.Effects != editor.DefaultEffects() {
		t.Errorf("effects after reset: got %+v", st.Effects)
	}
}

func TestHandleEditorListPresets(t *testing.T) {
	s := newTestServer(t)

	var catalog presetCatalog
	callTool(t, s, "editor_list_presets", nil, &catalog)

	if len(catalog.Presets) != 7 {
		t.Errorf("presets: got %d, want 7", len(catalog.Presets))
	}
	if len(catalog.Gradients) != 8 {
		t.Errorf("gradients: got %d, want 8", len(catalog.Gradients))
	}
	if len(catalog.Filters) != 13 || len(catalog.Effects) != 6 {
		t.Errorf("specs: got %d filters, %d effects", len(catalog.Filters), len(catalog.Effects))
	}
}

func TestHandleEditorSetBackground(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 20, 20)

	var res map[string]string
	callTool(t, s, "editor_set_background", map[string]interface{}{"session_id": id, "background": "#00F"}, &res)
	if res["background"] != "#0000ff" {
		t.Errorf("background: got %q, want #0000ff", res["background"])
	}

	var samples []imaging.LabeledColorResult
	callTool(t, s, "editor_sample_color", map[string]interface{}{
		"session_id": id,
		"points": []map[string]interface{}{
			{"x": 0, "y": 0, "label": "corner"},
			{"x": 10, "y": 10, "label": "subject"},
		},
	}, &samples)
	if len(samples) != 2 {
		t.Fatalf("samples: got %d, want 2", len(samples))
	}
	if samples[0].Color.Hex != "#0000FF" {
		t.Errorf("corner: got %s, want #0000FF", samples[0].Color.Hex)
	}
	if samples[1].Color.Hex != "#FF0000" {
		t.Errorf("subject: got %s, want #FF0000", samples[1].Color.Hex)
	}

	resp := callToolRaw(t, s, "editor_set_background", map[string]interface{}{"session_id": id, "background": "gradient:aurora"})
	if resp.Error == nil {
		t.Fatal("unknown gradient should fail")
	}
	var st editor.State
	callTool(t, s, "editor_state", map[string]interface{}{"session_id": id}, &st)
	if st.Background != "#0000ff" {
		t.Errorf("background after failed set: got %q, want #0000ff", st.Background)
	}
}

func TestHandleEditorCrop_Flow(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 300, 300)

	var summary editor.CropSummary
	callTool(t, s, "editor_crop_start", map[string]interface{}{"session_id": id}, &summary)
	if summary.Mode != "cropping" || summary.Region == nil {
		t.Fatalf("crop start: got %+v", summary)
	}
	if *summary.Region != (editor.Region{X: 50, Y: 50, Width: 200, Height: 200}) {
		t.Errorf("default region: got %+v", *summary.Region)
	}

	// Half-size display: (125,125) is the bottom-right corner in raster space.
	callTool(t, s, "editor_set_viewport", map[string]interface{}{"session_id": id, "display_width": 150, "display_height": 150}, nil)
	callTool(t, s, "editor_crop_pointer", map[string]interface{}{"session_id": id, "action": "down", "x": 125, "y": 125}, &summary)
	if summary.Dragging != "bottom-right" {
		t.Errorf("hit test: got %q, want bottom-right", summary.Dragging)
	}
	callTool(t, s, "editor_crop_pointer", map[string]interface{}{"session_id": id, "action": "move", "x": 100, "y": 90}, &summary)
	callTool(t, s, "editor_crop_pointer", map[string]interface{}{"session_id": id, "action": "up"}, &summary)
	if summary.Dragging != "" {
		t.Errorf("dragging after up: got %q", summary.Dragging)
	}
	if *summary.Region != (editor.Region{X: 50, Y: 50, Width: 150, Height: 130}) {
		t.Errorf("region after drag: got %+v", *summary.Region)
	}

	var preview renderResult
	callTool(t, s, "editor_render", map[string]interface{}{"session_id": id, "scale": 0.5}, &preview)
	if !preview.Rendered || preview.Image == nil {
		t.Fatal("render should produce an image")
	}
	if preview.Image.Width != 150 || preview.Image.Height != 150 {
		t.Errorf("preview size: got %dx%d, want 150x150", preview.Image.Width, preview.Image.Height)
	}
	if preview.Crop.Mode != "cropping" {
		t.Errorf("preview crop mode: got %q", preview.Crop.Mode)
	}

	var applied cropApplyResult
	callTool(t, s, "editor_crop_apply", map[string]interface{}{"session_id": id}, &applied)
	if !applied.Applied || applied.Width != 150 || applied.Height != 130 {
		t.Errorf("crop apply: got %+v", applied)
	}

	// Nothing to apply any more.
	callTool(t, s, "editor_crop_apply", map[string]interface{}{"session_id": id}, &applied)
	if applied.Applied {
		t.Error("second apply should be a no-op")
	}
	if applied.Width != 150 {
		t.Errorf("width after no-op apply: got %d", applied.Width)
	}
}

func TestHandleEditorCrop_CancelAndBadAction(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 300, 300)

	callTool(t, s, "editor_crop_start", map[string]interface{}{"session_id": id}, nil)

	if resp := callToolRaw(t, s, "editor_crop_pointer", map[string]interface{}{"session_id": id, "action": "click"}); resp.Error == nil {
		t.Error("unknown action should fail")
	}
	if resp := callToolRaw(t, s, "editor_crop_pointer", map[string]interface{}{"session_id": id, "action": "down", "handle": "middle"}); resp.Error == nil {
		t.Error("unknown handle should fail")
	}

	var summary editor.CropSummary
	callTool(t, s, "editor_crop_cancel", map[string]interface{}{"session_id": id}, &summary)
	if summary.Mode != "idle" || summary.Region != nil {
		t.Errorf("after cancel: got %+v", summary)
	}

	var st editor.State
	callTool(t, s, "editor_state", map[string]interface{}{"session_id": id}, &st)
	if st.Width != 300 || st.Height != 300 {
		t.Errorf("size after cancel: got %dx%d", st.Width, st.Height)
	}
}

func TestHandleEditorRender_DecodesToPNG(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 40, 40)
	callTool(t, s, "editor_set_filter", map[string]interface{}{"session_id": id, "name": "invert", "value": 100}, nil)

	var preview renderResult
	callTool(t, s, "editor_render", map[string]interface{}{"session_id": id}, &preview)

	data, err := base64.StdEncoding.DecodeString(preview.Image.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid png: %v", err)
	}
	got := color.NRGBAModel.Convert(img.At(20, 20)).(color.NRGBA)
	if got != (color.NRGBA{0, 255, 255, 255}) {
		t.Errorf("inverted subject: got %v, want cyan", got)
	}
	if a := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA).A; a != 0 {
		t.Errorf("transparent corner alpha: got %d, want 0", a)
	}
}

func TestHandleEditorRender_ScaleBounds(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 40, 40)

	for _, scale := range []float64{-1, 4.5, 1000} {
		resp := callToolRaw(t, s, "editor_render", map[string]interface{}{"session_id": id, "scale": scale})
		if resp.Error == nil {
			t.Errorf("scale %v should be rejected", scale)
		}
	}

	var preview renderResult
	callTool(t, s, "editor_render", map[string]interface{}{"session_id": id, "scale": maxPreviewScale}, &preview)
	if preview.Image == nil || preview.Image.Width != 160 {
		t.Errorf("maximum scale preview: got %+v, want width 160", preview.Image)
	}
}

func TestHandleEditorPalette(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 40, 40)

	var palette []imaging.ColorFrequency
	callTool(t, s, "editor_palette", map[string]interface{}{"session_id": id}, &palette)
	if len(palette) != 1 {
		t.Fatalf("palette: got %d colors, want 1 (transparent pixels ignored)", len(palette))
	}
	if palette[0].Hex != "#F00000" {
		t.Errorf("dominant color: got %s, want #F00000", palette[0].Hex)
	}
}

func TestHandleEditorExport_Inline(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 30, 20)

	var res exportResult
	callTool(t, s, "editor_export", map[string]interface{}{"session_id": id, "format": "webp"}, &res)

	if !res.Exported || res.ExportResult == nil {
		t.Fatal("export should succeed")
	}
	if res.Filename != "cutout-edited.webp" || res.MimeType != "image/webp" {
		t.Errorf("export: got %s %s", res.Filename, res.MimeType)
	}
	data, err := base64.StdEncoding.DecodeString(res.DataBase64)
	if err != nil || len(data) != res.Bytes {
		t.Errorf("inline data: %d bytes (err %v), want %d", len(data), err, res.Bytes)
	}
	if res.Path != "" {
		t.Errorf("inline export should not write a file, got path %q", res.Path)
	}
}

func TestHandleEditorExport_Save(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 30, 20)

	var res exportResult
	callTool(t, s, "editor_export", map[string]interface{}{"session_id": id, "save": true, "filename": "../escape.png"}, &res)

	want := filepath.Join(s.cfg.Export.Dir, "escape.png")
	if res.Path != want {
		t.Errorf("path: got %q, want %q", res.Path, want)
	}
	if res.DataBase64 != "" {
		t.Error("saved export should not inline data")
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("export is not a png: %v", err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 20 {
		t.Errorf("export size: got %v", img.Bounds())
	}
}

func TestHandleEditorExport_RejectsDirectoryNames(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 10, 10)

	for _, name := range []string{".", "..", "/", "out/..", "./"} {
		resp := callToolRaw(t, s, "editor_export", map[string]interface{}{"session_id": id, "save": true, "filename": name})
		if resp.Error == nil {
			t.Errorf("filename %q should be rejected", name)
			continue
		}
		if !strings.Contains(fmt.Sprint(resp.Error.Data), "invalid export filename") {
			t.Errorf("filename %q: unexpected error %v", name, resp.Error.Data)
		}
	}
}

func TestHandleEditorExport_BadFormat(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 10, 10)

	if resp := callToolRaw(t, s, "editor_export", map[string]interface{}{"session_id": id, "format": "gif"}); resp.Error == nil {
		t.Error("unsupported format should fail")
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)

	resp := callToolRaw(t, s, "nonexistent_tool", map[string]interface{}{})
	if resp.Error == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json}`),
	}

	resp := s.handleRequest(req)

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 100)

	// Test each tool to ensure executeTool correctly dispatches
	toolTests := []struct {
		name string
		args map[string]interface{}
	}{
		{"editor_state", map[string]interface{}{"session_id": id}},
		{"editor_list_presets", map[string]interface{}{}},
		{"editor_set_filter", map[string]interface{}{"session_id": id, "name": "contrast", "value": 120}},
		{"editor_set_effect", map[string]interface{}{"session_id": id, "name": "glow", "value": 20}},
		{"editor_apply_preset", map[string]interface{}{"session_id": id, "preset": "soft"}},
		{"editor_set_background", map[string]interface{}{"session_id": id, "background": "gradient:ocean"}},
		{"editor_set_viewport", map[string]interface{}{"session_id": id, "display_width": 50}},
		{"editor_crop_start", map[string]interface{}{"session_id": id}},
		{"editor_crop_pointer", map[string]interface{}{"session_id": id, "action": "down", "handle": "move", "x": 30, "y": 30}},
		{"editor_crop_cancel", map[string]interface{}{"session_id": id}},
		{"editor_render", map[string]interface{}{"session_id": id}},
		{"editor_sample_color", map[string]interface{}{"session_id": id, "points": []map[string]interface{}{{"x": 50, "y": 50}}}},
		{"editor_palette", map[string]interface{}{"session_id": id, "count": 3}},
		{"editor_export", map[string]interface{}{"session_id": id}},
		{"editor_crop_apply", map[string]interface{}{"session_id": id}},
		{"editor_reset", map[string]interface{}{"session_id": id}},
		{"editor_close", map[string]interface{}{"session_id": id}},
	}

	for _, tt := range toolTests {
		t.Run(tt.name, func(t *testing.T) {
			argsJSON, _ := json.Marshal(tt.args)
			result, err := s.executeTool(tt.name, argsJSON)
			if err != nil {
				t.Fatalf("executeTool(%s) failed: %v", tt.name, err)
			}
			if result == nil {
				t.Errorf("executeTool(%s) returned nil result", tt.name)
			}
		})
	}
}

func TestExecuteTool_UnknownSession(t *testing.T) {
	s := newTestServer(t)

	_, err := s.executeTool("editor_render", json.RawMessage(`{"session_id":"missing"}`))
	if !errors.Is(err, ErrUnknownSession) {
		t.Errorf("got %v, want ErrUnknownSession", err)
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	_, err := s.executeTool("editor_state", json.RawMessage(`{invalid`))
	if err == nil {
		t.Error("executeTool should fail for invalid JSON")
	}
}
