package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-edit-mcp/internal/editor"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "editor_open", "editor_set_filter").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	log := s.log.WithFields(logrus.Fields{
		"tool":    params.Name,
		"elapsed": time.Since(start),
	})
	if err != nil {
		log.WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug("tool executed")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Looks up the session named by session_id
//  4. Calls the matching editor operation
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session lifecycle
	case "editor_open":
		return s.handleEditorOpen(args)
	case "editor_close":
		return s.handleEditorClose(args)
	case "editor_state":
		return s.handleEditorState(args)
	case "editor_list_presets":
		return s.handleEditorListPresets(args)

	// Parameters
	case "editor_set_filter":
		return s.handleEditorSetFilter(args)
	case "editor_set_effect":
		return s.handleEditorSetEffect(args)
	case "editor_apply_preset":
		return s.handleEditorApplyPreset(args)
	case "editor_reset":
		return s.handleEditorReset(args)
	case "editor_set_background":
		return s.handleEditorSetBackground(args)
	case "editor_set_viewport":
		return s.handleEditorSetViewport(args)

	// Crop tool
	case "editor_crop_start":
		return s.handleEditorCropStart(args)
	case "editor_crop_pointer":
		return s.handleEditorCropPointer(args)
	case "editor_crop_apply":
		return s.handleEditorCropApply(args)
	case "editor_crop_cancel":
		return s.handleEditorCropCancel(args)

	// Output
	case "editor_render":
		return s.handleEditorRender(args)
	case "editor_sample_color":
		return s.handleEditorSampleColor(args)
	case "editor_palette":
		return s.handleEditorPalette(args)
	case "editor_export":
		return s.handleEditorExport(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// sessionArgs is embedded by every tool that acts on a session.
type sessionArgs struct {
	SessionID string `json:"session_id"`
}

// decodeSession unmarshals args into dst and resolves its session.
func (s *Server) decodeSession(args json.RawMessage, dst interface{ sessionID() string }) (*editor.Session, error) {
	if err := json.Unmarshal(args, dst); err != nil {
		return nil, err
	}
	return s.session(dst.sessionID())
}

func (a *sessionArgs) sessionID() string { return a.SessionID }

// === Session Lifecycle Handlers ===

type editorOpenArgs struct {
	Path          string  `json:"path"`
	URL           string  `json:"url"`
	Data          string  `json:"data"`
	Name          string  `json:"name"`
	SessionID     string  `json:"session_id"`
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
}

type openResult struct {
	SessionID string              `json:"session_id"`
	Width     int                 `json:"width"`
	Height    int                 `json:"height"`
	Source    string              `json:"source,omitempty"`
	Info      *imaging.SourceInfo `json:"info,omitempty"`
}

func (s *Server) handleEditorOpen(args json.RawMessage) (interface{}, error) {
	var a editorOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	set := 0
	for _, v := range []string{a.Path, a.URL, a.Data} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New("exactly one of path, url or data is required")
	}

	// Resolve the target session before loading so a bad ID costs nothing.
	var sess *editor.Session
	if a.SessionID != "" {
		var err error
		if sess, err = s.session(a.SessionID); err != nil {
			return nil, err
		}
	}

	var (
		img    image.Image
		source string
		info   *imaging.SourceInfo
		err    error
	)
	switch {
	case a.Path != "":
		source = a.Path
		img, err = s.cache.Load(a.Path)
	case a.URL != "":
		source = a.URL
		img, err = s.cache.LoadURL(s.ctx, a.URL)
	default:
		source = a.Name
		img, err = s.cache.DecodeBase64(a.Data)
	}
	if err != nil {
		return nil, err
	}
	if a.Path != "" || a.URL != "" {
		info, _ = s.cache.Info(source)
	}

	if sess == nil {
		if sess, err = s.openSession(); err != nil {
			return nil, err
		}
	}
	sess.Load(img, source)
	if a.DisplayWidth > 0 || a.DisplayHeight > 0 {
		sess.SetViewport(editor.Viewport{DisplayWidth: a.DisplayWidth, DisplayHeight: a.DisplayHeight})
	}

	size := sess.Size()
	return &openResult{
		SessionID: sess.ID(),
		Width:     size.X,
		Height:    size.Y,
		Source:    source,
		Info:      info,
	}, nil
}

func (s *Server) handleEditorClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !s.closeSession(a.SessionID) {
		return nil, fmt.Errorf("session %q: %w", a.SessionID, ErrUnknownSession)
	}
	return map[string]interface{}{"closed": a.SessionID}, nil
}

func (s *Server) handleEditorState(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	return sess.State(), nil
}

type presetCatalog struct {
	Presets   []editor.Preset    `json:"presets"`
	Gradients []string           `json:"gradients"`
	Filters   []editor.ParamSpec `json:"filters"`
	Effects   []editor.ParamSpec `json:"effects"`
}

func (s *Server) handleEditorListPresets(_ json.RawMessage) (interface{}, error) {
	return &presetCatalog{
		Presets:   editor.Presets(),
		Gradients: editor.GradientPresets(),
		Filters:   editor.FilterSpecs(),
		Effects:   editor.EffectSpecs(),
	}, nil
}

// === Parameter Handlers ===

type editorSetValueArgs struct {
	sessionArgs
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

type setValueResult struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (s *Server) handleEditorSetFilter(args json.RawMessage) (interface{}, error) {
	var a editorSetValueArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	if a.Value == nil {
		return nil, errors.New("value is required")
	}
	stored, err := sess.SetFilter(a.Name, *a.Value)
	if err != nil {
		return nil, err
	}
	return &setValueResult{Name: a.Name, Value: stored}, nil
}

func (s *Server) handleEditorSetEffect(args json.RawMessage) (interface{}, error) {
	var a editorSetValueArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	if a.Value == nil {
		return nil, errors.New("value is required")
	}
	stored, err := sess.SetEffect(a.Name, *a.Value)
	if err != nil {
		return nil, err
	}
	return &setValueResult{Name: a.Name, Value: stored}, nil
}

type editorApplyPresetArgs struct {
	sessionArgs
	Preset string `json:"preset"`
}

func (s *Server) handleEditorApplyPreset(args json.RawMessage) (interface{}, error) {
	var a editorApplyPresetArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	if err := sess.ApplyPreset(a.Preset); err != nil {
		return nil, err
	}
	return sess.Filters(), nil
}

func (s *Server) handleEditorReset(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	sess.ResetFilters()
	return sess.State(), nil
}

type editorSetBackgroundArgs struct {
	sessionArgs
	Background string `json:"background"`
}

func (s *Server) handleEditorSetBackground(args json.RawMessage) (interface{}, error) {
	var a editorSetBackgroundArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	bg, err := editor.ParseBackground(a.Background)
	if err != nil {
		return nil, err
	}
	sess.SetBackground(bg)
	return map[string]interface{}{"background": bg.String()}, nil
}

type editorSetViewportArgs struct {
	sessionArgs
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
}

func (s *Server) handleEditorSetViewport(args json.RawMessage) (interface{}, error) {
	var a editorSetViewportArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	if a.DisplayWidth < 0 || a.DisplayHeight < 0 {
		return nil, errors.New("display size cannot be negative")
	}
	v := editor.Viewport{DisplayWidth: a.DisplayWidth, DisplayHeight: a.DisplayHeight}
	sess.SetViewport(v)
	return v, nil
}

// === Crop Tool Handlers ===

func (s *Server) handleEditorCropStart(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	return sess.StartCrop().Summary(), nil
}

type editorCropPointerArgs struct {
	sessionArgs
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Handle string  `json:"handle"`
}

func (s *Server) handleEditorCropPointer(args json.RawMessage) (interface{}, error) {
	var a editorCropPointerArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}

	var st editor.CropState
	switch a.Action {
	case "down":
		h, err := editor.ParseHandle(a.Handle)
		if err != nil {
			return nil, err
		}
		st = sess.PointerDown(h, a.X, a.Y)
	case "move":
		st = sess.PointerMove(a.X, a.Y)
	case "up":
		st = sess.PointerUp()
	default:
		return nil, fmt.Errorf("unknown pointer action %q (want down, move or up)", a.Action)
	}
	return st.Summary(), nil
}

type cropApplyResult struct {
	Applied bool           `json:"applied"`
	Region  *editor.Region `json:"region,omitempty"`
	Width   int            `json:"width"`
	Height  int            `json:"height"`
}

func (s *Server) handleEditorCropApply(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	region, err := sess.ApplyCrop()
	if err != nil {
		return nil, err
	}
	size := sess.Size()
	return &cropApplyResult{
		Applied: region != nil,
		Region:  region,
		Width:   size.X,
		Height:  size.Y,
	}, nil
}

func (s *Server) handleEditorCropCancel(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	sess.CancelCrop()
	return sess.Crop().Summary(), nil
}

// === Output Handlers ===

// maxPreviewScale is the largest scale editor_render accepts.
const maxPreviewScale = 4.0

type editorRenderArgs struct {
	sessionArgs
	Scale       float64 `json:"scale"`
	ShowCrop    *bool   `json:"show_crop"`
	AccentColor string  `json:"accent_color"`
}

type renderResult struct {
	Rendered bool                  `json:"rendered"`
	Image    *imaging.EncodedImage `json:"image,omitempty"`
	Crop     editor.CropSummary    `json:"crop"`
}

func (s *Server) handleEditorRender(args json.RawMessage) (interface{}, error) {
	var a editorRenderArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Scale < 0 || a.Scale > maxPreviewScale {
		return nil, fmt.Errorf("scale must be in (0, %g], got %g", maxPreviewScale, a.Scale)
	}
	if a.ShowCrop == nil {
		show := true
		a.ShowCrop = &show
	}

	crop := sess.Crop()
	out := sess.Output()
	if out == nil {
		return &renderResult{Crop: crop.Summary()}, nil
	}

	var preview image.Image = out
	if *a.ShowCrop && crop.Mode == editor.CropActive {
		preview = imaging.CropOverlay(out, crop.Region.Rect(), a.AccentColor)
	}
	encoded, err := imaging.EncodePreview(preview, a.Scale)
	if err != nil {
		return nil, err
	}
	return &renderResult{Rendered: true, Image: encoded, Crop: crop.Summary()}, nil
}

type editorSampleColorArgs struct {
	sessionArgs
	Points []imaging.LabeledPoint `json:"points"`
}

func (s *Server) handleEditorSampleColor(args json.RawMessage) (interface{}, error) {
	var a editorSampleColorArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	out := sess.Output()
	if out == nil {
		return []imaging.LabeledColorResult{}, nil
	}
	return imaging.SampleColorsMulti(out, a.Points)
}

type editorPaletteArgs struct {
	sessionArgs
	Count int `json:"count"`
}

func (s *Server) handleEditorPalette(args json.RawMessage) (interface{}, error) {
	var a editorPaletteArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	out := sess.Output()
	if out == nil {
		return []imaging.ColorFrequency{}, nil
	}
	return imaging.DominantColors(out, a.Count), nil
}

type editorExportArgs struct {
	sessionArgs
	Format   string `json:"format"`
	Save     bool   `json:"save"`
	Filename string `json:"filename"`
}

type exportResult struct {
	Exported bool `json:"exported"`
	*imaging.ExportResult
	Path       string `json:"path,omitempty"`
	DataBase64 string `json:"data_base64,omitempty"`
}

func (s *Server) handleEditorExport(args json.RawMessage) (interface{}, error) {
	var a editorExportArgs
	sess, err := s.decodeSession(args, &a)
	if err != nil {
		return nil, err
	}
	if a.Format == "" {
		a.Format = s.cfg.Export.Format
	}
	format, err := imaging.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	res, err := sess.Export(format)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &exportResult{}, nil
	}

	out := &exportResult{Exported: true, ExportResult: res}
	if !a.Save {
		out.DataBase64 = base64.StdEncoding.EncodeToString(res.Data)
		return out, nil
	}

	name := res.Filename
	if a.Filename != "" {
		name = filepath.Base(a.Filename)
		if name == "." || name == ".." || name == string(filepath.Separator) {
			return nil, fmt.Errorf("invalid export filename %q", a.Filename)
		}
	}
	if err := os.MkdirAll(s.cfg.Export.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(s.cfg.Export.Dir, name)
	if err := os.WriteFile(path, res.Data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	res.Filename = name
	out.Path = path
	s.log.WithFields(logrus.Fields{"session": sess.ID(), "path": path}).Info("export saved")
	return out, nil
}
