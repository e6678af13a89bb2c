package server

import (
	"github.com/ironsheep/image-edit-mcp/internal/editor"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	sessionID := map[string]interface{}{
		"type":        "string",
		"description": "Session ID returned by editor_open",
	}

	return []Tool{
		// Session lifecycle
		{
			Name:        "editor_open",
			Description: "Load an image into a new editing session (or into an existing one when session_id is given). Exactly one of path, url or data must be set. Returns the session ID and image dimensions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"url": map[string]interface{}{
						"type":        "string",
						"description": "http(s) URL of the image",
					},
					"data": map[string]interface{}{
						"type":        "string",
						"description": "Base64 image data, optionally as a data: URL",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Source name used to suggest export filenames when loading from data",
					},
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Optional existing session to load into. Filters and effects are kept; any crop in progress is abandoned.",
					},
					"display_width": map[string]interface{}{
						"type":        "number",
						"description": "Optional width the image is displayed at, for pointer mapping",
					},
					"display_height": map[string]interface{}{
						"type":        "number",
						"description": "Optional height the image is displayed at, for pointer mapping",
					},
				},
			},
		},
		{
			Name:        "editor_close",
			Description: "Close an editing session and release its image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_state",
			Description: "Get the current filters, effects, background, crop state and dimensions of a session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_list_presets",
			Description: "List filter presets, gradient background presets, and the range and default of every filter and effect.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Parameters
		{
			Name:        "editor_set_filter",
			Description: "Set one filter slider. Out-of-range values are clamped; the stored value is returned.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
					"name": map[string]interface{}{
						"type":        "string",
						"enum":        specNames(editor.FilterSpecs()),
						"description": "Filter to set",
					},
					"value": map[string]interface{}{
						"type":        "number",
						"description": "New value; see editor_list_presets for ranges",
					},
				},
				"required": []string{"session_id", "name", "value"},
			},
		},
		{
			Name:        "editor_set_effect",
			Description: "Set one effect slider. Out-of-range values are clamped; the stored value is returned.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
					"name": map[string]interface{}{
						"type":        "string",
						"enum":        specNames(editor.EffectSpecs()),
						"description": "Effect to set",
					},
					"value": map[string]interface{}{
						"type":        "number",
						"description": "New value; see editor_list_presets for ranges",
					},
				},
				"required": []string{"session_id", "name", "value"},
			},
		},
		{
			Name:        "editor_apply_preset",
			Description: "Merge a named preset into the current filters. Filters the preset does not mention keep their values.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
					"preset": map[string]interface{}{
						"type":        "string",
						"enum":        presetNames(),
						"description": "Preset name",
					},
				},
				"required": []string{"session_id", "preset"},
			},
		},
		{
			Name:        "editor_reset",
			Description: "Restore every filter and effect to its default.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_set_background",
			Description: "Set what shows through transparent pixels: \"transparent\", a hex colour such as \"#ffffff\", \"gradient:<preset>\", or \"gradient:#rrggbb,#rrggbb\".",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
					"background": map[string]interface{}{
						"type":        "string",
						"description": "Background spec",
					},
				},
				"required": []string{"session_id", "background"},
			},
		},
		{
			Name:        "editor_set_viewport",
			Description: "Set the size the image is displayed at. Pointer coordinates passed to editor_crop_pointer are interpreted in this display space. Zero means 1:1.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
					"display_width": map[string]interface{}{
						"type":        "number",
						"description": "Display width in pixels",
					},
					"display_height": map[string]interface{}{
						"type":        "number",
						"description": "Display height in pixels",
					},
				},
				"required": []string{"session_id"},
			},
		},

		// Crop tool
		{
			Name:        "editor_crop_start",
			Description: "Enter crop mode with the default crop rectangle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_crop_pointer",
			Description: "Send a pointer event to the crop tool. \"down\" grabs a handle (or the handle under the pointer when none is given), \"move\" drags it, \"up\" releases it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
					"action": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"down", "move", "up"},
						"description": "Pointer action",
					},
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Pointer X in display coordinates",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Pointer Y in display coordinates",
					},
					"handle": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"move", "top-left", "top-right", "bottom-left", "bottom-right"},
						"description": "Handle to grab on \"down\". Default: hit-test at the pointer",
					},
				},
				"required": []string{"session_id", "action"},
			},
		},
		{
			Name:        "editor_crop_apply",
			Description: "Commit the crop rectangle. The working image is permanently replaced by the cropped region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_crop_cancel",
			Description: "Leave crop mode without changing the image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
				},
				"required": []string{"session_id"},
			},
		},

		// Output
		{
			Name:        "editor_render",
			Description: "Render the edited image and return it as base64-encoded PNG. While cropping, the crop rectangle can be drawn over the preview.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional preview scale factor (e.g., 0.5 for half size), at most 4. Default 1.0",
						"default":     1.0,
						"maximum":     maxPreviewScale,
					},
					"show_crop": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw the crop rectangle and handles when crop mode is active. Default true",
						"default":     true,
					},
					"accent_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex colour of the crop border and handles. Default white",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_sample_color",
			Description: "Get the exact color of the rendered output at one or more pixel coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Points to sample",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"session_id", "points"},
			},
		},
		{
			Name:        "editor_palette",
			Description: "Extract the most common colors of the rendered output, ignoring fully transparent pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_export",
			Description: "Encode the edited image losslessly. Returns base64 data, or writes the file into the export directory when save is true.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionID,
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "webp"},
						"description": "Output format. Default from server configuration (png)",
					},
					"save": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the file to the export directory instead of returning data. Default false",
						"default":     false,
					},
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Optional file name when saving. Default: <source>-edited.<ext>",
					},
				},
				"required": []string{"session_id"},
			},
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

func specNames(specs []editor.ParamSpec) []string {
	names := make([]string, len(specs))
	for i, p := range specs {
		names[i] = p.Name
	}
	return names
}

func presetNames() []string {
	presets := editor.Presets()
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}
