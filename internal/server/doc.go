// Package server implements the MCP (Model Context Protocol) server for the image editor.
//
// This package provides a JSON-RPC 2.0 server that exposes editor sessions
// through the MCP protocol. A client opens a session on an image, adjusts
// filters, effects and background, optionally crops, previews the result and
// exports it.
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
// Session Lifecycle:
//   - editor_open: Load an image (path, URL or base64) into a session
//   - editor_close: Release a session
//   - editor_state: Current parameters, background and crop state
//   - editor_list_presets: Presets, gradient names and slider ranges
//
// Parameters:
//   - editor_set_filter, editor_set_effect: Set one clamped slider
//   - editor_apply_preset: Merge a named preset into the filters
//   - editor_reset: Restore all defaults
//   - editor_set_background: Transparent, solid colour or gradient
//   - editor_set_viewport: Display size used to map pointer coordinates
//
// Crop Tool:
//   - editor_crop_start, editor_crop_pointer, editor_crop_apply, editor_crop_cancel
//
// Output:
//   - editor_render: Base64 PNG preview, with crop overlay while cropping
//   - editor_sample_color, editor_palette: Inspect the rendered output
//   - editor_export: Lossless PNG or WebP, returned inline or saved to disk
//
// # Sessions
//
// Each editor_open without a session_id creates a session; the number of open
// sessions is capped by configuration. Source files and URLs are cached by the
// server, so reopening the same image does not read it again. Requests are
// handled sequentially in arrival order.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(cfg, logger, version)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal(err)
//	}
package server
