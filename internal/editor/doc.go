// Package editor implements the image edit pipeline: a working raster, the
// tone filters and effects applied to it, the background it is composited
// over, and the crop tool.
//
// Parameters are plain values. Every write clamps to the slider's declared
// range, so render code never sees an out-of-range value.
//
// Render is a pure function of (raster, background, filters, effects) plus a
// random source that only film grain consumes. Session wraps it with the
// mutable state of one editing session:
//
//	s := editor.NewSession(editor.Options{Logger: log})
//	s.Load(img, "cutout.png")
//	s.SetFilter("brightness", 120)
//	s.ApplyPreset("vintage")
//	out := s.Render()
//
// The crop tool is a state machine driven by Transition; Session feeds it
// pointer events after mapping display coordinates through the Viewport.
package editor
