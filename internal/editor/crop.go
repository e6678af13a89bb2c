package editor

import (
	"fmt"
	"image"
	"math"
)

// MinCropSize is the smallest width or height a crop region may shrink to.
const MinCropSize = 20

// HandleHitRadius is how close (in raster pixels) a pointer must be to a
// corner for HitTest to select that corner.
const HandleHitRadius = 10

// Default rectangle placed by StartCrop before clamping.
const (
	defaultCropOffset = 50
	defaultCropSize   = 200
	defaultCropInset  = 100
)

// Handle names the crop control point driving a drag.
type Handle int

const (
	HandleNone Handle = iota
	HandleMove
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
)

var handleNames = map[Handle]string{
	HandleNone:        "none",
	HandleMove:        "move",
	HandleTopLeft:     "top-left",
	HandleTopRight:    "top-right",
	HandleBottomLeft:  "bottom-left",
	HandleBottomRight: "bottom-right",
}

func (h Handle) String() string {
	if name, ok := handleNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Handle(%d)", int(h))
}

// ParseHandle converts a handle name ("move", "top-left", ...) to a Handle.
// The empty string parses as HandleNone.
func ParseHandle(s string) (Handle, error) {
	if s == "" {
		return HandleNone, nil
	}
	for h, name := range handleNames {
		if name == s {
			return h, nil
		}
	}
	return HandleNone, fmt.Errorf("%q: %w", s, ErrUnknownHandle)
}

// Region is a crop rectangle in raster pixel coordinates.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// CropMode is the top-level crop tool state.
type CropMode int

const (
	CropIdle CropMode = iota
	CropActive
)

func (m CropMode) String() string {
	if m == CropActive {
		return "cropping"
	}
	return "idle"
}

// CropState is the full crop tool state. Drag is HandleNone unless a pointer
// drag is in progress.
type CropState struct {
	Mode   CropMode
	Region Region
	Drag   Handle

	anchor image.Point
	origin Region
}

// Dragging reports whether a handle is being dragged.
func (s CropState) Dragging() bool {
	return s.Mode == CropActive && s.Drag != HandleNone
}

// EventKind enumerates the crop tool inputs.
type EventKind int

const (
	EventStartCrop EventKind = iota
	EventPointerDown
	EventPointerMove
	EventPointerUp
	EventApplyCrop
	EventCancelCrop
)

// CropEvent is a single crop tool input. Point is in raster coordinates;
// use Viewport.ToRaster to convert display coordinates first.
type CropEvent struct {
	Kind   EventKind
	Handle Handle
	Point  image.Point
}

// Transition computes the crop tool state that follows e. size is the
// raster's width and height. When e commits the crop, the committed region is
// returned and the new state is idle. Events that do not apply to the current
// state leave it unchanged.
func Transition(s CropState, e CropEvent, size image.Point) (CropState, *Region) {
	if size.X <= 0 || size.Y <= 0 {
		return CropState{}, nil
	}

	switch e.Kind {
	case EventStartCrop:
		if s.Mode == CropActive {
			return s, nil
		}
		return CropState{Mode: CropActive, Region: DefaultRegion(size)}, nil

	case EventPointerDown:
		if s.Mode != CropActive || e.Handle == HandleNone {
			return s, nil
		}
		s.Drag = e.Handle
		s.anchor = clampPoint(e.Point, size)
		s.origin = s.Region
		return s, nil

	case EventPointerMove:
		if !s.Dragging() {
			return s, nil
		}
		s.Region = dragRegion(s, clampPoint(e.Point, size), size)
		return s, nil

	case EventPointerUp:
		if s.Mode != CropActive {
			return s, nil
		}
		s.Drag = HandleNone
		return s, nil

	case EventApplyCrop:
		if s.Mode != CropActive {
			return s, nil
		}
		committed := NormalizeRegion(s.Region, size)
		return CropState{}, &committed

	case EventCancelCrop:
		return CropState{}, nil
	}
	return s, nil
}

// DefaultRegion is the rectangle StartCrop places on a raster of the given
// size: (50,50) with each side min(200, dimension-100), clamped.
func DefaultRegion(size image.Point) Region {
	return NormalizeRegion(Region{
		X:      defaultCropOffset,
		Y:      defaultCropOffset,
		Width:  min(defaultCropSize, size.X-defaultCropInset),
		Height: min(defaultCropSize, size.Y-defaultCropInset),
	}, size)
}

// NormalizeRegion enforces the crop invariants: each side is at least
// MinCropSize (or the whole raster dimension when that is smaller) and the
// rectangle lies inside the raster.
func NormalizeRegion(r Region, size image.Point) Region {
	r.Width = clampInt(r.Width, minSide(size.X), size.X)
	r.Height = clampInt(r.Height, minSide(size.Y), size.Y)
	r.X = clampInt(r.X, 0, size.X-r.Width)
	r.Y = clampInt(r.Y, 0, size.Y-r.Height)
	return r
}

// dragRegion recomputes the region for a pointer at p during a drag.
// Corner handles move the two edges they touch; the opposite edges stay put.
func dragRegion(s CropState, p image.Point, size image.Point) Region {
	r := s.Region
	minW, minH := minSide(size.X), minSide(size.Y)
	right, bottom := r.X+r.Width, r.Y+r.Height

	switch s.Drag {
	case HandleMove:
		o := s.origin
		x := clampInt(o.X+p.X-s.anchor.X, 0, size.X-o.Width)
		y := clampInt(o.Y+p.Y-s.anchor.Y, 0, size.Y-o.Height)
		return Region{X: x, Y: y, Width: o.Width, Height: o.Height}

	case HandleTopLeft:
		x := clampInt(p.X, 0, right-minW)
		y := clampInt(p.Y, 0, bottom-minH)
		return Region{X: x, Y: y, Width: right - x, Height: bottom - y}

	case HandleTopRight:
		newRight := clampInt(p.X, r.X+minW, size.X)
		y := clampInt(p.Y, 0, bottom-minH)
		return Region{X: r.X, Y: y, Width: newRight - r.X, Height: bottom - y}

	case HandleBottomLeft:
		x := clampInt(p.X, 0, right-minW)
		newBottom := clampInt(p.Y, r.Y+minH, size.Y)
		return Region{X: x, Y: r.Y, Width: right - x, Height: newBottom - r.Y}

	case HandleBottomRight:
		newRight := clampInt(p.X, r.X+minW, size.X)
		newBottom := clampInt(p.Y, r.Y+minH, size.Y)
		return Region{X: r.X, Y: r.Y, Width: newRight - r.X, Height: newBottom - r.Y}
	}
	return r
}

// HitTest returns the handle under p. Corners within tolerance win over the
// interior; points outside the region return HandleNone.
func HitTest(r Region, p image.Point, tolerance int) Handle {
	near := func(cx, cy int) bool {
		return abs(p.X-cx) <= tolerance && abs(p.Y-cy) <= tolerance
	}
	right, bottom := r.X+r.Width, r.Y+r.Height
	switch {
	case near(r.X, r.Y):
		return HandleTopLeft
	case near(right, r.Y):
		return HandleTopRight
	case near(r.X, bottom):
		return HandleBottomLeft
	case near(right, bottom):
		return HandleBottomRight
	case p.In(r.Rect()):
		return HandleMove
	}
	return HandleNone
}

// Viewport describes how large the raster is displayed. Pointer coordinates
// arrive in display space and must be scaled to raster space before any
// clamping, or drags drift from the cursor on scaled displays.
type Viewport struct {
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
}

// ToRaster maps a display-space point to raster pixels, clamped to
// [0, size]. A zero viewport dimension means the raster is shown 1:1 on that
// axis.
func (v Viewport) ToRaster(x, y float64, size image.Point) image.Point {
	sx, sy := 1.0, 1.0
	if v.DisplayWidth > 0 {
		sx = float64(size.X) / v.DisplayWidth
	}
	if v.DisplayHeight > 0 {
		sy = float64(size.Y) / v.DisplayHeight
	}
	return image.Pt(toPixel(x*sx, size.X), toPixel(y*sy, size.Y))
}

// toPixel rounds v into [0, limit]. The clamp happens in float space so
// huge or infinite products cannot overflow int. NaN maps to 0.
func toPixel(v float64, limit int) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= float64(limit) {
		return limit
	}
	return int(math.Round(v))
}

func minSide(dim int) int {
	return min(MinCropSize, dim)
}

func clampPoint(p image.Point, size image.Point) image.Point {
	return image.Pt(clampInt(p.X, 0, size.X), clampInt(p.Y, 0, size.Y))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
