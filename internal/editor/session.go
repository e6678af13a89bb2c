package editor

import (
	"image"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	imgio "github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// Options configures a Session.
type Options struct {
	// Logger receives session events. Nil discards them.
	Logger logrus.FieldLogger

	// StableGrain seeds film grain identically on every render, so a preview
	// and a later export show the same grain. Otherwise each render draws
	// fresh grain.
	StableGrain bool
	GrainSeed   uint64
}

// Session owns one working raster and everything applied to it.
//
// All methods are safe for concurrent use. Mutations only record state;
// pixels are produced by Render (or lazily by Output and Export). Render
// works from a snapshot taken under the lock, so a render never mixes old and
// new parameters, and a committed crop is observed as a whole raster swap.
type Session struct {
	mu   sync.Mutex
	id   string
	opts Options
	log  logrus.FieldLogger

	sourceName string
	raster     *image.NRGBA
	rasterGen  uint64

	filters    FilterParameters
	effects    EffectParameters
	background Background
	crop       CropState
	viewport   Viewport

	// gen increments on every state change that affects output.
	gen       uint64
	output    *image.NRGBA
	outputGen uint64

	fgCache foregroundCache
}

type foregroundCache struct {
	rasterGen uint64
	filters   FilterParameters
	img       *image.NRGBA
}

// NewSession creates an empty session with default parameters and a random ID.
func NewSession(opts Options) *Session {
	id := uuid.NewString()
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Session{
		id:         id,
		opts:       opts,
		log:        log.WithField("session", id),
		filters:    DefaultFilters(),
		effects:    DefaultEffects(),
		background: Transparent(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Load replaces the working raster with a copy of img. Any crop in progress
// is abandoned; parameters are kept.
func (s *Session) Load(img image.Image, sourceName string) {
	raster := imaging.Clone(img)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.raster = raster
	s.sourceName = sourceName
	s.rasterGen++
	s.crop = CropState{}
	s.touch()
	s.log.WithFields(logrus.Fields{
		"source": sourceName,
		"width":  raster.Bounds().Dx(),
		"height": raster.Bounds().Dy(),
	}).Info("raster loaded")
}

// HasRaster reports whether an image has been loaded.
func (s *Session) HasRaster() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raster != nil
}

// Size returns the raster dimensions, or the zero point without a raster.
func (s *Session) Size() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sizeLocked()
}

func (s *Session) sizeLocked() image.Point {
	if s.raster == nil {
		return image.Point{}
	}
	return s.raster.Bounds().Size()
}

// SourceName returns the name the raster was loaded under.
func (s *Session) SourceName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceName
}

// Filters returns a copy of the current filter parameters.
func (s *Session) Filters() FilterParameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Effects returns a copy of the current effect parameters.
func (s *Session) Effects() EffectParameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effects
}

// Background returns the current background.
func (s *Session) Background() Background {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

// SetFilter clamps and stores one filter value, returning what was stored.
func (s *Session) SetFilter(name string, v float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.filters.Set(name, v)
	if err != nil {
		return 0, err
	}
	s.touch()
	return stored, nil
}

// SetEffect clamps and stores one effect value, returning what was stored.
func (s *Session) SetEffect(name string, v float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.effects.Set(name, v)
	if err != nil {
		return 0, err
	}
	s.touch()
	return stored, nil
}

// ApplyPreset merges a named preset into the filters. Unknown names leave the
// filters untouched.
func (s *Session) ApplyPreset(name string) error {
	p, err := LookupPreset(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := p.Apply(&s.filters); err != nil {
		return err
	}
	s.touch()
	s.log.WithField("preset", name).Debug("preset applied")
	return nil
}

// ResetFilters restores filters and effects to their defaults.
func (s *Session) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = DefaultFilters()
	s.effects = DefaultEffects()
	s.touch()
}

// SetBackground replaces the background.
func (s *Session) SetBackground(bg Background) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = bg
	s.touch()
}

// SetViewport records the display size used to map pointer coordinates.
func (s *Session) SetViewport(v Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = v
}

// Viewport returns the current display mapping.
func (s *Session) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Crop returns the crop tool state.
func (s *Session) Crop() CropState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crop
}

// StartCrop enters crop mode with the default rectangle. Without a raster it
// does nothing.
func (s *Session) StartCrop() CropState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(CropEvent{Kind: EventStartCrop})
	return s.crop
}

// PointerDown starts a drag at display coordinates (x, y). With HandleNone
// the handle under the pointer is used; a press outside the region does not
// start a drag.
func (s *Session) PointerDown(h Handle, x, y float64) CropState {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.viewport.ToRaster(x, y, s.sizeLocked())
	if h == HandleNone && s.crop.Mode == CropActive {
		h = HitTest(s.crop.Region, p, HandleHitRadius)
	}
	s.dispatchLocked(CropEvent{Kind: EventPointerDown, Handle: h, Point: p})
	return s.crop
}

// PointerMove continues a drag at display coordinates (x, y).
func (s *Session) PointerMove(x, y float64) CropState {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.viewport.ToRaster(x, y, s.sizeLocked())
	s.dispatchLocked(CropEvent{Kind: EventPointerMove, Point: p})
	return s.crop
}

// PointerUp ends a drag.
func (s *Session) PointerUp() CropState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(CropEvent{Kind: EventPointerUp})
	return s.crop
}

// CancelCrop leaves crop mode without touching the raster.
func (s *Session) CancelCrop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(CropEvent{Kind: EventCancelCrop})
}

// ApplyCrop commits the crop region: the raster is replaced by the region's
// pixels and crop mode ends. It returns the committed region, or nil when
// crop mode was not active.
func (s *Session) ApplyCrop() (*Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyCropLocked()
}

// CropTo commits r as if it had been dragged out and applied. r is normalized
// to the raster first. Without a raster it returns (nil, nil).
func (s *Session) CropTo(r Region) (*Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raster == nil {
		return nil, nil
	}
	s.crop = CropState{Mode: CropActive, Region: NormalizeRegion(r, s.sizeLocked())}
	return s.applyCropLocked()
}

func (s *Session) applyCropLocked() (*Region, error) {
	size := s.sizeLocked()
	next, committed := Transition(s.crop, CropEvent{Kind: EventApplyCrop}, size)
	if committed == nil {
		s.crop = next
		return nil, nil
	}

	cropped, err := imgio.ExtractRegion(s.raster, committed.Rect())
	if err != nil {
		return nil, err
	}

	s.raster = cropped
	s.rasterGen++
	s.crop = next
	s.touch()
	s.log.WithFields(logrus.Fields{
		"x": committed.X, "y": committed.Y,
		"width": committed.Width, "height": committed.Height,
	}).Info("crop applied")
	return committed, nil
}

func (s *Session) dispatchLocked(e CropEvent) {
	if s.raster == nil {
		return
	}
	s.crop, _ = Transition(s.crop, e, s.sizeLocked())
}

// touch marks the output stale. Callers hold s.mu.
func (s *Session) touch() {
	s.gen++
}

type renderSnapshot struct {
	gen        uint64
	rasterGen  uint64
	raster     *image.NRGBA
	filters    FilterParameters
	effects    EffectParameters
	background Background
	foreground *image.NRGBA
}

// Render recomputes the output from the current state and returns the newest
// published output. Without a raster it returns nil.
//
// The returned image is shared; callers must not modify it.
func (s *Session) Render() *image.NRGBA {
	s.mu.Lock()
	if s.raster == nil {
		s.mu.Unlock()
		return nil
	}
	snap := renderSnapshot{
		gen:        s.gen,
		rasterGen:  s.rasterGen,
		raster:     s.raster,
		filters:    s.filters,
		effects:    s.effects,
		background: s.background,
	}
	if c := s.fgCache; c.img != nil && c.rasterGen == s.rasterGen && c.filters == s.filters {
		snap.foreground = c.img
	}
	s.mu.Unlock()

	start := time.Now()
	fg := snap.foreground
	if fg == nil {
		fg = FilterForeground(snap.raster, snap.filters)
	}
	out := Composite(fg, snap.background, snap.filters, snap.effects, s.grainSource())

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.foreground == nil {
		s.fgCache = foregroundCache{rasterGen: snap.rasterGen, filters: snap.filters, img: fg}
	}
	if s.output == nil || snap.gen >= s.outputGen {
		s.output = out
		s.outputGen = snap.gen
	}
	s.log.WithFields(logrus.Fields{
		"generation": snap.gen,
		"cached":     snap.foreground != nil,
		"elapsed":    time.Since(start),
	}).Debug("rendered")
	return s.output
}

// Output returns the current output, rendering first if state changed since
// the last render.
func (s *Session) Output() *image.NRGBA {
	s.mu.Lock()
	fresh := s.output != nil && s.outputGen == s.gen
	out := s.output
	s.mu.Unlock()
	if fresh {
		return out
	}
	return s.Render()
}

// Export encodes the current output. Without a raster it returns (nil, nil).
func (s *Session) Export(format imgio.Format) (*imgio.ExportResult, error) {
	out := s.Output()
	if out == nil {
		return nil, nil
	}
	res, err := imgio.Export(out, format, s.SourceName())
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"filename": res.Filename, "bytes": res.Bytes}).Info("exported")
	return res, nil
}

func (s *Session) grainSource() RandomSource {
	if s.opts.StableGrain {
		return rand.New(rand.NewPCG(s.opts.GrainSeed, s.opts.GrainSeed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// State is a serializable summary of a session.
type State struct {
	ID         string           `json:"id"`
	HasRaster  bool             `json:"has_raster"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Source     string           `json:"source,omitempty"`
	Filters    FilterParameters `json:"filters"`
	Effects    EffectParameters `json:"effects"`
	Background string           `json:"background"`
	Crop       CropSummary      `json:"crop"`
	Viewport   Viewport         `json:"viewport"`
	Generation uint64           `json:"generation"`
}

// CropSummary is the serializable form of CropState.
type CropSummary struct {
	Mode     string  `json:"mode"`
	Region   *Region `json:"region,omitempty"`
	Dragging string  `json:"dragging,omitempty"`
}

// Summary returns the crop state in serializable form.
func (c CropState) Summary() CropSummary {
	sum := CropSummary{Mode: c.Mode.String()}
	if c.Mode == CropActive {
		r := c.Region
		sum.Region = &r
		if c.Drag != HandleNone {
			sum.Dragging = c.Drag.String()
		}
	}
	return sum
}

// State returns a consistent summary of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	size := s.sizeLocked()
	return State{
		ID:         s.id,
		HasRaster:  s.raster != nil,
		Width:      size.X,
		Height:     size.Y,
		Source:     s.sourceName,
		Filters:    s.filters,
		Effects:    s.effects,
		Background: s.background.String(),
		Crop:       s.crop.Summary(),
		Viewport:   s.viewport,
		Generation: s.gen,
	}
}
