// Package session couples the brush and the solver driver to one input
// stream. Pointer and key events mutate a single buffer synchronously; the
// host loop calls Tick once per frame and re-presents the buffer when it
// reports dirty.
package session

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"diffinpaint/internal/models"
	"diffinpaint/pkg/brush"
	"diffinpaint/pkg/imagebuf"
	"diffinpaint/pkg/solver"
)

// ErrQuit is returned by Handle for the quit action.
var ErrQuit = errors.New("quit requested")

// State is the pointer state of the tool.
type State int

const (
	// Idle: no primary button held.
	Idle State = iota

	// Masking: button held while solving is off. The brush clears color.
	Masking

	// PreviewMasking: button held while solving is on. The brush only marks
	// the mask since the solver is already filling it.
	PreviewMasking
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Masking:
		return "masking"
	case PreviewMasking:
		return "preview-masking"
	default:
		return "unknown"
	}
}

// Loader produces a fresh buffer for a reload. It must not fail; decode
// errors are expected to fall back to a synthetic image.
type Loader func() *imagebuf.Buffer

// Saver writes the current buffer somewhere.
type Saver func(buf *imagebuf.Buffer) error

// Session owns the buffer being edited.
type Session struct {
	buf    *imagebuf.Buffer
	driver *solver.Driver
	state  State
	radius int

	load Loader
	save Saver

	logger *slog.Logger
}

// Config wires a Session's collaborators. Buffer and Driver are required.
type Config struct {
	Buffer *imagebuf.Buffer
	Driver *solver.Driver
	Radius int
	Load   Loader
	Save   Saver
	Logger *slog.Logger
}

// New creates an idle session. A zero radius selects the default.
func New(cfg Config) *Session {
	radius := cfg.Radius
	if radius == 0 {
		radius = models.DefaultBrushRadius
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		buf:    cfg.Buffer,
		driver: cfg.Driver,
		radius: models.ClampRadius(radius),
		load:   cfg.Load,
		save:   cfg.Save,
		logger: logger,
	}
	// The first frame always needs an upload.
	s.driver.MarkDirty()
	return s
}

// Buffer returns the buffer being edited. It changes on reload.
func (s *Session) Buffer() *imagebuf.Buffer { return s.buf }

// Driver returns the solver driver.
func (s *Session) Driver() *solver.Driver { return s.driver }

// State returns the pointer state.
func (s *Session) State() State { return s.state }

// Radius returns the brush radius.
func (s *Session) Radius() int { return s.radius }

// Cursor returns the square outline of the brush centered at (x, y).
func (s *Session) Cursor(x, y int) image.Rectangle {
	return image.Rect(x-s.radius, y-s.radius, x+s.radius, y+s.radius)
}

// Title is the window title for the current algorithm.
func (s *Session) Title() string {
	return "Inpainting - Mode: " + s.driver.Algorithm().Describe()
}

// Status is a one-line summary for an on-screen overlay.
func (s *Session) Status() string {
	run := "paused"
	if s.driver.Active() {
		run = "solving"
	}
	return fmt.Sprintf("%s | %s | brush %d | %s | masked %d",
		s.driver.Algorithm(), run, s.radius, s.state, s.buf.MaskedCount())
}

// PointerDown starts a stroke on the primary button and paints at (x, y).
func (s *Session) PointerDown(x, y int, primary bool) {
	if !primary {
		return
	}
	if s.driver.Active() {
		s.state = PreviewMasking
	} else {
		s.state = Masking
	}
	s.paint(x, y)
}

// PointerMove paints at (x, y) while a stroke is in progress.
func (s *Session) PointerMove(x, y int) {
	if s.state == Idle {
		return
	}
	s.paint(x, y)
}

// PointerUp ends the stroke.
func (s *Session) PointerUp(primary bool) {
	if primary {
		s.state = Idle
	}
}

func (s *Session) paint(x, y int) {
	brush.Apply(s.buf, models.Brush{
		X:      x,
		Y:      y,
		Radius: s.radius,
		Clear:  s.state == Masking,
	})
	s.driver.MarkDirty()
}

// Handle applies a key action. It returns ErrQuit for Quit and the saver's
// error for Save; every other action succeeds.
func (s *Session) Handle(a models.Action) error {
	switch a {
	case models.ToggleSolving:
		if s.state != Idle {
			return nil
		}
		on := s.driver.ToggleActive()
		s.logger.Info("solving toggled", "active", on)

	case models.ToggleAlgorithm:
		alg := s.driver.ToggleAlgorithm()
		s.logger.Info("algorithm changed", "algorithm", alg)

	case models.GrowBrush:
		s.radius = models.ClampRadius(s.radius + models.BrushRadiusStep)
		s.logger.Info("brush radius", "radius", s.radius)

	case models.ShrinkBrush:
		s.radius = models.ClampRadius(s.radius - models.BrushRadiusStep)
		s.logger.Info("brush radius", "radius", s.radius)

	case models.Reload:
		s.Reload()

	case models.Save:
		if s.save == nil {
			return nil
		}
		if err := s.save(s.buf); err != nil {
			s.logger.Error("save failed", "err", err)
			return err
		}
		s.logger.Info("image saved")

	case models.Quit:
		return ErrQuit
	}
	return nil
}

// Reload replaces the whole buffer and stops solving. The mask of the new
// buffer is whatever the loader returns, normally empty.
func (s *Session) Reload() {
	if s.load == nil {
		return
	}
	s.buf = s.load()
	s.state = Idle
	s.driver.SetActive(false)
	s.driver.MarkDirty()
	s.logger.Info("image reloaded", "width", s.buf.Width, "height", s.buf.Height)
}

// Tick advances the solver by one batch and reports whether the buffer
// must be re-presented.
func (s *Session) Tick() bool {
	return s.driver.Tick(s.buf)
}
