package visualization

import (
	"errors"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"diffinpaint/internal/models"
	"diffinpaint/pkg/session"
)

var cursorColor = color.NRGBA{R: 255, G: 255, B: 255, A: 128}

type binding struct {
	key    ebiten.Key
	action models.Action
}

// bindings is scanned in order so simultaneous presses apply deterministically.
var bindings = []binding{
	{ebiten.KeySpace, models.ToggleSolving},
	{ebiten.KeyB, models.ToggleAlgorithm},
	{ebiten.KeyBracketRight, models.GrowBrush},
	{ebiten.KeyBracketLeft, models.ShrinkBrush},
	{ebiten.KeyR, models.Reload},
	{ebiten.KeyS, models.Save},
	{ebiten.KeyQ, models.Quit},
	{ebiten.KeyEscape, models.Quit},
}

// Viewer is the ebiten.Game driving a session: input in Update, solver tick
// once per frame, texture re-upload in Draw only when the session is dirty.
type Viewer struct {
	session   *session.Session
	presenter *Presenter
	logger    *slog.Logger

	dirty         bool
	cursorX       int
	cursorY       int
	title         string
	showStatus    bool
	width, height int
}

// NewViewer creates a viewer for s. When showStatus is set a debug status
// line is printed over the image.
func NewViewer(s *session.Session, showStatus bool, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{
		session:    s,
		presenter:  NewPresenter(),
		logger:     logger,
		showStatus: showStatus,
	}
}

// Run opens the window and blocks until the user quits or closes it.
func Run(v *Viewer) error {
	buf := v.session.Buffer()
	v.width, v.height = buf.Width, buf.Height
	v.title = v.session.Title()
	ebiten.SetWindowSize(buf.Width, buf.Height)
	ebiten.SetWindowTitle(v.title)
	return ebiten.RunGame(v)
}

// Update handles input and advances the solver by one batch.
func (v *Viewer) Update() error {
	x, y := ebiten.CursorPosition()
	moved := x != v.cursorX || y != v.cursorY
	v.cursorX, v.cursorY = x, y

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		v.session.PointerDown(x, y, true)
	case moved && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		v.session.PointerMove(x, y)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		v.session.PointerUp(true)
	}

	for _, b := range bindings {
		if !inpututil.IsKeyJustPressed(b.key) {
			continue
		}
		if err := v.session.Handle(b.action); err != nil {
			if errors.Is(err, session.ErrQuit) {
				return ebiten.Termination
			}
			v.logger.Error("action failed", "action", b.action, "err", err)
		}
	}

	if title := v.session.Title(); title != v.title {
		v.title = title
		ebiten.SetWindowTitle(title)
	}
	if buf := v.session.Buffer(); buf.Width != v.width || buf.Height != v.height {
		v.width, v.height = buf.Width, buf.Height
		ebiten.SetWindowSize(v.width, v.height)
	}

	if v.session.Tick() {
		v.dirty = true
	}
	return nil
}

// Draw presents the buffer, the brush outline and the status line.
func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.dirty {
		if err := v.presenter.Upload(v.session.Buffer()); err != nil {
			v.logger.Error("upload failed", "err", err)
		}
		v.dirty = false
	}
	v.presenter.Draw(screen)

	r := v.session.Cursor(v.cursorX, v.cursorY)
	vector.StrokeRect(screen,
		float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()),
		1, cursorColor, false)

	if v.showStatus {
		ebitenutil.DebugPrint(screen, v.session.Status())
	}
}

// Layout keeps one logical pixel per image pixel.
func (v *Viewer) Layout(_, _ int) (int, int) {
	buf := v.session.Buffer()
	return buf.Width, buf.Height
}
