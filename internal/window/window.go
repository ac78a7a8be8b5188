// Package window показывает проигрыватель в окне ebiten: мышь и касания
// превращаются в скретч, клавиши - в команды проигрывателя.
package window

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/hazadus/go-vinyl/internal/turntable"
)

// Option настраивает Game
type Option func(*Game)

// WithLogger задает логгер
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTitle задает заголовок окна
func WithTitle(title string) Option {
	return func(g *Game) {
		g.title = title
	}
}

// Game реализует ebiten.Game поверх проигрывателя
type Game struct {
	deck   *turntable.Turntable
	logger *log.Logger
	title  string
	frame  *ebiten.Image

	mouseDown bool
	touchID   ebiten.TouchID
	touching  bool
}

// New создает окно проигрывателя
func New(deck *turntable.Turntable, opts ...Option) *Game {
	g := &Game{
		deck:   deck,
		logger: log.New(io.Discard),
		title:  "vinyl",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run открывает окно и блокируется до его закрытия
func (g *Game) Run(fps int) error {
	w, h := g.deck.Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(g.windowTitle())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if fps > 0 {
		ebiten.SetTPS(fps)
	}

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update обрабатывает ввод и события воспроизведения
func (g *Game) Update() error {
	if err := g.deck.DrainEvents(); err != nil {
		g.logger.Warn("ошибка обработки события", "err", err)
	}

	g.handlePointer()

	if err := g.handleKeys(); err != nil {
		return err
	}
	ebiten.SetWindowTitle(g.windowTitle())
	return nil
}

func (g *Game) handlePointer() {
	w, h := g.deck.Size()

	// Мышь
	x, y := ebiten.CursorPosition()
	inside := x >= 0 && y >= 0 && x < w && y < h
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && inside:
		g.mouseDown = true
		g.deck.PointerDown(float64(x), float64(y))
	case g.mouseDown && (inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) || !inside):
		// Отпускание кнопки и уход курсора с окна одинаково завершают скретч
		g.mouseDown = false
		g.deck.PointerUp()
	case g.mouseDown:
		g.deck.PointerMove(float64(x), float64(y))
	}

	// Касания: отслеживается только первое
	if !g.touching {
		if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
			tx, ty := ebiten.TouchPosition(ids[0])
			g.touchID, g.touching = ids[0], true
			g.deck.PointerDown(float64(tx), float64(ty))
		}
		return
	}
	if inpututil.IsTouchJustReleased(g.touchID) {
		g.touching = false
		g.deck.PointerUp()
		return
	}
	tx, ty := ebiten.TouchPosition(g.touchID)
	g.deck.PointerMove(float64(tx), float64(ty))
}

func (g *Game) handleKeys() error {
	var err error
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		err = g.deck.TogglePlay()
	case inpututil.IsKeyJustPressed(ebiten.KeyN), inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		err = g.deck.Next()
	case inpututil.IsKeyJustPressed(ebiten.KeyP), inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		err = g.deck.Previous()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.deck.NudgeSpeed(turntable.SpeedStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.deck.NudgeSpeed(-turntable.SpeedStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.deck.NudgePitch(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.deck.NudgePitch(-1)
	case inpututil.IsKeyJustPressed(ebiten.Key0):
		g.deck.SetSpeed(1)
		g.deck.SetPitch(0)
	}
	if err != nil {
		// Ошибки воспроизведения не закрывают окно
		g.logger.Warn("команда не выполнена", "err", err)
	}
	return nil
}

// Draw рисует один кадр проигрывателя
func (g *Game) Draw(screen *ebiten.Image) {
	surface := g.deck.Frame(time.Now())
	bounds := surface.Bounds()

	if g.frame == nil || g.frame.Bounds().Dx() != bounds.Dx() || g.frame.Bounds().Dy() != bounds.Dy() {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(bounds.Dx(), bounds.Dy())
	}
	g.frame.WritePixels(surface.Pix)
	screen.DrawImage(g.frame, nil)
}

// Layout подгоняет поверхность проигрывателя под размер окна
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.deck.Resize(outsideWidth, outsideHeight)
	return g.deck.Size()
}

func (g *Game) windowTitle() string {
	status := g.deck.Status()
	if status.Count == 0 {
		return g.title
	}
	state := "⏸"
	if status.Playing {
		state = "▶"
	}
	return fmt.Sprintf("%s %s - %s", state, status.Track.DisplayName(), g.title)
}
