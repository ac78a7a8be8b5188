// Package player содержит модель экрана воспроизведения для TUI:
// вращающийся диск из полублоков, скретч мышью и управление скоростью/тоном.
package player

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-vinyl/internal/palette"
	"github.com/hazadus/go-vinyl/internal/turntable"
	"github.com/hazadus/go-vinyl/internal/utils"
)

const (
	// Положение диска на экране (в ячейках терминала)
	discTop  = 2
	discLeft = 2
	// Диаметр диска в ячейках по горизонтали
	minDiscCells = 8
	maxDiscCells = 48
	// Строки под заголовок, информацию и прогресс
	chromeRows = 12
	// alphaThreshold пиксели прозрачнее порога считаются фоном
	alphaThreshold = 128
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff"))

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)
)

// GoBackMsg отправляется для возврата к списку треков
type GoBackMsg struct{}

// tickMsg очередной кадр цикла отрисовки
type tickMsg time.Time

// startMsg загрузка выбранного трека
type startMsg struct{}

// Model представляет модель экрана воспроизведения
type Model struct {
	deck        *turntable.Turntable
	index       int
	interval    time.Duration
	progressBar progress.Model
	status      turntable.Status
	disc        string
	dragging    bool
	err         error
	width       int
	height      int
}

// NewModel создает модель плеера для трека с индексом index.
// fps задает частоту кадров диска.
func NewModel(deck *turntable.Turntable, index int, fps int) *Model {
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	if fps <= 0 {
		fps = 30
	}

	m := &Model{
		deck:        deck,
		index:       index,
		interval:    time.Second / time.Duration(fps),
		progressBar: prog,
	}
	m.resizeDisc(maxDiscCells*2+discLeft, maxDiscCells/2+chromeRows)
	return m
}

// Init запускает загрузку трека и цикл отрисовки
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return startMsg{} },
		m.tick(),
	)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update обрабатывает сообщения и обновляет модель.
// Все обращения к проигрывателю выполняются здесь, в потоке bubbletea.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = min(60, msg.Width-10)
		m.resizeDisc(msg.Width, msg.Height)
		return m, nil

	case startMsg:
		// Select сохраняет состояние воспроизведения, поэтому запускаем явно
		if err := m.deck.Select(m.index); err != nil {
			m.err = err
			return m, nil
		}
		if !m.deck.Adapter().IsPlaying() {
			m.err = m.deck.TogglePlay()
		}
		return m, nil

	case tickMsg:
		if err := m.deck.DrainEvents(); err != nil {
			m.err = err
		}
		m.disc = halfBlocks(m.deck.Frame(time.Time(msg)))
		m.status = m.deck.Status()
		return m, m.tick()

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	var err error
	switch msg.String() {
	case "q", "esc":
		// Останавливаем воспроизведение и возвращаемся к списку треков
		m.deck.Adapter().Pause()
		return func() tea.Msg {
			return GoBackMsg{}
		}
	case " ":
		err = m.deck.TogglePlay()
	case "n", "right":
		err = m.deck.Next()
	case "p", "left":
		err = m.deck.Previous()
	case "up":
		m.deck.NudgeSpeed(turntable.SpeedStep)
	case "down":
		m.deck.NudgeSpeed(-turntable.SpeedStep)
	case "+", "=":
		m.deck.NudgePitch(1)
	case "-":
		m.deck.NudgePitch(-1)
	case "0":
		m.deck.SetSpeed(1)
		m.deck.SetPitch(0)
	default:
		return nil
	}
	m.err = err
	m.status = m.deck.Status()
	return nil
}

// handleMouse переводит ячейки терминала в пиксели поверхности:
// одна ячейка - один пиксель по горизонтали и два по вертикали.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y, inside := m.cellToPixel(msg.X, msg.Y)

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if inside {
			m.dragging = true
			m.deck.PointerDown(x, y)
		}
	case !m.dragging:
		return
	case msg.Action == tea.MouseActionRelease || !inside:
		// Отпускание кнопки и уход с диска одинаково завершают скретч
		m.dragging = false
		m.deck.PointerUp()
	case msg.Action == tea.MouseActionMotion:
		m.deck.PointerMove(x, y)
	}
}

func (m *Model) cellToPixel(col, row int) (float64, float64, bool) {
	w, h := m.deck.Size()
	x := col - discLeft
	y := (row - discTop) * 2
	inside := x >= 0 && y >= 0 && x < w && y < h
	return float64(x) + 0.5, float64(y) + 1, inside
}

// resizeDisc подбирает размер поверхности под окно терминала
func (m *Model) resizeDisc(width, height int) {
	size := min(width-discLeft*2, (height-chromeRows)*2, maxDiscCells)
	size = max(size, minDiscCells)
	m.deck.Resize(size, size)
}

// halfBlocks превращает изображение в строки терминала: верхний пиксель -
// цвет символа "▀", нижний - цвет фона.
func halfBlocks(img *image.RGBA) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			var bottom color.RGBA
			if y+1 < b.Max.Y {
				bottom = img.RGBAAt(x, y+1)
			}
			sb.WriteString(cell(img.RGBAAt(x, y), bottom))
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func cell(top, bottom color.RGBA) string {
	topHex := palette.RGB{R: top.R, G: top.G, B: top.B}.Hex()
	bottomHex := palette.RGB{R: bottom.R, G: bottom.G, B: bottom.B}.Hex()
	switch {
	case top.A < alphaThreshold && bottom.A < alphaThreshold:
		return " "
	case top.A < alphaThreshold:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(bottomHex)).Render("▄")
	case bottom.A < alphaThreshold:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(topHex)).Render("▀")
	default:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(topHex)).
			Background(lipgloss.Color(bottomHex)).
			Render("▀")
	}
}

// View отображает модель
func (m *Model) View() string {
	title := titleStyle.Render(fmt.Sprintf("💿 Пластинка %d из %d", m.status.Index+1, m.status.Count))

	trackInfo := trackInfoStyle.Render(fmt.Sprintf(
		"🎤 %s\n🎵 %s\n💿 %s",
		m.status.Track.Artist,
		m.status.Track.Title,
		m.status.Track.Album,
	))

	statusText := statusStyle.Render(fmt.Sprintf("%s %s • %s • %s",
		statusIcon(m.status),
		formatStatus(m.status),
		formatRate(m.status),
		utils.FormatPitch(m.status.Controls.Pitch),
	))

	var percent float64
	if m.status.Duration > 0 {
		percent = float64(m.status.Position) / float64(m.status.Duration)
	}
	timeText := fmt.Sprintf("%s / %s",
		utils.FormatClock(m.status.Position),
		utils.FormatClock(m.status.Duration),
	)

	controls := controlsStyle.Render(
		"Мышь: скретч • Пробел: пауза • n/p: трек • ↑/↓: скорость • +/-: тон • 0: сброс • q: назад",
	)

	var errText string
	if m.err != nil {
		errText = "\n" + errorStyle.Render("❌ "+m.err.Error())
	} else if m.status.LoadErr != nil {
		errText = "\n" + errorStyle.Render("❌ "+m.status.LoadErr.Error())
	}

	disc := lipgloss.NewStyle().MarginLeft(discLeft).Render(m.disc)

	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s\n%s %s\n%s%s",
		title,
		disc,
		trackInfo,
		statusText,
		m.progressBar.ViewAs(percent),
		timeText,
		controls,
		errText,
	)
}

// Вспомогательные функции

func statusIcon(s turntable.Status) string {
	switch {
	case s.Dragging:
		return "🤚"
	case s.Playing:
		return "▶️"
	default:
		return "⏸️"
	}
}

func formatStatus(s turntable.Status) string {
	switch {
	case s.Dragging:
		return "Скретч"
	case s.Playing:
		return "Воспроизведение"
	default:
		return "Пауза"
	}
}

func formatRate(s turntable.Status) string {
	if !s.RateAvailable {
		return "скорость недоступна"
	}
	return utils.FormatSpeed(s.EffectiveRate)
}
