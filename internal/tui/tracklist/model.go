// Package tracklist содержит модель экрана библиотеки треков для TUI
package tracklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-vinyl/internal/palette"
	"github.com/hazadus/go-vinyl/internal/track"
	"github.com/hazadus/go-vinyl/internal/utils"
)

var (
	titleStyle      = lipgloss.NewStyle().MarginLeft(2)
	itemStyle       = lipgloss.NewStyle().PaddingLeft(4)
	paginationStyle = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle       = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle   = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// TrackSelectedMsg отправляется при выборе трека для воспроизведения
type TrackSelectedMsg struct {
	Index int
}

// TrackEditMsg отправляется при выборе трека для редактирования
type TrackEditMsg struct {
	Index int
}

// trackItem реализует интерфейс list.Item для трека
type trackItem struct {
	index int
	track track.Track
}

func (i trackItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.track.Artist, i.track.Title, i.track.Album)
}

// swatch рисует три тона палитры трека
func swatch(p palette.Palette) string {
	block := func(c palette.RGB) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("█")
	}
	return block(p.Darker) + block(p.Primary) + block(p.Lighter)
}

// trackItemDelegate реализует отображение элементов списка
type trackItemDelegate struct{}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	// Строка таблицы: № | Исполнитель | Название | Альбом
	str := fmt.Sprintf("%-4d %-20s %-40s %s",
		i.index+1,
		utils.TruncateString(i.track.Artist, 20),
		utils.TruncateString(i.track.Title, 40),
		utils.TruncateString(i.track.Album, 30))

	if index == m.Index() {
		// Выбранная карточка подсвечивается цветом свечения своей палитры
		glow := palette.Glow(i.track.Palette)
		selected := lipgloss.NewStyle().PaddingLeft(2).Bold(true).Foreground(lipgloss.Color(glow.Hex()))
		fmt.Fprint(w, swatch(i.track.Palette)+selected.Render("> "+strings.TrimSpace(str)))
		return
	}

	fmt.Fprint(w, swatch(i.track.Palette)+itemStyle.Render(str))
}

// Model представляет модель экрана списка треков
type Model struct {
	list     list.Model
	registry *track.Registry
	quitting bool
}

// NewModel создает новую модель списка треков
func NewModel(registry *track.Registry) *Model {
	l := list.New(buildItems(registry), trackItemDelegate{}, 0, 0)
	l.Title = "Пластинки"
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	if current := registry.CurrentIndex(); current >= 0 {
		l.Select(current)
	}

	return &Model{
		list:     l,
		registry: registry,
	}
}

func buildItems(registry *track.Registry) []list.Item {
	tracks := registry.Tracks()
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{index: i, track: t}
	}
	return items
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// RefreshData обновляет данные модели без пересоздания
func (m *Model) RefreshData() {
	m.list.SetItems(buildItems(m.registry))
}

// SelectedIndex возвращает индекс выбранного трека в реестре или -1
func (m *Model) SelectedIndex() int {
	if item, ok := m.list.SelectedItem().(trackItem); ok {
		return item.index
	}
	return -1
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4) // Оставляем место для заголовка и справки
		return m, nil

	case tea.KeyMsg:
		// Во время ввода фильтра клавиши обрабатывает список
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if index := m.SelectedIndex(); index >= 0 {
				return m, func() tea.Msg {
					return TrackSelectedMsg{Index: index}
				}
			}

		case "e":
			if index := m.SelectedIndex(); index >= 0 {
				return m, func() tea.Msg {
					return TrackEditMsg{Index: index}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	if len(m.list.Items()) == 0 {
		return titleStyle.Render("Библиотека пуста. Запустите vinyl tui <файлы или каталоги>.") + "\n"
	}

	view := m.list.View()
	extraHelp := helpStyle.Render("Enter: играть • e: редактировать • /: поиск • q: выход")
	return view + "\n" + extraHelp
}
