// Package editor содержит модель экрана редактирования метаданных трека для TUI
package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-vinyl/internal/metadata"
	"github.com/hazadus/go-vinyl/internal/track"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(15)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Margin(1, 0)
)

// TrackSavedMsg отправляется когда трек успешно сохранен
type TrackSavedMsg struct {
	Index int
}

// GoBackMsg отправляется при выходе из редактора
type GoBackMsg struct{}

// fieldType определяет тип поля для редактирования
type fieldType int

const (
	artistField fieldType = iota
	titleField
	albumField
	numFields
)

var labels = [numFields]string{"Исполнитель:", "Название:", "Альбом:"}

// Model представляет модель экрана редактирования трека
type Model struct {
	registry   *track.Registry
	index      int
	original   track.Track
	inputs     []textinput.Model
	focusIndex int
	err        string
	success    string
}

// NewModel создает новую модель редактора для трека с индексом index
func NewModel(registry *track.Registry, index int) *Model {
	original, _ := registry.Track(index)

	inputs := make([]textinput.Model, numFields)

	inputs[artistField] = textinput.New()
	inputs[artistField].Placeholder = metadata.UnknownArtist
	inputs[artistField].SetValue(original.Artist)
	inputs[artistField].Focus()
	inputs[artistField].PromptStyle = focusedStyle
	inputs[artistField].TextStyle = focusedStyle

	inputs[titleField] = textinput.New()
	inputs[titleField].Placeholder = "Введите название трека"
	inputs[titleField].SetValue(original.Title)

	inputs[albumField] = textinput.New()
	inputs[albumField].Placeholder = "Введите название альбома"
	inputs[albumField].SetValue(original.Album)

	return &Model{
		registry: registry,
		index:    index,
		original: original,
		inputs:   inputs,
	}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, func() tea.Msg {
				return GoBackMsg{}
			}

		case "ctrl+s":
			return m, m.saveTrack()

		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			if s == "enter" && m.focusIndex == len(m.inputs) {
				// Enter на кнопке Save
				return m, m.saveTrack()
			}

			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}

			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}

			return m, m.updateFocus()
		}

	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 20
		}
		return m, nil
	}

	// Обновляем активное поле ввода
	if m.focusIndex < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) updateFocus() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		if i == m.focusIndex {
			cmds[i] = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle
			continue
		}
		m.inputs[i].Blur()
		m.inputs[i].PromptStyle = blurredStyle
		m.inputs[i].TextStyle = blurredStyle
	}
	return tea.Batch(cmds...)
}

// saveTrack заменяет запись в реестре. Запись трека неизменяема,
// поэтому сохраняется копия с новыми полями.
func (m *Model) saveTrack() tea.Cmd {
	artist := strings.TrimSpace(m.inputs[artistField].Value())
	title := strings.TrimSpace(m.inputs[titleField].Value())
	album := strings.TrimSpace(m.inputs[albumField].Value())

	if title == "" {
		m.err = "Поле 'Название' не может быть пустым"
		m.success = ""
		return nil
	}
	if artist == "" {
		artist = metadata.UnknownArtist
	}

	updated := m.original
	updated.Artist = artist
	updated.Title = title
	updated.Album = album

	if err := m.registry.Replace(m.index, updated); err != nil {
		m.err = fmt.Sprintf("Ошибка обновления трека: %v", err)
		m.success = ""
		return nil
	}

	m.original = updated
	m.err = ""
	m.success = "Трек успешно сохранен!"

	index := m.index
	return tea.Batch(
		func() tea.Msg { return TrackSavedMsg{Index: index} },
		// Возвращаемся к списку треков через небольшую задержку
		tea.Tick(time.Second, func(time.Time) tea.Msg {
			return GoBackMsg{}
		}),
	)
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Редактирование трека #%d", m.index+1)))
	b.WriteString("\n\n")

	for i, input := range m.inputs {
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString(" ")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	saveButton := blurredStyle.Render("[ Сохранить ]")
	if m.focusIndex == len(m.inputs) {
		saveButton = focusedStyle.Render("[ Сохранить ]")
	}
	b.WriteString(saveButton)
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	if m.success != "" {
		b.WriteString(successStyle.Render(m.success))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Tab/Enter: следующее поле • Shift+Tab: предыдущее поле • Ctrl+S: сохранить • Esc: отмена"))

	return b.String()
}
