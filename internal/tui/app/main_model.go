// Package app содержит основную логику TUI приложения
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-vinyl/internal/tui/editor"
	tuiPlayer "github.com/hazadus/go-vinyl/internal/tui/player"
	"github.com/hazadus/go-vinyl/internal/tui/tracklist"
	"github.com/hazadus/go-vinyl/internal/turntable"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// TracklistScreen - экран списка треков
	TracklistScreen ScreenType = iota
	// PlayerScreen - экран проигрывателя
	PlayerScreen
	// EditorScreen - экран редактирования
	EditorScreen
)

// MainModel представляет главную модель TUI
type MainModel struct {
	deck           *turntable.Turntable
	fps            int
	currentScreen  ScreenType
	tracklistModel *tracklist.Model
	playerModel    *tuiPlayer.Model
	editorModel    *editor.Model
	lastSize       *tea.WindowSizeMsg
}

// NewMainModel создает новую главную модель над проигрывателем
func NewMainModel(deck *turntable.Turntable, fps int) *MainModel {
	return &MainModel{
		deck:           deck,
		fps:            fps,
		currentScreen:  TracklistScreen,
		tracklistModel: tracklist.NewModel(deck.Registry()),
	}
}

// CurrentScreen возвращает активный экран
func (m *MainModel) CurrentScreen() ScreenType {
	return m.currentScreen
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	return m.tracklistModel.Init()
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Глобальные горячие клавиши
		if msg.String() == "ctrl+c" {
			m.Close()
			return m, tea.Quit
		}

	case tracklist.TrackSelectedMsg:
		m.currentScreen = PlayerScreen
		m.playerModel = tuiPlayer.NewModel(m.deck, msg.Index, m.fps)
		return m, tea.Batch(m.playerModel.Init(), m.resend())

	case tracklist.TrackEditMsg:
		m.currentScreen = EditorScreen
		m.editorModel = editor.NewModel(m.deck.Registry(), msg.Index)
		return m, tea.Batch(m.editorModel.Init(), m.resend())

	case tuiPlayer.GoBackMsg:
		m.currentScreen = TracklistScreen
		m.playerModel = nil
		m.tracklistModel.RefreshData()
		return m, nil

	case editor.GoBackMsg:
		// Таймер редактора может сработать уже после выхода из него
		if m.currentScreen != EditorScreen {
			return m, nil
		}
		m.currentScreen = TracklistScreen
		m.editorModel = nil
		m.tracklistModel.RefreshData()
		return m, nil

	case editor.TrackSavedMsg:
		// Обновляем список сразу, не дожидаясь возврата
		m.tracklistModel.RefreshData()
		return m, nil

	case tea.WindowSizeMsg:
		m.lastSize = &msg
	}

	return m, m.forward(msg)
}

// forward передает сообщение активной модели
func (m *MainModel) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.currentScreen {
	case TracklistScreen:
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)

	case PlayerScreen:
		if m.playerModel != nil {
			var updated tea.Model
			updated, cmd = m.playerModel.Update(msg)
			if playerModel, ok := updated.(*tuiPlayer.Model); ok {
				m.playerModel = playerModel
			}
		}

	case EditorScreen:
		if m.editorModel != nil {
			m.editorModel, cmd = m.editorModel.Update(msg)
		}
	}
	return cmd
}

// resend повторяет последний размер окна для только что созданного экрана
func (m *MainModel) resend() tea.Cmd {
	if m.lastSize == nil {
		return nil
	}
	size := *m.lastSize
	return func() tea.Msg { return size }
}

// View отображает интерфейс
func (m *MainModel) View() string {
	switch m.currentScreen {
	case TracklistScreen:
		return m.tracklistModel.View()

	case PlayerScreen:
		if m.playerModel != nil {
			return m.playerModel.View()
		}
		return "Ошибка: модель проигрывателя не инициализирована"

	case EditorScreen:
		if m.editorModel != nil {
			return m.editorModel.View()
		}
		return "Ошибка: модель редактора не инициализирована"

	default:
		return "Неизвестный экран"
	}
}

// Close останавливает воспроизведение перед выходом
func (m *MainModel) Close() {
	m.deck.Adapter().Pause()
}
