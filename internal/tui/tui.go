// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-vinyl/internal/tui/app"
	"github.com/hazadus/go-vinyl/internal/turntable"
)

// App представляет основное TUI приложение
type App struct {
	deck *turntable.Turntable
	fps  int
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(deck *turntable.Turntable, fps int) *App {
	return &App{
		deck: deck,
		fps:  fps,
	}
}

// Run запускает TUI приложение и блокируется до выхода
func (tuiApp *App) Run() error {
	model := app.NewMainModel(tuiApp.deck, tuiApp.fps)

	// Мышь нужна для скретча по диску
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, err := p.Run()

	model.Close()

	return err
}
