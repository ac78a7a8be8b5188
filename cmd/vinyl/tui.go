package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-vinyl/internal/tui"
)

// tuiMargin отступ диска в TUI: поверхность в пикселях терминала совсем маленькая
const tuiMargin = 1

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [files, directories, URLs...]",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch interactive terminal user interface: a track library and a spinning disc you can scratch with the mouse.`,
		RunE: func(_ *cobra.Command, args []string) error {
			reg, err := app.loadLibrary(ctx, args)
			if err != nil {
				return err
			}

			// Размер поверхности подгоняется под терминал на экране проигрывателя
			deck, p := app.newTurntable(reg, app.Config.WindowSize, tuiMargin)
			defer p.Close()

			return tui.NewApp(deck, app.Config.FPS).Run()
		},
	}
}
