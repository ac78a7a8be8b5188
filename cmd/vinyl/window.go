package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-vinyl/internal/window"
)

// createWindowCommand создает команду window
func (app *Application) createWindowCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "window [files, directories, URLs...]",
		Short: "Open the player in a desktop window",
		Long:  `Open a desktop window with the spinning disc. Drag the disc to scratch, space to play or pause.`,
		RunE: func(_ *cobra.Command, args []string) error {
			reg, err := app.loadLibrary(ctx, args)
			if err != nil {
				return err
			}
			if reg.Len() == 0 {
				return errors.New("не найдено поддерживаемых треков")
			}

			deck, p := app.newTurntable(reg, app.Config.WindowSize, app.Config.DiscMargin)
			defer p.Close()

			if err := deck.LoadCurrent(); err != nil {
				app.Logger.Error("трек не загружен", "err", err)
			}

			return window.New(deck, window.WithLogger(app.Logger)).Run(app.Config.FPS)
		},
	}
}
