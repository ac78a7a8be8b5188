package main

import (
	"github.com/hazadus/go-vinyl/internal/player"
	"github.com/hazadus/go-vinyl/internal/render"
	"github.com/hazadus/go-vinyl/internal/track"
	"github.com/hazadus/go-vinyl/internal/transport"
	"github.com/hazadus/go-vinyl/internal/turntable"
)

// renderOptions собирает параметры отрисовки из конфигурации
func (app *Application) renderOptions(margin float64) render.Options {
	opts := render.DefaultOptions()
	opts.Margin = margin
	opts.Grooves = app.Config.Grooves
	if app.Config.TexturePath != "" {
		opts.Texture = render.LoadImageFile(app.Config.TexturePath)
	}
	return opts
}

// newTurntable создает проигрыватель со звуком над реестром.
// Вызывающий закрывает возвращенный плеер.
func (app *Application) newTurntable(reg *track.Registry, size int, margin float64) (*turntable.Turntable, *player.Player) {
	cfg := app.Config

	p := player.New(
		player.WithSampleRate(cfg.OutputSampleRate),
		player.WithLogger(app.Logger),
	)

	deck := turntable.New(reg, p,
		turntable.WithSize(size, size),
		turntable.WithRenderOptions(app.renderOptions(margin)),
		turntable.WithRPM(cfg.RPM),
		turntable.WithAutoAdvance(cfg.AutoAdvance),
		turntable.WithLogger(app.Logger),
		turntable.WithTransportOptions(
			transport.WithDeadband(cfg.Deadband()),
			transport.WithLimits(transport.Limits{
				MinSpeed:   cfg.MinSpeed,
				MaxSpeed:   cfg.MaxSpeed,
				PitchRange: cfg.PitchRange,
			}),
			transport.WithPitchPreservation(cfg.PreservesPitch),
		),
	)
	return deck, p
}
