package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-vinyl/internal/config"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vinyl",
		Short: "A vinyl record player for local audio files",
		Long: `A vinyl record player for local audio files: a spinning disc tinted by the
album art, scratching with the mouse, playback speed and pitch controls.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Для TUI логи не должны попадать в терминал
			return app.loadConfig(cmd.Name() == "tui")
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", config.DefaultPath, "path to the YAML config file")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createListCommand(ctx))
	rootCmd.AddCommand(app.createPaletteCommand(ctx))
	rootCmd.AddCommand(app.createRenderCommand(ctx))
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createTUICommand(ctx))
	rootCmd.AddCommand(app.createWindowCommand(ctx))

	return rootCmd
}

// loadConfig загружает конфигурацию и настраивает логгер
func (app *Application) loadConfig(quiet bool) error {
	cfg, err := config.LoadConfig(app.configPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	app.Config = cfg

	logger, closer, err := newLogger(cfg, quiet)
	if err != nil {
		return err
	}
	app.Logger = logger
	app.logFile = closer
	return nil
}
