package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/hazadus/go-vinyl/internal/config"
)

// Application хранит общее состояние для всех команд
type Application struct {
	Config     *config.Config
	Logger     *log.Logger
	configPath string
	logFile    io.Closer
}

// NewApplication создает приложение с конфигурацией по умолчанию
func NewApplication() *Application {
	return &Application{
		Config:     config.Default(),
		Logger:     log.New(io.Discard),
		configPath: config.DefaultPath,
	}
}

// Close освобождает ресурсы приложения
func (app *Application) Close() error {
	if app.logFile != nil {
		return app.logFile.Close()
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApplication()
	defer app.Close()

	if err := app.createRootCommand(ctx).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		app.Close()
		os.Exit(1)
	}
}
