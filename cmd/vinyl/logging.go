package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hazadus/go-vinyl/internal/config"
)

// newLogger создает логгер по конфигурации. Если задан log_file, логи пишутся
// в файл; иначе в stderr, а при quiet отбрасываются.
func newLogger(cfg *config.Config, quiet bool) (*log.Logger, io.Closer, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer
	)

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка открытия файла логов: %w", err)
		}
		out, closer = f, f
	case quiet:
		out = io.Discard
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           cfg.Level(),
		Prefix:          "vinyl",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return logger, closer, nil
}
