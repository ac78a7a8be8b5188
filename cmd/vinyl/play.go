package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hazadus/go-vinyl/internal/turntable"
	"github.com/hazadus/go-vinyl/internal/utils"
)

// consoleSurface сторона поверхности консольного плеера: кадр не выводится,
// но движок вращения продолжает работать
const consoleSurface = 32

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "play [files, directories, URLs...]",
		Short: "Play tracks in the console",
		Long:  `Play the given tracks in the console with single-key controls and no disc view.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.loadLibrary(ctx, args)
			if err != nil {
				return err
			}
			if reg.Len() == 0 {
				return errors.New("не найдено поддерживаемых треков")
			}

			deck, p := app.newTurntable(reg, consoleSurface, 0)
			defer p.Close()

			return app.playConsole(ctx, cmd.OutOrStdout(), deck)
		},
	}
}

func (app *Application) playConsole(ctx context.Context, w io.Writer, deck *turntable.Turntable) error {
	if err := deck.LoadCurrent(); err != nil {
		app.Logger.Error("трек не загружен", "err", err)
	}
	if err := deck.TogglePlay(); err != nil {
		app.Logger.Error("воспроизведение не запущено", "err", err)
	}

	fmt.Fprintf(w, "🎮 Управление:\n")
	fmt.Fprintf(w, "   [Пробел] - пауза/воспроизведение\n")
	fmt.Fprintf(w, "   [n/p или →/←] - следующий/предыдущий трек\n")
	fmt.Fprintf(w, "   [↑/↓] - скорость, [+/-] - тон, [0] - сброс\n")
	fmt.Fprintf(w, "   [q или Ctrl+C] - выход\n\n")

	// Включаем raw режим для чтения одиночных клавиш
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("ошибка переключения терминала: %w", err)
		}
		defer term.Restore(fd, state)
	}

	keys := make(chan string)
	go readKeys(os.Stdin, keys)

	ticker := time.NewTicker(app.Config.FrameInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprint(w, "\r\n⏹️  Воспроизведение остановлено\r\n")
			return nil

		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			quit, err := handleConsoleKey(deck, key)
			if err != nil {
				app.Logger.Warn("команда не выполнена", "err", err)
			}
			if quit {
				deck.Adapter().Pause()
				fmt.Fprint(w, "\r\n⏹️  Воспроизведение остановлено пользователем\r\n")
				return nil
			}

		case now := <-ticker.C:
			if err := deck.DrainEvents(); err != nil {
				app.Logger.Warn("ошибка обработки события", "err", err)
			}
			deck.Frame(now)
			fmt.Fprint(w, "\r\033[K"+statusLine(deck.Status()))
		}
	}
}

// readKeys читает нажатия из терминала; одно чтение - одна клавиша или escape-последовательность
func readKeys(r io.Reader, keys chan<- string) {
	defer close(keys)
	buf := make([]byte, 8)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			keys <- string(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// handleConsoleKey выполняет команду для клавиши и сообщает, нужно ли выйти
func handleConsoleKey(deck *turntable.Turntable, key string) (bool, error) {
	switch key {
	case "q", "Q", "\x03", "\x1b":
		return true, nil
	case " ", "\r", "\n":
		return false, deck.TogglePlay()
	case "n", "\x1b[C":
		return false, deck.Next()
	case "p", "\x1b[D":
		return false, deck.Previous()
	case "\x1b[A":
		deck.NudgeSpeed(turntable.SpeedStep)
	case "\x1b[B":
		deck.NudgeSpeed(-turntable.SpeedStep)
	case "+", "=":
		deck.NudgePitch(1)
	case "-":
		deck.NudgePitch(-1)
	case "0":
		deck.SetSpeed(1)
		deck.SetPitch(0)
	}
	return false, nil
}

// statusLine строка прогресса консольного плеера
func statusLine(s turntable.Status) string {
	icon := "⏸️"
	if s.Playing {
		icon = "▶️"
	}
	rate := "n/a"
	if s.RateAvailable {
		rate = utils.FormatSpeed(s.EffectiveRate)
	}
	return fmt.Sprintf("%s  %d/%d %s | %s / %s | %s | %s | %3.0f°",
		icon,
		s.Index+1, s.Count,
		utils.TruncateString(s.Track.DisplayName(), 40),
		utils.FormatClock(s.Position),
		utils.FormatClock(s.Duration),
		rate,
		utils.FormatPitch(s.Controls.Pitch),
		s.Angle,
	)
}
