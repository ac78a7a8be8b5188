package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-vinyl/internal/metadata"
	"github.com/hazadus/go-vinyl/internal/track"
	"github.com/hazadus/go-vinyl/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list [files, directories, URLs...]",
		Short: "List the tracks found in the given sources",
		Long:  `Import the given files, directories, http(s) URLs, YouTube links or s3://bucket/prefix locations and print the resulting library.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.loadLibrary(ctx, args)
			if err != nil {
				return err
			}
			listTracks(cmd.OutOrStdout(), reg)
			return nil
		},
	}
}

func listTracks(w io.Writer, reg *track.Registry) {
	if reg.Len() == 0 {
		fmt.Fprintln(w, "📚 Библиотека пуста. Укажите файлы, каталоги или URL.")
		return
	}

	fmt.Fprintf(w, "📚 Найдено треков: %d\n\n", reg.Len())

	fmt.Fprintf(w, "%-4s %-30s %-30s %-20s %-12s %-10s\n",
		"№", "Исполнитель", "Название", "Альбом", "Длительность", "Размер")
	fmt.Fprintln(w, strings.Repeat("-", 112))

	extractor := metadata.NewExtractor()
	for i, t := range reg.Tracks() {
		duration, size := "N/A", utils.FormatFileSize(t.Source.Size())
		if info, err := extractor.GetFileInfo(t.Source); err == nil {
			duration = utils.FormatClock(info.Duration)
			size = utils.FormatFileSize(info.Size)
		}

		fmt.Fprintf(w, "%-4d %-30s %-30s %-20s %-12s %-10s\n",
			i+1,
			utils.TruncateString(t.Artist, 28),
			utils.TruncateString(t.Title, 28),
			utils.TruncateString(t.Album, 18),
			duration,
			size)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "💡 Используйте 'vinyl tui' или 'vinyl window' с теми же аргументами для воспроизведения")
}
