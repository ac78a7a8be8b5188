package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-vinyl/internal/palette"
	"github.com/hazadus/go-vinyl/internal/track"
)

// createPaletteCommand создает команду palette
func (app *Application) createPaletteCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "palette [files, directories, URLs...]",
		Short: "Print the disc palette derived from each track's cover art",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.loadLibrary(ctx, args)
			if err != nil {
				return err
			}
			printPalettes(cmd.OutOrStdout(), reg)
			return nil
		},
	}
}

func printPalettes(w io.Writer, reg *track.Registry) {
	if reg.Len() == 0 {
		fmt.Fprintln(w, "📚 Библиотека пуста. Укажите файлы, каталоги или URL.")
		return
	}

	for i, t := range reg.Tracks() {
		source := "обложка"
		if !t.HasCover() {
			source = "по умолчанию"
		}
		p := t.Palette
		fmt.Fprintf(w, "%d. %s (%s)\n", i+1, t.DisplayName(), source)
		fmt.Fprintf(w, "   %s primary %s  lighter %s  darker %s  glow %s\n",
			swatch(p), p.Primary.Hex(), p.Lighter.Hex(), p.Darker.Hex(), palette.Glow(p).Hex())
	}
}

func swatch(p palette.Palette) string {
	var s string
	for _, c := range []palette.RGB{p.Darker, p.Primary, p.Lighter, palette.Glow(p)} {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("██")
	}
	return s
}
