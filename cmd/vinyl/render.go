package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-vinyl/internal/render"
	"github.com/hazadus/go-vinyl/internal/track"
)

// thumbnailSize сторона миниатюры по умолчанию
const thumbnailSize = 300

// createRenderCommand создает команду render
func (app *Application) createRenderCommand(ctx context.Context) *cobra.Command {
	var (
		out   string
		size  int
		angle float64
		glow  bool
	)

	cmd := &cobra.Command{
		Use:   "render [file or URL]",
		Short: "Render the disc of a track to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 {
				return fmt.Errorf("некорректный размер: %d", size)
			}

			reg, err := app.loadLibrary(ctx, args)
			if err != nil {
				return err
			}
			t, ok := reg.Current()
			if !ok {
				return errors.New("не найдено поддерживаемых треков")
			}

			img, err := app.renderThumbnail(ctx, t, size, angle, glow)
			if err != nil {
				return err
			}
			if err := writePNG(out, img); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "💿 %s → %s (%dx%d)\n", t.DisplayName(), out, size, size)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "vinyl.png", "output PNG file")
	cmd.Flags().IntVar(&size, "size", thumbnailSize, "image side in pixels")
	cmd.Flags().Float64Var(&angle, "angle", 0, "disc rotation in degrees")
	cmd.Flags().BoolVar(&glow, "glow", false, "draw the hover glow around the disc")

	return cmd
}

// renderThumbnail рисует диск, дождавшись декодирования обложки и текстуры
func (app *Application) renderThumbnail(ctx context.Context, t track.Track, size int, angle float64, glow bool) (*image.RGBA, error) {
	opts := app.renderOptions(app.Config.DiscMargin)
	opts.Glow = glow

	if opts.Texture != nil {
		if _, err := opts.Texture.Wait(ctx); err != nil {
			app.Logger.Warn("текстура не загружена, рисуем плоский диск", "path", app.Config.TexturePath, "err", err)
			opts.Texture = nil
		}
	}

	var cover *render.Image
	if t.HasCover() {
		cover = render.LoadImage(t.Cover)
		if _, err := cover.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			app.Logger.Warn("обложка не декодирована, рисуем градиент", "title", t.Title, "err", err)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	render.Render(img, angle, t.Palette, cover, opts)
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("ошибка записи PNG: %w", err)
	}
	return f.Close()
}
