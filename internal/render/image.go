package render

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/hazadus/go-vinyl/internal/palette"
)

// Image асинхронно декодируемое изображение (обложка или текстура диска).
// Рендер не ждет декодирования: пока изображение не готово, рисуется запасной вариант.
type Image struct {
	done chan struct{}
	img  image.Image
	err  error

	mu     sync.Mutex
	scaled map[int]*image.RGBA
	tinted map[tintKey]*image.RGBA
}

type tintKey struct {
	size int
	tint palette.RGB
}

func newImage() *Image {
	return &Image{
		done:   make(chan struct{}),
		scaled: make(map[int]*image.RGBA),
		tinted: make(map[tintKey]*image.RGBA),
	}
}

// LoadImage запускает декодирование байт в фоне
func LoadImage(data []byte) *Image {
	im := newImage()
	go func() {
		defer close(im.done)
		im.img, im.err = palette.Decode(data)
	}()
	return im
}

// LoadImageFile запускает чтение и декодирование файла в фоне
func LoadImageFile(path string) *Image {
	im := newImage()
	go func() {
		defer close(im.done)
		data, err := os.ReadFile(path)
		if err != nil {
			im.err = fmt.Errorf("ошибка чтения изображения: %w", err)
			return
		}
		im.img, im.err = palette.Decode(data)
	}()
	return im
}

// ResolvedImage оборачивает уже декодированное изображение
func ResolvedImage(img image.Image) *Image {
	im := newImage()
	im.img = img
	if img == nil {
		im.err = palette.ErrEmptyImage
	}
	close(im.done)
	return im
}

// Ready возвращает изображение без ожидания; false, если оно еще не готово или не загрузилось
func (im *Image) Ready() (image.Image, bool) {
	if im == nil {
		return nil, false
	}
	select {
	case <-im.done:
		return im.img, im.err == nil
	default:
		return nil, false
	}
}

// Err возвращает ошибку загрузки, если декодирование уже завершилось
func (im *Image) Err() error {
	if im == nil {
		return nil
	}
	select {
	case <-im.done:
		return im.err
	default:
		return nil
	}
}

// Wait ожидает окончания декодирования
func (im *Image) Wait(ctx context.Context) (image.Image, error) {
	if im == nil {
		return nil, palette.ErrEmptyImage
	}
	select {
	case <-im.done:
		return im.img, im.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// scaledTo возвращает копию изображения в квадрате size×size (с кешем).
// Неквадратная обложка обрезается по центру до короткой стороны, пропорции сохраняются.
func (im *Image) scaledTo(size int) (*image.RGBA, bool) {
	src, ok := im.Ready()
	if !ok || size <= 0 {
		return nil, false
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	if cached, ok := im.scaled[size]; ok {
		return cached, true
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, centerSquare(src.Bounds()), draw.Src, nil)
	im.scaled[size] = dst
	return dst, true
}

// centerSquare возвращает центральный квадрат прямоугольника со стороной, равной короткой стороне
func centerSquare(r image.Rectangle) image.Rectangle {
	side := min(r.Dx(), r.Dy())
	x0 := r.Min.X + (r.Dx()-side)/2
	y0 := r.Min.Y + (r.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// tintedTo возвращает текстуру, умноженную на цвет (режим multiply), с кешем
func (im *Image) tintedTo(size int, tint palette.RGB) (*image.RGBA, bool) {
	base, ok := im.scaledTo(size)
	if !ok {
		return nil, false
	}

	key := tintKey{size: size, tint: tint}
	im.mu.Lock()
	defer im.mu.Unlock()

	if cached, ok := im.tinted[key]; ok {
		return cached, true
	}

	t, _ := colorful.MakeColor(tint.Color())
	dst := image.NewRGBA(base.Bounds())
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			px := base.RGBAAt(x, y)
			if px.A == 0 {
				continue
			}
			// Каналы RGBA премультиплицированы, умножение на цвет сохраняет это свойство
			c := colorful.Color{
				R: float64(px.R) / 255 * t.R,
				G: float64(px.G) / 255 * t.G,
				B: float64(px.B) / 255 * t.B,
			}
			r, g, b := c.Clamped().RGB255()
			dst.SetRGBA(x, y, colorRGBA(r, g, b, px.A))
		}
	}
	im.tinted[key] = dst
	return dst, true
}
