// Package palette извлекает трехтоновую палитру (основной, светлый, темный) из обложки трека
package palette

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	// Поддерживаемые форматы обложек
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/hsluv/hsluv-go"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// sampleStride - шаг выборки пикселей
	sampleStride = 10
	// alphaThreshold - пиксели с меньшей альфой (≈49%) пропускаются
	alphaThreshold = 125
	// bucketWidth - ширина корзины квантования канала
	bucketWidth = 51
	// shadeStep - сдвиг каналов для светлого и темного тона
	shadeStep = 40
	// glowLightness прибавка светлоты HSLuv для свечения
	glowLightness = 25
)

// ErrEmptyImage возвращается при попытке декодировать пустые данные
var ErrEmptyImage = errors.New("пустые данные изображения")

// RGB цвет в виде тройки каналов
type RGB struct {
	R, G, B uint8
}

// Color возвращает непрозрачный color.RGBA
func (c RGB) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Hex возвращает цвет в формате #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Palette набор из трех тонов для оформления диска
type Palette struct {
	Primary RGB
	Lighter RGB
	Darker  RGB
}

// Default возвращает нейтральную палитру по умолчанию.
// Темный тон задан отдельно и не следует правилу Derive.
func Default() Palette {
	return Palette{
		Primary: RGB{R: 42, G: 42, B: 42},
		Lighter: RGB{R: 82, G: 82, B: 82},
		Darker:  RGB{R: 26, G: 26, B: 26},
	}
}

// Derive строит палитру из основного цвета: светлый +40, темный −40 с ограничением диапазона
func Derive(primary RGB) Palette {
	return Palette{
		Primary: primary,
		Lighter: RGB{R: lighten(primary.R), G: lighten(primary.G), B: lighten(primary.B)},
		Darker:  RGB{R: darken(primary.R), G: darken(primary.G), B: darken(primary.B)},
	}
}

// Decode декодирует изображение обложки из байт
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования изображения: %w", err)
	}
	return img, nil
}

// Extract извлекает палитру из байт обложки.
// При ошибке декодирования возвращается палитра по умолчанию.
func Extract(data []byte) Palette {
	img, err := Decode(data)
	if err != nil {
		return Default()
	}
	return FromImage(img)
}

// FromImage вычисляет палитру по наиболее частому квантованному цвету
func FromImage(img image.Image) Palette {
	if img == nil {
		return Default()
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return Default()
	}

	counts := make(map[RGB]int)
	var best RGB
	bestCount := 0

	for idx := 0; idx < width*height; idx += sampleStride {
		x := bounds.Min.X + idx%width
		y := bounds.Min.Y + idx/width

		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		if c.A < alphaThreshold {
			continue
		}

		key := RGB{R: quantize(c.R), G: quantize(c.G), B: quantize(c.B)}
		counts[key]++
		// Строгое сравнение: при равенстве побеждает цвет, встреченный первым
		if counts[key] > bestCount {
			best = key
			bestCount = counts[key]
		}
	}

	if bestCount == 0 {
		return Default()
	}
	return Derive(best)
}

// quantize округляет канал до ближайшего кратного bucketWidth
func quantize(v uint8) uint8 {
	return uint8((int(v) + bucketWidth/2) / bucketWidth * bucketWidth)
}

func lighten(v uint8) uint8 {
	return uint8(min(int(v)+shadeStep, 255))
}

func darken(v uint8) uint8 {
	return uint8(max(int(v)-shadeStep, 0))
}

// Glow возвращает цвет свечения карточки: основной тон с повышенной светлотой в HSLuv
func Glow(p Palette) RGB {
	h, s, l := hsluv.HsluvFromRGB(
		float64(p.Primary.R)/255,
		float64(p.Primary.G)/255,
		float64(p.Primary.B)/255,
	)
	l = math.Min(l+glowLightness, 95)
	r, g, b := hsluv.HsluvToRGB(h, s, l)
	return RGB{R: toByte(r), G: toByte(g), B: toByte(b)}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Min(math.Max(v, 0), 1) * 0xff))
}
