// Package render рисует диск пластинки: тело с бороздками или текстурой,
// этикетку с обложкой и отверстие шпинделя.
//
// Тело диска вращается вместе с углом, этикетка остается неподвижной,
// чтобы обложка и надписи на ней всегда читались.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/hazadus/go-vinyl/internal/palette"
)

const (
	// DefaultGrooves количество бороздок на диске без текстуры
	DefaultGrooves = 12
	// DefaultMargin отступ от края поверхности до диска в пикселях
	DefaultMargin = 10

	// Доли радиуса диска
	labelFraction       = 0.38
	innerGrooveFraction = 0.38
	outerGrooveFraction = 1.0
	holeFraction        = 0.2 // Доля радиуса этикетки

	highlightAlpha = 0.15
	grooveAlpha    = 0.35
	sheenAlpha     = 0.18
	glowSteps      = 6
)

var holeColor = color.RGBA{R: 18, G: 18, B: 18, A: 255}

// Options параметры отрисовки
type Options struct {
	Margin  float64 // Отступ от края поверхности
	Grooves int     // Количество бороздок без текстуры
	Texture *Image  // Текстура диска, nil - плоский диск
	Glow    bool    // Свечение вокруг диска (карточка под курсором)
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		Margin:  DefaultMargin,
		Grooves: DefaultGrooves,
	}
}

// Renderer рисует диск с фиксированными параметрами
type Renderer struct {
	Options Options
}

// NewRenderer создает рендерер
func NewRenderer(opts Options) *Renderer {
	return &Renderer{Options: opts}
}

// Render рисует кадр на поверхность
func (r *Renderer) Render(dst *image.RGBA, angle float64, pal palette.Palette, cover *Image) {
	Render(dst, angle, pal, cover, r.Options)
}

// Radius вычисляет радиус диска для поверхности
func Radius(bounds image.Rectangle, margin float64) float64 {
	return math.Min(float64(bounds.Dx()), float64(bounds.Dy()))/2 - margin
}

// Render рисует диск, повернутый на angle градусов.
// Никогда не блокируется: неготовые обложка и текстура заменяются цветами палитры.
func Render(dst *image.RGBA, angle float64, pal palette.Palette, cover *Image, opts Options) {
	dc := gg.NewContextForRGBA(dst)
	bounds := dst.Bounds()
	cx := float64(bounds.Min.X) + float64(bounds.Dx())/2
	cy := float64(bounds.Min.Y) + float64(bounds.Dy())/2
	radius := Radius(bounds, opts.Margin)

	// 1. Очистка
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()

	if radius <= 0 {
		return
	}

	if opts.Glow && opts.Margin > 0 {
		drawGlow(dc, cx, cy, radius, opts.Margin, palette.Glow(pal))
	}

	// 2-3. Вращающиеся элементы
	dc.Push()
	dc.RotateAbout(gg.Radians(angle), cx, cy)
	if !drawTexturedDisc(dc, cx, cy, radius, pal, opts.Texture) {
		drawFlatDisc(dc, cx, cy, radius, pal, opts.Grooves)
	}
	dc.Pop()

	// 4-5. Этикетка не вращается
	labelRadius := radius * labelFraction
	if !drawCoverLabel(dc, cx, cy, labelRadius, cover) {
		drawGradientLabel(dc, cx, cy, labelRadius, pal)
	}

	// 6. Отверстие шпинделя
	holeRadius := labelRadius * holeFraction
	dc.DrawCircle(cx, cy, holeRadius)
	dc.SetColor(holeColor)
	dc.Fill()

	dc.SetRGBA(0, 0, 0, 0.5)
	dc.SetLineWidth(1)
	dc.DrawCircle(cx, cy, holeRadius)
	dc.Stroke()
}

func drawGlow(dc *gg.Context, cx, cy, radius, margin float64, glow palette.RGB) {
	for i := glowSteps; i >= 1; i-- {
		r := radius + margin*float64(i)/glowSteps
		alpha := 0.35 * (1 - float64(i-1)/glowSteps)
		dc.DrawCircle(cx, cy, r)
		dc.SetRGBA255(int(glow.R), int(glow.G), int(glow.B), int(alpha*255))
		dc.Fill()
	}
}

func drawTexturedDisc(dc *gg.Context, cx, cy, radius float64, pal palette.Palette, texture *Image) bool {
	size := int(math.Ceil(radius * 2))
	tinted, ok := texture.tintedTo(size, pal.Primary)
	if !ok {
		return false
	}

	dc.DrawCircle(cx, cy, radius)
	dc.Clip()
	dc.DrawImageAnchored(tinted, int(math.Round(cx)), int(math.Round(cy)), 0.5, 0.5)
	dc.ResetClip()

	// Блик светлым тоном поверх текстуры
	dc.DrawCircle(cx, cy, radius)
	setColorAlpha(dc, pal.Lighter, highlightAlpha)
	dc.Fill()
	return true
}

func drawFlatDisc(dc *gg.Context, cx, cy, radius float64, pal palette.Palette, grooves int) {
	dc.DrawCircle(cx, cy, radius)
	dc.SetColor(pal.Darker.Color())
	dc.Fill()

	// Бороздки равномерно от внутренней до внешней границы
	dc.SetLineWidth(math.Max(radius/150, 0.5))
	setColorAlpha(dc, pal.Primary, grooveAlpha)
	inner := radius * innerGrooveFraction
	outer := radius * outerGrooveFraction
	for i := 0; i < grooves; i++ {
		r := outer
		if grooves > 1 {
			r = inner + (outer-inner)*float64(i)/float64(grooves-1)
		}
		dc.NewSubPath()
		dc.DrawCircle(cx, cy, r)
		dc.Stroke()
	}

	// Пара бликов, по которым видно вращение
	sheenRadius := (inner + outer) / 2
	dc.SetLineWidth((outer - inner) * 0.9)
	setColorAlpha(dc, pal.Lighter, sheenAlpha)
	for _, start := range []float64{-60, 120} {
		dc.NewSubPath()
		dc.DrawArc(cx, cy, sheenRadius, gg.Radians(start), gg.Radians(start+30))
		dc.Stroke()
	}
}

func drawCoverLabel(dc *gg.Context, cx, cy, labelRadius float64, cover *Image) bool {
	size := int(math.Ceil(labelRadius * 2))
	scaled, ok := cover.scaledTo(size)
	if !ok {
		return false
	}

	dc.DrawCircle(cx, cy, labelRadius)
	dc.Clip()
	dc.DrawImageAnchored(scaled, int(math.Round(cx)), int(math.Round(cy)), 0.5, 0.5)
	dc.ResetClip()
	return true
}

func drawGradientLabel(dc *gg.Context, cx, cy, labelRadius float64, pal palette.Palette) {
	gradient := gg.NewRadialGradient(cx, cy, 0, cx, cy, labelRadius)
	gradient.AddColorStop(0, pal.Lighter.Color())
	gradient.AddColorStop(0.55, pal.Primary.Color())
	gradient.AddColorStop(1, pal.Darker.Color())

	dc.DrawCircle(cx, cy, labelRadius)
	dc.SetFillStyle(gradient)
	dc.Fill()
}

func setColorAlpha(dc *gg.Context, c palette.RGB, alpha float64) {
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(math.Round(alpha*255)))
}

func colorRGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: a}
}
