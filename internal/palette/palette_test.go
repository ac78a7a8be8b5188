package palette

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Ошибка кодирования PNG: %v", err)
	}
	return buf.Bytes()
}

func TestDefault(t *testing.T) {
	p := Default()
	expected := Palette{
		Primary: RGB{42, 42, 42},
		Lighter: RGB{82, 82, 82},
		Darker:  RGB{26, 26, 26},
	}
	if p != expected {
		t.Errorf("Ожидалась палитра %+v, получено: %+v", expected, p)
	}
}

func TestDeriveClamp(t *testing.T) {
	tests := []struct {
		primary RGB
		lighter RGB
		darker  RGB
	}{
		{RGB{0, 0, 0}, RGB{40, 40, 40}, RGB{0, 0, 0}},
		{RGB{255, 255, 255}, RGB{255, 255, 255}, RGB{215, 215, 215}},
		{RGB{204, 51, 20}, RGB{244, 91, 60}, RGB{164, 11, 0}},
		{RGB{230, 39, 100}, RGB{255, 79, 140}, RGB{190, 0, 60}},
	}

	for _, test := range tests {
		p := Derive(test.primary)
		if p.Lighter != test.lighter {
			t.Errorf("Derive(%v).Lighter = %v, ожидалось %v", test.primary, p.Lighter, test.lighter)
		}
		if p.Darker != test.darker {
			t.Errorf("Derive(%v).Darker = %v, ожидалось %v", test.primary, p.Darker, test.darker)
		}
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		in       uint8
		expected uint8
	}{
		{0, 0},
		{25, 0},
		{26, 51},
		{76, 51},
		{77, 102},
		{200, 204},
		{254, 255},
		{255, 255},
	}

	for _, test := range tests {
		if got := quantize(test.in); got != test.expected {
			t.Errorf("quantize(%d) = %d, ожидалось %d", test.in, got, test.expected)
		}
	}
}

func TestFromImageSolidColor(t *testing.T) {
	img := solidImage(40, 40, color.NRGBA{R: 200, G: 30, B: 30, A: 255})

	p := FromImage(img)

	if p.Primary != (RGB{204, 51, 51}) {
		t.Errorf("Ожидался основной цвет (204,51,51), получено: %v", p.Primary)
	}
	if p.Lighter != (RGB{244, 91, 91}) {
		t.Errorf("Ожидался светлый цвет (244,91,91), получено: %v", p.Lighter)
	}
	if p.Darker != (RGB{164, 11, 11}) {
		t.Errorf("Ожидался темный цвет (164,11,11), получено: %v", p.Darker)
	}
}

func TestFromImageMostFrequentWins(t *testing.T) {
	// Верхняя четверть синяя, остальное зеленое
	img := solidImage(20, 20, color.NRGBA{G: 255, A: 255})
	for y := 0; y < 5; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.NRGBA{B: 255, A: 255})
		}
	}

	p := FromImage(img)
	if p.Primary != (RGB{0, 255, 0}) {
		t.Errorf("Ожидался зеленый основной цвет, получено: %v", p.Primary)
	}
}

func TestFromImageSkipsTransparent(t *testing.T) {
	// Полупрозрачный красный фон и непрозрачная синяя полоса в первой строке
	img := solidImage(10, 10, color.NRGBA{R: 255, A: 100})
	for x := 0; x < 10; x++ {
		img.Set(x, 0, color.NRGBA{B: 255, A: 255})
	}

	p := FromImage(img)
	if p.Primary != (RGB{0, 0, 255}) {
		t.Errorf("Прозрачные пиксели должны пропускаться, получено: %v", p.Primary)
	}
}

func TestFromImageFullyTransparent(t *testing.T) {
	img := solidImage(30, 30, color.NRGBA{R: 255, G: 255, B: 255, A: 10})

	if p := FromImage(img); p != Default() {
		t.Errorf("Для прозрачного изображения ожидалась палитра по умолчанию, получено: %+v", p)
	}
}

func TestFromImageDeterministic(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 37, 23))
	for y := 0; y < 23; y++ {
		for x := 0; x < 37; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: uint8(x * y), A: 255})
		}
	}

	first := FromImage(img)
	for i := 0; i < 5; i++ {
		if got := FromImage(img); got != first {
			t.Fatalf("Палитра должна быть детерминированной: %+v != %+v", got, first)
		}
	}
}

func TestExtract(t *testing.T) {
	data := encodePNG(t, solidImage(16, 16, color.NRGBA{R: 10, G: 120, B: 240, A: 255}))

	p := Extract(data)
	if p.Primary != (RGB{0, 102, 255}) {
		t.Errorf("Ожидался основной цвет (0,102,255), получено: %v", p.Primary)
	}
}

func TestExtractFallback(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"garbage", []byte{0x00, 0x01, 0x02, 0xFF}},
	}

	for _, test := range tests {
		if p := Extract(test.data); p != Default() {
			t.Errorf("%s: ожидалась палитра по умолчанию, получено: %+v", test.name, p)
		}
	}
}

func TestHex(t *testing.T) {
	if got := (RGB{42, 255, 0}).Hex(); got != "#2aff00" {
		t.Errorf("Ожидалось #2aff00, получено: %s", got)
	}
}

func TestGlowIsLighter(t *testing.T) {
	p := Derive(RGB{R: 102, G: 51, B: 153})
	glow := Glow(p)

	sum := func(c RGB) int { return int(c.R) + int(c.G) + int(c.B) }
	if sum(glow) <= sum(p.Primary) {
		t.Errorf("Свечение %v должно быть светлее основного цвета %v", glow, p.Primary)
	}
	if Glow(p) != glow {
		t.Error("Цвет свечения должен быть детерминированным")
	}
}
