package transport

import "math"

const (
	// DefaultMinSpeed нижняя граница множителя скорости
	DefaultMinSpeed = 0.5
	// DefaultMaxSpeed верхняя граница множителя скорости
	DefaultMaxSpeed = 2.0
	// DefaultPitchRange максимальный сдвиг тона в полутонах в обе стороны
	DefaultPitchRange = 12
)

// Limits границы ползунков скорости и тона
type Limits struct {
	MinSpeed   float64
	MaxSpeed   float64
	PitchRange int
}

// DefaultLimits возвращает границы по умолчанию
func DefaultLimits() Limits {
	return Limits{
		MinSpeed:   DefaultMinSpeed,
		MaxSpeed:   DefaultMaxSpeed,
		PitchRange: DefaultPitchRange,
	}
}

// Controls состояние управления воспроизведением
type Controls struct {
	Speed float64 // Множитель скорости, по умолчанию 1.0
	Pitch int     // Сдвиг тона в полутонах, по умолчанию 0
}

// DefaultControls возвращает скорость 1.0 и тон 0
func DefaultControls() Controls {
	return Controls{Speed: 1.0}
}

// EffectiveRate итоговая скорость элемента: speed × 2^(pitch/12)
func (c Controls) EffectiveRate() float64 {
	return c.Speed * math.Pow(2, float64(c.Pitch)/12)
}

// clampSpeed ограничивает скорость диапазоном
func (l Limits) clampSpeed(speed float64) float64 {
	if math.IsNaN(speed) {
		return 1.0
	}
	return math.Min(math.Max(speed, l.MinSpeed), l.MaxSpeed)
}

// clampPitch ограничивает тон диапазоном
func (l Limits) clampPitch(pitch int) int {
	return min(max(pitch, -l.PitchRange), l.PitchRange)
}
