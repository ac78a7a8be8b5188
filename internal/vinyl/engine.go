// Package vinyl содержит движок вращения диска: угол поворота, вращение от
// воспроизведения и "скретч" перетаскиванием с перемоткой трека.
package vinyl

import (
	"math"
	"time"
)

// DefaultRPM скорость вращения пластинки при скорости воспроизведения 1.0
const DefaultRPM = 100.0 / 3.0

// Scrubber принимает запросы перемотки от движка
type Scrubber interface {
	// Duration длительность текущего трека, 0 если неизвестна
	Duration() time.Duration
	// Scrub запрашивает перемотку; реализация может отбросить запрос
	Scrub(position time.Duration) bool
}

// Option настраивает Engine
type Option func(*Engine)

// WithRPM задает обороты в минуту при скорости 1.0
func WithRPM(rpm float64) Option {
	return func(e *Engine) {
		if rpm > 0 {
			e.degreesPerSecond = rpm * 360 / 60
		}
	}
}

// Engine единственный источник истины об угле поворота диска.
//
// Пока идет перетаскивание, угол меняет только UpdateDrag, иначе только
// OnPlaybackTick. Engine не потокобезопасен: все вызовы выполняются в одном
// UI-потоке.
type Engine struct {
	scrubber         Scrubber
	degreesPerSecond float64

	angle       float64 // Градусы, не нормализованы
	dragging    bool
	lastPointer float64 // Угол указателя в градусах, используется только при перетаскивании
}

// NewEngine создает движок вращения
func NewEngine(scrubber Scrubber, opts ...Option) *Engine {
	e := &Engine{
		scrubber:         scrubber,
		degreesPerSecond: DefaultRPM * 360 / 60,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Angle возвращает текущий угол в градусах
func (e *Engine) Angle() float64 {
	return e.angle
}

// Dragging сообщает, идет ли перетаскивание
func (e *Engine) Dragging() bool {
	return e.dragging
}

// DegreesPerSecond возвращает скорость вращения при скорости воспроизведения 1.0
func (e *Engine) DegreesPerSecond() float64 {
	return e.degreesPerSecond
}

// Reset возвращает диск в исходное положение (при загрузке нового трека)
func (e *Engine) Reset() {
	e.angle = 0
	e.dragging = false
	e.lastPointer = 0
}

// OnPlaybackTick поворачивает диск пропорционально прошедшему времени и скорости.
// Во время перетаскивания ничего не делает.
func (e *Engine) OnPlaybackTick(elapsed time.Duration, rate float64) {
	if e.dragging || elapsed <= 0 {
		return
	}
	e.angle += rate * e.degreesPerSecond * elapsed.Seconds()
}

// BeginDrag начинает перетаскивание; угол диска не меняется
func (e *Engine) BeginDrag(pointerDeg float64) {
	e.dragging = true
	e.lastPointer = pointerDeg
}

// UpdateDrag поворачивает диск на кратчайшую разницу углов указателя
// и запрашивает перемотку в соответствующую позицию трека.
// Возвращает примененную разницу в градусах.
func (e *Engine) UpdateDrag(pointerDeg float64) float64 {
	if !e.dragging {
		return 0
	}

	delta := ShortestDelta(e.lastPointer, pointerDeg)
	e.angle += delta
	e.lastPointer = pointerDeg

	if e.scrubber != nil {
		if duration := e.scrubber.Duration(); duration > 0 {
			e.scrubber.Scrub(SeekTarget(e.angle, duration))
		}
	}
	return delta
}

// EndDrag завершает перетаскивание; со следующего тика вращение продолжается от воспроизведения
func (e *Engine) EndDrag() {
	e.dragging = false
}

// Normalize приводит угол к диапазону [0, 360)
func Normalize(deg float64) float64 {
	n := math.Mod(deg, 360)
	if n < 0 {
		n += 360
	}
	// -1e-15 + 360 округляется до 360
	if n >= 360 {
		n = 0
	}
	return n
}

// ShortestDelta возвращает разницу углов from→to в диапазоне (−180, 180]
func ShortestDelta(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// SeekTarget переводит угол диска в позицию трека
func SeekTarget(angle float64, duration time.Duration) time.Duration {
	if duration <= 0 {
		return 0
	}
	return time.Duration(Normalize(angle) / 360 * float64(duration))
}

// PointerAngle переводит координаты указателя в угол относительно центра диска
func PointerAngle(x, y, centerX, centerY float64) float64 {
	return math.Atan2(y-centerY, x-centerX) * 180 / math.Pi
}
