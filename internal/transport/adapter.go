package transport

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultDeadband минимальная разница позиций, при которой перемотка от скретча выполняется
const DefaultDeadband = 100 * time.Millisecond

// Option настраивает Adapter
type Option func(*Adapter)

// WithDeadband задает порог перемотки при скретче
func WithDeadband(d time.Duration) Option {
	return func(a *Adapter) {
		if d >= 0 {
			a.deadband = d
		}
	}
}

// WithLimits задает границы скорости и тона
func WithLimits(l Limits) Option {
	return func(a *Adapter) {
		a.limits = l
	}
}

// WithPitchPreservation задает начальное значение сохранения тона
func WithPitchPreservation(preserve bool) Option {
	return func(a *Adapter) {
		a.preservesPitch = preserve
	}
}

// WithLogger задает логгер
func WithLogger(logger *log.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Adapter тонкий фасад над элементом воспроизведения.
// Все команды "выстрелил и забыл": движок не ждет подтверждения.
type Adapter struct {
	element        Element
	deadband       time.Duration
	limits         Limits
	controls       Controls
	preservesPitch bool
	rateAvailable  bool
	logger         *log.Logger
}

// New создает адаптер над элементом
func New(element Element, opts ...Option) *Adapter {
	a := &Adapter{
		element:       element,
		deadband:      DefaultDeadband,
		limits:        DefaultLimits(),
		controls:      DefaultControls(),
		rateAvailable: true,
		logger:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CurrentTime текущая позиция воспроизведения
func (a *Adapter) CurrentTime() time.Duration {
	return a.element.Position()
}

// Duration длительность трека, 0 если неизвестна
func (a *Adapter) Duration() time.Duration {
	return a.element.Duration()
}

// IsPlaying сообщает, идет ли воспроизведение
func (a *Adapter) IsPlaying() bool {
	return a.element.Playing()
}

// Controls возвращает текущие значения скорости и тона
func (a *Adapter) Controls() Controls {
	return a.controls
}

// Limits возвращает границы скорости и тона
func (a *Adapter) Limits() Limits {
	return a.limits
}

// RateAvailable сообщает, работает ли управление скоростью
func (a *Adapter) RateAvailable() bool {
	return a.rateAvailable
}

// EffectiveRate фактическая скорость элемента.
// Если управление скоростью недоступно, элемент играет с родной скоростью 1.0.
func (a *Adapter) EffectiveRate() float64 {
	if !a.rateAvailable {
		return 1.0
	}
	return a.controls.EffectiveRate()
}

// Events уведомления элемента
func (a *Adapter) Events() <-chan Event {
	return a.element.Events()
}

// Play запускает воспроизведение
func (a *Adapter) Play() error {
	if err := a.element.Play(); err != nil {
		return fmt.Errorf("ошибка запуска воспроизведения: %w", err)
	}
	return nil
}

// Pause приостанавливает воспроизведение
func (a *Adapter) Pause() {
	a.element.Pause()
}

// Toggle переключает паузу
func (a *Adapter) Toggle() error {
	if a.element.Playing() {
		a.element.Pause()
		return nil
	}
	return a.Play()
}

// SeekTo выполняет явную перемотку с ограничением по длительности трека
func (a *Adapter) SeekTo(position time.Duration) error {
	position = max(position, 0)
	if duration := a.element.Duration(); duration > 0 {
		position = min(position, duration)
	}
	if err := a.element.Seek(position); err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	return nil
}

// Scrub перемотка от скретча. Запрос отбрасывается, если отличие от
// текущей позиции не превышает порог. Возвращает true, если элемент был вызван.
func (a *Adapter) Scrub(position time.Duration) bool {
	diff := position - a.element.Position()
	if diff < 0 {
		diff = -diff
	}
	if diff <= a.deadband {
		return false
	}
	if err := a.SeekTo(position); err != nil {
		a.logger.Debug("перемотка отклонена", "position", position, "err", err)
	}
	return true
}

// SetSpeed задает множитель скорости в допустимом диапазоне
func (a *Adapter) SetSpeed(speed float64) {
	a.controls.Speed = a.limits.clampSpeed(speed)
	a.applyRate()
}

// SetPitch задает сдвиг тона в полутонах в допустимом диапазоне
func (a *Adapter) SetPitch(semitones int) {
	a.controls.Pitch = a.limits.clampPitch(semitones)
	a.applyRate()
}

// SetRate передает элементу произвольную скорость
func (a *Adapter) SetRate(rate float64) {
	if !a.rateAvailable {
		return
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		a.logger.Warn("некорректная скорость проигнорирована", "rate", rate)
		return
	}
	if err := a.element.SetPlaybackRate(rate, a.preservesPitch); err != nil {
		a.rateAvailable = false
		a.logger.Warn("управление скоростью и тоном отключено", "err", err)
	}
}

// ConfigurePitchPreservation включает или выключает сохранение тона при смене скорости
func (a *Adapter) ConfigurePitchPreservation(preserve bool) {
	a.preservesPitch = preserve
	a.applyRate()
}

// PreservesPitch возвращает текущую настройку сохранения тона
func (a *Adapter) PreservesPitch() bool {
	return a.preservesPitch
}

// Reapply повторно передает элементу текущую скорость (после загрузки нового трека)
func (a *Adapter) Reapply() {
	a.applyRate()
}

func (a *Adapter) applyRate() {
	a.SetRate(a.controls.EffectiveRate())
}
