package transport

import (
	"errors"
	"math"
	"testing"
	"time"
)

// fakeElement мок элемента воспроизведения
type fakeElement struct {
	position time.Duration
	duration time.Duration
	playing  bool

	seeks    []time.Duration
	rates    []float64
	preserve []bool
	rateErr  error
	playErr  error
	events   chan Event
}

func newFakeElement(duration time.Duration) *fakeElement {
	return &fakeElement{
		duration: duration,
		events:   make(chan Event, 4),
	}
}

func (f *fakeElement) Play() error {
	if f.playErr != nil {
		return f.playErr
	}
	f.playing = true
	return nil
}

func (f *fakeElement) Pause() { f.playing = false }

func (f *fakeElement) Seek(position time.Duration) error {
	f.seeks = append(f.seeks, position)
	f.position = position
	return nil
}

func (f *fakeElement) Position() time.Duration { return f.position }
func (f *fakeElement) Duration() time.Duration { return f.duration }
func (f *fakeElement) Playing() bool           { return f.playing }
func (f *fakeElement) Events() <-chan Event    { return f.events }

func (f *fakeElement) SetPlaybackRate(rate float64, preservesPitch bool) error {
	if f.rateErr != nil {
		return f.rateErr
	}
	f.rates = append(f.rates, rate)
	f.preserve = append(f.preserve, preservesPitch)
	return nil
}

func TestEffectiveRate(t *testing.T) {
	tests := []struct {
		speed    float64
		pitch    int
		expected float64
	}{
		{1.0, 0, 1.0},
		{1.5, 12, 3.0},
		{1.0, -12, 0.5},
		{2.0, 0, 2.0},
		{1.0, 7, math.Pow(2, 7.0/12)},
	}

	for _, test := range tests {
		c := Controls{Speed: test.speed, Pitch: test.pitch}
		if got := c.EffectiveRate(); math.Abs(got-test.expected) > 1e-9 {
			t.Errorf("EffectiveRate(speed=%v, pitch=%d) = %v, ожидалось %v", test.speed, test.pitch, got, test.expected)
		}
	}
}

func TestSetSpeedAndPitch(t *testing.T) {
	el := newFakeElement(time.Minute)
	a := New(el)

	a.SetSpeed(1.5)
	a.SetPitch(12)

	if math.Abs(a.EffectiveRate()-3.0) > 1e-9 {
		t.Errorf("Ожидалась скорость 3.0, получено %v", a.EffectiveRate())
	}
	if len(el.rates) != 2 || math.Abs(el.rates[1]-3.0) > 1e-9 {
		t.Errorf("Элемент должен получить скорость 3.0, получено %v", el.rates)
	}
	if el.preserve[1] {
		t.Error("По умолчанию тон не сохраняется")
	}
}

func TestControlsClamped(t *testing.T) {
	a := New(newFakeElement(time.Minute))

	a.SetSpeed(5)
	if a.Controls().Speed != DefaultMaxSpeed {
		t.Errorf("Скорость должна ограничиваться %v, получено %v", DefaultMaxSpeed, a.Controls().Speed)
	}
	a.SetSpeed(0.1)
	if a.Controls().Speed != DefaultMinSpeed {
		t.Errorf("Скорость должна ограничиваться %v, получено %v", DefaultMinSpeed, a.Controls().Speed)
	}
	a.SetPitch(30)
	if a.Controls().Pitch != 12 {
		t.Errorf("Тон должен ограничиваться 12, получено %d", a.Controls().Pitch)
	}
	a.SetPitch(-30)
	if a.Controls().Pitch != -12 {
		t.Errorf("Тон должен ограничиваться -12, получено %d", a.Controls().Pitch)
	}
}

func TestCustomLimits(t *testing.T) {
	a := New(newFakeElement(time.Minute), WithLimits(Limits{MinSpeed: 0.25, MaxSpeed: 4, PitchRange: 24}))
	if l := a.Limits(); l.MaxSpeed != 4 || l.PitchRange != 24 {
		t.Errorf("Неожиданные границы: %+v", l)
	}

	a.SetSpeed(4)
	a.SetPitch(-24)
	if c := a.Controls(); c.Speed != 4 || c.Pitch != -24 {
		t.Errorf("Ожидались скорость 4 и тон -24, получено %+v", c)
	}
}

func TestScrubDeadband(t *testing.T) {
	el := newFakeElement(200 * time.Second)
	el.position = 10 * time.Second
	a := New(el)

	if a.Scrub(10*time.Second + 50*time.Millisecond) {
		t.Error("Перемотка в пределах порога должна отбрасываться")
	}
	if a.Scrub(10*time.Second - 100*time.Millisecond) {
		t.Error("Перемотка ровно на порог должна отбрасываться")
	}
	if len(el.seeks) != 0 {
		t.Errorf("Элемент не должен вызываться, получено %v", el.seeks)
	}

	if !a.Scrub(12 * time.Second) {
		t.Error("Перемотка за пределами порога должна выполняться")
	}
	if len(el.seeks) != 1 || el.seeks[0] != 12*time.Second {
		t.Errorf("Ожидалась перемотка на 12s, получено %v", el.seeks)
	}
}

func TestCustomDeadband(t *testing.T) {
	el := newFakeElement(time.Minute)
	a := New(el, WithDeadband(time.Second))

	if a.Scrub(900 * time.Millisecond) {
		t.Error("Перемотка в пределах порога 1s должна отбрасываться")
	}
	if !a.Scrub(2 * time.Second) {
		t.Error("Перемотка за пределами порога должна выполняться")
	}
}

func TestSeekToClamps(t *testing.T) {
	el := newFakeElement(30 * time.Second)
	a := New(el)

	if err := a.SeekTo(-time.Second); err != nil {
		t.Fatalf("Ошибка перемотки: %v", err)
	}
	if err := a.SeekTo(time.Minute); err != nil {
		t.Fatalf("Ошибка перемотки: %v", err)
	}

	if el.seeks[0] != 0 || el.seeks[1] != 30*time.Second {
		t.Errorf("Перемотка должна ограничиваться длительностью, получено %v", el.seeks)
	}
}

func TestRateUnavailableDegrades(t *testing.T) {
	el := newFakeElement(time.Minute)
	el.rateErr = ErrRateUnavailable
	a := New(el)

	a.SetSpeed(1.5)
	a.SetPitch(12)

	if a.RateAvailable() {
		t.Error("Управление скоростью должно стать недоступным")
	}
	if a.EffectiveRate() != 1.0 {
		t.Errorf("При недоступном управлении ожидалась родная скорость 1.0, получено %v", a.EffectiveRate())
	}
	if a.Controls().Speed != 1.5 {
		t.Errorf("Значение ползунка должно сохраняться, получено %v", a.Controls().Speed)
	}
}

func TestSetRateRejectsInvalid(t *testing.T) {
	el := newFakeElement(time.Minute)
	a := New(el)

	a.SetRate(0)
	a.SetRate(-1)
	a.SetRate(math.NaN())

	if len(el.rates) != 0 {
		t.Errorf("Некорректные скорости не должны передаваться элементу, получено %v", el.rates)
	}
	if !a.RateAvailable() {
		t.Error("Некорректная скорость не должна отключать управление")
	}
}

func TestConfigurePitchPreservation(t *testing.T) {
	el := newFakeElement(time.Minute)
	a := New(el)

	a.ConfigurePitchPreservation(true)

	if !a.PreservesPitch() {
		t.Error("Ожидалось включенное сохранение тона")
	}
	if len(el.preserve) != 1 || !el.preserve[0] {
		t.Errorf("Элемент должен получить preservesPitch=true, получено %v", el.preserve)
	}
}

func TestToggle(t *testing.T) {
	el := newFakeElement(time.Minute)
	a := New(el)

	if err := a.Toggle(); err != nil {
		t.Fatalf("Ошибка переключения: %v", err)
	}
	if !a.IsPlaying() {
		t.Error("После первого переключения ожидалось воспроизведение")
	}
	if err := a.Toggle(); err != nil {
		t.Fatalf("Ошибка переключения: %v", err)
	}
	if a.IsPlaying() {
		t.Error("После второго переключения ожидалась пауза")
	}

	el.playErr = errors.New("нет трека")
	if err := a.Play(); !errors.Is(err, el.playErr) {
		t.Errorf("Ожидалась обернутая ошибка элемента, получено: %v", err)
	}
}

func TestEventKindString(t *testing.T) {
	if Ended.String() != "ended" || TimeUpdate.String() != "timeupdate" || MetadataLoaded.String() != "loadedmetadata" {
		t.Error("Неверные имена событий")
	}
}
