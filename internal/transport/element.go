// Package transport содержит адаптер над внешним элементом воспроизведения:
// позиция, длительность, скорость, команды перемотки и управления скоростью/тоном.
package transport

import (
	"errors"
	"time"
)

// ErrRateUnavailable возвращается элементом, который не может менять скорость
var ErrRateUnavailable = errors.New("управление скоростью недоступно")

// EventKind тип уведомления от элемента воспроизведения
type EventKind int

const (
	// TimeUpdate периодическое обновление позиции
	TimeUpdate EventKind = iota
	// Ended воспроизведение трека завершено
	Ended
	// MetadataLoaded трек загружен, длительность известна
	MetadataLoaded
)

func (k EventKind) String() string {
	switch k {
	case TimeUpdate:
		return "timeupdate"
	case Ended:
		return "ended"
	case MetadataLoaded:
		return "loadedmetadata"
	default:
		return "unknown"
	}
}

// Event уведомление от элемента воспроизведения
type Event struct {
	Kind     EventKind
	Position time.Duration
	Duration time.Duration
}

// Element внешний элемент воспроизведения ("черный ящик")
type Element interface {
	Play() error
	Pause()
	Seek(position time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	Playing() bool
	// SetPlaybackRate меняет скорость воспроизведения.
	// preservesPitch=false означает, что тон меняется вместе со скоростью.
	SetPlaybackRate(rate float64, preservesPitch bool) error
	Events() <-chan Event
}
