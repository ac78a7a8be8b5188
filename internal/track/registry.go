package track

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange возвращается при обращении к несуществующему индексу
var ErrIndexOutOfRange = errors.New("индекс трека вне диапазона")

// Registry упорядоченный список треков с индексом текущего выбора.
// Индекс трека в реестре является его идентичностью.
type Registry struct {
	tracks  []Track
	current int
}

// NewRegistry создает пустой реестр
func NewRegistry() *Registry {
	return &Registry{
		tracks:  make([]Track, 0),
		current: -1,
	}
}

// Add добавляет трек в конец и возвращает его индекс.
// Первый добавленный трек становится текущим.
func (r *Registry) Add(t Track) int {
	r.tracks = append(r.tracks, t)
	if r.current < 0 {
		r.current = 0
	}
	return len(r.tracks) - 1
}

// Replace заменяет запись целиком
func (r *Registry) Replace(index int, t Track) error {
	if index < 0 || index >= len(r.tracks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	r.tracks[index] = t
	return nil
}

// Len возвращает количество треков
func (r *Registry) Len() int {
	return len(r.tracks)
}

// Track возвращает трек по индексу
func (r *Registry) Track(index int) (Track, bool) {
	if index < 0 || index >= len(r.tracks) {
		return Track{}, false
	}
	return r.tracks[index], true
}

// Tracks возвращает копию списка треков
func (r *Registry) Tracks() []Track {
	out := make([]Track, len(r.tracks))
	copy(out, r.tracks)
	return out
}

// CurrentIndex возвращает индекс текущего трека или -1 для пустого реестра
func (r *Registry) CurrentIndex() int {
	return r.current
}

// Current возвращает текущий трек
func (r *Registry) Current() (Track, bool) {
	return r.Track(r.current)
}

// Select делает трек с указанным индексом текущим
func (r *Registry) Select(index int) error {
	if index < 0 || index >= len(r.tracks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	r.current = index
	return nil
}

// Next переходит к следующему треку с переходом через конец списка.
// Для пустого реестра ничего не делает.
func (r *Registry) Next() (Track, bool) {
	if len(r.tracks) == 0 {
		return Track{}, false
	}
	r.current = (r.current + 1) % len(r.tracks)
	return r.tracks[r.current], true
}

// Previous переходит к предыдущему треку с переходом через начало списка
func (r *Registry) Previous() (Track, bool) {
	if len(r.tracks) == 0 {
		return Track{}, false
	}
	r.current = (r.current - 1 + len(r.tracks)) % len(r.tracks)
	return r.tracks[r.current], true
}
