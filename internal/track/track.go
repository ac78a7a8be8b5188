// Package track содержит запись трека, источники аудио и реестр библиотеки
package track

import (
	"github.com/hazadus/go-vinyl/internal/palette"
)

// Track хранит запись о треке в библиотеке.
// После импорта запись не изменяется, допускается только полная замена через Registry.Replace.
type Track struct {
	Title   string
	Artist  string
	Album   string          // Может быть пустым
	Source  Source          // Непрозрачная ссылка на аудиоданные
	Cover   []byte          // Сырые байты обложки, nil если обложки нет
	Palette palette.Palette // Всегда заполнена, при отсутствии обложки - палитра по умолчанию
}

// HasCover сообщает, есть ли у трека обложка
func (t Track) HasCover() bool {
	return len(t.Cover) > 0
}

// DisplayName возвращает строку "Исполнитель - Название"
func (t Track) DisplayName() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}
