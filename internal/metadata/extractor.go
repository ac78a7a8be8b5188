// Package metadata предоставляет функционал для извлечения метаданных и обложек из аудио файлов
package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/hazadus/go-vinyl/internal/audio"
	"github.com/hazadus/go-vinyl/internal/track"
)

// UnknownArtist исполнитель по умолчанию
const UnknownArtist = "Unknown Artist"

// TrackMetadata хранит метаданные трека
type TrackMetadata struct {
	Artist string
	Title  string
	Album  string
	Cover  []byte // Байты встроенной обложки, nil если ее нет
}

// FileInfo содержит информацию о файле
type FileInfo struct {
	Size     int64
	Duration time.Duration
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает метаданные из io.ReadSeeker.
// Пустые поля тегов дополняются данными из имени файла.
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackMetadata {
	fallback := e.getDefaultMetadata(source)

	// Сбрасываем reader в начало
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return fallback
	}

	metadata, err := tag.ReadFrom(reader)
	if err != nil {
		return fallback
	}

	result := TrackMetadata{
		Artist: strings.TrimSpace(metadata.Artist()),
		Title:  strings.TrimSpace(metadata.Title()),
		Album:  strings.TrimSpace(metadata.Album()),
	}
	if picture := metadata.Picture(); picture != nil && len(picture.Data) > 0 {
		result.Cover = picture.Data
	}

	if result.Title == "" {
		result.Title = fallback.Title
	}
	if result.Artist == "" {
		result.Artist = fallback.Artist
	}
	return result
}

// ExtractFromSource извлекает метаданные из источника трека
func (e *Extractor) ExtractFromSource(src track.Source) TrackMetadata {
	rc, err := src.Open()
	if err != nil {
		return e.getDefaultMetadata(src.Name())
	}
	defer rc.Close()

	return e.ExtractFromReader(rc, src.Name())
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		return e.getDefaultMetadata(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// GetDuration получает длительность трека через декодер его формата
func (e *Extractor) GetDuration(src track.Source) (time.Duration, error) {
	rc, err := src.Open()
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия источника: %w", err)
	}

	// Decode закрывает rc при ошибке, стример закрывается внутри Duration
	duration, err := audio.Duration(src.Ext(), rc)
	if err != nil {
		return 0, fmt.Errorf("ошибка получения длительности: %w", err)
	}
	return duration, nil
}

// GetFileInfo получает информацию об источнике (размер и длительность)
func (e *Extractor) GetFileInfo(src track.Source) (*FileInfo, error) {
	duration, err := e.GetDuration(src)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Size:     src.Size(),
		Duration: duration,
	}, nil
}

// getDefaultMetadata возвращает метаданные по умолчанию на основе имени файла
func (e *Extractor) getDefaultMetadata(source string) TrackMetadata {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	// Пытаемся разобрать имя файла в формате "Artist - Title"
	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return TrackMetadata{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	// Если не удалось разобрать, используем имя файла как название
	return TrackMetadata{
		Artist: UnknownArtist,
		Title:  nameWithoutExt,
	}
}
