// Package youtube загружает звуковую дорожку видео YouTube в память для импорта в библиотеку
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/hazadus/go-vinyl/internal/importer"
	"github.com/hazadus/go-vinyl/internal/streaming"
	"github.com/hazadus/go-vinyl/internal/track"
)

// ErrNoAudio возвращается, если у видео нет формата со звуком
var ErrNoAudio = errors.New("аудио формат не найден")

// Паттерны для различных форматов YouTube URL
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

var unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// videoClient часть клиента YouTube, нужная загрузчику
type videoClient interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// Downloader загружает аудио из видео YouTube
type Downloader struct {
	client videoClient
}

// New создает загрузчик с клиентом YouTube по умолчанию
func New() *Downloader {
	return &Downloader{client: &youtube.Client{}}
}

// IsURL проверяет, что аргумент - ссылка на видео YouTube
func IsURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	switch strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		_, err := ExtractVideoID(raw)
		return err == nil
	}
	return false
}

// ExtractVideoID извлекает ID видео из различных форматов YouTube URL
func ExtractVideoID(raw string) (string, error) {
	for _, re := range videoIDPatterns {
		if matches := re.FindStringSubmatch(raw); len(matches) > 1 {
			return matches[1], nil
		}
	}
	return "", fmt.Errorf("не удалось извлечь ID видео из URL: %s", raw)
}

// Fetch загружает лучшую звуковую дорожку видео в память.
// Имя источника строится как "Автор - Название", чтобы импорт взял их из имени файла.
func (d *Downloader) Fetch(ctx context.Context, rawURL string, opts streaming.FetchOptions) (*streaming.Download, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = streaming.DefaultLimit
	}

	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	video, err := d.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о видео: %w", err)
	}

	format := bestAudioFormat(video.Formats)
	if format == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAudio, videoID)
	}
	if format.ContentLength > limit {
		return nil, fmt.Errorf("%w: %d байт", streaming.ErrTooLarge, format.ContentLength)
	}

	stream, size, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения потока: %w", err)
	}
	defer stream.Close()

	var body io.Reader = io.LimitReader(stream, limit+1)
	if opts.OnProgress != nil {
		body = &streaming.ProgressReader{Reader: body, Size: size, OnProgress: opts.OnProgress}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: более %d байт", streaming.ErrTooLarge, limit)
	}

	name := sanitizeFileName(video.Title)
	if video.Author != "" {
		name = sanitizeFileName(video.Author + " - " + video.Title)
	}
	if name == "" {
		name = videoID
	}

	return &streaming.Download{
		Source:   track.NewMemorySource(name+importer.ExtensionByMIME(format.MimeType), data),
		MIMEType: format.MimeType,
	}, nil
}

// bestAudioFormat выбирает формат только со звуком с наибольшим битрейтом,
// при равном битрейте предпочитая MP4/M4A. Без таких форматов берется видео со звуком.
func bestAudioFormat(formats youtube.FormatList) *youtube.Format {
	withAudio := formats.WithAudioChannels()

	var best *youtube.Format
	for i := range withAudio {
		format := &withAudio[i]
		if !strings.HasPrefix(format.MimeType, "audio/") {
			continue
		}
		switch {
		case best == nil, format.Bitrate > best.Bitrate:
			best = format
		case format.Bitrate == best.Bitrate && isMP4(format) && !isMP4(best):
			best = format
		}
	}
	if best != nil {
		return best
	}

	if len(withAudio) > 0 {
		return &withAudio[0]
	}
	return nil
}

func isMP4(format *youtube.Format) bool {
	return strings.Contains(format.MimeType, "mp4") || strings.Contains(format.MimeType, "m4a")
}

// sanitizeFileName очищает имя файла от недопустимых символов
func sanitizeFileName(name string) string {
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)

	// Ограничиваем длину имени файла
	if len(name) > 200 {
		name = strings.ToValidUTF8(name[:200], "")
	}
	return name
}
