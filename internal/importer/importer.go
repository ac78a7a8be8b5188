// Package importer превращает файлы, каталоги и загруженные данные в записи библиотеки:
// проверяет формат, извлекает метаданные и обложку, вычисляет палитру
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/hazadus/go-vinyl/internal/metadata"
	"github.com/hazadus/go-vinyl/internal/palette"
	"github.com/hazadus/go-vinyl/internal/track"
)

// ErrUnsupported возвращается для файлов, которые не являются аудио
var ErrUnsupported = errors.New("неподдерживаемый формат файла")

// supportedExtensions расширения, принимаемые библиотекой
var supportedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".flac": {},
	".m4a":  {},
	".aac":  {},
	".ogg":  {},
	".opus": {},
	".weba": {},
	".oga":  {},
	".alac": {},
}

// Extensions возвращает поддерживаемые расширения
func Extensions() []string {
	out := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		out = append(out, ext)
	}
	return out
}

// Supported проверяет файл по расширению, а для неизвестного расширения - по MIME-типу
func Supported(name, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := supportedExtensions[ext]; ok {
		return true
	}

	if mimeType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "audio/")
}

// mimeExtensions расширения для аудио MIME-типов. Встроенная таблица пакета mime
// аудио не содержит, а системная есть не везде.
var mimeExtensions = map[string]string{
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/wav":    ".wav",
	"audio/wave":   ".wav",
	"audio/x-wav":  ".wav",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
	"audio/ogg":    ".ogg",
	"audio/vorbis": ".ogg",
	"audio/opus":   ".opus",
	"audio/mp4":    ".m4a",
	"audio/x-m4a":  ".m4a",
	"audio/aac":    ".aac",
	"audio/webm":   ".weba",
}

// ExtensionByMIME возвращает расширение библиотеки для MIME-типа или "", если тип неизвестен
func ExtensionByMIME(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	if ext, ok := mimeExtensions[mediaType]; ok {
		return ext
	}

	exts, _ := mime.ExtensionsByType(mediaType)
	for _, ext := range exts {
		if _, ok := supportedExtensions[strings.ToLower(ext)]; ok {
			return strings.ToLower(ext)
		}
	}
	return ""
}

// Option настраивает Importer
type Option func(*Importer)

// WithLogger задает логгер
func WithLogger(logger *log.Logger) Option {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// WithWorkers задает число одновременных извлечений метаданных
func WithWorkers(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.workers = n
		}
	}
}

// Importer создает треки из источников
type Importer struct {
	extractor *metadata.Extractor
	logger    *log.Logger
	workers   int
}

// New создает новый импортер
func New(opts ...Option) *Importer {
	im := &Importer{
		extractor: metadata.NewExtractor(),
		logger:    log.New(io.Discard),
		workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import создает трек из источника. mimeType может быть пустым.
func (im *Importer) Import(ctx context.Context, src track.Source, mimeType string) (track.Track, error) {
	if err := ctx.Err(); err != nil {
		return track.Track{}, err
	}
	if src == nil {
		return track.Track{}, fmt.Errorf("%w: пустой источник", ErrUnsupported)
	}
	if !Supported(src.Name(), mimeType) {
		return track.Track{}, fmt.Errorf("%w: %s", ErrUnsupported, src.Name())
	}

	meta := im.extractor.ExtractFromSource(src)

	pal := palette.Default()
	if len(meta.Cover) > 0 {
		pal = palette.Extract(meta.Cover)
	}

	im.logger.Debug("трек импортирован", "name", src.Name(), "title", meta.Title, "artist", meta.Artist, "cover", len(meta.Cover) > 0)

	return track.Track{
		Title:   meta.Title,
		Artist:  meta.Artist,
		Album:   meta.Album,
		Source:  src,
		Cover:   meta.Cover,
		Palette: pal,
	}, nil
}

// ImportSources импортирует источники параллельно; неподдерживаемые пропускаются.
// Порядок результата совпадает с порядком источников.
func (im *Importer) ImportSources(ctx context.Context, srcs []track.Source) ([]track.Track, error) {
	results := make([]*track.Track, len(srcs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)

	for i, src := range srcs {
		g.Go(func() error {
			t, err := im.Import(ctx, src, "")
			if errors.Is(err, ErrUnsupported) {
				im.logger.Debug("файл пропущен", "name", sourceName(src))
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = &t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ошибка импорта: %w", err)
	}

	tracks := make([]track.Track, 0, len(results))
	for _, t := range results {
		if t != nil {
			tracks = append(tracks, *t)
		}
	}
	return tracks, nil
}

// ImportPaths импортирует файлы и каталоги (рекурсивно).
// Неподдерживаемые файлы молча пропускаются, несуществующий путь - ошибка.
func (im *Importer) ImportPaths(ctx context.Context, paths []string) ([]track.Track, error) {
	var srcs []track.Source

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("файл не найден: %s: %w", path, err)
		}

		if !info.IsDir() {
			if !Supported(path, "") {
				im.logger.Debug("файл пропущен", "path", path)
				continue
			}
			src, err := track.NewFileSource(path)
			if err != nil {
				return nil, err
			}
			srcs = append(srcs, src)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !Supported(p, "") {
				return nil
			}
			src, err := track.NewFileSource(p)
			if err != nil {
				return err
			}
			srcs = append(srcs, src)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка обхода каталога %s: %w", path, err)
		}
	}

	return im.ImportSources(ctx, srcs)
}

func sourceName(src track.Source) string {
	if src == nil {
		return ""
	}
	return src.Name()
}
