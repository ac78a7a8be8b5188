// Package streaming загружает аудио по HTTP в память для импорта в библиотеку
package streaming

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/hazadus/go-vinyl/internal/importer"
	"github.com/hazadus/go-vinyl/internal/track"
)

const (
	// DefaultBufferSize размер буфера чтения
	DefaultBufferSize = 64 * 1024
	// DefaultLimit максимальный размер загружаемого файла
	DefaultLimit = 200 * 1024 * 1024
	// fallbackName имя источника, если его нельзя взять из URL
	fallbackName = "stream"
)

// ErrTooLarge возвращается, если ответ превышает лимит размера
var ErrTooLarge = errors.New("файл превышает допустимый размер")

// Reader представляет буферизованный поток HTTP ответа
type Reader struct {
	reader *bufio.Reader
	resp   *http.Response
}

func newClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       300 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// NewReader выполняет GET запрос и возвращает ридер тела ответа
func NewReader(ctx context.Context, rawURL string, bufferSize int) (*Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Accept-Encoding", "identity") // Отключаем сжатие
	req.Header.Set("User-Agent", "go-vinyl/1.0")

	resp, err := newClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}

	return &Reader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		resp:   resp,
	}, nil
}

// Read реализует интерфейс io.Reader
func (sr *Reader) Read(p []byte) (n int, err error) {
	return sr.reader.Read(p)
}

// Close закрывает соединение
func (sr *Reader) Close() error {
	return sr.resp.Body.Close()
}

// ContentType возвращает MIME-тип ответа
func (sr *Reader) ContentType() string {
	return sr.resp.Header.Get("Content-Type")
}

// ContentLength возвращает заявленный размер ответа, -1 если неизвестен
func (sr *Reader) ContentLength() int64 {
	return sr.resp.ContentLength
}

// Download результат загрузки
type Download struct {
	Source   *track.MemorySource
	MIMEType string
}

// FetchOptions параметры загрузки
type FetchOptions struct {
	Limit      int64       // Максимальный размер, 0 - DefaultLimit
	OnProgress func(int64) // Вызывается с числом прочитанных байт
}

// Fetch загружает файл по URL в память
func Fetch(ctx context.Context, rawURL string, opts FetchOptions) (*Download, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	reader, err := NewReader(ctx, rawURL, DefaultBufferSize)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	if n := reader.ContentLength(); n > limit {
		return nil, fmt.Errorf("%w: %d байт", ErrTooLarge, n)
	}

	var body io.Reader = io.LimitReader(reader, limit+1)
	if opts.OnProgress != nil {
		body = &ProgressReader{
			Reader:     body,
			Size:       reader.ContentLength(),
			OnProgress: opts.OnProgress,
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: более %d байт", ErrTooLarge, limit)
	}

	return &Download{
		Source:   track.NewMemorySource(nameFromURL(rawURL, reader.ContentType()), data),
		MIMEType: reader.ContentType(),
	}, nil
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil && n > 0 {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}

// nameFromURL возвращает последний сегмент пути URL. Если расширения в пути нет,
// оно берется из MIME-типа ответа, иначе декодер не сможет выбрать формат.
func nameFromURL(rawURL, mimeType string) string {
	name := fallbackName
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			name = base
		}
	}
	if path.Ext(name) == "" {
		name += importer.ExtensionByMIME(mimeType)
	}
	return name
}
