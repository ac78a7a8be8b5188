package track

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Source непрозрачная ссылка на декодируемые аудиоданные
type Source interface {
	// ID стабильный идентификатор источника
	ID() uuid.UUID
	// Name имя файла (без каталога)
	Name() string
	// Ext расширение в нижнем регистре, с точкой
	Ext() string
	// Size размер данных в байтах, 0 если неизвестен
	Size() int64
	// Open открывает данные для чтения с начала
	Open() (io.ReadSeekCloser, error)
}

// FileSource источник, читающий локальный файл при каждом открытии
type FileSource struct {
	id   uuid.UUID
	path string
	size int64
}

// NewFileSource создает источник для локального файла
func NewFileSource(path string) (*FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s является каталогом", path)
	}
	return &FileSource{
		id:   uuid.New(),
		path: path,
		size: info.Size(),
	}, nil
}

func (s *FileSource) ID() uuid.UUID { return s.id }
func (s *FileSource) Name() string  { return filepath.Base(s.path) }
func (s *FileSource) Ext() string   { return strings.ToLower(filepath.Ext(s.path)) }
func (s *FileSource) Size() int64   { return s.size }

// Path возвращает путь к файлу
func (s *FileSource) Path() string { return s.path }

// Open открывает файл
func (s *FileSource) Open() (io.ReadSeekCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	return f, nil
}

// MemorySource источник с данными в памяти (загруженными по HTTP или из S3)
type MemorySource struct {
	id   uuid.UUID
	name string
	data []byte
}

// NewMemorySource создает источник из байт
func NewMemorySource(name string, data []byte) *MemorySource {
	return &MemorySource{
		id:   uuid.New(),
		name: name,
		data: data,
	}
}

func (s *MemorySource) ID() uuid.UUID { return s.id }
func (s *MemorySource) Name() string  { return s.name }
func (s *MemorySource) Ext() string   { return strings.ToLower(filepath.Ext(s.name)) }
func (s *MemorySource) Size() int64   { return int64(len(s.data)) }

// Open возвращает независимый ридер поверх данных
func (s *MemorySource) Open() (io.ReadSeekCloser, error) {
	return nopCloser{bytes.NewReader(s.data)}, nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
