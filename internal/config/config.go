// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// DefaultPath путь к файлу конфигурации по умолчанию
const DefaultPath = "~/.vinyl.yaml"

// Config структура для хранения конфигурации приложения
type Config struct {
	// Воспроизведение
	OutputSampleRate int     `yaml:"output_sample_rate"`
	RPM              float64 `yaml:"rpm"`
	DeadbandSeconds  float64 `yaml:"deadband_seconds"`
	MinSpeed         float64 `yaml:"min_speed"`
	MaxSpeed         float64 `yaml:"max_speed"`
	PitchRange       int     `yaml:"pitch_range"`
	PreservesPitch   bool    `yaml:"preserves_pitch"`
	AutoAdvance      bool    `yaml:"auto_advance"`

	// Отрисовка
	FPS         int     `yaml:"fps"`
	Grooves     int     `yaml:"grooves"`
	DiscMargin  float64 `yaml:"disc_margin"`
	WindowSize  int     `yaml:"window_size"`
	TexturePath string  `yaml:"texture_path"`

	// Импорт
	ImportWorkers int   `yaml:"import_workers"`
	HTTPMaxBytes  int64 `yaml:"http_max_bytes"`

	// Логирование
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// S3
	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		OutputSampleRate: 44100,
		RPM:              100.0 / 3,
		DeadbandSeconds:  0.1,
		MinSpeed:         0.5,
		MaxSpeed:         2.0,
		PitchRange:       12,
		AutoAdvance:      true,
		FPS:              30,
		Grooves:          12,
		DiscMargin:       10,
		WindowSize:       600,
		ImportWorkers:    4,
		HTTPMaxBytes:     200 * 1024 * 1024,
		LogLevel:         "info",
		AwsRegion:        "us-east-1",
	}
}

// LoadConfig загружает конфигурацию из указанного файла.
// Отсутствующий файл не является ошибкой: возвращаются значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := expandHome(filePath, home)

	config := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}

	// Ключи, которых нет в файле, сохраняют значения по умолчанию
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}

	config.TexturePath = expandHome(config.TexturePath, home)
	config.LogFile = expandHome(config.LogFile, home)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var errs []error

	if c.OutputSampleRate <= 0 {
		errs = append(errs, fmt.Errorf("output_sample_rate должен быть положительным: %d", c.OutputSampleRate))
	}
	if c.RPM <= 0 {
		errs = append(errs, fmt.Errorf("rpm должен быть положительным: %v", c.RPM))
	}
	if c.DeadbandSeconds < 0 {
		errs = append(errs, fmt.Errorf("deadband_seconds не может быть отрицательным: %v", c.DeadbandSeconds))
	}
	if c.MinSpeed <= 0 || c.MaxSpeed < c.MinSpeed {
		errs = append(errs, fmt.Errorf("некорректный диапазон скорости: [%v, %v]", c.MinSpeed, c.MaxSpeed))
	}
	if c.PitchRange < 0 {
		errs = append(errs, fmt.Errorf("pitch_range не может быть отрицательным: %d", c.PitchRange))
	}
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps должен быть в диапазоне 1..240: %d", c.FPS))
	}
	if c.Grooves < 0 {
		errs = append(errs, fmt.Errorf("grooves не может быть отрицательным: %d", c.Grooves))
	}
	if c.DiscMargin < 0 {
		errs = append(errs, fmt.Errorf("disc_margin не может быть отрицательным: %v", c.DiscMargin))
	}
	if c.WindowSize <= 0 {
		errs = append(errs, fmt.Errorf("window_size должен быть положительным: %d", c.WindowSize))
	}
	if c.ImportWorkers <= 0 {
		errs = append(errs, fmt.Errorf("import_workers должен быть положительным: %d", c.ImportWorkers))
	}
	if c.HTTPMaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("http_max_bytes должен быть положительным: %d", c.HTTPMaxBytes))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("некорректный log_level: %q", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("некорректная конфигурация: %w", errors.Join(errs...))
	}
	return nil
}

// Deadband возвращает порог отбрасывания перемоток
func (c *Config) Deadband() time.Duration {
	return time.Duration(c.DeadbandSeconds * float64(time.Second))
}

// FrameInterval возвращает интервал между кадрами
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Level возвращает уровень логирования
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// HasS3 сообщает, настроен ли доступ к S3
func (c *Config) HasS3() bool {
	return c.AwsBucketName != "" || c.AwsEndpoint != ""
}

// expandHome раскрывает тильду в начале пути
func expandHome(path, home string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		return home + path[1:]
	}
	return path
}
