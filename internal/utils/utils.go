// Package utils содержит утилитарные функции, используемые в разных частях приложения
package utils

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDuration форматирует time.Duration в формат HH:MM:SS
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatClock форматирует длительность как M:SS, а для длинных треков как H:MM:SS
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatFileSize форматирует размер файла в читаемом виде
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "—"
	}
	return humanize.IBytes(uint64(size))
}

// FormatSpeed форматирует множитель скорости
func FormatSpeed(speed float64) string {
	return fmt.Sprintf("%.2fx", speed)
}

// FormatPitch форматирует сдвиг тона в полутонах со знаком
func FormatPitch(semitones int) string {
	return fmt.Sprintf("%+d st", semitones)
}

// TruncateString обрезает строку до указанной длины в символах, добавляя "..." если строка длиннее
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
