// Package audio выбирает декодер beep по расширению файла
package audio

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat возвращается для форматов, которые beep не декодирует
var ErrUnsupportedFormat = errors.New("формат не поддерживается декодером")

type decodeFunc func(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".mp3": func(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(rc)
	},
	".wav": func(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(rc)
	},
	".flac": func(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(rc)
	},
	".ogg": func(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return vorbis.Decode(rc)
	},
	".oga": func(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return vorbis.Decode(rc)
	},
}

// CanDecode сообщает, есть ли декодер для расширения
func CanDecode(ext string) bool {
	_, ok := decoders[strings.ToLower(ext)]
	return ok
}

// Decode декодирует поток по расширению. Владение rc переходит к стримеру;
// при ошибке rc закрывается.
func Decode(ext string, rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	decode, ok := decoders[strings.ToLower(ext)]
	if !ok {
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	streamer, format, err := decode(rc)
	if err != nil {
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("ошибка декодирования %s: %w", ext, err)
	}
	return streamer, format, nil
}

// Duration возвращает длительность декодированного потока
func Duration(ext string, rc io.ReadSeekCloser) (time.Duration, error) {
	streamer, format, err := Decode(ext, rc)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}
