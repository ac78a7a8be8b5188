// Package player содержит элемент воспроизведения на базе beep: загрузка трека,
// пауза, перемотка, скорость через ресемплер и события прогресса.
package player

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/hazadus/go-vinyl/internal/audio"
	"github.com/hazadus/go-vinyl/internal/track"
	"github.com/hazadus/go-vinyl/internal/transport"
)

const (
	// DefaultSampleRate частота дискретизации вывода
	DefaultSampleRate = 44100
	// resampleQuality качество ресемплера beep
	resampleQuality = 4
	// progressInterval период событий TimeUpdate
	progressInterval = 250 * time.Millisecond
	// eventBuffer размер буфера канала событий
	eventBuffer = 16
)

// ErrNotLoaded возвращается командами, вызванными до загрузки трека
var ErrNotLoaded = errors.New("трек не загружен")

var (
	speakerOnce sync.Once
	speakerErr  error
)

// initSpeaker инициализирует вывод звука один раз на процесс
func initSpeaker(sampleRate beep.SampleRate) error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	return speakerErr
}

// output вывод звука. В тестах подменяется, чтобы не требовать устройства.
type output struct {
	init   func(beep.SampleRate) error
	play   func(...beep.Streamer)
	clear  func()
	lock   func()
	unlock func()
}

func speakerOutput() output {
	return output{
		init:   initSpeaker,
		play:   speaker.Play,
		clear:  speaker.Clear,
		lock:   speaker.Lock,
		unlock: speaker.Unlock,
	}
}

// Option настраивает Player
type Option func(*Player)

// WithSampleRate задает частоту дискретизации вывода
func WithSampleRate(rate int) Option {
	return func(p *Player) {
		if rate > 0 {
			p.outputRate = beep.SampleRate(rate)
		}
	}
}

// WithLogger задает логгер
func WithLogger(logger *log.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Player управляет воспроизведением одного трека и реализует transport.Element
type Player struct {
	events chan transport.Event

	mutex      sync.RWMutex
	out        output
	outputRate beep.SampleRate
	logger     *log.Logger

	// Текущий трек
	currentTrack *track.Track
	streamer     beep.StreamSeekCloser
	format       beep.Format
	resampler    *beep.Resampler
	ctrl         *beep.Ctrl
	isPaused     bool
	finished     bool // Поток доигран и снят с вывода
	rate         float64
	pitchWarned  bool
	outputFailed bool // Вывод звука не удалось инициализировать

	stopMonitor chan struct{}
	closed      bool
}

// New создает новый плеер. Вывод звука инициализируется при первой загрузке трека.
func New(opts ...Option) *Player {
	p := &Player{
		events:     make(chan transport.Event, eventBuffer),
		out:        speakerOutput(),
		outputRate: DefaultSampleRate,
		logger:     log.New(io.Discard),
		rate:       1.0,
		isPaused:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Events возвращает канал событий воспроизведения
func (p *Player) Events() <-chan transport.Event {
	return p.events
}

// Load загружает трек в паузе. Предыдущий трек останавливается.
func (p *Player) Load(t track.Track) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return errors.New("плеер закрыт")
	}

	p.stopInternal()
	p.currentTrack = &t

	if t.Source == nil {
		return fmt.Errorf("у трека %q отсутствует источник", t.Title)
	}

	// Проверяем формат до инициализации вывода
	if !audio.CanDecode(t.Source.Ext()) {
		return fmt.Errorf("%w: %s", audio.ErrUnsupportedFormat, t.Source.Ext())
	}

	rc, err := t.Source.Open()
	if err != nil {
		return fmt.Errorf("ошибка открытия источника: %w", err)
	}

	streamer, format, err := audio.Decode(t.Source.Ext(), rc)
	if err != nil {
		return err
	}

	if err := p.out.init(p.outputRate); err != nil {
		p.outputFailed = true
		streamer.Close()
		return fmt.Errorf("ошибка инициализации динамиков: %w", err)
	}

	p.streamer = streamer
	p.format = format
	p.isPaused = true
	p.queue(true)

	p.stopMonitor = make(chan struct{})
	go p.monitorProgress(p.stopMonitor)

	p.emit(transport.Event{
		Kind:     transport.MetadataLoaded,
		Duration: format.SampleRate.D(streamer.Len()),
	})
	return nil
}

// queue ставит трек на вывод с новым ресемплером (должен вызываться под мьютексом)
func (p *Player) queue(paused bool) {
	p.resampler = beep.ResampleRatio(resampleQuality, p.ratio(), p.streamer)
	p.ctrl = &beep.Ctrl{Streamer: p.resampler, Paused: paused}
	p.finished = false

	done := p.ctrl
	p.out.play(beep.Seq(p.ctrl, beep.Callback(func() {
		p.onFinished(done)
	})))
}

// Play снимает паузу. Доигранный трек снова ставится на вывод,
// с начала, если позиция осталась в конце.
func (p *Player) Play() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl == nil {
		return ErrNotLoaded
	}

	if p.finished {
		p.out.lock()
		var err error
		if p.streamer.Position() >= p.streamer.Len() {
			err = p.streamer.Seek(0)
		}
		p.out.unlock()
		if err != nil {
			return fmt.Errorf("ошибка перемотки в начало: %w", err)
		}
		p.queue(false)
		p.isPaused = false
		return nil
	}

	p.out.lock()
	p.ctrl.Paused = false
	p.out.unlock()
	p.isPaused = false
	return nil
}

// Pause ставит воспроизведение на паузу
func (p *Player) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl == nil {
		return
	}
	p.out.lock()
	p.ctrl.Paused = true
	p.out.unlock()
	p.isPaused = true
}

// Seek перематывает трек в указанную позицию
func (p *Player) Seek(position time.Duration) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.streamer == nil {
		return ErrNotLoaded
	}

	sample := p.format.SampleRate.N(position)
	sample = min(max(sample, 0), p.streamer.Len()-1)
	sample = max(sample, 0)

	p.out.lock()
	err := p.streamer.Seek(sample)
	p.out.unlock()
	if err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	return nil
}

// Position возвращает текущую позицию
func (p *Player) Position() time.Duration {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if p.streamer == nil {
		return 0
	}
	p.out.lock()
	pos := p.streamer.Position()
	p.out.unlock()
	return p.format.SampleRate.D(pos)
}

// Duration возвращает длительность трека
func (p *Player) Duration() time.Duration {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// Playing возвращает true, если трек воспроизводится
func (p *Player) Playing() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.ctrl != nil && !p.isPaused
}

// SetPlaybackRate меняет скорость через ресемплер: тон меняется вместе со скоростью.
// Сохранение тона beep не поддерживает, запрос только логируется.
func (p *Player) SetPlaybackRate(rate float64, preservesPitch bool) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("некорректная скорость: %v", rate)
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.outputFailed {
		return transport.ErrRateUnavailable
	}

	if preservesPitch && !p.pitchWarned {
		p.logger.Warn("сохранение тона не поддерживается, тон будет меняться вместе со скоростью")
		p.pitchWarned = true
	}

	p.rate = rate
	if p.resampler != nil {
		p.out.lock()
		p.resampler.SetRatio(p.ratio())
		p.out.unlock()
	}
	return nil
}

// CurrentTrack возвращает информацию о загруженном треке
func (p *Player) CurrentTrack() *track.Track {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.currentTrack
}

// Stop останавливает воспроизведение и выгружает трек
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopInternal()
}

// Close закрывает плеер и освобождает ресурсы
func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return nil
	}
	p.stopInternal()
	p.closed = true
	close(p.events)
	return nil
}

// ratio коэффициент ресемплера: скорость с поправкой на частоту вывода
func (p *Player) ratio() float64 {
	return resampleRatio(p.rate, p.format.SampleRate, p.outputRate)
}

func resampleRatio(rate float64, source, output beep.SampleRate) float64 {
	if source <= 0 || output <= 0 {
		return rate
	}
	return rate * float64(source) / float64(output)
}

// stopInternal внутренний метод остановки (должен вызываться под мьютексом)
func (p *Player) stopInternal() {
	if p.stopMonitor != nil {
		close(p.stopMonitor)
		p.stopMonitor = nil
	}

	if p.ctrl != nil {
		p.out.clear()
		p.ctrl = nil
	}

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}

	p.resampler = nil
	p.currentTrack = nil
	p.isPaused = true
	p.finished = false
}

// onFinished вызывается из потока beep по окончании трека
func (p *Player) onFinished(ctrl *beep.Ctrl) {
	go func() {
		p.mutex.Lock()
		defer p.mutex.Unlock()

		// Трек мог быть заменен до завершения
		if p.ctrl != ctrl || p.closed {
			return
		}
		p.isPaused = true
		p.finished = true
		p.emit(transport.Event{
			Kind:     transport.Ended,
			Position: p.format.SampleRate.D(p.streamer.Len()),
			Duration: p.format.SampleRate.D(p.streamer.Len()),
		})
	}()
}

// monitorProgress отправляет события TimeUpdate, пока трек загружен
func (p *Player) monitorProgress(stop <-chan struct{}) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.mutex.RLock()
			if p.streamer == nil || p.closed {
				p.mutex.RUnlock()
				return
			}
			if p.isPaused {
				p.mutex.RUnlock()
				continue
			}

			p.out.lock()
			current := p.format.SampleRate.D(p.streamer.Position())
			total := p.format.SampleRate.D(p.streamer.Len())
			p.out.unlock()

			p.emit(transport.Event{
				Kind:     transport.TimeUpdate,
				Position: current,
				Duration: total,
			})
			p.mutex.RUnlock()
		}
	}
}

// emit отправляет событие без блокировки; при переполненном канале событие пропускается
func (p *Player) emit(ev transport.Event) {
	if p.closed {
		return
	}
	select {
	case p.events <- ev:
	default:
	}
}
