// Package turntable связывает реестр, транспорт, движок вращения и рендер
// в один проигрыватель, которым управляет цикл отрисовки фронтенда.
//
// Все методы вызываются из одного потока UI: Turntable не защищен мьютексом.
package turntable

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/hazadus/go-vinyl/internal/palette"
	"github.com/hazadus/go-vinyl/internal/render"
	"github.com/hazadus/go-vinyl/internal/track"
	"github.com/hazadus/go-vinyl/internal/transport"
	"github.com/hazadus/go-vinyl/internal/vinyl"
)

const (
	// DefaultSize сторона поверхности отрисовки по умолчанию
	DefaultSize = 600
	// maxFrameElapsed ограничение шага времени между кадрами
	maxFrameElapsed = 250 * time.Millisecond
	// SpeedStep шаг изменения скорости с клавиатуры
	SpeedStep = 0.05
)

// Deck элемент воспроизведения, умеющий загружать треки
type Deck interface {
	transport.Element
	Load(track.Track) error
}

// Option настраивает Turntable
type Option func(*Turntable)

// WithSize задает размер поверхности в пикселях
func WithSize(width, height int) Option {
	return func(t *Turntable) {
		if width > 0 && height > 0 {
			t.width, t.height = width, height
		}
	}
}

// WithRenderOptions задает параметры рендера
func WithRenderOptions(opts render.Options) Option {
	return func(t *Turntable) {
		t.renderOpts = opts
	}
}

// WithRPM задает скорость вращения диска
func WithRPM(rpm float64) Option {
	return func(t *Turntable) {
		t.engineOpts = append(t.engineOpts, vinyl.WithRPM(rpm))
	}
}

// WithTransportOptions передает параметры адаптеру транспорта
func WithTransportOptions(opts ...transport.Option) Option {
	return func(t *Turntable) {
		t.transportOpts = append(t.transportOpts, opts...)
	}
}

// WithAutoAdvance включает переход к следующему треку по окончании текущего
func WithAutoAdvance(enabled bool) Option {
	return func(t *Turntable) {
		t.autoAdvance = enabled
	}
}

// WithLogger задает логгер
func WithLogger(logger *log.Logger) Option {
	return func(t *Turntable) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Status снимок состояния для отображения во фронтенде
type Status struct {
	Track         track.Track
	Index         int
	Count         int
	Position      time.Duration
	Duration      time.Duration
	Playing       bool
	Dragging      bool
	Angle         float64
	Controls      transport.Controls
	EffectiveRate float64
	RateAvailable bool
	LoadErr       error
}

// Turntable граф компонентов проигрывателя
type Turntable struct {
	registry *track.Registry
	deck     Deck
	adapter  *transport.Adapter
	engine   *vinyl.Engine
	renderer *render.Renderer
	surface  *image.RGBA
	logger   *log.Logger

	width, height int
	renderOpts    render.Options
	engineOpts    []vinyl.Option
	transportOpts []transport.Option
	autoAdvance   bool

	covers    map[uuid.UUID]*render.Image
	lastFrame time.Time
	loadErr   error

	// Последняя позиция указателя, еще не переданная движку
	pendingPointer float64
	hasPending     bool
}

// New создает проигрыватель над реестром и деком. Трек в дек не загружается до LoadCurrent.
func New(reg *track.Registry, deck Deck, opts ...Option) *Turntable {
	t := &Turntable{
		registry:   reg,
		deck:       deck,
		logger:     log.New(io.Discard),
		width:      DefaultSize,
		height:     DefaultSize,
		renderOpts: render.DefaultOptions(),
		covers:     make(map[uuid.UUID]*render.Image),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.transportOpts = append(t.transportOpts, transport.WithLogger(t.logger))
	t.adapter = transport.New(deck, t.transportOpts...)
	t.engine = vinyl.NewEngine(t.adapter, t.engineOpts...)
	t.renderer = render.NewRenderer(t.renderOpts)
	t.surface = image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	return t
}

// Adapter возвращает адаптер транспорта
func (t *Turntable) Adapter() *transport.Adapter {
	return t.adapter
}

// Engine возвращает движок вращения
func (t *Turntable) Engine() *vinyl.Engine {
	return t.engine
}

// Registry возвращает реестр треков
func (t *Turntable) Registry() *track.Registry {
	return t.registry
}

// Size возвращает размер поверхности
func (t *Turntable) Size() (int, int) {
	return t.width, t.height
}

// Resize меняет размер поверхности
func (t *Turntable) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == t.width && height == t.height) {
		return
	}
	t.width, t.height = width, height
	t.surface = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Frame вычисляет и рисует один кадр. Сначала обновляется угол
// (скретч или шаг воспроизведения), затем выполняется отрисовка.
func (t *Turntable) Frame(now time.Time) *image.RGBA {
	var elapsed time.Duration
	if !t.lastFrame.IsZero() {
		elapsed = min(max(now.Sub(t.lastFrame), 0), maxFrameElapsed)
	}
	t.lastFrame = now

	switch {
	case t.engine.Dragging():
		t.flushPointer()
	case t.adapter.IsPlaying():
		t.engine.OnPlaybackTick(elapsed, t.adapter.EffectiveRate())
	}

	pal, cover := t.currentLook()
	t.renderer.Render(t.surface, t.engine.Angle(), pal, cover)
	return t.surface
}

// PointerDown начинает скретч. Координаты в пикселях поверхности.
func (t *Turntable) PointerDown(x, y float64) {
	t.hasPending = false
	t.engine.BeginDrag(t.pointerAngle(x, y))
}

// PointerMove запоминает позицию указателя; движок получит ее в следующем кадре
func (t *Turntable) PointerMove(x, y float64) {
	if !t.engine.Dragging() {
		return
	}
	t.pendingPointer = t.pointerAngle(x, y)
	t.hasPending = true
}

// PointerUp завершает скретч (отпускание кнопки или уход указателя с поверхности)
func (t *Turntable) PointerUp() {
	if !t.engine.Dragging() {
		return
	}
	t.flushPointer()
	t.engine.EndDrag()
}

func (t *Turntable) flushPointer() {
	if !t.hasPending {
		return
	}
	t.hasPending = false
	t.engine.UpdateDrag(t.pendingPointer)
}

func (t *Turntable) pointerAngle(x, y float64) float64 {
	return vinyl.PointerAngle(x, y, float64(t.width)/2, float64(t.height)/2)
}

// LoadCurrent загружает текущий трек реестра в дек
func (t *Turntable) LoadCurrent() error {
	return t.load(false)
}

// Select выбирает трек по индексу
func (t *Turntable) Select(index int) error {
	wasPlaying := t.adapter.IsPlaying()
	if err := t.registry.Select(index); err != nil {
		return err
	}
	return t.load(wasPlaying)
}

// Next переходит к следующему треку; для пустого реестра ничего не делает
func (t *Turntable) Next() error {
	wasPlaying := t.adapter.IsPlaying()
	if _, ok := t.registry.Next(); !ok {
		return nil
	}
	return t.load(wasPlaying)
}

// Previous переходит к предыдущему треку; для пустого реестра ничего не делает
func (t *Turntable) Previous() error {
	wasPlaying := t.adapter.IsPlaying()
	if _, ok := t.registry.Previous(); !ok {
		return nil
	}
	return t.load(wasPlaying)
}

func (t *Turntable) load(play bool) error {
	tr, ok := t.registry.Current()
	if !ok {
		return nil
	}

	t.engine.Reset()
	t.hasPending = false

	err := t.deck.Load(tr)
	t.discardStaleEvents()
	if err != nil {
		t.loadErr = err
		t.logger.Error("не удалось загрузить трек", "title", tr.Title, "err", err)
		return fmt.Errorf("ошибка загрузки трека: %w", err)
	}
	t.loadErr = nil
	t.adapter.Reapply()
	t.logger.Debug("трек загружен", "title", tr.Title, "index", t.registry.CurrentIndex())

	if play {
		return t.adapter.Play()
	}
	return nil
}

// TogglePlay переключает воспроизведение
func (t *Turntable) TogglePlay() error {
	if t.registry.Len() == 0 {
		return nil
	}
	return t.adapter.Toggle()
}

// SetSpeed задает множитель скорости
func (t *Turntable) SetSpeed(speed float64) {
	t.adapter.SetSpeed(speed)
}

// SetPitch задает сдвиг тона в полутонах
func (t *Turntable) SetPitch(semitones int) {
	t.adapter.SetPitch(semitones)
}

// NudgeSpeed меняет скорость на delta
func (t *Turntable) NudgeSpeed(delta float64) {
	t.adapter.SetSpeed(t.adapter.Controls().Speed + delta)
}

// NudgePitch меняет тон на delta полутонов
func (t *Turntable) NudgePitch(delta int) {
	t.adapter.SetPitch(t.adapter.Controls().Pitch + delta)
}

// HandleEvent обрабатывает событие элемента воспроизведения
func (t *Turntable) HandleEvent(ev transport.Event) error {
	switch ev.Kind {
	case transport.Ended:
		if !t.autoAdvance || t.registry.Len() == 0 {
			return nil
		}
		if _, ok := t.registry.Next(); !ok {
			return nil
		}
		return t.load(true)
	case transport.MetadataLoaded:
		t.logger.Debug("метаданные загружены", "duration", ev.Duration)
	}
	return nil
}

// discardStaleEvents выбрасывает события предыдущего трека, оставшиеся в канале
// после загрузки нового. Новый трек загружен на паузе, поэтому прогресс и окончание
// в канале могут относиться только к старому.
func (t *Turntable) discardStaleEvents() {
	for {
		select {
		case ev, ok := <-t.adapter.Events():
			if !ok {
				return
			}
			if ev.Kind == transport.MetadataLoaded {
				t.logger.Debug("метаданные загружены", "duration", ev.Duration)
			}
		default:
			return
		}
	}
}

// DrainEvents обрабатывает все накопившиеся события без блокировки
func (t *Turntable) DrainEvents() error {
	for {
		select {
		case ev, ok := <-t.adapter.Events():
			if !ok {
				return nil
			}
			if err := t.HandleEvent(ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// Status возвращает снимок состояния
func (t *Turntable) Status() Status {
	tr, _ := t.registry.Current()
	return Status{
		Track:         tr,
		Index:         t.registry.CurrentIndex(),
		Count:         t.registry.Len(),
		Position:      t.adapter.CurrentTime(),
		Duration:      t.adapter.Duration(),
		Playing:       t.adapter.IsPlaying(),
		Dragging:      t.engine.Dragging(),
		Angle:         t.engine.Angle(),
		Controls:      t.adapter.Controls(),
		EffectiveRate: t.adapter.EffectiveRate(),
		RateAvailable: t.adapter.RateAvailable(),
		LoadErr:       t.loadErr,
	}
}

// Cover возвращает асинхронно декодируемую обложку трека (с кешем по источнику)
func (t *Turntable) Cover(tr track.Track) *render.Image {
	if !tr.HasCover() || tr.Source == nil {
		return nil
	}
	id := tr.Source.ID()
	if im, ok := t.covers[id]; ok {
		return im
	}
	im := render.LoadImage(tr.Cover)
	t.covers[id] = im
	return im
}

func (t *Turntable) currentLook() (palette.Palette, *render.Image) {
	tr, ok := t.registry.Current()
	if !ok {
		return palette.Default(), nil
	}
	return tr.Palette, t.Cover(tr)
}
