package tracklist

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-vinyl/internal/palette"
	"github.com/hazadus/go-vinyl/internal/track"
)

func newTestRegistry() *track.Registry {
	reg := track.NewRegistry()
	reg.Add(track.Track{
		Artist:  "Test Artist 1",
		Title:   "Test Track 1",
		Album:   "Test Album 1",
		Source:  track.NewMemorySource("1.mp3", nil),
		Palette: palette.Default(),
	})
	reg.Add(track.Track{
		Artist:  "Test Artist 2",
		Title:   "Test Track 2",
		Source:  track.NewMemorySource("2.mp3", nil),
		Palette: palette.Derive(palette.RGB{R: 204, G: 51, B: 51}),
	})
	return reg
}

func TestNewModel(t *testing.T) {
	model := NewModel(newTestRegistry())

	if model == nil {
		t.Fatal("NewModel вернул nil")
	}
	if len(model.list.Items()) != 2 {
		t.Fatalf("Ожидалось 2 элемента, получено %d", len(model.list.Items()))
	}
	if model.SelectedIndex() != 0 {
		t.Errorf("Ожидался выбранный индекс 0, получено %d", model.SelectedIndex())
	}
}

func TestEnterSelectsTrack(t *testing.T) {
	model := NewModel(newTestRegistry())
	model.Update(tea.WindowSizeMsg{Width: 100, Height: 20})

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Ожидалась команда выбора трека")
	}

	msg, ok := cmd().(TrackSelectedMsg)
	if !ok {
		t.Fatalf("Ожидалось сообщение TrackSelectedMsg, получено %T", cmd())
	}
	if msg.Index != 1 {
		t.Errorf("Ожидался индекс 1, получено %d", msg.Index)
	}
}

func TestEditKey(t *testing.T) {
	model := NewModel(newTestRegistry())

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if cmd == nil {
		t.Fatal("Ожидалась команда редактирования")
	}
	if msg, ok := cmd().(TrackEditMsg); !ok || msg.Index != 0 {
		t.Errorf("Ожидалось TrackEditMsg{Index: 0}, получено %#v", cmd())
	}
}

func TestRefreshData(t *testing.T) {
	reg := newTestRegistry()
	model := NewModel(reg)

	if err := reg.Replace(0, track.Track{Title: "Renamed", Palette: palette.Default()}); err != nil {
		t.Fatalf("Ошибка замены трека: %v", err)
	}
	model.RefreshData()

	item, ok := model.list.Items()[0].(trackItem)
	if !ok || item.track.Title != "Renamed" {
		t.Errorf("Список должен содержать обновленный трек, получено %+v", model.list.Items()[0])
	}
}

func TestEmptyView(t *testing.T) {
	model := NewModel(track.NewRegistry())
	if !strings.Contains(model.View(), "Библиотека пуста") {
		t.Error("Для пустой библиотеки ожидалась подсказка")
	}
	if model.SelectedIndex() != -1 {
		t.Errorf("Ожидался индекс -1, получено %d", model.SelectedIndex())
	}
}

func TestSwatch(t *testing.T) {
	s := swatch(palette.Default())
	if strings.Count(s, "█") != 3 {
		t.Errorf("Образец палитры должен содержать три блока: %q", s)
	}
}
