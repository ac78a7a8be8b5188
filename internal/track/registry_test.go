package track

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazadus/go-vinyl/internal/palette"
)

func newTestRegistry(titles ...string) *Registry {
	reg := NewRegistry()
	for _, title := range titles {
		reg.Add(Track{
			Title:   title,
			Artist:  "Test Artist",
			Source:  NewMemorySource(title+".mp3", []byte("fake")),
			Palette: palette.Default(),
		})
	}
	return reg
}

func TestAddTrack(t *testing.T) {
	reg := NewRegistry()

	if reg.CurrentIndex() != -1 {
		t.Errorf("Для пустого реестра ожидался индекс -1, получено %d", reg.CurrentIndex())
	}

	index := reg.Add(Track{Title: "Test Title", Artist: "Test Artist"})
	if index != 0 {
		t.Errorf("Ожидался индекс 0, получено %d", index)
	}
	if reg.Len() != 1 {
		t.Errorf("Ожидался 1 трек, получено %d", reg.Len())
	}

	// Первый трек становится текущим
	current, ok := reg.Current()
	if !ok {
		t.Fatal("Ожидался текущий трек")
	}
	if current.Title != "Test Title" {
		t.Errorf("Ожидался Title: Test Title, получено: %s", current.Title)
	}

	// Второй трек не меняет выбор
	reg.Add(Track{Title: "Second"})
	if reg.CurrentIndex() != 0 {
		t.Errorf("Добавление не должно менять текущий индекс, получено %d", reg.CurrentIndex())
	}
}

func TestNextPreviousWrap(t *testing.T) {
	reg := newTestRegistry("A", "B", "C")

	prev, ok := reg.Previous()
	if !ok {
		t.Fatal("Previous должен вернуть трек")
	}
	if reg.CurrentIndex() != 2 || prev.Title != "C" {
		t.Errorf("Ожидался переход назад к индексу 2 (C), получено %d (%s)", reg.CurrentIndex(), prev.Title)
	}

	next, ok := reg.Next()
	if !ok {
		t.Fatal("Next должен вернуть трек")
	}
	if reg.CurrentIndex() != 0 || next.Title != "A" {
		t.Errorf("Ожидался переход вперед к индексу 0 (A), получено %d (%s)", reg.CurrentIndex(), next.Title)
	}

	reg.Next()
	if reg.CurrentIndex() != 1 {
		t.Errorf("Ожидался индекс 1, получено %d", reg.CurrentIndex())
	}
}

func TestEmptyRegistryGuards(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Next(); ok {
		t.Error("Next на пустом реестре должен быть пустой операцией")
	}
	if _, ok := reg.Previous(); ok {
		t.Error("Previous на пустом реестре должен быть пустой операцией")
	}
	if _, ok := reg.Current(); ok {
		t.Error("Current на пустом реестре не должен возвращать трек")
	}
	if err := reg.Select(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Ожидалась ошибка ErrIndexOutOfRange, получено: %v", err)
	}
	if reg.CurrentIndex() != -1 {
		t.Errorf("Индекс пустого реестра должен оставаться -1, получено %d", reg.CurrentIndex())
	}
}

func TestSelect(t *testing.T) {
	reg := newTestRegistry("A", "B", "C")

	if err := reg.Select(1); err != nil {
		t.Fatalf("Ошибка выбора трека: %v", err)
	}
	if current, _ := reg.Current(); current.Title != "B" {
		t.Errorf("Ожидался трек B, получено %s", current.Title)
	}

	if err := reg.Select(3); err == nil {
		t.Error("Ожидалась ошибка для индекса вне диапазона")
	}
	if err := reg.Select(-1); err == nil {
		t.Error("Ожидалась ошибка для отрицательного индекса")
	}
	if reg.CurrentIndex() != 1 {
		t.Errorf("Ошибочный выбор не должен менять текущий индекс, получено %d", reg.CurrentIndex())
	}
}

func TestReplace(t *testing.T) {
	reg := newTestRegistry("A", "B")

	original, _ := reg.Track(1)
	updated := original
	updated.Title = "B (remastered)"

	if err := reg.Replace(1, updated); err != nil {
		t.Fatalf("Ошибка замены трека: %v", err)
	}

	got, _ := reg.Track(1)
	if got.Title != "B (remastered)" {
		t.Errorf("Ожидался Title: B (remastered), получено: %s", got.Title)
	}
	if got.Source.ID() != original.Source.ID() {
		t.Error("Источник должен сохраниться при замене")
	}

	if err := reg.Replace(5, updated); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Ожидалась ошибка ErrIndexOutOfRange, получено: %v", err)
	}
}

func TestTracksReturnsCopy(t *testing.T) {
	reg := newTestRegistry("A")

	tracks := reg.Tracks()
	tracks[0].Title = "Changed"

	if got, _ := reg.Track(0); got.Title != "A" {
		t.Errorf("Изменение копии не должно влиять на реестр, получено: %s", got.Title)
	}
}

func TestFileSource(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "Song.MP3")
	if err := os.WriteFile(path, []byte("fake mp3 content"), 0644); err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("Ошибка создания источника: %v", err)
	}

	if src.Ext() != ".mp3" {
		t.Errorf("Ожидалось расширение .mp3, получено: %s", src.Ext())
	}
	if src.Name() != "Song.MP3" {
		t.Errorf("Ожидалось имя Song.MP3, получено: %s", src.Name())
	}
	if src.Size() != int64(len("fake mp3 content")) {
		t.Errorf("Неверный размер: %d", src.Size())
	}

	rc, err := src.Open()
	if err != nil {
		t.Fatalf("Ошибка открытия источника: %v", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("Ошибка чтения: %v", err)
	}
	if string(content) != "fake mp3 content" {
		t.Errorf("Неверное содержимое: %s", content)
	}

	if _, err := NewFileSource(tempDir); err == nil {
		t.Error("Ожидалась ошибка для каталога")
	}
	if _, err := NewFileSource(filepath.Join(tempDir, "missing.mp3")); err == nil {
		t.Error("Ожидалась ошибка для несуществующего файла")
	}
}

func TestMemorySourceIndependentReaders(t *testing.T) {
	src := NewMemorySource("track.flac", []byte("abcdef"))

	first, _ := src.Open()
	second, _ := src.Open()

	buf := make([]byte, 3)
	if _, err := first.Read(buf); err != nil {
		t.Fatalf("Ошибка чтения: %v", err)
	}

	all, _ := io.ReadAll(second)
	if string(all) != "abcdef" {
		t.Errorf("Ридеры должны быть независимыми, получено: %s", all)
	}
	if src.Ext() != ".flac" {
		t.Errorf("Ожидалось расширение .flac, получено: %s", src.Ext())
	}
}
