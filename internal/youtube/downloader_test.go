package youtube

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"

	"github.com/hazadus/go-vinyl/internal/streaming"
)

// mockClient клиент YouTube без сети
type mockClient struct {
	video     *youtube.Video
	videoErr  error
	payload   string
	requested *youtube.Format
}

func (m *mockClient) GetVideoContext(_ context.Context, id string) (*youtube.Video, error) {
	if m.videoErr != nil {
		return nil, m.videoErr
	}
	if id != "dQw4w9WgXcQ" {
		return nil, errors.New("неизвестное видео")
	}
	return m.video, nil
}

func (m *mockClient) GetStreamContext(_ context.Context, _ *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error) {
	m.requested = format
	return io.NopCloser(strings.NewReader(m.payload)), int64(len(m.payload)), nil
}

func testVideo() *youtube.Video {
	return &youtube.Video{
		ID:     "dQw4w9WgXcQ",
		Title:  "Never Gonna Give You Up",
		Author: "Rick Astley",
		Formats: youtube.FormatList{
			{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
			{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 130000, AudioChannels: 2},
			{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
			{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 4000000},
		},
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://music.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/feed/subscriptions", false},
		{"https://example.com/watch?v=dQw4w9WgXcQ", false},
		{"dQw4w9WgXcQ", false},
		{"/music/youtu.be/track.mp3", false},
	}

	for _, test := range tests {
		if got := IsURL(test.url); got != test.expected {
			t.Errorf("IsURL(%q) = %v, ожидалось %v", test.url, got, test.expected)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	id, err := ExtractVideoID("https://www.youtube.com/embed/dQw4w9WgXcQ?start=10")
	if err != nil || id != "dQw4w9WgXcQ" {
		t.Errorf("Ожидался ID dQw4w9WgXcQ, получено %q (%v)", id, err)
	}
	if _, err := ExtractVideoID("https://www.youtube.com/"); err == nil {
		t.Error("Ожидалась ошибка для URL без ID")
	}
}

func TestFetch(t *testing.T) {
	client := &mockClient{video: testVideo(), payload: "opus data"}
	d := &Downloader{client: client}

	var progress int64
	dl, err := d.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", streaming.FetchOptions{
		OnProgress: func(n int64) { progress = n },
	})
	if err != nil {
		t.Fatalf("Не ожидалась ошибка: %v", err)
	}

	if client.requested == nil || client.requested.ItagNo != 251 {
		t.Errorf("Ожидался формат 251 (только звук, лучший битрейт), получено %+v", client.requested)
	}
	if dl.Source.Name() != "Rick Astley - Never Gonna Give You Up.weba" {
		t.Errorf("Неожиданное имя источника: %s", dl.Source.Name())
	}
	if dl.MIMEType != `audio/webm; codecs="opus"` {
		t.Errorf("Неожиданный MIME-тип: %s", dl.MIMEType)
	}
	if dl.Source.Size() != int64(len("opus data")) || progress != dl.Source.Size() {
		t.Errorf("Размер %d и прогресс %d должны совпадать с данными", dl.Source.Size(), progress)
	}
}

func TestFetchTooLarge(t *testing.T) {
	client := &mockClient{video: testVideo(), payload: strings.Repeat("x", 100)}
	d := &Downloader{client: client}

	_, err := d.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", streaming.FetchOptions{Limit: 10})
	if !errors.Is(err, streaming.ErrTooLarge) {
		t.Errorf("Ожидалась ошибка ErrTooLarge, получено: %v", err)
	}
}

func TestFetchVideoError(t *testing.T) {
	d := &Downloader{client: &mockClient{videoErr: errors.New("видео недоступно")}}

	if _, err := d.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", streaming.FetchOptions{}); err == nil {
		t.Error("Ожидалась ошибка получения видео")
	}
}

func TestBestAudioFormat(t *testing.T) {
	tests := []struct {
		name     string
		formats  youtube.FormatList
		expected int
	}{
		{"лучший битрейт", testVideo().Formats, 251},
		{"MP4 при равном битрейте", youtube.FormatList{
			{ItagNo: 251, MimeType: "audio/webm", Bitrate: 128000, AudioChannels: 2},
			{ItagNo: 140, MimeType: "audio/mp4", Bitrate: 128000, AudioChannels: 2},
		}, 140},
		{"только видео со звуком", youtube.FormatList{
			{ItagNo: 137, MimeType: "video/mp4", Bitrate: 4000000},
			{ItagNo: 18, MimeType: "video/mp4", Bitrate: 500000, AudioChannels: 2},
		}, 18},
	}

	for _, test := range tests {
		got := bestAudioFormat(test.formats)
		if got == nil || got.ItagNo != test.expected {
			t.Errorf("%s: ожидался формат %d, получено %+v", test.name, test.expected, got)
		}
	}

	if got := bestAudioFormat(youtube.FormatList{{ItagNo: 137, MimeType: "video/mp4"}}); got != nil {
		t.Errorf("Без звука формат не должен выбираться, получено %+v", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := sanitizeFileName(` AC/DC: "Back" `); got != `AC_DC_ _Back_` {
		t.Errorf("Неожиданное имя: %q", got)
	}
}
