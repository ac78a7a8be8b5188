package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// MockS3Client мок для листинга объектов
type MockS3Client struct {
	pages [][]*s3.Object
	err   error
}

func (m *MockS3Client) ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error {
	if m.err != nil {
		return m.err
	}
	for i, page := range m.pages {
		if !fn(&s3.ListObjectsV2Output{Contents: page}, i == len(m.pages)-1) {
			break
		}
	}
	return nil
}

// MockDownloader мок для s3manager.Downloader
type MockDownloader struct {
	objects map[string]string
	bucket  string
}

func (m *MockDownloader) DownloadWithContext(ctx aws.Context, w io.WriterAt, input *s3.GetObjectInput, opts ...func(*s3manager.Downloader)) (int64, error) {
	m.bucket = aws.StringValue(input.Bucket)
	body, ok := m.objects[aws.StringValue(input.Key)]
	if !ok {
		return 0, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	n, err := w.WriteAt([]byte(body), 0)
	return int64(n), err
}

func object(key string, size int64) *s3.Object {
	return &s3.Object{Key: aws.String(key), Size: aws.Int64(size)}
}

func newTestBucket(client listAPI, downloader downloadAPI) *Bucket {
	return &Bucket{client: client, downloader: downloader, name: "test-bucket"}
}

func TestList(t *testing.T) {
	client := &MockS3Client{pages: [][]*s3.Object{
		{object("music/", 0), object("music/a.mp3", 10)},
		{object("music/b.flac", 20)},
	}}
	bucket := newTestBucket(client, &MockDownloader{})

	objects, err := bucket.List(context.Background(), "music/")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("Ожидалось 2 объекта, получено %d", len(objects))
	}
	if objects[0].Key != "music/a.mp3" || objects[1].Size != 20 {
		t.Errorf("Неожиданный список объектов: %+v", objects)
	}
}

func TestListError(t *testing.T) {
	client := &MockS3Client{err: awserr.New("AccessDenied", "Access Denied", nil)}
	bucket := newTestBucket(client, &MockDownloader{})

	_, err := bucket.List(context.Background(), "")
	if err == nil {
		t.Fatal("Ожидалась ошибка листинга")
	}
	if !strings.Contains(err.Error(), "ошибка получения списка объектов") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

func TestSources(t *testing.T) {
	client := &MockS3Client{pages: [][]*s3.Object{
		{object("music/a.mp3", 3), object("music/cover.jpg", 5), object("music/b.wav", 3)},
	}}
	downloader := &MockDownloader{objects: map[string]string{
		"music/a.mp3":     "aaa",
		"music/b.wav":     "bbb",
		"music/cover.jpg": "jpg",
	}}
	bucket := newTestBucket(client, downloader)

	accept := func(name string) bool { return !strings.HasSuffix(name, ".jpg") }
	srcs, err := bucket.Sources(context.Background(), "music/", accept)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if len(srcs) != 2 {
		t.Fatalf("Ожидалось 2 источника, получено %d", len(srcs))
	}
	if srcs[0].Name() != "a.mp3" || srcs[1].Name() != "b.wav" {
		t.Errorf("Неожиданные имена: %s, %s", srcs[0].Name(), srcs[1].Name())
	}

	rc, err := srcs[1].Open()
	if err != nil {
		t.Fatalf("Ошибка открытия источника: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "bbb" {
		t.Errorf("Ожидалось содержимое bbb, получено %q", data)
	}
	if downloader.bucket != "test-bucket" {
		t.Errorf("Ожидался bucket: test-bucket, получено: %s", downloader.bucket)
	}
}

func TestSourcesDownloadError(t *testing.T) {
	client := &MockS3Client{pages: [][]*s3.Object{{object("missing.mp3", 1)}}}
	bucket := newTestBucket(client, &MockDownloader{objects: map[string]string{}})

	_, err := bucket.Sources(context.Background(), "", nil)
	if err == nil {
		t.Fatal("Ожидалась ошибка скачивания")
	}

	var aerr awserr.Error
	if !errors.As(err, &aerr) || aerr.Code() != s3.ErrCodeNoSuchKey {
		t.Errorf("Ожидалась ошибка NoSuchKey, получено: %v", err)
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw    string
		bucket string
		prefix string
		valid  bool
	}{
		{"s3://records/jazz/", "records", "jazz/", true},
		{"s3://records", "records", "", true},
		{"s3:///prefix", "", "", false},
		{"https://records/jazz", "", "", false},
	}

	for _, test := range tests {
		bucket, prefix, err := ParseURL(test.raw)
		if test.valid != (err == nil) {
			t.Errorf("ParseURL(%q): неожиданная ошибка %v", test.raw, err)
			continue
		}
		if !test.valid {
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("ParseURL(%q): ожидалась ErrInvalidURL, получено %v", test.raw, err)
			}
			continue
		}
		if bucket != test.bucket || prefix != test.prefix {
			t.Errorf("ParseURL(%q) = %q, %q; ожидалось %q, %q", test.raw, bucket, prefix, test.bucket, test.prefix)
		}
	}

	if !IsURL("s3://a/b") || IsURL("/local/path") {
		t.Error("IsURL работает некорректно")
	}
}

func TestNewBucketRequiresName(t *testing.T) {
	if _, err := NewBucket(&Config{Region: "us-east-1"}); err == nil {
		t.Error("Ожидалась ошибка без имени бакета")
	}

	bucket, err := NewBucket(&Config{
		Region:     "us-east-1",
		AccessKey:  "test-access-key",
		SecretKey:  "test-secret-key",
		Endpoint:   "https://storage.example.com",
		BucketName: "records",
	})
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if bucket.Name() != "records" {
		t.Errorf("Ожидалось имя records, получено %s", bucket.Name())
	}
}
