// Package s3 предоставляет источник треков из бакета Amazon S3 (или совместимого хранилища)
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"golang.org/x/sync/errgroup"

	"github.com/hazadus/go-vinyl/internal/track"
)

// downloadWorkers число одновременных загрузок объектов
const downloadWorkers = 4

// ErrInvalidURL возвращается для адресов не в формате s3://bucket/prefix
var ErrInvalidURL = errors.New("некорректный адрес S3")

// Config содержит настройки для S3
type Config struct {
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	BucketName string
}

// Object описание объекта в бакете
type Object struct {
	Key  string
	Size int64
}

// listAPI часть клиента S3 для получения списка объектов
type listAPI interface {
	ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
}

// downloadAPI часть s3manager для скачивания объектов
type downloadAPI interface {
	DownloadWithContext(ctx aws.Context, w io.WriterAt, input *s3.GetObjectInput, opts ...func(*s3manager.Downloader)) (int64, error)
}

// Bucket обертка над клиентом S3 для чтения треков
type Bucket struct {
	client     listAPI
	downloader downloadAPI
	name       string
}

// NewBucket создает клиента для бакета
func NewBucket(config *Config) (*Bucket, error) {
	if config.BucketName == "" {
		return nil, errors.New("не указано имя бакета")
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if config.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		)
	}

	// Если указан endpoint, добавляем его
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AWS сессии: %w", err)
	}

	return &Bucket{
		client:     s3.New(sess),
		downloader: s3manager.NewDownloader(sess),
		name:       config.BucketName,
	}, nil
}

// Name возвращает имя бакета
func (b *Bucket) Name() string {
	return b.name
}

// List возвращает объекты с указанным префиксом
func (b *Bucket) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object

	err := b.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			objects = append(objects, Object{Key: key, Size: aws.Int64Value(obj.Size)})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка объектов: %w", err)
	}
	return objects, nil
}

// Download скачивает объект в память
func (b *Bucket) Download(ctx context.Context, key string) ([]byte, error) {
	buf := aws.NewWriteAtBuffer(nil)
	_, err := b.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// Sources скачивает объекты с префиксом, прошедшие фильтр по имени, и возвращает их как источники.
// Порядок совпадает с порядком листинга.
func (b *Bucket) Sources(ctx context.Context, prefix string, accept func(name string) bool) ([]track.Source, error) {
	objects, err := b.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var selected []Object
	for _, obj := range objects {
		if accept == nil || accept(path.Base(obj.Key)) {
			selected = append(selected, obj)
		}
	}

	srcs := make([]track.Source, len(selected))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadWorkers)

	for i, obj := range selected {
		g.Go(func() error {
			data, err := b.Download(ctx, obj.Key)
			if err != nil {
				return err
			}
			srcs[i] = track.NewMemorySource(path.Base(obj.Key), data)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return srcs, nil
}

// ParseURL разбирает адрес вида s3://bucket/prefix
func ParseURL(raw string) (bucket, prefix string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// IsURL проверяет, является ли строка адресом S3
func IsURL(raw string) bool {
	return strings.HasPrefix(raw, "s3://")
}
