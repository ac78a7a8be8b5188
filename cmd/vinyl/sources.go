package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/hazadus/go-vinyl/internal/importer"
	"github.com/hazadus/go-vinyl/internal/s3"
	"github.com/hazadus/go-vinyl/internal/streaming"
	"github.com/hazadus/go-vinyl/internal/track"
	"github.com/hazadus/go-vinyl/internal/youtube"
)

// progressStep шаг отчета о загрузке по ссылке
const progressStep = 1 << 20

func isHTTP(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// loadLibrary импортирует треки из аргументов командной строки в новый реестр.
// Аргумент - локальный файл или каталог, http(s) URL, ссылка на YouTube или s3://bucket/prefix.
// Порядок треков совпадает с порядком аргументов.
func (app *Application) loadLibrary(ctx context.Context, args []string) (*track.Registry, error) {
	im := importer.New(
		importer.WithLogger(app.Logger),
		importer.WithWorkers(app.Config.ImportWorkers),
	)

	// Без аргументов играет бакет из конфигурации
	if len(args) == 0 && app.Config.HasS3() && app.Config.AwsBucketName != "" {
		args = []string{"s3://" + app.Config.AwsBucketName}
	}

	reg := track.NewRegistry()
	for _, arg := range args {
		tracks, err := app.importArg(ctx, im, arg)
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			reg.Add(t)
		}
	}

	app.Logger.Info("библиотека загружена", "tracks", reg.Len())
	return reg, nil
}

func (app *Application) importArg(ctx context.Context, im *importer.Importer, arg string) ([]track.Track, error) {
	switch {
	case youtube.IsURL(arg):
		app.Logger.Info("загрузка аудио с YouTube", "url", arg)
		return app.importDownload(ctx, im, arg, youtube.New().Fetch)

	case isHTTP(arg):
		app.Logger.Info("загрузка по URL", "url", arg)
		return app.importDownload(ctx, im, arg, streaming.Fetch)

	case s3.IsURL(arg):
		return app.importS3(ctx, im, arg)

	default:
		return im.ImportPaths(ctx, []string{arg})
	}
}

// fetchFunc загружает один файл по ссылке в память
type fetchFunc func(ctx context.Context, rawURL string, opts streaming.FetchOptions) (*streaming.Download, error)

func (app *Application) importDownload(ctx context.Context, im *importer.Importer, arg string, fetch fetchFunc) ([]track.Track, error) {
	next := int64(progressStep)
	dl, err := fetch(ctx, arg, streaming.FetchOptions{
		Limit: app.Config.HTTPMaxBytes,
		OnProgress: func(n int64) {
			if n >= next {
				app.Logger.Debug("загружено", "url", arg, "size", humanize.IBytes(uint64(n)))
				next = n + progressStep
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки %s: %w", arg, err)
	}
	app.Logger.Debug("файл загружен", "name", dl.Source.Name(), "size", humanize.IBytes(uint64(dl.Source.Size())))

	t, err := im.Import(ctx, dl.Source, dl.MIMEType)
	if errors.Is(err, importer.ErrUnsupported) {
		app.Logger.Warn("формат не поддерживается", "url", arg, "mime", dl.MIMEType)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []track.Track{t}, nil
}

func (app *Application) importS3(ctx context.Context, im *importer.Importer, arg string) ([]track.Track, error) {
	bucketName, prefix, err := s3.ParseURL(arg)
	if err != nil {
		return nil, err
	}

	bucket, err := s3.NewBucket(&s3.Config{
		Region:     app.Config.AwsRegion,
		AccessKey:  app.Config.AwsAccessKey,
		SecretKey:  app.Config.AwsSecretKey,
		Endpoint:   app.Config.AwsEndpoint,
		BucketName: bucketName,
	})
	if err != nil {
		return nil, err
	}

	app.Logger.Info("загрузка из S3", "bucket", bucket.Name(), "prefix", prefix)
	srcs, err := bucket.Sources(ctx, prefix, func(name string) bool {
		return importer.Supported(name, "")
	})
	if err != nil {
		return nil, err
	}
	return im.ImportSources(ctx, srcs)
}
