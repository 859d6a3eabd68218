// Package service provides business-logic for the app: gallery fan-out over the recognition service
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/UnendingLoop/FaceGallery/internal/config"
	"github.com/UnendingLoop/FaceGallery/internal/imageproc"
	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/UnendingLoop/FaceGallery/internal/mwlogger"
	"github.com/UnendingLoop/FaceGallery/internal/recognition"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
)

const defaultMaxInFlight = 8

type FaceService struct {
	recognizer   Recognizer
	storage      GalleryStorage
	publisher    GalleryPublisher
	collectionID string
	maxInFlight  int
	inline       bool
	now          func() time.Time
}

func NewFaceService(cfg *config.AppConfig, rec Recognizer, strg GalleryStorage, pub GalleryPublisher) *FaceService {
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}

	return &FaceService{
		recognizer:   rec,
		storage:      strg,
		publisher:    pub,
		collectionID: cfg.CollectionID,
		maxInFlight:  maxInFlight,
		inline:       cfg.GalleryInline,
		now:          time.Now,
	}
}

// Recognizer - контракт клиента распознавания
type Recognizer interface {
	DetectFaces(ctx context.Context, ref model.ImageRef) (*model.DetectionResult, error)
	IndexFaces(ctx context.Context, collectionID string, ref model.ImageRef, externalID string) (*model.IndexResult, error)
	SearchFacesByImage(ctx context.Context, collectionID string, ref model.ImageRef) (*model.SearchResult, error)
	CompareFaces(ctx context.Context, source []byte, target model.ImageRef) (*model.CompareResult, error)
	CreateCollection(ctx context.Context, collectionID string) (*model.CollectionInfo, error)
	DeleteCollection(ctx context.Context, collectionID string) error
	EnsureCollection(ctx context.Context, collectionID string) (*model.CollectionInfo, error)
	ListFaces(ctx context.Context, collectionID string) ([]model.Face, error)
}

// GalleryStorage - контракт для работы с хранилищем галереи
type GalleryStorage interface {
	Bucket() string
	ListPage(ctx context.Context, token string) (*model.GalleryPage, error)
	Get(ctx context.Context, key string) (data []byte, ctype string, err error)
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

// GalleryPublisher - контракт для работы с очередью событий галереи
type GalleryPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// NoopPublisher - ЗАГЛУШКА, когда брокер не настроен или публикация не нужна (лямбда, воркер)
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, k []byte, v []byte) error {
	return nil
}

// Стратегия ретрая отправки в очередь
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

func (s *FaceService) CreateCollection(ctx context.Context, id string) (*model.CollectionInfo, error) {
	if err := validateCollectionID(id); err != nil {
		return nil, err
	}
	return s.recognizer.CreateCollection(ctx, id)
}

func (s *FaceService) DeleteCollection(ctx context.Context, id string) error {
	if err := validateCollectionID(id); err != nil {
		return err
	}
	return s.recognizer.DeleteCollection(ctx, id)
}

func (s *FaceService) ListFaces(ctx context.Context, id string) ([]model.Face, error) {
	if err := validateCollectionID(id); err != nil {
		return nil, err
	}

	faces, err := s.recognizer.ListFaces(ctx, id)
	if err != nil {
		return nil, err
	}
	if faces == nil {
		faces = []model.Face{}
	}
	return faces, nil
}

// AddGalleryImage stores a new gallery image under a fresh uuid key and announces it to the indexer.
func (s *FaceService) AddGalleryImage(ctx context.Context, upload *model.GalleryUpload) (*model.GalleryItem, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if upload == nil || len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: empty gallery image", model.ErrMalformedInput)
	}

	// тип определяем по содержимому, а не по заголовку запроса
	format, err := imageproc.DetectFormat(upload.Data)
	if err != nil {
		return nil, err
	}
	if err := imageproc.DecodeFull(upload.Data); err != nil {
		return nil, err
	}
	cType := model.GetCType[format]

	item := &model.GalleryItem{
		Key:    uuid.New().String() + model.GetImageFileExt[cType],
		Bucket: s.storage.Bucket(),
	}

	if err := s.storage.Put(ctx, item.Key, int64(len(upload.Data)), cType, bytes.NewReader(upload.Data)); err != nil {
		logger.Error().Err(err).Str("key", item.Key).Msg("Failed to save gallery image in Storage")
		return nil, fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
	}

	event, err := json.Marshal(model.GalleryEvent{
		Bucket:     item.Bucket,
		Key:        item.Key,
		UploadedAt: s.now().UTC(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal gallery event")
		return nil, model.ErrCommon500
	}

	if err := s.publisher.SendWithRetry(ctx, retryStrategy, []byte(item.Key), event); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish gallery image %q to event-queue", item.Key))
		return nil, model.ErrCommon500
	}

	logger.Info().Str("key", item.Key).Msg("Gallery image added")
	return item, nil
}

// IndexGalleryImage indexes one gallery image into the configured collection, tagged with its key.
func (s *FaceService) IndexGalleryImage(ctx context.Context, key string) (*model.IndexResult, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty gallery key", model.ErrMalformedInput)
	}

	ref, err := s.resolveRef(ctx, key)
	if err != nil {
		return nil, err
	}

	return s.recognizer.IndexFaces(ctx, s.collectionID, ref, recognition.ExternalID(key))
}

// EnsureCollection - для старта воркера
func (s *FaceService) EnsureCollection(ctx context.Context) (*model.CollectionInfo, error) {
	return s.recognizer.EnsureCollection(ctx, s.collectionID)
}

// resolveRef - в inline-режиме вычитываем байты сами, иначе отдаем ссылку на объект в бакете
func (s *FaceService) resolveRef(ctx context.Context, key string) (model.ImageRef, error) {
	ref := model.ImageRef{Bucket: s.storage.Bucket(), Key: key}
	if !s.inline {
		return ref, nil
	}

	data, _, err := s.storage.Get(ctx, key)
	if err != nil {
		logger := mwlogger.LoggerFromContext(ctx)
		logger.Error().Err(err).Str("key", key).Msg("Failed to fetch gallery image from Storage")
		return model.ImageRef{}, fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
	}
	// пустой объект иначе ушел бы в Rekognition ссылкой на S3
	if len(data) == 0 {
		return model.ImageRef{}, fmt.Errorf("%w: empty gallery object %q", model.ErrMalformedInput, key)
	}
	ref.Bytes = data

	return ref, nil
}
