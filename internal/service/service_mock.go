package service

import (
	"context"
	"io"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/wb-go/wbf/retry"
)

// MOCK RECOGNIZER

type mockRecognizer struct {
	detectFn  func(ctx context.Context, ref model.ImageRef) (*model.DetectionResult, error)
	indexFn   func(ctx context.Context, collectionID string, ref model.ImageRef, externalID string) (*model.IndexResult, error)
	searchFn  func(ctx context.Context, collectionID string, ref model.ImageRef) (*model.SearchResult, error)
	compareFn func(ctx context.Context, source []byte, target model.ImageRef) (*model.CompareResult, error)
	createFn  func(ctx context.Context, id string) (*model.CollectionInfo, error)
	deleteFn  func(ctx context.Context, id string) error
	ensureFn  func(ctx context.Context, id string) (*model.CollectionInfo, error)
	listFn    func(ctx context.Context, id string) ([]model.Face, error)
}

func (m *mockRecognizer) DetectFaces(ctx context.Context, ref model.ImageRef) (*model.DetectionResult, error) {
	return m.detectFn(ctx, ref)
}

func (m *mockRecognizer) IndexFaces(ctx context.Context, collectionID string, ref model.ImageRef, externalID string) (*model.IndexResult, error) {
	return m.indexFn(ctx, collectionID, ref, externalID)
}

func (m *mockRecognizer) SearchFacesByImage(ctx context.Context, collectionID string, ref model.ImageRef) (*model.SearchResult, error) {
	return m.searchFn(ctx, collectionID, ref)
}

func (m *mockRecognizer) CompareFaces(ctx context.Context, source []byte, target model.ImageRef) (*model.CompareResult, error) {
	return m.compareFn(ctx, source, target)
}

func (m *mockRecognizer) CreateCollection(ctx context.Context, id string) (*model.CollectionInfo, error) {
	return m.createFn(ctx, id)
}

func (m *mockRecognizer) DeleteCollection(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockRecognizer) EnsureCollection(ctx context.Context, id string) (*model.CollectionInfo, error) {
	if m.ensureFn == nil {
		return &model.CollectionInfo{CollectionID: id}, nil
	}
	return m.ensureFn(ctx, id)
}

func (m *mockRecognizer) ListFaces(ctx context.Context, id string) ([]model.Face, error) {
	return m.listFn(ctx, id)
}

// MOCK STORAGE

type mockStorage struct {
	bucket string
	listFn func(ctx context.Context, token string) (*model.GalleryPage, error)
	getFn  func(ctx context.Context, key string) ([]byte, string, error)
	putFn  func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
}

func (m *mockStorage) Bucket() string {
	return m.bucket
}

func (m *mockStorage) ListPage(ctx context.Context, token string) (*model.GalleryPage, error) {
	return m.listFn(ctx, token)
}

func (m *mockStorage) Get(ctx context.Context, key string) ([]byte, string, error) {
	return m.getFn(ctx, key)
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

// galleryOf отдает ключи одной страницей
func galleryOf(keys ...string) *mockStorage {
	return &mockStorage{
		bucket: "gallery",
		listFn: func(ctx context.Context, token string) (*model.GalleryPage, error) {
			return &model.GalleryPage{Keys: keys}, nil
		},
	}
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	return m.sendFn(ctx, s, key, v)
}
