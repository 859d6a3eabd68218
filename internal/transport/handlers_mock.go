package transport

import (
	"context"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/gin-gonic/gin"
)

type mockFaceService struct {
	compareFn          func(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error)
	runBatchFn         func(ctx context.Context, operation string, req *model.ProbeRequest) (*model.AggregatedResponse, error)
	createTemplateFn   func(ctx context.Context, req *model.ProbeRequest) (*model.TemplateResponse, error)
	createCollectionFn func(ctx context.Context, id string) (*model.CollectionInfo, error)
	deleteCollectionFn func(ctx context.Context, id string) error
	listFacesFn        func(ctx context.Context, id string) ([]model.Face, error)
	addGalleryImageFn  func(ctx context.Context, upload *model.GalleryUpload) (*model.GalleryItem, error)
}

func (m *mockFaceService) Compare(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
	return m.compareFn(ctx, req)
}

func (m *mockFaceService) RunBatch(ctx context.Context, operation string, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
	return m.runBatchFn(ctx, operation, req)
}

func (m *mockFaceService) CreateTemplate(ctx context.Context, req *model.ProbeRequest) (*model.TemplateResponse, error) {
	return m.createTemplateFn(ctx, req)
}

func (m *mockFaceService) CreateCollection(ctx context.Context, id string) (*model.CollectionInfo, error) {
	return m.createCollectionFn(ctx, id)
}

func (m *mockFaceService) DeleteCollection(ctx context.Context, id string) error {
	return m.deleteCollectionFn(ctx, id)
}

func (m *mockFaceService) ListFaces(ctx context.Context, id string) ([]model.Face, error) {
	return m.listFacesFn(ctx, id)
}

func (m *mockFaceService) AddGalleryImage(ctx context.Context, upload *model.GalleryUpload) (*model.GalleryItem, error) {
	return m.addGalleryImageFn(ctx, upload)
}

func init() {
	gin.SetMode(gin.TestMode)
}
