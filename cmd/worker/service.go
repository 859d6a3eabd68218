package main

import (
	"context"

	"github.com/UnendingLoop/FaceGallery/internal/model"
)

type GalleryWorkerService interface {
	IndexGalleryImage(ctx context.Context, key string) (*model.IndexResult, error)
	EnsureCollection(ctx context.Context) (*model.CollectionInfo, error)
}
