package main

import (
	"context"

	"github.com/UnendingLoop/FaceGallery/internal/model"
)

type FaceAPIService interface {
	Compare(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error)
	RunBatch(ctx context.Context, operation string, req *model.ProbeRequest) (*model.AggregatedResponse, error)
	CreateTemplate(ctx context.Context, req *model.ProbeRequest) (*model.TemplateResponse, error)
	CreateCollection(ctx context.Context, id string) (*model.CollectionInfo, error)
	DeleteCollection(ctx context.Context, id string) error
	ListFaces(ctx context.Context, id string) ([]model.Face, error)
	AddGalleryImage(ctx context.Context, upload *model.GalleryUpload) (*model.GalleryItem, error) // + событие в кафку
}
