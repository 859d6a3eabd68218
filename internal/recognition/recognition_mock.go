package recognition

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
)

// MOCK REKOGNITION API

type mockAPI struct {
	detectFn   func(ctx context.Context, in *rekognition.DetectFacesInput) (*rekognition.DetectFacesOutput, error)
	indexFn    func(ctx context.Context, in *rekognition.IndexFacesInput) (*rekognition.IndexFacesOutput, error)
	searchFn   func(ctx context.Context, in *rekognition.SearchFacesByImageInput) (*rekognition.SearchFacesByImageOutput, error)
	compareFn  func(ctx context.Context, in *rekognition.CompareFacesInput) (*rekognition.CompareFacesOutput, error)
	createFn   func(ctx context.Context, in *rekognition.CreateCollectionInput) (*rekognition.CreateCollectionOutput, error)
	deleteFn   func(ctx context.Context, in *rekognition.DeleteCollectionInput) (*rekognition.DeleteCollectionOutput, error)
	describeFn func(ctx context.Context, in *rekognition.DescribeCollectionInput) (*rekognition.DescribeCollectionOutput, error)
	listFn     func(ctx context.Context, in *rekognition.ListFacesInput) (*rekognition.ListFacesOutput, error)
}

func (m *mockAPI) DetectFaces(ctx context.Context, in *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	return m.detectFn(ctx, in)
}

func (m *mockAPI) IndexFaces(ctx context.Context, in *rekognition.IndexFacesInput, _ ...func(*rekognition.Options)) (*rekognition.IndexFacesOutput, error) {
	return m.indexFn(ctx, in)
}

func (m *mockAPI) SearchFacesByImage(ctx context.Context, in *rekognition.SearchFacesByImageInput, _ ...func(*rekognition.Options)) (*rekognition.SearchFacesByImageOutput, error) {
	return m.searchFn(ctx, in)
}

func (m *mockAPI) CompareFaces(ctx context.Context, in *rekognition.CompareFacesInput, _ ...func(*rekognition.Options)) (*rekognition.CompareFacesOutput, error) {
	return m.compareFn(ctx, in)
}

func (m *mockAPI) CreateCollection(ctx context.Context, in *rekognition.CreateCollectionInput, _ ...func(*rekognition.Options)) (*rekognition.CreateCollectionOutput, error) {
	return m.createFn(ctx, in)
}

func (m *mockAPI) DeleteCollection(ctx context.Context, in *rekognition.DeleteCollectionInput, _ ...func(*rekognition.Options)) (*rekognition.DeleteCollectionOutput, error) {
	return m.deleteFn(ctx, in)
}

func (m *mockAPI) DescribeCollection(ctx context.Context, in *rekognition.DescribeCollectionInput, _ ...func(*rekognition.Options)) (*rekognition.DescribeCollectionOutput, error) {
	return m.describeFn(ctx, in)
}

func (m *mockAPI) ListFaces(ctx context.Context, in *rekognition.ListFacesInput, _ ...func(*rekognition.Options)) (*rekognition.ListFacesOutput, error) {
	return m.listFn(ctx, in)
}
