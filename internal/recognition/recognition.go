// Package recognition wraps AWS Rekognition calls used by the gallery workflows.
// Every call is a single request/response: no retries, and the gallery key is stitched back on the result.
package recognition

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/UnendingLoop/FaceGallery/internal/mwlogger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
)

// DefaultMatchThreshold - минимальная похожесть для SearchFacesByImage
const DefaultMatchThreshold float32 = 70

const listFacesPageSize int32 = 1000

// RekognitionAPI - подмножество методов *rekognition.Client, которое нам нужно
type RekognitionAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
	IndexFaces(ctx context.Context, params *rekognition.IndexFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.IndexFacesOutput, error)
	SearchFacesByImage(ctx context.Context, params *rekognition.SearchFacesByImageInput, optFns ...func(*rekognition.Options)) (*rekognition.SearchFacesByImageOutput, error)
	CompareFaces(ctx context.Context, params *rekognition.CompareFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.CompareFacesOutput, error)
	CreateCollection(ctx context.Context, params *rekognition.CreateCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.CreateCollectionOutput, error)
	DeleteCollection(ctx context.Context, params *rekognition.DeleteCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.DeleteCollectionOutput, error)
	DescribeCollection(ctx context.Context, params *rekognition.DescribeCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.DescribeCollectionOutput, error)
	ListFaces(ctx context.Context, params *rekognition.ListFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.ListFacesOutput, error)
}

type Client struct {
	api            RekognitionAPI
	matchThreshold float32
}

func NewClient(api RekognitionAPI, matchThreshold float32) *Client {
	if matchThreshold <= 0 || matchThreshold > 100 {
		matchThreshold = DefaultMatchThreshold
	}
	return &Client{api: api, matchThreshold: matchThreshold}
}

// NewFromRegion builds the SDK client from the default credential chain.
func NewFromRegion(ctx context.Context, region string, matchThreshold float32) (*Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewClient(rekognition.NewFromConfig(awsCfg), matchThreshold), nil
}

func (c *Client) DetectFaces(ctx context.Context, ref model.ImageRef) (*model.DetectionResult, error) {
	out, err := c.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      toImage(ref),
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return nil, c.fail(ctx, "DetectFaces", ref.Key, err)
	}

	res := &model.DetectionResult{
		FaceDetails:     make([]model.FaceDetail, 0, len(out.FaceDetails)),
		TargetImageName: ref.Key,
	}
	for i := range out.FaceDetails {
		res.FaceDetails = append(res.FaceDetails, *toFaceDetail(&out.FaceDetails[i]))
	}

	logger := mwlogger.LoggerFromContext(ctx)
	logger.Debug().Str("key", ref.Key).Int("faces", len(res.FaceDetails)).Msg("DetectFaces done")
	return res, nil
}

func (c *Client) IndexFaces(ctx context.Context, collectionID string, ref model.ImageRef, externalID string) (*model.IndexResult, error) {
	in := &rekognition.IndexFacesInput{
		CollectionId:        aws.String(collectionID),
		Image:               toImage(ref),
		DetectionAttributes: []types.Attribute{types.AttributeAll},
	}
	if externalID != "" {
		in.ExternalImageId = aws.String(externalID)
	}

	out, err := c.api.IndexFaces(ctx, in)
	if err != nil {
		return nil, c.fail(ctx, "IndexFaces", ref.Key, err)
	}

	res := &model.IndexResult{
		FaceRecords:      make([]model.FaceRecord, 0, len(out.FaceRecords)),
		UnindexedFaces:   len(out.UnindexedFaces),
		FaceModelVersion: aws.ToString(out.FaceModelVersion),
		TargetImageName:  ref.Key,
	}
	for _, fr := range out.FaceRecords {
		rec := model.FaceRecord{FaceDetail: toFaceDetail(fr.FaceDetail)}
		if fr.Face != nil {
			rec.Face = toFace(fr.Face)
		}
		res.FaceRecords = append(res.FaceRecords, rec)
	}

	logger := mwlogger.LoggerFromContext(ctx)
	logger.Debug().Str("key", ref.Key).Str("collection", collectionID).Int("indexed", len(res.FaceRecords)).Msg("IndexFaces done")
	return res, nil
}

func (c *Client) SearchFacesByImage(ctx context.Context, collectionID string, ref model.ImageRef) (*model.SearchResult, error) {
	out, err := c.api.SearchFacesByImage(ctx, &rekognition.SearchFacesByImageInput{
		CollectionId:       aws.String(collectionID),
		Image:              toImage(ref),
		FaceMatchThreshold: aws.Float32(c.matchThreshold),
	})
	if err != nil {
		return nil, c.fail(ctx, "SearchFacesByImage", ref.Key, err)
	}

	res := &model.SearchResult{
		SearchedFaceBoundingBox: toBoundingBox(out.SearchedFaceBoundingBox),
		SearchedFaceConfidence:  aws.ToFloat32(out.SearchedFaceConfidence),
		FaceMatches:             make([]model.FaceMatch, 0, len(out.FaceMatches)),
		TargetImageName:         ref.Key,
	}
	// сервис уже сортирует по убыванию похожести
	for _, m := range out.FaceMatches {
		match := model.FaceMatch{Similarity: aws.ToFloat32(m.Similarity)}
		if m.Face != nil {
			match.Face = toFace(m.Face)
		}
		res.FaceMatches = append(res.FaceMatches, match)
	}
	return res, nil
}

func (c *Client) CompareFaces(ctx context.Context, source []byte, target model.ImageRef) (*model.CompareResult, error) {
	out, err := c.api.CompareFaces(ctx, &rekognition.CompareFacesInput{
		SourceImage: &types.Image{Bytes: source},
		TargetImage: toImage(target),
	})
	if err != nil {
		return nil, c.fail(ctx, "CompareFaces", target.Key, err)
	}

	res := &model.CompareResult{
		FaceMatches:     make([]model.CompareFacesMatch, 0, len(out.FaceMatches)),
		UnmatchedFaces:  make([]model.ComparedFace, 0, len(out.UnmatchedFaces)),
		TargetImageName: target.Key,
	}
	if out.SourceImageFace != nil {
		res.SourceImageFace = &model.ComparedFace{
			BoundingBox: toBoundingBox(out.SourceImageFace.BoundingBox),
			Confidence:  aws.ToFloat32(out.SourceImageFace.Confidence),
		}
	}
	for _, m := range out.FaceMatches {
		match := model.CompareFacesMatch{Similarity: aws.ToFloat32(m.Similarity)}
		if m.Face != nil {
			match.Face = toComparedFace(m.Face)
		}
		res.FaceMatches = append(res.FaceMatches, match)
	}
	for i := range out.UnmatchedFaces {
		res.UnmatchedFaces = append(res.UnmatchedFaces, toComparedFace(&out.UnmatchedFaces[i]))
	}
	return res, nil
}

func (c *Client) CreateCollection(ctx context.Context, collectionID string) (*model.CollectionInfo, error) {
	out, err := c.api.CreateCollection(ctx, &rekognition.CreateCollectionInput{
		CollectionId: aws.String(collectionID),
	})
	if err != nil {
		return nil, c.fail(ctx, "CreateCollection", collectionID, err)
	}
	return c.collectionCreated(ctx, collectionID, out), nil
}

func (c *Client) collectionCreated(ctx context.Context, collectionID string, out *rekognition.CreateCollectionOutput) *model.CollectionInfo {
	logger := mwlogger.LoggerFromContext(ctx)
	logger.Info().Str("collection", collectionID).Str("arn", aws.ToString(out.CollectionArn)).Msg("Collection created")

	return &model.CollectionInfo{
		CollectionID:     collectionID,
		CollectionArn:    aws.ToString(out.CollectionArn),
		FaceModelVersion: aws.ToString(out.FaceModelVersion),
		StatusCode:       aws.ToInt32(out.StatusCode),
		Created:          true,
	}
}

func (c *Client) DeleteCollection(ctx context.Context, collectionID string) error {
	out, err := c.api.DeleteCollection(ctx, &rekognition.DeleteCollectionInput{
		CollectionId: aws.String(collectionID),
	})
	if err != nil {
		return c.fail(ctx, "DeleteCollection", collectionID, err)
	}

	logger := mwlogger.LoggerFromContext(ctx)
	logger.Info().Str("collection", collectionID).Int32("status_code", aws.ToInt32(out.StatusCode)).Msg("Collection deleted")
	return nil
}

// EnsureCollection creates the collection if it is absent. Losing a creation race to another
// invocation counts as success.
func (c *Client) EnsureCollection(ctx context.Context, collectionID string) (*model.CollectionInfo, error) {
	out, err := c.api.DescribeCollection(ctx, &rekognition.DescribeCollectionInput{
		CollectionId: aws.String(collectionID),
	})
	if err == nil {
		return &model.CollectionInfo{
			CollectionID:     collectionID,
			CollectionArn:    aws.ToString(out.CollectionARN),
			FaceModelVersion: aws.ToString(out.FaceModelVersion),
		}, nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return nil, c.fail(ctx, "DescribeCollection", collectionID, err)
	}

	created, err := c.api.CreateCollection(ctx, &rekognition.CreateCollectionInput{
		CollectionId: aws.String(collectionID),
	})
	if err != nil {
		var exists *types.ResourceAlreadyExistsException
		if errors.As(err, &exists) {
			logger := mwlogger.LoggerFromContext(ctx)
			logger.Debug().Str("collection", collectionID).Msg("Collection created concurrently")
			return &model.CollectionInfo{CollectionID: collectionID}, nil
		}
		return nil, c.fail(ctx, "CreateCollection", collectionID, err)
	}
	return c.collectionCreated(ctx, collectionID, created), nil
}

// ListFaces returns every face in the collection, following NextToken until exhausted.
func (c *Client) ListFaces(ctx context.Context, collectionID string) ([]model.Face, error) {
	faces := make([]model.Face, 0)
	var token *string

	for {
		out, err := c.api.ListFaces(ctx, &rekognition.ListFacesInput{
			CollectionId: aws.String(collectionID),
			MaxResults:   aws.Int32(listFacesPageSize),
			NextToken:    token,
		})
		if err != nil {
			return nil, c.fail(ctx, "ListFaces", collectionID, err)
		}

		for i := range out.Faces {
			faces = append(faces, toFace(&out.Faces[i]))
		}

		if aws.ToString(out.NextToken) == "" {
			return faces, nil
		}
		token = out.NextToken
	}
}

// fail логирует ошибку в месте возникновения и оборачивает ее в RecognitionError
func (c *Client) fail(ctx context.Context, op, subject string, err error) error {
	recErr := &model.RecognitionError{Op: op, Code: "UnknownError", Message: err.Error(), Err: err}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		recErr.Code = apiErr.ErrorCode()
		recErr.Message = apiErr.ErrorMessage()
	}

	logger := mwlogger.LoggerFromContext(ctx)
	logger.Error().Err(err).Str("op", op).Str("subject", subject).Str("code", recErr.Code).Msg("Rekognition call failed")

	return recErr
}

func toImage(ref model.ImageRef) *types.Image {
	if ref.Inline() {
		return &types.Image{Bytes: ref.Bytes}
	}
	return &types.Image{
		S3Object: &types.S3Object{
			Bucket: aws.String(ref.Bucket),
			Name:   aws.String(ref.Key),
		},
	}
}
