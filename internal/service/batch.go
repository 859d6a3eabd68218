package service

import (
	"context"
	"fmt"

	"github.com/UnendingLoop/FaceGallery/internal/imageproc"
	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/UnendingLoop/FaceGallery/internal/mwlogger"
	"github.com/UnendingLoop/FaceGallery/internal/recognition"
	"github.com/sourcegraph/conc/pool"
)

// Compare runs CompareFaces of the probe against every gallery image.
func (s *FaceService) Compare(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
	return s.RunBatch(ctx, string(model.OpCompare), req)
}

// RunBatch issues one recognition call per gallery image and joins the results in listing order.
// Any failed call fails the whole batch. The probe is required only for compare.
func (s *FaceService) RunBatch(ctx context.Context, operation string, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	op, err := validateOperation(operation)
	if err != nil {
		return nil, err
	}

	var probe []byte
	if op == model.OpCompare {
		if req == nil {
			return nil, fmt.Errorf("%w: missing payload", model.ErrMalformedInput)
		}
		if probe, err = imageproc.PrepareProbe(req.ImageData); err != nil {
			logger.Warn().Err(err).Msg("Rejected probe image")
			return nil, err
		}
	}

	if op == model.OpIndex || op == model.OpSearch {
		if _, err := s.recognizer.EnsureCollection(ctx, s.collectionID); err != nil {
			return nil, err
		}
	}

	items, err := s.listGallery(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("operation", string(op)).Int("gallery_size", len(items)).Msg("Starting batch")

	switch op {
	case model.OpDetect:
		res, err := fanOut(ctx, s.maxInFlight, items, func(ctx context.Context, item model.GalleryItem) (*model.DetectionResult, error) {
			ref, err := s.resolveRef(ctx, item.Key)
			if err != nil {
				return nil, err
			}
			return s.recognizer.DetectFaces(ctx, ref)
		})
		return batchResponse(ctx, op, res, err)

	case model.OpIndex:
		res, err := fanOut(ctx, s.maxInFlight, items, s.indexItem)
		return batchResponse(ctx, op, res, err)

	case model.OpSearch:
		res, err := fanOut(ctx, s.maxInFlight, items, func(ctx context.Context, item model.GalleryItem) (*model.SearchResult, error) {
			ref, err := s.resolveRef(ctx, item.Key)
			if err != nil {
				return nil, err
			}
			return s.recognizer.SearchFacesByImage(ctx, s.collectionID, ref)
		})
		return batchResponse(ctx, op, res, err)

	default: // compare
		res, err := fanOut(ctx, s.maxInFlight, items, func(ctx context.Context, item model.GalleryItem) (*model.CompareResult, error) {
			ref, err := s.resolveRef(ctx, item.Key)
			if err != nil {
				return nil, err
			}
			return s.recognizer.CompareFaces(ctx, probe, ref)
		})
		return batchResponse(ctx, op, res, err)
	}
}

// CreateTemplate indexes the probe first, then every gallery image, and returns the face id
// of the first gallery image's first indexed face.
func (s *FaceService) CreateTemplate(ctx context.Context, req *model.ProbeRequest) (*model.TemplateResponse, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if req == nil {
		return nil, fmt.Errorf("%w: missing payload", model.ErrMalformedInput)
	}
	probe, err := imageproc.PrepareProbe(req.ImageData)
	if err != nil {
		logger.Warn().Err(err).Msg("Rejected probe image")
		return nil, err
	}

	if _, err := s.recognizer.EnsureCollection(ctx, s.collectionID); err != nil {
		return nil, err
	}

	// проба индексируется строго до галереи
	probeID := s.probeExternalID(req)
	if _, err := s.recognizer.IndexFaces(ctx, s.collectionID, model.ImageRef{Key: probeID, Bytes: probe}, probeID); err != nil {
		return nil, err
	}

	items, err := s.listGallery(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: gallery is empty", model.ErrNoFaceDetected)
	}

	results, err := fanOut(ctx, s.maxInFlight, items, s.indexItem)
	if err != nil {
		return nil, err
	}

	tmpl, err := templateOf(results)
	if err != nil {
		logger.Warn().Str("key", items[0].Key).Msg("No face indexed in the first gallery image")
		return nil, err
	}

	logger.Info().Str("template", tmpl.Template).Int("gallery_size", len(items)).Msg("Template created")
	return tmpl, nil
}

func (s *FaceService) indexItem(ctx context.Context, item model.GalleryItem) (*model.IndexResult, error) {
	ref, err := s.resolveRef(ctx, item.Key)
	if err != nil {
		return nil, err
	}
	return s.recognizer.IndexFaces(ctx, s.collectionID, ref, recognition.ExternalID(item.Key))
}

// listGallery walks all ListObjectsV2 pages. A listing failure is never treated as an empty gallery.
func (s *FaceService) listGallery(ctx context.Context) ([]model.GalleryItem, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	items := make([]model.GalleryItem, 0)
	bucket := s.storage.Bucket()
	token := ""

	for {
		page, err := s.storage.ListPage(ctx, token)
		if err != nil {
			logger.Error().Err(err).Str("bucket", bucket).Msg("Failed to list gallery")
			return nil, fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
		}

		for _, key := range page.Keys {
			items = append(items, model.GalleryItem{Key: key, Bucket: bucket})
		}

		if !page.Truncated || page.NextToken == "" {
			return items, nil
		}
		token = page.NextToken
	}
}

// fanOut runs call for every item with at most limit calls in flight.
// Results keep the items order; the first error cancels the rest and is returned.
func fanOut[T any](ctx context.Context, limit int, items []model.GalleryItem, call func(context.Context, model.GalleryItem) (T, error)) ([]T, error) {
	results := make([]T, len(items))
	if len(items) == 0 {
		return results, nil
	}

	p := pool.New().
		WithMaxGoroutines(limit).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i, item := range items {
		p.Go(func(ctx context.Context) error {
			res, err := call(ctx, item)
			if err != nil {
				return err
			}
			results[i] = res // каждая горутина пишет только в свой индекс
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func batchResponse[T any](ctx context.Context, op model.Operation, results []T, err error) (*model.AggregatedResponse, error) {
	if err != nil {
		logger := mwlogger.LoggerFromContext(ctx)
		logger.Error().Err(err).Str("operation", string(op)).Msg("Batch failed")
		return nil, err
	}
	return aggregate(op, results), nil
}
