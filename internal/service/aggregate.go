package service

import "github.com/UnendingLoop/FaceGallery/internal/model"

// aggregate packs the ordered batch results under the operation's field; results are never null.
func aggregate[T any](op model.Operation, results []T) *model.AggregatedResponse {
	if results == nil {
		results = []T{}
	}

	return &model.AggregatedResponse{
		Status:  model.StatusSuccess,
		Message: "",
		Data:    map[string]any{model.ResultField[op]: results},
	}
}

// templateOf - первый face id первого результата галереи
func templateOf(results []*model.IndexResult) (*model.TemplateResponse, error) {
	if len(results) == 0 || results[0] == nil || len(results[0].FaceRecords) == 0 {
		return nil, model.ErrNoFaceDetected
	}

	return &model.TemplateResponse{Template: results[0].FaceRecords[0].Face.FaceID}, nil
}
