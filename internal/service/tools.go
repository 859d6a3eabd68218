package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/UnendingLoop/FaceGallery/internal/recognition"
)

// алфавит и длина id коллекции по правилам Rekognition
var collectionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{1,255}$`)

func validateCollectionID(id string) error {
	if !collectionIDPattern.MatchString(id) {
		return model.ErrIncorrectID
	}
	return nil
}

func validateOperation(raw string) (model.Operation, error) {
	op := model.Operation(strings.ToLower(strings.TrimSpace(raw)))
	if !model.OperationsMap[op] {
		return "", model.ErrIncorrectOp
	}
	return op, nil
}

// probeExternalID - id от клиента, либо unix-время в миллисекундах
func (s *FaceService) probeExternalID(req *model.ProbeRequest) string {
	if id := recognition.ExternalID(strings.TrimSpace(req.ExternalImageID)); id != "" {
		return id
	}
	return strconv.FormatInt(s.now().UnixMilli(), 10)
}
