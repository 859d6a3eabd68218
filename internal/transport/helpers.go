package transport

import (
	"errors"
	"io"
	"log"

	"github.com/UnendingLoop/FaceGallery/internal/model"
)

// Теги таксономии ошибок в поле error ответа
const (
	TagMalformedInput     = "MalformedInput"
	TagNoFaceDetected     = "NoFaceDetected"
	TagStorageUnavailable = "StorageUnavailable"
	TagRecognitionError   = "RecognitionServiceError"
	TagInternal           = "Internal"
)

func errorCodeDefiner(err error) int {
	var recErr *model.RecognitionError

	switch {
	case errors.Is(err, model.ErrCommon500):
		return 500
	case errors.Is(err, model.ErrMalformedInput),
		errors.Is(err, model.ErrUnsupportedFormat),
		errors.Is(err, model.ErrIncorrectOp),
		errors.Is(err, model.ErrIncorrectID):
		return 400
	case errors.Is(err, model.ErrNoFaceDetected):
		return 422
	case errors.Is(err, model.ErrStorageUnavailable):
		return 503
	case errors.As(err, &recErr):
		return recognitionCode(recErr.Code)
	case errors.Is(err, model.ErrRecognitionService):
		return 502
	default:
		return 500
	}
}

// recognitionCode - код ответа по коду ошибки Rekognition
func recognitionCode(code string) int {
	switch code {
	case "InvalidParameterException",
		"InvalidImageFormatException",
		"ImageTooLargeException",
		"InvalidS3ObjectException":
		return 400
	case "ResourceNotFoundException":
		return 404
	case "ResourceAlreadyExistsException":
		return 409
	case "ThrottlingException",
		"ProvisionedThroughputExceededException",
		"LimitExceededException":
		return 429
	default:
		return 502
	}
}

func errorTag(err error) string {
	switch {
	case errors.Is(err, model.ErrMalformedInput),
		errors.Is(err, model.ErrUnsupportedFormat),
		errors.Is(err, model.ErrIncorrectOp),
		errors.Is(err, model.ErrIncorrectID):
		return TagMalformedInput
	case errors.Is(err, model.ErrNoFaceDetected):
		return TagNoFaceDetected
	case errors.Is(err, model.ErrStorageUnavailable):
		return TagStorageUnavailable
	case errors.Is(err, model.ErrRecognitionService):
		return TagRecognitionError
	default:
		return TagInternal
	}
}

func errorResponse(err error) model.ErrorResponse {
	tag := errorTag(err)

	msg := err.Error()
	if tag == TagInternal {
		msg = model.ErrCommon500.Error() // внутренние детали наружу не отдаем
	}

	return model.ErrorResponse{
		Status:  model.StatusFailure,
		Message: msg,
		Error:   tag,
	}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}
