// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
)

type (
	Status    string
	Operation string
)

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

const (
	OpDetect  Operation = "detect"
	OpIndex   Operation = "index"
	OpSearch  Operation = "search"
	OpCompare Operation = "compare"
)

var OperationsMap = map[Operation]bool{
	OpDetect:  true,
	OpIndex:   true,
	OpSearch:  true,
	OpCompare: true,
}

// ResultField - имя поля в data агрегированного ответа для каждой операции
var ResultField = map[Operation]string{
	OpDetect:  "detectFacesResults",
	OpIndex:   "indexFacesResults",
	OpSearch:  "searchFacesByImageResults",
	OpCompare: "compareFacesResults",
}

//---------------------

type GalleryItem struct {
	Key    string `json:"key"`
	Bucket string `json:"bucket"`
}

// GalleryPage - одна страница листинга бакета
type GalleryPage struct {
	Keys      []string
	NextToken string
	Truncated bool
}

// ImageRef points the recognition service at an image: by store reference or by inline bytes.
// Key is always the gallery key the result gets stitched to.
type ImageRef struct {
	Bucket string
	Key    string
	Bytes  []byte
}

func (r ImageRef) Inline() bool {
	return len(r.Bytes) > 0
}

// ProbeRequest - входные данные вызова
type ProbeRequest struct {
	ImageData       string `json:"ImageData"`
	ExternalImageID string `json:"ExternalImageId,omitempty"`
}

type GalleryUpload struct {
	Data        []byte
	ContentType string
}

type GalleryEvent struct {
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	UploadedAt time.Time `json:"uploaded_at"`
}

//---------------------

type AggregatedResponse struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

type TemplateResponse struct {
	Template string `json:"Template"`
}

type ErrorResponse struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type CollectionInfo struct {
	CollectionID     string `json:"CollectionId"`
	CollectionArn    string `json:"CollectionArn,omitempty"`
	FaceModelVersion string `json:"FaceModelVersion,omitempty"`
	StatusCode       int32  `json:"StatusCode,omitempty"`
	Created          bool   `json:"Created"`
}

// AlgorithmInfo - статичный дескриптор алгоритма
type AlgorithmInfo struct {
	AlgorithmName         string `json:"AlgorithmName"`
	AlgorithmVersion      string `json:"AlgorithmVersion"`
	AlgorithmType         string `json:"AlgorithmType"`
	CompanyName           string `json:"CompanyName"`
	TechnicalContactEmail string `json:"TechnicalContactEmail"`
	RecommendedCPUs       int    `json:"RecommendedCPUs"`
	RecommendedMem        int    `json:"RecommendedMem"`
}

var Descriptor = AlgorithmInfo{
	AlgorithmName:         "AlwaysTrue",
	AlgorithmVersion:      "1.0.1",
	AlgorithmType:         "Face",
	CompanyName:           "MdTF",
	TechnicalContactEmail: "john@mdtf.org",
	RecommendedCPUs:       4,
	RecommendedMem:        2048,
}

// CORSHeaders отдаются на каждый ответ
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "OPTIONS,POST,GET",
}

// ------------------

var (
	ErrCommon500          error = errors.New("something went wrong. Try again later")           // 500
	ErrMalformedInput     error = errors.New("image payload is not a valid base64 JPEG/PNG")     // 400
	ErrNoFaceDetected     error = errors.New("no face detected in the indexed image")           // 422
	ErrStorageUnavailable error = errors.New("gallery storage is unavailable")                  // 503
	ErrRecognitionService error = errors.New("face recognition service call failed")            // 502 by default, see RecognitionError
	ErrIncorrectOp        error = errors.New("operation is not supported")                      // 400
	ErrIncorrectID        error = errors.New("incorrect collection id")                         // 400
	ErrUnsupportedFormat  error = errors.New("unsupported image format, only JPEG/PNG accepted") // 400
)

// RecognitionError carries the remote service error code. It matches ErrRecognitionService via errors.Is.
type RecognitionError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("%s failed: %s: %s", e.Op, e.Code, e.Message)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

func (e *RecognitionError) Is(target error) bool {
	return target == ErrRecognitionService
}

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
)

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
}

var GetCType = map[imaging.Format]string{
	imaging.JPEG: JPEG,
	imaging.PNG:  PNG,
}
