package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func wrap(fn func(*ginext.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		fn((*ginext.Context)(c))
	}
}

func newRouter(h *FaceHandler) *gin.Engine {
	r := gin.New()
	r.Use(wrap(CORS))
	r.OPTIONS("/*path", wrap(Preflight))

	r.GET("/ping", wrap(h.SimplePinger))
	r.GET("/info", wrap(h.Info))
	r.POST("/faces/compare", wrap(h.Compare))
	r.POST("/faces/template", wrap(h.Template))
	r.POST("/faces/batch/:operation", wrap(h.Batch))
	r.POST("/collections/:id", wrap(h.CreateCollection))
	r.DELETE("/collections/:id", wrap(h.DeleteCollection))
	r.GET("/collections/:id/faces", wrap(h.ListFaces))
	r.POST("/gallery", wrap(h.UploadGallery))
	return r
}

func requireCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "OPTIONS,POST,GET", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestFaceHandler_Ping(t *testing.T) {
	r := newRouter(NewFaceHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "pong", body["message"])
}

func TestFaceHandler_Info(t *testing.T) {
	r := newRouter(NewFaceHandler(nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))

	require.Equal(t, 200, w.Code)
	requireCORS(t, w)
	require.JSONEq(t, `{
		"AlgorithmName": "AlwaysTrue",
		"AlgorithmVersion": "1.0.1",
		"AlgorithmType": "Face",
		"CompanyName": "MdTF",
		"TechnicalContactEmail": "john@mdtf.org",
		"RecommendedCPUs": 4,
		"RecommendedMem": 2048
	}`, w.Body.String())
}

func TestFaceHandler_Preflight(t *testing.T) {
	r := newRouter(NewFaceHandler(nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/faces/compare", nil))

	require.Equal(t, 204, w.Code)
	requireCORS(t, w)
}

func TestFaceHandler_Compare(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mock       *mockFaceService
		wantStatus int
		wantTag    string
	}{
		{
			name: "success",
			body: `{"ImageData":"aGVsbG8="}`,
			mock: &mockFaceService{
				compareFn: func(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
					require.Equal(t, "aGVsbG8=", req.ImageData)
					return &model.AggregatedResponse{
						Status: model.StatusSuccess,
						Data:   map[string]any{"compareFacesResults": []*model.CompareResult{{TargetImageName: "a.jpg"}}},
					}, nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "broken json",
			body:       `{"ImageData":`,
			mock:       &mockFaceService{},
			wantStatus: 400,
			wantTag:    TagMalformedInput,
		},
		{
			name: "malformed image",
			body: `{"ImageData":"???"}`,
			mock: &mockFaceService{
				compareFn: func(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
					return nil, fmt.Errorf("%w: bad base64", model.ErrMalformedInput)
				},
			},
			wantStatus: 400,
			wantTag:    TagMalformedInput,
		},
		{
			name: "storage unavailable",
			body: `{"ImageData":"aGVsbG8="}`,
			mock: &mockFaceService{
				compareFn: func(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
					return nil, fmt.Errorf("%w: dial tcp", model.ErrStorageUnavailable)
				},
			},
			wantStatus: 503,
			wantTag:    TagStorageUnavailable,
		},
		{
			name: "recognition throttled",
			body: `{"ImageData":"aGVsbG8="}`,
			mock: &mockFaceService{
				compareFn: func(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
					return nil, &model.RecognitionError{Op: "CompareFaces", Code: "ThrottlingException", Message: "slow down"}
				},
			},
			wantStatus: 429,
			wantTag:    TagRecognitionError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(NewFaceHandler(tt.mock))

			req := httptest.NewRequest(http.MethodPost, "/faces/compare", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
			requireCORS(t, w)

			if tt.wantTag != "" {
				var body model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, model.StatusFailure, body.Status)
				require.Equal(t, tt.wantTag, body.Error)
				require.NotEmpty(t, body.Message)
			}
		})
	}
}

func TestFaceHandler_Template(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "success", wantStatus: 200, wantBody: `{"Template":"face-1"}`},
		{name: "no face", err: model.ErrNoFaceDetected, wantStatus: 422},
		{name: "unexpected", err: fmt.Errorf("boom"), wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockFaceService{
				createTemplateFn: func(ctx context.Context, req *model.ProbeRequest) (*model.TemplateResponse, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.TemplateResponse{Template: "face-1"}, nil
				},
			}
			r := newRouter(NewFaceHandler(mock))

			req := httptest.NewRequest(http.MethodPost, "/faces/template", strings.NewReader(`{"ImageData":"aGVsbG8="}`))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				require.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestFaceHandler_Batch(t *testing.T) {
	var gotOp string
	var gotReq *model.ProbeRequest
	mock := &mockFaceService{
		runBatchFn: func(ctx context.Context, operation string, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
			gotOp, gotReq = operation, req
			if operation == "morph" {
				return nil, model.ErrIncorrectOp
			}
			return &model.AggregatedResponse{Status: model.StatusSuccess, Data: map[string]any{"detectFacesResults": []any{}}}, nil
		},
	}
	r := newRouter(NewFaceHandler(mock))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/faces/batch/detect", nil))
	require.Equal(t, 200, w.Code)
	require.Equal(t, "detect", gotOp)
	require.Nil(t, gotReq)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/faces/batch/compare", strings.NewReader(`{"ImageData":"aGVsbG8="}`)))
	require.Equal(t, 200, w.Code)
	require.NotNil(t, gotReq)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/faces/batch/morph", nil))
	require.Equal(t, 400, w.Code)

	// compare без тела - 400 еще до сервиса
	gotOp = ""
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/faces/batch/compare", nil))
	require.Equal(t, 400, w.Code)
	require.Empty(t, gotOp)
}

func TestFaceHandler_Batch_ChunkedEmptyBody(t *testing.T) {
	var gotReq *model.ProbeRequest
	called := false
	mock := &mockFaceService{
		runBatchFn: func(ctx context.Context, operation string, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
			called, gotReq = true, req
			return &model.AggregatedResponse{Status: model.StatusSuccess, Data: map[string]any{}}, nil
		},
	}
	r := newRouter(NewFaceHandler(mock))

	for _, op := range []string{"detect", "index", "search"} {
		t.Run(op, func(t *testing.T) {
			called, gotReq = false, nil

			req := httptest.NewRequest(http.MethodPost, "/faces/batch/"+op, strings.NewReader(""))
			req.ContentLength = -1
			req.Header.Set("Transfer-Encoding", "chunked")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, 200, w.Code)
			require.True(t, called)
			require.Nil(t, gotReq)
		})
	}
}

func TestFaceHandler_Collections(t *testing.T) {
	notFound := &model.RecognitionError{Op: "DeleteCollection", Code: "ResourceNotFoundException"}
	exists := &model.RecognitionError{Op: "CreateCollection", Code: "ResourceAlreadyExistsException"}

	mock := &mockFaceService{
		createCollectionFn: func(ctx context.Context, id string) (*model.CollectionInfo, error) {
			if id == "taken" {
				return nil, exists
			}
			return &model.CollectionInfo{CollectionID: id, Created: true}, nil
		},
		deleteCollectionFn: func(ctx context.Context, id string) error {
			if id == "missing" {
				return notFound
			}
			return nil
		},
		listFacesFn: func(ctx context.Context, id string) ([]model.Face, error) {
			return []model.Face{{FaceID: "f1", ExternalImageID: "a.jpg"}}, nil
		},
	}
	r := newRouter(NewFaceHandler(mock))

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodPost, "/collections/team", 201},
		{http.MethodPost, "/collections/taken", 409},
		{http.MethodDelete, "/collections/team", 204},
		{http.MethodDelete, "/collections/missing", 404},
		{http.MethodGet, "/collections/team/faces", 200},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func newMultipartRequest(t *testing.T, files map[string][]byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, content := range files {
		fw, err := w.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/gallery", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestFaceHandler_UploadGallery(t *testing.T) {
	tests := []struct {
		name       string
		req        *http.Request
		mock       *mockFaceService
		wantStatus int
	}{
		{
			name: "success",
			req:  newMultipartRequest(t, map[string][]byte{"image": []byte("png-bytes")}),
			mock: &mockFaceService{
				addGalleryImageFn: func(ctx context.Context, upload *model.GalleryUpload) (*model.GalleryItem, error) {
					require.Equal(t, []byte("png-bytes"), upload.Data)
					return &model.GalleryItem{Key: "k.png", Bucket: "gallery"}, nil
				},
			},
			wantStatus: 201,
		},
		{
			name:       "missing image",
			req:        newMultipartRequest(t, nil),
			mock:       &mockFaceService{},
			wantStatus: 400,
		},
		{
			name: "unsupported format",
			req:  newMultipartRequest(t, map[string][]byte{"image": []byte("gif")}),
			mock: &mockFaceService{
				addGalleryImageFn: func(ctx context.Context, upload *model.GalleryUpload) (*model.GalleryItem, error) {
					return nil, model.ErrUnsupportedFormat
				},
			},
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(NewFaceHandler(tt.mock))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req)

			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestErrorCodeDefiner(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrCommon500, 500},
		{model.ErrMalformedInput, 400},
		{model.ErrIncorrectID, 400},
		{model.ErrNoFaceDetected, 422},
		{fmt.Errorf("%w: x", model.ErrStorageUnavailable), 503},
		{&model.RecognitionError{Code: "InvalidImageFormatException"}, 400},
		{&model.RecognitionError{Code: "InvalidS3ObjectException"}, 400},
		{&model.RecognitionError{Code: "ResourceNotFoundException"}, 404},
		{&model.RecognitionError{Code: "ResourceAlreadyExistsException"}, 409},
		{&model.RecognitionError{Code: "ProvisionedThroughputExceededException"}, 429},
		{&model.RecognitionError{Code: "InternalServerError"}, 502},
		{fmt.Errorf("wrapped: %w", &model.RecognitionError{Code: "LimitExceededException"}), 429},
		{model.ErrRecognitionService, 502},
		{fmt.Errorf("unknown"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, errorCodeDefiner(tt.err))
		})
	}
}
