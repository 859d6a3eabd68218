package transport

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/require"
)

var corsTriple = map[string]string{
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "OPTIONS,POST,GET",
}

func TestLambdaHandler_Compare(t *testing.T) {
	mock := &mockFaceService{
		compareFn: func(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error) {
			require.Equal(t, "aGVsbG8=", req.ImageData)
			return &model.AggregatedResponse{
				Status:  model.StatusSuccess,
				Message: "",
				Data:    map[string]any{"compareFacesResults": []*model.CompareResult{}},
			}, nil
		},
	}
	h := NewLambdaHandler(mock)

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})
	resp, err := h.Compare(ctx, json.RawMessage(`{"ImageData":"aGVsbG8="}`))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, corsTriple, resp.Headers)
	require.JSONEq(t, `{"status":"SUCCESS","message":"","data":{"compareFacesResults":[]}}`, resp.Body)
}

func TestLambdaHandler_Template(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "direct invocation",
			payload:    `{"ImageData":"aGVsbG8="}`,
			wantStatus: 200,
			wantBody:   `{"Template":"face-1"}`,
		},
		{
			name:       "api gateway proxy",
			payload:    `{"body":"{\"ImageData\":\"aGVsbG8=\"}","isBase64Encoded":false}`,
			wantStatus: 200,
			wantBody:   `{"Template":"face-1"}`,
		},
		{
			name:       "no image data",
			payload:    `{}`,
			wantStatus: 400,
			wantBody:   `{"status":"FAILURE","message":"image payload is not a valid base64 JPEG/PNG","error":"MalformedInput"}`,
		},
		{
			name:       "no face",
			payload:    `{"ImageData":"aGVsbG8="}`,
			err:        model.ErrNoFaceDetected,
			wantStatus: 422,
			wantBody:   `{"status":"FAILURE","message":"no face detected in the indexed image","error":"NoFaceDetected"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockFaceService{
				createTemplateFn: func(ctx context.Context, req *model.ProbeRequest) (*model.TemplateResponse, error) {
					require.Equal(t, "aGVsbG8=", req.ImageData)
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.TemplateResponse{Template: "face-1"}, nil
				},
			}

			resp, err := NewLambdaHandler(mock).Template(context.Background(), json.RawMessage(tt.payload))
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			require.Equal(t, corsTriple, resp.Headers)
			require.JSONEq(t, tt.wantBody, resp.Body)
		})
	}
}

func TestLambdaInfo(t *testing.T) {
	resp, err := Info(context.Background())
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, corsTriple, resp.Headers)
	require.JSONEq(t, `{"AlgorithmName":"AlwaysTrue","AlgorithmVersion":"1.0.1","AlgorithmType":"Face",
		"CompanyName":"MdTF","TechnicalContactEmail":"john@mdtf.org","RecommendedCPUs":4,"RecommendedMem":2048}`, resp.Body)
}

func TestParseInvocation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"direct", `{"ImageData":"abc","ExternalImageId":"cam"}`, false},
		{"proxy", `{"body":"{\"ImageData\":\"abc\"}"}`, false},
		{"empty", ``, true},
		{"not json", `ImageData=abc`, true},
		{"proxy base64 body", `{"body":"eyJJbWFnZURhdGEiOiJhYmMifQ==","isBase64Encoded":true}`, true},
		{"proxy broken body", `{"body":"{oops"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parseInvocation(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.ErrorIs(t, err, model.ErrMalformedInput)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "abc", req.ImageData)
		})
	}
}
