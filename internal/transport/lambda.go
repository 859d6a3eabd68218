package transport

import (
	"context"
	"encoding/json"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/UnendingLoop/FaceGallery/internal/mwlogger"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// LambdaService - то, что нужно лямбде от сервиса
type LambdaService interface {
	Compare(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error)
	CreateTemplate(ctx context.Context, req *model.ProbeRequest) (*model.TemplateResponse, error)
}

// LambdaHandler serves the direct Lambda invocations. Failures are reported in the response
// envelope, so the returned error is always nil.
type LambdaHandler struct {
	service LambdaService
}

func NewLambdaHandler(svc LambdaService) *LambdaHandler {
	return &LambdaHandler{service: svc}
}

// apiGatewayBody - при вызове через API Gateway payload лежит строкой в body
type apiGatewayBody struct {
	Body            string `json:"body"`
	IsBase64Encoded bool   `json:"isBase64Encoded"`
}

func (h LambdaHandler) Compare(ctx context.Context, raw json.RawMessage) (events.APIGatewayProxyResponse, error) {
	ctx = invocationContext(ctx, "compare")

	req, err := parseInvocation(raw)
	if err != nil {
		return lambdaError(err), nil
	}

	res, err := h.service.Compare(ctx, req)
	if err != nil {
		return lambdaError(err), nil
	}
	return lambdaJSON(200, res), nil
}

func (h LambdaHandler) Template(ctx context.Context, raw json.RawMessage) (events.APIGatewayProxyResponse, error) {
	ctx = invocationContext(ctx, "template")

	req, err := parseInvocation(raw)
	if err != nil {
		return lambdaError(err), nil
	}

	res, err := h.service.CreateTemplate(ctx, req)
	if err != nil {
		return lambdaError(err), nil
	}
	return lambdaJSON(200, res), nil
}

// Info не ходит ни в хранилище, ни в Rekognition
func Info(ctx context.Context) (events.APIGatewayProxyResponse, error) {
	return lambdaJSON(200, model.Descriptor), nil
}

func invocationContext(ctx context.Context, workflow string) context.Context {
	var requestID string
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		requestID = lc.AwsRequestID
	}
	return mwlogger.WithInvocation(ctx, requestID, workflow)
}

// parseInvocation accepts the bare {"ImageData": ...} event as well as an API Gateway proxy event.
func parseInvocation(raw json.RawMessage) (*model.ProbeRequest, error) {
	if len(raw) == 0 {
		return nil, model.ErrMalformedInput
	}

	var req model.ProbeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, model.ErrMalformedInput
	}
	if req.ImageData != "" {
		return &req, nil
	}

	var proxy apiGatewayBody
	if err := json.Unmarshal(raw, &proxy); err != nil || proxy.Body == "" || proxy.IsBase64Encoded {
		return nil, model.ErrMalformedInput
	}
	if err := json.Unmarshal([]byte(proxy.Body), &req); err != nil {
		return nil, model.ErrMalformedInput
	}
	return &req, nil
}

func lambdaJSON(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = 500
		body, _ = json.Marshal(errorResponse(model.ErrCommon500))
	}

	headers := make(map[string]string, len(model.CORSHeaders))
	for k, v := range model.CORSHeaders {
		headers[k] = v
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

func lambdaError(err error) events.APIGatewayProxyResponse {
	return lambdaJSON(errorCodeDefiner(err), errorResponse(err))
}
