// Package transport provides methods for processing requests from endpoints and Lambda invocations
package transport

import (
	"context"
	"io"
	"strings"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/wb-go/wbf/ginext"
)

// максимальный размер загружаемого в галерею файла
const maxUploadBytes = 15 << 20

type FaceHandler struct {
	service FaceService
}

type FaceService interface {
	Compare(ctx context.Context, req *model.ProbeRequest) (*model.AggregatedResponse, error)
	RunBatch(ctx context.Context, operation string, req *model.ProbeRequest) (*model.AggregatedResponse, error)
	CreateTemplate(ctx context.Context, req *model.ProbeRequest) (*model.TemplateResponse, error)
	CreateCollection(ctx context.Context, id string) (*model.CollectionInfo, error)
	DeleteCollection(ctx context.Context, id string) error
	ListFaces(ctx context.Context, id string) ([]model.Face, error)
	AddGalleryImage(ctx context.Context, upload *model.GalleryUpload) (*model.GalleryItem, error)
}

func NewFaceHandler(svc FaceService) *FaceHandler {
	return &FaceHandler{
		service: svc,
	}
}

func (h FaceHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

// Info - статичный дескриптор алгоритма
func (h FaceHandler) Info(ctx *ginext.Context) {
	ctx.JSON(200, model.Descriptor)
}

func (h FaceHandler) Compare(ctx *ginext.Context) {
	req, ok := bindProbe(ctx)
	if !ok {
		return
	}

	res, err := h.service.Compare(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), errorResponse(err))
		return
	}

	ctx.JSON(200, res)
}

func (h FaceHandler) Template(ctx *ginext.Context) {
	req, ok := bindProbe(ctx)
	if !ok {
		return
	}

	res, err := h.service.CreateTemplate(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), errorResponse(err))
		return
	}

	ctx.JSON(200, res)
}

// Batch - detect|index|search|compare по всей галерее; тело нужно только для compare
func (h FaceHandler) Batch(ctx *ginext.Context) {
	operation := ctx.Param("operation")

	// у chunked-запроса ContentLength = -1 даже без тела, поэтому решаем по операции
	var req *model.ProbeRequest
	if model.Operation(strings.ToLower(strings.TrimSpace(operation))) == model.OpCompare {
		var ok bool
		if req, ok = bindProbe(ctx); !ok {
			return
		}
	}

	res, err := h.service.RunBatch(ctx.Request.Context(), operation, req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), errorResponse(err))
		return
	}

	ctx.JSON(200, res)
}

func (h FaceHandler) CreateCollection(ctx *ginext.Context) {
	res, err := h.service.CreateCollection(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), errorResponse(err))
		return
	}

	ctx.JSON(201, res)
}

func (h FaceHandler) DeleteCollection(ctx *ginext.Context) {
	if err := h.service.DeleteCollection(ctx.Request.Context(), ctx.Param("id")); err != nil {
		ctx.JSON(errorCodeDefiner(err), errorResponse(err))
		return
	}

	ctx.Status(204)
}

func (h FaceHandler) ListFaces(ctx *ginext.Context) {
	res, err := h.service.ListFaces(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), errorResponse(err))
		return
	}

	ctx.JSON(200, map[string]any{"Faces": res})
}

func (h FaceHandler) UploadGallery(ctx *ginext.Context) {
	imageFile, imageHeader, err := ctx.Request.FormFile("image")
	if err != nil {
		ctx.JSON(400, errorResponse(model.ErrMalformedInput))
		return
	}
	defer closeFileFlow(imageFile)

	if imageHeader.Size > maxUploadBytes {
		ctx.JSON(413, errorResponse(model.ErrMalformedInput))
		return
	}

	data, err := io.ReadAll(imageFile)
	if err != nil {
		ctx.JSON(400, errorResponse(model.ErrMalformedInput))
		return
	}

	res, err := h.service.AddGalleryImage(ctx.Request.Context(), &model.GalleryUpload{
		Data:        data,
		ContentType: imageHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), errorResponse(err))
		return
	}

	ctx.JSON(201, res)
}

func bindProbe(ctx *ginext.Context) (*model.ProbeRequest, bool) {
	var req model.ProbeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, errorResponse(model.ErrMalformedInput))
		return nil, false
	}
	return &req, true
}
