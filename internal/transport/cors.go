package transport

import (
	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/wb-go/wbf/ginext"
)

// CORS - заголовки на каждый ответ
func CORS(ctx *ginext.Context) {
	for k, v := range model.CORSHeaders {
		ctx.Header(k, v)
	}
	ctx.Next()
}

// Preflight отвечает на OPTIONS для любого пути
func Preflight(ctx *ginext.Context) {
	for k, v := range model.CORSHeaders {
		ctx.Header(k, v)
	}
	ctx.AbortWithStatus(204)
}
