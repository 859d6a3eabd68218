// Package mwlogger provides per-invocation logging: every HTTP request or Lambda invocation gets its own logger in the context
package mwlogger

import (
	"context"
	"net/http"

	"github.com/wb-go/wbf/helpers"
	"github.com/wb-go/wbf/zlog"
)

type loggerWithRequestID struct{}

const RequestIDHeader = "X-Request-Id"

// NewMWLogger - обёртка для логирования запросов с присвоением UUID каждому запросу и пробросу логгера в контекст запроса
func NewMWLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Fetching/generating UUID for request
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = helpers.CreateUUID()
		}
		w.Header().Set(RequestIDHeader, reqID)

		logger := zlog.Logger.With().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		ctx := context.WithValue(r.Context(), loggerWithRequestID{}, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithInvocation кладет в контекст логгер для одного вызова лямбды
func WithInvocation(ctx context.Context, invocationID, workflow string) context.Context {
	if invocationID == "" {
		invocationID = helpers.CreateUUID()
	}

	logger := zlog.Logger.With().
		Str("request_id", invocationID).
		Str("workflow", workflow).
		Logger()

	return context.WithValue(ctx, loggerWithRequestID{}, logger)
}

// LoggerFromContext extracts logger from context - used in service-layer
func LoggerFromContext(ctx context.Context) zlog.Zerolog {
	if l, ok := ctx.Value(loggerWithRequestID{}).(zlog.Zerolog); ok {
		return l
	}
	return zlog.Logger
}
