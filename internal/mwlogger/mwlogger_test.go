package mwlogger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMWLogger_KeepsIncomingRequestID(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		require.NotNil(t, r.Context().Value(loggerWithRequestID{}))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()

	NewMWLogger(next).ServeHTTP(w, req)

	require.True(t, called)
	require.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestNewMWLogger_GeneratesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	NewMWLogger(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(w, req)

	require.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestWithInvocation(t *testing.T) {
	ctx := WithInvocation(context.Background(), "", "compare")
	require.NotNil(t, ctx.Value(loggerWithRequestID{}))
}
