package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

var fastRetry = retry.Strategy{Delay: time.Millisecond, Backoff: 2}

func TestEventKey(t *testing.T) {
	tests := []struct {
		name    string
		msg     kafkago.Message
		want    string
		wantErr bool
	}{
		{"json event", kafkago.Message{Value: []byte(`{"bucket":"g","key":"a.jpg","uploaded_at":"2024-05-01T12:00:00Z"}`)}, "a.jpg", false},
		{"event wins over key", kafkago.Message{Key: []byte("old.jpg"), Value: []byte(`{"key":"new.jpg"}`)}, "new.jpg", false},
		{"key fallback", kafkago.Message{Key: []byte("b.png")}, "b.png", false},
		{"broken value with key", kafkago.Message{Key: []byte("c.png"), Value: []byte("{oops")}, "c.png", false},
		{"nothing", kafkago.Message{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eventKey(tt.msg)
			if tt.wantErr {
				require.ErrorIs(t, err, model.ErrMalformedInput)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestWorker_handle(t *testing.T) {
	tests := []struct {
		name       string
		msg        kafkago.Message
		indexErr   error
		failures   int
		faces      int
		wantCommit bool
		wantCalls  int
	}{
		{name: "indexed", msg: kafkago.Message{Key: []byte("a.jpg")}, faces: 1, wantCommit: true, wantCalls: 1},
		{name: "no faces still done", msg: kafkago.Message{Key: []byte("a.jpg")}, wantCommit: true, wantCalls: 1},
		{
			name:       "storage down - retried until indexed",
			msg:        kafkago.Message{Key: []byte("a.jpg")},
			indexErr:   fmt.Errorf("%w: timeout", model.ErrStorageUnavailable),
			failures:   2,
			faces:      1,
			wantCommit: true,
			wantCalls:  3,
		},
		{
			name:       "throttled - retried until indexed",
			msg:        kafkago.Message{Key: []byte("a.jpg")},
			indexErr:   &model.RecognitionError{Code: "ThrottlingException"},
			failures:   1,
			wantCommit: true,
			wantCalls:  2,
		},
		{
			name:       "bad image - dropped",
			msg:        kafkago.Message{Key: []byte("a.jpg")},
			indexErr:   &model.RecognitionError{Code: "InvalidImageFormatException"},
			failures:   1,
			wantCommit: true,
			wantCalls:  1,
		},
		{name: "empty event - dropped", msg: kafkago.Message{}, wantCommit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			svc := &mockIndexService{
				indexFn: func(ctx context.Context, key string) (*model.IndexResult, error) {
					require.Equal(t, "a.jpg", key)
					calls++
					if calls <= tt.failures {
						return nil, tt.indexErr
					}
					res := &model.IndexResult{TargetImageName: key}
					for i := 0; i < tt.faces; i++ {
						res.FaceRecords = append(res.FaceRecords, model.FaceRecord{Face: model.Face{FaceID: "f"}})
					}
					return res, nil
				},
			}
			cons := &mockCommitter{}

			NewWorkerInstance(svc, nil, cons, fastRetry).handle(context.Background(), tt.msg)

			require.Equal(t, tt.wantCalls, calls)
			if tt.wantCommit {
				require.Len(t, cons.committed, 1)
			} else {
				require.Empty(t, cons.committed)
			}
		})
	}
}

func TestWorker_handle_ShutdownLeavesUncommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	svc := &mockIndexService{
		indexFn: func(ctx context.Context, key string) (*model.IndexResult, error) {
			calls++
			if calls == 3 {
				cancel()
			}
			return nil, errors.New("network is unreachable")
		},
	}
	cons := &mockCommitter{}

	NewWorkerInstance(svc, nil, cons, fastRetry).handle(ctx, kafkago.Message{Key: []byte("a.jpg"), Offset: 7})

	require.Equal(t, 3, calls)
	require.Empty(t, cons.offsets())
}

// упавшее сообщение не должно пропускаться коммитом следующего offset
func TestWorker_StartWorker(t *testing.T) {
	queue := make(chan kafkago.Message, 3)
	queue <- kafkago.Message{Key: []byte("1.jpg"), Offset: 1}
	queue <- kafkago.Message{Key: []byte("2.jpg"), Offset: 2}
	queue <- kafkago.Message{Key: []byte("3.jpg"), Offset: 3}
	close(queue)

	failed := false
	svc := &mockIndexService{
		indexFn: func(ctx context.Context, key string) (*model.IndexResult, error) {
			if key == "2.jpg" && !failed {
				failed = true
				return nil, errors.New("network is unreachable")
			}
			return &model.IndexResult{TargetImageName: key}, nil
		},
	}
	cons := &mockCommitter{}

	done := make(chan struct{})
	go func() {
		NewWorkerInstance(svc, queue, cons, fastRetry).StartWorker(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after queue was closed")
	}

	require.True(t, failed)
	require.Equal(t, []int64{1, 2, 3}, cons.offsets())
}

func TestWorker_StopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// очередь пустая и не закрыта - выход только по контексту
	NewWorkerInstance(&mockIndexService{}, make(chan kafkago.Message), &mockCommitter{}, fastRetry).StartWorker(ctx)
}

func TestPermanent(t *testing.T) {
	require.True(t, permanent(model.ErrMalformedInput))
	require.True(t, permanent(fmt.Errorf("wrap: %w", &model.RecognitionError{Code: "ImageTooLargeException"})))
	require.False(t, permanent(&model.RecognitionError{Code: "InternalServerError"}))
	require.False(t, permanent(model.ErrStorageUnavailable))
}

func TestNewWorkerInstance_RetryDefaults(t *testing.T) {
	w := NewWorkerInstance(&mockIndexService{}, nil, &mockCommitter{}, retry.Strategy{})
	require.Equal(t, time.Second, w.retry.Delay)
	require.Equal(t, 1.0, w.retry.Backoff)
}
