package worker

import (
	"context"
	"sync"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	kafkago "github.com/segmentio/kafka-go"
)

type mockIndexService struct {
	indexFn func(ctx context.Context, key string) (*model.IndexResult, error)
}

func (m *mockIndexService) IndexGalleryImage(ctx context.Context, key string) (*model.IndexResult, error) {
	return m.indexFn(ctx, key)
}

//----------------------------------

type mockCommitter struct {
	mu        sync.Mutex
	committed []kafkago.Message
	err       error
}

func (m *mockCommitter) Commit(ctx context.Context, msg kafkago.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msg)
	return m.err
}

func (m *mockCommitter) offsets() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]int64, 0, len(m.committed))
	for _, msg := range m.committed {
		res = append(res, msg.Offset)
	}
	return res
}
