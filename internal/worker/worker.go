// Package worker contains the gallery indexer: it consumes gallery-upload events and indexes new images into the collection
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/UnendingLoop/FaceGallery/internal/mwlogger"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
)

// maxRetryDelay - потолок паузы между повторами одного сообщения
const maxRetryDelay = time.Minute

type GalleryIndexService interface {
	IndexGalleryImage(ctx context.Context, key string) (*model.IndexResult, error)
}

// Committer - у wbf-консьюмера нам нужен только Commit
type Committer interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

type Worker struct {
	service  GalleryIndexService
	queue    <-chan kafkago.Message
	consumer Committer
	retry    retry.Strategy
}

// NewWorkerInstance - strategy задает паузу и множитель между повторами; Attempts не ограничивает повторы,
// сообщение повторяется до успеха или остановки воркера.
func NewWorkerInstance(svc GalleryIndexService, q <-chan kafkago.Message, cons Committer, strategy retry.Strategy) *Worker {
	if strategy.Delay <= 0 {
		strategy.Delay = time.Second
	}
	if strategy.Backoff < 1 {
		strategy.Backoff = 1
	}
	return &Worker{service: svc, queue: q, consumer: cons, retry: strategy}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			w.handle(ctx, msg)
		}
	}
}

// handle commits the message after a successful indexing or when retrying it cannot help.
// Transient failures are retried in place: committing any later offset of the partition
// would move the group past this message.
func (w *Worker) handle(ctx context.Context, msg kafkago.Message) {
	ctx = mwlogger.WithInvocation(ctx, "", "index")
	logger := mwlogger.LoggerFromContext(ctx)

	key, err := eventKey(msg)
	if err == nil {
		err = w.indexWithRetry(ctx, key, msg.Offset)
	}

	if err != nil {
		if !permanent(err) {
			logger.Warn().Err(err).Str("key", key).Int64("offset", msg.Offset).Msg("Worker stopped, message left uncommitted")
			return
		}
		logger.Error().Err(err).Str("key", key).Int64("offset", msg.Offset).Msg("Dropping unprocessable gallery event")
	}

	if err := w.consumer.Commit(ctx, msg); err != nil {
		logger.Error().Err(err).Msg("Failed to commit queue-message")
	}
}

// indexWithRetry returns nil, a permanent error, or a context error once the worker is stopping.
func (w *Worker) indexWithRetry(ctx context.Context, key string, offset int64) error {
	logger := mwlogger.LoggerFromContext(ctx)
	delay := w.retry.Delay

	for attempt := 1; ; attempt++ {
		err := w.indexImage(ctx, key)
		if err == nil || permanent(err) {
			return err
		}
		logger.Error().Err(err).Str("key", key).Int64("offset", offset).Int("attempt", attempt).
			Msg(fmt.Sprintf("Indexing failed, next retry in %v", delay))

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ctx.Err(), err)
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * w.retry.Backoff)
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

func (w *Worker) indexImage(ctx context.Context, key string) error {
	res, err := w.service.IndexGalleryImage(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to index gallery image %q: %w", key, err)
	}

	logger := mwlogger.LoggerFromContext(ctx)
	if len(res.FaceRecords) == 0 {
		logger.Warn().Str("key", key).Int("unindexed", res.UnindexedFaces).Msg("No faces indexed from gallery image")
		return nil
	}
	logger.Info().Str("key", key).Int("faces", len(res.FaceRecords)).Msg("Gallery image indexed")
	return nil
}

// eventKey - ключ из json-события, для старых сообщений без тела - ключ сообщения
func eventKey(msg kafkago.Message) (string, error) {
	if len(msg.Value) > 0 {
		var ev model.GalleryEvent
		if err := json.Unmarshal(msg.Value, &ev); err == nil && ev.Key != "" {
			return ev.Key, nil
		}
	}

	if len(msg.Key) > 0 {
		return string(msg.Key), nil
	}

	return "", fmt.Errorf("%w: gallery event without key", model.ErrMalformedInput)
}

// permanent - повтор не поможет: битая картинка или битое событие
func permanent(err error) bool {
	if errors.Is(err, model.ErrMalformedInput) || errors.Is(err, model.ErrUnsupportedFormat) {
		return true
	}

	var recErr *model.RecognitionError
	if errors.As(err, &recErr) {
		switch recErr.Code {
		case "InvalidParameterException", "InvalidImageFormatException", "ImageTooLargeException", "InvalidS3ObjectException":
			return true
		}
	}
	return false
}
