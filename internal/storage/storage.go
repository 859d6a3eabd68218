// Package storage connects to the gallery store
package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/UnendingLoop/FaceGallery/internal/config"
	"github.com/UnendingLoop/FaceGallery/internal/storage/miniostorage"
)

// NewGalleryStorage tries to connect up to attempts times; attempts <= 0 means retry until ctx is done.
func NewGalleryStorage(ctx context.Context, cfg *config.AppConfig, attempts int, delay time.Duration) (*miniostorage.MinioGalleryStorage, error) {
	var lastErr error

	for i := 1; attempts <= 0 || i <= attempts; i++ {
		log.Println("Connecting to gallery storage...")
		client, err := miniostorage.NewMinioClient(cfg)
		if err == nil {
			log.Println("Successfully connected gallery storage!")
			return client, nil
		}

		lastErr = err
		if i == attempts {
			break
		}
		log.Printf("Failed to init connection to gallery storage: %v\nNext retry in %v...", err, delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("gallery storage unreachable after %d attempts: %w", attempts, lastErr)
}
