package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/FaceGallery/internal/config"
	"github.com/UnendingLoop/FaceGallery/internal/kafka"
	"github.com/UnendingLoop/FaceGallery/internal/recognition"
	"github.com/UnendingLoop/FaceGallery/internal/service"
	"github.com/UnendingLoop/FaceGallery/internal/storage"
	"github.com/UnendingLoop/FaceGallery/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig, err := config.Load("./.env")
	if err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}
	if !appConfig.EventsEnabled() {
		log.Fatal("KAFKA_BROKER is required for the gallery indexer")
	}

	zlog.InitConsole()
	if err := zlog.SetLevel(appConfig.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к хранилищу галереи
	strg, err := storage.NewGalleryStorage(ctx, appConfig, 0, 10*time.Second)
	if err != nil {
		log.Fatalf("Gallery storage unavailable: %v", err)
	}
	rec, err := recognition.NewFromRegion(ctx, appConfig.AWSRegion, appConfig.MatchThreshold)
	if err != nil {
		log.Fatalf("Failed to init Rekognition client: %v", err)
	}
	// создаем экземпляр сервиса - публиковать воркеру нечего
	var svc GalleryWorkerService = service.NewFaceService(appConfig, rec, strg, service.NoopPublisher{})

	// коллекция должна существовать до первой индексации
	info, err := svc.EnsureCollection(ctx)
	if err != nil {
		log.Fatalf("Failed to ensure collection %q: %v", appConfig.CollectionID, err)
	}
	log.Printf("Collection %q ready (created now: %v)", info.CollectionID, info.Created)

	// ждем пока кафка раздуплится
	if err := kafka.WaitKafkaReady(ctx, appConfig.KafkaBroker, 10*time.Second); err != nil {
		log.Fatalf("Kafka unavailable: %v", err)
	}
	if err := kafka.InitKafkaTopics(ctx, appConfig.KafkaBroker, 10*time.Second, appConfig.KafkaTopic); err != nil {
		log.Fatalf("Failed to init Kafka topics: %v", err)
	}

	// подключиться к кафке как читатель
	queue := make(chan kafkago.Message)
	retryStrategy := retry.Strategy{
		Attempts: 5,
		Delay:    2 * time.Second,
		Backoff:  1.5,
	}
	indexRetry := retry.Strategy{
		Delay:   time.Second,
		Backoff: 2,
	}
	cons := wbfkafka.NewConsumer([]string{appConfig.KafkaBroker}, appConfig.KafkaTopic, appConfig.KafkaGroupID)
	cons.StartConsuming(ctx, queue, retryStrategy)

	// Собираем воедино все что нужно воркеру и запускаем его
	go worker.NewWorkerInstance(svc, queue, cons, indexRetry).StartWorker(ctx)

	// Waiting for interruption to stop context to start Graceful shutdown
	<-ctx.Done()

	shutdown(cons)
	log.Println("Exiting worker...")
}

func shutdown(cons *wbfkafka.Consumer) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := cons.Close(); err != nil {
		log.Println("Failed to close Kafka-reader:", err)
	}
	log.Println("Kafka-consumer connection closed.")
}
