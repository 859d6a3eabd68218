// Package main (in api-subfolder) provides launch of the HTTP API: gallery workflows, collections and uploads
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/FaceGallery/internal/config"
	"github.com/UnendingLoop/FaceGallery/internal/kafka"
	"github.com/UnendingLoop/FaceGallery/internal/mwlogger"
	"github.com/UnendingLoop/FaceGallery/internal/recognition"
	"github.com/UnendingLoop/FaceGallery/internal/service"
	"github.com/UnendingLoop/FaceGallery/internal/storage"
	"github.com/UnendingLoop/FaceGallery/internal/transport"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig, err := config.Load("./.env")
	if err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel(appConfig.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к хранилищу галереи
	strg, err := storage.NewGalleryStorage(ctx, appConfig, 0, 10*time.Second)
	if err != nil {
		log.Fatalf("Gallery storage unavailable: %v", err)
	}

	// клиент Rekognition
	rec, err := recognition.NewFromRegion(ctx, appConfig.AWSRegion, appConfig.MatchThreshold)
	if err != nil {
		log.Fatalf("Failed to init Rekognition client: %v", err)
	}

	// события загрузки в галерею - только если брокер настроен
	var pub service.GalleryPublisher = service.NoopPublisher{}
	var producer *wbfkafka.Producer
	if appConfig.EventsEnabled() {
		if err := kafka.WaitKafkaReady(ctx, appConfig.KafkaBroker, 10*time.Second); err != nil {
			log.Fatalf("Kafka unavailable: %v", err)
		}
		if err := kafka.InitKafkaTopics(ctx, appConfig.KafkaBroker, 10*time.Second, appConfig.KafkaTopic); err != nil {
			log.Fatalf("Failed to init Kafka topics: %v", err)
		}
		producer = wbfkafka.NewProducer([]string{appConfig.KafkaBroker}, appConfig.KafkaTopic)
		pub = producer
	} else {
		log.Println("KAFKA_BROKER is empty: gallery upload events are disabled")
	}

	// создаем экземпляр сервиса
	var svc FaceAPIService = service.NewFaceService(appConfig, rec, strg, pub)
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewFaceHandler(svc)
	// сетапим сервер
	engine := ginext.New(appConfig.GinMode)
	engine.Use(transport.CORS)
	engine.OPTIONS("/*path", transport.Preflight)

	engine.GET("/ping", handlers.SimplePinger)
	engine.GET("/info", handlers.Info)                         // дескриптор алгоритма
	engine.POST("/faces/compare", handlers.Compare)            // проба против всей галереи
	engine.POST("/faces/template", handlers.Template)          // шаблон по галерее
	engine.POST("/faces/batch/:operation", handlers.Batch)     // detect|index|search|compare по галерее
	engine.POST("/collections/:id", handlers.CreateCollection) // управление коллекциями
	engine.DELETE("/collections/:id", handlers.DeleteCollection)
	engine.GET("/collections/:id/faces", handlers.ListFaces)
	engine.POST("/gallery", handlers.UploadGallery) // загрузка новой картинки в галерею

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           mwlogger.NewMWLogger(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул закрытия сервера и кафки
	<-ctx.Done()

	shutdown(srv, producer)
	log.Println("Exiting API...")
}

func shutdown(srv *http.Server, producer *wbfkafka.Producer) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Println("Failed to shutdown HTTP-server correctly:", err)
	}
	log.Println("HTTP-server stopped.")

	// Closing Kafka connection:
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		log.Println("Failed to close Kafka-writer:", err)
	}
	log.Println("Kafka-producer connection closed.")
}
