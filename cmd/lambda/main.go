// Package main (in lambda-subfolder) is the AWS Lambda entry point; LAMBDA_WORKFLOW picks compare, template or info
package main

import (
	"context"
	"log"
	"time"

	"github.com/UnendingLoop/FaceGallery/internal/config"
	"github.com/UnendingLoop/FaceGallery/internal/recognition"
	"github.com/UnendingLoop/FaceGallery/internal/service"
	"github.com/UnendingLoop/FaceGallery/internal/storage"
	"github.com/UnendingLoop/FaceGallery/internal/transport"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	appConfig, err := config.Load("./.env")
	if err != nil {
		log.Fatalf("Failed to load envs: %s", err)
	}

	zlog.InitConsole()
	if err := zlog.SetLevel(appConfig.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// дескриптору не нужны ни хранилище, ни Rekognition
	if appConfig.Workflow == config.WorkflowInfo {
		lambda.Start(transport.Info)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	strg, err := storage.NewGalleryStorage(ctx, appConfig, 3, time.Second)
	if err != nil {
		log.Fatalf("Gallery storage unavailable: %v", err)
	}
	rec, err := recognition.NewFromRegion(ctx, appConfig.AWSRegion, appConfig.MatchThreshold)
	if err != nil {
		log.Fatalf("Failed to init Rekognition client: %v", err)
	}

	svc := service.NewFaceService(appConfig, rec, strg, service.NoopPublisher{})
	handler := transport.NewLambdaHandler(svc)

	switch appConfig.Workflow {
	case config.WorkflowTemplate:
		lambda.Start(handler.Template)
	default:
		lambda.Start(handler.Compare)
	}
}
