// Package kafka provides bootstrap of the gallery-events topic and a kafka readiness-probing
package kafka

import (
	"context"
	"errors"
	"log"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// InitKafkaTopics - creates topics in kafka; already existing topics count as created
func InitKafkaTopics(ctx context.Context, brokerAddr string, delay time.Duration, topics ...string) error {
	client := &kafkago.Client{
		Addr:    kafkago.TCP(brokerAddr),
		Timeout: 10 * time.Second,
	}

	req := kafkago.CreateTopicsRequest{
		Topics: make([]kafkago.TopicConfig, 0, len(topics)),
	}

	for _, t := range topics {
		topic := kafkago.TopicConfig{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
		req.Topics = append(req.Topics, topic)
	}

	for {
		resp, err := client.CreateTopics(ctx, &req)
		if err != nil {
			log.Printf("Failed to run topics creation request: %v\nWait %v before next try...", err, delay)
			if !sleepCtx(ctx, delay) {
				return ctx.Err()
			}
			continue
		}

		failed := 0
		for k, v := range resp.Errors {
			switch {
			case v == nil, errors.Is(v, kafkago.TopicAlreadyExists):
			default:
				failed++
				log.Printf("Topic %q creation error: %v", k, v)
			}
		}

		if failed == 0 {
			log.Println("All topics created successfully!")
			return nil
		}
		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
	}
}

// WaitKafkaReady - timeout given to kafka-service for getting fully functional
func WaitKafkaReady(ctx context.Context, brokerAddr string, delay time.Duration) error {
	dialer := &kafkago.Dialer{Timeout: 5 * time.Second}

	for {
		conn, err := dialer.DialContext(ctx, "tcp", brokerAddr)
		if err == nil {
			if errConn := conn.Close(); errConn != nil {
				log.Println("Failed to close connection after testing Kafka readyness:", errConn)
			}
			log.Println("Kafka is ready!")
			return nil
		}

		log.Printf("Kafka not ready, retrying in %v...", delay)
		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
