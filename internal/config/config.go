// Package config reads app settings from env (and optional .env file) with defaults
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	wbfconfig "github.com/wb-go/wbf/config"
)

const (
	WorkflowCompare  = "compare"
	WorkflowTemplate = "template"
	WorkflowInfo     = "info"
)

type AppConfig struct {
	Port     string
	GinMode  string
	LogLevel string

	AWSRegion      string
	CollectionID   string
	MatchThreshold float32
	MaxInFlight    int

	GalleryBucket    string
	GalleryEndpoint  string
	GalleryAccessKey string
	GallerySecretKey string
	GallerySecure    bool
	GalleryInline    bool

	KafkaBroker  string
	KafkaTopic   string
	KafkaGroupID string

	Workflow string
}

// EventsEnabled - без брокера события загрузки в галерею не публикуются
func (c *AppConfig) EventsEnabled() bool {
	return c.KafkaBroker != ""
}

// Load reads envs; envFile is optional and skipped if it does not exist.
func Load(envFile string) (*AppConfig, error) {
	cfg := wbfconfig.New()
	cfg.EnableEnv("")

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := cfg.LoadEnvFiles(envFile); err != nil {
				return nil, fmt.Errorf("failed to load env file %q: %w", envFile, err)
			}
		} else {
			log.Printf("Env file %q not found, using process envs only", envFile)
		}
	}

	return parse(cfg.GetString)
}

func parse(get func(string) string) (*AppConfig, error) {
	var errs []error

	threshold, err := parseFloat(get("MATCH_THRESHOLD"), 70)
	if err != nil || threshold <= 0 || threshold > 100 {
		errs = append(errs, fmt.Errorf("MATCH_THRESHOLD must be in (0, 100], got %q", get("MATCH_THRESHOLD")))
	}

	inFlight, err := parseInt(get("MAX_IN_FLIGHT"), 8)
	if err != nil || inFlight <= 0 {
		errs = append(errs, fmt.Errorf("MAX_IN_FLIGHT must be a positive integer, got %q", get("MAX_IN_FLIGHT")))
	}

	secure, err := parseBool(get("GALLERY_SECURE"), true)
	if err != nil {
		errs = append(errs, fmt.Errorf("GALLERY_SECURE: %w", err))
	}

	inline, err := parseBool(get("GALLERY_INLINE_BYTES"), false)
	if err != nil {
		errs = append(errs, fmt.Errorf("GALLERY_INLINE_BYTES: %w", err))
	}

	workflow := strings.ToLower(withDefault(get("LAMBDA_WORKFLOW"), WorkflowCompare))
	switch workflow {
	case WorkflowCompare, WorkflowTemplate, WorkflowInfo:
	default:
		errs = append(errs, fmt.Errorf("LAMBDA_WORKFLOW must be one of compare|template|info, got %q", workflow))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &AppConfig{
		Port:     withDefault(get("APP_PORT"), "8080"),
		GinMode:  withDefault(get("GIN_MODE"), "release"),
		LogLevel: withDefault(get("LOG_LEVEL"), "info"),

		AWSRegion:      withDefault(get("AWS_REGION"), "us-west-1"),
		CollectionID:   withDefault(get("COLLECTION_ID"), "saicFacesCollection"),
		MatchThreshold: float32(threshold),
		MaxInFlight:    inFlight,

		GalleryBucket:    withDefault(get("GALLERY_BUCKET"), "saicbucket"),
		GalleryEndpoint:  withDefault(get("GALLERY_ENDPOINT"), "s3.amazonaws.com"),
		GalleryAccessKey: get("GALLERY_ACCESS_KEY"),
		GallerySecretKey: get("GALLERY_SECRET_KEY"),
		GallerySecure:    secure,
		GalleryInline:    inline,

		KafkaBroker:  get("KAFKA_BROKER"),
		KafkaTopic:   withDefault(get("KAFKA_TOPIC"), "gallery-uploads"),
		KafkaGroupID: withDefault(get("KAFKA_GROUPID"), "gallery-indexer"),

		Workflow: workflow,
	}, nil
}

func withDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

func parseInt(v string, def int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func parseFloat(v string, def float64) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 32)
}

func parseBool(v string, def bool) (bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}
