package main

import (
	"fmt"
	"os"
	"time"

	"duothan/internal/common/cache"
	"duothan/internal/common/db"
	"duothan/internal/common/mq"
	"duothan/internal/common/storage"
	"duothan/internal/judge"
	"duothan/internal/submission/service"
	"duothan/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8088"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// AuthConfig holds token issuing settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	JWTIssuer string        `yaml:"jwtIssuer"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

// SubmissionConfig holds grading pipeline settings.
type SubmissionConfig struct {
	SourceBucket    string                  `yaml:"sourceBucket"`
	SourceKeyPrefix string                  `yaml:"sourceKeyPrefix"`
	MaxCodeBytes    int                     `yaml:"maxCodeBytes"`
	StatusTTL       time.Duration           `yaml:"statusTTL"`
	EventTopic      string                  `yaml:"eventTopic"`
	PollMaxAttempts int                     `yaml:"pollMaxAttempts"`
	PollInterval    time.Duration           `yaml:"pollInterval"`
	ReaperInterval  time.Duration           `yaml:"reaperInterval"`
	StaleAfter      time.Duration           `yaml:"staleAfter"`
	RateLimit       service.RateLimitConfig `yaml:"rateLimit"`
	Timeouts        service.TimeoutConfig   `yaml:"timeouts"`
}

// AppConfig holds contest-service configuration.
type AppConfig struct {
	Server     ServerConfig        `yaml:"server"`
	Logger     logger.Config       `yaml:"logger"`
	Database   db.MySQLConfig      `yaml:"database"`
	Redis      cache.RedisConfig   `yaml:"redis"`
	Kafka      mq.KafkaConfig      `yaml:"kafka"`
	MinIO      storage.MinIOConfig `yaml:"minio"`
	Judge      judge.Config        `yaml:"judge"`
	Auth       AuthConfig          `yaml:"auth"`
	Submission SubmissionConfig    `yaml:"submission"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}

	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}

	if cfg.Submission.MaxCodeBytes == 0 {
		cfg.Submission.MaxCodeBytes = 64 * 1024
	}
	if cfg.Submission.StatusTTL == 0 {
		cfg.Submission.StatusTTL = 24 * time.Hour
	}
	if cfg.Submission.EventTopic == "" {
		cfg.Submission.EventTopic = "submission.graded"
	}
	if cfg.Submission.ReaperInterval == 0 {
		cfg.Submission.ReaperInterval = time.Minute
	}
	if cfg.Submission.StaleAfter == 0 {
		cfg.Submission.StaleAfter = 15 * time.Minute
	}
	if cfg.Submission.RateLimit.Window == 0 {
		cfg.Submission.RateLimit.Window = time.Minute
	}
	if cfg.Submission.RateLimit.TeamMax == 0 {
		cfg.Submission.RateLimit.TeamMax = 30
	}
	if cfg.Submission.Timeouts.DB == 0 {
		cfg.Submission.Timeouts.DB = 3 * time.Second
	}
	if cfg.Submission.Timeouts.Cache == 0 {
		cfg.Submission.Timeouts.Cache = 1 * time.Second
	}
	if cfg.Submission.Timeouts.Storage == 0 {
		cfg.Submission.Timeouts.Storage = 5 * time.Second
	}
	if cfg.Submission.Timeouts.Grade == 0 {
		cfg.Submission.Timeouts.Grade = 10 * time.Minute
	}

	if cfg.Submission.SourceBucket == "" {
		cfg.Submission.SourceBucket = cfg.MinIO.Bucket
	}

	return &cfg, nil
}
