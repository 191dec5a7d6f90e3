package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the withdraw service
type Config struct {
	// Server
	HTTPPort string `env:"HTTP_PORT" envDefault:"8083"`
	GRPCPort string `env:"GRPC_PORT" envDefault:"9083"`

	// Redis
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers        string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaConsumerGroup  string `env:"KAFKA_CONSUMER_GROUP" envDefault:"withdraw-service"`
	KafkaTopicRequested string `env:"KAFKA_TOPIC_REQUESTED" envDefault:"withdrawal.requested"`
	KafkaTopicStatus    string `env:"KAFKA_TOPIC_STATUS" envDefault:"withdrawal.status"`

	// Jump payments API
	JumpBaseURL          string        `env:"JUMP_BASE_URL" envDefault:"https://v2.jump.taxi/taxi-public/v1"`
	JumpClientKey        string        `env:"JUMP_CLIENT_KEY" envDefault:""`
	JumpClientKeyInQuery bool          `env:"JUMP_CLIENT_KEY_IN_QUERY" envDefault:"false"`
	JumpRequestTimeout   time.Duration `env:"JUMP_REQUEST_TIMEOUT" envDefault:"15s"`

	// Withdrawal pipeline
	DefaultTransactionTypeID string        `env:"DEFAULT_TRANSACTION_TYPE_ID" envDefault:""`
	CandidateRetryDelay      time.Duration `env:"CANDIDATE_RETRY_DELAY" envDefault:"200ms"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
