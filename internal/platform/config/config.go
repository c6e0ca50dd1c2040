package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean. Lookup
// tables (parties, states) are embedded data owned by the resolver, not
// configuration.
type Config struct {
	Addr        string
	ArchiveHost string
	IndexURL    string
	RefreshSpec string

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string
	QueueBackend string // memory, redis, or kafka

	Workers      int
	MaxDepth     int
	QueueSize    int
	FetchTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:         envOr("BILLGRAPH_ADDR", ":8080"),
		ArchiveHost:  envOr("BILLGRAPH_ARCHIVE_HOST", "www.govinfo.gov"),
		IndexURL:     os.Getenv("BILLGRAPH_INDEX_URL"),
		RefreshSpec:  envOr("BILLGRAPH_REFRESH_SPEC", "@daily"),
		DatabaseURL:  os.Getenv("BILLGRAPH_DATABASE_URL"),
		RedisURL:     os.Getenv("BILLGRAPH_REDIS_URL"),
		KafkaTopic:   envOr("BILLGRAPH_KAFKA_TOPIC", "billgraph.tasks"),
		KafkaGroup:   envOr("BILLGRAPH_KAFKA_GROUP", "billgraph-workers"),
		QueueBackend: envOr("BILLGRAPH_QUEUE", "memory"),
		Workers:      envInt("BILLGRAPH_WORKERS", 4),
		MaxDepth:     envInt("BILLGRAPH_MAX_DEPTH", 5),
		QueueSize:    envInt("BILLGRAPH_QUEUE_SIZE", 4096),
		FetchTimeout: 30 * time.Second,
	}
	if brokers := os.Getenv("BILLGRAPH_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
