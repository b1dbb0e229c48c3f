package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv keeps main lean.
type Server struct {
	Addr            string
	DatabaseURL     string
	JWTSigningKey   string
	JWTTTL          time.Duration
	OfficerEmail    string
	OfficerPassword string
	Redis           RedisConfig
	Kafka           KafkaConfig
}

// RedisConfig holds connection settings for the leaderboard cache.
// An empty URL disables Redis; the leaderboard falls back to store scans.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the audit event sink. Empty brokers disable
// the sink; audit events then stay in the in-process store only.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("BISAATHI_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtKey == "" {
		// Development default - must be overridden in production
		jwtKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "bisaathi.audit"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:            addr,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSigningKey:   jwtKey,
		JWTTTL:          24 * time.Hour,
		OfficerEmail:    os.Getenv("OFFICER_EMAIL"),
		OfficerPassword: os.Getenv("OFFICER_PASSWORD"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
