package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	HTTPPort       int
	HTTPRateLimit  int
	HTTPRateBurst  int
	GRPCPort       int
	GRPCReflection bool
	GRPCTLSCert    string
	GRPCTLSKey     string
	DB             DBConfig
	Kafka          KafkaConfig
	Telemetry      TelemetryConfig
	Reports        ReportConfig
	LogLevel       string
	LogFormat      string
}

// DBConfig holds PostgreSQL connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
	Migrate  bool
}

// KafkaConfig holds Kafka connection parameters.
type KafkaConfig struct {
	Brokers        []string
	ConsumerGroup  string
	EntryTopic     string
	StatementTopic string
	TLS            bool
	SASLEnabled    bool
	SASLMechanism  string
	SASLUsername   string
	SASLPassword   string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// ReportConfig tunes statement and report generation.
type ReportConfig struct {
	// InflationCapsFile overrides the embedded inflation cap table when set.
	InflationCapsFile string
	CacheTTL          time.Duration
	Workers           int
}

// Load reads a .env file if present and then configuration from environment
// variables with defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv reads configuration from environment variables only.
func FromEnv() Config {
	return Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8090),
		HTTPRateLimit:  getEnvInt("HTTP_RATE_LIMIT", 50),
		HTTPRateBurst:  getEnvInt("HTTP_RATE_BURST", 100),
		GRPCPort:       getEnvInt("GRPC_PORT", 9090),
		GRPCReflection: getEnvBool("GRPC_REFLECTION", false),
		GRPCTLSCert:    getEnv("GRPC_TLS_CERT", ""),
		GRPCTLSKey:     getEnv("GRPC_TLS_KEY", ""),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "dkledger"),
			Password: getEnv("DB_PASSWORD", "dkledger_dev_password"),
			Name:     getEnv("DB_NAME", "dkledger"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
			Migrate:  getEnvBool("DB_MIGRATE", true),
		},
		Kafka: KafkaConfig{
			Brokers:        getEnvList("KAFKA_BROKERS"),
			ConsumerGroup:  getEnv("KAFKA_CONSUMER_GROUP", "dkledger"),
			EntryTopic:     getEnv("KAFKA_ENTRY_TOPIC", "dkledger.entries.booked"),
			StatementTopic: getEnv("KAFKA_STATEMENT_TOPIC", "dkledger.statements"),
			TLS:            getEnvBool("KAFKA_TLS", false),
			SASLEnabled:    getEnvBool("KAFKA_SASL_ENABLED", false),
			SASLMechanism:  getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
			SASLUsername:   getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:   getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "dkledger"),
		},
		Reports: ReportConfig{
			InflationCapsFile: getEnv("INFLATION_CAPS_FILE", ""),
			CacheTTL:          getEnvDuration("REPORT_CACHE_TTL", 15*time.Minute),
			Workers:           getEnvInt("REPORT_WORKERS", 8),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
