package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Session  SessionConfig
	Pricing  PricingConfig
}

type ServerConfig struct {
	Port        string
	Mode        string
	CORSOrigins []string
}

type LogConfig struct {
	Level  string
	Format string // json, console
}

// BackendConfig points at the marketplace backend API
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type DatabaseConfig struct {
	MongoURL    string
	MongoDBName string
}

// RedisConfig - an empty URL keeps session state in process memory
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// KafkaConfig - no brokers disables checkout events
type KafkaConfig struct {
	Brokers []string
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

type SessionConfig struct {
	CookieName   string
	CookieSecure bool
	TTL          time.Duration
	VendorTTL    time.Duration
}

// PricingConfig holds the checkout fee schedule, in whole currency units
type PricingConfig struct {
	TierAThreshold int64
	TierBThreshold int64
	TierACharge    int64
	TierBCharge    int64
	TierCCharge    int64
	PackingFee     int64
	TxRefPrefix    string
}

// LoadConfig reads the environment, after loading .env if one exists
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Mode:        getEnv("GIN_MODE", "debug"),
			CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_URL", "http://localhost:5000/api"),
			Timeout: getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MongoURL:    getEnv("MONGO_URL", ""),
			MongoDBName: getEnv("MONGO_DB_NAME", "food_storefront"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", nil),
		},
		JWT: JWTConfig{
			SecretKey:   getEnv("JWT_SECRET", "your-secret-key"),
			ExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE", "storefront_sid"),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
			TTL:          getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			VendorTTL:    getEnvDuration("VENDOR_CACHE_TTL", 5*time.Minute),
		},
		Pricing: PricingConfig{
			TierAThreshold: getEnvInt64("SERVICE_CHARGE_TIER_A_FROM", 100000),
			TierBThreshold: getEnvInt64("SERVICE_CHARGE_TIER_B_FROM", 20000),
			TierACharge:    getEnvInt64("SERVICE_CHARGE_TIER_A", 1000),
			TierBCharge:    getEnvInt64("SERVICE_CHARGE_TIER_B", 500),
			TierCCharge:    getEnvInt64("SERVICE_CHARGE_TIER_C", 200),
			PackingFee:     getEnvInt64("PACKING_FEE", 0),
			TxRefPrefix:    getEnv("TX_REF_PREFIX", "storefront"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// comma separated, blanks dropped
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}
