package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Security  SecurityConfig
	Exchange  ExchangeConfig
	Odds      OddsConfig
	LLM       LLMConfig
	Redis     RedisConfig
	Pipeline  PipelineConfig
	Logging   LoggingConfig
}

// ServerConfig - настройки HTTP сервера.
type ServerConfig struct {
	Port     int
	Host     string
	UseHTTPS bool
	CertFile string
	KeyFile  string
}

// DatabaseConfig - настройки подключения к БД.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// SecurityConfig - настройки безопасности.
// EncryptionKey используется не для паролей пользователей (их тут нет), а
// для шифрования ODDS_API_KEY / LLM resolver key в api_credentials (§9).
type SecurityConfig struct {
	EncryptionKey string
}

// ExchangeConfig - параметры доступа к quote API биржи прогнозов (C2).
type ExchangeConfig struct {
	BaseURL      string
	ChunkSize    int           // токенов за один запрос (§4.2: 50)
	RequestRate  float64       // запросов/сек для pkg/ratelimit
	RequestBurst int
	Timeout      time.Duration
}

// OddsConfig - параметры доступа к odds API букмекеров (C3).
type OddsConfig struct {
	APIKey       string
	BaseURL      string
	Regions      string // "us,uk,eu"
	OddsFormat   string
	Markets      string // "h2h,totals,spreads"
	RequestRate  float64
	RequestBurst int
	Timeout      time.Duration
}

// LLMConfig - параметры внешнего LLM-резолвера событий (C4, tier 4).
// Резолвер опционален: при пустом APIKey tier 4 каскада выключен.
type LLMConfig struct {
	APIKey       string
	BaseURL      string
	MaxCallsPass int           // §4.4 tier 4: ≤15 вызовов за проход
	CallTimeout  time.Duration // §4.4 tier 4: 8s
	CacheTTL     time.Duration
}

// RedisConfig - опциональный кэш имён для LLM-резолвера (§4.11).
// Если URL пуст, кэш деградирует до ограниченной in-process map.
type RedisConfig struct {
	URL string
}

// PipelineConfig - параметры одного прохода детектора (C1, C9).
type PipelineConfig struct {
	PassDeadline       time.Duration // §5: 25s wall-clock на проход
	SchedulerInterval  time.Duration // 0 = нет self-trigger тикера, проход запускается только по POST
	MaxWatchedMarkets  int           // §4.1 caps: набор (a) ≤150
	MaxCandidateGames  int           // §4.1 caps: набор (b) ≤100
	SnapshotWindow     time.Duration // §4.6: 30 минут
	RecencyWindow      time.Duration // §4.6: последние 10 минут
	SnapshotRetention  time.Duration // §3: pruned beyond 24h
}

// LoggingConfig - настройки логирования.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			UseHTTPS: getEnvAsBool("USE_HTTPS", false),
			CertFile: getEnv("CERT_FILE", ""),
			KeyFile:  getEnv("KEY_FILE", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "mispricing_detector"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Security: SecurityConfig{
			EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		},
		Exchange: ExchangeConfig{
			BaseURL:      getEnv("EXCHANGE_BASE_URL", "https://clob.polymarket.com"),
			ChunkSize:    getEnvAsInt("EXCHANGE_CHUNK_SIZE", 50),
			RequestRate:  getEnvAsFloat("EXCHANGE_REQUEST_RATE", 5.0),
			RequestBurst: getEnvAsInt("EXCHANGE_REQUEST_BURST", 10),
			Timeout:      getEnvAsDuration("EXCHANGE_TIMEOUT", 8*time.Second),
		},
		Odds: OddsConfig{
			APIKey:       getEnv("ODDS_API_KEY", ""),
			BaseURL:      getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com"),
			Regions:      getEnv("ODDS_API_REGIONS", "us,uk,eu"),
			OddsFormat:   getEnv("ODDS_API_FORMAT", "decimal"),
			Markets:      getEnv("ODDS_API_MARKETS", "h2h,totals,spreads"),
			RequestRate:  getEnvAsFloat("ODDS_API_REQUEST_RATE", 3.0),
			RequestBurst: getEnvAsInt("ODDS_API_REQUEST_BURST", 5),
			Timeout:      getEnvAsDuration("ODDS_API_TIMEOUT", 10*time.Second),
		},
		LLM: LLMConfig{
			APIKey:       getEnv("LLM_RESOLVER_API_KEY", ""),
			BaseURL:      getEnv("LLM_RESOLVER_BASE_URL", ""),
			MaxCallsPass: getEnvAsInt("LLM_RESOLVER_MAX_CALLS", 15),
			CallTimeout:  getEnvAsDuration("LLM_RESOLVER_TIMEOUT", 8*time.Second),
			CacheTTL:     getEnvAsDuration("LLM_RESOLVER_CACHE_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Pipeline: PipelineConfig{
			PassDeadline:      getEnvAsDuration("PASS_DEADLINE", 25*time.Second),
			SchedulerInterval: getEnvAsDuration("SCHEDULER_INTERVAL", 0),
			MaxWatchedMarkets: getEnvAsInt("MAX_WATCHED_MARKETS", 150),
			MaxCandidateGames: getEnvAsInt("MAX_CANDIDATE_GAMES", 100),
			SnapshotWindow:    getEnvAsDuration("SNAPSHOT_WINDOW", 30*time.Minute),
			RecencyWindow:     getEnvAsDuration("RECENCY_WINDOW", 10*time.Minute),
			SnapshotRetention: getEnvAsDuration("SNAPSHOT_RETENTION", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Security.EncryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required for encrypting stored API credentials")
	}
	if len(cfg.Security.EncryptionKey) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}
	if cfg.Odds.APIKey == "" {
		return nil, fmt.Errorf("ODDS_API_KEY is required")
	}

	return cfg, nil
}

// Вспомогательные функции для чтения переменных окружения.

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
