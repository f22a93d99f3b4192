package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Market   MarketConfig
	Storage  StorageConfig
	Events   EventsConfig
	Local    LocalConfig
}

type AppConfig struct {
	AppName       string
	Environment   string
	HTTPPort      string
	MigrationsDir string
	SeedOnStart   bool
	// InternalToken guards /internal webhooks; empty disables them.
	InternalToken string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

// Enabled reports whether enough connection settings are present to dial Postgres.
func (c DatabaseConfig) Enabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type MarketConfig struct {
	DatasetPath  string
	DatasetURL   string
	FetchTimeout time.Duration
	CacheTTL     time.Duration
	SyncWorkers  int
	SyncRPS      int
}

type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

func (c StorageConfig) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

type LocalConfig struct {
	DataDir string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:       req("APP_NAME"),
		Environment:   req("APP_ENV"),
		HTTPPort:      req("HTTP_PORT"),
		MigrationsDir: orDefault(opt("MIGRATIONS_DIR"), "migrations"),
		SeedOnStart:   parseBool(opt("SEED_ON_START"), true),
		InternalToken: opt("INTERNAL_TOKEN"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     orDefault(opt("DB_PORT"), "5432"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  orDefault(opt("DB_SSL_MODE"), "disable"),

		ConnectTimeout:        parseSeconds(opt("DB_CONNECT_TIMEOUT"), 5*time.Second),
		PoolMaxConns:          int32(parseInt(opt("DB_POOL_MAX_CONNS"), 10)),
		PoolMinConns:          int32(parseInt(opt("DB_POOL_MIN_CONNS"), 0)),
		PoolMaxConnLifetime:   parseSeconds(opt("DB_POOL_MAX_CONN_LIFETIME"), time.Hour),
		PoolMaxConnIdleTime:   parseSeconds(opt("DB_POOL_MAX_CONN_IDLE_TIME"), 30*time.Minute),
		PoolHealthCheckPeriod: parseSeconds(opt("DB_POOL_HEALTH_CHECK_PERIOD"), time.Minute),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  parseSeconds(opt("JWT_ACCESS_EXPIRES_IN"), 15*time.Minute),
		RefreshExpiresIn: parseSeconds(opt("JWT_REFRESH_EXPIRES_IN"), 7*24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     orDefault(opt("REDIS_HOST"), "localhost"),
		Port:     orDefault(opt("REDIS_PORT"), "6379"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      parseSeconds(opt("REDIS_TTL"), 600*time.Second),
	}

	cfg.Market = MarketConfig{
		DatasetPath:  opt("MARKET_DATASET_PATH"),
		DatasetURL:   opt("MARKET_DATASET_URL"),
		FetchTimeout: parseSeconds(opt("MARKET_FETCH_TIMEOUT"), 10*time.Second),
		CacheTTL:     parseSeconds(opt("MARKET_CACHE_TTL"), 5*time.Minute),
		SyncWorkers:  parseInt(opt("MARKET_SYNC_WORKERS"), 4),
		SyncRPS:      parseInt(opt("MARKET_SYNC_RPS"), 3),
	}

	cfg.Storage = StorageConfig{
		Endpoint:  opt("S3_ENDPOINT"),
		Region:    orDefault(opt("S3_REGION"), "auto"),
		Bucket:    opt("S3_BUCKET"),
		AccessKey: opt("S3_ACCESS_KEY"),
		SecretKey: opt("S3_SECRET_KEY"),
	}

	cfg.Events = EventsConfig{
		AMQPURL:  opt("AMQP_URL"),
		Exchange: orDefault(opt("AMQP_EXCHANGE"), "analysis_events"),
	}

	cfg.Local = LocalConfig{
		DataDir: orDefault(opt("SKILLGAP_DATA_DIR"), ".skillgap"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

// LoadLocal reads only the settings the offline CLI needs. Nothing is required.
func LoadLocal() LocalConfig {
	return LocalConfig{DataDir: orDefault(strings.TrimSpace(os.Getenv("SKILLGAP_DATA_DIR")), ".skillgap")}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// parseSeconds accepts either a Go duration ("90s", "5m") or a plain number of seconds.
func parseSeconds(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

func parseBool(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
