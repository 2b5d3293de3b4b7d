package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SnapshotDriverSQLite   = "sqlite"
	SnapshotDriverPostgres = "postgres"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Snapshot SnapshotConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Planner  PlannerConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type SnapshotConfig struct {
	Driver     string
	SQLitePath string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret          string
	JWTIssuer          string
	RateLimitPerMinute int
	RateLimitBurst     int
}

type PlannerConfig struct {
	APIBaseURL         string
	Timeout            time.Duration
	DefaultPrice       float64
	RateLimitPerMinute int
	RateLimitBurst     int
	SessionIdleTTL     time.Duration
	SessionSweep       time.Duration
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	cfg.Snapshot = SnapshotConfig{
		Driver:     strings.ToLower(getEnv("SNAPSHOT_DRIVER", SnapshotDriverSQLite)),
		SQLitePath: getEnv("SNAPSHOT_SQLITE_PATH", "planner-snapshots.db"),
	}

	cfg.Database, err = loadDatabaseConfig()
	if err != nil {
		return cfg, err
	}

	rateLimitPerMinute, err := parseIntEnv("AUTH_RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return cfg, err
	}

	rateLimitBurst, err := parseIntEnv("AUTH_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	cfg.Auth = AuthConfig{
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "event-planner"),
		RateLimitPerMinute: rateLimitPerMinute,
		RateLimitBurst:     rateLimitBurst,
	}

	cfg.Planner, err = loadPlannerConfig()
	if err != nil {
		return cfg, err
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadPlanner загружает только настройки клиента планировщика (для CLI).
func LoadPlanner() (PlannerConfig, error) {
	if err := loadEnv(); err != nil {
		return PlannerConfig{}, err
	}

	return loadPlannerConfig()
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return DatabaseConfig{}, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return DatabaseConfig{}, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 2)
	if err != nil {
		return DatabaseConfig{}, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return DatabaseConfig{}, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return DatabaseConfig{}, err
	}

	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "planner"),
		Password:        getEnv("DB_PASSWORD", "planner"),
		Name:            getEnv("DB_NAME", "event_planner"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}, nil
}

func loadPlannerConfig() (PlannerConfig, error) {
	timeout, err := parseDurationEnv("PLANNER_API_TIMEOUT", 15*time.Second)
	if err != nil {
		return PlannerConfig{}, err
	}

	defaultPrice, err := parseFloatEnv("PLANNER_DEFAULT_PRICE", 1000)
	if err != nil {
		return PlannerConfig{}, err
	}

	rateLimitPerMinute, err := parseIntEnv("PLANNER_RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return PlannerConfig{}, err
	}

	rateLimitBurst, err := parseIntEnv("PLANNER_RATE_LIMIT_BURST", 20)
	if err != nil {
		return PlannerConfig{}, err
	}

	sessionIdleTTL, err := parseDurationEnv("PLANNER_SESSION_IDLE_TTL", 30*time.Minute)
	if err != nil {
		return PlannerConfig{}, err
	}

	sessionSweep, err := parseDurationEnv("PLANNER_SESSION_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return PlannerConfig{}, err
	}

	return PlannerConfig{
		APIBaseURL:         strings.TrimRight(getEnv("PLANNER_API_BASE_URL", "http://localhost:8000/api"), "/"),
		Timeout:            timeout,
		DefaultPrice:       defaultPrice,
		RateLimitPerMinute: rateLimitPerMinute,
		RateLimitBurst:     rateLimitBurst,
		SessionIdleTTL:     sessionIdleTTL,
		SessionSweep:       sessionSweep,
	}, nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	switch c.Snapshot.Driver {
	case SnapshotDriverSQLite:
		if strings.TrimSpace(c.Snapshot.SQLitePath) == "" {
			return fmt.Errorf("SNAPSHOT_SQLITE_PATH is required for sqlite driver")
		}
	case SnapshotDriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
		if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
			return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
		}
	default:
		return fmt.Errorf("SNAPSHOT_DRIVER must be one of %s, %s", SnapshotDriverSQLite, SnapshotDriverPostgres)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Planner.APIBaseURL == "" {
		return fmt.Errorf("PLANNER_API_BASE_URL is required")
	}

	if _, err := url.ParseRequestURI(c.Planner.APIBaseURL); err != nil {
		return fmt.Errorf("PLANNER_API_BASE_URL must be a valid url: %w", err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}

	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
