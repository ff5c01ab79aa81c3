package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Paths      PathsConfig
	Database   DatabaseConfig
	Summary    SummaryConfig
	WorkerPool WorkerPoolConfig
	Security   SecurityConfig
	APIKeys    APIKeysConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
}

type PathsConfig struct {
	BaseDir  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres
	CacheBackend    string // memory | sqlite | valkey
	CachePath       string // SQLite file for the persisted summary cache
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type SummaryConfig struct {
	Provider                 string // openai | gemini
	Model                    string
	DebounceMs               int
	MaxRetries               int
	InitialRetryDelayMs      int
	MaxRetryDelayMs          int
	RateLimitBackoffFloorMs  int
	RetryHourlyQuota         bool
	RequestTimeoutMs         int
	MinEligibleContentLength int
	MaxContentLength         int
	CacheCapacity            int
	ConnectivityProbeURL     string
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

type SecurityConfig struct {
	SecretKey string
}

type APIKeysConfig struct {
	Gemini string
	OpenAI string
	AI     string // Generic/Fallback
}

// Global provides access to the loaded configuration globally
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		debug = true
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.0.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            filepath.Join(pathsCfg.Storages, "notes.db"),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		CacheBackend:    getEnv("SUMMARY_CACHE_BACKEND", "sqlite"),
		CachePath:       getEnv("SUMMARY_CACHE_PATH", filepath.Join(pathsCfg.Storages, "summary_cache.db")),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "smartnotes:"),
	}

	summaryCfg := SummaryConfig{
		Provider:                 getEnv("SUMMARY_PROVIDER", "openai"),
		Model:                    getEnv("SUMMARY_MODEL", ""),
		DebounceMs:               getEnvInt("SUMMARY_DEBOUNCE_MS", 500),
		MaxRetries:               getEnvInt("SUMMARY_MAX_RETRIES", 3),
		InitialRetryDelayMs:      getEnvInt("SUMMARY_INITIAL_RETRY_DELAY_MS", 1000),
		MaxRetryDelayMs:          getEnvInt("SUMMARY_MAX_RETRY_DELAY_MS", 30000),
		RateLimitBackoffFloorMs:  getEnvInt("SUMMARY_RATE_LIMIT_BACKOFF_FLOOR_MS", 5000),
		RetryHourlyQuota:         getEnvBool("SUMMARY_RETRY_HOURLY_QUOTA", false),
		RequestTimeoutMs:         getEnvInt("SUMMARY_REQUEST_TIMEOUT_MS", 30000),
		MinEligibleContentLength: getEnvInt("SUMMARY_MIN_CONTENT_LENGTH", 100),
		MaxContentLength:         getEnvInt("SUMMARY_MAX_CONTENT_LENGTH", 20000),
		CacheCapacity:            getEnvInt("SUMMARY_CACHE_CAPACITY", 100),
		ConnectivityProbeURL:     getEnv("SUMMARY_CONNECTIVITY_PROBE_URL", ""),
	}

	cfg := &Config{
		App:        appCfg,
		Paths:      pathsCfg,
		Database:   dbCfg,
		Summary:    summaryCfg,
		WorkerPool: WorkerPoolConfig{Size: getEnvInt("SUMMARY_WORKER_POOL_SIZE", 4), QueueSize: getEnvInt("SUMMARY_WORKER_QUEUE_SIZE", 64)},
		Security:   SecurityConfig{SecretKey: getEnv("APP_SECRET_KEY", "changeme_please_change_me_in_prod_12345")},
		APIKeys: APIKeysConfig{
			Gemini: getEnv("GEMINI_API_KEY", ""),
			OpenAI: getEnv("OPENAI_API_KEY", ""),
			AI:     getEnv("AI_API_KEY", ""),
		},
	}

	Global = cfg
	return cfg, nil
}
