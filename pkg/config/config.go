package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	Backend  BackendConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	CORS     CORSConfig
	Log      LogConfig
	Enquiry  EnquiryConfig
	Receipts ReceiptsConfig
	Digest   DigestConfig
	Docs     DocsConfig
}

// BackendConfig points the console at the institute REST backend.
type BackendConfig struct {
	BaseURL       string
	UploadBaseURL string
	Timeout       time.Duration
	Retries       int
	RetryWait     time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig governs the per-session list cache and the settings cache.
type CacheConfig struct {
	Enabled     bool
	ListTTL     time.Duration
	SettingsTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EnquiryConfig tunes the enquiry list view.
type EnquiryConfig struct {
	PageSize int
}

// ReceiptsConfig controls the issued receipt ledger and archive.
type ReceiptsConfig struct {
	LedgerEnabled   bool
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// DigestConfig controls the scheduled overdue follow-up digest.
type DigestConfig struct {
	Enabled         bool
	Cron            string
	TelegramToken   string
	ChatIDs         []int64
	ServiceUser     string
	ServicePassword string
	MaxEntries      int
	Workers         int
	Retries         int
}

// DocsConfig toggles the swagger UI.
type DocsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("TIMEZONE")

	cfg.Backend = BackendConfig{
		BaseURL:       strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		UploadBaseURL: strings.TrimRight(v.GetString("UPLOAD_BASE_URL"), "/"),
		Timeout:       parseDuration(v.GetString("BACKEND_TIMEOUT"), 15*time.Second),
		Retries:       v.GetInt("BACKEND_RETRIES"),
		RetryWait:     parseDuration(v.GetString("BACKEND_RETRY_WAIT"), 300*time.Millisecond),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled:     v.GetBool("ENABLE_CACHE"),
		ListTTL:     parseDuration(v.GetString("LIST_CACHE_TTL"), 5*time.Second),
		SettingsTTL: parseDuration(v.GetString("SETTINGS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Enquiry = EnquiryConfig{PageSize: v.GetInt("ENQUIRY_PAGE_SIZE")}
	if cfg.Enquiry.PageSize <= 0 {
		cfg.Enquiry.PageSize = 10
	}

	cfg.Receipts = ReceiptsConfig{
		LedgerEnabled:   v.GetBool("ENABLE_RECEIPT_LEDGER"),
		StorageDir:      v.GetString("RECEIPTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("RECEIPTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("RECEIPTS_SIGNED_URL_TTL"), 24*time.Hour),
	}

	cfg.Digest = DigestConfig{
		Enabled:         v.GetBool("ENABLE_OVERDUE_DIGEST"),
		Cron:            v.GetString("DIGEST_CRON"),
		TelegramToken:   v.GetString("TELEGRAM_BOT_TOKEN"),
		ChatIDs:         parseChatIDs(v.GetString("TELEGRAM_CHAT_IDS")),
		ServiceUser:     v.GetString("DIGEST_SERVICE_USERNAME"),
		ServicePassword: v.GetString("DIGEST_SERVICE_PASSWORD"),
		MaxEntries:      v.GetInt("DIGEST_MAX_ENTRIES"),
		Workers:         v.GetInt("DIGEST_WORKERS"),
		Retries:         v.GetInt("DIGEST_RETRIES"),
	}

	cfg.Docs = DocsConfig{Enabled: v.GetBool("ENABLE_DOCS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("UPLOAD_BASE_URL", "http://localhost:8000/uploads")
	v.SetDefault("BACKEND_TIMEOUT", "15s")
	v.SetDefault("BACKEND_RETRIES", 2)
	v.SetDefault("BACKEND_RETRY_WAIT", "300ms")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "techskill_console")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("LIST_CACHE_TTL", "5s")
	v.SetDefault("SETTINGS_CACHE_TTL", "10m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENQUIRY_PAGE_SIZE", 10)

	v.SetDefault("ENABLE_RECEIPT_LEDGER", false)
	v.SetDefault("RECEIPTS_STORAGE_DIR", "./receipts")
	v.SetDefault("RECEIPTS_SIGNED_URL_SECRET", "dev_receipts_secret")
	v.SetDefault("RECEIPTS_SIGNED_URL_TTL", "24h")

	v.SetDefault("ENABLE_OVERDUE_DIGEST", false)
	v.SetDefault("DIGEST_CRON", "0 9 * * *")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_IDS", "")
	v.SetDefault("DIGEST_SERVICE_USERNAME", "")
	v.SetDefault("DIGEST_SERVICE_PASSWORD", "")
	v.SetDefault("DIGEST_MAX_ENTRIES", 25)
	v.SetDefault("DIGEST_WORKERS", 1)
	v.SetDefault("DIGEST_RETRIES", 3)

	v.SetDefault("ENABLE_DOCS", true)
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func parseChatIDs(raw string) []int64 {
	ids := make([]int64, 0)
	for _, part := range splitAndTrim(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
