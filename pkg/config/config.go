package config

import (
	"errors"
	"os"
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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	CaseCache CaseCacheConfig
	Deadlines DeadlineConfig
	Reminders ReminderConfig
	Search    SearchConfig
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CaseCacheConfig governs caching of case list pages.
type CaseCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// DeadlineConfig controls how the reference date and upcoming window are derived.
type DeadlineConfig struct {
	TimeZone           string
	UpcomingWindowDays int
	ReminderOffsets    []int
}

// Location resolves TimeZone, falling back to UTC.
func (d DeadlineConfig) Location() *time.Location {
	if d.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ReminderConfig configures the background reminder scan.
type ReminderConfig struct {
	Enabled  bool
	Interval time.Duration
	Workers  int
	Retries  int
}

// SearchConfig holds the raw fuzzy threshold table ("minLen:maxEdits,...").
type SearchConfig struct {
	FuzzyThresholds string
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
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CaseCache = CaseCacheConfig{
		Enabled: v.GetBool("ENABLE_CASE_CACHE"),
		TTL:     parseDuration(v.GetString("CASE_CACHE_TTL"), 2*time.Minute),
	}

	window := v.GetInt("UPCOMING_WINDOW_DAYS")
	if window <= 0 {
		window = 30
	}
	offsets := parseInts(v.GetString("REMINDER_OFFSETS"))
	if len(offsets) == 0 {
		offsets = []int{30, 14, 7, 1, 0}
	}
	cfg.Deadlines = DeadlineConfig{
		TimeZone:           v.GetString("DEADLINE_TIMEZONE"),
		UpcomingWindowDays: window,
		ReminderOffsets:    offsets,
	}

	workers := v.GetInt("REMINDER_WORKERS")
	if workers <= 0 {
		workers = 1
	}
	cfg.Reminders = ReminderConfig{
		Enabled:  v.GetBool("ENABLE_REMINDERS"),
		Interval: parseDuration(v.GetString("REMINDER_INTERVAL"), 24*time.Hour),
		Workers:  workers,
		Retries:  v.GetInt("REMINDER_RETRIES"),
	}

	cfg.Search = SearchConfig{FuzzyThresholds: v.GetString("SEARCH_FUZZY_THRESHOLDS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "perm_tracker")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "perm-tracker")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CASE_CACHE", false)
	v.SetDefault("CASE_CACHE_TTL", "2m")

	v.SetDefault("DEADLINE_TIMEZONE", "America/New_York")
	v.SetDefault("UPCOMING_WINDOW_DAYS", 30)
	v.SetDefault("REMINDER_OFFSETS", "30,14,7,1,0")

	v.SetDefault("ENABLE_REMINDERS", false)
	v.SetDefault("REMINDER_INTERVAL", "24h")
	v.SetDefault("REMINDER_WORKERS", 2)
	v.SetDefault("REMINDER_RETRIES", 3)

	v.SetDefault("SEARCH_FUZZY_THRESHOLDS", "0:0,3:1,5:2,10:3")
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

// parseInts drops entries that are not integers.
func parseInts(raw string) []int {
	parts := splitAndTrim(raw)
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		result = append(result, n)
	}
	return result
}
