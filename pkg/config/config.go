package config

import (
	"errors"
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

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Calendar      CalendarConfig
	Availability  AvailabilityConfig
	Notifications NotificationsConfig
	Exports       ExportsConfig
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
	Migrate      bool
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

// CalendarConfig defines the rendered day window and slot discretization.
// DayStart/DayEnd bound the "whole day unavailable" block when a date
// override blanks a date; RenderStart/RenderEnd bound the background
// complement handed to the calendar widget.
type CalendarConfig struct {
	DayStart      string
	DayEnd        string
	RenderStart   string
	RenderEnd     string
	SlotStep      time.Duration
	TeamSlotStart string
	TeamSlotEnd   string
}

// AvailabilityConfig tunes availability computation and caching.
type AvailabilityConfig struct {
	CacheTTL      time.Duration
	MaxRangeDays  int
	BookingBuffer time.Duration
}

// NotificationsConfig routes change descriptors to the notification
// collaborator. With no brokers configured dispatch degrades to logging.
type NotificationsConfig struct {
	Brokers           []string
	Topic             string
	WorkerConcurrency int
	WorkerRetries     int
	RetryDelay        time.Duration
}

// ExportsConfig gates the schedule export endpoint.
type ExportsConfig struct {
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
		if !errors.As(err, &notFound) {
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
		Migrate:      v.GetBool("DB_AUTO_MIGRATE"),
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

	cfg.Calendar = CalendarConfig{
		DayStart:      v.GetString("CALENDAR_DAY_START"),
		DayEnd:        v.GetString("CALENDAR_DAY_END"),
		RenderStart:   v.GetString("CALENDAR_RENDER_START"),
		RenderEnd:     v.GetString("CALENDAR_RENDER_END"),
		SlotStep:      parseDuration(v.GetString("CALENDAR_SLOT_STEP"), 30*time.Minute),
		TeamSlotStart: v.GetString("CALENDAR_TEAM_SLOT_START"),
		TeamSlotEnd:   v.GetString("CALENDAR_TEAM_SLOT_END"),
	}

	cfg.Availability = AvailabilityConfig{
		CacheTTL:      parseDuration(v.GetString("AVAILABILITY_CACHE_TTL"), 2*time.Minute),
		MaxRangeDays:  v.GetInt("AVAILABILITY_MAX_RANGE_DAYS"),
		BookingBuffer: parseDuration(v.GetString("AVAILABILITY_BOOKING_BUFFER"), 30*time.Minute),
	}

	cfg.Notifications = NotificationsConfig{
		Brokers:           splitAndTrim(v.GetString("NOTIFY_KAFKA_BROKERS")),
		Topic:             v.GetString("NOTIFY_KAFKA_TOPIC"),
		WorkerConcurrency: v.GetInt("NOTIFY_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("NOTIFY_WORKER_RETRIES"),
		RetryDelay:        parseDuration(v.GetString("NOTIFY_RETRY_DELAY"), 2*time.Second),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_SCHEDULE_EXPORTS"),
	}

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
	v.SetDefault("DB_NAME", "meeting_scheduler")
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
	v.SetDefault("JWT_ISSUER", "meeting-scheduler")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CALENDAR_DAY_START", "06:00")
	v.SetDefault("CALENDAR_DAY_END", "22:00")
	v.SetDefault("CALENDAR_RENDER_START", "00:00")
	v.SetDefault("CALENDAR_RENDER_END", "24:00")
	v.SetDefault("CALENDAR_SLOT_STEP", "30m")
	v.SetDefault("CALENDAR_TEAM_SLOT_START", "09:00")
	v.SetDefault("CALENDAR_TEAM_SLOT_END", "17:00")

	v.SetDefault("AVAILABILITY_CACHE_TTL", "2m")
	v.SetDefault("AVAILABILITY_MAX_RANGE_DAYS", 62)
	v.SetDefault("AVAILABILITY_BOOKING_BUFFER", "30m")

	v.SetDefault("NOTIFY_KAFKA_BROKERS", "")
	v.SetDefault("NOTIFY_KAFKA_TOPIC", "scheduler.booking-changes")
	v.SetDefault("NOTIFY_WORKER_CONCURRENCY", 2)
	v.SetDefault("NOTIFY_WORKER_RETRIES", 3)
	v.SetDefault("NOTIFY_RETRY_DELAY", "2s")

	v.SetDefault("ENABLE_SCHEDULE_EXPORTS", true)
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
