package config

import (
	"errors"
	"io/fs"
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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Planner  PlannerConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds what is needed to verify access tokens issued by the auth service.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig tunes the revision planner endpoints.
type PlannerConfig struct {
	CacheEnabled       bool
	CacheTTL           time.Duration
	LockTTL            time.Duration
	Timezone           string
	TopUpCeilingMinute int
	Defaults           PreferenceDefaults
}

// PreferenceDefaults apply to users who never saved planning preferences.
type PreferenceDefaults struct {
	PreferredDays          []int
	DailyStartTime         string
	DailyEndTime           string
	MaxHoursPerDay         float64
	SessionDurationMinutes int
	AvoidEarlyMorning      bool
	AvoidLateEvening       bool
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	ceiling := v.GetInt("PLANNER_TOPUP_CEILING_MINUTES")
	if ceiling <= 0 {
		ceiling = 360
	}
	cfg.Planner = PlannerConfig{
		CacheEnabled:       v.GetBool("ENABLE_PLANNER_CACHE"),
		CacheTTL:           parseDuration(v.GetString("PLANNER_CACHE_TTL"), 5*time.Minute),
		LockTTL:            parseDuration(v.GetString("PLANNER_LOCK_TTL"), 30*time.Second),
		Timezone:           v.GetString("PLANNER_TIMEZONE"),
		TopUpCeilingMinute: ceiling,
		Defaults: PreferenceDefaults{
			PreferredDays:          parseDays(v.GetString("PLANNER_DEFAULT_DAYS")),
			DailyStartTime:         v.GetString("PLANNER_DEFAULT_START"),
			DailyEndTime:           v.GetString("PLANNER_DEFAULT_END"),
			MaxHoursPerDay:         v.GetFloat64("PLANNER_DEFAULT_MAX_HOURS"),
			SessionDurationMinutes: v.GetInt("PLANNER_DEFAULT_SESSION_MINUTES"),
			AvoidEarlyMorning:      v.GetBool("PLANNER_DEFAULT_AVOID_EARLY"),
			AvoidLateEvening:       v.GetBool("PLANNER_DEFAULT_AVOID_LATE"),
		},
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
	v.SetDefault("DB_NAME", "revision_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_PLANNER_CACHE", true)
	v.SetDefault("PLANNER_CACHE_TTL", "5m")
	v.SetDefault("PLANNER_LOCK_TTL", "30s")
	v.SetDefault("PLANNER_TIMEZONE", "UTC")
	v.SetDefault("PLANNER_TOPUP_CEILING_MINUTES", 360)
	v.SetDefault("PLANNER_DEFAULT_DAYS", "1,2,3,4,5")
	v.SetDefault("PLANNER_DEFAULT_START", "08:00")
	v.SetDefault("PLANNER_DEFAULT_END", "22:00")
	v.SetDefault("PLANNER_DEFAULT_MAX_HOURS", 4)
	v.SetDefault("PLANNER_DEFAULT_SESSION_MINUTES", 90)
	v.SetDefault("PLANNER_DEFAULT_AVOID_EARLY", false)
	v.SetDefault("PLANNER_DEFAULT_AVOID_LATE", false)
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

// parseDays reads a comma separated list of weekday numbers, Sunday=0. Invalid entries are skipped.
func parseDays(raw string) []int {
	var days []int
	for _, part := range splitAndTrim(raw) {
		if len(part) != 1 || part[0] < '0' || part[0] > '6' {
			continue
		}
		days = append(days, int(part[0]-'0'))
	}
	return days
}
