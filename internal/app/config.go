package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lawcomply/lawcomply-backend/internal/clients/redis"
	"github.com/lawcomply/lawcomply-backend/internal/data/db"
	"github.com/lawcomply/lawcomply-backend/internal/observability"
	"github.com/lawcomply/lawcomply-backend/internal/platform/envutil"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

const defaultJWTSecret = "change-me"

type Config struct {
	Port    string
	LogMode string

	JWTSecretKey   string
	AccessTokenTTL time.Duration
	AdminEmails    []string

	Postgres db.PostgresConfig
	// AutoMigrate runs gorm migrations on startup. Disable it against a
	// legacy database whose tables are not owned by this service.
	AutoMigrate bool

	CORSOrigins []string

	Redis           redis.Config
	CatalogCacheTTL time.Duration

	LoginRatePerMinute int
	LoginRateBurst     int

	ReportFontPath string

	Otel observability.OtelConfig
}

// LoadDotEnv loads .env (or the given files) when present. Variables that are
// already set win.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080", log),
		LogMode: envutil.String("LOG_MODE", "development", log),

		JWTSecretKey:   envutil.String("JWT_SECRET", defaultJWTSecret, log),
		AccessTokenTTL: envutil.Duration("JWT_TTL", 2*time.Hour, log),
		AdminEmails:    envutil.List("ADMIN_EMAILS", nil),

		Postgres:    db.PostgresConfigFromEnv(log),
		AutoMigrate: envutil.Bool("DB_AUTO_MIGRATE", true),

		CORSOrigins: envutil.List("CORS_ORIGINS", nil),

		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", "", log),
			Password: envutil.String("REDIS_PASSWORD", "", nil),
			DB:       envutil.Int("REDIS_DB", 0, log),
		},
		CatalogCacheTTL: envutil.Duration("CATALOG_CACHE_TTL", 10*time.Minute, log),

		LoginRatePerMinute: envutil.Int("LOGIN_RATE_LIMIT", 10, log),
		LoginRateBurst:     envutil.Int("LOGIN_RATE_BURST", 5, log),

		ReportFontPath: envutil.String("REPORT_FONT_PATH", "", log),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "lawcomply", log),
			Environment: envutil.String("APP_ENV", "development", log),
			Version:     envutil.String("APP_VERSION", "", log),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1.0),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", nil)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},
	}
	if log != nil {
		if cfg.JWTSecretKey == defaultJWTSecret {
			log.Warn("JWT_SECRET not set, using an insecure default")
		}
		log.Info("config loaded",
			"port", cfg.Port,
			"log_mode", cfg.LogMode,
			"jwt_ttl", cfg.AccessTokenTTL.String(),
			"admins", len(cfg.AdminEmails),
			"postgres_host", cfg.Postgres.Host,
			"postgres_db", cfg.Postgres.Name,
			"auto_migrate", cfg.AutoMigrate,
			"cors_origins", strings.Join(cfg.CORSOrigins, ","),
			"redis", cfg.Redis.Addr != "",
			"otel", cfg.Otel.Enabled,
		)
	}
	return cfg
}
