package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/lawcomply/lawcomply-backend/internal/platform/envutil"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// PostgresConfigFromEnv reads POSTGRES_* variables. Pool defaults: 10 open
// connections, 30s idle timeout, 15m lifetime, 10s connect timeout.
func PostgresConfigFromEnv(log *logger.Logger) PostgresConfig {
	return PostgresConfig{
		Host:            envutil.String("POSTGRES_HOST", "localhost", log),
		Port:            envutil.String("POSTGRES_PORT", "5432", log),
		User:            envutil.String("POSTGRES_USER", "postgres", log),
		Password:        envutil.String("POSTGRES_PASSWORD", "", log),
		Name:            envutil.String("POSTGRES_NAME", "lawcomply", log),
		SSLMode:         envutil.String("POSTGRES_SSLMODE", "disable", log),
		MaxOpenConns:    envutil.Int("POSTGRES_MAX_OPEN_CONNS", 10, log),
		MaxIdleConns:    envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5, log),
		ConnMaxIdleTime: envutil.Duration("POSTGRES_IDLE_TIMEOUT", 30*time.Second, log),
		ConnMaxLifetime: envutil.Duration("POSTGRES_MAX_LIFETIME", 15*time.Minute, log),
		ConnectTimeout:  envutil.Duration("POSTGRES_CONNECT_TIMEOUT", 10*time.Second, log),
	}
}

func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(logg *logger.Logger, cfg PostgresConfig) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout+time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	serviceLog.Info("Postgres connected",
		"host", cfg.Host,
		"database", cfg.Name,
		"max_open_conns", cfg.MaxOpenConns,
		"conn_max_lifetime", cfg.ConnMaxLifetime.String(),
	)
	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	if err := AutoMigrateAll(s.db); err != nil {
		return err
	}
	return EnsureComplianceIndexes(s.db)
}

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
