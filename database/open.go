package database

import (
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/rpupo63/tech-knowledge-api/config"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// DSN builds the postgres connection string. DATABASE_URL wins over the DB_* parts.
func DSN(cfg map[string]string) string {
	if url := config.GetString(cfg, "DATABASE_URL", ""); url != "" {
		return url
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		config.GetString(cfg, "DB_HOST", "localhost"),
		config.GetInt(cfg, "DB_PORT", 5432),
		config.GetString(cfg, "DB_USER", "postgres"),
		config.GetString(cfg, "DB_PASSWORD", ""),
		config.GetString(cfg, "DB_NAME", "tech_knowledge"),
		config.GetString(cfg, "DB_SSLMODE", "disable"),
	)
}

// Open connects to postgres, registers read replicas and applies pool settings.
func Open(cfg map[string]string) (*gorm.DB, error) {
	newLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Duration(config.GetInt(cfg, "DB_SLOW_QUERY_MS", 200)) * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  config.GetString(cfg, "LOG_FORMAT", "console") == "console",
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  DSN(cfg),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	maxOpen := config.GetInt(cfg, "DB_MAX_OPEN_CONNS", 25)
	maxIdle := config.GetInt(cfg, "DB_MAX_IDLE_CONNS", 5)
	lifetime := time.Duration(config.GetInt(cfg, "DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute

	if replicaURLs := config.GetStrings(cfg, "DB_REPLICA_URLS"); len(replicaURLs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(replicaURLs))
		for _, url := range replicaURLs {
			replicas = append(replicas, postgres.Open(url))
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxOpenConns(maxOpen).
			SetMaxIdleConns(maxIdle).
			SetConnMaxLifetime(lifetime)
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("failed to register read replicas: %w", err)
		}
		log.Info().Int("replicas", len(replicas)).Msg("Read replicas registered")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
