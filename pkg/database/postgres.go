package database

import (
	"context"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxIdleConns = 10
	maxOpenConns = 100
)

func ConnectDB(dsn string, logLevel string) (*gorm.DB, error) {
	level := logger.Warn
	if logLevel == "debug" {
		level = logger.Info
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statements for Supabase Transaction Mode
	}), &gorm.Config{
		Logger:      newLogger,
		PrepareStmt: false, // Disables GORM-level prepared statements
	})
	if err != nil {
		return nil, err
	}

	// Connection Pooling Setup (Penting untuk Production)
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// SessionRefresher drops idle pooled connections and re-pings the database.
// A pooler in transaction mode can hand out a connection whose session state went
// bad; the catalog cache calls this before retrying a suspicious empty read.
type SessionRefresher struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSessionRefresher(db *gorm.DB, log *zap.Logger) *SessionRefresher {
	return &SessionRefresher{db: db, log: log}
}

func (s *SessionRefresher) RefreshSession(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(0)
	sqlDB.SetMaxIdleConns(maxIdleConns)

	if err := sqlDB.PingContext(ctx); err != nil {
		s.log.Warn("database session refresh failed", zap.Error(err))
		return err
	}
	s.log.Info("database session refreshed")
	return nil
}
