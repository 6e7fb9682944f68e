package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/config"
	applog "github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is the pair of stores behind the ticketing service: PostgreSQL for
// inventory, numbering and the ledger, Redis for caches, locks, rate limits
// and the fiscal device heartbeat.
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client

	lockTimeout time.Duration
}

// Open connects both stores and pings them.
func Open(cfg *config.Config) (*DB, error) {
	pg, err := openPostgreSQL(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	rdb, err := openRedis(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	return &DB{
		PostgreSQL:  pg,
		Redis:       rdb,
		lockTimeout: cfg.Database.LockTimeout,
	}, nil
}

func openPostgreSQL(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Silent
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}

	dsn := sessionDSN(cfg.Database.DSN, cfg.Database.StatementTimeout)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	applog.GetDefault().Info("✅ PostgreSQL connected",
		slog.Int("max_open_conns", cfg.Database.MaxOpenConns),
		slog.Duration("lock_timeout", cfg.Database.LockTimeout),
		slog.Duration("statement_timeout", cfg.Database.StatementTimeout),
	)
	return db, nil
}

// sessionDSN appends statement_timeout as a session parameter so a runaway
// query cannot pin a connection. Key/value and URL DSNs are both handled.
func sessionDSN(dsn string, statementTimeout time.Duration) string {
	if statementTimeout <= 0 || strings.Contains(dsn, "statement_timeout") {
		return dsn
	}
	ms := statementTimeout.Milliseconds()
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return fmt.Sprintf("%s%sstatement_timeout=%d", dsn, sep, ms)
	}
	return fmt.Sprintf("%s statement_timeout=%d", dsn, ms)
}

func openRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	applog.GetDefault().Info("✅ Redis connected", slog.String("addr", cfg.Addr))
	return rdb, nil
}

// Transactor returns the issuance/cancellation transactor, with the configured
// lock timeout applied to every transaction it opens.
func (db *DB) Transactor() Transactor {
	return NewTransactor(db.PostgreSQL, WithLockTimeout(db.lockTimeout))
}

func (db *DB) Close() error {
	var errs []error
	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close PostgreSQL: %w", err))
			}
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// HealthCheck pings both stores
func (db *DB) HealthCheck(ctx context.Context) error {
	sqlDB, err := db.PostgreSQL.DB()
	if err != nil {
		return fmt.Errorf("PostgreSQL health check failed: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL ping failed: %w", err)
	}
	if err := db.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
