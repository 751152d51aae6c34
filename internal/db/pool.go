// Package db is the Postgres translation cache: review translations keyed by
// content hash plus the bookkeeping of translation runs.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"horse.fit/staylens/internal/config"
	"horse.fit/staylens/internal/globaltime"
)

var (
	ErrNoRows = sql.ErrNoRows
	// ErrNotConfigured is returned by NewPool when DATABASE_URL is empty.
	ErrNotConfigured = errors.New("database is not configured")

	errPoolNotInitialized = errors.New("database pool is not initialized")
)

const slowQueryThreshold = 500 * time.Millisecond

// Row is a single-row result. A Row from an uninitialized pool scans as ErrNoRows.
type Row struct {
	row *sql.Row
}

func (r *Row) Scan(dest ...any) error {
	if r == nil || r.row == nil {
		return ErrNoRows
	}
	return r.row.Scan(dest...)
}

// Conn runs raw SQL on the pool or on the transaction handed to WithTx.
type Conn struct {
	gdb *gorm.DB
}

func (c Conn) QueryRow(ctx context.Context, query string, args ...any) *Row {
	if c.gdb == nil {
		return &Row{}
	}
	return &Row{row: c.gdb.WithContext(ctx).Raw(query, args...).Row()}
}

func (c Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c.gdb == nil {
		return nil, errPoolNotInitialized
	}
	return c.gdb.WithContext(ctx).Raw(query, args...).Rows()
}

// Exec returns the number of affected rows.
func (c Conn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if c.gdb == nil {
		return 0, errPoolNotInitialized
	}
	res := c.gdb.WithContext(ctx).Exec(query, args...)
	return res.RowsAffected, res.Error
}

// Pool owns the gorm handle and its connection pool.
type Pool struct {
	gdb   *gorm.DB
	sqlDB *sql.DB
}

type poolOptions struct {
	logger zerolog.Logger
}

// Option configures NewPool.
type Option func(*poolOptions)

// WithLogger routes gorm's query log through logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *poolOptions) {
		o.logger = logger
	}
}

// NewPool connects to DATABASE_URL, sizes the pool from config and migrates the
// staylens schema.
func NewPool(ctx context.Context, cfg *config.Config, opts ...Option) (*Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if !cfg.HasDatabase() {
		return nil, ErrNotConfigured
	}

	options := poolOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&options)
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:  newGormLogger(options.logger, resolveGormLogLevel(cfg.LogLevel, cfg.Environment)),
		NowFunc: globaltime.UTC,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get gorm sql db: %w", err)
	}

	maxOpen := int(cfg.DBMaxConns)
	if maxOpen <= 0 {
		maxOpen = 8
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(max(1, min(int(cfg.DBMinConns), maxOpen)))
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pool := &Pool{gdb: gdb, sqlDB: sqlDB}
	if err := pool.autoMigrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate schema: %w", err)
	}
	return pool, nil
}

func (p *Pool) conn() Conn {
	if p == nil {
		return Conn{}
	}
	return Conn{gdb: p.gdb}
}

func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) *Row {
	return p.conn().QueryRow(ctx, query, args...)
}

func (p *Pool) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return p.conn().Query(ctx, query, args...)
}

func (p *Pool) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return p.conn().Exec(ctx, query, args...)
}

// WithTx runs fn in one transaction, committed when fn returns nil and rolled
// back otherwise.
func (p *Pool) WithTx(ctx context.Context, fn func(tx Conn) error) error {
	if p == nil || p.gdb == nil {
		return errPoolNotInitialized
	}
	return p.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Conn{gdb: tx})
	})
}

func (p *Pool) Close() error {
	if p == nil || p.sqlDB == nil {
		return nil
	}
	return p.sqlDB.Close()
}

// Ping checks connectivity for the health command.
func (p *Pool) Ping(ctx context.Context) error {
	if p == nil || p.sqlDB == nil {
		return errPoolNotInitialized
	}
	return p.sqlDB.PingContext(ctx)
}

func IsNoRows(err error) bool {
	return errors.Is(err, ErrNoRows)
}

// gormWriter adapts zerolog to gorm's Printf-style logger.
type gormWriter struct {
	logger zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.logger.Info().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func newGormLogger(zl zerolog.Logger, level logger.LogLevel) logger.Interface {
	return logger.New(gormWriter{logger: zl}, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func resolveGormLogLevel(appLogLevel, environment string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(appLogLevel)) {
	case "trace", "debug":
		return logger.Info
	case "warn", "warning", "info", "":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	}
	if strings.EqualFold(strings.TrimSpace(environment), "local") {
		return logger.Warn
	}
	return logger.Error
}
