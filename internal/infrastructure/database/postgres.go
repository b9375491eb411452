package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// DBConfig holds everything needed to build the connection pool.
type DBConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DBName   string
	SSLMode  string

	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration

	MaxRetries     int
	RetryDelay     time.Duration
	ConnectTimeout time.Duration
}

// DefaultDBConfig fills pool tuning fields that rarely need overriding.
func DefaultDBConfig(host string, port int, user, password, dbname, sslmode string, maxConns, minConns int) *DBConfig {
	return &DBConfig{
		Host:              host,
		Port:              port,
		Username:          user,
		Password:          password,
		DBName:            dbname,
		SSLMode:           sslmode,
		MaxConns:          int32(maxConns),
		MinConns:          int32(minConns),
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
		MaxRetries:        5,
		RetryDelay:        time.Second,
		ConnectTimeout:    10 * time.Second,
	}
}

// PostgresDB wraps the pgx connection pool. The pool is the only shared
// mutable state in the process; every booking mutation runs inside
// ExecuteInTransaction and serializes on the booking row lock.
type PostgresDB struct {
	Pool   *pgxpool.Pool
	Config *DBConfig
}

func NewPostgresDB(config *DBConfig) *PostgresDB {
	return &PostgresDB{Config: config}
}

func (db *PostgresDB) connString() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		db.Config.Username, db.Config.Password,
		db.Config.Host, db.Config.Port, db.Config.DBName, db.Config.SSLMode,
	)
}

// Connect establishes the pool with retry and exponential backoff.
func (db *PostgresDB) Connect(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(db.connString())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	poolCfg.MaxConns = db.Config.MaxConns
	poolCfg.MinConns = db.Config.MinConns
	poolCfg.MaxConnLifetime = db.Config.MaxConnLifetime
	poolCfg.MaxConnIdleTime = db.Config.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = db.Config.HealthCheckPeriod
	poolCfg.ConnConfig.ConnectTimeout = db.Config.ConnectTimeout

	var pool *pgxpool.Pool
	var lastErr error

	for attempt := 1; attempt <= db.Config.MaxRetries; attempt++ {
		connectCtx, cancel := context.WithTimeout(ctx, db.Config.ConnectTimeout)
		pool, lastErr = pgxpool.NewWithConfig(connectCtx, poolCfg)
		cancel()

		if lastErr == nil {
			if err := pool.Ping(ctx); err != nil {
				pool.Close()
				lastErr = err
			} else {
				db.Pool = pool
				logger.Info("database connected", map[string]interface{}{
					"attempt": attempt,
					"host":    db.Config.Host,
					"dbname":  db.Config.DBName,
				})
				return nil
			}
		}

		logger.Warn("database connection attempt failed", map[string]interface{}{
			"attempt": attempt,
			"error":   lastErr.Error(),
		})

		if attempt < db.Config.MaxRetries {
			delay := db.Config.RetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("connection cancelled: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("failed to connect after %d attempts: %w", db.Config.MaxRetries, lastErr)
}

// Ping verifies connectivity; used by the health endpoint.
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close shuts the pool down. Safe to call more than once.
func (db *PostgresDB) Close() {
	if db.Pool == nil {
		return
	}
	db.Pool.Close()
	db.Pool = nil
}

// ExecuteInTransaction runs fn inside BEGIN/COMMIT, rolling back on error
// or panic. All booking mutations must go through this: the row lock taken
// by SELECT ... FOR UPDATE only holds for the life of the transaction.
func (db *PostgresDB) ExecuteInTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			logger.Error("transaction rollback failed", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}
