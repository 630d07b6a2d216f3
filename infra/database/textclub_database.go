// Package database provides PostgreSQL and Redis connection construction.
package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// NewPostgres builds a pgx pool sized for the capture pipeline: maxConns
// comes from configuration, the rest is fixed tuning. The simple query
// protocol is forced so the pool can share the database with the sqlx
// adapters without prepared statement conflicts.
func NewPostgres(databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	if maxConns < 1 {
		maxConns = 25
	}
	poolCfg.MaxConns = maxConns
	poolCfg.MinConns = maxConns / 5
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// NewRedis builds a Redis client for the learning model counters. poolSize
// comes from configuration.
func NewRedis(redisURL string, poolSize int) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if poolSize < 1 {
		poolSize = 50
	}
	opt.PoolSize = poolSize
	opt.MinIdleConns = poolSize / 5
	opt.MaxRetries = 3
	opt.DialTimeout = connectTimeout
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// PoolStats is the health endpoint's view of the pgx pool.
type PoolStats struct {
	TotalConns      int32 `json:"total_conns"`
	AcquiredConns   int32 `json:"acquired_conns"`
	IdleConns       int32 `json:"idle_conns"`
	MaxConns        int32 `json:"max_conns"`
	AcquireCount    int64 `json:"acquire_count"`
	AcquireDuration int64 `json:"acquire_duration_ms"`
}

// GetPoolStats returns pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		AcquiredConns:   stat.AcquiredConns(),
		IdleConns:       stat.IdleConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().Milliseconds(),
	}
}

// RedisStats is the health endpoint's view of the Redis pool.
type RedisStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

// GetRedisStats returns Redis pool statistics.
func GetRedisStats(client *redis.Client) *RedisStats {
	stat := client.PoolStats()
	return &RedisStats{
		Hits:       stat.Hits,
		Misses:     stat.Misses,
		Timeouts:   stat.Timeouts,
		TotalConns: stat.TotalConns,
		IdleConns:  stat.IdleConns,
		StaleConns: stat.StaleConns,
	}
}
