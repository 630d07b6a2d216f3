// Package bootstrap wires configuration, infrastructure and services.
package bootstrap

import (
	"context"
	"strings"
	"time"

	"textclub_server/adapter/out/cache"
	"textclub_server/adapter/out/llm"
	"textclub_server/adapter/out/persistence"
	"textclub_server/config"
	"textclub_server/core/port/out"
	"textclub_server/core/service/analyze"
	"textclub_server/core/service/spam"
	"textclub_server/infra/database"
	"textclub_server/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	SQLDB  *sqlx.DB
	Redis  *redis.Client

	// Repositories
	MessageRepo  out.MessageRepository
	SpamRuleRepo out.SpamRuleRepository

	// Collaborators
	Analyzer out.PatternAnalyzer
	Scorer   out.LearningScorer

	// Services
	Classifier     *spam.Classifier
	CaptureService *spam.CaptureService
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	// Database (pgxpool, used for health checks and pool stats)
	db, err := database.NewPostgres(cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Database (sqlx for the adapters)
	sqlxURL := cfg.DatabaseURL
	if strings.Contains(sqlxURL, "?") {
		sqlxURL += "&default_query_exec_mode=simple_protocol"
	} else {
		sqlxURL += "?default_query_exec_mode=simple_protocol"
	}
	sqlDB, err := sqlx.Connect("pgx", sqlxURL)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	// Redis
	redisClient, err := database.NewRedis(cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		logger.Warn("Redis connection failed, learning scorer degraded: %v", err)
	} else {
		deps.Redis = redisClient
		cleanups = append(cleanups, func() { redisClient.Close() })
	}

	// Repositories
	deps.MessageRepo = persistence.NewMessageAdapter(sqlDB)
	deps.SpamRuleRepo = persistence.NewSpamRuleAdapter(sqlDB)

	// Pattern analyzer (deterministic heuristics, no I/O)
	deps.Analyzer = analyze.NewHeuristicAnalyzer()

	// Learning scorer: OpenAI-backed when an API key is configured,
	// otherwise the Redis token model. Training always goes to the Redis
	// model when available.
	if cfg.OpenAIAPIKey != "" {
		deps.Scorer = llm.NewScorer(llm.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.LLMModel,
		})
		logger.Info("Learning scorer: OpenAI (%s)", cfg.LLMModel)
	} else if deps.Redis != nil {
		deps.Scorer = cache.NewRedisLearningScorer(deps.Redis)
		logger.Info("Learning scorer: Redis token model")
	} else {
		logger.Warn("Learning scorer unavailable, signal will abstain")
	}

	// Classifier and capture pipeline
	deps.Classifier = spam.NewClassifier(deps.Analyzer, deps.Scorer).
		WithThresholds(cfg.PatternScoreThreshold, cfg.LearningScoreThreshold)

	trainer := deps.Scorer
	if deps.Redis != nil {
		// Confirmed hits train the Redis model even when scoring goes
		// through the hosted model.
		trainer = cache.NewRedisLearningScorer(deps.Redis)
	}
	deps.CaptureService = spam.NewCaptureService(
		deps.MessageRepo,
		deps.SpamRuleRepo,
		deps.Classifier,
		trainer,
		&spam.CaptureConfig{
			WindowSize:            cfg.CaptureWindowSize,
			ChunkSize:             cfg.CaptureChunkSize,
			ProvenanceConcurrency: cfg.CaptureConcurrency,
		},
	)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	return deps, cleanup, nil
}

func (d *Dependencies) HealthCheck(ctx context.Context) error {
	if err := d.DB.Ping(ctx); err != nil {
		return err
	}

	if d.Redis != nil {
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	return nil
}
