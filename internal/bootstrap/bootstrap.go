// Package bootstrap assembles the match engine from configuration.
// Both the API server and matchctl build their dependency graph here.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foundmatch/internal/config"
	"github.com/kailas-cloud/foundmatch/internal/db"
	dbRedis "github.com/kailas-cloud/foundmatch/internal/db/redis"
	"github.com/kailas-cloud/foundmatch/internal/domain"
	"github.com/kailas-cloud/foundmatch/internal/domain/score"
	"github.com/kailas-cloud/foundmatch/internal/domain/text"
	"github.com/kailas-cloud/foundmatch/internal/metrics"
	"github.com/kailas-cloud/foundmatch/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/foundmatch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/foundmatch/internal/usecase/embedding"
	"github.com/kailas-cloud/foundmatch/internal/usecase/matching"
)

// Store connects to Redis and waits until it answers PING.
func Store(ctx context.Context, cfg config.DatabaseConfig) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// Embedder builds the shared embedding provider:
// OpenAI-compatible backend -> cache -> per-call timeout -> lazy provider.
// cache may be nil, in which case vectors are not cached.
func Embedder(cfg config.EmbeddingConfig, cache db.KVStore, logger *zap.Logger) *embeddinguc.Provider {
	load := func(ctx context.Context) (domain.Embedder, error) {
		base, err := openaiEmb.Load(ctx, &openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}

		var embedder domain.Embedder = base
		if cache != nil {
			embedder = embcache.New(base, cache, cfg.Model, metrics.EmbeddingCacheTotal, logger).
				WithTTL(time.Duration(cfg.CacheTTLHours) * time.Hour)
		}

		return embeddinguc.NewInstrumentedEmbedder(
			embedder, cfg.Provider, cfg.Model,
			time.Duration(cfg.TimeoutSec)*time.Second, logger,
		), nil
	}

	return embeddinguc.NewProvider(load, cfg.Dimensions, logger).
		WithLoadTimeout(time.Duration(cfg.LoadTimeoutSec) * time.Second).
		WithRetryAfter(time.Duration(cfg.LoadRetrySec) * time.Second)
}

// MatchingConfig converts the YAML matching section into engine tuning.
func MatchingConfig(cfg config.MatchingConfig) matching.Config {
	stopwords := cfg.Stopwords
	if len(stopwords) == 0 {
		stopwords = text.DefaultStopwords
	}

	var booster text.Booster = text.NopBooster{}
	if !cfg.DisableBoost {
		keywords := cfg.Keywords
		if len(keywords) == 0 {
			keywords = text.DefaultKeywords
		}
		booster = text.NewKeywordBooster(keywords)
	}

	return matching.Config{
		Weights: score.Weights{
			Detail:   cfg.Weights.Detail,
			Location: cfg.Weights.Location,
			Date:     cfg.Weights.Date,
		},
		Threshold:  cfg.Threshold,
		Workers:    cfg.Workers,
		Normalizer: text.NewNormalizer(stopwords, booster),
		Location: score.LocationScorer{
			TokenCap: cfg.LocationTokens,
			Bonus:    cfg.PositionalBonus,
		},
	}
}
