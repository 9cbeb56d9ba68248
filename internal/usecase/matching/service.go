// Package matching scores a found item against open lost reports and records the plausible matches.
package matching

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/foundmatch/internal/domain"
	"github.com/kailas-cloud/foundmatch/internal/domain/attribute"
	"github.com/kailas-cloud/foundmatch/internal/domain/score"
	"github.com/kailas-cloud/foundmatch/internal/logger"
	"github.com/kailas-cloud/foundmatch/internal/metrics"
)

// Scored holds the outcome of comparing one lost report with one found item.
type Scored struct {
	Components domain.ComponentScores
	Composite  int
	DaysDiff   int
}

// Result is a match recorded by a run.
// Created is false when an existing PENDING match for the pair was rescored.
type Result struct {
	Match    domain.Match
	DaysDiff int
	Created  bool
}

// Service runs the match engine.
type Service struct {
	candidates CandidateSource
	matches    MatchStore
	embed      Embedder
	cfg        Config
	logger     *zap.Logger
}

// New creates a matching service. Zero fields of cfg take the defaults.
func New(
	candidates CandidateSource, matches MatchStore, embed Embedder,
	cfg Config, logger *zap.Logger,
) (*Service, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("matching config: %w", err)
	}
	return &Service{
		candidates: candidates,
		matches:    matches,
		embed:      embed,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Threshold returns the minimum composite score that gets persisted.
func (s *Service) Threshold() int { return s.cfg.Threshold }

// Run scores found against every open lost report of its category and persists
// PENDING matches for composites at or above the threshold.
//
// A candidate whose embedding or persistence fails is logged and skipped.
// Failing to list candidates aborts the run before anything is persisted.
func (s *Service) Run(ctx context.Context, found domain.FoundItem) ([]Result, error) {
	if found.ID == "" || found.Category == "" {
		return nil, fmt.Errorf("found item needs id and category: %w", domain.ErrInvalidInput)
	}

	log := logger.FromContextOr(ctx, s.logger).With(
		zap.String("found_item_id", found.ID),
		zap.String("category", found.Category),
	)
	ctx = logger.ContextWithLogger(ctx, log)
	start := time.Now()

	candidates, err := s.candidates.ListOpen(ctx, found.Category)
	if err != nil {
		metrics.MatchRunsTotal.WithLabelValues("error").Inc()
		log.Error("Failed to list candidates", zap.Error(err))
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	slots := make([]*Result, len(candidates))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i := range candidates {
		g.Go(func() error {
			slots[i] = s.evaluate(ctx, &candidates[i], &found)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]Result, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i].Match, results[j].Match
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		return a.LostReportID < b.LostReportID
	})

	metrics.MatchRunDuration.Observe(time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		metrics.MatchRunsTotal.WithLabelValues("error").Inc()
		return results, fmt.Errorf("match run interrupted: %w", err)
	}

	metrics.MatchRunsTotal.WithLabelValues("success").Inc()
	log.Info("Match run finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// evaluate scores one candidate and persists it when it clears the threshold.
// Returns nil when the candidate is dropped.
func (s *Service) evaluate(ctx context.Context, lost *domain.LostReport, found *domain.FoundItem) *Result {
	log := logger.FromContext(ctx).With(zap.String("lost_report_id", lost.ID))

	scored, err := s.Score(ctx, lost, found)
	if err != nil {
		metrics.MatchCandidatesTotal.WithLabelValues(metrics.OutcomeEmbedFailed).Inc()
		log.Warn("Skipping candidate: scoring failed", zap.Error(err))
		return nil
	}
	metrics.MatchCompositeScore.Observe(float64(scored.Composite))

	if scored.Composite < s.cfg.Threshold {
		metrics.MatchCandidatesTotal.WithLabelValues(metrics.OutcomeBelowThreshold).Inc()
		return nil
	}

	stored, created, err := s.matches.Upsert(ctx, domain.Match{
		LostReportID: lost.ID,
		FoundItemID:  found.ID,
		Composite:    scored.Composite,
		Components:   scored.Components,
		Status:       domain.MatchPending,
	})
	if err != nil {
		metrics.MatchCandidatesTotal.WithLabelValues(metrics.OutcomePersistFailed).Inc()
		log.Warn("Skipping candidate: persist failed", zap.Error(err))
		return nil
	}
	if stored.Status.Reviewed() {
		metrics.MatchCandidatesTotal.WithLabelValues(metrics.OutcomeReviewed).Inc()
		log.Debug("Match already reviewed, left as is", zap.String("status", string(stored.Status)))
		return nil
	}

	metrics.MatchCandidatesTotal.WithLabelValues(metrics.OutcomeMatched).Inc()
	log.Debug("Match recorded",
		zap.String("match_id", stored.ID),
		zap.Int("composite", stored.Composite),
		zap.Bool("created", created),
	)
	return &Result{Match: stored, DaysDiff: scored.DaysDiff, Created: created}
}

// Score computes the component and composite scores of one pair without persisting anything.
// Empty attribute text on either side scores detail 0 without calling the embedder.
func (s *Service) Score(ctx context.Context, lost *domain.LostReport, found *domain.FoundItem) (Scored, error) {
	detail, err := s.detailScore(ctx, lost.Attributes, found.PublicAttributes)
	if err != nil {
		return Scored{}, err
	}

	days := score.DaysBetween(lost.LostAt, found.FoundAt)
	c := domain.ComponentScores{
		Detail:   detail,
		Location: s.cfg.Location.Score(lost.Location, found.Location),
		Date:     score.TemporalProximity(days),
	}
	return Scored{
		Components: c,
		Composite:  s.cfg.Weights.Composite(c),
		DaysDiff:   days,
	}, nil
}

// ListForFoundItem returns the stored matches of a found item for review.
func (s *Service) ListForFoundItem(ctx context.Context, foundID string) ([]domain.Match, error) {
	matches, err := s.matches.ListByFoundItem(ctx, foundID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

func (s *Service) detailScore(ctx context.Context, proof, public domain.AttributeSet) (int, error) {
	a := s.cfg.Normalizer.Normalize(attribute.Flatten(proof))
	b := s.cfg.Normalizer.Normalize(attribute.Flatten(public))
	if a == "" || b == "" {
		return 0, nil
	}

	va, err := s.embed.Embed(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("embed lost report text: %w", err)
	}
	vb, err := s.embed.Embed(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("embed found item text: %w", err)
	}
	if len(va.Embedding) != len(vb.Embedding) {
		return 0, fmt.Errorf("embedding dimensions differ (%d vs %d): %w",
			len(va.Embedding), len(vb.Embedding), domain.ErrEmbeddingProviderError)
	}
	return score.CosinePercent(score.Cosine(va.Embedding, vb.Embedding)), nil
}
