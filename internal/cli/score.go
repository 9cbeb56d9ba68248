package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/foundmatch/internal/bootstrap"
	"github.com/kailas-cloud/foundmatch/internal/db"
	"github.com/kailas-cloud/foundmatch/internal/domain"
	"github.com/kailas-cloud/foundmatch/internal/usecase/matching"
)

var (
	scoreLost  string
	scoreFound string
	scoreCache bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one lost/found pair without persisting anything",
	Long: `Score one lost report against one found item and print the component scores,
the composite and the day gap. Nothing is written to Redis.

Examples:
  matchctl score --lost lost.json --found found.json
  matchctl score --lost lost.json --found found.json --cache`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreLost, "lost", "l", "", "lost report JSON file")
	scoreCmd.Flags().StringVarP(&scoreFound, "found", "f", "", "found item JSON file")
	scoreCmd.Flags().BoolVar(&scoreCache, "cache", false, "use the Redis embedding cache")
	_ = scoreCmd.MarkFlagRequired("lost")
	_ = scoreCmd.MarkFlagRequired("found")
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	lost, err := readLost(scoreLost)
	if err != nil {
		return err
	}
	found, err := readFound(scoreFound)
	if err != nil {
		return err
	}

	// A nil interface, not a nil *Store, keeps the cache disabled.
	var cache db.KVStore
	if scoreCache {
		s, err := connect(ctx)
		if err != nil {
			return err
		}
		cache = s
	}

	svc, err := matching.New(nil, nil, bootstrap.Embedder(cfg.Embedding, cache, logger),
		bootstrap.MatchingConfig(cfg.Matching), logger)
	if err != nil {
		return err
	}

	return scorePair(ctx, cmd.OutOrStdout(), svc, &lost, &found)
}

// pairScorer is satisfied by *matching.Service.
type pairScorer interface {
	Score(ctx context.Context, lost *domain.LostReport, found *domain.FoundItem) (matching.Scored, error)
	Threshold() int
}

func scorePair(ctx context.Context, w io.Writer, svc pairScorer, lost *domain.LostReport, found *domain.FoundItem) error {
	s, err := svc.Score(ctx, lost, found)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}

	verdict := "below threshold"
	if s.Composite >= svc.Threshold() {
		verdict = "match"
	}

	fmt.Fprintf(w, "detail:    %3d\n", s.Components.Detail)
	fmt.Fprintf(w, "location:  %3d\n", s.Components.Location)
	fmt.Fprintf(w, "date:      %3d (%d days apart)\n", s.Components.Date, s.DaysDiff)
	fmt.Fprintf(w, "composite: %3d (threshold %d, %s)\n", s.Composite, svc.Threshold(), verdict)
	return nil
}
