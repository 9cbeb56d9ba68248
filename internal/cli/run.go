package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/foundmatch/internal/bootstrap"
	"github.com/kailas-cloud/foundmatch/internal/domain"
	founditemrepo "github.com/kailas-cloud/foundmatch/internal/repository/founditem"
	lostreportrepo "github.com/kailas-cloud/foundmatch/internal/repository/lostreport"
	matchrepo "github.com/kailas-cloud/foundmatch/internal/repository/match"
	"github.com/kailas-cloud/foundmatch/internal/usecase/matching"
)

var runCmd = &cobra.Command{
	Use:   "run <found-item-id>",
	Short: "Re-run matching for a stored found item",
	Long: `Score a stored found item against every open lost report of its category and
persist matches at or above the threshold. Reviewed matches are left untouched.

Examples:
  matchctl run f-1042
  matchctl run f-1042 --env prod`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var listCmd = &cobra.Command{
	Use:   "list <found-item-id>",
	Short: "List persisted matches of a found item",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := connect(ctx)
	if err != nil {
		return err
	}

	found, err := founditemrepo.New(s).Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load found item: %w", err)
	}

	svc, err := matching.New(
		lostreportrepo.New(s), matchrepo.New(s),
		bootstrap.Embedder(cfg.Embedding, s, logger),
		bootstrap.MatchingConfig(cfg.Matching), logger,
	)
	if err != nil {
		return err
	}

	results, err := svc.Run(ctx, found)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	printResults(cmd.OutOrStdout(), found.ID, results)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := connect(ctx)
	if err != nil {
		return err
	}

	matches, err := matchrepo.New(s).ListByFoundItem(ctx, args[0])
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}

	printMatches(cmd.OutOrStdout(), args[0], matches)
	return nil
}

func printResults(w io.Writer, foundID string, results []matching.Result) {
	if len(results) == 0 {
		fmt.Fprintf(w, "No matches for %s.\n", foundID)
		return
	}

	fmt.Fprintf(w, "%d matches for %s:\n\n", len(results), foundID)
	for i, r := range results {
		state := "rescored"
		if r.Created {
			state = "new"
		}
		fmt.Fprintf(w, "%d. %s  composite=%d detail=%d location=%d date=%d days=%d [%s]\n",
			i+1, r.Match.LostReportID, r.Match.Composite,
			r.Match.Components.Detail, r.Match.Components.Location, r.Match.Components.Date,
			r.DaysDiff, state)
	}
}

func printMatches(w io.Writer, foundID string, matches []domain.Match) {
	if len(matches) == 0 {
		fmt.Fprintf(w, "No matches for %s.\n", foundID)
		return
	}

	fmt.Fprintf(w, "%d matches for %s:\n\n", len(matches), foundID)
	for i := range matches {
		m := &matches[i]
		fmt.Fprintf(w, "%d. %s  composite=%d %s  updated %s\n",
			i+1, m.LostReportID, m.Composite, m.Status, m.UpdatedAt.Format("2006-01-02 15:04"))
	}
}
