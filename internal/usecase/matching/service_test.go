package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foundmatch/internal/domain"
	"github.com/kailas-cloud/foundmatch/internal/domain/score"
	"github.com/kailas-cloud/foundmatch/internal/metrics"
)

var day0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, cands *mockCandidates, matches *memMatches, emb *bagEmbedder) *Service {
	t.Helper()
	svc, err := New(cands, matches, emb, Config{Workers: 4}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func headphones() domain.FoundItem {
	return domain.FoundItem{
		ID:               "f1",
		Category:         "electronics",
		PublicAttributes: domain.AttributeSet{"color": "black", "brand": "sony"},
		Location:         "Library",
		FoundAt:          day0.Add(24 * time.Hour),
	}
}

func lost(id string, attrs domain.AttributeSet, location string, lostAt time.Time) domain.LostReport {
	return domain.LostReport{
		ID:         id,
		Category:   "electronics",
		Attributes: attrs,
		Location:   location,
		LostAt:     lostAt,
		Status:     domain.ReportOpen,
	}
}

func TestScore_PerfectPair(t *testing.T) {
	svc := newTestService(t, &mockCandidates{}, newMemMatches(), &bagEmbedder{})
	found := headphones()
	r := lost("r1", domain.AttributeSet{"color": "black", "brand": "sony"}, "Library", day0)

	got, err := svc.Score(context.Background(), &r, &found)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	want := domain.ComponentScores{Detail: 100, Location: 100, Date: 100}
	if got.Components != want || got.Composite != 100 || got.DaysDiff != 1 {
		t.Errorf("got %+v, want components %+v composite 100 days 1", got, want)
	}
}

func TestScore_EmptyProofSkipsEmbedder(t *testing.T) {
	emb := &bagEmbedder{}
	svc := newTestService(t, &mockCandidates{}, newMemMatches(), emb)
	found := headphones()
	r := lost("r1", domain.AttributeSet{}, "Library", day0)

	got, err := svc.Score(context.Background(), &r, &found)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.Components.Detail != 0 || got.Composite != 40 {
		t.Errorf("expected detail 0 and composite 40, got %+v", got)
	}
	if emb.calls.Load() != 0 {
		t.Errorf("embedder must not be called for empty text, got %d calls", emb.calls.Load())
	}
}

func TestScore_StopwordsOnlyIsEmpty(t *testing.T) {
	emb := &bagEmbedder{}
	svc := newTestService(t, &mockCandidates{}, newMemMatches(), emb)
	found := headphones()
	r := lost("r1", domain.AttributeSet{"note": "I have a"}, "", day0)

	got, err := svc.Score(context.Background(), &r, &found)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.Components.Detail != 0 || emb.calls.Load() != 0 {
		t.Errorf("stopword-only proof must score 0 without embedding, got %+v", got)
	}
}

func TestScore_TemporalScenarios(t *testing.T) {
	svc := newTestService(t, &mockCandidates{}, newMemMatches(), &bagEmbedder{})
	tests := []struct {
		name     string
		foundAt  time.Time
		wantDays int
		wantDate int
	}{
		{"ten days", day0.AddDate(0, 0, 10), 10, 100},
		{"forty days", day0.AddDate(0, 0, 40), 40, 30},
		{"found before lost", day0.AddDate(0, 0, -20), 20, 60},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			found := headphones()
			found.FoundAt = tc.foundAt
			r := lost("r1", nil, "", day0)
			got, err := svc.Score(context.Background(), &r, &found)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if got.DaysDiff != tc.wantDays || got.Components.Date != tc.wantDate {
				t.Errorf("got days=%d date=%d, want %d/%d",
					got.DaysDiff, got.Components.Date, tc.wantDays, tc.wantDate)
			}
		})
	}
}

func TestScore_LocationScenario(t *testing.T) {
	svc := newTestService(t, &mockCandidates{}, newMemMatches(), &bagEmbedder{})
	found := headphones()
	found.Location = "Library Building, Main Campus"
	r := lost("r1", nil, "Library, 2nd Floor", day0)

	got, err := svc.Score(context.Background(), &r, &found)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.Components.Location < 15 {
		t.Errorf("shared leading token must earn the bonus, got %d", got.Components.Location)
	}
}

func TestRun_PersistsAboveThresholdOrdered(t *testing.T) {
	cands := &mockCandidates{reports: []domain.LostReport{
		lost("r-empty", domain.AttributeSet{}, "Library", day0),
		lost("r-exact", domain.AttributeSet{"brand": "sony", "color": "black"}, "Library", day0),
		lost("r-far", nil, "Stadium car park", day0.AddDate(-1, 0, 0)),
	}}
	other := lost("r-bags", domain.AttributeSet{"brand": "sony"}, "Library", day0)
	other.Category = "bags"
	cands.reports = append(cands.reports, other)

	matches := newMemMatches()
	svc := newTestService(t, cands, matches, &bagEmbedder{})

	results, err := svc.Run(context.Background(), headphones())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cands.gotCat != "electronics" {
		t.Errorf("candidates must be filtered by category, got %q", cands.gotCat)
	}

	// r-far: detail 0, location 0, date 30 -> composite 3, below threshold.
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	if results[0].Match.LostReportID != "r-exact" || results[0].Match.Composite != 100 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Match.LostReportID != "r-empty" || results[1].Match.Composite != 40 {
		t.Errorf("unexpected second result: %+v", results[1])
	}
	for _, r := range results {
		if !r.Created || r.Match.Status != domain.MatchPending || r.Match.ID == "" {
			t.Errorf("expected new PENDING match, got %+v", r)
		}
	}
	if r := results[0]; r.DaysDiff != 1 {
		t.Errorf("expected day gap 1, got %d", r.DaysDiff)
	}
	if len(matches.rows) != 2 {
		t.Errorf("expected 2 stored matches, got %d", len(matches.rows))
	}
}

func TestRun_RerunIsDeterministicWithoutDuplicates(t *testing.T) {
	cands := &mockCandidates{reports: []domain.LostReport{
		lost("r1", domain.AttributeSet{"brand": "sony", "extra": map[string]any{"case": "red", "tag": "A1"}}, "Library", day0),
		lost("r2", domain.AttributeSet{"color": "black"}, "Library Hall", day0),
	}}
	matches := newMemMatches()
	svc := newTestService(t, cands, matches, &bagEmbedder{})
	ctx := context.Background()

	first, err := svc.Run(ctx, headphones())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.Run(ctx, headphones())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("result count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i].Match, second[i].Match
		if a.LostReportID != b.LostReportID || a.Composite != b.Composite || a.ID != b.ID {
			t.Errorf("run %d differs: %+v vs %+v", i, a, b)
		}
		if second[i].Created {
			t.Errorf("re-run must rescore, not create: %+v", second[i])
		}
	}
	if len(matches.rows) != len(first) {
		t.Errorf("expected %d stored matches, got %d", len(first), len(matches.rows))
	}
}

func TestRun_ReviewedMatchLeftOut(t *testing.T) {
	cands := &mockCandidates{reports: []domain.LostReport{
		lost("r1", domain.AttributeSet{"brand": "sony"}, "Library", day0),
	}}
	matches := newMemMatches()
	matches.rows["f1:r1"] = domain.Match{
		ID: "m-old", LostReportID: "r1", FoundItemID: "f1", Composite: 12, Status: domain.MatchRejected,
	}
	svc := newTestService(t, cands, matches, &bagEmbedder{})

	results, err := svc.Run(context.Background(), headphones())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("reviewed match must not be reported, got %+v", results)
	}
	if m := matches.rows["f1:r1"]; m.Status != domain.MatchRejected || m.Composite != 12 {
		t.Errorf("reviewed match must stay untouched, got %+v", m)
	}
}

func TestRun_EmbeddingFailureSkipsCandidate(t *testing.T) {
	cands := &mockCandidates{reports: []domain.LostReport{
		lost("r-bad", domain.AttributeSet{"brand": "cursed"}, "Library", day0),
		lost("r-good", domain.AttributeSet{"brand": "sony"}, "Library", day0),
	}}
	before := testutil.ToFloat64(metrics.MatchCandidatesTotal.WithLabelValues(metrics.OutcomeEmbedFailed))
	svc := newTestService(t, cands, newMemMatches(), &bagEmbedder{failOn: "cursed"})

	results, err := svc.Run(context.Background(), headphones())
	if err != nil {
		t.Fatalf("embedding failures must not abort the run: %v", err)
	}
	if len(results) != 1 || results[0].Match.LostReportID != "r-good" {
		t.Errorf("expected only r-good, got %+v", results)
	}
	after := testutil.ToFloat64(metrics.MatchCandidatesTotal.WithLabelValues(metrics.OutcomeEmbedFailed))
	if after-before != 1 {
		t.Errorf("expected one embed_failed outcome, got %v", after-before)
	}
}

func TestRun_PersistFailureNotReported(t *testing.T) {
	cands := &mockCandidates{reports: []domain.LostReport{
		lost("r1", domain.AttributeSet{"brand": "sony"}, "Library", day0),
		lost("r2", domain.AttributeSet{"color": "black"}, "Library", day0),
	}}
	matches := newMemMatches()
	matches.failFor = "r1"
	svc := newTestService(t, cands, matches, &bagEmbedder{})

	results, err := svc.Run(context.Background(), headphones())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].Match.LostReportID != "r2" {
		t.Errorf("expected only r2, got %+v", results)
	}
}

func TestRun_CandidateSourceFailureAborts(t *testing.T) {
	matches := newMemMatches()
	cands := &mockCandidates{err: domain.ErrStorageUnavailable}
	svc := newTestService(t, cands, matches, &bagEmbedder{})

	_, err := svc.Run(context.Background(), headphones())
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if len(matches.rows) != 0 {
		t.Error("nothing may be persisted when candidates cannot be listed")
	}
}

func TestRun_InvalidFoundItem(t *testing.T) {
	svc := newTestService(t, &mockCandidates{}, newMemMatches(), &bagEmbedder{})
	_, err := svc.Run(context.Background(), domain.FoundItem{ID: "f1"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRun_WorkerPoolBounded(t *testing.T) {
	var reports []domain.LostReport
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		reports = append(reports, lost("r-"+id, domain.AttributeSet{"brand": "sony " + id}, "Library", day0))
	}
	emb := &bagEmbedder{delay: 5 * time.Millisecond}
	svc, err := New(&mockCandidates{reports: reports}, newMemMatches(), emb, Config{Workers: 2}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := svc.Run(context.Background(), headphones())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(reports) {
		t.Errorf("expected %d results, got %d", len(reports), len(results))
	}
	// Each worker embeds its two texts sequentially.
	if peak := emb.peak.Load(); peak > 2 {
		t.Errorf("expected at most 2 concurrent embeddings, got %d", peak)
	}
}

func TestRun_CompositeAlwaysInRange(t *testing.T) {
	cands := &mockCandidates{reports: []domain.LostReport{
		lost("r1", domain.AttributeSet{"brand": "sony", "color": "black"}, "Library", day0),
		lost("r2", domain.AttributeSet{"list": []any{1.5, true, "x"}}, "", time.Time{}),
		lost("r3", nil, "Library Library Library", day0.AddDate(5, 0, 0)),
	}}
	svc, err := New(cands, newMemMatches(), &bagEmbedder{}, Config{Threshold: 1}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	found := headphones()
	for i := range cands.reports {
		got, err := svc.Score(context.Background(), &cands.reports[i], &found)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if got.Composite < 0 || got.Composite > 100 {
			t.Errorf("composite out of range: %+v", got)
		}
	}
}

func TestNew_RejectsBadWeights(t *testing.T) {
	_, err := New(&mockCandidates{}, newMemMatches(), &bagEmbedder{},
		Config{Weights: score.Weights{Detail: 0.7, Location: 0.3, Date: 0.1}}, zap.NewNop())
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNew_CustomWeights(t *testing.T) {
	svc, err := New(&mockCandidates{}, newMemMatches(), &bagEmbedder{},
		Config{Weights: score.Weights{Detail: 0.7, Location: 0.3}}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	found := headphones()
	r := lost("r1", nil, "Library", day0)
	got, _ := svc.Score(context.Background(), &r, &found)
	if got.Composite != 30 {
		t.Errorf("expected 0*0.7 + 100*0.3 + 100*0 = 30, got %d", got.Composite)
	}
}

func TestListForFoundItem(t *testing.T) {
	matches := newMemMatches()
	matches.rows["f1:r1"] = domain.Match{ID: "m1", LostReportID: "r1", FoundItemID: "f1"}
	matches.rows["f2:r1"] = domain.Match{ID: "m2", LostReportID: "r1", FoundItemID: "f2"}
	svc := newTestService(t, &mockCandidates{}, matches, &bagEmbedder{})

	got, err := svc.ListForFoundItem(context.Background(), "f1")
	if err != nil {
		t.Fatalf("ListForFoundItem: %v", err)
	}
	if len(got) != 1 || got[0].ID != "m1" {
		t.Errorf("unexpected matches: %+v", got)
	}
}
