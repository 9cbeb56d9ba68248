package matching

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/foundmatch/internal/domain"
)

// bagEmbedder hashes tokens into a fixed-size count vector.
// Identical texts embed identically; disjoint texts are orthogonal unless hashes collide.
type bagEmbedder struct {
	failOn   string
	delay    time.Duration
	calls    atomic.Int64
	inFlight atomic.Int64
	peak     atomic.Int64
}

const bagDims = 64

func (e *bagEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls.Add(1)
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return domain.EmbeddingResult{}, ctx.Err()
		}
	}
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return domain.EmbeddingResult{}, errors.New("inference failed")
	}

	vec := make([]float32, bagDims)
	for _, tok := range strings.Fields(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%bagDims]++
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

type mockCandidates struct {
	reports []domain.LostReport
	err     error
	gotCat  string
}

func (m *mockCandidates) ListOpen(_ context.Context, category string) ([]domain.LostReport, error) {
	m.gotCat = category
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.LostReport
	for _, r := range m.reports {
		if r.Category == category && r.IsOpen() {
			out = append(out, r)
		}
	}
	return out, nil
}

// memMatches keeps one match per pair, mirroring the repository's upsert rules.
type memMatches struct {
	mu      sync.Mutex
	rows    map[string]domain.Match
	failFor string
	seq     int
}

func newMemMatches() *memMatches {
	return &memMatches{rows: map[string]domain.Match{}}
}

func (m *memMatches) Upsert(_ context.Context, in domain.Match) (domain.Match, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in.LostReportID == m.failFor {
		return domain.Match{}, false, domain.ErrStorageUnavailable
	}
	key := in.FoundItemID + ":" + in.LostReportID
	prev, ok := m.rows[key]
	if ok && prev.Status.Reviewed() {
		return prev, false, nil
	}
	if ok {
		in.ID = prev.ID
	} else {
		m.seq++
		in.ID = "m" + string(rune('0'+m.seq))
	}
	in.Status = domain.MatchPending
	m.rows[key] = in
	return in, !ok, nil
}

func (m *memMatches) ListByFoundItem(_ context.Context, foundID string) ([]domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Match
	for _, r := range m.rows {
		if r.FoundItemID == foundID {
			out = append(out, r)
		}
	}
	return out, nil
}
