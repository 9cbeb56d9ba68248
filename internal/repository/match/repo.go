// Package match persists scored matches, one record per (lost report, found item) pair.
package match

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/foundmatch/internal/db"
	"github.com/kailas-cloud/foundmatch/internal/domain"
)

// upsertGuard vetoes writes over reviewed matches and keeps the identity of existing ones.
var upsertGuard = db.HashGuard{
	Field: fieldStatus,
	Block: []string{string(domain.MatchApproved), string(domain.MatchRejected)},
	Keep:  []string{fieldID, fieldCreatedAt},
}

// store is the consumer interface for matches (ISP).
type store interface {
	HSetGuarded(ctx context.Context, key string, fields map[string]string, guard db.HashGuard) (map[string]string, bool, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements usecase/matching.MatchStore.
type Repo struct {
	store store
	now   func() time.Time
	newID func() string
}

// New creates a match repository.
func New(s store) *Repo {
	return &Repo{
		store: s,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Upsert records the scores of a pair. Returns the stored match and whether it was created.
//   - no record: a new PENDING match is created with a fresh ID.
//   - PENDING record: scores are replaced in place; ID and CreatedAt are kept.
//   - reviewed record: left untouched and returned as stored.
//
// The status check and the write run as one server-side step, so a review that lands
// while a run is scoring is never overwritten.
func (r *Repo) Upsert(ctx context.Context, m domain.Match) (domain.Match, bool, error) {
	if err := domain.ValidateID("lost report", m.LostReportID); err != nil {
		return domain.Match{}, false, fmt.Errorf("match: %w", err)
	}
	if err := domain.ValidateID("found item", m.FoundItemID); err != nil {
		return domain.Match{}, false, fmt.Errorf("match: %w", err)
	}

	now := r.now().UTC()
	m.ID = r.newID()
	m.Status = domain.MatchPending
	m.CreatedAt = now
	m.UpdatedAt = now

	key := matchKey(m.FoundItemID, m.LostReportID)
	existing, written, err := r.store.HSetGuarded(ctx, key, buildHashFields(&m), upsertGuard)
	if err != nil {
		return domain.Match{}, false, fmt.Errorf("upsert %s: %w: %w", key, domain.ErrStorageUnavailable, err)
	}

	if !written {
		prev, err := parseHashFields(existing)
		if err != nil {
			return domain.Match{}, false, err
		}
		return prev, false, nil
	}

	created := len(existing) == 0
	if !created {
		prev, err := parseHashFields(existing)
		if err != nil {
			return domain.Match{}, false, err
		}
		m.ID = prev.ID
		m.CreatedAt = prev.CreatedAt
	}

	idx := foundIndexKey(m.FoundItemID)
	if err := r.store.SAdd(ctx, idx, m.LostReportID); err != nil {
		return domain.Match{}, false, fmt.Errorf("sadd %s: %w: %w", idx, domain.ErrStorageUnavailable, err)
	}
	return m, created, nil
}

// ListByFoundItem returns every stored match for a found item,
// ordered by composite descending then lost report ID.
func (r *Repo) ListByFoundItem(ctx context.Context, foundID string) ([]domain.Match, error) {
	idx := foundIndexKey(foundID)
	lostIDs, err := r.store.SMembers(ctx, idx)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w: %w", idx, domain.ErrStorageUnavailable, err)
	}
	if len(lostIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(lostIDs))
	for i, id := range lostIDs {
		keys[i] = matchKey(foundID, id)
	}
	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load matches %s: %w: %w", foundID, domain.ErrStorageUnavailable, err)
	}

	matches := make([]domain.Match, 0, len(rows))
	for _, h := range rows {
		if len(h) == 0 {
			continue
		}
		m, err := parseHashFields(h)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Composite != matches[j].Composite {
			return matches[i].Composite > matches[j].Composite
		}
		return matches[i].LostReportID < matches[j].LostReportID
	})
	return matches, nil
}

func matchKey(foundID, lostID string) string {
	return domain.KeyPrefix + "match" + domain.KeySeparator + foundID + domain.KeySeparator + lostID
}

func foundIndexKey(foundID string) string {
	return domain.KeyPrefix + "matches" + domain.KeySeparator + foundID
}
