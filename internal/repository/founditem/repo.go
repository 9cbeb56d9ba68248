// Package founditem stores found items so a match can be re-run by ID.
package founditem

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/foundmatch/internal/domain"
)

const (
	fieldID         = "id"
	fieldCategory   = "category"
	fieldAttributes = "public_attributes"
	fieldLocation   = "location"
	fieldFoundAt    = "found_at"
)

// store is the consumer interface for found items (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo persists found items as hashes.
type Repo struct {
	store store
}

// New creates a found item repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save creates or replaces a found item.
func (r *Repo) Save(ctx context.Context, item *domain.FoundItem) error {
	if err := domain.ValidateID("found item", item.ID); err != nil {
		return err
	}
	if item.Category == "" {
		return fmt.Errorf("found item %s: category is required: %w", item.ID, domain.ErrInvalidInput)
	}

	attrs, err := json.Marshal(item.PublicAttributes)
	if err != nil {
		return fmt.Errorf("found item %s: marshal attributes: %w: %w", item.ID, domain.ErrInvalidInput, err)
	}

	key := itemKey(item.ID)
	fields := map[string]string{
		fieldID:         item.ID,
		fieldCategory:   item.Category,
		fieldAttributes: string(attrs),
		fieldLocation:   item.Location,
		fieldFoundAt:    item.FoundAt.UTC().Format(time.RFC3339Nano),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w: %w", key, domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Get returns a found item by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.FoundItem, error) {
	key := itemKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.FoundItem{}, fmt.Errorf("hgetall %s: %w: %w", key, domain.ErrStorageUnavailable, err)
	}
	if len(m) == 0 {
		return domain.FoundItem{}, fmt.Errorf("found item %s: %w", id, domain.ErrNotFound)
	}

	item := domain.FoundItem{
		ID:       m[fieldID],
		Category: m[fieldCategory],
		Location: m[fieldLocation],
	}
	if raw := m[fieldAttributes]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &item.PublicAttributes); err != nil {
			return domain.FoundItem{}, fmt.Errorf("found item %s: attributes: %w", id, err)
		}
	}
	if raw := m[fieldFoundAt]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domain.FoundItem{}, fmt.Errorf("found item %s: found_at: %w", id, err)
		}
		item.FoundAt = t
	}
	return item, nil
}

func itemKey(id string) string {
	return domain.KeyPrefix + "found:" + id
}
