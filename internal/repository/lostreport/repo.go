// Package lostreport stores lost reports and serves them as match candidates.
package lostreport

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/foundmatch/internal/domain"
)

// store is the consumer interface for lost reports (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements usecase/matching.CandidateSource.
type Repo struct {
	store store
}

// New creates a lost report repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save creates or replaces a report and keeps the open-by-category index in step with its status.
// An empty status is stored as OPEN.
func (r *Repo) Save(ctx context.Context, report *domain.LostReport) error {
	if report.Status == "" {
		report.Status = domain.ReportOpen
	}
	if err := validate(report); err != nil {
		return err
	}

	key := reportKey(report.ID)

	prev, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("hgetall %s: %w: %w", key, domain.ErrStorageUnavailable, err)
	}

	fields, err := buildHashFields(report)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w: %w", key, domain.ErrStorageUnavailable, err)
	}

	if oldCategory := prev[fieldCategory]; oldCategory != "" && oldCategory != report.Category {
		if err := r.store.SRem(ctx, openKey(oldCategory), report.ID); err != nil {
			return fmt.Errorf("srem %s: %w: %w", openKey(oldCategory), domain.ErrStorageUnavailable, err)
		}
	}

	idx := openKey(report.Category)
	if report.IsOpen() {
		err = r.store.SAdd(ctx, idx, report.ID)
	} else {
		err = r.store.SRem(ctx, idx, report.ID)
	}
	if err != nil {
		return fmt.Errorf("update index %s: %w: %w", idx, domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Get returns a report by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.LostReport, error) {
	key := reportKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.LostReport{}, fmt.Errorf("hgetall %s: %w: %w", key, domain.ErrStorageUnavailable, err)
	}
	if len(m) == 0 {
		return domain.LostReport{}, fmt.Errorf("lost report %s: %w", id, domain.ErrNotFound)
	}
	return parseHashFields(m)
}

// ListOpen returns every OPEN report in category, ordered as the index returns them.
// Index entries whose report vanished, closed or moved category are skipped.
func (r *Repo) ListOpen(ctx context.Context, category string) ([]domain.LostReport, error) {
	idx := openKey(category)
	ids, err := r.store.SMembers(ctx, idx)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w: %w", idx, domain.ErrStorageUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = reportKey(id)
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load candidates %s: %w: %w", category, domain.ErrStorageUnavailable, err)
	}

	reports := make([]domain.LostReport, 0, len(rows))
	for _, m := range rows {
		if len(m) == 0 {
			continue
		}
		report, err := parseHashFields(m)
		if err != nil {
			return nil, err
		}
		if !report.IsOpen() || report.Category != category {
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func validate(report *domain.LostReport) error {
	if err := domain.ValidateID("lost report", report.ID); err != nil {
		return err
	}
	switch {
	case report.Category == "":
		return fmt.Errorf("lost report %s: category is required: %w", report.ID, domain.ErrInvalidInput)
	case !report.Status.Valid():
		return fmt.Errorf("lost report %s: unknown status %q: %w", report.ID, report.Status, domain.ErrInvalidInput)
	}
	return nil
}

func reportKey(id string) string {
	return domain.KeyPrefix + "report:" + id
}

func openKey(category string) string {
	return domain.KeyPrefix + "reports:open:" + category
}
