package lostreport

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/foundmatch/internal/domain"
)

// Hash field names.
const (
	fieldID         = "id"
	fieldCategory   = "category"
	fieldAttributes = "attributes"
	fieldLocation   = "location"
	fieldLostAt     = "lost_at"
	fieldStatus     = "status"
)

// buildHashFields converts a report into a flat map for HSET. Attributes are stored as JSON.
func buildHashFields(r *domain.LostReport) (map[string]string, error) {
	attrs, err := json.Marshal(r.Attributes)
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}
	return map[string]string{
		fieldID:         r.ID,
		fieldCategory:   r.Category,
		fieldAttributes: string(attrs),
		fieldLocation:   r.Location,
		fieldLostAt:     r.LostAt.UTC().Format(time.RFC3339Nano),
		fieldStatus:     string(r.Status),
	}, nil
}

// parseHashFields converts a hash back into a report.
func parseHashFields(m map[string]string) (domain.LostReport, error) {
	r := domain.LostReport{
		ID:       m[fieldID],
		Category: m[fieldCategory],
		Location: m[fieldLocation],
		Status:   domain.ReportStatus(m[fieldStatus]),
	}

	if raw := m[fieldAttributes]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &r.Attributes); err != nil {
			return domain.LostReport{}, fmt.Errorf("report %s: attributes: %w", r.ID, err)
		}
	}

	if raw := m[fieldLostAt]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domain.LostReport{}, fmt.Errorf("report %s: lost_at: %w", r.ID, err)
		}
		r.LostAt = t
	}

	return r, nil
}
