package match

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/foundmatch/internal/domain"
)

const (
	fieldID        = "id"
	fieldLostID    = "lost_report_id"
	fieldFoundID   = "found_item_id"
	fieldComposite = "composite"
	fieldDetail    = "detail_score"
	fieldLocation  = "location_score"
	fieldDate      = "date_score"
	fieldStatus    = "status"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

func buildHashFields(m *domain.Match) map[string]string {
	return map[string]string{
		fieldID:        m.ID,
		fieldLostID:    m.LostReportID,
		fieldFoundID:   m.FoundItemID,
		fieldComposite: strconv.Itoa(m.Composite),
		fieldDetail:    strconv.Itoa(m.Components.Detail),
		fieldLocation:  strconv.Itoa(m.Components.Location),
		fieldDate:      strconv.Itoa(m.Components.Date),
		fieldStatus:    string(m.Status),
		fieldCreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldUpdatedAt: m.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func parseHashFields(h map[string]string) (domain.Match, error) {
	m := domain.Match{
		ID:           h[fieldID],
		LostReportID: h[fieldLostID],
		FoundItemID:  h[fieldFoundID],
		Status:       domain.MatchStatus(h[fieldStatus]),
	}

	ints := []struct {
		field string
		dst   *int
	}{
		{fieldComposite, &m.Composite},
		{fieldDetail, &m.Components.Detail},
		{fieldLocation, &m.Components.Location},
		{fieldDate, &m.Components.Date},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(h[f.field])
		if err != nil {
			return domain.Match{}, fmt.Errorf("match %s: %s: %w", m.ID, f.field, err)
		}
		*f.dst = v
	}

	times := []struct {
		field string
		dst   *time.Time
	}{
		{fieldCreatedAt, &m.CreatedAt},
		{fieldUpdatedAt, &m.UpdatedAt},
	}
	for _, f := range times {
		t, err := time.Parse(time.RFC3339Nano, h[f.field])
		if err != nil {
			return domain.Match{}, fmt.Errorf("match %s: %s: %w", m.ID, f.field, err)
		}
		*f.dst = t
	}

	return m, nil
}
