package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/foundmatch/internal/domain"
)

// lostRecord is the JSON file format of a lost report.
type lostRecord struct {
	ID         string         `json:"id"`
	Category   string         `json:"category"`
	Attributes map[string]any `json:"attributes"`
	Location   string         `json:"location"`
	LostAt     time.Time      `json:"lost_at"`
}

// foundRecord is the JSON file format of a found item.
type foundRecord struct {
	ID               string         `json:"id"`
	Category         string         `json:"category"`
	PublicAttributes map[string]any `json:"public_attributes"`
	Location         string         `json:"location"`
	FoundAt          time.Time      `json:"found_at"`
}

func readLost(path string) (domain.LostReport, error) {
	var rec lostRecord
	if err := readJSON(path, &rec); err != nil {
		return domain.LostReport{}, err
	}
	return domain.LostReport{
		ID:         rec.ID,
		Category:   rec.Category,
		Attributes: rec.Attributes,
		Location:   rec.Location,
		LostAt:     rec.LostAt,
		Status:     domain.ReportOpen,
	}, nil
}

func readFound(path string) (domain.FoundItem, error) {
	var rec foundRecord
	if err := readJSON(path, &rec); err != nil {
		return domain.FoundItem{}, err
	}
	return domain.FoundItem{
		ID:               rec.ID,
		Category:         rec.Category,
		PublicAttributes: rec.PublicAttributes,
		Location:         rec.Location,
		FoundAt:          rec.FoundAt,
	}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
