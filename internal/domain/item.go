package domain

import (
	"fmt"
	"strings"
	"time"
)

// KeyPrefix namespaces every key foundmatch writes to the database.
const KeyPrefix = "foundmatch:"

// KeySeparator joins the parts of a database key. IDs may not contain it, otherwise
// two different (found, lost) pairs could share one match key.
const KeySeparator = ":"

// ValidateID rejects empty identifiers and identifiers containing KeySeparator.
func ValidateID(kind, id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%s id is required: %w", kind, ErrInvalidInput)
	case strings.Contains(id, KeySeparator):
		return fmt.Errorf("%s id %q must not contain %q: %w", kind, id, KeySeparator, ErrInvalidInput)
	}
	return nil
}

// AttributeSet is a free-form, possibly nested, attribute-name to value mapping.
// Keys are human labels; only values take part in scoring.
type AttributeSet map[string]any

// ReportStatus is the lifecycle state of a lost report.
type ReportStatus string

// Lost report status values.
const (
	ReportOpen   ReportStatus = "OPEN"
	ReportClosed ReportStatus = "CLOSED"
)

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	return s == ReportOpen || s == ReportClosed
}

// LostReport is a user's report of a lost item, the candidate side of a match.
type LostReport struct {
	ID         string
	Category   string
	Attributes AttributeSet
	Location   string
	LostAt     time.Time
	Status     ReportStatus
}

// IsOpen reports whether the report still takes part in matching.
func (r *LostReport) IsOpen() bool { return r.Status == ReportOpen }

// FoundItem is an item logged by staff. Immutable for scoring purposes.
type FoundItem struct {
	ID               string
	Category         string
	PublicAttributes AttributeSet
	Location         string
	FoundAt          time.Time
}
