package domain

import "time"

// MatchStatus is the review state of a match.
type MatchStatus string

// Match status values. Only PENDING is written by the engine.
const (
	MatchPending  MatchStatus = "PENDING"
	MatchApproved MatchStatus = "APPROVED"
	MatchRejected MatchStatus = "REJECTED"
)

// Reviewed reports whether staff already acted on the match.
func (s MatchStatus) Reviewed() bool {
	return s == MatchApproved || s == MatchRejected
}

// ComponentScores holds the three sub-scores, each in 0..100.
type ComponentScores struct {
	Detail   int
	Location int
	Date     int
}

// Match links a lost report to a found item with a composite confidence score.
// At most one Match exists per (LostReportID, FoundItemID) pair.
type Match struct {
	ID           string
	LostReportID string
	FoundItemID  string
	Composite    int
	Components   ComponentScores
	Status       MatchStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
