package score

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/kailas-cloud/foundmatch/internal/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 1}, []float32{3, 3}, 1},
		{"zero magnitude", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cosine(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCosinePercent(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{1, 100},
		{0.874, 87},
		{0.875, 88},
		{0, 0},
		{-0.4, 0},
		{1.0000001, 100},
		{math.NaN(), 0},
	}
	for _, tc := range tests {
		if got := CosinePercent(tc.in); got != tc.want {
			t.Errorf("CosinePercent(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("unexpected normalized vector %v", v)
	}
	z := Normalize([]float32{0, 0})
	if z[0] != 0 || z[1] != 0 {
		t.Errorf("zero vector changed: %v", z)
	}
}

func TestLocationSimilarity_SelfIsFull(t *testing.T) {
	for _, s := range []string{"Library", "Main Gate", "Block C, Room 204", "north car park level 2"} {
		if got := LocationSimilarity(s, s); got != 100 {
			t.Errorf("LocationSimilarity(%q, self) = %d, want 100", s, got)
		}
	}
}

func TestLocationSimilarity_SharedLeadingToken(t *testing.T) {
	// {library, 2nd, floor} vs {library, building, main, campus}: 1/6 Jaccard + 15 bonus.
	got := LocationSimilarity("Library, 2nd Floor", "Library Building, Main Campus")
	if got != 32 {
		t.Errorf("got %d, want 32", got)
	}
	if got < 15 {
		t.Errorf("positional bonus missing: %d", got)
	}
}

func TestLocationSimilarity_SecondSideTruncated(t *testing.T) {
	// Only "cafeteria near the west entrance" survives on the right; "parking" is cut.
	got := LocationSimilarity("parking", "cafeteria near the west entrance parking")
	if got != 0 {
		t.Errorf("got %d, want 0", got)
	}
	// The cap applies to the second argument only.
	got = LocationSimilarity("cafeteria near the west entrance parking", "parking")
	if got != 17 {
		t.Errorf("got %d, want 17", got)
	}
}

func TestLocationSimilarity_Empty(t *testing.T) {
	if got := LocationSimilarity("", "Library"); got != 0 {
		t.Errorf("got %d", got)
	}
	if got := LocationSimilarity("Library", "  ,, "); got != 0 {
		t.Errorf("got %d", got)
	}
}

func TestLocationScorer_Custom(t *testing.T) {
	s := LocationScorer{TokenCap: 0, Bonus: 0}
	if got := s.Score("a b c d e f g", "a b c d e f g"); got != 100 {
		t.Errorf("got %d", got)
	}
	if got := s.Score("gym hall", "gym"); got != 50 {
		t.Errorf("got %d, want 50", got)
	}
}

func TestDaysBetween(t *testing.T) {
	day0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		found time.Time
		want  int
	}{
		{day0, 0},
		{day0.Add(23 * time.Hour), 0},
		{day0.AddDate(0, 0, 10), 10},
		{day0.AddDate(0, 0, 40), 40},
		{day0.AddDate(0, 0, -3), 3},
	}
	for _, tc := range tests {
		if got := DaysBetween(day0, tc.found); got != tc.want {
			t.Errorf("DaysBetween(day0, %v) = %d, want %d", tc.found, got, tc.want)
		}
	}
}

func TestTemporalProximity(t *testing.T) {
	tests := []struct {
		days, want int
	}{
		{0, 100},
		{10, 100},
		{14, 100},
		{15, 70},
		{20, 60},
		{35, 30},
		{40, 30},
		{365, 30},
		{-10, 100},
	}
	for _, tc := range tests {
		if got := TemporalProximity(tc.days); got != tc.want {
			t.Errorf("TemporalProximity(%d) = %d, want %d", tc.days, got, tc.want)
		}
	}
}

func TestTemporalProximity_MonotonicWithFloor(t *testing.T) {
	prev := TemporalProximity(GraceDays)
	for d := GraceDays + 1; d < 1000; d++ {
		got := TemporalProximity(d)
		if got > prev {
			t.Fatalf("increased at %d days: %d > %d", d, got, prev)
		}
		if got < TemporalFloor {
			t.Fatalf("below floor at %d days: %d", d, got)
		}
		prev = got
	}
}

func TestWeights_Composite(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name string
		c    domain.ComponentScores
		want int
	}{
		{"perfect", domain.ComponentScores{Detail: 100, Location: 100, Date: 100}, 100},
		{"empty proof", domain.ComponentScores{Detail: 0, Location: 100, Date: 100}, 40},
		{"zero", domain.ComponentScores{}, 0},
		{"mixed", domain.ComponentScores{Detail: 83, Location: 32, Date: 30}, 62},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := w.Composite(tc.c); got != tc.want {
				t.Errorf("Composite() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestWeights_CompositeInRange(t *testing.T) {
	w := DefaultWeights()
	for d := 0; d <= 100; d += 7 {
		for l := 0; l <= 100; l += 9 {
			for dt := TemporalFloor; dt <= 100; dt += 10 {
				got := w.Composite(domain.ComponentScores{Detail: d, Location: l, Date: dt})
				if got < 0 || got > 100 {
					t.Fatalf("composite out of range: %d", got)
				}
			}
		}
	}
}

func TestWeights_Validate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}
	if err := (Weights{Detail: 0.7, Location: 0.3}).Validate(); err != nil {
		t.Fatalf("70/30 split should be valid: %v", err)
	}
	err := Weights{Detail: 0.5, Location: 0.3, Date: 0.1}.Validate()
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for sum != 1, got %v", err)
	}
	err = Weights{Detail: 1.2, Location: -0.2}.Validate()
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative weight, got %v", err)
	}
}
