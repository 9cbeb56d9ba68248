package matching

import (
	"context"

	"github.com/kailas-cloud/foundmatch/internal/domain"
)

// CandidateSource lists open lost reports of one category.
type CandidateSource interface {
	ListOpen(ctx context.Context, category string) ([]domain.LostReport, error)
}

// MatchStore persists matches, one record per (lost report, found item) pair.
type MatchStore interface {
	Upsert(ctx context.Context, m domain.Match) (domain.Match, bool, error)
	ListByFoundItem(ctx context.Context, foundID string) ([]domain.Match, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
