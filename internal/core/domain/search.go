package domain

// RankedResult is one entry of a single signal's ranked result list.
// Rank is 1-based and dense within its source list.
type RankedResult struct {
	ID    string   `json:"id"`
	Rank  int      `json:"rank"`
	Score *float64 `json:"score,omitempty"` // raw engine score, nil when the backend reports none
}

// FusedResult is a derived, presentation-only ranking entry produced by
// reciprocal rank fusion. RawScores holds the native score each source list
// reported for the item, keyed by list index.
type FusedResult struct {
	ID        string          `json:"id"`
	Score     float64         `json:"score"`
	RawScores map[int]float64 `json:"raw_scores,omitempty"`
}

// SearchFilters constrains both retrieval signals.
type SearchFilters struct {
	DocumentIDs []string `json:"document_ids,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// RetrievalOptions configures the hybrid retriever.
type RetrievalOptions struct {
	// TopPerSignal is the depth requested from each signal before fusion
	TopPerSignal int `json:"top_per_signal"`

	// TopFused is the number of fused results kept for answer context
	TopFused int `json:"top_fused"`
}

// DefaultRetrievalOptions returns sensible defaults
func DefaultRetrievalOptions() RetrievalOptions {
	return RetrievalOptions{
		TopPerSignal: 10,
		TopFused:     10,
	}
}
