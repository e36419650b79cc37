// Package fusion implements reciprocal rank fusion of independently
// ranked result lists.
package fusion

import (
	"sort"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// DefaultK is the standard RRF dampening constant.
const DefaultK = 60

// Fuse combines multiple ranked lists into one fused, score-ordered list.
// Every item at 1-based rank r in a list contributes 1/(k+r) to its fused
// score, so items ranked highly by any list, and especially by several,
// float to the top. Raw scores are recorded per source list but never
// influence the fused order; only rank position matters, which makes the
// fusion robust to incomparable scoring scales.
//
// Ties are broken by first discovery order, so the result is deterministic
// given identical inputs.
func Fuse(lists [][]domain.RankedResult, k int) []domain.FusedResult {
	if k <= 0 {
		k = DefaultK
	}

	type entry struct {
		result domain.FusedResult
		seen   int // discovery order for deterministic ties
	}

	entries := make(map[string]*entry)
	order := 0

	for listIdx, list := range lists {
		for _, item := range list {
			e, ok := entries[item.ID]
			if !ok {
				e = &entry{
					result: domain.FusedResult{ID: item.ID},
					seen:   order,
				}
				order++
				entries[item.ID] = e
			}
			e.result.Score += 1.0 / float64(k+item.Rank)
			if item.Score != nil {
				if e.result.RawScores == nil {
					e.result.RawScores = make(map[int]float64)
				}
				e.result.RawScores[listIdx] = *item.Score
			}
		}
	}

	fused := make([]*entry, 0, len(entries))
	for _, e := range entries {
		fused = append(fused, e)
	}
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].result.Score != fused[j].result.Score {
			return fused[i].result.Score > fused[j].result.Score
		}
		return fused[i].seen < fused[j].seen
	})

	results := make([]domain.FusedResult, len(fused))
	for i, e := range fused {
		results[i] = e.result
	}
	return results
}
