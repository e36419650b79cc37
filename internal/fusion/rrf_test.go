package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

func ranked(id string, rank int) domain.RankedResult {
	return domain.RankedResult{ID: id, Rank: rank}
}

func TestFuseCombinesRanks(t *testing.T) {
	lists := [][]domain.RankedResult{
		{ranked("A", 1)},
		{ranked("A", 3), ranked("B", 1)},
	}

	fused := Fuse(lists, 60)

	require.Len(t, fused, 2)
	assert.Equal(t, "A", fused[0].ID)
	assert.Equal(t, "B", fused[1].ID)
	assert.InDelta(t, 1.0/61+1.0/63, fused[0].Score, 1e-12)
	assert.InDelta(t, 1.0/61, fused[1].Score, 1e-12)
}

func TestFuseIgnoresRawScoreScale(t *testing.T) {
	small := 0.001
	huge := 98765.0

	withScores := func(score float64) [][]domain.RankedResult {
		return [][]domain.RankedResult{
			{{ID: "A", Rank: 1, Score: &score}, {ID: "B", Rank: 2, Score: &score}},
			{{ID: "B", Rank: 1, Score: &score}},
		}
	}

	a := Fuse(withScores(small), 60)
	b := Fuse(withScores(huge), 60)

	require.Len(t, a, 2)
	require.Len(t, b, 2)
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.InDelta(t, a[i].Score, b[i].Score, 1e-12)
	}
}

func TestFuseRecordsRawScoresPerList(t *testing.T) {
	vec := 0.87
	lex := 12.5
	lists := [][]domain.RankedResult{
		{{ID: "A", Rank: 1, Score: &vec}},
		{{ID: "A", Rank: 2, Score: &lex}},
	}

	fused := Fuse(lists, 60)

	require.Len(t, fused, 1)
	assert.Equal(t, vec, fused[0].RawScores[0])
	assert.Equal(t, lex, fused[0].RawScores[1])
}

func TestFuseBreaksTiesByDiscoveryOrder(t *testing.T) {
	lists := [][]domain.RankedResult{
		{ranked("first", 1), ranked("second", 2)},
		{ranked("second", 1), ranked("first", 2)},
	}

	fused := Fuse(lists, 60)

	require.Len(t, fused, 2)
	assert.Equal(t, "first", fused[0].ID)
	assert.Equal(t, "second", fused[1].ID)
}

func TestFuseDeterministic(t *testing.T) {
	lists := [][]domain.RankedResult{
		{ranked("A", 1), ranked("B", 2), ranked("C", 3)},
		{ranked("C", 1), ranked("A", 2)},
	}

	first := Fuse(lists, 60)
	for i := 0; i < 10; i++ {
		again := Fuse(lists, 60)
		require.Equal(t, first, again)
	}
}

func TestFuseEmptyInput(t *testing.T) {
	assert.Empty(t, Fuse(nil, 60))
	assert.Empty(t, Fuse([][]domain.RankedResult{{}, {}}, 60))
}

func TestFuseDefaultsK(t *testing.T) {
	lists := [][]domain.RankedResult{{ranked("A", 1)}}

	fused := Fuse(lists, 0)

	require.Len(t, fused, 1)
	assert.InDelta(t, 1.0/61, fused[0].Score, 1e-12)
}
