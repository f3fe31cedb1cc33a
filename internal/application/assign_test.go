package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
)

func cand(l, r int, score float64) entity.Candidate {
	return entity.Candidate{Left: l, Right: r, Score: score, Type: entity.ArmorSmall}
}

func pairs(cs []entity.Candidate) [][2]int {
	out := make([][2]int, 0, len(cs))
	for _, c := range cs {
		out = append(out, [2]int{c.Left, c.Right})
	}
	return out
}

func TestGreedyAssigner_TakesBestFirst(t *testing.T) {
	cands := []entity.Candidate{cand(0, 1, 0.9), cand(0, 2, 0.8), cand(1, 3, 0.8)}

	got := GreedyAssigner{}.Assign(cands, 4)
	assert.Equal(t, [][2]int{{0, 1}}, pairs(got))
	assert.InDelta(t, 0.9, totalScore(got), 1e-12)
}

func TestGreedyAssigner_TieBreakByIndex(t *testing.T) {
	cands := []entity.Candidate{cand(2, 3, 0.5), cand(1, 2, 0.5), cand(0, 1, 0.5)}

	got := GreedyAssigner{}.Assign(cands, 4)
	assert.Equal(t, [][2]int{{0, 1}, {2, 3}}, pairs(got))
}

func TestExactAssigner_BeatsGreedy(t *testing.T) {
	cands := []entity.Candidate{cand(0, 1, 0.9), cand(0, 2, 0.8), cand(1, 3, 0.8)}

	got := ExactAssigner{MaxBars: 16}.Assign(cands, 4)
	assert.ElementsMatch(t, [][2]int{{0, 2}, {1, 3}}, pairs(got))
	assert.InDelta(t, 1.6, totalScore(got), 1e-12)
}

func TestExactAssigner_FallsBackAboveLimit(t *testing.T) {
	cands := []entity.Candidate{cand(0, 1, 0.9), cand(0, 2, 0.8), cand(1, 3, 0.8)}

	got := ExactAssigner{MaxBars: 3}.Assign(cands, 4)
	assert.Equal(t, [][2]int{{0, 1}}, pairs(got))
}

func TestExactAssigner_Empty(t *testing.T) {
	assert.Empty(t, ExactAssigner{MaxBars: 16}.Assign(nil, 0))
}

func TestExactAssigner_SparseIndices(t *testing.T) {
	cands := []entity.Candidate{cand(3, 10, 0.4), cand(10, 17, 0.7), cand(17, 30, 0.6)}

	got := ExactAssigner{MaxBars: 16}.Assign(cands, 31)
	assert.ElementsMatch(t, [][2]int{{3, 10}, {17, 30}}, pairs(got))
}

func TestNewAssigner(t *testing.T) {
	cfg := config.DefaultParams().Matcher

	a, err := NewAssigner("", cfg)
	require.NoError(t, err)
	assert.IsType(t, GreedyAssigner{}, a)

	a, err = NewAssigner("exact", cfg)
	require.NoError(t, err)
	assert.Equal(t, ExactAssigner{MaxBars: cfg.ExactMaxBars}, a)

	_, err = NewAssigner("hungarian", cfg)
	require.Error(t, err)
}
