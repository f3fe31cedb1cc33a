package app

import (
	"image"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/require"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
)

func bar(x, y, length, angle float64) entity.LightBar {
	return entity.LightBar{Center: r2.Point{X: x, Y: y}, Width: 4, Length: length, Angle: angle}
}

func newMatcher() *ArmorMatcher {
	return NewArmorMatcher(config.DefaultParams().Matcher, nil)
}

func TestArmorMatcher_ParallelBoundary(t *testing.T) {
	m := newMatcher()
	require.True(t, m.Parallel(bar(0, 0, 20, 0), bar(60, 0, 20, 10)))
	require.True(t, m.Parallel(bar(0, 0, 20, -5), bar(60, 0, 20, 5)))
	require.False(t, m.Parallel(bar(0, 0, 20, 0), bar(60, 0, 20, 10.001)))
}

func TestArmorMatcher_LengthRatioBoundary(t *testing.T) {
	cfg := config.DefaultParams().Matcher
	cfg.MaxLengthRatio = 1.5
	m := NewArmorMatcher(cfg, nil)

	require.True(t, m.SimilarLength(bar(0, 0, 30, 0), bar(60, 0, 20, 0)))
	require.True(t, m.SimilarLength(bar(0, 0, 20, 0), bar(60, 0, 30, 0)))
	require.False(t, m.SimilarLength(bar(0, 0, 30.01, 0), bar(60, 0, 20, 0)))
	require.False(t, m.SimilarLength(bar(0, 0, 20, 0), bar(60, 0, 0, 0)))
}

func TestArmorMatcher_VerticalAlignmentBoundary(t *testing.T) {
	m := newMatcher()
	// средняя длина 20, допуск 0.5 → 10 px
	require.True(t, m.Aligned(bar(0, 100, 20, 0), bar(60, 110, 20, 0)))
	require.True(t, m.Aligned(bar(0, 110, 20, 0), bar(60, 100, 20, 0)))
	require.False(t, m.Aligned(bar(0, 100, 20, 0), bar(60, 110.001, 20, 0)))
}

func TestArmorMatcher_ValidPairNeedsAllPredicates(t *testing.T) {
	m := newMatcher()
	require.True(t, m.ValidPair(bar(100, 100, 20, 0), bar(160, 100, 20, 0)))
	require.False(t, m.ValidPair(bar(100, 100, 20, 0), bar(160, 100, 20, 15)))
	require.False(t, m.ValidPair(bar(100, 100, 20, 0), bar(160, 100, 40, 0)))
	require.False(t, m.ValidPair(bar(100, 100, 20, 0), bar(160, 120, 20, 0)))
}

func TestArmorMatcher_ClassifyPartition(t *testing.T) {
	m := newMatcher()
	for _, tc := range []struct {
		ratio float64
		want  entity.ArmorType
		ok    bool
	}{
		{ratio: 1.79, ok: false},
		{ratio: 1.8, want: entity.ArmorSmall, ok: true},
		{ratio: 3.19, want: entity.ArmorSmall, ok: true},
		{ratio: 3.2, want: entity.ArmorLarge, ok: true},
		{ratio: 5.49, want: entity.ArmorLarge, ok: true},
		{ratio: 5.5, ok: false},
		{ratio: 9, ok: false},
	} {
		got, ok := m.Classify(tc.ratio)
		require.Equal(t, tc.ok, ok, "ratio %v", tc.ratio)
		require.Equal(t, tc.want, got, "ratio %v", tc.ratio)
	}
}

func TestArmorMatcher_SmallArmorScenario(t *testing.T) {
	m := newMatcher()
	armors := m.Match([]entity.LightBar{bar(100, 100, 20, 0), bar(160, 100, 20, 0)})
	require.Len(t, armors, 1)

	a := armors[0]
	require.Equal(t, entity.ArmorSmall, a.Type)
	require.Equal(t, 0, a.Left)
	require.Equal(t, 1, a.Right)
	require.Equal(t, [4]r2.Point{{X: 98, Y: 90}, {X: 162, Y: 90}, {X: 162, Y: 110}, {X: 98, Y: 110}}, a.Corners)
	require.Equal(t, image.Rect(98, 90, 163, 111), a.Bounds)
	require.Equal(t, 1.0, a.Score)
	require.False(t, a.HasDistance())
}

func TestArmorMatcher_LargeArmor(t *testing.T) {
	m := newMatcher()
	armors := m.Match([]entity.LightBar{bar(100, 100, 20, 0), bar(180, 100, 20, 0)})
	require.Len(t, armors, 1)
	require.Equal(t, entity.ArmorLarge, armors[0].Type)
}

func TestArmorMatcher_EmptyCases(t *testing.T) {
	m := newMatcher()
	require.Empty(t, m.Match(nil))
	require.Empty(t, m.Match([]entity.LightBar{bar(100, 100, 20, 0)}))
	// слишком далеко друг от друга
	require.Empty(t, m.Match([]entity.LightBar{bar(100, 100, 20, 0), bar(300, 100, 20, 0)}))
	// слишком близко
	require.Empty(t, m.Match([]entity.LightBar{bar(100, 100, 20, 0), bar(120, 100, 20, 0)}))
}

func TestArmorMatcher_PrefersHigherScore(t *testing.T) {
	m := newMatcher()
	bars := []entity.LightBar{
		bar(100, 100, 20, 0),
		bar(160, 100, 20, 0),
		bar(220, 102, 20, 0),
	}

	cands := m.Candidates(bars)
	require.Len(t, cands, 2)
	require.InDelta(t, 0.9, cands[1].Score, 1e-9)

	armors := m.Match(bars)
	require.Len(t, armors, 1)
	require.Equal(t, 0, armors[0].Left)
	require.Equal(t, 1, armors[0].Right)
}

func TestArmorMatcher_Disjointness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	assigners := []struct {
		name string
		m    *ArmorMatcher
	}{
		{"greedy", newMatcher()},
		{"exact", NewArmorMatcher(config.DefaultParams().Matcher, ExactAssigner{MaxBars: 16})},
	}

	for iter := 0; iter < 200; iter++ {
		n := 2 + rng.Intn(10)
		bars := make([]entity.LightBar, n)
		for i := range bars {
			bars[i] = bar(
				100+float64(i)*30+rng.Float64()*20,
				100+rng.Float64()*8,
				18+rng.Float64()*6,
				rng.Float64()*12-6,
			)
		}

		for _, a := range assigners {
			used := make(map[int]bool)
			for _, armor := range a.m.Match(bars) {
				require.False(t, used[armor.Left], "%s: bar %d reused", a.name, armor.Left)
				require.False(t, used[armor.Right], "%s: bar %d reused", a.name, armor.Right)
				used[armor.Left], used[armor.Right] = true, true
			}
		}
	}
}
