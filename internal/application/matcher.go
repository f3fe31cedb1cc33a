package app

import (
	"math"

	"github.com/golang/geo/r2"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
	"armor-aim/internal/geometry"
)

// ArmorMatcher собирает пластины из пар световых элементов.
type ArmorMatcher struct {
	cfg      config.MatcherConfig
	assigner port.PairAssigner
}

// NewArmorMatcher создаёт сопоставитель; без assigner используется жадный.
func NewArmorMatcher(cfg config.MatcherConfig, assigner port.PairAssigner) *ArmorMatcher {
	if assigner == nil {
		assigner = GreedyAssigner{}
	}
	return &ArmorMatcher{cfg: cfg, assigner: assigner}
}

// Parallel разница наклонов не больше допуска.
func (m *ArmorMatcher) Parallel(a, b entity.LightBar) bool {
	return math.Abs(a.Angle-b.Angle) <= m.cfg.MaxAngleDiff
}

// SimilarLength отношение длинного элемента к короткому в допуске.
func (m *ArmorMatcher) SimilarLength(a, b entity.LightBar) bool {
	long, short := math.Max(a.Length, b.Length), math.Min(a.Length, b.Length)
	if short <= 0 {
		return false
	}
	return long/short <= m.cfg.MaxLengthRatio
}

// Aligned центры на одной высоте с точностью до доли средней длины.
func (m *ArmorMatcher) Aligned(a, b entity.LightBar) bool {
	mean := (a.Length + b.Length) / 2
	return math.Abs(a.Center.Y-b.Center.Y) <= mean*m.cfg.MaxYDiffRatio
}

// ValidPair все три геометрических условия выполнены.
func (m *ArmorMatcher) ValidPair(a, b entity.LightBar) bool {
	return m.Parallel(a, b) && m.SimilarLength(a, b) && m.Aligned(a, b)
}

// Classify делит ось «расстояние / средняя длина» на полуинтервалы:
// [SmallMin, SmallMax) малая, [SmallMax, LargeMax) большая, иначе отказ.
func (m *ArmorMatcher) Classify(ratio float64) (entity.ArmorType, bool) {
	switch {
	case ratio >= m.cfg.SmallMinRatio && ratio < m.cfg.SmallMaxRatio:
		return entity.ArmorSmall, true
	case ratio >= m.cfg.SmallMaxRatio && ratio < m.cfg.LargeMaxRatio:
		return entity.ArmorLarge, true
	}
	return "", false
}

// Candidates перебирает все пары и оставляет прошедшие проверку и классификацию.
func (m *ArmorMatcher) Candidates(bars []entity.LightBar) []entity.Candidate {
	var out []entity.Candidate
	for i := 0; i < len(bars); i++ {
		for j := i + 1; j < len(bars); j++ {
			a, b := bars[i], bars[j]
			if !m.ValidPair(a, b) {
				continue
			}

			mean := (a.Length + b.Length) / 2
			dist := a.Center.Sub(b.Center).Norm()
			kind, ok := m.Classify(dist / mean)
			if !ok {
				continue
			}

			angleDiff := math.Abs(a.Angle - b.Angle)
			yDiff := math.Abs(a.Center.Y - b.Center.Y)
			out = append(out, entity.Candidate{
				Left:       i,
				Right:      j,
				MeanLength: mean,
				Distance:   dist,
				AngleDiff:  angleDiff,
				YDiff:      yDiff,
				Type:       kind,
				Score:      m.score(angleDiff, yDiff, mean),
			})
		}
	}
	return out
}

// score среднее близости наклонов и выравнивания по высоте, в [0, 1].
func (m *ArmorMatcher) score(angleDiff, yDiff, mean float64) float64 {
	angle := 1 - angleDiff/m.cfg.MaxAngleDiff
	align := 1 - yDiff/(mean*m.cfg.MaxYDiffRatio)
	return (angle + align) / 2
}

// Match возвращает непересекающиеся пластины кадра.
func (m *ArmorMatcher) Match(bars []entity.LightBar) []entity.Armor {
	if len(bars) < 2 {
		return nil
	}
	candidates := m.Candidates(bars)
	if len(candidates) == 0 {
		return nil
	}

	accepted := m.assigner.Assign(candidates, len(bars))
	armors := make([]entity.Armor, 0, len(accepted))
	for _, c := range accepted {
		armors = append(armors, buildArmor(c, bars[c.Left], bars[c.Right]))
	}
	return armors
}

// buildArmor накрывает восемь вершин двух элементов прямоугольником минимальной площади.
func buildArmor(c entity.Candidate, a, b entity.LightBar) entity.Armor {
	ca, cb := a.Corners(), b.Corners()
	pts := make([]r2.Point, 0, 8)
	pts = append(pts, ca[:]...)
	pts = append(pts, cb[:]...)

	corners := geometry.OrderCorners(geometry.MinAreaRect(pts).Points())
	return entity.NewArmor(c, corners, geometry.BoundingRect(corners[:]))
}

var _ port.ArmorMatcher = (*ArmorMatcher)(nil)
