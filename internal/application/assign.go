package app

import (
	"fmt"
	"sort"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
)

// NewAssigner выбирает стратегию разрешения конфликтов по имени.
func NewAssigner(name string, cfg config.MatcherConfig) (port.PairAssigner, error) {
	switch name {
	case "", "greedy":
		return GreedyAssigner{}, nil
	case "exact":
		return ExactAssigner{MaxBars: cfg.ExactMaxBars}, nil
	}
	return nil, fmt.Errorf("unknown assigner %q", name)
}

// sortByScore по убыванию оценки, при равенстве по индексам элементов.
func sortByScore(cands []entity.Candidate) []entity.Candidate {
	out := make([]entity.Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Left != out[j].Left {
			return out[i].Left < out[j].Left
		}
		return out[i].Right < out[j].Right
	})
	return out
}

// GreedyAssigner принимает кандидатов по убыванию оценки, пока оба элемента свободны.
// Это приближение к паросочетанию максимального веса, а не точное решение.
type GreedyAssigner struct{}

func (GreedyAssigner) Assign(cands []entity.Candidate, bars int) []entity.Candidate {
	claimed := make([]bool, bars)
	var out []entity.Candidate
	for _, c := range sortByScore(cands) {
		if claimed[c.Left] || claimed[c.Right] {
			continue
		}
		claimed[c.Left], claimed[c.Right] = true, true
		out = append(out, c)
	}
	return out
}

// ExactAssigner ищет паросочетание с максимальной суммой оценок перебором
// подмножеств. Если в кандидатах участвует больше MaxBars элементов,
// используется жадная стратегия.
type ExactAssigner struct {
	MaxBars int
}

func (e ExactAssigner) Assign(cands []entity.Candidate, bars int) []entity.Candidate {
	// сжатие индексов до участвующих элементов
	local := make(map[int]int)
	for _, c := range cands {
		for _, idx := range [2]int{c.Left, c.Right} {
			if _, ok := local[idx]; !ok {
				local[idx] = len(local)
			}
		}
	}
	n := len(local)
	if n == 0 {
		return nil
	}
	if n > e.MaxBars {
		return GreedyAssigner{}.Assign(cands, bars)
	}

	// edges[i]: кандидаты, у которых младший локальный индекс равен i
	edges := make([][]int, n)
	for k, c := range cands {
		a, b := local[c.Left], local[c.Right]
		if b < a {
			a = b
		}
		edges[a] = append(edges[a], k)
	}

	full := uint32(1)<<uint(n) - 1
	best := make([]float64, full+1)
	choice := make([]int, full+1) // -1: элемент остаётся без пары
	done := make([]bool, full+1)

	var solve func(mask uint32) float64
	solve = func(mask uint32) float64 {
		if mask == full {
			return 0
		}
		if done[mask] {
			return best[mask]
		}
		i := 0
		for mask&(1<<uint(i)) != 0 {
			i++
		}

		value := solve(mask | 1<<uint(i))
		pick := -1
		for _, k := range edges[i] {
			c := cands[k]
			a, b := local[c.Left], local[c.Right]
			other := a
			if other == i {
				other = b
			}
			if mask&(1<<uint(other)) != 0 {
				continue
			}
			v := c.Score + solve(mask|1<<uint(i)|1<<uint(other))
			if v > value+1e-12 {
				value, pick = v, k
			}
		}

		best[mask], choice[mask], done[mask] = value, pick, true
		return value
	}
	solve(0)

	var out []entity.Candidate
	mask := uint32(0)
	for mask != full {
		i := 0
		for mask&(1<<uint(i)) != 0 {
			i++
		}
		k := choice[mask]
		if k < 0 {
			mask |= 1 << uint(i)
			continue
		}
		c := cands[k]
		out = append(out, c)
		mask |= 1<<uint(local[c.Left]) | 1<<uint(local[c.Right])
	}
	return sortByScore(out)
}

// totalScore сумма оценок выбранных кандидатов.
func totalScore(cands []entity.Candidate) float64 {
	var sum float64
	for _, c := range cands {
		sum += c.Score
	}
	return sum
}

var (
	_ port.PairAssigner = GreedyAssigner{}
	_ port.PairAssigner = ExactAssigner{}
)
