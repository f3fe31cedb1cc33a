package geometry

import (
	"sort"

	"github.com/golang/geo/r2"
)

// OrderCorners приводит четыре точки к порядку TL, TR, BR, BL.
//
// Две точки с меньшим x считаются левыми, две с большим правыми; внутри
// каждой пары верхней считается точка с меньшим y. Равные x упорядочиваются
// по y, поэтому любая перестановка входа даёт один и тот же результат.
func OrderCorners(pts [4]r2.Point) [4]r2.Point {
	p := pts
	sort.Slice(p[:], func(i, j int) bool {
		if p[i].X != p[j].X {
			return p[i].X < p[j].X
		}
		return p[i].Y < p[j].Y
	})

	if p[0].Y > p[1].Y {
		p[0], p[1] = p[1], p[0]
	}
	if p[2].Y > p[3].Y {
		p[2], p[3] = p[3], p[2]
	}

	return [4]r2.Point{p[0], p[2], p[3], p[1]}
}

// PolygonArea площадь многоугольника по формуле шнурования (без знака).
func PolygonArea(pts []r2.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		sum += pts[i].Cross(pts[(i+1)%len(pts)])
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
