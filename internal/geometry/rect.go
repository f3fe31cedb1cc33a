package geometry

import (
	"image"
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// RotatedRect повёрнутый прямоугольник в соглашениях OpenCV:
// Angle задаёт направление стороны Width от оси +x в градусах.
type RotatedRect struct {
	Center r2.Point
	Width  float64
	Height float64
	Angle  float64
}

// axes возвращает единичные векторы вдоль Width и Height.
func (r RotatedRect) axes() (u, v r2.Point) {
	rad := r.Angle * math.Pi / 180
	u = r2.Point{X: math.Cos(rad), Y: math.Sin(rad)}
	return u, u.Ortho()
}

// Points возвращает четыре вершины, обходя прямоугольник по контуру.
func (r RotatedRect) Points() [4]r2.Point {
	u, v := r.axes()
	hu := u.Mul(r.Width / 2)
	hv := v.Mul(r.Height / 2)
	return [4]r2.Point{
		r.Center.Sub(hu).Add(hv),
		r.Center.Sub(hu).Sub(hv),
		r.Center.Add(hu).Sub(hv),
		r.Center.Add(hu).Add(hv),
	}
}

// Area площадь прямоугольника.
func (r RotatedRect) Area() float64 {
	return r.Width * r.Height
}

// BoundingRect целочисленный осевой прямоугольник вокруг точек
// (как cv::boundingRect для вещественных точек).
func BoundingRect(pts []r2.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Floor(maxX))+1, int(math.Floor(maxY))+1,
	)
}

// ConvexHull строит выпуклую оболочку методом монотонной цепи.
// Вершины возвращаются против часовой стрелки, коллинеарные точки отбрасываются.
func ConvexHull(pts []r2.Point) []r2.Point {
	if len(pts) < 3 {
		out := make([]r2.Point, 0, len(pts))
		for _, p := range pts {
			if len(out) == 0 || out[len(out)-1] != p {
				out = append(out, p)
			}
		}
		return out
	}

	sorted := make([]r2.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	hull := make([]r2.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func cross(o, a, b r2.Point) float64 {
	return a.Sub(o).Cross(b.Sub(o))
}

// MinAreaRect находит прямоугольник минимальной площади, содержащий все точки
// (вращающиеся калиперы по выпуклой оболочке). Угол приводится к [0, 180).
func MinAreaRect(pts []r2.Point) RotatedRect {
	hull := ConvexHull(pts)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{Center: hull[0]}
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	for i := range hull {
		edge := hull[(i+1)%len(hull)].Sub(hull[i])
		if edge.Norm() == 0 {
			continue
		}
		u := edge.Normalize()
		v := u.Ortho()

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu, pv := p.Dot(u), p.Dot(v)
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}

		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			best = RotatedRect{
				Center: u.Mul((minU + maxU) / 2).Add(v.Mul((minV + maxV) / 2)),
				Width:  maxU - minU,
				Height: maxV - minV,
				Angle:  math.Atan2(u.Y, u.X) * 180 / math.Pi,
			}
		}
	}

	best.Angle = math.Mod(best.Angle, 180)
	if best.Angle < 0 {
		best.Angle += 180
	}
	return best
}
