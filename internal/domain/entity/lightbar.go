package entity

import (
	"math"

	"github.com/golang/geo/r2"

	"armor-aim/internal/geometry"
)

// LightBar нормализованный светящийся элемент брони
type LightBar struct {
	Center r2.Point // центр
	Width  float64  // короткая сторона
	Length float64  // длинная сторона
	Angle  float64  // наклон длинной оси от вертикали, градусы в (-90, 90]
}

// NewLightBar нормализует повёрнутый прямоугольник так, чтобы длинная сторона
// всегда была высотой, а угол отсчитывался от вертикали.
func NewLightBar(rect geometry.RotatedRect) LightBar {
	w, h, angle := rect.Width, rect.Height, rect.Angle
	if w > h {
		w, h = h, w
		angle += 90
	}
	return LightBar{
		Center: rect.Center,
		Width:  w,
		Length: h,
		Angle:  wrapTilt(angle),
	}
}

func wrapTilt(a float64) float64 {
	a = math.Mod(a, 180)
	if a > 90 {
		a -= 180
	}
	if a <= -90 {
		a += 180
	}
	return a
}

// Rect возвращает прямоугольник светового элемента с длинной осью по Height.
func (b LightBar) Rect() geometry.RotatedRect {
	return geometry.RotatedRect{Center: b.Center, Width: b.Width, Height: b.Length, Angle: b.Angle}
}

// Corners четыре вершины светового элемента
func (b LightBar) Corners() [4]r2.Point {
	return b.Rect().Points()
}

// Area площадь прямоугольника
func (b LightBar) Area() float64 {
	return b.Width * b.Length
}

// Ratio отношение длинной стороны к короткой
func (b LightBar) Ratio() float64 {
	if b.Width == 0 {
		return math.Inf(1)
	}
	return b.Length / b.Width
}
