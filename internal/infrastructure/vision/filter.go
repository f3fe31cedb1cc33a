package vision

import (
	"errors"
	"math"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
	"armor-aim/internal/geometry"
)

// ErrGoCVDisabled сборка без тега gocv.
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")

// LightBarFilter геометрический фильтр световых элементов.
type LightBarFilter struct {
	cfg config.DetectorConfig
}

func NewLightBarFilter(cfg config.DetectorConfig) LightBarFilter {
	return LightBarFilter{cfg: cfg}
}

// EnoughPoints контур достаточно подробный для подгонки прямоугольника.
func (f LightBarFilter) EnoughPoints(n int) bool {
	return n >= f.cfg.MinContourPoints
}

// Accept отсекает шум по площади, вытянутости и наклону.
func (f LightBarFilter) Accept(b entity.LightBar) bool {
	if b.Area() < f.cfg.MinArea {
		return false
	}
	ratio := b.Ratio()
	if ratio < f.cfg.MinRatio || ratio > f.cfg.MaxRatio {
		return false
	}
	return math.Abs(b.Angle) < f.cfg.MaxTilt
}

// FromRects нормализует прямоугольники контуров и оставляет прошедшие фильтр
// в исходном порядке.
func (f LightBarFilter) FromRects(rects []geometry.RotatedRect) []entity.LightBar {
	var bars []entity.LightBar
	for _, r := range rects {
		b := entity.NewLightBar(r)
		if f.Accept(b) {
			bars = append(bars, b)
		}
	}
	return bars
}
