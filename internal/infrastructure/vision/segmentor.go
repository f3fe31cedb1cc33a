//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"image"

	"github.com/golang/geo/r2"
	"gocv.io/x/gocv"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
	"armor-aim/internal/geometry"
)

// Segmentor выделяет световые элементы цветовой разностью каналов.
type Segmentor struct {
	cfg    config.DetectorConfig
	filter LightBarFilter
}

// NewSegmentor создаёт сегментатор с порогами детектора.
func NewSegmentor(cfg config.DetectorConfig) *Segmentor {
	return &Segmentor{cfg: cfg, filter: NewLightBarFilter(cfg)}
}

// Detect возвращает элементы в порядке обнаружения контуров.
func (s *Segmentor) Detect(frame port.Frame, color entity.EnemyColor) ([]entity.LightBar, error) {
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	channels := gocv.Split(mat)
	for i := range channels {
		defer channels[i].Close()
	}
	if len(channels) < 3 {
		return nil, errors.New("invalid bgr channels")
	}

	// Разность каналов: свой цвет гасится, цвет противника остаётся ярким.
	diff := gocv.NewMat()
	defer diff.Close()
	if color == entity.EnemyBlue {
		gocv.Subtract(channels[0], channels[2], &diff)
	} else {
		gocv.Subtract(channels[2], channels[0], &diff)
	}

	binary := gocv.NewMat()
	defer binary.Close()
	otsu := gocv.Threshold(diff, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	if float64(otsu) < s.cfg.ThresholdFloor {
		// на пустой сцене Оцу режет шум, поэтому порог не ниже нижней границы
		gocv.Threshold(diff, &binary, float32(s.cfg.ThresholdFloor), 255, gocv.ThresholdBinary)
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(s.cfg.DilateKernel, s.cfg.DilateKernel))
	defer kernel.Close()
	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(binary, &dilated, kernel)

	contours := gocv.FindContours(dilated, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	rects := make([]geometry.RotatedRect, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if !s.filter.EnoughPoints(c.Size()) {
			continue
		}
		raw := c.ToPoints()
		pts := make([]r2.Point, len(raw))
		for j, p := range raw {
			pts[j] = r2.Point{X: float64(p.X), Y: float64(p.Y)}
		}
		rects = append(rects, geometry.MinAreaRect(pts))
	}

	return s.filter.FromRects(rects), nil
}

var _ port.LightBarDetector = (*Segmentor)(nil)
