package vision

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/golang/geo/r2"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
)

var (
	barColor   = color.RGBA{G: 255, A: 255}
	smallColor = color.RGBA{R: 255, G: 200, A: 255}
	largeColor = color.RGBA{R: 255, B: 255, A: 255}
	textColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

type segment struct {
	A, B  image.Point
	Color color.RGBA
}

type label struct {
	Text  string
	At    image.Point
	Color color.RGBA
}

// ArmorLabel подпись пластины: тип, цифра, расстояние в метрах.
func ArmorLabel(a entity.Armor) string {
	dist := "--"
	if a.HasDistance() {
		dist = fmt.Sprintf("%.2fm", a.Distance/1000)
	}
	return fmt.Sprintf("%s %s %s", a.Type, a.Digit, dist)
}

// overlay отрезки и подписи разметки кадра.
func overlay(result *entity.FrameResult) ([]segment, []label) {
	var segs []segment
	var labels []label
	if result == nil {
		return nil, nil
	}

	for _, b := range result.LightBars {
		segs = append(segs, polygon(b.Corners(), barColor)...)
	}
	for _, a := range result.Armors {
		c := smallColor
		if a.Type == entity.ArmorLarge {
			c = largeColor
		}
		segs = append(segs, polygon(a.Corners, c)...)

		tl := toPoint(a.Corners[0])
		labels = append(labels, label{
			Text:  ArmorLabel(a),
			At:    image.Pt(tl.X, tl.Y-6),
			Color: textColor,
		})
	}
	return segs, labels
}

func polygon(pts [4]r2.Point, c color.RGBA) []segment {
	segs := make([]segment, 0, len(pts))
	for i := range pts {
		segs = append(segs, segment{A: toPoint(pts[i]), B: toPoint(pts[(i+1)%len(pts)]), Color: c})
	}
	return segs
}

func toPoint(p r2.Point) image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// warpTargets углы квадрата выравнивания в порядке TL, TR, BR, BL.
func warpTargets(size int) [4]r2.Point {
	s := float64(size)
	return [4]r2.Point{{X: 0, Y: 0}, {X: s, Y: 0}, {X: s, Y: s}, {X: 0, Y: s}}
}

// digitCrop полоса с цифрой между световыми элементами, обрезанная по квадрату.
func digitCrop(cfg config.ClassifierConfig) image.Rectangle {
	x := max(cfg.CropX, 0)
	w := cfg.CropWidth
	if x+w > cfg.WarpSize {
		w = cfg.WarpSize - x
	}
	if w < 0 {
		w = 0
	}
	return image.Rect(x, 0, x+w, cfg.WarpSize)
}
