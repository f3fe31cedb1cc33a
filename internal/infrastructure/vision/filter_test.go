package vision

import (
	"image"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/require"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
	"armor-aim/internal/geometry"
)

func newFilter() LightBarFilter {
	return NewLightBarFilter(config.DefaultParams().Detector)
}

func TestLightBarFilter_Accept(t *testing.T) {
	f := newFilter()
	for _, tc := range []struct {
		name string
		bar  entity.LightBar
		want bool
	}{
		{"upright", entity.LightBar{Width: 4, Length: 20}, true},
		{"tiny", entity.LightBar{Width: 2, Length: 8}, false},
		{"too square", entity.LightBar{Width: 10, Length: 12}, false},
		{"too thin", entity.LightBar{Width: 2, Length: 30}, false},
		{"tilted", entity.LightBar{Width: 4, Length: 20, Angle: 30}, true},
		{"tilt at limit", entity.LightBar{Width: 4, Length: 20, Angle: -45}, false},
		{"lying", entity.LightBar{Width: 4, Length: 20, Angle: 90}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, f.Accept(tc.bar))
		})
	}
}

func TestLightBarFilter_EnoughPoints(t *testing.T) {
	f := newFilter()
	require.False(t, f.EnoughPoints(5))
	require.True(t, f.EnoughPoints(6))
}

func TestLightBarFilter_FromRectsNormalizes(t *testing.T) {
	f := newFilter()
	rects := []geometry.RotatedRect{
		// лежачий прямоугольник OpenCV: ширина вдоль длинной стороны
		{Center: r2.Point{X: 10, Y: 10}, Width: 20, Height: 4, Angle: 90},
		{Center: r2.Point{X: 50, Y: 10}, Width: 20, Height: 4, Angle: 0},
		{Center: r2.Point{X: 90, Y: 10}, Width: 4, Height: 20, Angle: 0},
	}

	bars := f.FromRects(rects)
	require.Len(t, bars, 2)
	require.Equal(t, 10.0, bars[0].Center.X)
	require.Equal(t, 20.0, bars[0].Length)
	require.InDelta(t, 0, bars[0].Angle, 1e-9)
	require.Equal(t, 90.0, bars[1].Center.X)
}

func TestArmorLabel(t *testing.T) {
	a := entity.Armor{Type: entity.ArmorSmall, Digit: 3, Distance: 2150}
	require.Equal(t, "small 3 2.15m", ArmorLabel(a))

	a = entity.Armor{Type: entity.ArmorLarge, Digit: entity.DigitUnknown, Distance: math.NaN()}
	require.Equal(t, "large ? --", ArmorLabel(a))
}

func TestOverlay(t *testing.T) {
	result := &entity.FrameResult{
		LightBars: []entity.LightBar{{Center: r2.Point{X: 100, Y: 100}, Width: 4, Length: 20}},
		Armors: []entity.Armor{{
			Type:     entity.ArmorLarge,
			Corners:  [4]r2.Point{{X: 98, Y: 90}, {X: 162, Y: 90}, {X: 162, Y: 110}, {X: 98, Y: 110}},
			Digit:    entity.DigitUnknown,
			Distance: math.NaN(),
		}},
	}

	segs, labels := overlay(result)
	require.Len(t, segs, 8)
	require.Equal(t, barColor, segs[0].Color)
	require.Equal(t, largeColor, segs[4].Color)
	require.Equal(t, image.Pt(98, 90), segs[4].A)
	require.Equal(t, image.Pt(162, 90), segs[4].B)
	require.Len(t, labels, 1)
	require.Equal(t, image.Pt(98, 84), labels[0].At)

	segs, labels = overlay(nil)
	require.Empty(t, segs)
	require.Empty(t, labels)
}

func TestDigitCrop(t *testing.T) {
	cfg := config.DefaultParams().Classifier
	require.Equal(t, image.Rect(15, 0, 35, 50), digitCrop(cfg))

	cfg.CropX, cfg.CropWidth = 40, 20
	require.Equal(t, image.Rect(40, 0, 50, 50), digitCrop(cfg))

	cfg.CropX = -5
	require.Equal(t, image.Rect(0, 0, 20, 50), digitCrop(cfg))
}

func TestWarpTargets(t *testing.T) {
	got := warpTargets(50)
	require.Equal(t, geometry.OrderCorners(got), got)
	require.Equal(t, r2.Point{X: 50, Y: 50}, got[2])
}
