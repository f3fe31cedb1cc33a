package entity

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/require"

	"armor-aim/internal/geometry"
)

func TestNewLightBar_KeepsUprightRect(t *testing.T) {
	b := NewLightBar(geometry.RotatedRect{Center: r2.Point{X: 100, Y: 100}, Width: 4, Height: 20})
	require.Equal(t, 4.0, b.Width)
	require.Equal(t, 20.0, b.Length)
	require.Equal(t, 0.0, b.Angle)
	require.Equal(t, 80.0, b.Area())
	require.Equal(t, 5.0, b.Ratio())
}

func TestNewLightBar_SwapsWideRect(t *testing.T) {
	b := NewLightBar(geometry.RotatedRect{Width: 20, Height: 4, Angle: 0})
	require.Equal(t, 4.0, b.Width)
	require.Equal(t, 20.0, b.Length)
	require.Equal(t, 90.0, b.Angle)

	b = NewLightBar(geometry.RotatedRect{Width: 20, Height: 4, Angle: 85})
	require.InDelta(t, -5.0, b.Angle, 1e-9)
	require.GreaterOrEqual(t, b.Length, b.Width)
}

func TestNewLightBar_WrapsAngle(t *testing.T) {
	for _, tc := range []struct {
		in, want float64
	}{
		{in: 0, want: 0},
		{in: 10, want: 10},
		{in: 170, want: -10},
		{in: 90, want: 90},
		{in: 179.5, want: -0.5},
	} {
		b := NewLightBar(geometry.RotatedRect{Width: 2, Height: 10, Angle: tc.in})
		require.InDelta(t, tc.want, b.Angle, 1e-9, "angle %v", tc.in)
	}
}

func TestLightBar_CornersFollowTilt(t *testing.T) {
	b := LightBar{Center: r2.Point{X: 50, Y: 50}, Width: 2, Length: 10}
	c := b.Corners()
	bounds := geometry.BoundingRect(c[:])
	require.Equal(t, 49, bounds.Min.X)
	require.Equal(t, 45, bounds.Min.Y)
	require.Equal(t, 52, bounds.Max.X)
	require.Equal(t, 56, bounds.Max.Y)

	require.True(t, math.IsInf(LightBar{Length: 3}.Ratio(), 1))
}
