package entity

import (
	"errors"
	"fmt"
	"math"
)

// Calibration внутренние параметры камеры и коэффициенты дисторсии.
type Calibration struct {
	CameraMatrix [9]float64 // 3x3 построчно
	DistCoeffs   []float64  // k1, k2, p1, p2[, k3[, k4, k5, k6]]
}

func (c Calibration) Fx() float64   { return c.CameraMatrix[0] }
func (c Calibration) Fy() float64   { return c.CameraMatrix[4] }
func (c Calibration) Cx() float64   { return c.CameraMatrix[2] }
func (c Calibration) Cy() float64   { return c.CameraMatrix[5] }
func (c Calibration) Skew() float64 { return c.CameraMatrix[1] }

// Validate проверяет, что калибровка пригодна для решения позы
func (c Calibration) Validate() error {
	for _, v := range c.CameraMatrix {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("camera matrix contains non-finite values")
		}
	}
	if c.Fx() <= 0 || c.Fy() <= 0 {
		return fmt.Errorf("focal lengths must be positive (fx=%g fy=%g)", c.Fx(), c.Fy())
	}
	if c.CameraMatrix[3] != 0 || c.CameraMatrix[6] != 0 || c.CameraMatrix[7] != 0 || c.CameraMatrix[8] != 1 {
		return errors.New("camera matrix must be upper triangular with m[2][2] = 1")
	}
	switch len(c.DistCoeffs) {
	case 0, 4, 5, 8:
	default:
		return fmt.Errorf("unsupported number of distortion coefficients: %d", len(c.DistCoeffs))
	}
	return nil
}
