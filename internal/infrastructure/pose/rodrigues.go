package pose

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// RotationMatrix формула Родрига: вектор поворота → матрица 3×3.
func RotationMatrix(v r3.Vector) *mat.Dense {
	theta := v.Norm()
	if theta < 1e-12 {
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	}
	k := v.Mul(1 / theta)
	c, s := math.Cos(theta), math.Sin(theta)
	C := 1 - c
	return mat.NewDense(3, 3, []float64{
		c + k.X*k.X*C, k.X*k.Y*C - k.Z*s, k.X*k.Z*C + k.Y*s,
		k.Y*k.X*C + k.Z*s, c + k.Y*k.Y*C, k.Y*k.Z*C - k.X*s,
		k.Z*k.X*C - k.Y*s, k.Z*k.Y*C + k.X*s, c + k.Z*k.Z*C,
	})
}

// RotationVector обратное отображение: матрица поворота → вектор (ось · угол).
func RotationVector(r *mat.Dense) r3.Vector {
	cos := (r.At(0, 0) + r.At(1, 1) + r.At(2, 2) - 1) / 2
	theta := math.Acos(math.Max(-1, math.Min(1, cos)))
	if theta < 1e-9 {
		return r3.Vector{}
	}

	if math.Pi-theta < 1e-6 {
		// R ≈ 2·a·aᵀ − I: ось из столбца с наибольшим диагональным элементом
		k := 0
		for i := 1; i < 3; i++ {
			if r.At(i, i) > r.At(k, k) {
				k = i
			}
		}
		var a [3]float64
		a[k] = math.Sqrt(math.Max(0, (r.At(k, k)+1)/2))
		for i := 0; i < 3; i++ {
			if i != k {
				a[i] = (r.At(i, k) + r.At(k, i)) / (4 * a[k])
			}
		}
		return r3.Vector{X: a[0], Y: a[1], Z: a[2]}.Normalize().Mul(theta)
	}

	w := r3.Vector{
		X: r.At(2, 1) - r.At(1, 2),
		Y: r.At(0, 2) - r.At(2, 0),
		Z: r.At(1, 0) - r.At(0, 1),
	}
	return w.Mul(theta / (2 * math.Sin(theta)))
}
