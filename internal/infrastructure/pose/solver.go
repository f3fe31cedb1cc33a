package pose

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"go.uber.org/zap"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
	"armor-aim/internal/geometry"
)

// ErrNoSolution поза не найдена: вырожденный четырёхугольник, расходимость
// или слишком большая ошибка репроекции.
var ErrNoSolution = errors.New("pose: no solution")

// minQuadArea минимальная площадь пластины на изображении, px².
const minQuadArea = 1.0

// undistortIterations число итераций обращения модели дисторсии.
const undistortIterations = 20

// Pose положение пластины в системе камеры (x вправо, y вниз, z вперёд).
type Pose struct {
	Rotation    *mat.Dense // 3×3
	Translation r3.Vector  // мм
	Residual    float64    // RMS ошибки репроекции, px
}

// Distance расстояние вдоль оптической оси, мм.
func (p Pose) Distance() float64 {
	return p.Translation.Z
}

// Solver решает задачу PnP для четырёх углов пластины.
type Solver struct {
	calib entity.Calibration
	cfg   config.PoseConfig
	log   *zap.Logger
}

// NewSolver создаёт решатель; калибровка проверяется один раз.
func NewSolver(calib entity.Calibration, cfg config.PoseConfig, log *zap.Logger) (*Solver, error) {
	if err := calib.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration: %w", err)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 100
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Solver{calib: calib, cfg: cfg, log: log}, nil
}

// ObjectPoints модель пластины в мм: центр в начале координат, z = 0,
// порядок TL, TR, BR, BL.
func (s *Solver) ObjectPoints(t entity.ArmorType) [4]r3.Vector {
	w := s.cfg.SmallWidth
	if t == entity.ArmorLarge {
		w = s.cfg.LargeWidth
	}
	hw, hh := w/2, s.cfg.Height/2
	return [4]r3.Vector{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
}

// Resolve возвращает расстояние до пластины вдоль оптической оси.
func (s *Solver) Resolve(armor entity.Armor) (float64, error) {
	p, err := s.Solve(armor.Type, armor.Corners)
	if err != nil {
		return math.NaN(), err
	}
	return p.Distance(), nil
}

// Solve находит позу по углам TL, TR, BR, BL в пикселях.
func (s *Solver) Solve(t entity.ArmorType, corners [4]r2.Point) (*Pose, error) {
	for _, c := range corners {
		if !finite(c.X) || !finite(c.Y) {
			return nil, fmt.Errorf("%w: non-finite corner", ErrNoSolution)
		}
	}
	if area := geometry.PolygonArea(corners[:]); area < minQuadArea {
		return nil, fmt.Errorf("%w: degenerate quad (area %.3g)", ErrNoSolution, area)
	}

	obj := s.ObjectPoints(t)
	var norm [4]r2.Point
	for i, c := range corners {
		norm[i] = s.Undistort(c)
	}

	rot, trans, err := initialPose(obj, norm)
	if err != nil {
		return nil, err
	}

	rot, trans = s.refine(obj, corners, rot, trans)

	residual := s.residual(obj, corners, rot, trans)
	switch {
	case !finite(trans.X) || !finite(trans.Y) || !finite(trans.Z) || !finite(residual):
		return nil, fmt.Errorf("%w: non-finite estimate", ErrNoSolution)
	case trans.Z <= 0:
		return nil, fmt.Errorf("%w: plate behind the camera", ErrNoSolution)
	case residual > s.cfg.MaxReprojectionError:
		return nil, fmt.Errorf("%w: reprojection error %.2f px", ErrNoSolution, residual)
	}
	return &Pose{Rotation: rot, Translation: trans, Residual: residual}, nil
}

// initialPose оценка R, t по гомографии плоскость → нормализованные координаты.
func initialPose(obj [4]r3.Vector, img [4]r2.Point) (*mat.Dense, r3.Vector, error) {
	var planar [4]r2.Point
	for i, p := range obj {
		planar[i] = r2.Point{X: p.X, Y: p.Y}
	}

	h, err := homography(planar, img)
	if err != nil {
		return nil, r3.Vector{}, err
	}

	h1 := r3.Vector{X: h.At(0, 0), Y: h.At(1, 0), Z: h.At(2, 0)}
	h2 := r3.Vector{X: h.At(0, 1), Y: h.At(1, 1), Z: h.At(2, 1)}
	h3 := r3.Vector{X: h.At(0, 2), Y: h.At(1, 2), Z: h.At(2, 2)}

	scale := (h1.Norm() + h2.Norm()) / 2
	if scale < 1e-12 || !finite(scale) {
		return nil, r3.Vector{}, fmt.Errorf("%w: degenerate homography", ErrNoSolution)
	}
	lambda := 1 / scale
	if h3.Z < 0 {
		lambda = -lambda
	}

	r1, r2v := h1.Mul(lambda), h2.Mul(lambda)
	r3v := r1.Cross(r2v)
	m := mat.NewDense(3, 3, []float64{
		r1.X, r2v.X, r3v.X,
		r1.Y, r2v.Y, r3v.Y,
		r1.Z, r2v.Z, r3v.Z,
	})
	rot, err := orthonormalize(m)
	if err != nil {
		return nil, r3.Vector{}, err
	}
	return rot, h3.Mul(lambda), nil
}

// homography DLT с нормализацией Хартли: dst ~ H · src.
func homography(src, dst [4]r2.Point) (*mat.Dense, error) {
	ts, ns := hartley(src[:])
	td, nd := hartley(dst[:])

	a := mat.NewDense(9, 9, nil) // последняя строка нулевая
	for i := 0; i < 4; i++ {
		x, y := ns[i].X, ns[i].Y
		u, v := nd[i].X, nd[i].Y
		a.SetRow(2*i, []float64{-x, -y, -1, 0, 0, 0, u * x, u * y, u})
		a.SetRow(2*i+1, []float64{0, 0, 0, -x, -y, -1, v * x, v * y, v})
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return nil, fmt.Errorf("%w: homography SVD failed", ErrNoSolution)
	}
	// решение: правый сингулярный вектор наименьшего сингулярного числа
	var v mat.Dense
	svd.VTo(&v)
	hn := mat.NewDense(3, 3, nil)
	for i := 0; i < 9; i++ {
		hn.Set(i/3, i%3, v.At(i, 8))
	}

	var tdInv mat.Dense
	if err := tdInv.Inverse(td); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSolution, err)
	}
	var h mat.Dense
	h.Product(&tdInv, hn, ts)
	return &h, nil
}

// hartley переносит центр точек в начало и масштабирует среднее расстояние до √2.
func hartley(pts []r2.Point) (*mat.Dense, []r2.Point) {
	var c r2.Point
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Mul(1 / float64(len(pts)))

	var mean float64
	for _, p := range pts {
		mean += p.Sub(c).Norm()
	}
	mean /= float64(len(pts))
	s := 1.0
	if mean > 0 {
		s = math.Sqrt2 / mean
	}

	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Sub(c).Mul(s)
	}
	t := mat.NewDense(3, 3, []float64{
		s, 0, -s * c.X,
		0, s, -s * c.Y,
		0, 0, 1,
	})
	return t, out
}

// orthonormalize ближайшая к m матрица поворота (U·Vᵀ).
func orthonormalize(m *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDFull) {
		return nil, fmt.Errorf("%w: rotation SVD failed", ErrNoSolution)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var r mat.Dense
	r.Mul(&u, v.T())
	if mat.Det(&r) < 0 {
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
		r.Mul(&u, v.T())
	}
	return &r, nil
}

// refine уточняет позу BFGS по пиксельной ошибке репроекции.
// Если оптимизатор не улучшил начальную оценку, она возвращается без изменений.
func (s *Solver) refine(obj [4]r3.Vector, img [4]r2.Point, rot *mat.Dense, t r3.Vector) (*mat.Dense, r3.Vector) {
	rv := RotationVector(rot)
	x0 := []float64{rv.X, rv.Y, rv.Z, t.X, t.Y, t.Z}

	cost := func(x []float64) float64 {
		r := RotationMatrix(r3.Vector{X: x[0], Y: x[1], Z: x[2]})
		return s.sumSquares(obj, img, r, r3.Vector{X: x[3], Y: x[4], Z: x[5]})
	}
	problem := optimize.Problem{
		Func: cost,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, cost, x, &fd.Settings{Formula: fd.Central})
		},
	}

	initial := cost(x0)
	result, err := optimize.Minimize(problem, x0, &optimize.Settings{MajorIterations: s.cfg.MaxIterations}, &optimize.BFGS{})
	if err != nil || (result != nil && result.Status == optimize.IterationLimit) {
		// при точной начальной оценке линейный поиск может не сойтись, это не ошибка позы
		fields := []zap.Field{zap.Float64("initial_cost", initial), zap.Error(err)}
		if result != nil {
			fields = append(fields, zap.Stringer("status", result.Status), zap.Float64("cost", result.F))
		}
		s.log.Debug("pose refinement incomplete", fields...)
	}
	if result == nil || !finite(result.F) || result.F >= initial {
		return rot, t
	}
	x := result.X
	return RotationMatrix(r3.Vector{X: x[0], Y: x[1], Z: x[2]}), r3.Vector{X: x[3], Y: x[4], Z: x[5]}
}

// penalty стоимость точки за плоскостью камеры.
const penalty = 1e12

func (s *Solver) sumSquares(obj [4]r3.Vector, img [4]r2.Point, rot *mat.Dense, t r3.Vector) float64 {
	var sum float64
	for i, p := range obj {
		q, ok := s.Project(rot, t, p)
		if !ok {
			return penalty
		}
		d := q.Sub(img[i])
		sum += d.Dot(d)
	}
	return sum
}

func (s *Solver) residual(obj [4]r3.Vector, img [4]r2.Point, rot *mat.Dense, t r3.Vector) float64 {
	return math.Sqrt(s.sumSquares(obj, img, rot, t) / float64(len(obj)))
}

// Project проецирует точку модели в пиксели с учётом дисторсии.
// ok=false, если точка не перед камерой.
func (s *Solver) Project(rot *mat.Dense, t r3.Vector, p r3.Vector) (r2.Point, bool) {
	c := apply(rot, p).Add(t)
	if c.Z <= 1e-9 {
		return r2.Point{}, false
	}
	d := s.distort(r2.Point{X: c.X / c.Z, Y: c.Y / c.Z})
	return r2.Point{
		X: s.calib.Fx()*d.X + s.calib.Skew()*d.Y + s.calib.Cx(),
		Y: s.calib.Fy()*d.Y + s.calib.Cy(),
	}, true
}

// Undistort переводит пиксель в нормализованные координаты без дисторсии.
func (s *Solver) Undistort(px r2.Point) r2.Point {
	y := (px.Y - s.calib.Cy()) / s.calib.Fy()
	x := (px.X - s.calib.Cx() - s.calib.Skew()*y) / s.calib.Fx()
	if len(s.calib.DistCoeffs) == 0 {
		return r2.Point{X: x, Y: y}
	}

	k := s.coeffs()
	x0, y0 := x, y
	for i := 0; i < undistortIterations; i++ {
		r2v := x*x + y*y
		radial := (1 + ((k[7]*r2v+k[6])*r2v+k[5])*r2v) / (1 + ((k[4]*r2v+k[1])*r2v+k[0])*r2v)
		dx := 2*k[2]*x*y + k[3]*(r2v+2*x*x)
		dy := k[2]*(r2v+2*y*y) + 2*k[3]*x*y
		x = (x0 - dx) * radial
		y = (y0 - dy) * radial
	}
	return r2.Point{X: x, Y: y}
}

// distort прямая модель Брауна–Конради (k1, k2, p1, p2, k3[, k4, k5, k6]).
func (s *Solver) distort(p r2.Point) r2.Point {
	if len(s.calib.DistCoeffs) == 0 {
		return p
	}
	k := s.coeffs()
	x, y := p.X, p.Y
	r2v := x*x + y*y
	radial := (1 + ((k[4]*r2v+k[1])*r2v+k[0])*r2v) / (1 + ((k[7]*r2v+k[6])*r2v+k[5])*r2v)
	return r2.Point{
		X: x*radial + 2*k[2]*x*y + k[3]*(r2v+2*x*x),
		Y: y*radial + k[2]*(r2v+2*y*y) + 2*k[3]*x*y,
	}
}

// coeffs коэффициенты в порядке OpenCV, дополненные нулями до восьми.
func (s *Solver) coeffs() [8]float64 {
	var k [8]float64
	copy(k[:], s.calib.DistCoeffs)
	return k
}

func apply(m *mat.Dense, p r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*p.X + m.At(0, 1)*p.Y + m.At(0, 2)*p.Z,
		Y: m.At(1, 0)*p.X + m.At(1, 1)*p.Y + m.At(1, 2)*p.Z,
		Z: m.At(2, 0)*p.X + m.At(2, 1)*p.Y + m.At(2, 2)*p.Z,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var _ port.PoseResolver = (*Solver)(nil)
