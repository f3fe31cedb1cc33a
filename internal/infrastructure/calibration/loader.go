package calibration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"armor-aim/internal/domain/entity"
)

// file формат файла калибровки. Матрицы задаются списком значений по строкам
// или в стиле camera_info: {rows, cols, data}.
type file struct {
	CameraMatrix matrix `yaml:"camera_matrix"`
	DistCoeffs   matrix `yaml:"dist_coeffs"`
	Distortion   matrix `yaml:"distortion_coefficients"`
}

type matrix []float64

// UnmarshalYAML принимает последовательность чисел или отображение с полем data.
func (m *matrix) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var v []float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*m = v
		return nil
	case yaml.MappingNode:
		var v struct {
			Rows int       `yaml:"rows"`
			Cols int       `yaml:"cols"`
			Data []float64 `yaml:"data"`
		}
		if err := node.Decode(&v); err != nil {
			return err
		}
		if v.Rows > 0 && v.Cols > 0 && v.Rows*v.Cols != len(v.Data) {
			return fmt.Errorf("line %d: %dx%d matrix has %d values", node.Line, v.Rows, v.Cols, len(v.Data))
		}
		*m = v.Data
		return nil
	}
	return fmt.Errorf("line %d: expected a list or a matrix mapping", node.Line)
}

// Load читает и проверяет калибровку камеры.
func Load(path string) (entity.Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Calibration{}, fmt.Errorf("failed to read calibration: %w", err)
	}
	return Parse(data)
}

// Parse разбирает калибровку из YAML.
func Parse(data []byte) (entity.Calibration, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return entity.Calibration{}, fmt.Errorf("failed to parse calibration: %w", err)
	}

	if len(f.CameraMatrix) != 9 {
		return entity.Calibration{}, fmt.Errorf("camera_matrix must have 9 values, got %d", len(f.CameraMatrix))
	}
	dist := f.DistCoeffs
	if dist == nil {
		dist = f.Distortion
	}

	var calib entity.Calibration
	copy(calib.CameraMatrix[:], f.CameraMatrix)
	calib.DistCoeffs = append([]float64(nil), dist...)

	if err := calib.Validate(); err != nil {
		return entity.Calibration{}, fmt.Errorf("invalid calibration: %w", err)
	}
	return calib, nil
}
