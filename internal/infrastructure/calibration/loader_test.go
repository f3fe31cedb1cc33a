package calibration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_FlatLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camera.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
camera_matrix: [1000, 0, 640, 0, 1000, 360, 0, 0, 1]
dist_coeffs: [-0.1, 0.05, 0.001, -0.001, 0]
`), 0o600))

	calib, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1000.0, calib.Fx())
	require.Equal(t, 360.0, calib.Cy())
	require.Equal(t, []float64{-0.1, 0.05, 0.001, -0.001, 0}, calib.DistCoeffs)
}

func TestParse_CameraInfoStyle(t *testing.T) {
	calib, err := Parse([]byte(`
camera_matrix:
  rows: 3
  cols: 3
  data: [1200, 0, 600, 0, 1210, 500, 0, 0, 1]
distortion_coefficients:
  rows: 1
  cols: 5
  data: [0.01, -0.02, 0, 0, 0.003]
`))
	require.NoError(t, err)
	require.Equal(t, 1210.0, calib.Fy())
	require.Len(t, calib.DistCoeffs, 5)
}

func TestParse_NoDistortion(t *testing.T) {
	calib, err := Parse([]byte(`camera_matrix: [900, 0, 320, 0, 900, 240, 0, 0, 1]`))
	require.NoError(t, err)
	require.Empty(t, calib.DistCoeffs)
}

func TestParse_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"short matrix":    `camera_matrix: [1000, 0, 640]`,
		"shape mismatch":  "camera_matrix:\n  rows: 3\n  cols: 3\n  data: [1, 2]",
		"zero focal":      `camera_matrix: [0, 0, 640, 0, 1000, 360, 0, 0, 1]`,
		"bad coeff count": "camera_matrix: [1000, 0, 640, 0, 1000, 360, 0, 0, 1]\ndist_coeffs: [0.1, 0.2, 0.3]",
		"scalar":          `camera_matrix: 5`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
