//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
)

// DigitNet классификатор цифры на пластине (ONNX через OpenCV DNN).
type DigitNet struct {
	net gocv.Net
	cfg config.ClassifierConfig
}

// NewDigitNet загружает модель; отсутствие модели фатально для запуска.
func NewDigitNet(modelPath string, cfg config.ClassifierConfig) (*DigitNet, error) {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load digit model %q", modelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, err
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, err
	}
	return &DigitNet{net: net, cfg: cfg}, nil
}

// Classify выравнивает пластину, вырезает полосу с цифрой и запускает сеть.
func (d *DigitNet) Classify(frame port.Frame, armor entity.Armor) (entity.Digit, float64, error) {
	mat, err := matOf(frame)
	if err != nil {
		return entity.DigitUnknown, 0, err
	}

	src := make([]gocv.Point2f, 4)
	for i, p := range armor.Corners {
		src[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	dst := make([]gocv.Point2f, 4)
	for i, p := range warpTargets(d.cfg.WarpSize) {
		dst[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	srcVec := gocv.NewPointVector2fFromPoints(src)
	defer srcVec.Close()
	dstVec := gocv.NewPointVector2fFromPoints(dst)
	defer dstVec.Close()

	m := gocv.GetPerspectiveTransform2f(srcVec, dstVec)
	defer m.Close()

	warped := gocv.NewMat()
	defer warped.Close()
	gocv.WarpPerspective(mat, &warped, m, image.Pt(d.cfg.WarpSize, d.cfg.WarpSize))

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(warped, &gray, gocv.ColorBGRToGray)

	crop := digitCrop(d.cfg)
	if crop.Empty() {
		return entity.DigitUnknown, 0, errors.New("digit crop is empty")
	}
	roi := gray.Region(crop)
	defer roi.Close()

	blob := gocv.BlobFromImage(roi, 1.0/255.0, image.Pt(d.cfg.InputWidth, d.cfg.InputHeight),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	raw, err := out.DataPtrFloat32()
	if err != nil {
		return entity.DigitUnknown, 0, fmt.Errorf("read network output: %w", err)
	}
	scores := append([]float32(nil), raw...)
	return entity.DecideDigit(scores, d.cfg.Labels, d.cfg.Threshold)
}

func (d *DigitNet) Close() error {
	return d.net.Close()
}

var _ port.DigitClassifier = (*DigitNet)(nil)
