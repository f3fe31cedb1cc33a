//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"armor-aim/config"
	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
)

// Capture заглушка источника кадров (без OpenCV).
type Capture struct{}

// OpenCapture возвращает ошибку, если сборка без тега gocv.
func OpenCapture(source string) (*Capture, error) {
	_ = source
	return nil, ErrGoCVDisabled
}

func (c *Capture) Next(ctx context.Context) (port.Frame, error) {
	_ = ctx
	return nil, ErrGoCVDisabled
}

func (c *Capture) Close() error { return nil }

// Segmentor заглушка сегментатора (без OpenCV).
type Segmentor struct {
	filter LightBarFilter
}

func NewSegmentor(cfg config.DetectorConfig) *Segmentor {
	return &Segmentor{filter: NewLightBarFilter(cfg)}
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (s *Segmentor) Detect(frame port.Frame, color entity.EnemyColor) ([]entity.LightBar, error) {
	_ = frame
	_ = color
	return nil, ErrGoCVDisabled
}

// DigitNet заглушка классификатора (без OpenCV).
type DigitNet struct{}

// NewDigitNet возвращает ошибку, если сборка без тега gocv.
func NewDigitNet(modelPath string, cfg config.ClassifierConfig) (*DigitNet, error) {
	_ = modelPath
	_ = cfg
	return nil, ErrGoCVDisabled
}

func (d *DigitNet) Classify(frame port.Frame, armor entity.Armor) (entity.Digit, float64, error) {
	_ = frame
	_ = armor
	return entity.DigitUnknown, 0, ErrGoCVDisabled
}

func (d *DigitNet) Close() error { return nil }

// Renderer заглушка рендерера (без OpenCV).
type Renderer struct{}

// NewRenderer возвращает ошибку, если сборка без тега gocv.
func NewRenderer(title string, show bool) (*Renderer, error) {
	_ = title
	_ = show
	return nil, ErrGoCVDisabled
}

func (r *Renderer) Render(frame port.Frame, result *entity.FrameResult) (bool, error) {
	_ = frame
	_ = result
	return false, ErrGoCVDisabled
}

func (r *Renderer) Snapshot() ([]byte, error) {
	return nil, ErrGoCVDisabled
}

func (r *Renderer) Close() error { return nil }

var (
	_ port.FrameSource      = (*Capture)(nil)
	_ port.LightBarDetector = (*Segmentor)(nil)
	_ port.DigitClassifier  = (*DigitNet)(nil)
	_ port.Renderer         = (*Renderer)(nil)
	_ port.SnapshotSource   = (*Renderer)(nil)
)
