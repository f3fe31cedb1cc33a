//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"armor-aim/internal/domain/port"
)

// MatFrame кадр в памяти OpenCV (BGR).
type MatFrame struct {
	Mat gocv.Mat
}

func (f *MatFrame) Size() image.Point {
	return image.Pt(f.Mat.Cols(), f.Mat.Rows())
}

func (f *MatFrame) Close() error {
	return f.Mat.Close()
}

// matOf извлекает Mat из кадра и проверяет, что он пригоден к обработке.
func matOf(frame port.Frame) (gocv.Mat, error) {
	f, ok := frame.(*MatFrame)
	if !ok || f == nil {
		return gocv.Mat{}, fmt.Errorf("unsupported frame type %T", frame)
	}
	if f.Mat.Empty() {
		return gocv.Mat{}, errors.New("empty frame")
	}
	if f.Mat.Channels() != 3 {
		return gocv.Mat{}, fmt.Errorf("expected BGR frame, got %d channels", f.Mat.Channels())
	}
	return f.Mat, nil
}

// Capture источник кадров из видеофайла или камеры.
type Capture struct {
	vc *gocv.VideoCapture
}

// OpenCapture открывает видео по пути или камеру по индексу ("0").
func OpenCapture(source string) (*Capture, error) {
	vc, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %q: %w", source, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("video %q is not opened", source)
	}
	return &Capture{vc: vc}, nil
}

// Next читает следующий кадр; пустой кадр означает конец потока.
func (c *Capture) Next(ctx context.Context) (port.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mat := gocv.NewMat()
	if ok := c.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, port.ErrEndOfStream
	}
	return &MatFrame{Mat: mat}, nil
}

func (c *Capture) Close() error {
	return c.vc.Close()
}

var _ port.FrameSource = (*Capture)(nil)
