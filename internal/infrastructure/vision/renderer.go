//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"errors"
	"image/jpeg"
	"sync"

	"gocv.io/x/gocv"

	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
)

const escKey = 27

// Renderer рисует разметку, при необходимости показывает окно
// и хранит последний размеченный кадр для бота.
type Renderer struct {
	window *gocv.Window

	mu   sync.Mutex
	last gocv.Mat
}

// NewRenderer создаёт рендерер; окно открывается только при show=true.
func NewRenderer(title string, show bool) (*Renderer, error) {
	r := &Renderer{last: gocv.NewMat()}
	if show {
		r.window = gocv.NewWindow(title)
	}
	return r, nil
}

// Render рисует световые элементы и пластины. quit=true по ESC.
func (r *Renderer) Render(frame port.Frame, result *entity.FrameResult) (bool, error) {
	mat, err := matOf(frame)
	if err != nil {
		return false, err
	}

	canvas := mat.Clone()
	segs, labels := overlay(result)
	for _, s := range segs {
		gocv.Line(&canvas, s.A, s.B, s.Color, 2)
	}
	for _, l := range labels {
		gocv.PutText(&canvas, l.Text, l.At, gocv.FontHersheySimplex, 0.5, l.Color, 1)
	}

	quit := false
	if r.window != nil {
		r.window.IMShow(canvas)
		quit = r.window.WaitKey(1) == escKey
	}

	r.mu.Lock()
	old := r.last
	r.last = canvas
	r.mu.Unlock()
	old.Close()

	return quit, nil
}

// Snapshot последний размеченный кадр в JPEG.
func (r *Renderer) Snapshot() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last.Empty() {
		return nil, errors.New("no frame rendered yet")
	}
	img, err := r.last.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.window != nil {
		_ = r.window.Close()
	}
	return r.last.Close()
}

var (
	_ port.Renderer       = (*Renderer)(nil)
	_ port.SnapshotSource = (*Renderer)(nil)
)
