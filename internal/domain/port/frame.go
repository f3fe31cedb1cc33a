package port

import (
	"context"
	"errors"
	"image"

	"armor-aim/internal/domain/entity"
)

// ErrEndOfStream кадры закончились
var ErrEndOfStream = errors.New("end of stream")

// Frame кадр видеопотока. Представление пикселей известно только инфраструктуре.
type Frame interface {
	Size() image.Point
	Close() error
}

// FrameSource источник кадров
type FrameSource interface {
	// Next возвращает следующий кадр или ErrEndOfStream
	Next(ctx context.Context) (Frame, error)
	Close() error
}

// Renderer отображает результат обработки кадра
type Renderer interface {
	// Render рисует разметку; quit=true означает запрос оператора на остановку
	Render(frame Frame, result *entity.FrameResult) (quit bool, err error)
}

// SnapshotSource выдаёт последний размеченный кадр в JPEG
type SnapshotSource interface {
	Snapshot() ([]byte, error)
}

// FrameObserver получает итоги каждого кадра (метрики)
type FrameObserver interface {
	Observe(result *entity.FrameResult)
}

// Notifier отправляет текстовые уведомления операторам
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
