package port

import (
	"context"

	"armor-aim/internal/domain/entity"
)

// OperatorRepository интерфейс хранилища операторов
type OperatorRepository interface {
	// Get возвращает копию оператора по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error)

	// UpdateState обновляет состояние оператора
	UpdateState(ctx context.Context, userID int64, state entity.OperatorState) error

	// List возвращает всех известных операторов
	List(ctx context.Context) ([]*entity.Operator, error)
}
