package storage

import (
	"context"
	"sort"
	"sync"

	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
)

// MemoryOperatorRepository in-memory хранилище операторов
type MemoryOperatorRepository struct {
	mu        sync.RWMutex
	operators map[int64]*entity.Operator
}

// NewMemoryOperatorRepository создаёт пустое хранилище
func NewMemoryOperatorRepository() *MemoryOperatorRepository {
	return &MemoryOperatorRepository{
		operators: make(map[int64]*entity.Operator),
	}
}

// Get возвращает копию оператора по ID, создаёт нового если не найден
func (r *MemoryOperatorRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, exists := r.operators[userID]
	if !exists {
		op = entity.NewOperator(userID, chatID)
		r.operators[userID] = op
	}

	cp := *op
	return &cp, nil
}

// UpdateState обновляет состояние оператора, неизвестные ID игнорируются
func (r *MemoryOperatorRepository) UpdateState(ctx context.Context, userID int64, state entity.OperatorState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if op, exists := r.operators[userID]; exists {
		op.SetState(state)
	}

	return nil
}

// List возвращает копии операторов в порядке ID
func (r *MemoryOperatorRepository) List(ctx context.Context) ([]*entity.Operator, error) {
	r.mu.RLock()
	out := make([]*entity.Operator, 0, len(r.operators))
	for _, op := range r.operators {
		cp := *op
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Проверка реализации интерфейса
var _ port.OperatorRepository = (*MemoryOperatorRepository)(nil)
