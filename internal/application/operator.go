package app

import (
	"context"

	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
)

type OperatorService struct {
	repo port.OperatorRepository
}

func NewOperatorService(repo port.OperatorRepository) *OperatorService {
	return &OperatorService{repo: repo}
}

func (s *OperatorService) Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *OperatorService) SetState(ctx context.Context, userID, chatID int64, state entity.OperatorState) (*entity.Operator, error) {
	if _, err := s.repo.Get(ctx, userID, chatID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateState(ctx, userID, state); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, userID, chatID)
}

// Watch подписывает оператора на отчёты о прогоне.
func (s *OperatorService) Watch(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.OperatorWatching)
}

func (s *OperatorService) Cancel(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.OperatorIdle)
}

// Watchers чаты операторов, подписанных на отчёты.
func (s *OperatorService) Watchers(ctx context.Context) ([]int64, error) {
	ops, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var chats []int64
	for _, op := range ops {
		if op.Watching() {
			chats = append(chats, op.ChatID)
		}
	}
	return chats, nil
}
