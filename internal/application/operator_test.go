package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"armor-aim/internal/domain/entity"
	"armor-aim/internal/infrastructure/storage"
)

func TestOperatorService_WatchAndCancel(t *testing.T) {
	repo := storage.NewMemoryOperatorRepository()
	svc := NewOperatorService(repo)
	ctx := context.Background()

	op, err := svc.Watch(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.OperatorWatching, op.State)

	op, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.OperatorIdle, op.State)
}

func TestOperatorService_Watchers(t *testing.T) {
	repo := storage.NewMemoryOperatorRepository()
	svc := NewOperatorService(repo)
	ctx := context.Background()

	_, err := svc.Watch(ctx, 1, 10)
	require.NoError(t, err)
	_, err = svc.Get(ctx, 2, 20)
	require.NoError(t, err)
	_, err = svc.Watch(ctx, 3, 30)
	require.NoError(t, err)

	chats, err := svc.Watchers(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{10, 30}, chats)
}

func TestOperatorService_ConcurrentWatchAndWatchers(t *testing.T) {
	svc := NewOperatorService(storage.NewMemoryOperatorRepository())
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			var err error
			if i%2 == 0 {
				_, err = svc.Watch(ctx, 1, 10)
			} else {
				_, err = svc.Cancel(ctx, 1, 10)
			}
			if err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			if _, err := svc.Watchers(ctx); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	// последняя команда Cancel
	chats, err := svc.Watchers(ctx)
	require.NoError(t, err)
	require.Empty(t, chats)
}

func TestOperatorService_ReturnedOperatorIsDetached(t *testing.T) {
	svc := NewOperatorService(storage.NewMemoryOperatorRepository())
	ctx := context.Background()

	op, err := svc.Watch(ctx, 1, 10)
	require.NoError(t, err)
	op.SetState(entity.OperatorIdle)

	chats, err := svc.Watchers(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{10}, chats)
}
