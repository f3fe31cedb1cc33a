package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOperator_DefaultState(t *testing.T) {
	o := NewOperator(1, 10)
	require.Equal(t, OperatorIdle, o.State)
	require.Equal(t, int64(1), o.ID)
	require.Equal(t, int64(10), o.ChatID)
	require.False(t, o.Watching())

	o.SetState(OperatorWatching)
	require.True(t, o.Watching())
}
