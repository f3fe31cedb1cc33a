package telegram

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"armor-aim/internal/domain/entity"
)

func TestFormatStatus_NoFrames(t *testing.T) {
	require.Equal(t, msgNoFrames, formatStatus(nil, entity.EnemyRed))
}

func TestFormatStatus(t *testing.T) {
	result := &entity.FrameResult{
		Index:     42,
		LightBars: make([]entity.LightBar, 4),
		Armors: []entity.Armor{
			{Type: entity.ArmorSmall, Distance: 3100, Digit: 1},
			{Type: entity.ArmorLarge, Distance: 2450, Digit: entity.DigitUnknown},
			{Type: entity.ArmorSmall, Distance: math.NaN(), Digit: 4},
		},
		Elapsed: 3 * time.Millisecond,
	}

	text := formatStatus(result, entity.EnemyBlue)
	require.Contains(t, text, "Кадр #42 (3ms)")
	require.Contains(t, text, "синий")
	require.Contains(t, text, "Световых элементов: 4")
	require.Contains(t, text, "Пластин: 3 (малых 2, больших 1)")
	require.Contains(t, text, "Ближайшая: large, цифра ?, 2.45 м")
}

func TestFormatStatus_NoDistance(t *testing.T) {
	result := &entity.FrameResult{
		Armors: []entity.Armor{{Type: entity.ArmorSmall, Distance: math.NaN()}},
	}
	require.NotContains(t, formatStatus(result, entity.EnemyRed), "Ближайшая")
}

func TestParseColorCommand(t *testing.T) {
	color, reply, ok := parseColorCommand(" Blue ")
	require.True(t, ok)
	require.Equal(t, entity.EnemyBlue, color)
	require.Contains(t, reply, "синий")

	_, reply, ok = parseColorCommand("")
	require.False(t, ok)
	require.Equal(t, msgColorUsage, reply)

	_, _, ok = parseColorCommand("green")
	require.False(t, ok)
}
