package entity

import (
	"fmt"
	"strings"
)

// EnemyColor цвет световых элементов противника
type EnemyColor string

const (
	EnemyRed  EnemyColor = "red"
	EnemyBlue EnemyColor = "blue"
)

// ParseEnemyColor разбирает цвет противника (регистр не важен)
func ParseEnemyColor(s string) (EnemyColor, error) {
	switch c := EnemyColor(strings.ToLower(strings.TrimSpace(s))); c {
	case EnemyRed, EnemyBlue:
		return c, nil
	}
	return "", fmt.Errorf("unknown enemy color %q", s)
}
