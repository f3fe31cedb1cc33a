package entity

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
)

// ArmorType размер бронепластины
type ArmorType string

const (
	ArmorSmall ArmorType = "small" // малая пластина
	ArmorLarge ArmorType = "large" // большая пластина
)

func (t ArmorType) String() string {
	return string(t)
}

// DistanceUnknown расстояние до пластины не найдено
var DistanceUnknown = math.NaN()

// Candidate пара световых элементов, прошедшая геометрическую проверку
type Candidate struct {
	Left       int       // индекс первого элемента
	Right      int       // индекс второго элемента
	MeanLength float64   // средняя длина элементов
	Distance   float64   // расстояние между центрами
	AngleDiff  float64   // разница углов наклона
	YDiff      float64   // разница по вертикали
	Type       ArmorType // классификация по размеру
	Score      float64   // приоритет при разрешении конфликтов
}

// Armor итоговая бронепластина кадра
type Armor struct {
	Corners  [4]r2.Point     // TL, TR, BR, BL
	Bounds   image.Rectangle // осевой прямоугольник для вырезки
	Type     ArmorType
	Left     int     // индексы световых элементов кадра
	Right    int
	Score    float64
	Distance float64 // мм вдоль оптической оси; NaN пока поза не найдена
	Digit    Digit
}

// NewArmor создаёт пластину без расстояния и без распознанной цифры.
func NewArmor(c Candidate, corners [4]r2.Point, bounds image.Rectangle) Armor {
	return Armor{
		Corners:  corners,
		Bounds:   bounds,
		Type:     c.Type,
		Left:     c.Left,
		Right:    c.Right,
		Score:    c.Score,
		Distance: DistanceUnknown,
		Digit:    DigitUnknown,
	}
}

// HasDistance сообщает, удалось ли решить позу
func (a Armor) HasDistance() bool {
	return !math.IsNaN(a.Distance) && !math.IsInf(a.Distance, 0)
}

// Center центр пластины
func (a Armor) Center() r2.Point {
	var c r2.Point
	for _, p := range a.Corners {
		c = c.Add(p)
	}
	return c.Mul(0.25)
}
