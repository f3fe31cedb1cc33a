package port

import (
	"armor-aim/internal/domain/entity"
)

// LightBarDetector интерфейс сегментатора световых элементов
type LightBarDetector interface {
	// Detect находит световые элементы цвета противника на кадре
	Detect(frame Frame, color entity.EnemyColor) ([]entity.LightBar, error)
}

// ArmorMatcher интерфейс сопоставления световых элементов в пластины
type ArmorMatcher interface {
	// Match возвращает непересекающиеся пластины без расстояния
	Match(bars []entity.LightBar) []entity.Armor
}

// PairAssigner выбирает непересекающееся подмножество кандидатов
type PairAssigner interface {
	// Assign получает кандидатов и число световых элементов кадра
	Assign(candidates []entity.Candidate, bars int) []entity.Candidate
}

// PoseResolver интерфейс решения позы пластины
type PoseResolver interface {
	// Resolve возвращает расстояние до пластины вдоль оптической оси
	Resolve(armor entity.Armor) (float64, error)
}

// DigitClassifier внешний классификатор цифры на пластине
type DigitClassifier interface {
	// Classify возвращает цифру (или DigitUnknown) и уверенность модели
	Classify(frame Frame, armor entity.Armor) (entity.Digit, float64, error)
}
