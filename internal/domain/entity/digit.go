package entity

import (
	"fmt"
	"math"
	"strconv"
)

// Digit номер робота на пластине
type Digit int

// DigitUnknown цифра не распознана
const DigitUnknown Digit = -1

// NegativeLabel служебный класс «не цифра»
const NegativeLabel = "negative"

// DefaultDigitLabels порядок классов модели, как при обучении.
var DefaultDigitLabels = []string{"1", "2", "3", "4", "5", "7", NegativeLabel}

func (d Digit) String() string {
	if d == DigitUnknown {
		return "?"
	}
	return strconv.Itoa(int(d))
}

// Known сообщает, распознана ли цифра
func (d Digit) Known() bool {
	return d != DigitUnknown
}

// AcceptDigit применяет порог уверенности к классу модели.
// Уверенность, равная порогу, принимается.
func AcceptDigit(classID int, confidence float64, labels []string, threshold float64) Digit {
	if classID < 0 || classID >= len(labels) {
		return DigitUnknown
	}
	if confidence < threshold {
		return DigitUnknown
	}
	label := labels[classID]
	if label == NegativeLabel {
		return DigitUnknown
	}
	n, err := strconv.Atoi(label)
	if err != nil {
		return DigitUnknown
	}
	return Digit(n)
}

// DecideDigit переводит сырой выход сети в цифру: softmax, argmax, порог.
func DecideDigit(scores []float32, labels []string, threshold float64) (Digit, float64, error) {
	if len(scores) != len(labels) {
		return DigitUnknown, 0, fmt.Errorf("model returned %d scores for %d labels", len(scores), len(labels))
	}
	if len(scores) == 0 {
		return DigitUnknown, 0, fmt.Errorf("model returned no scores")
	}

	probs := Softmax(scores)
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return AcceptDigit(best, probs[best], labels, threshold), probs[best], nil
}

// Softmax численно устойчивый softmax
func Softmax(scores []float32) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, float64(s))
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(float64(s) - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
