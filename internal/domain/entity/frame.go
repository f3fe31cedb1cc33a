package entity

import "time"

// FrameResult итог обработки одного кадра.
type FrameResult struct {
	Index     int           // номер кадра в потоке
	LightBars []LightBar    // найденные световые элементы
	Armors    []Armor       // непересекающиеся пластины
	Elapsed   time.Duration // время обработки
}

// Counts число малых и больших пластин
func (r FrameResult) Counts() (small, large int) {
	for _, a := range r.Armors {
		switch a.Type {
		case ArmorSmall:
			small++
		case ArmorLarge:
			large++
		}
	}
	return small, large
}

// Nearest ближайшая пластина с известным расстоянием
func (r FrameResult) Nearest() (Armor, bool) {
	var best Armor
	found := false
	for _, a := range r.Armors {
		if !a.HasDistance() {
			continue
		}
		if !found || a.Distance < best.Distance {
			best, found = a, true
		}
	}
	return best, found
}
