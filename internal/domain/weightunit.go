package domain

// WeightUnit is the sniffed unit of a carrier export's weight column.
type WeightUnit string

const (
	UnitGrams     WeightUnit = "g"
	UnitKilograms WeightUnit = "kg"
)

// DetectWeightUnit infers whether a batch's weight column is grams or
// kilograms from the mean of its strictly positive samples. A mean between
// 50 and 2000 (exclusive) reads as grams: parcels lighter than 50 kg and
// heavier than 2 t are both rare, while 50 g – 2 kg covers nearly all
// gram-denominated exports. No positive samples defaults to kilograms.
// The heuristic runs once per batch because a single export vintage never
// mixes units.
func DetectWeightUnit(samples []float64) WeightUnit {
	var sum float64
	var n int
	for _, v := range samples {
		if v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return UnitKilograms
	}

	mean := sum / float64(n)
	if mean > 50 && mean < 2000 {
		return UnitGrams
	}
	return UnitKilograms
}
