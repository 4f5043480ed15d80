package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectWeightUnit(t *testing.T) {
	tests := []struct {
		name     string
		samples  []float64
		expected WeightUnit
	}{
		{"gram-scale samples", []float64{100, 150, 200}, UnitGrams},
		{"kilogram-scale samples", []float64{0.5, 1.0, 2.0}, UnitKilograms},
		{"empty defaults to kilograms", []float64{}, UnitKilograms},
		{"nil defaults to kilograms", nil, UnitKilograms},
		{"all zero defaults to kilograms", []float64{0, 0, 0}, UnitKilograms},
		{"negatives ignored", []float64{-500, 0.8, 1.2}, UnitKilograms},
		{"negatives ignored grams", []float64{-5, 300, 700}, UnitGrams},
		{"mean exactly 50 is kilograms", []float64{40, 60}, UnitKilograms},
		{"mean exactly 2000 is kilograms", []float64{1000, 3000}, UnitKilograms},
		{"mean just above 50 is grams", []float64{51}, UnitGrams},
		{"heavy freight stays kilograms", []float64{2500, 3100, 2800}, UnitKilograms},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectWeightUnit(tt.samples))
		})
	}
}
