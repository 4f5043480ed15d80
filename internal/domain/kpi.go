package domain

import "sort"

// maxProblematicPins caps the PIN ranking in the summary.
const maxProblematicPins = 10

// CalculateKPIs reduces a reconciled batch to its summary metrics. It is a
// pure reducer: empty input yields a zero summary, and every metric except
// the PIN tie order is independent of input order.
func CalculateKPIs(shipments []NormalizedShipment) KPISummary {
	summary := KPISummary{
		OverbillingRateByCarrier: make(map[Carrier]float64),
		OverbillingRateByZone:    make(map[string]float64),
		TopOverbilledPins:        []PinKPI{},
	}

	var sumActual, sumCharged float64
	var weightPairs int

	carrierTotals := make(map[Carrier]int)
	carrierOverbilled := make(map[Carrier]int)
	zoneTotals := make(map[string]int)
	zoneOverbilled := make(map[string]int)

	// pinOrder remembers first-encounter order so ranking ties stay stable.
	var pinOrder []string
	pinStats := make(map[string]*PinKPI)

	for i := range shipments {
		s := &shipments[i]

		summary.TotalShipments++
		summary.TotalAmount += s.LineAmount
		carrierTotals[s.Carrier]++
		zoneTotals[s.Zone]++

		if s.ActualWeightKg > 0 && s.ChargedWeightKg > 0 {
			weightPairs++
			sumActual += s.ActualWeightKg
			sumCharged += s.ChargedWeightKg
		}

		if !s.IsOverbilled {
			continue
		}
		summary.OverbilledCount++
		summary.OverbilledAmount += s.LineAmount
		carrierOverbilled[s.Carrier]++
		zoneOverbilled[s.Zone]++

		if s.Pin == "" {
			continue
		}
		stat, found := pinStats[s.Pin]
		if !found {
			stat = &PinKPI{Pin: s.Pin}
			pinStats[s.Pin] = stat
			pinOrder = append(pinOrder, s.Pin)
		}
		stat.OverbilledCount++
		stat.Amount += s.LineAmount
	}

	if weightPairs > 0 {
		summary.AvgActualWeightKg = sumActual / float64(weightPairs)
		summary.AvgChargedWeightKg = sumCharged / float64(weightPairs)
	}

	for carrier, total := range carrierTotals {
		summary.OverbillingRateByCarrier[carrier] = float64(carrierOverbilled[carrier]) / float64(total) * 100
	}
	for zone, total := range zoneTotals {
		summary.OverbillingRateByZone[zone] = float64(zoneOverbilled[zone]) / float64(total) * 100
	}

	ranked := make([]PinKPI, 0, len(pinOrder))
	for _, pin := range pinOrder {
		ranked = append(ranked, *pinStats[pin])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OverbilledCount > ranked[j].OverbilledCount
	})
	if len(ranked) > maxProblematicPins {
		ranked = ranked[:maxProblematicPins]
	}
	summary.TopOverbilledPins = ranked

	return summary
}
