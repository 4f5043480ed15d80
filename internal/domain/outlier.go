package domain

import "sort"

// minOutlierGroupSize is the smallest number of positive-rate members a
// (carrier, zone, service) group needs before its rate distribution is
// considered estimable.
const minOutlierGroupSize = 5

// rateGroup keys the outlier partition. Grouping spans both carriers so
// cross-carrier comparison happens wherever zone and service coincide.
type rateGroup struct {
	carrier Carrier
	zone    string
	service string
}

// DetectOutliers flags statistical per-kg-rate outliers within each
// (carrier, zone, service) group and recomputes the unioned miscalculation
// flag for every shipment. It must run once over the full combined batch,
// after all normalization.
//
// Percentile rule: sort the group's strictly positive rates ascending and
// index at floor(n*0.05) and floor(n*0.95), 0-based, no interpolation. The
// exact floor indexing decides ties at small group sizes and must not be
// replaced with an interpolating percentile.
//
// The input slice is left untouched; a new slice of copies is returned, so
// callers holding the pre-detection list never observe half-updated flags.
// The result is a pure function of the batch: rerunning on its own output
// yields identical flags.
func DetectOutliers(shipments []NormalizedShipment) []NormalizedShipment {
	out := make([]NormalizedShipment, len(shipments))
	copy(out, shipments)

	groups := make(map[rateGroup][]int)
	for i := range out {
		out[i].FlagChargeOutlier = false
		key := rateGroup{carrier: out[i].Carrier, zone: out[i].Zone, service: out[i].Service}
		groups[key] = append(groups[key], i)
	}

	for _, members := range groups {
		rates := make([]float64, 0, len(members))
		for _, i := range members {
			if out[i].PerKgRate > 0 {
				rates = append(rates, out[i].PerKgRate)
			}
		}
		if len(rates) < minOutlierGroupSize {
			continue
		}

		sort.Float64s(rates)
		p5 := rates[int(float64(len(rates))*0.05)]
		p95 := rates[int(float64(len(rates))*0.95)]

		// Every group member is tested against the bounds, not just the
		// positive-rate subset that produced them.
		for _, i := range members {
			if out[i].PerKgRate < p5 || out[i].PerKgRate > p95 {
				out[i].FlagChargeOutlier = true
			}
		}
	}

	for i := range out {
		out[i].FlagMiscalculated = out[i].IsOverbilled || out[i].FlagRoundupJump || out[i].FlagChargeOutlier
	}

	return out
}
