package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeGroup builds n shipments in one (carrier, zone, service) group with
// the given per-kg rates, already finalized.
func makeGroup(zone string, rates []float64) []NormalizedShipment {
	shipments := make([]NormalizedShipment, 0, len(rates))
	for i, rate := range rates {
		shipments = append(shipments, finalizeShipment(NormalizedShipment{
			Carrier:         CarrierBlueDart,
			AWB:             fmt.Sprintf("%s-%03d", zone, i),
			Zone:            zone,
			Service:         "APEX",
			ActualWeightKg:  1,
			ChargedWeightKg: 1,
			LineAmount:      rate, // charged 1 kg, so rate == amount
		}))
	}
	return shipments
}

func flaggedAWBs(shipments []NormalizedShipment) []string {
	var awbs []string
	for _, s := range shipments {
		if s.FlagChargeOutlier {
			awbs = append(awbs, s.AWB)
		}
	}
	return awbs
}

func TestDetectOutliers_SingleFarOutlier(t *testing.T) {
	// 21 identical rates plus one far outlier. floor(22*0.05)=1 and
	// floor(22*0.95)=20 both land on the common rate, so only the extreme
	// rate sits strictly outside the bounds.
	rates := make([]float64, 0, 22)
	for i := 0; i < 21; i++ {
		rates = append(rates, 50)
	}
	rates = append(rates, 500)

	got := DetectOutliers(makeGroup("south", rates))

	flagged := flaggedAWBs(got)
	require.Len(t, flagged, 1)
	assert.Equal(t, "south-021", flagged[0])
}

func TestDetectOutliers_SmallGroupSkipped(t *testing.T) {
	got := DetectOutliers(makeGroup("south", []float64{10, 10, 10, 1000}))
	assert.Empty(t, flaggedAWBs(got), "groups under five qualifying members never flag")
}

func TestDetectOutliers_ZeroRatesDoNotQualify(t *testing.T) {
	// Four positive rates plus zero-rate members: still under the five
	// qualifying members needed to estimate a distribution.
	shipments := makeGroup("south", []float64{10, 11, 12, 1000})
	shipments = append(shipments, makeGroup("south", []float64{0, 0, 0})...)

	got := DetectOutliers(shipments)
	assert.Empty(t, flaggedAWBs(got))
}

func TestDetectOutliers_FlagsWholeGroupNotJustSample(t *testing.T) {
	// Zero-rate members do not feed the percentile estimate, but they are
	// still tested against it and sit strictly below any positive p5.
	shipments := makeGroup("south", []float64{50, 51, 52, 53, 54, 55})
	zero := finalizeShipment(NormalizedShipment{
		Carrier: CarrierBlueDart,
		AWB:     "south-zero",
		Zone:    "south",
		Service: "APEX",
	})
	shipments = append(shipments, zero)

	got := DetectOutliers(shipments)
	assert.Contains(t, flaggedAWBs(got), "south-zero")
}

func TestDetectOutliers_GroupsAreIndependent(t *testing.T) {
	southRates := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		southRates = append(southRates, 50)
	}
	southRates = append(southRates, 500)
	south := makeGroup("south", southRates)
	north := makeGroup("north", []float64{50, 51, 52, 500})

	got := DetectOutliers(append(south, north...))
	flagged := flaggedAWBs(got)

	assert.Contains(t, flagged, "south-020")
	for _, awb := range flagged {
		assert.NotContains(t, awb, "north", "undersized north group must not flag")
	}
}

func TestDetectOutliers_FloorIndexRule(t *testing.T) {
	// n=6: floor(6*0.05)=0 and floor(6*0.95)=5, so the bounds are the
	// minimum and maximum and nothing is strictly outside.
	got := DetectOutliers(makeGroup("south", []float64{10, 20, 30, 40, 50, 60}))
	assert.Empty(t, flaggedAWBs(got))

	// n=20: floor(20*0.95)=19 still selects the maximum, so even a large
	// top rate is not an outlier until n reaches 21.
	rates := make([]float64, 0, 20)
	for i := 0; i < 19; i++ {
		rates = append(rates, 50)
	}
	rates = append(rates, 5000)
	got = DetectOutliers(makeGroup("south", rates))
	assert.Empty(t, flaggedAWBs(got))
}

func TestDetectOutliers_MiscalculatedUnion(t *testing.T) {
	overbilled := finalizeShipment(NormalizedShipment{
		Carrier:         CarrierDelhivery,
		AWB:             "over",
		Zone:            "s2",
		Service:         "E",
		ActualWeightKg:  1.0,
		ChargedWeightKg: 1.5,
	})
	roundup := finalizeShipment(NormalizedShipment{
		Carrier:         CarrierDelhivery,
		AWB:             "roundup",
		Zone:            "s2",
		Service:         "E",
		ActualWeightKg:  0.4,
		ChargedWeightKg: 1.5,
	})
	clean := finalizeShipment(NormalizedShipment{
		Carrier:         CarrierDelhivery,
		AWB:             "clean",
		Zone:            "s2",
		Service:         "E",
		ActualWeightKg:  1.0,
		ChargedWeightKg: 1.0,
	})

	got := DetectOutliers([]NormalizedShipment{overbilled, roundup, clean})
	require.Len(t, got, 3)

	byAWB := map[string]NormalizedShipment{}
	for _, s := range got {
		byAWB[s.AWB] = s
	}
	assert.True(t, byAWB["over"].FlagMiscalculated)
	assert.True(t, byAWB["roundup"].FlagMiscalculated)
	assert.False(t, byAWB["clean"].FlagMiscalculated)
}

func TestDetectOutliers_Idempotent(t *testing.T) {
	rates := make([]float64, 0, 30)
	for i := 0; i < 29; i++ {
		rates = append(rates, 40+float64(i))
	}
	rates = append(rates, 4000)
	shipments := makeGroup("west", rates)

	once := DetectOutliers(shipments)
	twice := DetectOutliers(once)

	assert.Equal(t, once, twice)
}

func TestDetectOutliers_InputNotMutated(t *testing.T) {
	rates := make([]float64, 25)
	for i := range rates {
		rates[i] = 40 + float64(i)*100
	}
	shipments := makeGroup("east", rates)

	_ = DetectOutliers(shipments)

	for _, s := range shipments {
		assert.False(t, s.FlagChargeOutlier, "input slice must stay untouched")
		assert.False(t, s.FlagMiscalculated)
	}
}

func TestDetectOutliers_EmptyInput(t *testing.T) {
	assert.Empty(t, DetectOutliers(nil))
}
