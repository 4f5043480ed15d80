package domain

import (
	"log/slog"
	"strings"
)

// Reconciliation thresholds, in kilograms unless noted.
const (
	// overbillingToleranceKg is the charged-vs-actual slack before a
	// shipment counts as over- or underbilled.
	overbillingToleranceKg = 0.1

	// highUpliftThresholdKg flags charged weights at least this far above
	// actual.
	highUpliftThresholdKg = 0.5

	// Round-up jump: sub-kilogram parcels billed at 1.5 kg or more.
	roundupActualMaxKg  = 1.0
	roundupChargedMinKg = 1.5

	// Value/weight mismatch: high declared value on a near-weightless parcel.
	mismatchValueMin    = 1000.0
	mismatchActualMaxKg = 0.5

	// blueDartChargedFloorKg backfills a missing charged weight when the
	// actual weight is missing too.
	blueDartChargedFloorKg = 0.5

	// blueDartDefaultStatus stands in for BlueDart's absent status column;
	// billing exports only cover delivered shipments.
	blueDartDefaultStatus = "DELIVERED"

	// delhiveryGramsPerValueUnit reconstructs actual weight from declared
	// product value: 1.25 g of product per currency unit.
	delhiveryGramsPerValueUnit = 1.25

	gramsPerKg = 1000.0
)

// blueDartAliases enumerates the column-resolution order for each logical
// BlueDart field. Earlier names win; the list reflects observed export
// vintages.
var blueDartAliases = map[string][]string{
	"awb":            {"AWB_NO", "AWB", "AWB NO"},
	"pickup_date":    {"PICKUP_DATE", "PICKUP DATE", "PICKUPDATE"},
	"pin":            {"PIN CODE", "PIN_CODE", "PINCODE"},
	"origin":         {"ORIGIN", "ORIGIN_CITY"},
	"destination":    {"DESTINATION", "DESTINATION_CITY", "DEST"},
	"service":        {"PRODUCT", "SERVICE", "PRODUCT_TYPE"},
	"actual_weight":  {"ACTUAL_WEIGHT", "ACT_WT", "WEIGHT"},
	"charged_weight": {"CHARGED_WEIGHT", "CHG_WT", "BILLED_WEIGHT"},
	"pieces":         {"PIECES", "PCS", "NO_OF_PIECES"},
	"amount":         {"AMOUNT", "TOTAL_AMOUNT", "NET_AMOUNT"},
	"product_value":  {"DECLARED_VALUE", "PRODUCT_VALUE", "INV_VALUE"},
}

// delhiveryAliases does the same for Delhivery. waybill_num and pickup_date
// are guaranteed by the upload service; the rest vary mildly by vintage.
var delhiveryAliases = map[string][]string{
	"awb":            {"waybill_num"},
	"pickup_date":    {"pickup_date"},
	"origin":         {"origin_center", "origin"},
	"destination":    {"destination_city", "destination"},
	"pin":            {"destination_pin", "pin_code"},
	"service":        {"product_type", "service_type"},
	"zone":           {"zone"},
	"status":         {"status"},
	"charged_weight": {"charged_weight", "charged_weight_gm"},
	"pieces":         {"pieces", "pcs"},
	"amount":         {"amount", "total_amount"},
	"product_value":  {"product_value", "declared_value"},
}

// destinationZones maps the metro prefix of a BlueDart destination string
// ("BLR/BANGALORE" → "BLR") to a billing zone. Deliberately small:
// unmapped prefixes get ZoneUnknown rather than a guessed zone.
var destinationZones = map[string]string{
	"DEL": "north",
	"JAI": "north",
	"BOM": "west",
	"PNQ": "west",
	"AMD": "west",
	"BLR": "south",
	"MAA": "south",
	"HYD": "south",
	"CCU": "east",
	"GAU": "east",
}

// NormalizeBlueDart maps raw BlueDart rows to canonical shipments. No row
// ever fails: missing numerics coerce to documented defaults and
// unparseable dates fall back to the current clock time. One summary line
// is logged per batch.
func NormalizeBlueDart(rows []RawRecord, logger *slog.Logger) []NormalizedShipment {
	shipments := make([]NormalizedShipment, 0, len(rows))
	var dateFallbacks int

	for _, row := range rows {
		pickup, ok := ParsePickupDate(stringField(row, blueDartAliases["pickup_date"]...))
		if !ok {
			dateFallbacks++
		}

		actual := floatField(row, blueDartAliases["actual_weight"]...)
		charged, hasCharged := lookupFloat(row, blueDartAliases["charged_weight"]...)
		if !hasCharged || charged <= 0 {
			// Default chain: bill at actual weight when known, else the
			// half-kilo floor every BlueDart rate card starts at.
			if actual > 0 {
				charged = actual
			} else {
				charged = blueDartChargedFloorKg
			}
		}

		destination := stringField(row, blueDartAliases["destination"]...)

		s := NormalizedShipment{
			Carrier:         CarrierBlueDart,
			AWB:             stringField(row, blueDartAliases["awb"]...),
			PickupDate:      pickup,
			Origin:          stringField(row, blueDartAliases["origin"]...),
			Destination:     destination,
			Pin:             stringField(row, blueDartAliases["pin"]...),
			Service:         stringField(row, blueDartAliases["service"]...),
			Zone:            zoneForDestination(destination),
			Status:          blueDartDefaultStatus,
			ActualWeightKg:  actual,
			ChargedWeightKg: charged,
			Pieces:          intFieldOr(row, 1, blueDartAliases["pieces"]...),
			LineAmount:      floatField(row, blueDartAliases["amount"]...),
			ProductValue:    floatField(row, blueDartAliases["product_value"]...),
			Raw:             row,
		}
		shipments = append(shipments, finalizeShipment(s))
	}

	logBatch(logger, CarrierBlueDart, len(rows), dateFallbacks)
	return shipments
}

// NormalizeDelhivery maps raw Delhivery rows to canonical shipments.
// Actual weight is reconstructed from product value; charged weight is
// converted from grams only when the batch-level unit sniff says grams.
func NormalizeDelhivery(rows []RawRecord, logger *slog.Logger) []NormalizedShipment {
	samples := make([]float64, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, floatField(row, delhiveryAliases["charged_weight"]...))
	}
	unit := DetectWeightUnit(samples)

	shipments := make([]NormalizedShipment, 0, len(rows))
	var dateFallbacks int

	for _, row := range rows {
		pickup, ok := ParsePickupDate(stringField(row, delhiveryAliases["pickup_date"]...))
		if !ok {
			dateFallbacks++
		}

		productValue := floatField(row, delhiveryAliases["product_value"]...)
		actual := productValue * delhiveryGramsPerValueUnit / gramsPerKg

		charged := floatField(row, delhiveryAliases["charged_weight"]...)
		if unit == UnitGrams {
			charged /= gramsPerKg
		}

		zone := stringField(row, delhiveryAliases["zone"]...)
		if zone == "" {
			zone = ZoneUnknown
		}

		s := NormalizedShipment{
			Carrier:         CarrierDelhivery,
			AWB:             stringField(row, delhiveryAliases["awb"]...),
			PickupDate:      pickup,
			Origin:          stringField(row, delhiveryAliases["origin"]...),
			Destination:     stringField(row, delhiveryAliases["destination"]...),
			Pin:             stringField(row, delhiveryAliases["pin"]...),
			Service:         stringField(row, delhiveryAliases["service"]...),
			Zone:            zone,
			Status:          stringField(row, delhiveryAliases["status"]...),
			ActualWeightKg:  actual,
			ChargedWeightKg: charged,
			Pieces:          intFieldOr(row, 1, delhiveryAliases["pieces"]...),
			LineAmount:      floatField(row, delhiveryAliases["amount"]...),
			ProductValue:    productValue,
			Raw:             row,
		}
		shipments = append(shipments, finalizeShipment(s))
	}

	logBatch(logger, CarrierDelhivery, len(rows), dateFallbacks)
	return shipments
}

// finalizeShipment computes the derived quantities and rule-based flags
// shared by both carriers. This is the single place those rules live.
func finalizeShipment(s NormalizedShipment) NormalizedShipment {
	s.WeightDiffKg = s.ChargedWeightKg - s.ActualWeightKg
	if s.ActualWeightKg > 0 {
		s.WeightDiffPercent = s.WeightDiffKg / s.ActualWeightKg * 100
	}
	if s.ChargedWeightKg > 0 {
		s.PerKgRate = s.LineAmount / s.ChargedWeightKg
	}
	s.ValueBucket = valueBucket(s.ProductValue)

	s.IsOverbilled = s.WeightDiffKg > overbillingToleranceKg
	s.IsUnderbilled = s.WeightDiffKg < -overbillingToleranceKg
	s.FlagHighUplift = s.ChargedWeightKg >= s.ActualWeightKg+highUpliftThresholdKg
	s.FlagRoundupJump = s.ActualWeightKg < roundupActualMaxKg && s.ChargedWeightKg >= roundupChargedMinKg
	s.FlagValueWeightMismatch = s.ProductValue >= mismatchValueMin && s.ActualWeightKg < mismatchActualMaxKg
	s.FlagMissingActual = s.ActualWeightKg <= 0

	s.ProcessedAt = clock.Now()
	return s
}

// valueBucket assigns the fixed declared-value bracket.
func valueBucket(v float64) string {
	switch {
	case v <= 500:
		return BucketLow
	case v <= 1000:
		return BucketMid
	case v <= 2000:
		return BucketHigh
	default:
		return BucketPremium
	}
}

// zoneForDestination looks up the metro prefix before the first separator.
func zoneForDestination(destination string) string {
	prefix := strings.ToUpper(firstToken(destination))
	if zone, found := destinationZones[prefix]; found {
		return zone
	}
	return ZoneUnknown
}

// firstToken cuts at the first '/', '-' or space.
func firstToken(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "/- "); i >= 0 {
		return s[:i]
	}
	return s
}

func logBatch(logger *slog.Logger, carrier Carrier, rows, dateFallbacks int) {
	if logger == nil {
		return
	}
	logger.Info("carrier batch normalized",
		"carrier", carrier,
		"rows", rows,
		"date_fallbacks", dateFallbacks,
	)
}
