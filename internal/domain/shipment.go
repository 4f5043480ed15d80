package domain

import (
	"context"
	"time"
)

// Carrier identifies which billing export a shipment came from.
type Carrier string

const (
	CarrierBlueDart  Carrier = "bluedart"
	CarrierDelhivery Carrier = "delhivery"
)

// ZoneUnknown is assigned when a destination prefix is not in the zone
// table or the source row carries no zone at all.
const ZoneUnknown = "unknown"

// RawRecord is one already-parsed row from a carrier billing export: a flat
// column-name → value mapping. Numeric-looking cells are pre-coerced to
// numbers by the upload service; everything else is a string.
type RawRecord map[string]any

// ReconRequest is the decoded payload of one reconciliation request: the
// raw row lists of both carriers, exactly as the upload service parsed them.
type ReconRequest struct {
	RequestID     string      `json:"request_id,omitempty"`
	BlueDartRows  []RawRecord `json:"bluedart_rows"`
	DelhiveryRows []RawRecord `json:"delhivery_rows"`
}

// RawRequest represents an unprocessed reconciliation request message from
// the source topic.
type RawRequest struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Value buckets partition shipments by declared product value at fixed
// breakpoints. The labels are part of the export contract.
const (
	BucketLow     = "0-500"
	BucketMid     = "501-1000"
	BucketHigh    = "1001-2000"
	BucketPremium = "2000+"
)

// NormalizedShipment is the canonical shipment record both carriers map
// into. Derived fields and flags are recomputable from the base fields
// alone, except FlagChargeOutlier and FlagMiscalculated which additionally
// depend on the rate distribution of the shipment's group at detection
// time. After DetectOutliers the record is immutable and shared read-only.
type NormalizedShipment struct {
	Carrier     Carrier   `json:"carrier"`
	AWB         string    `json:"awb"`
	PickupDate  time.Time `json:"pickup_date"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Pin         string    `json:"pin"`
	Service     string    `json:"service"`
	Zone        string    `json:"zone"`
	Status      string    `json:"status"`

	ActualWeightKg  float64 `json:"actual_weight_kg"`
	ChargedWeightKg float64 `json:"charged_weight_kg"`
	Pieces          int     `json:"pieces"`
	LineAmount      float64 `json:"line_amount"`
	ProductValue    float64 `json:"product_value"`

	WeightDiffKg      float64 `json:"weight_diff_kg"`
	WeightDiffPercent float64 `json:"weight_diff_percent"`
	PerKgRate         float64 `json:"per_kg_rate"`
	ValueBucket       string  `json:"value_bucket"`

	IsOverbilled            bool `json:"is_overbilled"`
	IsUnderbilled           bool `json:"is_underbilled"`
	FlagHighUplift          bool `json:"flag_high_uplift"`
	FlagRoundupJump         bool `json:"flag_roundup_jump"`
	FlagValueWeightMismatch bool `json:"flag_value_weight_mismatch"`
	FlagMissingActual       bool `json:"flag_missing_actual"`
	FlagChargeOutlier       bool `json:"flag_charge_outlier"`
	FlagMiscalculated       bool `json:"flag_miscalculated"`

	// Raw retains the source row unmodified for traceability. It is never
	// reparsed and never serialized downstream.
	Raw RawRecord `json:"-"`

	ProcessedAt time.Time `json:"processed_at"`
}

// PinKPI is one entry in the problematic-PIN ranking: the count of
// overbilled shipments touching the PIN and their summed line amount.
type PinKPI struct {
	Pin             string  `json:"pin"`
	OverbilledCount int     `json:"overbilled_count"`
	Amount          float64 `json:"amount"`
}

// KPISummary is the reduced view of a reconciled batch.
type KPISummary struct {
	TotalShipments     int     `json:"total_shipments"`
	TotalAmount        float64 `json:"total_amount"`
	OverbilledCount    int     `json:"overbilled_count"`
	OverbilledAmount   float64 `json:"overbilled_amount"`
	AvgActualWeightKg  float64 `json:"avg_actual_weight_kg"`
	AvgChargedWeightKg float64 `json:"avg_charged_weight_kg"`

	// Overbilling rates are percentages of each partition's shipment count.
	OverbillingRateByCarrier map[Carrier]float64 `json:"overbilling_rate_by_carrier"`
	OverbillingRateByZone    map[string]float64  `json:"overbilling_rate_by_zone"`

	// TopOverbilledPins holds at most ten PINs ranked by overbilled count,
	// ties kept in first-encounter order.
	TopOverbilledPins []PinKPI `json:"top_overbilled_pins"`
}

// ReconResult pairs the finalized shipment list with its summary, ready for
// publishing.
type ReconResult struct {
	RequestID string
	Shipments []NormalizedShipment
	Summary   KPISummary
}
