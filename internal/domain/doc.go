// Package domain models courier billing-export data and the reconciliation
// rules applied to it.
//
// # Data Sources
//
// Billing exports arrive from two carriers with incompatible layouts. The
// upstream upload service parses the spreadsheet files, coerces
// numeric-looking cells to numbers, verifies the minimum required columns,
// and hands this package two flat row lists per reconciliation request.
//
// BlueDart exports use uppercase column names with inconsistent aliasing
// across export vintages ("AWB_NO" vs "AWB", "PIN CODE" vs "PIN_CODE").
// Weights are in kilograms. Destinations carry a metro prefix before a
// separator, e.g. "BLR/BANGALORE", which drives zone assignment. The export
// has no status column.
//
// Delhivery exports use lowercase snake_case columns and carry no actual
// weight at all. Actual weight is reconstructed from the declared product
// value at a fixed 1.25 g per currency unit. Charged weight is exported in
// grams or kilograms depending on the vintage; [DetectWeightUnit] sniffs the
// unit once per batch, since a single export never mixes units.
//
// # Date Formats
//
// Pickup dates appear in three known shapes, tried in order:
//
//	2025-07-07         ISO date
//	07-07-2025 10:30   day-month-year with a time portion (time discarded)
//	07-Jul-25          day, 3-letter English month, 2-digit year (20xx)
//
// Anything else falls through to generic ISO parsing and finally to the
// current clock time. A row never fails on its date; fallbacks are counted
// and logged per batch.
//
// # Reconciliation Rules
//
// Both carriers converge on [NormalizedShipment]. Derived quantities and
// rule flags are computed by a single shared function so the two carriers
// stay comparable downstream. Overbilling tolerance is 0.1 kg either way.
//
// Rate outliers are detected per (carrier, zone, service) group across the
// full combined batch. Groups need at least five members with a positive
// per-kg rate; the p5/p95 bounds are taken at floor(n*0.05) and
// floor(n*0.95) of the sorted rates with no interpolation. That exact index
// rule decides ties at small group sizes and must not change.
//
// # Zones
//
// The destination-prefix zone table covers a handful of metro codes and
// maps everything else to "unknown". The carriers' real zone rules are not
// recoverable from the exports; the table is a deliberate best-effort
// approximation, not a postal-zone database.
package domain
