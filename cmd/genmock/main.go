// Command genmock generates mock carrier billing fixtures for the test
// suites. It runs synthetic BlueDart and Delhivery export rows through the
// actual domain package so the fixtures match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -request-out data/mock/recon_request.json \
//	  -shipments-out data/mock/reconciled_shipments.json \
//	  -csv-out data/mock/reconciled_shipments.csv
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/courier-billing-recon/internal/domain"
	"github.com/jonboulle/clockwork"
)

const fixtureSeed = 20250707

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	requestOut := flag.String("request-out", "", "output path for the raw reconciliation request JSON")
	shipmentsOut := flag.String("shipments-out", "", "output path for the normalized shipments JSON")
	csvOut := flag.String("csv-out", "", "output path for the canonical CSV export")
	flag.Parse()

	if *requestOut == "" || *shipmentsOut == "" || *csvOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -request-out, -shipments-out, -csv-out")
	}

	// Fixed clock for reproducible ProcessedAt timestamps and date fallbacks.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.July, 8, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	req := buildRequest()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	shipments := domain.NormalizeBlueDart(req.BlueDartRows, logger)
	shipments = append(shipments, domain.NormalizeDelhivery(req.DelhiveryRows, logger)...)
	shipments = domain.DetectOutliers(shipments)
	summary := domain.CalculateKPIs(shipments)

	if err := writeJSON(*requestOut, req); err != nil {
		return fmt.Errorf("writing request fixture: %w", err)
	}
	log.Printf("wrote request fixture: %s (%d bluedart, %d delhivery rows)",
		*requestOut, len(req.BlueDartRows), len(req.DelhiveryRows))

	if err := writeJSON(*shipmentsOut, shipments); err != nil {
		return fmt.Errorf("writing shipments fixture: %w", err)
	}
	log.Printf("wrote shipments fixture: %s", *shipmentsOut)

	if err := writeCSV(*csvOut, shipments); err != nil {
		return fmt.Errorf("writing csv fixture: %w", err)
	}
	log.Printf("wrote csv fixture: %s", *csvOut)

	printStats(shipments, summary)
	return nil
}

// buildRequest produces a deterministic batch of raw export rows covering
// both carriers, every zone in the destination table, and enough rows per
// (carrier, zone, service) group for outlier detection to engage.
func buildRequest() domain.ReconRequest {
	rng := rand.New(rand.NewSource(fixtureSeed))

	destinations := []struct {
		city string
		pin  string
	}{
		{"DEL/DELHI", "110001"},
		{"BOM/MUMBAI", "400001"},
		{"BLR/BANGALORE", "560001"},
		{"CCU/KOLKATA", "700001"},
		{"IXL/LEH", "194101"},
	}

	req := domain.ReconRequest{RequestID: "mock-batch-001"}

	for i := 0; i < 60; i++ {
		dest := destinations[i%len(destinations)]
		actual := 0.2 + rng.Float64()*2.0
		charged := actual + rng.Float64()*0.3
		if i%7 == 0 {
			// Inject roundup jumps: sub-kilo parcels billed well past 1.5 kg.
			actual = 0.4 + rng.Float64()*0.4
			charged = 1.6 + rng.Float64()*0.5
		}
		req.BlueDartRows = append(req.BlueDartRows, domain.RawRecord{
			"AWB_NO":         fmt.Sprintf("773%08d", 11899810+i),
			"PICKUP_DATE":    "07-Jul-25",
			"ORIGIN":         "GGN",
			"DESTINATION":    dest.city,
			"PIN CODE":       dest.pin,
			"PRODUCT":        "A",
			"STATUS":         "DELIVERED",
			"PIECES":         1,
			"ACTUAL_WEIGHT":  round3(actual),
			"CHARGED_WEIGHT": round3(charged),
			"AMOUNT":         round2(40 + charged*55),
			"PRODUCT_VALUE":  round2(200 + rng.Float64()*2500),
		})
	}

	zones := []string{"s2", "n1", "w1", "e1"}
	for i := 0; i < 60; i++ {
		zone := zones[i%len(zones)]
		chargedGrams := 200 + rng.Float64()*1600
		amount := 30 + chargedGrams*0.09
		if i == 17 {
			// One extreme per-kg rate so the fixture carries a charge outlier.
			amount = chargedGrams * 2.5
		}
		req.DelhiveryRows = append(req.DelhiveryRows, domain.RawRecord{
			"waybill_num":     fmt.Sprintf("149011%07d", 100+i),
			"pickup_date":     "2025-07-07",
			"origin_center":   "Gurgaon_Bilaspur_GW",
			"destination":     "Bangalore",
			"destination_pin": "560068",
			"product_type":    "E",
			"zone":            zone,
			"status":          "Delivered",
			"pieces":          1,
			"charged_weight":  round3(chargedGrams),
			"amount":          round2(amount),
			"product_value":   round2(150 + rng.Float64()*1800),
		})
	}

	return req
}

func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }
func round3(v float64) float64 { return float64(int(v*1000+0.5)) / 1000 }

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func writeCSV(path string, shipments []domain.NormalizedShipment) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return domain.WriteCSV(f, shipments)
}

func printStats(shipments []domain.NormalizedShipment, summary domain.KPISummary) {
	var overbilled, roundup, outliers, missingActual int
	zoneCounts := map[string]int{}
	for i := range shipments {
		s := &shipments[i]
		zoneCounts[s.Zone]++
		if s.IsOverbilled {
			overbilled++
		}
		if s.FlagRoundupJump {
			roundup++
		}
		if s.FlagChargeOutlier {
			outliers++
		}
		if s.FlagMissingActual {
			missingActual++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(shipments))
	fmt.Printf("Total amount: %.2f\n", summary.TotalAmount)
	fmt.Printf("Overbilled: %d (amount %.2f)\n", overbilled, summary.OverbilledAmount)
	fmt.Printf("Roundup jumps: %d\n", roundup)
	fmt.Printf("Charge outliers: %d\n", outliers)
	fmt.Printf("Missing actual weight: %d\n", missingActual)
	fmt.Printf("Avg weights: actual=%.3f charged=%.3f\n",
		summary.AvgActualWeightKg, summary.AvgChargedWeightKg)

	fmt.Print("Zones: ")
	for zone, count := range zoneCounts {
		fmt.Printf("%s=%d ", zone, count)
	}
	fmt.Println()

	fmt.Println("Top overbilled PINs:")
	for _, pin := range summary.TopOverbilledPins {
		fmt.Printf("  %s: count=%d amount=%.2f\n", pin.Pin, pin.OverbilledCount, pin.Amount)
	}
}
