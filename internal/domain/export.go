package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// exportHeader is the fixed export layout. Column order, decimal precision,
// and the Y/N flag rendering are part of the external contract consumed by
// the download surface; never reorder or reformat.
var exportHeader = []string{
	"pickup_date",
	"carrier",
	"awb",
	"origin",
	"destination",
	"pin",
	"pieces",
	"actual_weight_kg",
	"charged_weight_kg",
	"weight_diff_kg",
	"weight_diff_percent",
	"line_amount",
	"per_kg_rate",
	"product_value",
	"service",
	"zone",
	"status",
	"flag_high_uplift",
	"flag_roundup_jump",
	"flag_value_weight_mismatch",
	"flag_charge_outlier",
	"flag_missing_actual",
}

// WriteCSV renders shipments in the fixed export layout.
func WriteCSV(w io.Writer, shipments []NormalizedShipment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range shipments {
		if err := cw.Write(exportRow(&shipments[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func exportRow(s *NormalizedShipment) []string {
	return []string{
		s.PickupDate.Format("2006-01-02"),
		string(s.Carrier),
		s.AWB,
		s.Origin,
		s.Destination,
		s.Pin,
		strconv.Itoa(s.Pieces),
		strconv.FormatFloat(s.ActualWeightKg, 'f', 3, 64),
		strconv.FormatFloat(s.ChargedWeightKg, 'f', 3, 64),
		strconv.FormatFloat(s.WeightDiffKg, 'f', 3, 64),
		strconv.FormatFloat(s.WeightDiffPercent, 'f', 2, 64),
		strconv.FormatFloat(s.LineAmount, 'f', 2, 64),
		strconv.FormatFloat(s.PerKgRate, 'f', 2, 64),
		strconv.FormatFloat(s.ProductValue, 'f', 2, 64),
		s.Service,
		s.Zone,
		s.Status,
		flagYN(s.FlagHighUplift),
		flagYN(s.FlagRoundupJump),
		flagYN(s.FlagValueWeightMismatch),
		flagYN(s.FlagChargeOutlier),
		flagYN(s.FlagMissingActual),
	}
}

func flagYN(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// ReadCSV parses the fixed export layout back into shipments. Only the
// exported columns are populated; derived fields that do not appear in the
// layout (value bucket, the overbilling pair, miscalculation) stay zero.
// Together with WriteCSV it proves the layout round-trips losslessly.
func ReadCSV(r io.Reader) ([]NormalizedShipment, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(exportHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, name := range exportHeader {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected csv column %d: got %q, want %q", i, header[i], name)
		}
	}

	var shipments []NormalizedShipment
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		s, err := shipmentFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("parse csv line %d: %w", line, err)
		}
		shipments = append(shipments, s)
	}
	return shipments, nil
}

func shipmentFromRow(row []string) (NormalizedShipment, error) {
	pickup, err := time.Parse("2006-01-02", row[0])
	if err != nil {
		return NormalizedShipment{}, fmt.Errorf("pickup_date: %w", err)
	}
	pieces, err := strconv.Atoi(row[6])
	if err != nil {
		return NormalizedShipment{}, fmt.Errorf("pieces: %w", err)
	}

	floats := make([]float64, 7)
	for i, col := range row[7:14] {
		f, err := strconv.ParseFloat(col, 64)
		if err != nil {
			return NormalizedShipment{}, fmt.Errorf("column %q: %w", exportHeader[7+i], err)
		}
		floats[i] = f
	}

	return NormalizedShipment{
		PickupDate:              pickup,
		Carrier:                 Carrier(row[1]),
		AWB:                     row[2],
		Origin:                  row[3],
		Destination:             row[4],
		Pin:                     row[5],
		Pieces:                  pieces,
		ActualWeightKg:          floats[0],
		ChargedWeightKg:         floats[1],
		WeightDiffKg:            floats[2],
		WeightDiffPercent:       floats[3],
		LineAmount:              floats[4],
		PerKgRate:               floats[5],
		ProductValue:            floats[6],
		Service:                 row[14],
		Zone:                    row[15],
		Status:                  row[16],
		FlagHighUplift:          row[17] == "Y",
		FlagRoundupJump:         row[18] == "Y",
		FlagValueWeightMismatch: row[19] == "Y",
		FlagChargeOutlier:       row[20] == "Y",
		FlagMissingActual:       row[21] == "Y",
	}, nil
}
