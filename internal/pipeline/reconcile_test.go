package pipeline_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/couchcryptid/courier-billing-recon/internal/domain"
	"github.com/couchcryptid/courier-billing-recon/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconcileRequest(t *testing.T, req domain.ReconRequest) domain.RawRequest {
	t.Helper()
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	return domain.RawRequest{Key: []byte("req-1"), Value: payload}
}

func TestBatchReconciler_BothCarriers(t *testing.T) {
	req := domain.ReconRequest{
		RequestID: "upload-42",
		BlueDartRows: []domain.RawRecord{
			{
				"AWB_NO":         "77311899810",
				"PICKUP_DATE":    "07-Jul-25",
				"DESTINATION":    "BLR/BANGALORE",
				"PIN CODE":       "560001",
				"ACTUAL_WEIGHT":  0.94,
				"CHARGED_WEIGHT": 1.0,
				"AMOUNT":         87.43,
			},
		},
		DelhiveryRows: []domain.RawRecord{
			{
				"waybill_num":    "1490110012345",
				"pickup_date":    "2025-07-07",
				"zone":           "s2",
				"charged_weight": 0.5,
				"amount":         52.6,
				"product_value":  360.0,
			},
		},
	}

	r := pipeline.NewReconciler(slog.Default(), newTestMetrics(), 0)
	result, err := r.Reconcile(context.Background(), reconcileRequest(t, req))
	require.NoError(t, err)

	assert.Equal(t, "upload-42", result.RequestID)
	require.Len(t, result.Shipments, 2)
	assert.Equal(t, domain.CarrierBlueDart, result.Shipments[0].Carrier)
	assert.Equal(t, domain.CarrierDelhivery, result.Shipments[1].Carrier)
	assert.Equal(t, 2, result.Summary.TotalShipments)
	assert.InDelta(t, 140.03, result.Summary.TotalAmount, 1e-9)
}

func TestBatchReconciler_RequestIDFallsBackToKey(t *testing.T) {
	r := pipeline.NewReconciler(slog.Default(), newTestMetrics(), 0)
	result, err := r.Reconcile(context.Background(), reconcileRequest(t, domain.ReconRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "req-1", result.RequestID)
}

func TestBatchReconciler_InvalidJSON(t *testing.T) {
	r := pipeline.NewReconciler(slog.Default(), newTestMetrics(), 0)
	_, err := r.Reconcile(context.Background(), domain.RawRequest{Value: []byte("{not json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode reconciliation request")
}

func TestBatchReconciler_RowLimit(t *testing.T) {
	rows := make([]domain.RawRecord, 11)
	for i := range rows {
		rows[i] = domain.RawRecord{"AWB_NO": "x"}
	}

	r := pipeline.NewReconciler(slog.Default(), newTestMetrics(), 10)
	_, err := r.Reconcile(context.Background(), reconcileRequest(t, domain.ReconRequest{BlueDartRows: rows}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestBatchReconciler_EmptyRequest(t *testing.T) {
	r := pipeline.NewReconciler(slog.Default(), newTestMetrics(), 0)
	result, err := r.Reconcile(context.Background(), reconcileRequest(t, domain.ReconRequest{}))
	require.NoError(t, err)

	assert.Empty(t, result.Shipments)
	assert.Zero(t, result.Summary.TotalShipments)
	assert.Empty(t, result.Summary.TopOverbilledPins)
}

func TestBatchReconciler_OutliersDetectedAcrossRequest(t *testing.T) {
	// 21 identical-rate rows plus one extreme rate in the same
	// (carrier, zone, service) group: exactly the extreme one is flagged.
	rows := make([]domain.RawRecord, 0, 22)
	for i := 0; i < 21; i++ {
		rows = append(rows, domain.RawRecord{
			"waybill_num":    "normal",
			"pickup_date":    "2025-07-07",
			"zone":           "s2",
			"product_type":   "E",
			"charged_weight": 1.0,
			"amount":         50.0,
		})
	}
	rows = append(rows, domain.RawRecord{
		"waybill_num":    "outlier",
		"pickup_date":    "2025-07-07",
		"zone":           "s2",
		"product_type":   "E",
		"charged_weight": 1.0,
		"amount":         5000.0,
	})

	r := pipeline.NewReconciler(slog.Default(), newTestMetrics(), 0)
	result, err := r.Reconcile(context.Background(), reconcileRequest(t, domain.ReconRequest{DelhiveryRows: rows}))
	require.NoError(t, err)

	var flagged []string
	for _, s := range result.Shipments {
		if s.FlagChargeOutlier {
			flagged = append(flagged, s.AWB)
		}
	}
	require.Len(t, flagged, 1)
	assert.Equal(t, "outlier", flagged[0])
}
