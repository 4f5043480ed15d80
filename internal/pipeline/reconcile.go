package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/courier-billing-recon/internal/domain"
	"github.com/couchcryptid/courier-billing-recon/internal/observability"
)

// BatchReconciler implements Reconciler on the domain package: it decodes a
// request, normalizes both carriers, detects rate outliers over the
// combined batch, and aggregates the KPI summary.
type BatchReconciler struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	maxRows int
}

// NewReconciler creates a BatchReconciler. maxRows caps the combined row
// count of one request; zero disables the cap.
func NewReconciler(logger *slog.Logger, metrics *observability.Metrics, maxRows int) *BatchReconciler {
	return &BatchReconciler{
		logger:  logger,
		metrics: metrics,
		maxRows: maxRows,
	}
}

func (r *BatchReconciler) Reconcile(_ context.Context, raw domain.RawRequest) (domain.ReconResult, error) {
	var req domain.ReconRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return domain.ReconResult{}, fmt.Errorf("decode reconciliation request: %w", err)
	}

	rows := len(req.BlueDartRows) + len(req.DelhiveryRows)
	if r.maxRows > 0 && rows > r.maxRows {
		return domain.ReconResult{}, fmt.Errorf("request of %d rows exceeds limit of %d", rows, r.maxRows)
	}
	r.metrics.RequestRows.Observe(float64(rows))

	requestID := req.RequestID
	if requestID == "" {
		requestID = string(raw.Key)
	}

	start := time.Now()

	shipments := domain.NormalizeBlueDart(req.BlueDartRows, r.logger)
	shipments = append(shipments, domain.NormalizeDelhivery(req.DelhiveryRows, r.logger)...)
	shipments = domain.DetectOutliers(shipments)
	summary := domain.CalculateKPIs(shipments)

	r.metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	r.metrics.ShipmentsNormalized.WithLabelValues(string(domain.CarrierBlueDart)).Add(float64(len(req.BlueDartRows)))
	r.metrics.ShipmentsNormalized.WithLabelValues(string(domain.CarrierDelhivery)).Add(float64(len(req.DelhiveryRows)))
	r.metrics.OutliersFlagged.Add(float64(countOutliers(shipments)))

	r.logger.Info("request reconciled",
		"request_id", requestID,
		"shipments", len(shipments),
		"overbilled", summary.OverbilledCount,
		"outliers", countOutliers(shipments),
	)

	return domain.ReconResult{
		RequestID: requestID,
		Shipments: shipments,
		Summary:   summary,
	}, nil
}

func countOutliers(shipments []domain.NormalizedShipment) int {
	var n int
	for i := range shipments {
		if shipments[i].FlagChargeOutlier {
			n++
		}
	}
	return n
}
