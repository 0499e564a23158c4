package jobs

import (
	"context"
	"time"

	"github.com/anjiri1684/stay_booking/services"
	"go.uber.org/zap"
)

const reconcileBatchSize = 200

type Reconciler interface {
	Reconcile(ctx context.Context, before time.Time, limit int) (services.ReconcileResult, error)
}

// ReconcilePayments re-drives wallet credits and ledger rows for payments
// older than grace that are still missing either.
func ReconcilePayments(r Reconciler, grace time.Duration, log *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		result, err := r.Reconcile(ctx, time.Now().Add(-grace), reconcileBatchSize)
		if err != nil {
			log.Error("reconciliation job failed", zap.Error(err))
			return
		}
		if result.Pending > 0 {
			log.Warn("payments still unreconciled", zap.Int("pending", result.Pending))
		}
	}
}
