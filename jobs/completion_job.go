package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type StayCompleter interface {
	CompleteFinishedStays(ctx context.Context) (int64, error)
}

// CompleteFinishedStays moves paid stays whose check-out has passed to completed.
func CompleteFinishedStays(completer StayCompleter, log *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		n, err := completer.CompleteFinishedStays(ctx)
		if err != nil {
			log.Error("completion job failed", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("marked stays as completed", zap.Int64("count", n))
		}
	}
}
