package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Job struct {
	Name     string
	Schedule string
	Run      func()
}

// NewScheduler registers the jobs on a cron runner. Overlapping runs of the
// same job are skipped.
func NewScheduler(log *zap.Logger, jobs ...Job) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	for _, j := range jobs {
		if _, err := c.AddFunc(j.Schedule, j.Run); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", j.Name, err)
		}
		log.Info("job scheduled", zap.String("job", j.Name), zap.String("schedule", j.Schedule))
	}
	return c, nil
}
