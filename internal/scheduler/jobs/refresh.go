package jobs

import (
	"context"
	"errors"

	"github.com/wonny/vantage/backend/internal/brain"
	"github.com/wonny/vantage/backend/pkg/logger"
)

// DefaultRefreshSchedule runs once a day at 06:30 (seconds field first)
const DefaultRefreshSchedule = "0 30 6 * * *"

// Runner executes one ranking run
type Runner interface {
	Run(ctx context.Context) (*brain.Snapshot, error)
}

// RefreshJob re-runs the ranking pipeline so results never go stale
type RefreshJob struct {
	runner   Runner
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates a new refresh job; empty schedule uses the default
func NewRefreshJob(runner Runner, schedule string, log *logger.Logger) *RefreshJob {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	return &RefreshJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "ranking_refresh"
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes a ranking run. A run already in progress (manual refresh)
// counts as success.
func (j *RefreshJob) Run(ctx context.Context) error {
	snap, err := j.runner.Run(ctx)
	if errors.Is(err, brain.ErrRunInProgress) {
		j.logger.Info("Ranking run already in progress, skipping scheduled refresh")
		return nil
	}
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": snap.RunID,
		"ranked": snap.Result.RankedCount(),
	}).Info("Scheduled ranking refresh completed")
	return nil
}
