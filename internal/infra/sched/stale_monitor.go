package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/infra/metrics"
)

// StaleLister is the part of the ingestion use case the monitor needs.
type StaleLister interface {
	ListStale(ctx context.Context, olderThan time.Duration) ([]*model.Job, error)
}

// StaleMonitor periodically counts jobs stuck in Processing. Queued files do
// not survive a restart, so their jobs never finish on their own; the monitor
// exports them as a gauge and logs their ids.
type StaleMonitor struct {
	interval time.Duration
	jobs     StaleLister
	log      *zerolog.Logger
}

func NewStaleMonitor(interval time.Duration, jobs StaleLister, logger *zerolog.Logger) *StaleMonitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	monLog := logger.With().Str("component", "StaleMonitor").Logger()
	return &StaleMonitor{
		interval: interval,
		jobs:     jobs,
		log:      &monLog,
	}
}

// Run blocks until ctx is cancelled. The first check happens one interval
// after start.
func (m *StaleMonitor) Run(ctx context.Context) error {
	m.log.Info().Dur("interval", m.interval).Msg("Starting stale job monitor")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("Stopping stale job monitor")
			return ctx.Err()
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs one pass and returns the number of stale jobs, or -1 when the
// store could not be queried.
func (m *StaleMonitor) Check(ctx context.Context) int {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	jobs, err := m.jobs.ListStale(runCtx, 0)
	if err != nil {
		m.log.Error().Err(err).Msg("stale job check failed")
		return -1
	}
	metrics.SetStaleJobs(len(jobs))
	if len(jobs) == 0 {
		return 0
	}
	ids := make([]int64, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	m.log.Warn().Int("count", len(jobs)).Ints64("job_ids", ids).Msg("jobs stuck in Processing")
	return len(jobs)
}
