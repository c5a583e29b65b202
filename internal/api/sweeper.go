package api

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically deletes finished jobs and their staged output once
// they are older than the retention period.
type Sweeper struct {
	cron      *cron.Cron
	jobs      *JobStore
	retention time.Duration
	schedule  string
	logger    *slog.Logger
	now       func() time.Time
}

// NewSweeper creates a sweeper running on the standard five-field schedule.
func NewSweeper(jobs *JobStore, retention time.Duration, schedule string, logger *slog.Logger) *Sweeper {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))
	return &Sweeper{
		cron:      c,
		jobs:      jobs,
		retention: retention,
		schedule:  schedule,
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules the sweep.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Sweep() }); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("output sweeper started",
		slog.String("schedule", s.schedule),
		slog.Duration("retention", s.retention),
	)
	return nil
}

// Stop halts the schedule and waits for a running sweep.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep removes expired jobs now and returns how many were removed.
func (s *Sweeper) Sweep() int {
	removed := 0
	for _, job := range s.jobs.Finished(s.now().Add(-s.retention)) {
		if job.outputPath != "" {
			if err := os.Remove(job.outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				s.logger.Warn("failed to remove staged output",
					slog.String("job_id", job.ID),
					slog.Any("error", err),
				)
				continue
			}
		}
		s.jobs.Delete(job.ID)
		removed++
	}
	if removed > 0 {
		s.logger.Info("expired outputs removed", slog.Int("jobs", removed))
	}
	return removed
}
