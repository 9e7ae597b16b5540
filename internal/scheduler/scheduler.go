package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/isdelr/pulse-be/internal/models"
	"github.com/isdelr/pulse-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler computes the daily summary on a cron schedule.
type Scheduler struct {
	summarySvc services.SummaryServiceProvider
	schedule   cron.Schedule
	outputDir  string
	now        func() time.Time
	done       chan struct{}
	stopped    chan struct{}
}

// NewScheduler creates a scheduler for a standard five-field cron expression.
// When outputDir is non-empty each run also writes summary-<date>.json there.
func NewScheduler(summarySvc services.SummaryServiceProvider, expr, outputDir string) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return &Scheduler{
		summarySvc: summarySvc,
		schedule:   schedule,
		outputDir:  outputDir,
		now:        time.Now,
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}, nil
}

// Run blocks, executing the summary at every scheduled time until Stop is called.
func (s *Scheduler) Run() {
	defer close(s.stopped)

	log.Info().Msg("Starting daily summary scheduler...")
	for {
		now := s.now()
		next := s.schedule.Next(now)
		log.Debug().Time("next_run", next).Msg("Scheduler: next summary run")

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping daily summary scheduler.")
			return
		case <-timer.C:
			if _, err := s.RunOnce(context.Background()); err != nil {
				log.Error().Err(err).Msg("Scheduler: daily summary failed")
			}
		}
	}
}

// Stop halts the scheduler and waits for Run to return.
func (s *Scheduler) Stop() {
	close(s.done)
	<-s.stopped
}

// RunOnce computes the summary now, logs it, and writes it out if configured.
func (s *Scheduler) RunOnce(ctx context.Context) (models.DailySummary, error) {
	summary, err := s.summarySvc.ComputeDailySummary(ctx)
	if err != nil {
		return models.DailySummary{}, err
	}

	log.Info().
		Str("summary_date", summary.SummaryDate).
		Int("total", summary.TotalTasks).
		Int("pending", summary.Pending).
		Int("in_progress", summary.InProgress).
		Int("completed", summary.Completed).
		Int("overdue", countGrouped(summary.OverdueTasksByPriority)).
		Int("due_today", countGrouped(summary.TasksDueTodayByPriority)).
		Msg("Daily summary computed")

	for _, p := range models.Priorities {
		if n := len(summary.OverdueTasksByPriority[p]); n > 0 {
			log.Warn().Str("priority", p.String()).Int("count", n).Msg("Overdue tasks")
		}
	}

	if s.outputDir != "" {
		path, err := s.write(summary)
		if err != nil {
			return summary, err
		}
		log.Info().Str("path", path).Msg("Daily summary written")
	}
	return summary, nil
}

func (s *Scheduler) write(summary models.DailySummary) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating summary directory: %w", err)
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}
	path := filepath.Join(s.outputDir, "summary-"+summary.SummaryDate+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}
	return path, nil
}

func countGrouped(groups map[models.Priority][]models.SummaryTask) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}
