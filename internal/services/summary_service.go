package services

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/pulse-be/internal/models"
	"github.com/isdelr/pulse-be/internal/store"
)

// SummaryServiceProvider defines the interface for the daily summary.
type SummaryServiceProvider interface {
	ComputeDailySummary(ctx context.Context) (models.DailySummary, error)
}

// SummaryService aggregates tasks across every user. It never writes.
type SummaryService struct {
	store store.Store
	now   func() time.Time
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(s store.Store) *SummaryService {
	return &SummaryService{store: s, now: time.Now}
}

// ComputeDailySummary reads every task and aggregates it against today's UTC date.
func (s *SummaryService) ComputeDailySummary(ctx context.Context) (models.DailySummary, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return models.DailySummary{}, fmt.Errorf("listing tasks: %w", err)
	}
	return Summarize(tasks, s.now().UTC().Format(models.DateLayout)), nil
}

// Summarize builds the summary of tasks as of today (YYYY-MM-DD).
//
// Only pending tasks are considered for the overdue and due-today groups;
// an in-progress task past its deadline is in neither.
func Summarize(tasks []models.Task, today string) models.DailySummary {
	summary := models.DailySummary{
		SummaryDate:               today,
		TotalTasks:                len(tasks),
		OverdueTasksByPriority:    map[models.Priority][]models.SummaryTask{},
		TasksDueTodayByPriority:   map[models.Priority][]models.SummaryTask{},
		TasksPriorityDistribution: make(map[models.Priority]int, len(models.Priorities)),
		Tasks:                     make([]models.SummaryTaskRow, 0, len(tasks)),
	}
	for _, p := range models.Priorities {
		summary.TasksPriorityDistribution[p] = 0
	}

	for _, t := range tasks {
		priority := t.Priority.Resolve()

		switch t.Status {
		case models.StatusPending:
			summary.Pending++
		case models.StatusInProgress:
			summary.InProgress++
		case models.StatusCompleted:
			summary.Completed++
		}
		summary.TasksPriorityDistribution[priority]++

		if t.Status == models.StatusPending && t.Deadline != "" {
			short := models.SummaryTask{ID: t.ID, Title: t.Title, Deadline: t.Deadline, Priority: priority}
			// Deadlines are YYYY-MM-DD, so string order is date order.
			switch {
			case t.Deadline < today:
				summary.OverdueTasksByPriority[priority] = append(summary.OverdueTasksByPriority[priority], short)
			case t.Deadline == today:
				summary.TasksDueTodayByPriority[priority] = append(summary.TasksDueTodayByPriority[priority], short)
			}
		}

		summary.Tasks = append(summary.Tasks, models.SummaryTaskRow{
			ID:       t.ID,
			UserID:   t.UserID,
			Title:    t.Title,
			Status:   t.Status,
			Priority: priority,
		})
	}

	summary.TasksStatusDistribution = models.StatusDistribution{
		Pending:    summary.Pending,
		InProgress: summary.InProgress,
		Completed:  summary.Completed,
	}
	return summary
}
