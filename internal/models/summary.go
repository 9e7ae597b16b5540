package models

// SummaryTask is the short form of a task listed in overdue and due-today groups.
type SummaryTask struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Deadline string   `json:"deadline"`
	Priority Priority `json:"priority"`
}

// SummaryTaskRow is the flattened per-task projection of a summary.
type SummaryTaskRow struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId"`
	Title    string   `json:"title"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
}

// StatusDistribution counts tasks per status.
type StatusDistribution struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in-progress"`
	Completed  int `json:"completed"`
}

// DailySummary aggregates every task in the store as of SummaryDate.
type DailySummary struct {
	SummaryDate               string                     `json:"summaryDate"`
	TotalTasks                int                        `json:"totalTasks"`
	Completed                 int                        `json:"completed"`
	Pending                   int                        `json:"pending"`
	InProgress                int                        `json:"inProgress"`
	OverdueTasksByPriority    map[Priority][]SummaryTask `json:"overdueTasksByPriority"`
	TasksDueTodayByPriority   map[Priority][]SummaryTask `json:"tasksDueTodayByPriority"`
	TasksStatusDistribution   StatusDistribution         `json:"tasksStatusDistribution"`
	TasksPriorityDistribution map[Priority]int           `json:"tasksPriorityDistribution"`
	Tasks                     []SummaryTaskRow           `json:"tasks"`
}
