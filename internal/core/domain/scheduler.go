package domain

import "time"

// Built-in background tasks.
const (
	// TaskIDRetentionCleanup purges expired cache rows, places and articles.
	TaskIDRetentionCleanup = "retention-cleanup"

	// TaskIDNewsRefresh pre-fetches news for every tracked location.
	TaskIDNewsRefresh = "news-refresh"
)

// BuiltinTasks lists the task IDs the scheduler knows how to run, in the
// order they are registered.
func BuiltinTasks() []string {
	return []string{TaskIDRetentionCleanup, TaskIDNewsRefresh}
}

// TaskDisplayName returns the human-readable name of a built-in task, or
// the ID itself for anything else.
func TaskDisplayName(taskID string) string {
	switch taskID {
	case TaskIDRetentionCleanup:
		return "Retention Cleanup"
	case TaskIDNewsRefresh:
		return "News Refresh"
	default:
		return taskID
	}
}

// ScheduledTask is the persisted schedule of one background task. It
// survives restarts so an overdue cleanup runs at startup instead of
// waiting a full interval.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time

	// LastError is empty after a successful run.
	LastError string
}

// NewScheduledTask returns a task that is due at now.
func NewScheduledTask(taskID string, cfg TaskConfig, now time.Time) *ScheduledTask {
	return &ScheduledTask{
		ID:       taskID,
		Name:     TaskDisplayName(taskID),
		Interval: cfg.Interval,
		Enabled:  cfg.Enabled,
		NextRun:  now,
	}
}

// Reconfigure applies cfg to a persisted task. A changed interval moves the
// next run to one new interval from now.
func (t *ScheduledTask) Reconfigure(cfg TaskConfig, now time.Time) {
	if t.Interval != cfg.Interval {
		t.Interval = cfg.Interval
		t.NextRun = now.Add(cfg.Interval)
	}
	t.Enabled = cfg.Enabled
	if t.Name == "" {
		t.Name = TaskDisplayName(t.ID)
	}
}

// Overdue reports whether the task should run immediately.
func (t *ScheduledTask) Overdue(now time.Time) bool {
	return t.NextRun.IsZero() || !t.NextRun.After(now)
}

// Record folds a finished run into the schedule.
func (t *ScheduledTask) Record(result *TaskResult) {
	t.LastRun = result.StartedAt
	t.NextRun = result.EndedAt.Add(t.Interval)
	if result.Success {
		t.LastError = ""
		t.LastSuccess = result.EndedAt
		return
	}
	t.LastError = result.Error
}

// TaskResult is the outcome of one task run.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// Items is the number of rows purged by retention cleanup or the number
	// of articles stored by news refresh.
	Items int
}

// Duration is how long the run took.
func (r TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// TaskStatus is a task's schedule together with its most recent runs,
// most recent first.
type TaskStatus struct {
	Task   ScheduledTask
	Recent []TaskResult
}

// SchedulerConfig controls the background scheduler.
type SchedulerConfig struct {
	// Enabled is the master switch.
	Enabled bool

	TaskConfigs map[string]TaskConfig
}

// TaskConfig is the schedule of a single task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Runnable reports whether the task should be scheduled at all.
func (c TaskConfig) Runnable() bool {
	return c.Enabled && c.Interval > 0
}

// GetTaskConfig returns the configuration for a task, or a zero
// TaskConfig if it is not configured.
func (c SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig cleans up hourly and refreshes news every half hour.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDRetentionCleanup: {Enabled: true, Interval: time.Hour},
			TaskIDNewsRefresh:      {Enabled: true, Interval: 30 * time.Minute},
		},
	}
}
