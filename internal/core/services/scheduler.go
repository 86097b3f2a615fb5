package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/core/ports/driving"
	"github.com/custodia-labs/geocache/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is the number of results kept per task.
const historyKeep = 100

// errUnknownTask is returned when a task ID has no runner.
var errUnknownTask = errors.New("unknown task")

// Scheduler runs the built-in background tasks on a gocron scheduler and
// persists their state so schedules survive restarts.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	cleanup driving.CleanupService
	news    driving.NewsService
	now     func() time.Time

	mu      sync.Mutex
	cron    gocron.Scheduler
	running bool
}

// NewScheduler creates a scheduler. cleanup or news may be nil to leave
// the corresponding task without work.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	cleanup driving.CleanupService,
	news driving.NewsService,
	opts ...Option,
) *Scheduler {
	o := buildOptions(opts)
	return &Scheduler{
		config:  config,
		store:   store,
		cleanup: cleanup,
		news:    news,
		now:     o.now,
	}
}

// Start registers enabled tasks and starts running them. It returns once
// the jobs are scheduled. Tasks overdue from a previous run start at once.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if !s.config.Enabled {
		logger.Info("scheduler: disabled")
		return nil
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	for _, taskID := range domain.BuiltinTasks() {
		cfg := s.config.GetTaskConfig(taskID)
		if !cfg.Runnable() {
			continue
		}

		task, err := s.ensureTask(ctx, taskID, cfg)
		if err != nil {
			logger.Warn("scheduler: failed to initialise task %s: %v", taskID, err)
			task = domain.NewScheduledTask(taskID, cfg, s.now())
		}

		if _, err := cron.NewJob(
			gocron.DurationJob(cfg.Interval),
			gocron.NewTask(func() { s.RunTask(ctx, taskID) }),
			gocron.WithName(taskID),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(s.startAt(task)),
		); err != nil {
			_ = cron.Shutdown()
			return fmt.Errorf("schedule %s: %w", taskID, err)
		}
		logger.Debug("scheduler: %s every %s", taskID, cfg.Interval)
	}

	cron.Start()
	s.cron = cron
	s.running = true
	logger.Info("scheduler: started with %d jobs", len(cron.Jobs()))
	return nil
}

// Stop shuts down the scheduler and waits for running tasks to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

// startAt resumes the persisted schedule of a task.
func (s *Scheduler) startAt(task *domain.ScheduledTask) gocron.StartAtOption {
	if task.Overdue(s.now()) {
		return gocron.WithStartImmediately()
	}
	return gocron.WithStartDateTime(task.NextRun)
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id string, cfg domain.TaskConfig) (*domain.ScheduledTask, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if task == nil {
		task = domain.NewScheduledTask(id, cfg, s.now())
	} else {
		task.Reconfigure(cfg, s.now())
	}

	return task, s.store.SaveTask(ctx, task)
}

// RunTask executes one task now and records the outcome.
func (s *Scheduler) RunTask(ctx context.Context, taskID string) *domain.TaskResult {
	result := &domain.TaskResult{
		TaskID:    taskID,
		StartedAt: s.now(),
	}

	var err error
	switch taskID {
	case domain.TaskIDRetentionCleanup:
		result.Items, err = s.runCleanup(ctx)
	case domain.TaskIDNewsRefresh:
		result.Items, err = s.runNewsRefresh(ctx)
	default:
		err = fmt.Errorf("%w: %s", errUnknownTask, taskID)
	}

	result.EndedAt = s.now()
	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
		logger.Warn("scheduler: task %s failed: %v", taskID, err)
	}

	s.record(ctx, result)
	return result
}

func (s *Scheduler) record(ctx context.Context, result *domain.TaskResult) {
	task, err := s.store.GetTask(ctx, result.TaskID)
	if err != nil {
		logger.Warn("scheduler: failed to load task %s: %v", result.TaskID, err)
	}
	if task == nil {
		task = domain.NewScheduledTask(result.TaskID, s.config.GetTaskConfig(result.TaskID), result.StartedAt)
	}
	task.Record(result)

	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, err)
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, err)
	}
	if err := s.store.PruneHistory(ctx, historyKeep); err != nil {
		logger.Warn("scheduler: failed to prune history: %v", err)
	}
}

// Status returns every persisted task, ordered by ID, with up to recent of
// its latest results.
func (s *Scheduler) Status(ctx context.Context, recent int) ([]domain.TaskStatus, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	statuses := make([]domain.TaskStatus, 0, len(tasks))
	for _, task := range tasks {
		status := domain.TaskStatus{Task: task}
		if recent > 0 {
			status.Recent, err = s.store.GetTaskHistory(ctx, task.ID, recent)
			if err != nil {
				return nil, fmt.Errorf("history of %s: %w", task.ID, err)
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *Scheduler) runCleanup(ctx context.Context) (int, error) {
	if s.cleanup == nil {
		return 0, nil
	}
	return s.cleanup.Run(ctx)
}

func (s *Scheduler) runNewsRefresh(ctx context.Context) (int, error) {
	if s.news == nil {
		return 0, nil
	}
	report, err := s.news.RefreshAll(ctx)
	if err != nil {
		return 0, err
	}
	return report.StoredArticles, nil
}
