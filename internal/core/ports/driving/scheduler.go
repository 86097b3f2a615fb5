package driving

import (
	"context"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// Scheduler manages background tasks like retention cleanup and news refresh.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Returns once the task loop is running.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// RunTask runs one task immediately and records the outcome.
	RunTask(ctx context.Context, taskID string) *domain.TaskResult

	// Status returns every persisted task with up to recent of its latest
	// results.
	Status(ctx context.Context, recent int) ([]domain.TaskStatus, error)
}
