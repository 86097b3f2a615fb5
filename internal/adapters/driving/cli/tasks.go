package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

var (
	tasksRecent int
	tasksJSON   bool
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and run background tasks",
	Long: `Shows the persisted schedule of the background tasks and their latest
runs. Tasks appear once the scheduler or "tasks run" has touched them.`,
	Args: cobra.NoArgs,
	RunE: runTasksList,
}

var tasksRunCmd = &cobra.Command{
	Use:       "run <task-id>",
	Short:     "Run a background task now",
	Long:      "Runs a background task immediately and records the result.\n\nTasks: retention-cleanup, news-refresh",
	Args:      cobra.ExactArgs(1),
	ValidArgs: domain.BuiltinTasks(),
	RunE:      runTasksRun,
}

func init() {
	tasksCmd.Flags().IntVarP(&tasksRecent, "recent", "n", 3, "number of recent runs to show per task")
	tasksCmd.Flags().BoolVar(&tasksJSON, "json", false, "output as JSON")

	tasksCmd.AddCommand(tasksRunCmd)
	rootCmd.AddCommand(tasksCmd)
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	statuses, err := scheduler.Status(cmd.Context(), tasksRecent)
	if err != nil {
		return fmt.Errorf("task status failed: %w", err)
	}

	if tasksJSON {
		return printJSON(cmd, statuses)
	}

	if len(statuses) == 0 {
		cmd.Println("No tasks have run yet.")
		return nil
	}

	now := time.Now()
	for i := range statuses {
		task := &statuses[i].Task
		state := "enabled"
		if !task.Enabled {
			state = "disabled"
		}
		cmd.Printf("%s (%s, every %s, %s)\n", task.Name, task.ID, task.Interval, state)
		cmd.Printf("  last run:     %s\n", formatAge(task.LastRun, now))
		cmd.Printf("  last success: %s\n", formatAge(task.LastSuccess, now))
		if !task.NextRun.IsZero() {
			cmd.Printf("  next run:     %s\n", task.NextRun.Local().Format(time.DateTime))
		}
		if task.LastError != "" {
			cmd.Printf("  last error:   %s\n", task.LastError)
		}
		for _, r := range statuses[i].Recent {
			cmd.Printf("    %s  %s\n", r.StartedAt.Local().Format(time.DateTime), describeResult(r))
		}
	}
	return nil
}

func runTasksRun(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	result := scheduler.RunTask(cmd.Context(), args[0])
	cmd.Printf("%s: %s\n", args[0], describeResult(*result))
	if !result.Success {
		return fmt.Errorf("task %s failed: %s", args[0], result.Error)
	}
	return nil
}

func describeResult(r domain.TaskResult) string {
	if !r.Success {
		return "failed: " + r.Error
	}
	return fmt.Sprintf("ok, %d items in %s", r.Items, r.Duration().Round(time.Millisecond))
}
