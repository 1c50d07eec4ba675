// Package cli implements the terminal surface: cobra subcommands for
// scripted use and an interactive menu for everything else. Errors print
// to the terminal and never abort the process.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	dom "taskcli/internal/domain"
	"taskcli/internal/repo"
	"taskcli/internal/service"
)

// App wires the terminal surface to the services. Output and prompts are
// injectable so tests can drive the menu without a TTY.
type App struct {
	Users *service.UserService
	Tasks *service.TaskService

	Out      io.Writer
	In       io.Reader
	Password func(prompt string) (string, error)
}

func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskcli",
		Short:         "Manage tasks from the terminal",
		Long:          "TaskCLI manages the same tasks as the web dashboard.\nRun without a subcommand for the interactive menu.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Interactive(cmd.Context())
			return nil
		},
	}

	root.AddCommand(
		newListCmd(app),
		newAddCmd(app),
		newCompleteCmd(app),
		newPendingCmd(app),
		newEditCmd(app),
		newDeleteCmd(app),
		newUsersCmd(app),
	)
	return root
}

type listOptions struct {
	user      string
	priority  string
	project   string
	status    string
	recurring bool
}

func newListCmd(app *App) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.ListTasks(cmd.Context(), opts)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.user, "user", "", "filter by account email")
	cmd.Flags().StringVar(&opts.priority, "priority", "", "filter by priority (High|Medium|Low)")
	cmd.Flags().StringVar(&opts.project, "project", "", "filter by project name")
	cmd.Flags().StringVar(&opts.status, "status", "all", "filter by status (pending|completed|all)")
	cmd.Flags().BoolVar(&opts.recurring, "recurring", false, "show only recurring tasks")
	return cmd
}

type addOptions struct {
	user       string
	project    string
	priority   string
	dueDate    string
	dueTime    string
	recurrence string
}

func newAddCmd(app *App) *cobra.Command {
	var opts addOptions
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.AddTask(cmd.Context(), args[0], opts)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.user, "user", "", "account email to assign the task to (required)")
	cmd.Flags().StringVar(&opts.project, "project", "General", "project name")
	cmd.Flags().StringVar(&opts.priority, "priority", "Medium", "priority (High|Medium|Low)")
	cmd.Flags().StringVar(&opts.dueDate, "due_date", "", "due date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&opts.dueTime, "due_time", "12:00", "due time (HH:MM)")
	cmd.Flags().StringVar(&opts.recurrence, "recurrence", "none", "recurrence pattern (none|daily_7|daily_30|weekly_4)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newCompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task as complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := app.parseTaskID(args[0])
			if !ok {
				return nil
			}
			app.SetTaskCompleted(cmd.Context(), id, true)
			return nil
		},
	}
}

func newPendingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pending <id>",
		Short: "Mark a task as pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := app.parseTaskID(args[0])
			if !ok {
				return nil
			}
			app.SetTaskCompleted(cmd.Context(), id, false)
			return nil
		},
	}
}

type editOptions struct {
	name     string
	project  string
	priority string
	dueDate  string
	dueTime  string
}

func newEditCmd(app *App) *cobra.Command {
	var opts editOptions
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := app.parseTaskID(args[0])
			if !ok {
				return nil
			}
			app.EditTask(cmd.Context(), id, opts)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "new task name")
	cmd.Flags().StringVar(&opts.project, "project", "", "new project name")
	cmd.Flags().StringVar(&opts.priority, "priority", "", "new priority (High|Medium|Low)")
	cmd.Flags().StringVar(&opts.dueDate, "due_date", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.dueTime, "due_time", "", "new due time (HH:MM)")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := app.parseTaskID(args[0])
			if !ok {
				return nil
			}
			app.DeleteTask(cmd.Context(), id)
			return nil
		},
	}
}

func newUsersCmd(app *App) *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Administer accounts",
	}
	users.AddCommand(&cobra.Command{
		Use:   "delete <email>",
		Short: "Delete an account and all its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.DeleteUser(cmd.Context(), args[0])
			return nil
		},
	})
	return users
}

// ListTasks resolves the optional --user email, builds a store filter and
// prints the matching tasks.
func (a *App) ListTasks(ctx context.Context, opts listOptions) {
	var f repo.TaskFilter

	if opts.user != "" {
		user, err := a.Users.GetByEmail(ctx, opts.user)
		if err != nil {
			a.errorf("User '%s' not found.", opts.user)
			return
		}
		f.UserID = &user.ID
	}
	if opts.priority != "" {
		p := dom.Priority(opts.priority)
		if !dom.ValidPriority(p) {
			a.errorf("Invalid priority '%s'. Use High, Medium or Low.", opts.priority)
			return
		}
		f.Priority = &p
	}
	f.Project = opts.project
	if opts.status == "pending" || opts.status == "completed" {
		f.Status = opts.status
	}
	f.RecurringOnly = opts.recurring

	tasks, err := a.Tasks.List(ctx, f)
	if err != nil {
		a.errorf("Could not list tasks: %v", err)
		return
	}
	a.printTaskTable(tasks)
}

// AddTask creates a task for the named account, expanding recurrence into
// the full series. An omitted due date means today.
func (a *App) AddTask(ctx context.Context, name string, opts addOptions) {
	user, err := a.Users.GetByEmail(ctx, opts.user)
	if err != nil {
		a.errorf("User '%s' not found.", opts.user)
		return
	}
	if opts.dueDate == "" {
		opts.dueDate = time.Now().Format("2006-01-02")
	}

	created, err := a.Tasks.Create(ctx, user.ID, service.CreateTaskInput{
		Name:       name,
		Project:    opts.project,
		Priority:   opts.priority,
		DueDate:    opts.dueDate,
		DueTime:    opts.dueTime,
		Recurrence: opts.recurrence,
	})
	if err != nil {
		if service.IsValidation(err) {
			a.errorf("Invalid input: %v", err)
		} else {
			a.errorf("Could not create task: %v", err)
		}
		return
	}

	if len(created) == 1 {
		a.successf("Task '%s' created with ID %d", created[0].Name, created[0].ID)
	} else {
		a.successf("Created %d recurring tasks (IDs: %d-%d)", len(created), created[0].ID, created[len(created)-1].ID)
	}
}

// SetTaskCompleted flips the completed flag by id alone; the terminal
// surface does not scope direct commands to an owner.
func (a *App) SetTaskCompleted(ctx context.Context, id int64, done bool) {
	task, err := a.Tasks.SetCompleted(ctx, 0, id, done, false)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			a.errorf("Task with ID %d not found.", id)
		} else {
			a.errorf("Could not update task %d: %v", id, err)
		}
		return
	}
	if done {
		a.successf("Task %d ('%s') marked as complete!", id, task.Name)
	} else {
		a.warnf("Task %d ('%s') marked as pending.", id, task.Name)
	}
}

// EditTask applies the flags that were set; empty flags leave fields
// untouched. Lookup is unscoped, matching complete and delete.
func (a *App) EditTask(ctx context.Context, id int64, opts editOptions) {
	var patch service.TaskPatch
	if opts.name != "" {
		patch.Name = &opts.name
	}
	if opts.project != "" {
		patch.Project = &opts.project
	}
	if opts.priority != "" {
		p := dom.Priority(opts.priority)
		if !dom.ValidPriority(p) {
			a.errorf("Invalid priority '%s'. Use High, Medium or Low.", opts.priority)
			return
		}
		patch.Priority = &p
	}
	if opts.dueDate != "" {
		due, err := service.ParseDueDate(opts.dueDate)
		if err != nil {
			a.errorf("Invalid date format. Use YYYY-MM-DD.")
			return
		}
		patch.DueDate = &due
	}
	if opts.dueTime != "" {
		tod, err := service.ParseDueTime(opts.dueTime)
		if err != nil {
			a.errorf("Invalid time format. Use HH:MM.")
			return
		}
		patch.DueTime = &tod
	}

	_, err := a.Tasks.Edit(ctx, 0, id, patch, false)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			a.errorf("Task with ID %d not found.", id)
		} else {
			a.errorf("Could not update task %d: %v", id, err)
		}
		return
	}
	a.successf("Task %d updated successfully!", id)
}

// DeleteTask removes the task by id alone.
func (a *App) DeleteTask(ctx context.Context, id int64) {
	task, err := a.Tasks.Get(ctx, 0, id, false)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			a.errorf("Task with ID %d not found.", id)
		} else {
			a.errorf("Could not delete task %d: %v", id, err)
		}
		return
	}
	if err := a.Tasks.Delete(ctx, 0, id, false); err != nil {
		a.errorf("Could not delete task %d: %v", id, err)
		return
	}
	a.successf("Task %d ('%s') deleted.", id, task.Name)
}

// DeleteUser removes an account; owned tasks go with it.
func (a *App) DeleteUser(ctx context.Context, email string) {
	user, err := a.Users.GetByEmail(ctx, email)
	if err != nil {
		a.errorf("User '%s' not found.", email)
		return
	}
	if err := a.Users.Delete(ctx, user.ID); err != nil {
		a.errorf("Could not delete user '%s': %v", email, err)
		return
	}
	a.successf("User '%s' and all their tasks deleted.", email)
}

func (a *App) parseTaskID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		a.errorf("Invalid Task ID.")
		return 0, false
	}
	return id, true
}

func (a *App) errorf(format string, args ...any) {
	fmt.Fprintf(a.Out, colorRed+format+colorReset+"\n", args...)
}

func (a *App) successf(format string, args ...any) {
	fmt.Fprintf(a.Out, colorGreen+format+colorReset+"\n", args...)
}

func (a *App) warnf(format string, args ...any) {
	fmt.Fprintf(a.Out, colorYellow+format+colorReset+"\n", args...)
}
