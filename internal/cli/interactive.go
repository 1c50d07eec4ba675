package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dom "taskcli/internal/domain"
	"taskcli/internal/repo"
	"taskcli/internal/service"
)

// session is the interactive state: the logged-in user, or nil for guest
// browsing. It is passed explicitly, command handlers never reach for a
// global.
type session struct {
	user *dom.User
}

func (s *session) loggedIn() bool { return s.user != nil }

// Interactive runs the menu loop until the operator exits or input ends.
func (a *App) Interactive(ctx context.Context) {
	in := bufio.NewScanner(a.In)
	sess := &session{}

	a.printBanner(sess)

	if !a.authMenu(ctx, in, sess) {
		return
	}
	a.mainMenu(ctx, in, sess)
}

// authMenu loops until the operator logs in, signs up, picks guest mode or
// exits. Returns false when the session should end.
func (a *App) authMenu(ctx context.Context, in *bufio.Scanner, sess *session) bool {
	for !sess.loggedIn() {
		fmt.Fprintf(a.Out, "\n%s%sWELCOME%s\n", colorYellow, colorBold, colorReset)
		fmt.Fprintf(a.Out, "%s%s%s\n", colorBlue, divider(50), colorReset)
		fmt.Fprintln(a.Out, "   1. Login")
		fmt.Fprintln(a.Out, "   2. Create new account")
		fmt.Fprintln(a.Out, "   3. Continue as guest (view all tasks)")
		fmt.Fprintln(a.Out, "   0. Exit")
		fmt.Fprintf(a.Out, "%s%s%s\n", colorBlue, divider(50), colorReset)

		choice, ok := a.prompt(in, "Enter your choice: ")
		if !ok || choice == "0" {
			a.successf("Goodbye!")
			return false
		}
		switch choice {
		case "1":
			a.login(ctx, in, sess)
		case "2":
			a.signup(ctx, in, sess)
		case "3":
			a.warnf("Continuing as guest (read-only, all users' tasks).")
			return true
		default:
			a.errorf("Invalid choice.")
		}
	}
	return true
}

func (a *App) mainMenu(ctx context.Context, in *bufio.Scanner, sess *session) {
	for {
		a.printMainMenu()
		choice, ok := a.prompt(in, "Enter your choice: ")
		if !ok || choice == "0" {
			a.successf("Goodbye! Thanks for using TaskCLI!")
			return
		}

		switch choice {
		case "1":
			a.listFor(ctx, sess, repo.TaskFilter{})
		case "2":
			a.listFor(ctx, sess, repo.TaskFilter{Status: "pending"})
		case "3":
			a.listFor(ctx, sess, repo.TaskFilter{Status: "completed"})
		case "4":
			high := dom.PriorityHigh
			a.listFor(ctx, sess, repo.TaskFilter{Priority: &high})
		case "5":
			if a.requireLogin(sess, "add tasks") {
				a.menuAddTask(ctx, in, sess)
			}
		case "6":
			if a.requireLogin(sess, "complete tasks") {
				a.menuSetCompleted(ctx, in, sess, true)
			}
		case "7":
			if a.requireLogin(sess, "modify tasks") {
				a.menuSetCompleted(ctx, in, sess, false)
			}
		case "8":
			if a.requireLogin(sess, "edit tasks") {
				a.menuEditTask(ctx, in, sess)
			}
		case "9":
			if a.requireLogin(sess, "delete tasks") {
				a.menuDeleteTask(ctx, in, sess)
			}
		case "10":
			a.menuFilterTasks(ctx, in, sess)
		case "11":
			sess.user = nil
			a.printBanner(sess)
			if !a.authMenu(ctx, in, sess) {
				return
			}
		default:
			a.errorf("Invalid choice. Please try again.")
		}
	}
}

func (a *App) printBanner(sess *session) {
	fmt.Fprintf(a.Out, "\n%s%s=== TASKCLI - Task Manager ===%s\n", colorCyan, colorBold, colorReset)
	if sess.loggedIn() {
		a.successf("Logged in as: %s", sess.user.DisplayName())
	} else {
		a.warnf("Not logged in")
	}
}

func (a *App) printMainMenu() {
	fmt.Fprintf(a.Out, "\n%s%sMAIN MENU%s\n", colorYellow, colorBold, colorReset)
	fmt.Fprintf(a.Out, "%s%s%s\n", colorBlue, divider(50), colorReset)
	fmt.Fprintln(a.Out, "   1. View my tasks")
	fmt.Fprintln(a.Out, "   2. View pending tasks")
	fmt.Fprintln(a.Out, "   3. View completed tasks")
	fmt.Fprintln(a.Out, "   4. View high priority tasks")
	fmt.Fprintln(a.Out, "   5. Add new task")
	fmt.Fprintln(a.Out, "   6. Mark task as complete")
	fmt.Fprintln(a.Out, "   7. Mark task as pending")
	fmt.Fprintln(a.Out, "   8. Edit task")
	fmt.Fprintln(a.Out, "   9. Delete task")
	fmt.Fprintln(a.Out, "  10. Search/filter tasks")
	fmt.Fprintln(a.Out, "  11. Switch user / logout")
	fmt.Fprintln(a.Out, "   0. Exit")
	fmt.Fprintf(a.Out, "%s%s%s\n", colorBlue, divider(50), colorReset)
}

func (a *App) login(ctx context.Context, in *bufio.Scanner, sess *session) {
	email, ok := a.prompt(in, "Email: ")
	if !ok || email == "" {
		return
	}
	password, err := a.readPassword(in, "Password: ")
	if err != nil || password == "" {
		return
	}

	user, err := a.Users.Authenticate(ctx, email, password)
	if err != nil {
		a.errorf("Invalid email or password.")
		return
	}
	sess.user = &user
	a.successf("Welcome back, %s!", user.DisplayName())
}

func (a *App) signup(ctx context.Context, in *bufio.Scanner, sess *session) {
	name, ok := a.prompt(in, "Your name: ")
	if !ok || name == "" {
		a.errorf("Name is required.")
		return
	}
	email, ok := a.prompt(in, "Email: ")
	if !ok || email == "" {
		a.errorf("Email is required.")
		return
	}
	password, err := a.readPassword(in, "Password (min 6 characters): ")
	if err != nil {
		return
	}
	confirm, err := a.readPassword(in, "Confirm password: ")
	if err != nil {
		return
	}
	if password != confirm {
		a.errorf("Passwords do not match.")
		return
	}

	user, err := a.Users.Register(ctx, name, email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			a.errorf("Email already registered. Please login instead.")
		case service.IsValidation(err):
			a.errorf("%v", err)
		default:
			a.errorf("Error creating account: %v", err)
		}
		return
	}
	sess.user = &user
	a.successf("Account created successfully! Welcome, %s!", user.DisplayName())
}

// listFor scopes the filter to the session user when logged in; guests see
// everyone's tasks.
func (a *App) listFor(ctx context.Context, sess *session, f repo.TaskFilter) {
	if sess.loggedIn() {
		f.UserID = &sess.user.ID
	}
	tasks, err := a.Tasks.List(ctx, f)
	if err != nil {
		a.errorf("Could not list tasks: %v", err)
		return
	}
	a.printTaskTable(tasks)
}

func (a *App) menuAddTask(ctx context.Context, in *bufio.Scanner, sess *session) {
	fmt.Fprintf(a.Out, "\n%s%sADD NEW TASK%s\n", colorCyan, colorBold, colorReset)

	name, ok := a.prompt(in, "Task name: ")
	if !ok || name == "" {
		a.errorf("Task name is required.")
		return
	}
	project, _ := a.prompt(in, "Project name (press Enter for 'General'): ")

	fmt.Fprintln(a.Out, "\nPriority:  1. High  2. Medium  3. Low")
	priority := pickMapped(a, in, "Select priority (1-3): ", map[string]string{
		"1": "High", "2": "Medium", "3": "Low",
	}, "Medium")

	today := time.Now().Format("2006-01-02")
	dueDate, _ := a.prompt(in, fmt.Sprintf("Due date (YYYY-MM-DD, default: %s): ", today))
	if dueDate == "" {
		dueDate = today
	}
	dueTime, _ := a.prompt(in, "Due time (HH:MM, default: 12:00): ")

	fmt.Fprintln(a.Out, "\nRecurrence:")
	fmt.Fprintln(a.Out, "  1. None (one-time task)")
	fmt.Fprintln(a.Out, "  2. Daily for 7 days")
	fmt.Fprintln(a.Out, "  3. Daily for 30 days")
	fmt.Fprintln(a.Out, "  4. Weekly for 4 weeks")
	recurrence := pickMapped(a, in, "Select recurrence (1-4): ", map[string]string{
		"1": "none", "2": "daily_7", "3": "daily_30", "4": "weekly_4",
	}, "none")

	created, err := a.Tasks.Create(ctx, sess.user.ID, service.CreateTaskInput{
		Name:       name,
		Project:    project,
		Priority:   priority,
		DueDate:    dueDate,
		DueTime:    dueTime,
		Recurrence: recurrence,
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

// menuSetCompleted shows the candidate tasks first, then flips the flag by
// id alone.
func (a *App) menuSetCompleted(ctx context.Context, in *bufio.Scanner, sess *session, done bool) {
	status := "pending"
	verb := "complete"
	if !done {
		status = "completed"
		verb = "mark as pending"
	}
	a.listFor(ctx, sess, repo.TaskFilter{Status: status})

	raw, ok := a.prompt(in, fmt.Sprintf("\nEnter Task ID to %s: ", verb))
	if !ok || raw == "" {
		return
	}
	id, ok := a.parseTaskID(raw)
	if !ok {
		return
	}
	a.SetTaskCompleted(ctx, id, done)
}

// menuEditTask verifies ownership before prompting, then applies the
// changed fields.
func (a *App) menuEditTask(ctx context.Context, in *bufio.Scanner, sess *session) {
	fmt.Fprintf(a.Out, "\n%s%sEDIT TASK%s\n", colorCyan, colorBold, colorReset)
	a.listFor(ctx, sess, repo.TaskFilter{})

	raw, ok := a.prompt(in, "\nEnter Task ID to edit: ")
	if !ok || raw == "" {
		return
	}
	id, ok := a.parseTaskID(raw)
	if !ok {
		return
	}
	task, err := a.Tasks.Get(ctx, sess.user.ID, id, true)
	if err != nil {
		a.errorf("Task not found or not yours.")
		return
	}

	fmt.Fprintf(a.Out, "\n%sCurrent values (press Enter to keep):%s\n", colorYellow, colorReset)
	fmt.Fprintf(a.Out, "  Name: %s\n", task.Name)
	fmt.Fprintf(a.Out, "  Project: %s\n", task.Project)
	fmt.Fprintf(a.Out, "  Priority: %s\n", task.Priority)
	fmt.Fprintf(a.Out, "  Due date: %s\n", task.DueDate.Format("2006-01-02"))
	fmt.Fprintf(a.Out, "  Due time: %s\n\n", task.DueTime)

	var opts editOptions
	opts.name, _ = a.prompt(in, "New name: ")
	opts.project, _ = a.prompt(in, "New project: ")
	fmt.Fprintf(a.Out, "%sNew priority (1=High, 2=Medium, 3=Low, Enter to skip):%s\n", colorYellow, colorReset)
	if p, _ := a.prompt(in, "Priority: "); p != "" {
		opts.priority = map[string]string{"1": "High", "2": "Medium", "3": "Low"}[p]
		if opts.priority == "" {
			a.errorf("Invalid priority choice.")
			return
		}
	}
	opts.dueDate, _ = a.prompt(in, "New due date (YYYY-MM-DD): ")
	opts.dueTime, _ = a.prompt(in, "New due time (HH:MM): ")

	a.EditTask(ctx, id, opts)
}

// menuDeleteTask confirms, verifies ownership, then deletes.
func (a *App) menuDeleteTask(ctx context.Context, in *bufio.Scanner, sess *session) {
	fmt.Fprintf(a.Out, "\n%s%sDELETE TASK%s\n", colorCyan, colorBold, colorReset)
	a.listFor(ctx, sess, repo.TaskFilter{})

	raw, ok := a.prompt(in, "\nEnter Task ID to delete: ")
	if !ok || raw == "" {
		return
	}
	id, ok := a.parseTaskID(raw)
	if !ok {
		return
	}

	confirm, _ := a.prompt(in, "Are you sure? (yes/no): ")
	switch strings.ToLower(confirm) {
	case "yes", "y":
	default:
		a.warnf("Deletion cancelled.")
		return
	}

	if _, err := a.Tasks.Get(ctx, sess.user.ID, id, true); err != nil {
		a.errorf("Task not found or not yours.")
		return
	}
	a.DeleteTask(ctx, id)
}

func (a *App) menuFilterTasks(ctx context.Context, in *bufio.Scanner, sess *session) {
	fmt.Fprintf(a.Out, "\n%s%sFILTER TASKS%s\n", colorCyan, colorBold, colorReset)
	fmt.Fprintln(a.Out, "  1. By priority")
	fmt.Fprintln(a.Out, "  2. By project")
	fmt.Fprintln(a.Out, "  3. All users' tasks")
	fmt.Fprintln(a.Out, "  4. Recurring tasks only")

	choice, ok := a.prompt(in, "\nSelect filter type: ")
	if !ok {
		return
	}

	var f repo.TaskFilter
	if sess.loggedIn() {
		f.UserID = &sess.user.ID
	}

	switch choice {
	case "1":
		fmt.Fprintln(a.Out, "\n  1. High  2. Medium  3. Low")
		p := pickMapped(a, in, "Select priority: ", map[string]string{
			"1": "High", "2": "Medium", "3": "Low",
		}, "")
		if p == "" {
			a.errorf("Invalid priority choice.")
			return
		}
		pri := dom.Priority(p)
		f.Priority = &pri
	case "2":
		f.Project, _ = a.prompt(in, "Enter project name: ")
	case "3":
		f.UserID = nil
	case "4":
		f.RecurringOnly = true
	default:
		a.errorf("Invalid choice.")
		return
	}

	tasks, err := a.Tasks.List(ctx, f)
	if err != nil {
		a.errorf("Could not list tasks: %v", err)
		return
	}
	a.printTaskTable(tasks)
}

func (a *App) requireLogin(sess *session, action string) bool {
	if sess.loggedIn() {
		return true
	}
	a.errorf("Please login to %s.", action)
	return false
}

func (a *App) prompt(in *bufio.Scanner, msg string) (string, bool) {
	fmt.Fprintf(a.Out, "%s%s%s", colorCyan, msg, colorReset)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

// readPassword uses the injected prompt when present so the real binary
// can disable echo; otherwise it falls back to a plain line read.
func (a *App) readPassword(in *bufio.Scanner, msg string) (string, error) {
	if a.Password != nil {
		return a.Password(msg)
	}
	s, ok := a.prompt(in, msg)
	if !ok {
		return "", errors.New("input closed")
	}
	return s, nil
}

func pickMapped(a *App, in *bufio.Scanner, msg string, m map[string]string, fallback string) string {
	raw, _ := a.prompt(in, msg)
	if raw == "" {
		return fallback
	}
	if v, ok := m[raw]; ok {
		return v
	}
	return fallback
}
