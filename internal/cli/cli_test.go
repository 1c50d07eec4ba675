package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	dom "taskcli/internal/domain"
	"taskcli/internal/repo"
	"taskcli/internal/service"
)

func newTestApp() (*App, *bytes.Buffer, *repo.MemStore) {
	store := repo.NewMemStore()
	out := &bytes.Buffer{}
	app := &App{
		Users: service.NewUserService(store.Users()),
		Tasks: service.NewTaskService(store.Tasks(), nil),
		Out:   out,
		In:    strings.NewReader(""),
	}
	return app, out, store
}

func register(t *testing.T, app *App, email string) dom.User {
	t.Helper()
	user, err := app.Users.Register(context.Background(), "Test User", email, "secret1")
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func TestAddTaskRecurring(t *testing.T) {
	app, out, _ := newTestApp()
	register(t, app, "alice@example.com")

	app.AddTask(context.Background(), "Standup", addOptions{
		user:       "alice@example.com",
		project:    "Work",
		priority:   "High",
		dueDate:    "2023-10-01",
		dueTime:    "09:30",
		recurrence: "daily_7",
	})

	if !strings.Contains(out.String(), "Created 7 recurring tasks") {
		t.Fatalf("unexpected output: %q", out.String())
	}

	tasks, err := app.Tasks.List(context.Background(), repo.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 7 {
		t.Fatalf("len(tasks) = %d, want 7", len(tasks))
	}
}

// An omitted --due_date means today, matching the flag help.
func TestAddTaskDefaultsDueDateToToday(t *testing.T) {
	app, out, _ := newTestApp()
	register(t, app, "alice@example.com")

	app.AddTask(context.Background(), "No date given", addOptions{
		user:       "alice@example.com",
		dueTime:    "12:00",
		recurrence: "none",
	})

	if !strings.Contains(out.String(), "created with ID") {
		t.Fatalf("task not created: %q", out.String())
	}
	tasks, err := app.Tasks.List(context.Background(), repo.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}
	if got, want := tasks[0].DueDate.Format("2006-01-02"), time.Now().Format("2006-01-02"); got != want {
		t.Fatalf("due date = %s, want %s", got, want)
	}
}

func TestAddTaskUnknownUser(t *testing.T) {
	app, out, _ := newTestApp()

	app.AddTask(context.Background(), "Orphan", addOptions{user: "ghost@example.com"})

	if !strings.Contains(out.String(), "not found") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestListTasksFiltered(t *testing.T) {
	app, out, _ := newTestApp()
	alice := register(t, app, "alice@example.com")
	bob := register(t, app, "bob@example.com")

	mustCreate(t, app, alice.ID, "Alice high", "High")
	mustCreate(t, app, alice.ID, "Alice low", "Low")
	mustCreate(t, app, bob.ID, "Bob high", "High")

	app.ListTasks(context.Background(), listOptions{user: "alice@example.com", priority: "High", status: "all"})

	got := out.String()
	if !strings.Contains(got, "Alice high") {
		t.Fatalf("expected task missing: %q", got)
	}
	if strings.Contains(got, "Alice low") || strings.Contains(got, "Bob high") {
		t.Fatalf("filtered-out task present: %q", got)
	}
	if !strings.Contains(got, "Total: 1 task(s)") {
		t.Fatalf("total line wrong: %q", got)
	}
}

// Direct terminal commands mutate by id alone; owner does not matter.
func TestCompleteUnscoped(t *testing.T) {
	app, out, _ := newTestApp()
	alice := register(t, app, "alice@example.com")
	id := mustCreate(t, app, alice.ID, "Alice's task", "Medium")

	app.SetTaskCompleted(context.Background(), id, true)

	if !strings.Contains(out.String(), "marked as complete") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	task, err := app.Tasks.Get(context.Background(), 0, id, false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !task.Completed {
		t.Fatal("task not completed")
	}

	out.Reset()
	app.SetTaskCompleted(context.Background(), 999, true)
	if !strings.Contains(out.String(), "Task with ID 999 not found.") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestEditUnscoped(t *testing.T) {
	app, out, _ := newTestApp()
	alice := register(t, app, "alice@example.com")
	id := mustCreate(t, app, alice.ID, "Draft", "Medium")

	app.EditTask(context.Background(), id, editOptions{name: "Final", priority: "High"})

	if !strings.Contains(out.String(), "updated successfully") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	task, err := app.Tasks.Get(context.Background(), 0, id, false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.Name != "Final" || task.Priority != dom.PriorityHigh {
		t.Fatalf("edit not applied: %+v", task)
	}

	out.Reset()
	app.EditTask(context.Background(), id, editOptions{dueDate: "10-01-2023"})
	if !strings.Contains(out.String(), "Invalid date format") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestDeleteTask(t *testing.T) {
	app, out, _ := newTestApp()
	alice := register(t, app, "alice@example.com")
	id := mustCreate(t, app, alice.ID, "Old", "Medium")

	app.DeleteTask(context.Background(), id)

	if !strings.Contains(out.String(), "deleted") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if _, err := app.Tasks.Get(context.Background(), 0, id, false); err == nil {
		t.Fatal("task still present")
	}
}

func TestDeleteUserCascades(t *testing.T) {
	app, out, _ := newTestApp()
	alice := register(t, app, "alice@example.com")
	bob := register(t, app, "bob@example.com")
	mustCreate(t, app, alice.ID, "Alice's", "Medium")
	bobTask := mustCreate(t, app, bob.ID, "Bob's", "Medium")

	app.DeleteUser(context.Background(), "alice@example.com")

	if !strings.Contains(out.String(), "all their tasks deleted") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	tasks, err := app.Tasks.List(context.Background(), repo.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != bobTask {
		t.Fatalf("cascade wrong, remaining: %+v", tasks)
	}
}

// Drives the interactive menu end to end: login, add a task, list, exit.
func TestInteractiveAddFlow(t *testing.T) {
	app, out, store := newTestApp()
	register(t, app, "alice@example.com")

	script := strings.Join([]string{
		"1",                  // auth menu: login
		"alice@example.com",  // email
		"secret1",            // password (plain fallback)
		"5",                  // add new task
		"Write tests",        // name
		"",                   // project -> General
		"1",                  // priority High
		"2023-10-01",         // due date
		"",                   // due time -> 12:00
		"1",                  // recurrence none
		"1",                  // view my tasks
		"0",                  // exit
	}, "\n") + "\n"
	app.In = strings.NewReader(script)

	app.Interactive(context.Background())

	got := out.String()
	if !strings.Contains(got, "Welcome back") {
		t.Fatalf("login did not succeed: %q", got)
	}
	if !strings.Contains(got, "created with ID") {
		t.Fatalf("task not created: %q", got)
	}
	if !strings.Contains(got, "Write tests") {
		t.Fatalf("task listing missing: %q", got)
	}

	tasks, err := store.Tasks().List(context.Background(), repo.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Project != "General" || tasks[0].DueTime != "12:00" {
		t.Fatalf("unexpected stored task: %+v", tasks)
	}
}

func TestInteractiveGuestCannotMutate(t *testing.T) {
	app, out, _ := newTestApp()

	script := strings.Join([]string{
		"3", // continue as guest
		"5", // try to add
		"0", // exit
	}, "\n") + "\n"
	app.In = strings.NewReader(script)

	app.Interactive(context.Background())

	if !strings.Contains(out.String(), "Please login to add tasks.") {
		t.Fatalf("guest was not blocked: %q", out.String())
	}
}

func mustCreate(t *testing.T, app *App, ownerID int64, name, priority string) int64 {
	t.Helper()
	created, err := app.Tasks.Create(context.Background(), ownerID, service.CreateTaskInput{
		Name:     name,
		Priority: priority,
		DueDate:  "2023-10-01",
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return created[0].ID
}
