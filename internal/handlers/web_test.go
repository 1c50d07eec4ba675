package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"taskcli/internal/auth"
	"taskcli/internal/repo"
	"taskcli/internal/service"
)

// memSessions is an in-process auth.Sessions for handler tests.
type memSessions struct {
	next int
	byID map[string]int64
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]int64{}}
}

func (s *memSessions) Create(_ context.Context, userID int64) (string, error) {
	s.next++
	id := "sess-" + strconv.Itoa(s.next)
	s.byID[id] = userID
	return id, nil
}

func (s *memSessions) GetUserID(_ context.Context, id string) (int64, bool) {
	userID, ok := s.byID[id]
	return userID, ok
}

func (s *memSessions) Delete(_ context.Context, id string) error {
	delete(s.byID, id)
	return nil
}

type webEnv struct {
	router   *gin.Engine
	store    *repo.MemStore
	users    *service.UserService
	tasks    *service.TaskService
	sessions *memSessions
}

func newWebEnv(t *testing.T) *webEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repo.NewMemStore()
	users := service.NewUserService(store.Users())
	tasks := service.NewTaskService(store.Tasks(), nil)
	sessions := newMemSessions()
	h := NewWebHandler(sessions, users, tasks)

	router := gin.New()
	router.LoadHTMLGlob("../../web/templates/*.html")
	router.GET("/", h.LoginPage)
	router.POST("/login", h.DoLogin)
	router.POST("/register", h.DoSignup)
	router.GET("/logout", h.Logout)

	protected := router.Group("", auth.RequireSession(sessions))
	protected.GET("/dashboard", h.Dashboard)
	protected.POST("/add-task", h.AddTask)
	protected.POST("/edit-task/:id", h.EditTask)
	protected.POST("/complete-task/:id", h.CompleteTask)
	protected.POST("/pending-task/:id", h.PendingTask)
	protected.POST("/delete-task/:id", h.DeleteTask)

	return &webEnv{router: router, store: store, users: users, tasks: tasks, sessions: sessions}
}

// postForm submits a form-encoded POST, optionally with a session cookie.
func (e *webEnv) postForm(t *testing.T, path, sessionID string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sessionID})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *webEnv) get(t *testing.T, path, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sessionID})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// loggedIn registers a user and opens a session for them.
func (e *webEnv) loggedIn(t *testing.T, email string) (int64, string) {
	t.Helper()
	user, err := e.users.Register(context.Background(), "Test User", email, "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	sessionID, err := e.sessions.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return user.ID, sessionID
}

func TestWebLoginFlow(t *testing.T) {
	env := newWebEnv(t)
	env.loggedIn(t, "alice@example.com")

	w := env.postForm(t, "/login", "", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret1"},
	})
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("redirect = %q, want /dashboard", loc)
	}
	found := false
	for _, ck := range w.Result().Cookies() {
		if ck.Name == auth.SessionCookieName && ck.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("no session cookie set")
	}
}

func TestWebLoginRejected(t *testing.T) {
	env := newWebEnv(t)
	env.loggedIn(t, "alice@example.com")

	w := env.postForm(t, "/login", "", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid email or password.") {
		t.Fatal("error message missing from re-rendered page")
	}

	w = env.postForm(t, "/login", "", url.Values{"email": {"alice@example.com"}})
	if !strings.Contains(w.Body.String(), "Email and password required.") {
		t.Fatal("missing-field message absent")
	}
}

func TestWebSignupDuplicate(t *testing.T) {
	env := newWebEnv(t)
	env.loggedIn(t, "alice@example.com")

	w := env.postForm(t, "/register", "", url.Values{
		"name":     {"Alice Again"},
		"email":    {"alice@example.com"},
		"password": {"secret1"},
	})
	if !strings.Contains(w.Body.String(), "Email already registered.") {
		t.Fatal("duplicate email message absent")
	}
}

func TestWebDashboardRequiresSession(t *testing.T) {
	env := newWebEnv(t)

	w := env.get(t, "/dashboard", "")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Fatalf("redirect = %q, want /", loc)
	}
}

func TestWebAddTaskExpandsRecurrence(t *testing.T) {
	env := newWebEnv(t)
	userID, sessionID := env.loggedIn(t, "alice@example.com")

	w := env.postForm(t, "/add-task", sessionID, url.Values{
		"name":       {"Standup"},
		"project":    {"Work"},
		"priority":   {"High"},
		"due_date":   {"2023-10-01"},
		"due_time":   {"09:30"},
		"recurrence": {"weekly_4"},
	})
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302: %s", w.Code, w.Body.String())
	}

	tasks, err := env.tasks.List(context.Background(), repo.TaskFilter{UserID: &userID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("len(tasks) = %d, want 4", len(tasks))
	}
	for _, task := range tasks {
		if !task.IsRecurring {
			t.Fatalf("task %d not flagged recurring", task.ID)
		}
	}
}

// Past-due pending tasks get the overdue row styling; completed ones don't.
func TestWebDashboardMarksOverdue(t *testing.T) {
	env := newWebEnv(t)
	userID, sessionID := env.loggedIn(t, "alice@example.com")

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	created, err := env.tasks.Create(context.Background(), userID, service.CreateTaskInput{
		Name: "Late", DueDate: yesterday,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := env.get(t, "/dashboard", sessionID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `class="overdue"`) {
		t.Fatal("overdue row styling missing")
	}

	if _, err := env.tasks.SetCompleted(context.Background(), userID, created[0].ID, true, true); err != nil {
		t.Fatalf("complete: %v", err)
	}
	w = env.get(t, "/dashboard", sessionID)
	if strings.Contains(w.Body.String(), `class="overdue"`) {
		t.Fatal("completed task still styled overdue")
	}
}

func TestWebAddTaskMissingField(t *testing.T) {
	env := newWebEnv(t)
	_, sessionID := env.loggedIn(t, "alice@example.com")

	w := env.postForm(t, "/add-task", sessionID, url.Values{
		"name":     {"No date"},
		"project":  {"Work"},
		"priority": {"High"},
		"due_time": {"09:30"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", w.Code)
	}
	if !strings.Contains(w.Body.String(), "All fields required") {
		t.Fatal("validation message absent")
	}
}

// Mutations on another user's task silently redirect and change nothing.
func TestWebMutationsAreScoped(t *testing.T) {
	env := newWebEnv(t)
	aliceID, _ := env.loggedIn(t, "alice@example.com")
	_, bobSession := env.loggedIn(t, "bob@example.com")

	created, err := env.tasks.Create(context.Background(), aliceID, service.CreateTaskInput{
		Name: "Alice's task", DueDate: "2023-10-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created[0].ID

	w := env.postForm(t, fmt.Sprintf("/complete-task/%d", id), bobSession, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want silent redirect", w.Code)
	}
	task, err := env.tasks.Get(context.Background(), 0, id, false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.Completed {
		t.Fatal("foreign task was modified")
	}

	w = env.postForm(t, fmt.Sprintf("/delete-task/%d", id), bobSession, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("delete status = %d, want redirect", w.Code)
	}
	if _, err := env.tasks.Get(context.Background(), 0, id, false); err != nil {
		t.Fatal("foreign task was deleted")
	}
}

func TestWebCompleteAndDeleteOwnTask(t *testing.T) {
	env := newWebEnv(t)
	aliceID, sessionID := env.loggedIn(t, "alice@example.com")

	created, err := env.tasks.Create(context.Background(), aliceID, service.CreateTaskInput{
		Name: "Mine", DueDate: "2023-10-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created[0].ID

	env.postForm(t, fmt.Sprintf("/complete-task/%d", id), sessionID, nil)
	task, err := env.tasks.Get(context.Background(), 0, id, false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !task.Completed {
		t.Fatal("task not completed")
	}

	env.postForm(t, fmt.Sprintf("/delete-task/%d", id), sessionID, nil)
	if _, err := env.tasks.Get(context.Background(), 0, id, false); err == nil {
		t.Fatal("task still present after delete")
	}
}
