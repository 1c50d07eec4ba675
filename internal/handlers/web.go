package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskcli/internal/auth"
	dom "taskcli/internal/domain"
	"taskcli/internal/repo"
	"taskcli/internal/service"

	"github.com/gin-gonic/gin"
)

// WebHandler serves the server-rendered dashboard: form-encoded POSTs,
// session-cookie auth, redirects instead of JSON errors. Not-found and
// not-owned tasks silently redirect back to the dashboard.
type WebHandler struct {
	sessions auth.Sessions
	users    *service.UserService
	tasks    *service.TaskService
}

// NewWebHandler returns a new WebHandler.
func NewWebHandler(sessions auth.Sessions, users *service.UserService, tasks *service.TaskService) *WebHandler {
	return &WebHandler{sessions: sessions, users: users, tasks: tasks}
}

// LoginPage renders the login/signup page, or forwards straight to the
// dashboard when a valid session cookie is present.
func (h *WebHandler) LoginPage(c *gin.Context) {
	if sessionID, err := c.Cookie(auth.SessionCookieName); err == nil && sessionID != "" {
		if _, ok := h.sessions.GetUserID(c.Request.Context(), sessionID); ok {
			c.Redirect(http.StatusFound, "/dashboard")
			return
		}
	}
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

// DoLogin handles the login form.
func (h *WebHandler) DoLogin(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	if email == "" || password == "" {
		c.HTML(http.StatusOK, "index.html", gin.H{"error": "Email and password required."})
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		c.HTML(http.StatusOK, "index.html", gin.H{"error": "Invalid email or password."})
		return
	}
	h.startSession(c, user.ID)
}

// DoSignup handles the registration form and logs the new user in.
func (h *WebHandler) DoSignup(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")
	if name == "" || email == "" || password == "" {
		c.HTML(http.StatusOK, "index.html", gin.H{"error": "All fields required."})
		return
	}
	user, err := h.users.Register(c.Request.Context(), name, email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.HTML(http.StatusOK, "index.html", gin.H{"error": "Email already registered."})
		case service.IsValidation(err):
			c.HTML(http.StatusOK, "index.html", gin.H{"error": "Password must be at least 6 characters."})
		default:
			c.HTML(http.StatusOK, "index.html", gin.H{"error": "Could not create account."})
		}
		return
	}
	h.startSession(c, user.ID)
}

func (h *WebHandler) startSession(c *gin.Context, userID int64) {
	sessionID, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		c.HTML(http.StatusOK, "index.html", gin.H{"error": "Could not start session."})
		return
	}
	c.SetCookie(auth.SessionCookieName, sessionID, 24*60*60, "/", "", false, true)
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout drops the session and returns to the login page.
func (h *WebHandler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(auth.SessionCookieName); err == nil && sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// Dashboard lists the caller's tasks.
func (h *WebHandler) Dashboard(c *gin.Context) {
	h.renderDashboard(c, "")
}

// AddTask handles the new-task form, including recurrence expansion.
// All form fields are required here; a missing one re-renders the
// dashboard with an error instead of raising.
func (h *WebHandler) AddTask(c *gin.Context) {
	name := c.PostForm("name")
	project := c.PostForm("project")
	priority := c.PostForm("priority")
	dueDate := c.PostForm("due_date")
	dueTime := c.PostForm("due_time")
	recurrence := c.PostForm("recurrence")

	if name == "" || project == "" || dueDate == "" || dueTime == "" {
		h.renderDashboard(c, "All fields required")
		return
	}

	userID := auth.UserIDFromContext(c)
	_, err := h.tasks.Create(c.Request.Context(), userID, service.CreateTaskInput{
		Name:       name,
		Project:    project,
		Priority:   priority,
		DueDate:    dueDate,
		DueTime:    dueTime,
		Recurrence: recurrence,
	})
	if err != nil {
		if service.IsValidation(err) {
			h.renderDashboard(c, "Invalid input. Please check the date and time format.")
			return
		}
		h.renderDashboard(c, "Could not save the task.")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// EditTask handles the edit form. All fields are required, mirroring the
// add form; the task lookup is scoped and a miss silently redirects.
func (h *WebHandler) EditTask(c *gin.Context) {
	id, ok := parseFormID(c)
	if !ok {
		return
	}
	name := c.PostForm("name")
	project := c.PostForm("project")
	priority := dom.Priority(c.PostForm("priority"))
	dueDate := c.PostForm("due_date")
	dueTime := c.PostForm("due_time")

	if name == "" || project == "" || dueDate == "" || dueTime == "" {
		h.renderDashboard(c, "All fields required")
		return
	}
	due, err := service.ParseDueDate(dueDate)
	if err != nil {
		h.renderDashboard(c, "Invalid input. Please check the date and time format.")
		return
	}
	tod, err := service.ParseDueTime(dueTime)
	if err != nil {
		h.renderDashboard(c, "Invalid input. Please check the date and time format.")
		return
	}

	userID := auth.UserIDFromContext(c)
	_, err = h.tasks.Edit(c.Request.Context(), userID, id, service.TaskPatch{
		Name:     &name,
		Project:  &project,
		Priority: &priority,
		DueDate:  &due,
		DueTime:  &tod,
	}, true)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		h.renderDashboard(c, "Could not save the task.")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// CompleteTask marks the task done. Missing or foreign tasks are ignored.
func (h *WebHandler) CompleteTask(c *gin.Context) {
	h.setCompleted(c, true)
}

// PendingTask marks the task pending again.
func (h *WebHandler) PendingTask(c *gin.Context) {
	h.setCompleted(c, false)
}

func (h *WebHandler) setCompleted(c *gin.Context, done bool) {
	id, ok := parseFormID(c)
	if !ok {
		return
	}
	userID := auth.UserIDFromContext(c)
	_, _ = h.tasks.SetCompleted(c.Request.Context(), userID, id, done, true)
	c.Redirect(http.StatusFound, "/dashboard")
}

// DeleteTask removes the task. Missing or foreign tasks are ignored.
func (h *WebHandler) DeleteTask(c *gin.Context) {
	id, ok := parseFormID(c)
	if !ok {
		return
	}
	userID := auth.UserIDFromContext(c)
	_ = h.tasks.Delete(c.Request.Context(), userID, id, true)
	c.Redirect(http.StatusFound, "/dashboard")
}

// dashboardTask is one rendered row; Overdue drives the row styling.
type dashboardTask struct {
	dom.Task
	Overdue bool
}

func (h *WebHandler) renderDashboard(c *gin.Context, errMsg string) {
	userID := auth.UserIDFromContext(c)

	userName := ""
	if user, err := h.users.GetByID(c.Request.Context(), userID); err == nil {
		userName = user.DisplayName()
	}

	list, err := h.tasks.List(c.Request.Context(), repo.TaskFilter{UserID: &userID})
	if err != nil {
		list = nil
		if errMsg == "" {
			errMsg = "Could not load tasks."
		}
	}

	now := time.Now()
	rows := make([]dashboardTask, len(list))
	for i, task := range list {
		rows[i] = dashboardTask{Task: task, Overdue: task.Overdue(now)}
	}

	data := gin.H{"tasks": rows, "user_name": userName}
	if errMsg != "" {
		data["error"] = errMsg
	}
	c.HTML(http.StatusOK, "dashboard.html", data)
}

// parseFormID reads the :id path param; bad ids silently redirect, the web
// surface never surfaces errors beyond the dashboard banner.
func parseFormID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Redirect(http.StatusFound, "/dashboard")
		return 0, false
	}
	return id, true
}
