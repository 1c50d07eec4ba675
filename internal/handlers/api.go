package handlers

import (
	"errors"
	"net/http"
	"strconv"

	dom "taskcli/internal/domain"
	"taskcli/internal/dto"
	"taskcli/internal/repo"
	"taskcli/internal/service"

	"github.com/gin-gonic/gin"
)

// APIHandler serves the stateless JSON surface. Every call identifies the
// acting user by email; task lookups are always scoped to that user.
type APIHandler struct {
	users *service.UserService
	tasks *service.TaskService
}

// NewAPIHandler returns a new APIHandler.
func NewAPIHandler(users *service.UserService, tasks *service.TaskService) *APIHandler {
	return &APIHandler{users: users, tasks: tasks}
}

// Login godoc
// @Summary      Login
// @Tags         api
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.AuthResponse
// @Failure      401   {object}  map[string]interface{}
// @Router       /api/login [post]
func (h *APIHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{Success: true, UserID: user.ID, Name: user.Name, Email: user.Email})
}

// Signup godoc
// @Summary      Create an account
// @Tags         api
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "New account"
// @Success      201   {object}  dto.AuthResponse
// @Failure      400   {object}  map[string]interface{}
// @Router       /api/signup [post]
func (h *APIHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email already registered"})
		case service.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "signup failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.AuthResponse{Success: true, UserID: user.ID, Name: user.Name, Email: user.Email})
}

// ListTasks godoc
// @Summary      List a user's tasks
// @Tags         api
// @Produce      json
// @Param        email  query  string  true  "Account email"
// @Success      200    {object}  dto.ListTasksResponse
// @Failure      404    {object}  map[string]interface{}
// @Router       /api/tasks [get]
func (h *APIHandler) ListTasks(c *gin.Context) {
	user, ok := h.resolveUser(c, c.Query("email"))
	if !ok {
		return
	}
	list, err := h.tasks.List(c.Request.Context(), repo.TaskFilter{UserID: &user.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Success: true, Tasks: dto.FromTasks(list)})
}

// AddTask godoc
// @Summary      Add one task
// @Description  Creates exactly one row. is_recurring is stored as sent;
// @Description  recurrence expansion is a web/terminal feature.
// @Tags         api
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddTaskRequest  true  "Task"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /api/tasks/add [post]
func (h *APIHandler) AddTask(c *gin.Context) {
	var req dto.AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user, ok := h.resolveUser(c, req.Email)
	if !ok {
		return
	}
	task, err := h.tasks.CreateOne(c.Request.Context(), user.ID, service.CreateTaskInput{
		Name:     req.Name,
		Project:  req.Project,
		Priority: req.Priority,
		DueDate:  req.DueDate,
		DueTime:  req.DueTime,
	}, req.IsRecurring)
	if err != nil {
		if service.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task_id": task.ID})
}

// CompleteTask godoc
// @Summary      Mark a task completed
// @Tags         api
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "Task ID"
// @Param        body  body  dto.TaskActionRequest  true  "Acting user"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /api/tasks/{id}/complete [post]
func (h *APIHandler) CompleteTask(c *gin.Context) {
	h.setCompleted(c, true)
}

// PendingTask godoc
// @Summary      Mark a task pending
// @Tags         api
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "Task ID"
// @Param        body  body  dto.TaskActionRequest  true  "Acting user"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /api/tasks/{id}/pending [post]
func (h *APIHandler) PendingTask(c *gin.Context) {
	h.setCompleted(c, false)
}

func (h *APIHandler) setCompleted(c *gin.Context, done bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TaskActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user, ok := h.resolveUser(c, req.Email)
	if !ok {
		return
	}
	if _, err := h.tasks.SetCompleted(c.Request.Context(), user.ID, id, done, true); err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// EditTask godoc
// @Summary      Edit a task
// @Tags         api
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "Task ID"
// @Param        body  body  dto.EditTaskRequest  true  "Partial fields"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /api/tasks/{id}/edit [post]
func (h *APIHandler) EditTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EditTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user, ok := h.resolveUser(c, req.Email)
	if !ok {
		return
	}

	var patch service.TaskPatch
	if req.Name != "" {
		patch.Name = &req.Name
	}
	if req.Project != "" {
		patch.Project = &req.Project
	}
	if req.Priority != "" {
		p := dom.Priority(req.Priority)
		patch.Priority = &p
	}
	if req.DueDate != "" {
		d, err := service.ParseDueDate(req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "due date must be YYYY-MM-DD"})
			return
		}
		patch.DueDate = &d
	}
	if req.DueTime != "" {
		tod, err := service.ParseDueTime(req.DueTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "due time must be HH:MM"})
			return
		}
		patch.DueTime = &tod
	}

	if _, err := h.tasks.Edit(c.Request.Context(), user.ID, id, patch, true); err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteTask godoc
// @Summary      Delete a task
// @Tags         api
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "Task ID"
// @Param        body  body  dto.TaskActionRequest  true  "Acting user"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /api/tasks/{id}/delete [post]
func (h *APIHandler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TaskActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user, ok := h.resolveUser(c, req.Email)
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), user.ID, id, true); err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// resolveUser looks up the acting user by email. On failure it writes the
// response and returns ok=false.
func (h *APIHandler) resolveUser(c *gin.Context, email string) (dom.User, bool) {
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email is required"})
		return dom.User{}, false
	}
	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
			return dom.User{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "lookup failed"})
		return dom.User{}, false
	}
	return user, true
}

func (h *APIHandler) taskError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "task not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return 0, false
	}
	return id, true
}
