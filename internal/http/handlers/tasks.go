package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"tasktracker/internal/domain"
	"tasktracker/internal/logger"
	"tasktracker/internal/repository"

	"github.com/gin-gonic/gin"
)

type CreateTaskRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	DueDate      *string `json:"dueDate"`
	AssignedTo   []int64 `json:"assignedTo"`
	Organization string  `json:"organization"`
	// CreatedBy is accepted on the wire but always overridden with the
	// authenticated identity.
	CreatedBy int64 `json:"createdBy"`
}

type UpdateTaskRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Status       *string  `json:"status"`
	Priority     *string  `json:"priority"`
	DueDate      *string  `json:"dueDate"`
	AssignedTo   *[]int64 `json:"assignedTo"`
	Organization *string  `json:"organization"`
}

type AddCommentRequest struct {
	Comment string `json:"comment"`
}

// parseDueDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// CreateTask creates a task owned by the caller. createdBy is forced to the
// authenticated id; organization is taken verbatim from the payload and not
// checked against the caller's own organization.
func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authorization required"})
		return
	}

	var req CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "bad request"})
		return
	}

	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "title is required"})
		return
	}

	status := req.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !domain.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid status"})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid priority"})
		return
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		t, err := parseDueDate(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid dueDate"})
			return
		}
		dueDate = &t
	}

	task := &domain.Task{
		Title:        req.Title,
		Description:  req.Description,
		Status:       status,
		Priority:     priority,
		DueDate:      dueDate,
		AssignedTo:   req.AssignedTo,
		CreatedBy:    userID,
		Organization: req.Organization,
	}

	ctx := c.Request.Context()
	if err := h.Tasks.Create(ctx, task); err != nil {
		logger.Error("failed to create task", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"msg": "failed to create task"})
		return
	}

	h.Audit.LogTaskAction(ctx, userID, domain.AuditActionTaskCreate, task.ID, nil)

	// re-read to return the task with assignees expanded
	created, err := h.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		logger.Error("failed to load created task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create task"})
		return
	}
	c.JSON(http.StatusOK, created)
}

// ListTasks returns tasks matching the optional status, priority,
// assignedTo and organization filters. Any authenticated caller may use any
// filter combination; absent filters return every task.
func (h *Handler) ListTasks(c *gin.Context) {
	f := repository.TaskFilter{
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		Organization: c.Query("organization"),
	}

	if v := c.Query("assignedTo"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid assignedTo"})
			return
		}
		f.AssignedTo = &id
	}

	tasks, err := h.Tasks.List(c.Request.Context(), f)
	if err != nil {
		logger.Error("failed to list tasks", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to list tasks"})
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// GetTask returns a single task by id. An unknown or unparsable id is a
// plain not-found, never a null success.
func (h *Handler) GetTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Task not found"})
		return
	}

	task, err := h.Tasks.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Task not found"})
			return
		}
		logger.Error("failed to get task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to get task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update. Any authenticated user may update
// any task; there is no ownership or assignment check.
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authorization required"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid id"})
		return
	}

	var req UpdateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "bad request"})
		return
	}

	if req.Title != nil && *req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "title is required"})
		return
	}
	if req.Status != nil && !domain.ValidStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid status"})
		return
	}
	if req.Priority != nil && !domain.ValidPriority(*req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid priority"})
		return
	}

	upd := repository.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		AssignedTo:   req.AssignedTo,
		Organization: req.Organization,
	}

	if req.DueDate != nil && *req.DueDate != "" {
		t, err := parseDueDate(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid dueDate"})
			return
		}
		upd.DueDate = &t
	}

	ctx := c.Request.Context()
	task, err := h.Tasks.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Task not found"})
			return
		}
		logger.Error("failed to update task", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"msg": "failed to update task"})
		return
	}

	h.Audit.LogTaskAction(ctx, userID, domain.AuditActionTaskUpdate, task.ID, nil)

	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task by id. Deleting an id that was never there (or
// was already deleted) still answers success; the operation is idempotent.
func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authorization required"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid id"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Tasks.Delete(ctx, id); err != nil {
		logger.Error("failed to delete task", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"msg": "failed to delete task"})
		return
	}

	h.Audit.LogTaskAction(ctx, userID, domain.AuditActionTaskDelete, id, nil)

	c.JSON(http.StatusOK, gin.H{"msg": "Deleted"})
}

// AddComment appends a comment to a task, attributed to the caller.
func (h *Handler) AddComment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authorization required"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Task not found"})
		return
	}

	var req AddCommentRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "bad request"})
		return
	}
	if req.Comment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "comment is required"})
		return
	}

	ctx := c.Request.Context()
	task, err := h.Tasks.AddComment(ctx, id, domain.Comment{
		UserID:    userID,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Task not found"})
			return
		}
		logger.Error("failed to add comment", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"msg": "failed to add comment"})
		return
	}

	h.Audit.LogTaskAction(ctx, userID, domain.AuditActionTaskComment, id, nil)

	c.JSON(http.StatusOK, task)
}
