package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guillecolu/machinetrack-api/internal/dto"
	apierrors "github.com/guillecolu/machinetrack-api/internal/errors"
	"github.com/guillecolu/machinetrack-api/internal/middleware"
	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/services"
	"github.com/guillecolu/machinetrack-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns tasks, optionally filtered by project, part, status,
// assignee, blocked flag or "due=today"
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		Page:           params.Page,
		PageSize:       params.Limit,
		SortByDeadline: c.Query("sort") == "deadline",
		DueToday:       c.Query("due") == "today",
	}

	if v := c.Query("project_id"); v != "" {
		input.ProjectID = &v
	}
	if v := c.Query("part_id"); v != "" {
		input.PartID = &v
	}
	if v := c.Query("assigned_to_id"); v != "" {
		input.AssignedToID = &v
	}
	if v := c.Query("status"); v != "" {
		status, err := models.ParseTaskStatus(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}
	if v := c.Query("blocked"); v != "" {
		blocked, err := strconv.ParseBool(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid blocked filter")
			return
		}
		input.Blocked = &blocked
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns the task loaded by LoadTask
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task and recalculates its project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		ProjectID    string            `json:"projectId" binding:"required"`
		PartID       string            `json:"partId" binding:"required"`
		Component    string            `json:"component" binding:"required"`
		Title        string            `json:"title" binding:"required"`
		Description  string            `json:"description"`
		Status       models.TaskStatus `json:"status"`
		Progress     int               `json:"progress"`
		Deadline     *time.Time        `json:"deadline"`
		AssignedToID *string           `json:"assignedToId"`
		Blocked      bool              `json:"blocked"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		ProjectID:    req.ProjectID,
		PartID:       req.PartID,
		Component:    req.Component,
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Progress:     req.Progress,
		Deadline:     req.Deadline,
		AssignedToID: req.AssignedToID,
		Blocked:      req.Blocked,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates only the provided fields. A null deadline or
// assignedToId clears it.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	body, err := bindPatch(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	if input.ProjectID, _, err = field[string](body, "projectId"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.PartID, _, err = field[string](body, "partId"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Component, _, err = field[string](body, "component"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Title, _, err = field[string](body, "title"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Description, _, err = field[string](body, "description"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Status, _, err = field[models.TaskStatus](body, "status"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Progress, _, err = field[int](body, "progress"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Blocked, _, err = field[bool](body, "blocked"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Deadline, input.ClearDeadline, err = optionalTime(body, "deadline"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	var assigneePresent bool
	if input.AssignedToID, assigneePresent, err = field[string](body, "assignedToId"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	input.ClearAssignee = assigneePresent && (input.AssignedToID == nil || *input.AssignedToID == "")

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task and recalculates its project
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// BlockTask marks a task as blocked
func (h *TaskHandler) BlockTask(c *gin.Context) {
	h.setBlocked(c, true)
}

// UnblockTask clears the blocked marker
func (h *TaskHandler) UnblockTask(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h *TaskHandler) setBlocked(c *gin.Context, blocked bool) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	updated, err := h.taskService.SetBlocked(c.Request.Context(), task.ID, blocked)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// AssignTask assigns a team member to a task
func (h *TaskHandler) AssignTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type AssignTaskRequest struct {
		MemberID string `json:"memberId" binding:"required"`
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.AssignTask(c.Request.Context(), task.ID, req.MemberID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// UnassignTask removes the assignee from a task
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	updated, err := h.taskService.UnassignTask(c.Request.Context(), task.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}
