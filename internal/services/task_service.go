package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/repository"
	"gorm.io/gorm"
)

// TaskService handles task business logic. Each successful write is
// followed by a recalculation of the owning project.
type TaskService struct {
	taskRepo     repository.TaskRepository
	projectRepo  repository.ProjectRepository
	memberRepo   repository.TeamMemberRepository
	recalculator *Recalculator
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, memberRepo repository.TeamMemberRepository, recalculator *Recalculator) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		projectRepo:  projectRepo,
		memberRepo:   memberRepo,
		recalculator: recalculator,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID      *string
	PartID         *string
	Status         *models.TaskStatus
	AssignedToID   *string
	Blocked        *bool
	DueToday       bool
	SortByDeadline bool
	Page           int
	PageSize       int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID    string
	PartID       string
	Component    string
	Title        string
	Description  string
	Status       models.TaskStatus
	Progress     int
	Deadline     *time.Time
	AssignedToID *string
	Blocked      bool
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	ProjectID     *string
	PartID        *string
	Component     *string
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Progress      *int
	Deadline      *time.Time
	ClearDeadline bool
	AssignedToID  *string
	ClearAssignee bool
	Blocked       *bool
}

// ListTasks returns tasks matching the provided filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		ProjectID:      input.ProjectID,
		PartID:         input.PartID,
		Status:         input.Status,
		AssignedToID:   input.AssignedToID,
		Blocked:        input.Blocked,
		SortByDeadline: input.SortByDeadline,
		Page:           input.Page,
		PageSize:       input.PageSize,
	}

	if input.DueToday {
		startOfDay := s.recalculator.Clock().StartOfToday()
		endOfDay := startOfDay.AddDate(0, 0, 1)
		filter.DeadlineFrom = &startOfDay
		filter.DeadlineTo = &endOfDay
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a single task
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask validates and stores a task, then recalculates its project
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	component, err := models.NewAreaName(input.Component)
	if err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTaskStatus, input.Status)
	}
	if err := checkProgress(input.Progress); err != nil {
		return nil, err
	}

	if err := s.ensurePart(ctx, input.ProjectID, input.PartID); err != nil {
		return nil, err
	}

	assignee, err := s.resolveAssignee(ctx, input.AssignedToID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:    input.ProjectID,
		PartID:       input.PartID,
		Component:    component,
		Title:        title,
		Description:  input.Description,
		Status:       input.Status,
		Progress:     input.Progress,
		Deadline:     input.Deadline,
		AssignedToID: assignee,
		Blocked:      input.Blocked,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.recalculate(ctx, task.ProjectID); err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTask applies the provided fields. Moving a task to another project
// recalculates both projects.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	previousProjectID := task.ProjectID

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Component != nil {
		component, err := models.NewAreaName(*input.Component)
		if err != nil {
			return nil, err
		}
		task.Component = component
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTaskStatus, *input.Status)
		}
		task.Status = *input.Status
	}
	if input.Progress != nil {
		if err := checkProgress(*input.Progress); err != nil {
			return nil, err
		}
		task.Progress = *input.Progress
	}
	if input.ClearDeadline {
		task.Deadline = nil
	} else if input.Deadline != nil {
		task.Deadline = input.Deadline
	}
	if input.ClearAssignee {
		task.AssignedToID = nil
	} else if input.AssignedToID != nil {
		assignee, err := s.resolveAssignee(ctx, input.AssignedToID)
		if err != nil {
			return nil, err
		}
		task.AssignedToID = assignee
	}
	if input.Blocked != nil {
		task.Blocked = *input.Blocked
	}

	if input.ProjectID != nil || input.PartID != nil {
		if input.ProjectID != nil {
			task.ProjectID = *input.ProjectID
		}
		if input.PartID != nil {
			task.PartID = *input.PartID
		}
		if err := s.ensurePart(ctx, task.ProjectID, task.PartID); err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	// Both projects are refreshed even when the first pass fails.
	err = s.recalculate(ctx, task.ProjectID)
	if previousProjectID != task.ProjectID {
		if prevErr := s.recalculate(ctx, previousProjectID); err == nil {
			err = prevErr
		}
	}
	if err != nil {
		return nil, err
	}

	return task, nil
}

// DeleteTask removes a task and recalculates its project
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return s.recalculate(ctx, task.ProjectID)
}

// SetBlocked flags or clears the blocked marker on a task
func (s *TaskService) SetBlocked(ctx context.Context, taskID string, blocked bool) (*models.Task, error) {
	return s.UpdateTask(ctx, taskID, UpdateTaskInput{Blocked: &blocked})
}

// AssignTask sets the task's assignee
func (s *TaskService) AssignTask(ctx context.Context, taskID, memberID string) (*models.Task, error) {
	return s.UpdateTask(ctx, taskID, UpdateTaskInput{AssignedToID: &memberID})
}

// UnassignTask clears the task's assignee
func (s *TaskService) UnassignTask(ctx context.Context, taskID string) (*models.Task, error) {
	return s.UpdateTask(ctx, taskID, UpdateTaskInput{ClearAssignee: true})
}

func (s *TaskService) recalculate(ctx context.Context, projectID string) error {
	if _, err := s.recalculator.RecalculateProject(ctx, projectID); err != nil {
		// The task write already happened; the project catches up on the
		// next successful recalculation.
		if errors.Is(err, ErrProjectNotFound) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRecalculationFailed, err)
	}
	return nil
}

// ensurePart verifies that partID is a part of projectID
func (s *TaskService) ensurePart(ctx context.Context, projectID, partID string) error {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	if project.FindPart(partID) < 0 {
		return ErrPartNotFound
	}
	return nil
}

// resolveAssignee returns nil for an empty id and verifies any other id
func (s *TaskService) resolveAssignee(ctx context.Context, memberID *string) (*string, error) {
	if memberID == nil || strings.TrimSpace(*memberID) == "" {
		return nil, nil
	}

	member, err := s.memberRepo.FindByID(ctx, strings.TrimSpace(*memberID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to verify team member: %w", err)
	}
	return &member.ID, nil
}

func checkProgress(value int) error {
	if value < 0 || value > 100 {
		return ErrInvalidProgress
	}
	return nil
}
